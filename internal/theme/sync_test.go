package theme

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSync(t *testing.T, src *stubSource, live bool) *SyncService {
	t.Helper()
	r := newTestResolver(ResolverOptions{Sources: []ThemeSource{src}})
	return NewSyncService(r, SyncOptions{
		LiveSync: live,
		Debounce: 20 * time.Millisecond,
		Log:      zerolog.Nop(),
	})
}

func TestSyncPublishesInitialPalette(t *testing.T) {
	src := validStub(SourceKitty, "#111111")
	s := newTestSync(t, src, false)

	var got []Palette
	s.Subscribe(func(p Palette) { got = append(got, p) })

	s.Start()

	require.Len(t, got, 1)
	assert.Equal(t, SourceKitty, got[0].Source)
	assert.Equal(t, got[0], s.Current())
}

func TestSyncSuppressesEqualPalette(t *testing.T) {
	src := validStub(SourceKitty, "#111111")
	s := newTestSync(t, src, false)

	calls := 0
	s.Subscribe(func(Palette) { calls++ })

	s.Start()
	s.Refresh()
	s.Refresh()

	assert.Equal(t, 1, calls, "identical re-resolutions must not republish")
}

func TestSyncPublishesChangedPalette(t *testing.T) {
	src := validStub(SourceKitty, "#111111")
	s := newTestSync(t, src, false)

	var got []Palette
	s.Subscribe(func(p Palette) { got = append(got, p) })

	s.Start()
	src.pal.Background = "#222222"
	s.Refresh()

	require.Len(t, got, 2)
	assert.Equal(t, "#222222", got[1].Background)
}

func TestSyncUnsubscribeStopsDelivery(t *testing.T) {
	src := validStub(SourceKitty, "#111111")
	s := newTestSync(t, src, false)

	calls := 0
	unsubscribe := s.Subscribe(func(Palette) { calls++ })

	s.Start()
	unsubscribe()
	src.pal.Background = "#222222"
	s.Refresh()

	assert.Equal(t, 1, calls)
}

func TestSyncPanickingSubscriberIsIsolated(t *testing.T) {
	src := validStub(SourceKitty, "#111111")
	s := newTestSync(t, src, false)

	s.Subscribe(func(Palette) { panic("subscriber bug") })
	calls := 0
	s.Subscribe(func(Palette) { calls++ })

	assert.NotPanics(t, func() { s.Start() })
	assert.Equal(t, 1, calls, "later subscribers still receive the palette")
}

func TestSyncLiveWatchRepublishesOnFileChange(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "kitty.conf")
	require.NoError(t, os.WriteFile(conf, []byte("background #111111\nforeground #eeeeee\n"), 0o644))

	src := &fileSource{name: SourceKitty, path: conf, parse: parseKittyText}
	r := newTestResolver(ResolverOptions{Sources: []ThemeSource{src}})
	s := NewSyncService(r, SyncOptions{
		LiveSync: true,
		Debounce: 20 * time.Millisecond,
		Log:      zerolog.Nop(),
	})

	updates := make(chan Palette, 4)
	s.Subscribe(func(p Palette) { updates <- p })

	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	select {
	case p := <-updates:
		assert.Equal(t, "#111111", p.Background)
	case <-time.After(time.Second):
		t.Fatal("initial palette never published")
	}

	require.NoError(t, os.WriteFile(conf, []byte("background #222222\nforeground #eeeeee\n"), 0o644))

	select {
	case p := <-updates:
		assert.Equal(t, "#222222", p.Background)
	case <-time.After(3 * time.Second):
		t.Fatal("palette change never published")
	}
}

func TestSyncStopWithoutStartIsNoop(t *testing.T) {
	s := newTestSync(t, validStub(SourceKitty, "#111111"), true)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

func TestSyncStartIsIdempotent(t *testing.T) {
	src := validStub(SourceKitty, "#111111")
	s := newTestSync(t, src, false)

	s.Start()
	s.Start()

	assert.Equal(t, 1, src.resolves)
}
