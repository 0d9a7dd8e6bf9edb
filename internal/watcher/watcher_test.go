package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := New(50*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		require.True(t, ok, "event channel closed unexpectedly")
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("no event delivered")
		return Event{}
	}
}

func TestWatcherCoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "kitty.conf")
	require.NoError(t, os.WriteFile(target, []byte("a"), 0o644))

	w := newTestWatcher(t)
	require.NoError(t, w.Add(target))

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte{byte('a' + i)}, 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	ev := waitEvent(t, w)
	assert.Equal(t, []string{target}, ev.Paths)

	select {
	case extra := <-w.Events():
		t.Fatalf("burst produced a second event: %v", extra.Paths)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherObservesFileCreation(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "not-yet.conf")

	w := newTestWatcher(t)
	require.NoError(t, w.Add(target))

	require.NoError(t, os.WriteFile(target, []byte("background #111111"), 0o644))

	ev := waitEvent(t, w)
	assert.Contains(t, ev.Paths, target)
}

func TestWatcherIgnoresUnregisteredSiblings(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "watched.conf")
	require.NoError(t, os.WriteFile(target, []byte("a"), 0o644))

	w := newTestWatcher(t)
	require.NoError(t, w.Add(target))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.conf"), []byte("b"), 0o644))

	select {
	case ev := <-w.Events():
		t.Fatalf("sibling change delivered: %v", ev.Paths)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherDirectoryTargetSeesChildren(t *testing.T) {
	dir := t.TempDir()

	w := newTestWatcher(t)
	require.NoError(t, w.Add(dir))

	child := filepath.Join(dir, "theme.toml")
	require.NoError(t, os.WriteFile(child, []byte("x"), 0o644))

	ev := waitEvent(t, w)
	assert.Contains(t, ev.Paths, child)
}

func TestWatcherCloseClosesEventChannel(t *testing.T) {
	w, err := New(50*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, w.Close())
	assert.NoError(t, w.Close(), "Close is idempotent")

	select {
	case _, ok := <-w.Events():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("event channel not closed")
	}
}
