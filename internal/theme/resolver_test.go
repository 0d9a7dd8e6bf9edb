package theme

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource implements ThemeSource for testing.
type stubSource struct {
	name     Source
	paths    []string
	pal      Palette
	err      error
	resolves int
}

func (s *stubSource) Name() Source    { return s.name }
func (s *stubSource) Paths() []string { return s.paths }
func (s *stubSource) Resolve() (Palette, error) {
	s.resolves++
	return s.pal, s.err
}

func validStub(name Source, bg string) *stubSource {
	return &stubSource{
		name: name,
		pal:  Palette{Background: bg, Foreground: "#ffffff", Source: name},
	}
}

func newTestResolver(opts ResolverOptions) *Resolver {
	opts.Log = zerolog.Nop()
	if opts.System == nil {
		opts.System = &SystemSource{prefersDark: func() (bool, bool) { return true, true }}
	}
	return NewResolver(opts)
}

func TestResolverFirstValidSourceWins(t *testing.T) {
	first := validStub(SourceOmarchy, "#111111")
	second := validStub(SourceAlacritty, "#222222")

	r := newTestResolver(ResolverOptions{Sources: []ThemeSource{first, second}})
	pal := r.Resolve()

	assert.Equal(t, SourceOmarchy, pal.Source)
	assert.Equal(t, "#111111", pal.Background)
	assert.Equal(t, 0, second.resolves, "cascade stops at the first success")
}

func TestResolverSkipsMalformedSource(t *testing.T) {
	malformed := &stubSource{name: SourceOmarchy, err: &ParseError{Path: "a", Reason: "bad"}}
	valid := validStub(SourceAlacritty, "#222222")
	alsoValid := validStub(SourceKitty, "#333333")

	r := newTestResolver(ResolverOptions{Sources: []ThemeSource{malformed, valid, alsoValid}})
	pal := r.Resolve()

	assert.Equal(t, SourceAlacritty, pal.Source)
	assert.Equal(t, "#222222", pal.Background)
}

func TestResolverSkipsAbsentSourceSilently(t *testing.T) {
	absent := &stubSource{name: SourceOmarchy, err: ErrNotFound}
	valid := validStub(SourceKitty, "#333333")

	r := newTestResolver(ResolverOptions{Sources: []ThemeSource{absent, valid}})
	pal := r.Resolve()

	assert.Equal(t, SourceKitty, pal.Source)
}

func TestResolverExhaustionUsesSystemDefault(t *testing.T) {
	r := newTestResolver(ResolverOptions{Sources: []ThemeSource{
		&stubSource{name: SourceOmarchy, err: ErrNotFound},
		&stubSource{name: SourceAlacritty, err: &ParseError{Path: "b", Reason: "bad"}},
	}})
	pal := r.Resolve()

	assert.Equal(t, SourceSystem, pal.Source)
	assert.NotEmpty(t, pal.Background)
	assert.NotEmpty(t, pal.Foreground)
}

func TestResolverForceSystemBypassesCascade(t *testing.T) {
	valid := validStub(SourceOmarchy, "#111111")

	r := newTestResolver(ResolverOptions{ForceSystem: true, Sources: []ThemeSource{valid}})
	pal := r.Resolve()

	assert.Equal(t, SourceSystem, pal.Source)
	assert.Equal(t, 0, valid.resolves, "forced mode never probes the cascade")
}

func TestResolverWatchPathsDeduplicated(t *testing.T) {
	r := newTestResolver(ResolverOptions{Sources: []ThemeSource{
		&stubSource{name: SourceOmarchy, paths: []string{"/a", "/b"}},
		&stubSource{name: SourceAlacritty, paths: []string{"/b", "/c", ""}},
	}})

	assert.Equal(t, []string{"/a", "/b", "/c"}, r.WatchPaths())
}

func TestDefaultSourcesOrder(t *testing.T) {
	sources := DefaultSources()
	require.Len(t, sources, 6)

	want := []Source{
		SourceOmarchy,
		SourceAlacritty,
		SourceKitty,
		SourceFoot,
		SourceEnvironment,
		SourceLegacyEnv,
	}
	for i, src := range sources {
		assert.Equal(t, want[i], src.Name())
	}
}
