package theme

import (
	"errors"

	"github.com/rs/zerolog"
)

// Resolver runs the source cascade and always produces exactly one palette.
type Resolver struct {
	sources     []ThemeSource
	system      ThemeSource
	forceSystem bool
	log         zerolog.Logger
}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	// ForceSystem skips the cascade and resolves the system source directly.
	ForceSystem bool
	// Sources overrides the default cascade (tests). When nil,
	// DefaultSources() is used.
	Sources []ThemeSource
	// System overrides the terminal fallback source. When nil,
	// NewSystemSource() is used.
	System ThemeSource
	Log    zerolog.Logger
}

// DefaultSources returns the cascade in priority order.
func DefaultSources() []ThemeSource {
	return []ThemeSource{
		NewOmarchySource(),
		NewAlacrittySource(),
		NewKittySource(),
		NewFootSource(),
		NewEnvSource(),
		NewLegacyEnvSource(),
	}
}

// NewResolver creates a resolver over the given cascade.
func NewResolver(opts ResolverOptions) *Resolver {
	sources := opts.Sources
	if sources == nil {
		sources = DefaultSources()
	}
	system := opts.System
	if system == nil {
		system = NewSystemSource()
	}
	return &Resolver{
		sources:     sources,
		system:      system,
		forceSystem: opts.ForceSystem,
		log:         opts.Log,
	}
}

// Resolve walks the cascade and returns the first valid palette, tagged with
// the source that produced it. Malformed sources are logged and skipped;
// absent sources are skipped silently. Resolve is total: when every source
// fails, the system-default source answers, and that source cannot fail.
func (r *Resolver) Resolve() Palette {
	if r.forceSystem {
		r.log.Debug().Msg("theme mode forced to system, skipping cascade")
		return r.resolveSystem()
	}

	for _, src := range r.sources {
		pal, err := src.Resolve()
		if err == nil {
			r.log.Debug().
				Str("source", string(src.Name())).
				Str("palette", pal.String()).
				Msg("theme source resolved")
			return pal
		}
		if errors.Is(err, ErrNotFound) {
			continue
		}
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			r.log.Warn().
				Str("source", string(src.Name())).
				Str("path", parseErr.Path).
				Err(err).
				Msg("skipping malformed theme source")
			continue
		}
		r.log.Warn().Str("source", string(src.Name())).Err(err).Msg("theme source failed")
	}

	r.log.Debug().Msg("theme cascade exhausted, using system default")
	return r.resolveSystem()
}

func (r *Resolver) resolveSystem() Palette {
	pal, err := r.system.Resolve()
	if err != nil {
		// The system source contract says this cannot happen; honor the
		// availability guarantee anyway.
		r.log.Error().Err(err).Msg("system theme source failed, using built-in palette")
		return builtinDark.palette(SourceSystem)
	}
	return pal
}

// WatchPaths returns the union of every source's watchable paths, in
// cascade order with duplicates removed.
func (r *Resolver) WatchPaths() []string {
	seen := map[string]bool{}
	var out []string
	for _, src := range r.sources {
		for _, p := range src.Paths() {
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
