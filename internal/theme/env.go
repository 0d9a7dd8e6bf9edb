package theme

import (
	"fmt"
	"os"
)

// envKeys maps the palette fields to their variable suffixes. The same table
// serves the current OMNOTE_ names and the legacy MICROPAD_ aliases, so the
// two sources cannot drift apart.
var envKeys = []struct {
	suffix string
	set    func(*colorSet, string)
}{
	{"BG", func(c *colorSet, v string) { c.bg = v }},
	{"FG", func(c *colorSet, v string) { c.fg = v }},
	{"ACCENT", func(c *colorSet, v string) { c.accent = v }},
	{"CURSOR", func(c *colorSet, v string) { c.cursor = v }},
	{"SEL_BG", func(c *colorSet, v string) { c.selBG = v }},
	{"SEL_FG", func(c *colorSet, v string) { c.selFG = v }},
}

// EnvSource reads palette overrides from environment variables under a fixed
// prefix. There is one instance per prefix generation.
type EnvSource struct {
	name   Source
	prefix string
}

// NewEnvSource reads the current OMNOTE_* variables.
func NewEnvSource() *EnvSource {
	return &EnvSource{name: SourceEnvironment, prefix: "OMNOTE_"}
}

// NewLegacyEnvSource reads the MICROPAD_* variables the application honored
// before its rename. It ranks below the current names in the cascade.
func NewLegacyEnvSource() *EnvSource {
	return &EnvSource{name: SourceLegacyEnv, prefix: "MICROPAD_"}
}

func (s *EnvSource) Name() Source { return s.name }

// Paths returns nil: the environment cannot change under a running process,
// so there is nothing to watch.
func (s *EnvSource) Paths() []string { return nil }

func (s *EnvSource) Resolve() (Palette, error) {
	var colors colorSet
	found := false
	for _, key := range envKeys {
		raw := os.Getenv(s.prefix + key.suffix)
		if raw == "" {
			continue
		}
		found = true
		v, ok := NormalizeColor(raw)
		if !ok {
			return Palette{}, &ParseError{
				Path:   s.prefix + key.suffix,
				Reason: fmt.Sprintf("invalid color %q", raw),
			}
		}
		key.set(&colors, v)
	}
	if !found {
		return Palette{}, ErrNotFound
	}
	if !colors.complete() {
		return Palette{}, &ParseError{
			Path:   s.prefix + "*",
			Reason: "background and foreground are both required",
		}
	}
	return colors.palette(s.name), nil
}
