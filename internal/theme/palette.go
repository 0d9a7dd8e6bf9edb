// Package theme resolves the editor's color palette from a prioritized
// cascade of external configuration sources and keeps it synchronized as
// those sources change on disk.
package theme

import (
	"fmt"
	"strings"
)

// Source identifies which cascade entry produced a palette.
type Source string

const (
	SourceOmarchy     Source = "omarchy"
	SourceAlacritty   Source = "alacritty"
	SourceKitty       Source = "kitty"
	SourceFoot        Source = "foot"
	SourceEnvironment Source = "environment"
	SourceLegacyEnv   Source = "legacy-environment"
	SourceSystem      Source = "system-default"
)

// Palette is the normalized set of colors for the active editor theme.
// Background and Foreground are always set after resolution; the rest are
// optional. Palettes are value types: replace, never mutate.
type Palette struct {
	Background  string `json:"background"`
	Foreground  string `json:"foreground"`
	Accent      string `json:"accent,omitempty"`
	Cursor      string `json:"cursor,omitempty"`
	SelectionBG string `json:"selectionBg,omitempty"`
	SelectionFG string `json:"selectionFg,omitempty"`
	Source      Source `json:"source"`
}

// Equal reports whether two palettes are value-equal, including their source
// tag. The sync service uses this to suppress redundant publishes.
func (p Palette) Equal(other Palette) bool {
	return p == other
}

func (p Palette) String() string {
	return fmt.Sprintf("%s/%s (%s)", p.Background, p.Foreground, p.Source)
}

// NormalizeColor converts the color spellings found in terminal configs to
// canonical "#rrggbb" form. Accepted inputs: "#rrggbb", "#rrggbbaa" (alpha
// dropped), "0xrrggbb" and "rgb:rr/gg/bb". Anything else is rejected.
func NormalizeColor(s string) (string, bool) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return "", false
	case strings.HasPrefix(s, "#") && (len(s) == 7 || len(s) == 9):
		if !isHex(s[1:]) {
			return "", false
		}
		return strings.ToLower(s[:7]), true
	case strings.HasPrefix(s, "0x") && len(s) == 8:
		if !isHex(s[2:]) {
			return "", false
		}
		return "#" + strings.ToLower(s[2:]), true
	case strings.HasPrefix(s, "rgb:"):
		parts := strings.Split(s[4:], "/")
		if len(parts) != 3 {
			return "", false
		}
		for _, p := range parts {
			if len(p) != 2 || !isHex(p) {
				return "", false
			}
		}
		return strings.ToLower("#" + parts[0] + parts[1] + parts[2]), true
	default:
		return "", false
	}
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// colorSet is a partially filled palette as read from one file or
// environment, before source tagging and completeness checks.
type colorSet struct {
	bg, fg, accent, cursor, selBG, selFG string
}

// complete reports whether the required colors are present.
func (c colorSet) complete() bool {
	return c.bg != "" && c.fg != ""
}

// empty reports whether nothing at all was found.
func (c colorSet) empty() bool {
	return c == colorSet{}
}

// fillFrom copies colors from other into any unset field.
func (c *colorSet) fillFrom(other colorSet) {
	if c.bg == "" {
		c.bg = other.bg
	}
	if c.fg == "" {
		c.fg = other.fg
	}
	if c.accent == "" {
		c.accent = other.accent
	}
	if c.cursor == "" {
		c.cursor = other.cursor
	}
	if c.selBG == "" {
		c.selBG = other.selBG
	}
	if c.selFG == "" {
		c.selFG = other.selFG
	}
}

// palette tags the colors with their source.
func (c colorSet) palette(src Source) Palette {
	return Palette{
		Background:  c.bg,
		Foreground:  c.fg,
		Accent:      c.accent,
		Cursor:      c.cursor,
		SelectionBG: c.selBG,
		SelectionFG: c.selFG,
		Source:      src,
	}
}
