package theme

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var hyprSourceRe = regexp.MustCompile(`(?mi)^\s*(?:source|include)\s*=\s*.+omarchy/(?:.+?/)?themes/([^/]+)/hyprland\.conf\s*$`)

// OmarchySource reads the palette of the active Omarchy theme. Omarchy
// themes are directories carrying terminal configs; the active one is found
// through the `current/theme` symlink, marker files, or the Hyprland config.
type OmarchySource struct {
	configHome string
}

// NewOmarchySource locates Omarchy under the user's XDG config root.
func NewOmarchySource() *OmarchySource {
	return &OmarchySource{configHome: userConfigHome()}
}

func (s *OmarchySource) Name() Source { return SourceOmarchy }

func (s *OmarchySource) omarchyDir() string {
	return filepath.Join(s.configHome, "omarchy")
}

func (s *OmarchySource) Paths() []string {
	base := s.omarchyDir()
	current := filepath.Join(base, "current", "theme")
	return []string{
		base,
		filepath.Join(base, "themes"),
		filepath.Join(base, "current"),
		filepath.Join(current, "alacritty.toml"),
		filepath.Join(current, "kitty.conf"),
		filepath.Join(current, "foot.ini"),
		filepath.Join(s.configHome, "hypr", "hyprland.conf"),
	}
}

func (s *OmarchySource) Resolve() (Palette, error) {
	dir, ok := s.currentThemeDir()
	if !ok {
		return Palette{}, ErrNotFound
	}

	for _, name := range []string{"alacritty.toml", "alacritty.yaml", "alacritty.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		colors, err := loadAlacrittyFile(path, map[string]bool{}, 0)
		if err != nil {
			return Palette{}, err
		}
		if !colors.complete() {
			return Palette{}, &ParseError{Path: path, Reason: "missing background or foreground"}
		}
		return colors.palette(SourceOmarchy), nil
	}

	for _, f := range []struct {
		name  string
		parse func([]byte) colorSet
	}{
		{"kitty.conf", parseKittyText},
		{"foot.ini", parseFootText},
	} {
		path := filepath.Join(dir, f.name)
		text, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		colors := f.parse(text)
		if !colors.complete() {
			return Palette{}, &ParseError{Path: path, Reason: "missing background or foreground"}
		}
		return colors.palette(SourceOmarchy), nil
	}

	// Theme directory exists but carries no terminal palette files.
	return Palette{}, ErrNotFound
}

// currentThemeDir finds the active theme directory, probing the detection
// points in the order Omarchy installs have used them.
func (s *OmarchySource) currentThemeDir() (string, bool) {
	base := s.omarchyDir()
	themes := filepath.Join(base, "themes")

	if dir, ok := resolveDir(filepath.Join(base, "current", "theme")); ok {
		return dir, true
	}
	if dir, ok := resolveDir(filepath.Join(themes, "current")); ok {
		return dir, true
	}

	for _, marker := range []string{"current-theme", "theme", "selected-theme"} {
		raw, err := os.ReadFile(filepath.Join(base, marker))
		if err != nil {
			continue
		}
		name := strings.TrimSpace(string(raw))
		if name == "" {
			continue
		}
		if dir, ok := resolveDir(filepath.Join(themes, name)); ok {
			return dir, true
		}
	}

	hypr := filepath.Join(s.configHome, "hypr", "hyprland.conf")
	if raw, err := os.ReadFile(hypr); err == nil {
		if m := hyprSourceRe.FindSubmatch(raw); m != nil {
			if dir, ok := resolveDir(filepath.Join(themes, string(m[1]))); ok {
				return dir, true
			}
		}
	}

	return "", false
}

// resolveDir follows symlinks and reports whether path is a directory.
func resolveDir(path string) (string, bool) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false
	}
	info, err := os.Stat(resolved)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return resolved, true
}
