package theme

import (
	"os"
	"os/exec"
	"strings"
)

// Built-in palettes used when the desktop preference is all we know.
var (
	builtinDark = colorSet{
		bg:     "#1e1e1e",
		fg:     "#e0e0e0",
		cursor: "#e0e0e0",
	}
	builtinLight = colorSet{
		bg:     "#fafafa",
		fg:     "#2e2e2e",
		cursor: "#2e2e2e",
	}
)

// SystemSource synthesizes a palette from the desktop's dark/light
// preference. It is the cascade's terminal entry and never fails: when the
// preference cannot be determined it falls back to the built-in dark palette,
// making the resolver a total function.
type SystemSource struct {
	// prefersDark overrides detection when non-nil (tests).
	prefersDark func() (bool, bool)
}

// NewSystemSource creates the system-default source.
func NewSystemSource() *SystemSource {
	return &SystemSource{}
}

func (s *SystemSource) Name() Source    { return SourceSystem }
func (s *SystemSource) Paths() []string { return nil }

func (s *SystemSource) Resolve() (Palette, error) {
	dark := true
	detect := s.prefersDark
	if detect == nil {
		detect = detectPrefersDark
	}
	if d, ok := detect(); ok {
		dark = d
	}
	if dark {
		return builtinDark.palette(SourceSystem), nil
	}
	return builtinLight.palette(SourceSystem), nil
}

// detectPrefersDark queries gsettings first (the reliable channel on GNOME
// desktops), then falls back to GTK_THEME sniffing.
func detectPrefersDark() (prefersDark, ok bool) {
	if d, ok := gsettingsPrefersDark(); ok {
		return d, true
	}
	return gtkThemeEnvPrefersDark()
}

func gsettingsPrefersDark() (prefersDark, ok bool) {
	if _, err := exec.LookPath("gsettings"); err != nil {
		return false, false
	}
	output, err := exec.Command("gsettings", "get", "org.gnome.desktop.interface", "color-scheme").Output()
	if err != nil {
		return false, false
	}

	// Output is like "'prefer-dark'\n", strip quotes and whitespace
	result := strings.TrimSpace(string(output))
	result = strings.Trim(result, "'\"")

	switch result {
	case "prefer-dark":
		return true, true
	case "prefer-light":
		return false, true
	default:
		return false, false
	}
}

func gtkThemeEnvPrefersDark() (prefersDark, ok bool) {
	gtkTheme := os.Getenv("GTK_THEME")
	if gtkTheme == "" {
		return false, false
	}
	return strings.Contains(strings.ToLower(gtkTheme), "dark"), true
}
