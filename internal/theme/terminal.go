package theme

import (
	"os"
	"path/filepath"
	"regexp"
)

// hexPattern matches every color spelling NormalizeColor accepts.
const hexPattern = `(?:#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{8})|0x[0-9a-fA-F]{6}|rgb:[0-9a-fA-F]{2}/[0-9a-fA-F]{2}/[0-9a-fA-F]{2})`

var (
	kittyLineRe = regexp.MustCompile(`(?m)^[ \t]*([a-z_]+)[ \t]+(` + hexPattern + `)`)
	footLineRe  = regexp.MustCompile(`(?m)^[ \t]*([a-z-]+)[ \t]*=[ \t]*(` + hexPattern + `)`)
)

// parseKittyText extracts a palette from kitty.conf syntax ("key value").
func parseKittyText(text []byte) colorSet {
	return scanLines(kittyLineRe, text, map[string]func(*colorSet, string){
		"background":           func(c *colorSet, v string) { c.bg = v },
		"foreground":           func(c *colorSet, v string) { c.fg = v },
		"cursor":               func(c *colorSet, v string) { c.cursor = v },
		"selection_background": func(c *colorSet, v string) { c.selBG = v },
		"selection_foreground": func(c *colorSet, v string) { c.selFG = v },
	})
}

// parseFootText extracts a palette from foot.ini syntax ("key=value").
func parseFootText(text []byte) colorSet {
	return scanLines(footLineRe, text, map[string]func(*colorSet, string){
		"background":           func(c *colorSet, v string) { c.bg = v },
		"foreground":           func(c *colorSet, v string) { c.fg = v },
		"cursor":               func(c *colorSet, v string) { c.cursor = v },
		"selection-background": func(c *colorSet, v string) { c.selBG = v },
		"selection-foreground": func(c *colorSet, v string) { c.selFG = v },
	})
}

func scanLines(re *regexp.Regexp, text []byte, keys map[string]func(*colorSet, string)) colorSet {
	var out colorSet
	for _, m := range re.FindAllSubmatch(text, -1) {
		set, ok := keys[string(m[1])]
		if !ok {
			continue
		}
		if v, ok := NormalizeColor(string(m[2])); ok {
			set(&out, v)
		}
	}
	return out
}

// fileSource reads a single terminal config file with a fixed parser. It
// backs both the kitty and foot cascade entries.
type fileSource struct {
	name  Source
	path  string
	parse func([]byte) colorSet
}

// NewKittySource reads ~/.config/kitty/kitty.conf.
func NewKittySource() ThemeSource {
	return &fileSource{
		name:  SourceKitty,
		path:  filepath.Join(userConfigHome(), "kitty", "kitty.conf"),
		parse: parseKittyText,
	}
}

// NewFootSource reads ~/.config/foot/foot.ini.
func NewFootSource() ThemeSource {
	return &fileSource{
		name:  SourceFoot,
		path:  filepath.Join(userConfigHome(), "foot", "foot.ini"),
		parse: parseFootText,
	}
}

func (s *fileSource) Name() Source    { return s.name }
func (s *fileSource) Paths() []string { return []string{s.path} }

func (s *fileSource) Resolve() (Palette, error) {
	text, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Palette{}, ErrNotFound
		}
		return Palette{}, &ParseError{Path: s.path, Reason: "unreadable", Err: err}
	}
	colors := s.parse(text)
	if !colors.complete() {
		return Palette{}, &ParseError{Path: s.path, Reason: "missing background or foreground"}
	}
	return colors.palette(s.name), nil
}

// userConfigHome returns the user's XDG config root (not the omnote subdir).
func userConfigHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config")
}
