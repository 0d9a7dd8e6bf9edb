package theme

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// maxImportDepth caps recursion through alacritty `import` chains.
const maxImportDepth = 8

// AlacrittySource reads the user's alacritty configuration, following its
// import chain until the palette is complete.
type AlacrittySource struct {
	candidates []string
}

// NewAlacrittySource builds the candidate list the way alacritty itself
// searches: $ALACRITTY_CONFIG first, then the XDG locations, then the legacy
// home dotfile.
func NewAlacrittySource() *AlacrittySource {
	var candidates []string
	if p := os.Getenv("ALACRITTY_CONFIG"); p != "" {
		candidates = append(candidates, p)
	}
	dir := filepath.Join(userConfigHome(), "alacritty")
	candidates = append(candidates,
		filepath.Join(dir, "alacritty.toml"),
		filepath.Join(dir, "alacritty.yml"),
		filepath.Join(dir, "alacritty.yaml"),
	)
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".alacritty.yml"))
	}
	return &AlacrittySource{candidates: candidates}
}

// newAlacrittyFileSource wraps a single known alacritty file.
func newAlacrittyFileSource(path string) *AlacrittySource {
	return &AlacrittySource{candidates: []string{path}}
}

func (s *AlacrittySource) Name() Source { return SourceAlacritty }

func (s *AlacrittySource) Paths() []string {
	return append([]string(nil), s.candidates...)
}

func (s *AlacrittySource) Resolve() (Palette, error) {
	for _, path := range s.candidates {
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
		return colors.palette(SourceAlacritty), nil
	}
	return Palette{}, ErrNotFound
}

// loadAlacrittyFile decodes one file and fills missing colors from its
// imports, depth-capped and cycle-safe.
func loadAlacrittyFile(path string, visited map[string]bool, depth int) (colorSet, error) {
	if depth > maxImportDepth || visited[path] {
		return colorSet{}, nil
	}
	visited[path] = true

	raw, err := os.ReadFile(path)
	if err != nil {
		return colorSet{}, &ParseError{Path: path, Reason: "unreadable", Err: err}
	}

	root, err := decodeAlacritty(path, raw)
	if err != nil {
		return colorSet{}, err
	}

	colors := extractAlacrittyColors(root)
	if colors.complete() {
		return colors, nil
	}

	for _, imp := range importPaths(root, filepath.Dir(path)) {
		imported, err := loadAlacrittyFile(imp, visited, depth+1)
		if err != nil {
			// A broken import is skipped, matching alacritty's own tolerance.
			continue
		}
		colors.fillFrom(imported)
		if colors.complete() {
			break
		}
	}
	return colors, nil
}

func decodeAlacritty(path string, raw []byte) (map[string]any, error) {
	root := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(raw, &root); err != nil {
			return nil, &ParseError{Path: path, Reason: "invalid TOML", Err: err}
		}
	default:
		if err := yaml.Unmarshal(raw, &root); err != nil {
			return nil, &ParseError{Path: path, Reason: "invalid YAML", Err: err}
		}
	}
	return root, nil
}

func extractAlacrittyColors(root map[string]any) colorSet {
	var out colorSet
	colors := subMap(root, "colors")
	primary := subMap(colors, "primary")
	selection := subMap(colors, "selection")
	cursor := subMap(colors, "cursor")
	normal := subMap(colors, "normal")
	bright := subMap(colors, "bright")

	out.bg = normalized(primary, "background")
	out.fg = normalized(primary, "foreground")
	out.selBG = normalized(selection, "background")
	if out.selFG = normalized(selection, "text"); out.selFG == "" {
		out.selFG = normalized(selection, "foreground")
	}
	if out.cursor = normalized(cursor, "cursor"); out.cursor == "" {
		out.cursor = normalized(cursor, "text")
	}
	if out.cursor == "" {
		if out.cursor = normalized(bright, "white"); out.cursor == "" {
			out.cursor = normalized(normal, "white")
		}
	}
	return out
}

// importPaths returns the files referenced by `import` (TOML, alacritty
// >=0.13) or `imports` (legacy YAML), glob-expanded and made absolute
// relative to baseDir.
func importPaths(root map[string]any, baseDir string) []string {
	var entries []any
	for _, key := range []string{"import", "imports"} {
		if list, ok := root[key].([]any); ok {
			entries = append(entries, list...)
		}
	}
	if general, ok := root["general"].(map[string]any); ok {
		if list, ok := general["import"].([]any); ok {
			entries = append(entries, list...)
		}
	}

	var out []string
	for _, e := range entries {
		pattern, ok := e.(string)
		if !ok {
			continue
		}
		pattern = expandHome(pattern)
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(baseDir, pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil || len(matches) == 0 {
			// Not a glob hit; keep the literal path so a later creation
			// is still probed.
			out = append(out, pattern)
			continue
		}
		out = append(out, matches...)
	}
	return out
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

func subMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	if sub, ok := m[key].(map[string]any); ok {
		return sub
	}
	return nil
}

func normalized(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, ok := m[key].(string)
	if !ok {
		return ""
	}
	if v, ok := NormalizeColor(s); ok {
		return v
	}
	return ""
}
