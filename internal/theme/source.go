package theme

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by a source whose backing file or variables are
// absent. Absence is a normal, expected condition during cascade probing and
// is never logged.
var ErrNotFound = errors.New("theme source not found")

// ParseError reports a source that exists but holds malformed or incomplete
// content. The resolver logs it and continues to the next source.
type ParseError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.Path, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ThemeSource is one entry in the resolution cascade. Implementations are
// stateless readers: Resolve is a pure function of the current file or
// environment contents.
type ThemeSource interface {
	// Name is the source tag stamped onto resolved palettes.
	Name() Source
	// Paths lists the filesystem locations to watch for live updates.
	// Entries may not exist yet; the watcher handles pending creation.
	Paths() []string
	// Resolve reads the source and produces a palette, ErrNotFound when the
	// source is absent, or *ParseError when it is present but unusable.
	Resolve() (Palette, error)
}
