// Package session persists the editor's open tabs and window geometry in a
// crash-safe JSON document, and maintains the in-memory model the UI
// mutates.
package session

import "fmt"

// TabState describes one open tab. Path is empty for an unsaved new tab.
// UnsavedSnapshot is a recovery copy of unsaved buffer content; the live
// buffer itself is owned by the editor widget, never by this package.
type TabState struct {
	Path            string `json:"path,omitempty"`
	Dirty           bool   `json:"dirty"`
	Cursor          int    `json:"cursor"`
	Scroll          int    `json:"scroll"`
	UnsavedSnapshot string `json:"unsavedSnapshot,omitempty"`
}

// WindowGeometry is the last known window placement.
type WindowGeometry struct {
	Width     int  `json:"w"`
	Height    int  `json:"h"`
	X         int  `json:"x"`
	Y         int  `json:"y"`
	Maximized bool `json:"maximized"`
}

// Document is the persisted session state. Tab order is tab-bar order.
type Document struct {
	Version        int            `json:"version"`
	ActiveTabIndex int            `json:"activeTabIndex"`
	Geometry       WindowGeometry `json:"geometry"`
	Tabs           []TabState     `json:"tabs"`
}

// NewDocument returns an empty document at the current schema version.
func NewDocument() *Document {
	return &Document{
		Version:        CurrentVersion,
		ActiveTabIndex: -1,
		Tabs:           []TabState{},
	}
}

// Validate enforces the document invariants: a sane schema version and an
// active index that is either -1 (no tabs) or a valid tab position.
func (d *Document) Validate() error {
	if d.Version < 1 || d.Version > CurrentVersion {
		return fmt.Errorf("unsupported schema version %d", d.Version)
	}
	if d.ActiveTabIndex < -1 || d.ActiveTabIndex >= len(d.Tabs) {
		return fmt.Errorf("active tab index %d out of range for %d tabs", d.ActiveTabIndex, len(d.Tabs))
	}
	if len(d.Tabs) > 0 && d.ActiveTabIndex == -1 {
		return fmt.Errorf("active tab index -1 with %d tabs", len(d.Tabs))
	}
	return nil
}

// Clone returns a deep copy, used to flush a consistent snapshot while
// mutations continue.
func (d *Document) Clone() *Document {
	copied := *d
	copied.Tabs = make([]TabState, len(d.Tabs))
	copy(copied.Tabs, d.Tabs)
	return &copied
}
