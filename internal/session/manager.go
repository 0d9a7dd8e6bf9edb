package session

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Manager owns the in-memory session document. All mutations go through its
// methods under one mutex (single-writer discipline); every mutation
// schedules a debounced flush so cursor-move storms coalesce into one write.
// Flushes snapshot the document under the lock and write outside it, with at
// most one write in flight at a time.
type Manager struct {
	store          *Store
	interval       time.Duration
	log            zerolog.Logger
	onWriteFailure func(error)

	mu       sync.Mutex
	doc      *Document
	timer    *time.Timer
	dirty    bool
	readOnly bool

	flights singleflight.Group
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// FlushInterval is the debounce window between a mutation and its flush.
	FlushInterval time.Duration
	// OnWriteFailure receives an advisory after a write failed and its one
	// retry failed too. It must not block.
	OnWriteFailure func(error)
	Log            zerolog.Logger
}

// NewManager creates a session manager over a store.
func NewManager(store *Store, opts ManagerOptions) *Manager {
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 3 * time.Second
	}
	return &Manager{
		store:          store,
		interval:       opts.FlushInterval,
		log:            opts.Log,
		onWriteFailure: opts.OnWriteFailure,
		doc:            NewDocument(),
	}
}

// Restore loads the persisted session and reconciles it against the live
// filesystem. It never fails startup: lock contention downgrades to
// read-only, and a damaged state file was already reset by the store.
func (m *Manager) Restore() error {
	if err := m.store.Lock(); err != nil {
		m.log.Warn().Err(err).Msg("another process owns the session, flushes disabled")
		m.mu.Lock()
		m.readOnly = true
		m.mu.Unlock()
	}

	doc, err := m.store.Read()
	if err != nil {
		m.log.Warn().Err(err).Msg("session restore failed, starting empty")
		doc = NewDocument()
	}
	reconcile(doc, fileExists, m.log)

	m.mu.Lock()
	m.doc = doc
	m.dirty = false
	m.mu.Unlock()
	return nil
}

// reconcile validates each restored tab against the filesystem: a tab whose
// file vanished is dropped unless it carries unsaved content, in which case
// it is kept as an orphaned unsaved tab so no edit is silently lost.
func reconcile(doc *Document, exists func(string) bool, log zerolog.Logger) {
	kept := doc.Tabs[:0]
	newActive := -1
	for i, tab := range doc.Tabs {
		if tab.Path != "" && !exists(tab.Path) {
			if tab.Dirty && tab.UnsavedSnapshot != "" {
				log.Warn().Str("path", tab.Path).Msg("file gone, keeping orphaned unsaved tab")
				tab.Path = ""
			} else {
				log.Debug().Str("path", tab.Path).Msg("dropping tab for deleted file")
				continue
			}
		}
		if i == doc.ActiveTabIndex {
			newActive = len(kept)
		}
		kept = append(kept, tab)
	}
	doc.Tabs = kept

	switch {
	case len(kept) == 0:
		doc.ActiveTabIndex = -1
	case newActive >= 0:
		doc.ActiveTabIndex = newActive
	case doc.ActiveTabIndex >= len(kept):
		doc.ActiveTabIndex = len(kept) - 1
	case doc.ActiveTabIndex < 0:
		doc.ActiveTabIndex = 0
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Document returns a consistent snapshot of the current session state.
func (m *Manager) Document() *Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc.Clone()
}

// OpenTab appends a tab (path may be empty for an unsaved new tab), makes it
// active, and returns its index.
func (m *Manager) OpenTab(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc.Tabs = append(m.doc.Tabs, TabState{Path: path})
	m.doc.ActiveTabIndex = len(m.doc.Tabs) - 1
	m.scheduleFlushLocked()
	return m.doc.ActiveTabIndex
}

// CloseTab removes the tab at index i and re-points the active index.
func (m *Manager) CloseTab(i int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.validIndexLocked(i) {
		return
	}
	m.doc.Tabs = append(m.doc.Tabs[:i], m.doc.Tabs[i+1:]...)
	switch {
	case len(m.doc.Tabs) == 0:
		m.doc.ActiveTabIndex = -1
	case m.doc.ActiveTabIndex > i:
		m.doc.ActiveTabIndex--
	case m.doc.ActiveTabIndex >= len(m.doc.Tabs):
		m.doc.ActiveTabIndex = len(m.doc.Tabs) - 1
	}
	m.scheduleFlushLocked()
}

// SetActive selects the active tab. Out-of-range indices are ignored.
func (m *Manager) SetActive(i int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.validIndexLocked(i) {
		return
	}
	m.doc.ActiveTabIndex = i
	m.scheduleFlushLocked()
}

// MarkDirty flags whether the tab holds unsaved edits.
func (m *Manager) MarkDirty(i int, dirty bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.validIndexLocked(i) {
		return
	}
	m.doc.Tabs[i].Dirty = dirty
	if !dirty {
		m.doc.Tabs[i].UnsavedSnapshot = ""
	}
	m.scheduleFlushLocked()
}

// UpdateCursor records the tab's cursor and scroll offsets.
func (m *Manager) UpdateCursor(i, cursor, scroll int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.validIndexLocked(i) {
		return
	}
	m.doc.Tabs[i].Cursor = cursor
	m.doc.Tabs[i].Scroll = scroll
	m.scheduleFlushLocked()
}

// SetUnsavedSnapshot stores a recovery copy of the tab's unsaved content.
func (m *Manager) SetUnsavedSnapshot(i int, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.validIndexLocked(i) {
		return
	}
	m.doc.Tabs[i].UnsavedSnapshot = content
	m.scheduleFlushLocked()
}

// ReorderTab moves a tab from one position to another, keeping the active
// selection on the same tab.
func (m *Manager) ReorderTab(from, to int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.validIndexLocked(from) || !m.validIndexLocked(to) || from == to {
		return
	}
	active := m.doc.ActiveTabIndex
	tab := m.doc.Tabs[from]
	m.doc.Tabs = append(m.doc.Tabs[:from], m.doc.Tabs[from+1:]...)
	m.doc.Tabs = append(m.doc.Tabs[:to], append([]TabState{tab}, m.doc.Tabs[to:]...)...)

	switch {
	case active == from:
		m.doc.ActiveTabIndex = to
	case from < active && to >= active:
		m.doc.ActiveTabIndex--
	case from > active && to <= active:
		m.doc.ActiveTabIndex++
	}
	m.scheduleFlushLocked()
}

// SetGeometry records the window placement.
func (m *Manager) SetGeometry(g WindowGeometry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc.Geometry = g
	m.scheduleFlushLocked()
}

func (m *Manager) validIndexLocked(i int) bool {
	return i >= 0 && i < len(m.doc.Tabs)
}

// scheduleFlushLocked marks the document dirty and arms the flush timer if
// none is pending. A pending timer is left alone so sustained mutation still
// produces one write per interval instead of postponing the flush until a
// pause. Caller holds m.mu.
func (m *Manager) scheduleFlushLocked() {
	m.dirty = true
	if m.readOnly || m.timer != nil {
		return
	}
	m.timer = time.AfterFunc(m.interval, func() {
		m.mu.Lock()
		m.timer = nil
		m.mu.Unlock()
		// Failure is already surfaced through the advisory callback.
		_ = m.Flush()
	})
}

// Flush writes the current document now. Concurrent callers coalesce into
// the single in-flight write rather than queueing a second one. A caller may
// join a flight whose snapshot predates its own mutation, so Flush loops
// until the dirty bit is clear: it never returns success while unwritten
// state remains.
func (m *Manager) Flush() error {
	for {
		_, err, _ := m.flights.Do("flush", func() (any, error) {
			return nil, m.flush()
		})
		if err != nil {
			return err
		}
		m.mu.Lock()
		again := m.dirty && !m.readOnly
		m.mu.Unlock()
		if !again {
			return nil
		}
	}
}

func (m *Manager) flush() error {
	m.mu.Lock()
	if m.readOnly || !m.dirty {
		m.mu.Unlock()
		return nil
	}
	m.dirty = false
	snapshot := m.doc.Clone()
	m.mu.Unlock()

	err := m.store.Write(snapshot)
	if err != nil {
		m.log.Warn().Err(err).Msg("session write failed, retrying once")
		err = m.store.Write(snapshot)
	}
	if err == nil {
		return nil
	}

	// Keep the dirty bit so a later flush retries; the in-memory document is
	// never discarded.
	m.mu.Lock()
	m.dirty = true
	m.mu.Unlock()

	m.log.Error().Err(err).Msg("session write failed after retry")
	if m.onWriteFailure != nil {
		m.onWriteFailure(err)
	}
	return err
}

// Close forces a final flush, bounded by ctx: past the deadline shutdown
// proceeds anyway rather than hanging the process. The session lock is
// released either way.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- m.Flush() }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		m.log.Warn().Msg("shutdown flush timed out, exiting without it")
		err = ctx.Err()
	}

	m.store.Unlock()
	return err
}
