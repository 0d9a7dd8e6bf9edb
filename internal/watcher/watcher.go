// Package watcher wraps fsnotify with target registration and debounced
// delivery, so consumers see one coalesced notification per burst of
// filesystem events.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Event carries the union of paths that changed within one debounce window.
type Event struct {
	Paths []string
}

// Watcher monitors a set of files and directories on its own goroutine.
// Registered files need not exist yet: their parent directory is watched so
// creation is observable. Notifications are delivered through a buffered
// channel the consumer drains at its own pace; when the consumer lags,
// pending changes merge into the next delivery instead of queueing.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	log      zerolog.Logger

	events   chan Event
	done     chan struct{}
	finished chan struct{}
	once     sync.Once

	mu          sync.Mutex
	fileTargets map[string]struct{}
	dirTargets  map[string]struct{}
	watched     map[string]struct{}
}

// New creates a watcher with the given debounce window and starts its
// delivery goroutine. Setup failure (inotify resource limits, unsupported
// filesystems) is returned to the owner, who decides how to degrade.
func New(debounce time.Duration, log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch setup failed: %w", err)
	}

	w := &Watcher{
		fsw:         fsw,
		debounce:    debounce,
		log:         log,
		events:      make(chan Event, 16),
		done:        make(chan struct{}),
		finished:    make(chan struct{}),
		fileTargets: make(map[string]struct{}),
		dirTargets:  make(map[string]struct{}),
		watched:     make(map[string]struct{}),
	}
	go w.run()
	return w, nil
}

// Add registers a path. An existing directory is watched directly; anything
// else is treated as a file target and its parent directory is watched, so
// the target's later creation still produces an event.
func (w *Watcher) Add(path string) error {
	path = filepath.Clean(path)
	w.mu.Lock()
	defer w.mu.Unlock()

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		w.dirTargets[path] = struct{}{}
		return w.watchLocked(path)
	}

	w.fileTargets[path] = struct{}{}
	return w.watchLocked(filepath.Dir(path))
}

func (w *Watcher) watchLocked(dir string) error {
	if _, ok := w.watched[dir]; ok {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.watched[dir] = struct{}{}
	w.log.Debug().Str("dir", dir).Msg("watching")
	return nil
}

// Events returns the notification channel. It is closed when the watcher
// stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops the delivery goroutine and releases the fsnotify handle. It
// returns once the goroutine has exited.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		<-w.finished
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.finished)
	defer close(w.events)

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	arm := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerC = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timerC:
			default:
			}
		}
		timer.Reset(w.debounce)
	}

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev.Name) {
				continue
			}
			pending[filepath.Clean(ev.Name)] = struct{}{}
			arm()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("filesystem watch error")

		case <-timerC:
			timer = nil
			timerC = nil
			if len(pending) == 0 {
				continue
			}
			select {
			case w.events <- Event{Paths: sortedPaths(pending)}:
				pending = make(map[string]struct{})
			default:
				// Consumer is behind; merge this batch into the next window.
				arm()
			}

		case <-w.done:
			return
		}
	}
}

// relevant reports whether a raw fsnotify event concerns a registered target.
func (w *Watcher) relevant(name string) bool {
	name = filepath.Clean(name)
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.fileTargets[name]; ok {
		return true
	}
	for dir := range w.dirTargets {
		if name == dir || strings.HasPrefix(name, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func sortedPaths(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
