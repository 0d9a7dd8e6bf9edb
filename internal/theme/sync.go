package theme

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/omnote/omnote/internal/watcher"
)

// subscription wraps a callback to enable pointer comparison for removal.
type subscription struct {
	fn func(Palette)
}

// SyncService owns the resolved palette and keeps it current while theme
// source files change on disk. It is the palette's single writer; consumers
// read through Current or receive pushes through Subscribe.
type SyncService struct {
	resolver *Resolver
	log      zerolog.Logger
	liveSync bool
	debounce time.Duration

	mu          sync.Mutex
	current     Palette
	started     bool
	subscribers []*subscription
	w           *watcher.Watcher
	loopDone    chan struct{}
}

// SyncOptions configures a SyncService.
type SyncOptions struct {
	// LiveSync enables filesystem watching. When false the palette is
	// resolved once at Start and stays fixed until an explicit Refresh.
	LiveSync bool
	// Debounce is the quiet window used to coalesce filesystem bursts.
	Debounce time.Duration
	Log      zerolog.Logger
}

// NewSyncService creates the service around a resolver.
func NewSyncService(resolver *Resolver, opts SyncOptions) *SyncService {
	if opts.Debounce <= 0 {
		opts.Debounce = 150 * time.Millisecond
	}
	return &SyncService{
		resolver: resolver,
		log:      opts.Log,
		liveSync: opts.LiveSync,
		debounce: opts.Debounce,
	}
}

// Start resolves and publishes the initial palette, then attempts to start
// watching every source path. Watch setup failure is not an error: the
// service logs a warning and stays in one-shot mode, since live sync is a
// best-effort enhancement rather than a correctness requirement.
func (s *SyncService) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.Refresh()

	if !s.liveSync {
		s.log.Debug().Msg("live theme sync disabled, one-shot resolution only")
		return
	}

	w, err := watcher.New(s.debounce, s.log)
	if err != nil {
		s.log.Warn().Err(err).Msg("theme watch setup failed, palette fixed until restart")
		return
	}

	added := 0
	for _, path := range s.resolver.WatchPaths() {
		if err := w.Add(path); err != nil {
			s.log.Debug().Str("path", path).Err(err).Msg("cannot watch theme path")
			continue
		}
		added++
	}
	if added == 0 {
		s.log.Warn().Msg("no theme paths watchable, palette fixed until restart")
		_ = w.Close()
		return
	}

	s.mu.Lock()
	s.w = w
	s.loopDone = make(chan struct{})
	loopDone := s.loopDone
	s.mu.Unlock()

	go func() {
		defer close(loopDone)
		for ev := range w.Events() {
			s.log.Debug().Strs("paths", ev.Paths).Msg("theme sources changed")
			s.Refresh()
		}
	}()
}

// Refresh re-runs the cascade. A palette value-equal to the published one is
// suppressed; otherwise the new palette is stored and pushed to subscribers.
// Returns the (possibly unchanged) current palette.
func (s *SyncService) Refresh() Palette {
	pal := s.resolver.Resolve()

	s.mu.Lock()
	if s.current.Equal(pal) && s.current != (Palette{}) {
		s.mu.Unlock()
		s.log.Debug().Str("source", string(pal.Source)).Msg("palette unchanged, publish suppressed")
		return pal
	}
	s.current = pal
	subs := make([]*subscription, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	s.log.Info().Str("source", string(pal.Source)).Str("palette", pal.String()).Msg("palette published")
	for _, sub := range subs {
		s.notify(sub, pal)
	}
	return pal
}

// notify delivers one palette to one subscriber. A panicking subscriber must
// not take down the service or starve the other subscribers.
func (s *SyncService) notify(sub *subscription, pal Palette) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Any("panic", r).Msg("palette subscriber panicked")
		}
	}()
	sub.fn(pal)
}

// Current returns the last published palette.
func (s *SyncService) Current() Palette {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers a callback for palette changes and returns its
// unsubscribe function.
func (s *SyncService) Subscribe(fn func(Palette)) func() {
	sub := &subscription{fn: fn}

	s.mu.Lock()
	s.subscribers = append(s.subscribers, sub)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, cur := range s.subscribers {
			if cur == sub {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Stop tears down the watcher and waits for the delivery loop to exit,
// bounded by ctx. The last resolved palette stays available through Current.
func (s *SyncService) Stop(ctx context.Context) error {
	s.mu.Lock()
	w := s.w
	loopDone := s.loopDone
	s.w = nil
	s.loopDone = nil
	s.mu.Unlock()

	if w == nil {
		return nil
	}
	_ = w.Close()

	select {
	case <-loopDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
