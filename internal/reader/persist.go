package reader

import (
	"context"
	"sync"
	"time"

	"github.com/facebookgo/clock"

	"github.com/ali6parmak/sezi/internal/document"
	"github.com/ali6parmak/sezi/internal/logger"
)

// Trigger names the event asking for a progress save.
type Trigger int

const (
	// TriggerDebounce coalesces cursor changes into one save after a quiet period.
	TriggerDebounce Trigger = iota
	// TriggerPeriodic fires on a fixed interval while the document is open.
	TriggerPeriodic
	// TriggerVisibility fires when the host surface is hidden.
	TriggerVisibility
	// TriggerUnload fires when the host process is about to exit.
	TriggerUnload
	// TriggerUnmount fires when the reading view closes; the save is awaited.
	TriggerUnmount
	// TriggerComplete fires once when playback runs off the end of the document.
	TriggerComplete
)

func (t Trigger) String() string {
	switch t {
	case TriggerDebounce:
		return "debounce"
	case TriggerPeriodic:
		return "periodic"
	case TriggerVisibility:
		return "visibility"
	case TriggerUnload:
		return "unload"
	case TriggerUnmount:
		return "unmount"
	case TriggerComplete:
		return "complete"
	}
	return "unknown"
}

const (
	DefaultDebounce     = 1000 * time.Millisecond
	DefaultSaveInterval = 10 * time.Second
)

// SaverConfig tunes a Saver. Zero values fall back to defaults.
type SaverConfig struct {
	Clock    clock.Clock
	Logger   *logger.Logger
	Debounce time.Duration
	Interval time.Duration
	Timeout  time.Duration
}

// Saver funnels every save trigger into one persistence call. Each save
// takes a fresh snapshot at the moment it runs, so a trigger never writes a
// cursor older than the one on screen.
type Saver struct {
	store    ProgressSaver
	snapshot func() document.Progress
	clock    clock.Clock
	log      *logger.Logger
	debounce time.Duration
	interval time.Duration
	timeout  time.Duration

	mu         sync.Mutex
	pending    *clock.Timer
	pendingGen uint64
	periodic   *clock.Timer
	started    bool
	closed     bool
	inflight   sync.WaitGroup
}

// NewSaver returns a Saver writing snapshot() to store. A nil store turns
// every trigger into a no-op.
func NewSaver(store ProgressSaver, snapshot func() document.Progress, cfg SaverConfig) *Saver {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSaveInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Saver{
		store:    store,
		snapshot: snapshot,
		clock:    cfg.Clock,
		log:      cfg.Logger,
		debounce: cfg.Debounce,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
	}
}

// Start arms the periodic save. Calling it twice has no effect.
func (s *Saver) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true
	s.periodic = s.clock.AfterFunc(s.interval, s.periodicFired)
}

func (s *Saver) periodicFired() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.periodic = s.clock.AfterFunc(s.interval, s.periodicFired)
	s.mu.Unlock()

	s.save(context.Background(), TriggerPeriodic)
}

// Request asks for a save. Debounce requests are coalesced; visibility and
// unload saves are dispatched without waiting; the rest complete before
// Request returns. Every trigger except the periodic one supersedes a
// pending debounced save.
func (s *Saver) Request(t Trigger) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	switch t {
	case TriggerDebounce:
		s.cancelPendingLocked()
		gen := s.pendingGen
		s.pending = s.clock.AfterFunc(s.debounce, func() { s.debounceFired(gen) })
		s.mu.Unlock()
		return
	case TriggerPeriodic:
		s.mu.Unlock()
		s.save(context.Background(), t)
		return
	case TriggerVisibility, TriggerUnload:
		s.cancelPendingLocked()
		s.inflight.Add(1)
		s.mu.Unlock()
		go func() {
			defer s.inflight.Done()
			s.save(context.Background(), t)
		}()
		return
	default:
		s.cancelPendingLocked()
		s.mu.Unlock()
		s.save(context.Background(), t)
	}
}

func (s *Saver) cancelPendingLocked() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.pendingGen++
}

func (s *Saver) debounceFired(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.pendingGen {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.mu.Unlock()

	s.save(context.Background(), TriggerDebounce)
}

// Close stops both timers and waits for dispatched saves to finish. A
// pending debounced save is dropped.
func (s *Saver) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.cancelPendingLocked()
		if s.periodic != nil {
			s.periodic.Stop()
			s.periodic = nil
		}
	}
	s.mu.Unlock()

	s.inflight.Wait()
}

func (s *Saver) save(ctx context.Context, t Trigger) {
	if s.store == nil {
		return
	}
	p := s.snapshot()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.SaveProgress(ctx, p); err != nil {
		s.log.Warn("progress save failed", "trigger", t.String(), "position", p.CurrentPosition, "error", err)
		return
	}
	s.log.Debug("progress saved", "trigger", t.String(), "page", p.CurrentPage, "position", p.CurrentPosition, "completed", p.Completed)
}

// Hidden saves immediately without waiting, for hosts whose surface was
// backgrounded.
func (r *Reader) Hidden() {
	r.saver.Request(TriggerVisibility)
}

// Unloading saves immediately without waiting, for hosts about to exit.
func (r *Reader) Unloading() {
	r.saver.Request(TriggerUnload)
}
