// Package reader provides the paced reading engine: a timer-driven cursor
// over a paginated document with seeking, session statistics and resumable
// progress.
package reader

import (
	"context"
	"sync"
	"time"

	"github.com/facebookgo/clock"

	"github.com/ali6parmak/sezi/internal/document"
	"github.com/ali6parmak/sezi/internal/logger"
)

const (
	MinWPM     = 50
	MaxWPM     = 800
	DefaultWPM = 250
	WPMStep    = 25
)

// ProgressSaver persists reading progress. Repeated saves of the same
// record must be a no-op, and an unknown document is created on first write.
type ProgressSaver interface {
	SaveProgress(ctx context.Context, p document.Progress) error
}

// StatsRecorder adds one playback session to the running totals.
type StatsRecorder interface {
	RecordStats(ctx context.Context, s document.SessionStats) error
}

// Options configure a Reader. Zero values fall back to defaults.
type Options struct {
	WPM   int
	Mode  document.Mode
	Clock clock.Clock

	Progress ProgressSaver
	Stats    StatsRecorder
	Logger   *logger.Logger

	DebounceDelay time.Duration
	SaveInterval  time.Duration
	SaveTimeout   time.Duration

	// OnChange is called outside the engine lock after every state change,
	// including scheduler ticks on the timer goroutine.
	OnChange func(View)
}

// View is a derived, read-only picture of the reader at one instant.
type View struct {
	Cursor     document.Cursor
	Unit       string
	UnitCount  int
	PageCount  int
	Playing    bool
	WPM        int
	Absolute   int
	TotalWords int
	Completed  bool
}

// Percent returns progress through the document in [0, 100].
func (v View) Percent() float64 {
	if v.TotalWords == 0 {
		return 0
	}
	return float64(v.Absolute) / float64(v.TotalWords) * 100
}

// Reader holds the state for one open document.
type Reader struct {
	doc         *document.Document
	clock       clock.Clock
	log         *logger.Logger
	stats       StatsRecorder
	onChange    func(View)
	saver       *Saver
	saveTimeout time.Duration

	mu        sync.Mutex
	cursor    document.Cursor
	wpm       int
	playing   bool
	completed bool
	closed    bool
	timer     *clock.Timer
	gen       uint64
	session   sessionTracker
	inflight  sync.WaitGroup
}

// NewReader opens doc at the saved position, if any, and starts the
// periodic progress save. The saved absolute offset is authoritative; page
// and index are re-derived from it for the active mode.
func NewReader(doc *document.Document, saved *document.Progress, opts Options) (*Reader, error) {
	if !doc.HasContent() {
		return nil, document.ErrNoContent
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 5 * time.Second
	}

	mode := opts.Mode
	offset := 0
	completed := false
	if saved != nil {
		if m, err := document.ParseMode(string(saved.ReadingMode)); err == nil && saved.ReadingMode != "" {
			mode = m
		}
		offset = saved.CurrentPosition
		completed = saved.Completed
	}
	if mode == "" {
		mode = document.ModeWord
	}
	page, index := document.FromAbsolute(doc, offset, mode)

	r := &Reader{
		doc:         doc,
		clock:       opts.Clock,
		log:         opts.Logger.With("document_id", doc.ID),
		stats:       opts.Stats,
		onChange:    opts.OnChange,
		saveTimeout: opts.SaveTimeout,
		cursor:      document.Cursor{Page: page, Index: index, Mode: mode},
		wpm:         ClampWPM(opts.WPM),
		completed:   completed,
	}
	r.saver = NewSaver(opts.Progress, r.Progress, SaverConfig{
		Clock:    opts.Clock,
		Logger:   r.log,
		Debounce: opts.DebounceDelay,
		Interval: opts.SaveInterval,
		Timeout:  opts.SaveTimeout,
	})
	r.saver.Start()
	return r, nil
}

// ClampWPM bounds a reading speed to [MinWPM, MaxWPM]; zero means default.
func ClampWPM(wpm int) int {
	switch {
	case wpm == 0:
		return DefaultWPM
	case wpm < MinWPM:
		return MinWPM
	case wpm > MaxWPM:
		return MaxWPM
	}
	return wpm
}

// Document returns the open document.
func (r *Reader) Document() *document.Document {
	return r.doc
}

// Saver exposes the persistence manager so hosts can forward visibility and
// unload events.
func (r *Reader) Saver() *Saver {
	return r.saver
}

// View returns the current derived state.
func (r *Reader) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewLocked()
}

func (r *Reader) viewLocked() View {
	units := document.Units(r.doc, r.cursor.Page, r.cursor.Mode)
	v := View{
		Cursor:     r.cursor,
		UnitCount:  len(units),
		PageCount:  r.doc.PageCount(),
		Playing:    r.playing,
		WPM:        r.wpm,
		Absolute:   document.ToAbsolute(r.doc, r.cursor.Page, r.cursor.Index, r.cursor.Mode),
		TotalWords: r.doc.TotalWords(),
		Completed:  r.completed,
	}
	if r.cursor.Index >= 0 && r.cursor.Index < len(units) {
		v.Unit = units[r.cursor.Index]
	}
	return v
}

// Progress is the record every save trigger writes. It always reflects the
// cursor at call time.
func (r *Reader) Progress() document.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return document.Progress{
		DocumentID:      r.doc.ID,
		CurrentPage:     r.cursor.Page,
		CurrentPosition: document.ToAbsolute(r.doc, r.cursor.Page, r.cursor.Index, r.cursor.Mode),
		ReadingMode:     r.cursor.Mode,
		Completed:       r.completed,
	}
}

func (r *Reader) notify(v View) {
	if r.onChange != nil {
		r.onChange(v)
	}
}

// navigate stops playback, applies move under the lock and, when the cursor
// changed, schedules a debounced save.
func (r *Reader) navigate(move func() bool) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.stopLocked(true)
	moved := move()
	if moved {
		r.completed = false
	}
	v := r.viewLocked()
	r.mu.Unlock()

	if moved {
		r.saver.Request(TriggerDebounce)
	}
	r.notify(v)
}

func (r *Reader) setCursorLocked(c document.Cursor) bool {
	c = document.ClampCursor(r.doc, c)
	if c == r.cursor {
		return false
	}
	r.cursor = c
	return true
}

// NextPage moves to the first unit of the next page with content.
func (r *Reader) NextPage() {
	r.navigate(func() bool {
		p := document.NextContentPage(r.doc, r.cursor.Page)
		if p == 0 {
			return false
		}
		return r.setCursorLocked(document.Cursor{Page: p, Mode: r.cursor.Mode})
	})
}

// PrevPage moves to the first unit of the previous page with content.
func (r *Reader) PrevPage() {
	r.navigate(func() bool {
		p := document.PrevContentPage(r.doc, r.cursor.Page)
		if p == 0 {
			return false
		}
		return r.setCursorLocked(document.Cursor{Page: p, Mode: r.cursor.Mode})
	})
}

// JumpToPage moves to page n, clamped to the document, landing on the
// nearest page with content.
func (r *Reader) JumpToPage(n int) {
	r.navigate(func() bool {
		return r.setCursorLocked(document.Cursor{Page: n, Mode: r.cursor.Mode})
	})
}

// StepForward shows the next unit, crossing into the next content page.
func (r *Reader) StepForward() {
	r.navigate(func() bool {
		if r.cursor.Index+1 < document.UnitCount(r.doc, r.cursor.Page, r.cursor.Mode) {
			return r.setCursorLocked(document.Cursor{Page: r.cursor.Page, Index: r.cursor.Index + 1, Mode: r.cursor.Mode})
		}
		p := document.NextContentPage(r.doc, r.cursor.Page)
		if p == 0 {
			return false
		}
		return r.setCursorLocked(document.Cursor{Page: p, Mode: r.cursor.Mode})
	})
}

// StepBack shows the previous unit, crossing into the last unit of the
// previous content page.
func (r *Reader) StepBack() {
	r.navigate(func() bool {
		if r.cursor.Index > 0 {
			return r.setCursorLocked(document.Cursor{Page: r.cursor.Page, Index: r.cursor.Index - 1, Mode: r.cursor.Mode})
		}
		p := document.PrevContentPage(r.doc, r.cursor.Page)
		if p == 0 {
			return false
		}
		last := document.UnitCount(r.doc, p, r.cursor.Mode) - 1
		return r.setCursorLocked(document.Cursor{Page: p, Index: last, Mode: r.cursor.Mode})
	})
}

// SetMode switches granularity. The index resets to the start of the page
// because an index in one mode means nothing in another.
func (r *Reader) SetMode(m document.Mode) {
	r.mu.Lock()
	same := m == r.cursor.Mode
	r.mu.Unlock()
	if same {
		return
	}
	r.navigate(func() bool {
		return r.setCursorLocked(document.Cursor{Page: r.cursor.Page, Mode: m})
	})
}

// CycleMode switches to the next mode in word, sentence, page order.
func (r *Reader) CycleMode() {
	r.SetMode(r.View().Cursor.Mode.Next())
}

// Restart returns to the first readable unit.
func (r *Reader) Restart() {
	r.navigate(func() bool {
		return r.setCursorLocked(document.Cursor{Page: document.FirstContentPage(r.doc), Mode: r.cursor.Mode})
	})
}

// SetWPM changes the reading speed. A delay already pending keeps its
// length; the new speed applies from the next scheduled step.
func (r *Reader) SetWPM(wpm int) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.wpm = ClampWPM(wpm)
	v := r.viewLocked()
	r.mu.Unlock()
	r.notify(v)
}

// AdjustWPM changes the reading speed by delta.
func (r *Reader) AdjustWPM(delta int) {
	r.SetWPM(r.View().WPM + delta)
}

// Close stops playback, flushes session statistics, awaits a final progress
// save and waits for fire-and-forget writes still in flight.
func (r *Reader) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	st, flush := r.stopLocked(false)
	r.closed = true
	v := r.viewLocked()
	r.mu.Unlock()

	if flush {
		r.recordStats(ctx, st)
	}
	r.saver.Request(TriggerUnmount)
	r.saver.Close()

	done := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	r.notify(v)
	return nil
}
