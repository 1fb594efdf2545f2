package reader

import (
	"context"
	"time"

	"github.com/ali6parmak/sezi/internal/document"
)

// sentenceFactor shortens per-word time in sentence mode; whole sentences
// read faster than isolated words.
const sentenceFactor = 0.8

// StepDelay returns how long unit stays on screen at wpm in mode.
func StepDelay(wpm int, mode document.Mode, unit string) time.Duration {
	base := 60000.0 / float64(ClampWPM(wpm))
	words := document.WordCount(unit)
	if words < 1 {
		words = 1
	}

	var ms float64
	switch mode {
	case document.ModeSentence:
		ms = base * float64(words) * sentenceFactor
	case document.ModePage:
		ms = base * float64(words)
	default:
		ms = base
	}
	return time.Duration(ms * float64(time.Millisecond))
}

// consumedWords is how many words showing unit counts toward the session.
func consumedWords(mode document.Mode, unit string) int {
	if mode == document.ModeWord {
		return 1
	}
	return document.WordCount(unit)
}

// Playing reports whether the scheduler is running.
func (r *Reader) Playing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playing
}

// Play starts advancing from the current unit. A cursor resting on a page
// without content moves to the next page that has some; with none left the
// reader stays stopped.
func (r *Reader) Play() {
	r.mu.Lock()
	if r.closed || r.playing {
		r.mu.Unlock()
		return
	}
	moved := false
	if document.UnitCount(r.doc, r.cursor.Page, r.cursor.Mode) == 0 {
		p := document.NextContentPage(r.doc, r.cursor.Page)
		if p == 0 {
			r.mu.Unlock()
			return
		}
		r.cursor = document.Cursor{Page: p, Mode: r.cursor.Mode}
		moved = true
	}
	r.playing = true
	r.session.start(r.clock.Now())
	r.scheduleLocked()
	v := r.viewLocked()
	r.mu.Unlock()

	r.log.Debug("playback started", "cursor", v.Cursor.String(), "wpm", v.WPM)
	if moved {
		r.saver.Request(TriggerDebounce)
	}
	r.notify(v)
}

// Pause stops advancing and flushes the session statistics.
func (r *Reader) Pause() {
	r.mu.Lock()
	if r.closed || !r.playing {
		r.mu.Unlock()
		return
	}
	r.stopLocked(true)
	v := r.viewLocked()
	r.mu.Unlock()

	r.log.Debug("playback paused", "cursor", v.Cursor.String())
	r.notify(v)
}

// Toggle flips between playing and paused.
func (r *Reader) Toggle() {
	if r.Playing() {
		r.Pause()
		return
	}
	r.Play()
}

// scheduleLocked replaces any pending step with a fresh one. Exactly one
// timer is outstanding while playing.
func (r *Reader) scheduleLocked() {
	r.cancelTimerLocked()
	gen := r.gen
	units := document.Units(r.doc, r.cursor.Page, r.cursor.Mode)
	unit := ""
	if r.cursor.Index < len(units) {
		unit = units[r.cursor.Index]
	}
	r.timer = r.clock.AfterFunc(StepDelay(r.wpm, r.cursor.Mode, unit), func() {
		r.tick(gen)
	})
}

func (r *Reader) cancelTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.gen++
}

// stopLocked halts playback and closes the stats session. With async set a
// finished session is flushed in the background; otherwise it is returned
// for the caller to record.
func (r *Reader) stopLocked(async bool) (document.SessionStats, bool) {
	r.cancelTimerLocked()
	if !r.playing {
		return document.SessionStats{}, false
	}
	r.playing = false
	st, ok := r.session.stop(r.clock.Now(), r.doc.ID)
	if ok && async {
		r.inflight.Add(1)
		go func() {
			defer r.inflight.Done()
			ctx, cancel := context.WithTimeout(context.Background(), r.saveTimeout)
			defer cancel()
			r.recordStats(ctx, st)
		}()
		return document.SessionStats{}, false
	}
	return st, ok
}

func (r *Reader) recordStats(ctx context.Context, st document.SessionStats) {
	if r.stats == nil {
		return
	}
	if err := r.stats.RecordStats(ctx, st); err != nil {
		r.log.Warn("stats flush failed", "words_read", st.WordsRead, "error", err)
		return
	}
	r.log.Debug("stats flushed", "words_read", st.WordsRead, "seconds", st.TimeSpentSeconds)
}

// tick runs when a step delay elapses. A callback from a cancelled
// schedule finds a newer generation and does nothing.
func (r *Reader) tick(gen uint64) {
	r.mu.Lock()
	if r.closed || !r.playing || gen != r.gen {
		r.mu.Unlock()
		return
	}
	r.timer = nil

	units := document.Units(r.doc, r.cursor.Page, r.cursor.Mode)
	completed := false
	switch {
	case len(units) == 0:
		if p := document.NextContentPage(r.doc, r.cursor.Page); p != 0 {
			r.cursor = document.Cursor{Page: p, Mode: r.cursor.Mode}
			r.scheduleLocked()
		} else {
			r.stopLocked(true)
		}
	case r.cursor.Index+1 < len(units):
		r.session.add(consumedWords(r.cursor.Mode, units[r.cursor.Index]))
		r.cursor.Index++
		r.scheduleLocked()
	default:
		r.session.add(consumedWords(r.cursor.Mode, units[len(units)-1]))
		if p := document.NextContentPage(r.doc, r.cursor.Page); p != 0 {
			r.cursor = document.Cursor{Page: p, Mode: r.cursor.Mode}
			r.scheduleLocked()
		} else {
			r.completed = true
			completed = true
			r.stopLocked(true)
		}
	}
	v := r.viewLocked()
	r.mu.Unlock()

	if completed {
		r.log.Info("document completed", "words", v.TotalWords)
		r.saver.Request(TriggerComplete)
	} else if v.Playing {
		r.saver.Request(TriggerDebounce)
	}
	r.notify(v)
}
