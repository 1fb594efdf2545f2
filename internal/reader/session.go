package reader

import (
	"math"
	"time"

	"github.com/ali6parmak/sezi/internal/document"
)

// sessionTracker counts words and time over one contiguous playback run.
type sessionTracker struct {
	active  bool
	started time.Time
	words   int
}

func (s *sessionTracker) start(now time.Time) {
	if s.active {
		return
	}
	s.active = true
	s.started = now
	s.words = 0
}

func (s *sessionTracker) add(n int) {
	if s.active {
		s.words += n
	}
}

// stop ends the run and returns its totals. ok is false when nothing was
// read, in which case nothing should be recorded.
func (s *sessionTracker) stop(now time.Time, docID string) (document.SessionStats, bool) {
	if !s.active {
		return document.SessionStats{}, false
	}
	words := s.words
	elapsed := math.Round(now.Sub(s.started).Seconds())
	*s = sessionTracker{}
	if words == 0 {
		return document.SessionStats{}, false
	}
	return document.SessionStats{
		DocumentID:       docID,
		WordsRead:        words,
		TimeSpentSeconds: int(elapsed),
	}, true
}
