package document

import "math"

// averageWPM is the pace used for reading-time estimates.
const averageWPM = 225

// Stats summarises a document.
type Stats struct {
	TotalPages              int     `json:"total_pages"`
	TotalWords              int     `json:"total_words"`
	TotalSentences          int     `json:"total_sentences"`
	TotalCharacters         int     `json:"total_characters"`
	EstimatedReadingMinutes float64 `json:"estimated_reading_time_minutes"`
}

// ComputeStats walks every page once.
func ComputeStats(d *Document) Stats {
	var st Stats
	if d == nil {
		return st
	}
	st.TotalPages = len(d.Pages)
	for _, p := range d.Pages {
		st.TotalWords += len(p.Words)
		st.TotalSentences += len(p.Sentences)
		st.TotalCharacters += len([]rune(p.Text))
	}
	st.EstimatedReadingMinutes = math.Round(float64(st.TotalWords)/averageWPM*10) / 10
	return st
}
