package reader

import (
	"testing"
	"time"

	"github.com/ali6parmak/sezi/internal/document"
)

func TestBionic(t *testing.T) {
	tests := []struct {
		word                     string
		highlighted, rest, punct string
	}{
		{"", "", "", ""},
		{"a", "a", "", ""},
		{"a.", "a", "", "."},
		{"an", "a", "n", ""},
		{"the", "th", "e", ""},
		{"word", "wo", "rd", ""},
		{"reading", "read", "ing", ""},
		{"reading?!", "read", "ing", "?!"},
		{"...", "", "", "..."},
		{"naïve,", "naï", "ve", ","},
		{"don't", "don", "'t", ""},
	}

	for _, tt := range tests {
		got := Bionic(tt.word)
		if got.Highlighted != tt.highlighted || got.Rest != tt.rest || got.Punctuation != tt.punct {
			t.Errorf("Bionic(%q) = %+v, want {%q %q %q}", tt.word, got, tt.highlighted, tt.rest, tt.punct)
		}
		if got.String() != tt.word {
			t.Errorf("Bionic(%q).String() = %q", tt.word, got.String())
		}
	}
}

func TestBionicLine(t *testing.T) {
	line := BionicLine("Speed reading, done.")
	if len(line) != 3 {
		t.Fatalf("len = %d, want 3", len(line))
	}
	if line[1].Highlighted != "read" || line[1].Punctuation != "," {
		t.Errorf("line[1] = %+v", line[1])
	}
	if FocusWidth("reading") != 4 {
		t.Errorf("FocusWidth(reading) = %d, want 4", FocusWidth("reading"))
	}
}

func TestStepDelay(t *testing.T) {
	tests := []struct {
		wpm  int
		mode document.Mode
		unit string
		want time.Duration
	}{
		{600, document.ModeWord, "word", 100 * time.Millisecond},
		{250, document.ModeWord, "word", 240 * time.Millisecond},
		{0, document.ModeWord, "word", 240 * time.Millisecond},
		{600, document.ModeSentence, "one two three four five", 400 * time.Millisecond},
		{300, document.ModePage, "a b c d e f g h i j", 2 * time.Second},
		{600, document.ModeSentence, "", 80 * time.Millisecond},
		{10, document.ModeWord, "x", 1200 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := StepDelay(tt.wpm, tt.mode, tt.unit); got != tt.want {
			t.Errorf("StepDelay(%d, %s, %q) = %v, want %v", tt.wpm, tt.mode, tt.unit, got, tt.want)
		}
	}
}

func TestPointerFraction(t *testing.T) {
	tests := []struct {
		x, left, width float64
		want           float64
	}{
		{50, 0, 100, 0.5},
		{10, 10, 100, 0},
		{-5, 0, 100, 0},
		{300, 0, 100, 1},
		{50, 0, 0, 0},
		{35, 10, 50, 0.5},
	}

	for _, tt := range tests {
		if got := PointerFraction(tt.x, tt.left, tt.width); got != tt.want {
			t.Errorf("PointerFraction(%v, %v, %v) = %v, want %v", tt.x, tt.left, tt.width, got, tt.want)
		}
	}
}

func TestSeek(t *testing.T) {
	doc := testDoc(5, 0, 3)

	tests := []struct {
		fraction float64
		mode     document.Mode
		want     document.Cursor
	}{
		{0.5, document.ModeWord, document.Cursor{Page: 1, Index: 4, Mode: document.ModeWord}},
		{0, document.ModeWord, document.Cursor{Page: 1, Index: 0, Mode: document.ModeWord}},
		{0.7, document.ModeWord, document.Cursor{Page: 3, Index: 0, Mode: document.ModeWord}},
		{1, document.ModeWord, document.Cursor{Page: 3, Index: 2, Mode: document.ModeWord}},
		{1.5, document.ModeWord, document.Cursor{Page: 3, Index: 2, Mode: document.ModeWord}},
		{0.5, document.ModePage, document.Cursor{Page: 1, Index: 0, Mode: document.ModePage}},
		{0.9, document.ModeSentence, document.Cursor{Page: 3, Index: 0, Mode: document.ModeSentence}},
	}

	for _, tt := range tests {
		if got := Seek(doc, tt.fraction, tt.mode); got != tt.want {
			t.Errorf("Seek(%v, %s) = %v, want %v", tt.fraction, tt.mode, got, tt.want)
		}
	}
}

func TestSeekSentenceOnMultiSentencePage(t *testing.T) {
	// page 2 holds three five-word sentences after four words on page 1
	doc := testDoc(4, 15)

	tests := []struct {
		name     string
		fraction float64
		want     document.Cursor
	}{
		{"inside page 1", 0.1, document.Cursor{Page: 1, Index: 0}},
		{"start of page 2", 0.25, document.Cursor{Page: 2, Index: 0}},
		{"middle sentence", 0.5, document.Cursor{Page: 2, Index: 1}},
		{"last sentence", 0.8, document.Cursor{Page: 2, Index: 2}},
		{"last word of last sentence", 18.0 / 19, document.Cursor{Page: 2, Index: 2}},
		{"end clamps to last sentence", 1, document.Cursor{Page: 2, Index: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want.Mode = document.ModeSentence
			if got := Seek(doc, tt.fraction, document.ModeSentence); got != tt.want {
				t.Errorf("Seek(%v) = %v, want %v", tt.fraction, got, tt.want)
			}
		})
	}
}

func TestReaderSeekStopsPlayback(t *testing.T) {
	r, _, _ := newTestReader(t, testDoc(5, 0, 3), nil, 600)

	r.Play()
	r.SeekPointer(60, 10, 100)

	v := r.View()
	if v.Playing {
		t.Error("seek left playback running")
	}
	if v.Cursor.Page != 1 || v.Cursor.Index != 4 || v.Absolute != 4 {
		t.Errorf("view = %+v, want page 1 index 4", v)
	}
}

func TestSessionTracker(t *testing.T) {
	var s sessionTracker
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, ok := s.stop(t0, "d"); ok {
		t.Error("stop without start reported a session")
	}

	s.start(t0)
	s.add(3)
	s.start(t0.Add(time.Hour))
	s.add(2)
	st, ok := s.stop(t0.Add(2600*time.Millisecond), "d")
	if !ok {
		t.Fatal("session not reported")
	}
	if st.WordsRead != 5 || st.TimeSpentSeconds != 3 || st.DocumentID != "d" {
		t.Errorf("stats = %+v", st)
	}

	s.add(4)
	if _, ok := s.stop(t0, "d"); ok {
		t.Error("words added while stopped were counted")
	}
}
