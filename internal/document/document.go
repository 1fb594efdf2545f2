// Package document holds the paginated document model shared by the reading
// engine, the extractors and the stores.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoContent is returned when a document has no readable words at all.
var ErrNoContent = errors.New("document has no readable content")

// Mode is the reading granularity.
type Mode string

const (
	ModeWord     Mode = "word"
	ModeSentence Mode = "sentence"
	ModePage     Mode = "page"
)

// Modes lists the reading modes in toggle order.
var Modes = []Mode{ModeWord, ModeSentence, ModePage}

// ParseMode converts a stored or user-supplied mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeWord, ModeSentence, ModePage:
		return m, nil
	case "":
		return ModeWord, nil
	}
	return "", fmt.Errorf("unknown reading mode %q", s)
}

// Next returns the mode that follows m in toggle order.
func (m Mode) Next() Mode {
	for i, mode := range Modes {
		if mode == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return ModeWord
}

// Page is one 1-indexed page of extracted text.
type Page struct {
	Number    int
	Text      string
	Words     []string
	Sentences []string
}

type pageJSON struct {
	Number        int      `json:"page_number"`
	Text          string   `json:"text"`
	Words         []string `json:"words"`
	Sentences     []string `json:"sentences"`
	WordCount     int      `json:"word_count"`
	SentenceCount int      `json:"sentence_count"`
}

// MarshalJSON adds the derived counts the frontend expects.
func (p Page) MarshalJSON() ([]byte, error) {
	return json.Marshal(pageJSON{
		Number:        p.Number,
		Text:          p.Text,
		Words:         nonNil(p.Words),
		Sentences:     nonNil(p.Sentences),
		WordCount:     len(p.Words),
		SentenceCount: len(p.Sentences),
	})
}

func (p *Page) UnmarshalJSON(data []byte) error {
	var raw pageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Page{Number: raw.Number, Text: raw.Text, Words: raw.Words, Sentences: raw.Sentences}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Document is an immutable, paginated text.
type Document struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"file_name"`
	Path  string `json:"file_path"`
	Pages []Page `json:"pages"`
}

// NewPage builds a page from raw extracted text.
func NewPage(number int, raw string) Page {
	text := CleanText(raw)
	return Page{
		Number:    number,
		Text:      text,
		Words:     ExtractWords(text),
		Sentences: ExtractSentences(text),
	}
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	if d == nil {
		return 0
	}
	return len(d.Pages)
}

// Page returns the 1-based page n.
func (d *Document) Page(n int) (Page, bool) {
	if d == nil || n < 1 || n > len(d.Pages) {
		return Page{}, false
	}
	return d.Pages[n-1], true
}

// WordsOn returns the word count of page n, or 0 when out of range.
func (d *Document) WordsOn(n int) int {
	p, ok := d.Page(n)
	if !ok {
		return 0
	}
	return len(p.Words)
}

// TotalWords sums the word counts of all pages.
func (d *Document) TotalWords() int {
	if d == nil {
		return 0
	}
	total := 0
	for _, p := range d.Pages {
		total += len(p.Words)
	}
	return total
}

// HasContent reports whether any page carries at least one word.
func (d *Document) HasContent() bool {
	return d.TotalWords() > 0
}

// Cursor identifies the displayed unit.
type Cursor struct {
	Page  int
	Index int
	Mode  Mode
}

func (c Cursor) String() string {
	return fmt.Sprintf("p%d/%s#%d", c.Page, c.Mode, c.Index)
}

// Progress is the durable reading position of one document.
type Progress struct {
	DocumentID      string `json:"document_id"`
	CurrentPage     int    `json:"current_page"`
	CurrentPosition int    `json:"current_position"`
	ReadingMode     Mode   `json:"reading_mode"`
	Completed       bool   `json:"completed"`
}

// SessionStats is one additive increment of reading statistics.
type SessionStats struct {
	DocumentID       string `json:"document_id"`
	WordsRead        int    `json:"words_read"`
	TimeSpentSeconds int    `json:"time_spent_seconds"`
}

// Settings are the user preferences. The engine only reads ReadingSpeed.
type Settings struct {
	FontFamily      string `json:"font_family"`
	FontSize        int    `json:"font_size"`
	FontColor       string `json:"font_color"`
	BackgroundColor string `json:"background_color"`
	HighlightColor  string `json:"highlight_color"`
	ReadingSpeed    int    `json:"reading_speed"`
	Theme           string `json:"theme"`
}

// DefaultSettings mirrors the defaults of a fresh library.
func DefaultSettings() Settings {
	return Settings{
		FontFamily:      "JetBrains Mono",
		FontSize:        48,
		FontColor:       "#E2E8F0",
		BackgroundColor: "#0F172A",
		HighlightColor:  "#F97316",
		ReadingSpeed:    250,
		Theme:           "midnight",
	}
}
