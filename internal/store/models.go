package store

import (
	"time"

	"github.com/ali6parmak/sezi/internal/document"
)

// Document is a file registered in the library.
type Document struct {
	ID             string    `gorm:"primaryKey;type:text" json:"id"`
	FilePath       string    `gorm:"column:file_path;uniqueIndex;not null" json:"file_path"`
	FileName       string    `gorm:"column:file_name;not null" json:"file_name"`
	Hash           string    `gorm:"column:hash;index" json:"hash,omitempty"`
	TotalPages     int       `gorm:"column:total_pages;not null;default:0" json:"total_pages"`
	TotalWords     int       `gorm:"column:total_words;not null;default:0" json:"total_words"`
	TotalSentences int       `gorm:"column:total_sentences;not null;default:0" json:"total_sentences"`
	LastOpened     time.Time `gorm:"column:last_opened;index" json:"last_opened"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Document) TableName() string { return "documents" }

// Progress is the single saved position of one document.
type Progress struct {
	ID              uint      `gorm:"primaryKey" json:"-"`
	DocumentID      string    `gorm:"column:document_id;uniqueIndex;not null" json:"document_id"`
	CurrentPage     int       `gorm:"column:current_page;not null;default:1" json:"current_page"`
	CurrentPosition int       `gorm:"column:current_position;not null;default:0" json:"current_position"`
	ReadingMode     string    `gorm:"column:reading_mode;not null;default:'word'" json:"reading_mode"`
	Completed       bool      `gorm:"column:completed;not null;default:false" json:"completed"`
	LastUpdated     time.Time `gorm:"column:last_updated" json:"last_updated"`
}

func (Progress) TableName() string { return "reading_progress" }

func (p Progress) toDocument() document.Progress {
	return document.Progress{
		DocumentID:      p.DocumentID,
		CurrentPage:     p.CurrentPage,
		CurrentPosition: p.CurrentPosition,
		ReadingMode:     document.Mode(p.ReadingMode),
		Completed:       p.Completed,
	}
}

// Settings is the one-row preferences table.
type Settings struct {
	ID              uint      `gorm:"primaryKey"`
	FontFamily      string    `gorm:"column:font_family;not null"`
	FontSize        int       `gorm:"column:font_size;not null"`
	FontColor       string    `gorm:"column:font_color;not null"`
	BackgroundColor string    `gorm:"column:background_color;not null"`
	HighlightColor  string    `gorm:"column:highlight_color;not null"`
	ReadingSpeed    int       `gorm:"column:reading_speed;not null"`
	Theme           string    `gorm:"column:theme;not null"`
	LastUpdated     time.Time `gorm:"column:last_updated"`
}

func (Settings) TableName() string { return "settings" }

const settingsRowID = 1

func settingsRow(s document.Settings) Settings {
	return Settings{
		ID:              settingsRowID,
		FontFamily:      s.FontFamily,
		FontSize:        s.FontSize,
		FontColor:       s.FontColor,
		BackgroundColor: s.BackgroundColor,
		HighlightColor:  s.HighlightColor,
		ReadingSpeed:    s.ReadingSpeed,
		Theme:           s.Theme,
	}
}

func (s Settings) toDocument() document.Settings {
	return document.Settings{
		FontFamily:      s.FontFamily,
		FontSize:        s.FontSize,
		FontColor:       s.FontColor,
		BackgroundColor: s.BackgroundColor,
		HighlightColor:  s.HighlightColor,
		ReadingSpeed:    s.ReadingSpeed,
		Theme:           s.Theme,
	}
}

// SettingsPatch holds the fields of a partial settings update. Nil fields
// are left unchanged.
type SettingsPatch struct {
	FontFamily      *string `json:"font_family,omitempty"`
	FontSize        *int    `json:"font_size,omitempty"`
	FontColor       *string `json:"font_color,omitempty"`
	BackgroundColor *string `json:"background_color,omitempty"`
	HighlightColor  *string `json:"highlight_color,omitempty"`
	ReadingSpeed    *int    `json:"reading_speed,omitempty"`
	Theme           *string `json:"theme,omitempty"`
}

func (p SettingsPatch) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.FontFamily != nil {
		cols["font_family"] = *p.FontFamily
	}
	if p.FontSize != nil {
		cols["font_size"] = *p.FontSize
	}
	if p.FontColor != nil {
		cols["font_color"] = *p.FontColor
	}
	if p.BackgroundColor != nil {
		cols["background_color"] = *p.BackgroundColor
	}
	if p.HighlightColor != nil {
		cols["highlight_color"] = *p.HighlightColor
	}
	if p.ReadingSpeed != nil {
		cols["reading_speed"] = *p.ReadingSpeed
	}
	if p.Theme != nil {
		cols["theme"] = *p.Theme
	}
	return cols
}

// Stat accumulates reading for one document on one calendar day.
type Stat struct {
	ID               uint   `gorm:"primaryKey"`
	DocumentID       string `gorm:"column:document_id;not null;index:idx_stats_doc_day,unique"`
	SessionDate      string `gorm:"column:session_date;size:10;not null;index:idx_stats_doc_day,unique"`
	WordsRead        int    `gorm:"column:words_read;not null;default:0"`
	TimeSpentSeconds int    `gorm:"column:time_spent_seconds;not null;default:0"`
}

func (Stat) TableName() string { return "reading_stats" }

// Totals sums reading statistics.
type Totals struct {
	TotalWords int64 `json:"total_words"`
	TotalTime  int64 `json:"total_time"`
	Sessions   int64 `json:"sessions"`
}

// RecentDocument is a library entry with its saved position.
type RecentDocument struct {
	Document
	CurrentPage     int    `json:"current_page"`
	CurrentPosition int    `json:"current_position"`
	ReadingMode     string `json:"reading_mode"`
	Completed       bool   `json:"completed"`
}
