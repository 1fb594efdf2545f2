// Package state remembers where the reader was in files opened directly from
// disk, for when no library database is in use. A file is identified by a
// digest of its opening bytes, so a moved or renamed copy resumes where it
// left off.
package state

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ali6parmak/sezi/internal/document"
)

const (
	fileName  = "positions.json"
	hashLimit = 8 << 10
)

// Entry is everything remembered about one file.
type Entry struct {
	Page             int           `json:"current_page"`
	Position         int           `json:"current_position"`
	Mode             document.Mode `json:"reading_mode"`
	Completed        bool          `json:"completed"`
	WordsRead        int           `json:"words_read"`
	TimeSpentSeconds int           `json:"time_spent_seconds"`
	Sessions         int           `json:"sessions"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (e Entry) samePosition(p document.Progress) bool {
	return !e.UpdatedAt.IsZero() &&
		e.Page == p.CurrentPage &&
		e.Position == p.CurrentPosition &&
		e.Mode == p.ReadingMode &&
		e.Completed == p.Completed
}

// Store is a JSON file of entries keyed by file hash.
type Store struct {
	mu      sync.RWMutex
	file    string
	entries map[string]Entry
}

// Default opens the store under $XDG_STATE_HOME/sezi, falling back to
// ~/.local/state/sezi.
func Default() (*Store, error) {
	return Open(defaultDir())
}

// Open loads the store kept in dir, creating dir if needed. An unreadable
// file is treated as empty.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	s := &Store{
		file:    filepath.Join(dir, fileName),
		entries: map[string]Entry{},
	}
	if err := s.read(); err != nil {
		s.entries = map[string]Entry{}
	}
	return s, nil
}

func defaultDir() string {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "sezi")
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.file
}

// Hash identifies filename by the first 8 KiB of its content, as 32 hex
// characters.
func Hash(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, io.LimitReader(f, hashLimit)); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)[:16]), nil
}

// Get returns the saved entry for hash.
func (s *Store) Get(hash string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[hash]
	return e, ok
}

// Progress returns the saved position for hash, or nil when the file was
// never opened.
func (s *Store) Progress(hash string) *document.Progress {
	e, ok := s.Get(hash)
	if !ok {
		return nil
	}
	return &document.Progress{
		DocumentID:      hash,
		CurrentPage:     e.Page,
		CurrentPosition: e.Position,
		ReadingMode:     e.Mode,
		Completed:       e.Completed,
	}
}

// SaveProgress records p under p.DocumentID. Saving the position already
// stored does not touch the file.
func (s *Store) SaveProgress(_ context.Context, p document.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[p.DocumentID]
	if e.samePosition(p) {
		return nil
	}
	e.Page, e.Position = p.CurrentPage, p.CurrentPosition
	e.Mode, e.Completed = p.ReadingMode, p.Completed
	e.UpdatedAt = time.Now()
	s.entries[p.DocumentID] = e
	return s.flush()
}

// RecordStats adds one session to the totals for st.DocumentID.
func (s *Store) RecordStats(_ context.Context, st document.SessionStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[st.DocumentID]
	e.WordsRead += st.WordsRead
	e.TimeSpentSeconds += st.TimeSpentSeconds
	e.Sessions++
	e.UpdatedAt = time.Now()
	s.entries[st.DocumentID] = e
	return s.flush()
}

// Forget drops everything saved for hash.
func (s *Store) Forget(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[hash]; !ok {
		return nil
	}
	delete(s.entries, hash)
	return s.flush()
}

func (s *Store) read() error {
	raw, err := os.ReadFile(s.file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, &s.entries)
}

// flush writes through a temp file so a crash never leaves half a file.
func (s *Store) flush() error {
	raw, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.file + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.file)
}
