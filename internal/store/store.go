// Package store is the document library: registered documents, their
// reading progress, per-day reading statistics and the user settings, kept
// in one SQLite database.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ali6parmak/sezi/internal/document"
	"github.com/ali6parmak/sezi/internal/logger"
)

// ErrNotFound is returned when a document or its progress does not exist.
var ErrNotFound = errors.New("not found")

const dateLayout = "2006-01-02"

type Store struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

// Open opens or creates the database at path and migrates the schema.
func Open(path string, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Document{}, &Progress{}, &Settings{}, &Stat{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s := &Store{db: db, log: log.With("component", "store"), now: time.Now}
	if err := s.ensureSettings(context.Background()); err != nil {
		return nil, err
	}
	s.log.Debug("library opened", "db_path", path)
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) ensureSettings(ctx context.Context) error {
	row := settingsRow(document.DefaultSettings())
	row.LastUpdated = s.now()
	err := s.db.WithContext(ctx).
		Where("id = ?", settingsRowID).
		Attrs(row).
		FirstOrCreate(&Settings{}).Error
	if err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	return nil
}

// AddDocument registers doc, or refreshes the entry already registered for
// the same path. doc.ID is set to the library ID either way. A new document
// starts with a default progress row.
func (s *Store) AddDocument(ctx context.Context, doc *document.Document, hash string) (*Document, error) {
	st := document.ComputeStats(doc)
	now := s.now()

	var rec Document
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("file_path = ?", doc.Path).First(&rec).Error
		switch {
		case err == nil:
			return tx.Model(&rec).Updates(map[string]interface{}{
				"file_name":       doc.Name,
				"hash":            hash,
				"total_pages":     st.TotalPages,
				"total_words":     st.TotalWords,
				"total_sentences": st.TotalSentences,
				"last_opened":     now,
			}).Error
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		rec = Document{
			ID:             uuid.NewString(),
			FilePath:       doc.Path,
			FileName:       doc.Name,
			Hash:           hash,
			TotalPages:     st.TotalPages,
			TotalWords:     st.TotalWords,
			TotalSentences: st.TotalSentences,
			LastOpened:     now,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		return tx.Create(&Progress{
			DocumentID:  rec.ID,
			CurrentPage: 1,
			ReadingMode: string(document.ModeWord),
			LastUpdated: now,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("add document: %w", err)
	}

	doc.ID = rec.ID
	s.log.Info("document registered", "document_id", rec.ID, "file_path", rec.FilePath, "words", rec.TotalWords)
	return &rec, nil
}

// GetDocument returns the library entry for id.
func (s *Store) GetDocument(ctx context.Context, id string) (*Document, error) {
	var rec Document
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DocumentByPath returns the library entry registered for path.
func (s *Store) DocumentByPath(ctx context.Context, path string) (*Document, error) {
	var rec Document
	err := s.db.WithContext(ctx).Where("file_path = ?", path).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Touch marks a document as just opened.
func (s *Store) Touch(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&Document{}).Where("id = ?", id).Update("last_opened", s.now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecentDocuments lists up to limit documents, most recently opened first.
func (s *Store) RecentDocuments(ctx context.Context, limit int) ([]RecentDocument, error) {
	var docs []Document
	if err := s.db.WithContext(ctx).
		Order("last_opened DESC").
		Limit(limit).
		Find(&docs).Error; err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return []RecentDocument{}, nil
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	var rows []Progress
	if err := s.db.WithContext(ctx).Where("document_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byDoc := make(map[string]Progress, len(rows))
	for _, p := range rows {
		byDoc[p.DocumentID] = p
	}

	out := make([]RecentDocument, 0, len(docs))
	for _, d := range docs {
		p, ok := byDoc[d.ID]
		if !ok {
			p = Progress{CurrentPage: 1, ReadingMode: string(document.ModeWord)}
		}
		out = append(out, RecentDocument{
			Document:        d,
			CurrentPage:     p.CurrentPage,
			CurrentPosition: p.CurrentPosition,
			ReadingMode:     p.ReadingMode,
			Completed:       p.Completed,
		})
	}
	return out, nil
}

// DeleteDocument removes a document with its progress and statistics.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&Stat{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", id).Delete(&Progress{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Document{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Progress returns the saved position for a document.
func (s *Store) Progress(ctx context.Context, documentID string) (*document.Progress, error) {
	var rec Progress
	err := s.db.WithContext(ctx).Where("document_id = ?", documentID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p := rec.toDocument()
	return &p, nil
}

// SaveProgress upserts the position of p.DocumentID. Saving the same
// position twice is harmless, and a document without a progress row gets
// one on first write.
func (s *Store) SaveProgress(ctx context.Context, p document.Progress) error {
	if p.DocumentID == "" {
		return errors.New("save progress: empty document id")
	}
	mode := p.ReadingMode
	if mode == "" {
		mode = document.ModeWord
	}
	page := p.CurrentPage
	if page < 1 {
		page = 1
	}

	var rec Progress
	err := s.db.WithContext(ctx).
		Where("document_id = ?", p.DocumentID).
		Assign(map[string]interface{}{
			"document_id":      p.DocumentID,
			"current_page":     page,
			"current_position": p.CurrentPosition,
			"reading_mode":     string(mode),
			"completed":        p.Completed,
			"last_updated":     s.now(),
		}).
		FirstOrCreate(&rec).Error
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// RecordStats adds st to today's totals for its document.
func (s *Store) RecordStats(ctx context.Context, st document.SessionStats) error {
	if st.DocumentID == "" {
		return errors.New("record stats: empty document id")
	}
	day := s.now().Format(dateLayout)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Stat{}).
			Where("document_id = ? AND session_date = ?", st.DocumentID, day).
			UpdateColumns(map[string]interface{}{
				"words_read":         gorm.Expr("words_read + ?", st.WordsRead),
				"time_spent_seconds": gorm.Expr("time_spent_seconds + ?", st.TimeSpentSeconds),
			})
		if res.Error != nil {
			return fmt.Errorf("record stats: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}
		return tx.Create(&Stat{
			DocumentID:       st.DocumentID,
			SessionDate:      day,
			WordsRead:        st.WordsRead,
			TimeSpentSeconds: st.TimeSpentSeconds,
		}).Error
	})
}

// Totals sums statistics for one document, or for the whole library when
// documentID is empty. Sessions counts distinct reading days.
func (s *Store) Totals(ctx context.Context, documentID string) (Totals, error) {
	var t Totals
	q := s.db.WithContext(ctx).Model(&Stat{}).
		Select("COALESCE(SUM(words_read), 0) AS total_words, " +
			"COALESCE(SUM(time_spent_seconds), 0) AS total_time, " +
			"COUNT(DISTINCT session_date) AS sessions")
	if documentID != "" {
		q = q.Where("document_id = ?", documentID)
	}
	if err := q.Scan(&t).Error; err != nil {
		return Totals{}, err
	}
	return t, nil
}

// Settings returns the stored preferences.
func (s *Store) Settings(ctx context.Context) (document.Settings, error) {
	var row Settings
	err := s.db.WithContext(ctx).Where("id = ?", settingsRowID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return document.DefaultSettings(), nil
	}
	if err != nil {
		return document.Settings{}, err
	}
	return row.toDocument(), nil
}

// UpdateSettings applies the non-nil fields of patch and returns the result.
func (s *Store) UpdateSettings(ctx context.Context, patch SettingsPatch) (document.Settings, error) {
	cols := patch.columns()
	if len(cols) > 0 {
		cols["last_updated"] = s.now()
		if err := s.db.WithContext(ctx).
			Model(&Settings{}).
			Where("id = ?", settingsRowID).
			Updates(cols).Error; err != nil {
			return document.Settings{}, fmt.Errorf("update settings: %w", err)
		}
	}
	return s.Settings(ctx)
}
