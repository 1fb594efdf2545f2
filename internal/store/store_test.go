package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ali6parmak/sezi/internal/document"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "sezi.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testDocument(path string) *document.Document {
	return &document.Document{
		Name: filepath.Base(path),
		Path: path,
		Pages: []document.Page{
			document.NewPage(1, "One two three. Four five."),
			document.NewPage(2, ""),
			document.NewPage(3, "Six seven."),
		},
	}
}

func TestAddDocumentCreatesProgress(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	doc := testDocument("/books/a.pdf")

	rec, err := s.AddDocument(ctx, doc, "hash-a")
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if rec.ID == "" || doc.ID != rec.ID {
		t.Fatalf("document id not assigned: rec=%q doc=%q", rec.ID, doc.ID)
	}
	if rec.TotalPages != 3 || rec.TotalWords != 7 || rec.TotalSentences != 3 {
		t.Errorf("totals = %+v", rec)
	}

	p, err := s.Progress(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if p.CurrentPage != 1 || p.CurrentPosition != 0 || p.ReadingMode != document.ModeWord || p.Completed {
		t.Errorf("initial progress = %+v", p)
	}
}

func TestAddDocumentSamePathReusesID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.AddDocument(ctx, testDocument("/books/a.pdf"), "h1")
	if err != nil {
		t.Fatal(err)
	}
	again := testDocument("/books/a.pdf")
	again.Pages = again.Pages[:1]
	second, err := s.AddDocument(ctx, again, "h2")
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("re-adding created a new id: %s != %s", second.ID, first.ID)
	}
	got, err := s.GetDocument(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalPages != 1 || got.Hash != "h2" {
		t.Errorf("entry not refreshed: %+v", got)
	}
	byPath, err := s.DocumentByPath(ctx, "/books/a.pdf")
	if err != nil || byPath.ID != first.ID {
		t.Errorf("DocumentByPath = %+v, %v", byPath, err)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetDocument(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := s.Touch(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Touch err = %v, want ErrNotFound", err)
	}
}

func TestSaveProgressUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec, _ := s.AddDocument(ctx, testDocument("/books/a.pdf"), "")

	p := document.Progress{DocumentID: rec.ID, CurrentPage: 3, CurrentPosition: 5, ReadingMode: document.ModeSentence, Completed: true}
	for i := 0; i < 3; i++ {
		if err := s.SaveProgress(ctx, p); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	got, err := s.Progress(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if *got != p {
		t.Errorf("progress = %+v, want %+v", *got, p)
	}

	// Completed must be clearable.
	p.Completed = false
	p.CurrentPosition = 2
	if err := s.SaveProgress(ctx, p); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Progress(ctx, rec.ID)
	if got.Completed || got.CurrentPosition != 2 {
		t.Errorf("progress after update = %+v", got)
	}

	var rows int64
	s.db.Model(&Progress{}).Where("document_id = ?", rec.ID).Count(&rows)
	if rows != 1 {
		t.Errorf("progress rows = %d, want 1", rows)
	}
}

func TestSaveProgressCreatesOnFirstWrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := document.Progress{DocumentID: "unknown-doc", CurrentPage: 2, CurrentPosition: 9}
	if err := s.SaveProgress(ctx, p); err != nil {
		t.Fatalf("SaveProgress: %v", err)
	}
	got, err := s.Progress(ctx, "unknown-doc")
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if got.CurrentPosition != 9 || got.ReadingMode != document.ModeWord {
		t.Errorf("progress = %+v", got)
	}

	if err := s.SaveProgress(ctx, document.Progress{}); err == nil {
		t.Error("empty document id accepted")
	}
}

func TestRecordStatsPerDay(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return day }

	s.RecordStats(ctx, document.SessionStats{DocumentID: "a", WordsRead: 100, TimeSpentSeconds: 30})
	s.RecordStats(ctx, document.SessionStats{DocumentID: "a", WordsRead: 50, TimeSpentSeconds: 10})
	day = day.Add(24 * time.Hour)
	s.RecordStats(ctx, document.SessionStats{DocumentID: "a", WordsRead: 25, TimeSpentSeconds: 5})
	s.RecordStats(ctx, document.SessionStats{DocumentID: "b", WordsRead: 1, TimeSpentSeconds: 1})

	tot, err := s.Totals(ctx, "a")
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if tot != (Totals{TotalWords: 175, TotalTime: 45, Sessions: 2}) {
		t.Errorf("totals(a) = %+v", tot)
	}

	all, err := s.Totals(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if all.TotalWords != 176 || all.TotalTime != 46 {
		t.Errorf("totals(all) = %+v", all)
	}

	var rows int64
	s.db.Model(&Stat{}).Where("document_id = ?", "a").Count(&rows)
	if rows != 2 {
		t.Errorf("stat rows = %d, want one per day", rows)
	}
}

func TestTotalsEmpty(t *testing.T) {
	s := openTestStore(t)
	tot, err := s.Totals(context.Background(), "nothing")
	if err != nil {
		t.Fatal(err)
	}
	if tot != (Totals{}) {
		t.Errorf("totals = %+v, want zero", tot)
	}
}

func TestRecentDocuments(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i, path := range []string{"/a.pdf", "/b.pdf", "/c.pdf"} {
		at := base.Add(time.Duration(i) * time.Hour)
		s.now = func() time.Time { return at }
		rec, err := s.AddDocument(ctx, testDocument(path), "")
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, rec.ID)
	}
	s.SaveProgress(ctx, document.Progress{DocumentID: ids[0], CurrentPage: 3, CurrentPosition: 6})

	s.now = func() time.Time { return base.Add(10 * time.Hour) }
	if err := s.Touch(ctx, ids[0]); err != nil {
		t.Fatal(err)
	}

	recent, err := s.RecentDocuments(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("len = %d, want 2", len(recent))
	}
	if recent[0].ID != ids[0] || recent[1].ID != ids[2] {
		t.Errorf("order = %s, %s", recent[0].FileName, recent[1].FileName)
	}
	if recent[0].CurrentPosition != 6 || recent[0].CurrentPage != 3 {
		t.Errorf("progress not joined: %+v", recent[0])
	}
}

func TestDeleteDocument(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec, _ := s.AddDocument(ctx, testDocument("/a.pdf"), "")
	s.RecordStats(ctx, document.SessionStats{DocumentID: rec.ID, WordsRead: 10, TimeSpentSeconds: 2})

	if err := s.DeleteDocument(ctx, rec.ID); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if _, err := s.GetDocument(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("document still present: %v", err)
	}
	if _, err := s.Progress(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("progress still present: %v", err)
	}
	if tot, _ := s.Totals(ctx, rec.ID); tot.TotalWords != 0 {
		t.Errorf("stats still present: %+v", tot)
	}
	if err := s.DeleteDocument(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestSettings(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	got, err := s.Settings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != document.DefaultSettings() {
		t.Errorf("defaults = %+v", got)
	}

	speed := 400
	theme := "paper"
	updated, err := s.UpdateSettings(ctx, SettingsPatch{ReadingSpeed: &speed, Theme: &theme})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if updated.ReadingSpeed != 400 || updated.Theme != "paper" || updated.FontSize != 48 {
		t.Errorf("updated = %+v", updated)
	}

	unchanged, err := s.UpdateSettings(ctx, SettingsPatch{})
	if err != nil || unchanged != updated {
		t.Errorf("empty patch changed settings: %+v, %v", unchanged, err)
	}
}

func TestSettingsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sezi.db")
	s, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	size := 32
	s.UpdateSettings(context.Background(), SettingsPatch{FontSize: &size})
	s.Close()

	s, err = Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, _ := s.Settings(context.Background())
	if got.FontSize != 32 {
		t.Errorf("font size = %d after reopen, want 32", got.FontSize)
	}
}
