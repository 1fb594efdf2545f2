package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/ali6parmak/sezi/internal/document"
	"github.com/ali6parmak/sezi/internal/extract"
	"github.com/ali6parmak/sezi/internal/reader"
	"github.com/ali6parmak/sezi/internal/state"
	"github.com/ali6parmak/sezi/internal/store"
)

const maxUploadBytes = 256 << 20

func (s *Server) health(c *gin.Context) {
	RespondOK(c, gin.H{"status": "ok", "message": "sezi API is running"})
}

func (s *Server) recentDocuments(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 50 {
			RespondError(c, http.StatusBadRequest, "invalid_limit", fmt.Errorf("limit must be between 1 and 50"))
			return
		}
		limit = n
	}

	docs, err := s.lib.RecentDocuments(c.Request.Context(), limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	valid := make([]store.RecentDocument, 0, len(docs))
	for _, d := range docs {
		if _, err := os.Stat(d.FilePath); err == nil {
			valid = append(valid, d)
		}
	}
	RespondOK(c, gin.H{"documents": valid})
}

func (s *Server) uploadDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	name := filepath.Base(fh.Filename)
	if !extract.Supported(name) {
		RespondError(c, http.StatusBadRequest, "unsupported_format", fmt.Errorf("%s: %w", name, extract.ErrUnsupported))
		return
	}

	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		RespondError(c, http.StatusInternalServerError, "save_failed", err)
		return
	}
	path := filepath.Join(s.uploadDir, name)
	if err := c.SaveUploadedFile(fh, path); err != nil {
		RespondError(c, http.StatusInternalServerError, "save_failed", fmt.Errorf("save file: %w", err))
		return
	}

	doc, err := s.load(path)
	if err == nil && !doc.HasContent() {
		err = document.ErrNoContent
	}
	if err != nil {
		os.Remove(path)
		s.log.Warn("upload rejected", "file_name", name, "error", err)
		RespondError(c, http.StatusInternalServerError, "process_failed", fmt.Errorf("process document: %w", err))
		return
	}

	rec, err := s.lib.AddDocument(c.Request.Context(), doc, s.fileHash(path))
	if err != nil {
		os.Remove(path)
		RespondError(c, http.StatusInternalServerError, "register_failed", err)
		return
	}
	s.docs.Set(rec.ID, doc, cache.DefaultExpiration)

	RespondOK(c, gin.H{
		"success":     true,
		"document_id": rec.ID,
		"file_name":   rec.FileName,
		"file_path":   rec.FilePath,
		"stats":       document.ComputeStats(doc),
		"document":    doc,
	})
}

// fileHash identifies the uploaded file by content. A document registered
// without one is still readable, so a failure is only logged.
func (s *Server) fileHash(path string) string {
	hash, err := state.Hash(path)
	if err != nil {
		s.log.Warn("hash failed", "file_name", filepath.Base(path), "error", err)
		return ""
	}
	return hash
}

func (s *Server) getDocument(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	rec, err := s.lib.GetDocument(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "document_not_found", fmt.Errorf("document not found"))
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "lookup_failed", err)
		return
	}
	if _, err := os.Stat(rec.FilePath); err != nil {
		s.docs.Delete(id)
		RespondError(c, http.StatusNotFound, "file_missing", fmt.Errorf("document file not found on disk"))
		return
	}

	doc, err := s.document(rec)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "process_failed", err)
		return
	}

	progress, err := s.lib.Progress(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		progress = &document.Progress{DocumentID: id, CurrentPage: 1, ReadingMode: document.ModeWord}
	} else if err != nil {
		RespondError(c, http.StatusInternalServerError, "lookup_failed", err)
		return
	}
	if err := s.lib.Touch(ctx, id); err != nil {
		s.log.Warn("touch failed", "document_id", id, "error", err)
	}

	RespondOK(c, gin.H{
		"document": doc,
		"info":     rec,
		"stats":    document.ComputeStats(doc),
		"progress": progress,
	})
}

// document returns the extracted pages for rec, extracting at most once per
// cache lifetime.
func (s *Server) document(rec *store.Document) (*document.Document, error) {
	if v, ok := s.docs.Get(rec.ID); ok {
		return v.(*document.Document), nil
	}
	doc, err := s.load(rec.FilePath)
	if err != nil {
		return nil, fmt.Errorf("process document: %w", err)
	}
	doc.ID = rec.ID
	s.docs.Set(rec.ID, doc, cache.DefaultExpiration)
	s.log.Debug("document extracted", "document_id", rec.ID, "pages", doc.PageCount())
	return doc, nil
}

func (s *Server) deleteDocument(c *gin.Context) {
	id := c.Param("id")
	err := s.lib.DeleteDocument(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "document_not_found", fmt.Errorf("document not found"))
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "delete_failed", err)
		return
	}
	s.docs.Delete(id)
	respondSuccess(c)
}

func (s *Server) getSettings(c *gin.Context) {
	settings, err := s.lib.Settings(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "settings_failed", err)
		return
	}
	RespondOK(c, gin.H{"settings": settings})
}

func (s *Server) updateSettings(c *gin.Context) {
	var patch store.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if patch.ReadingSpeed != nil && (*patch.ReadingSpeed < reader.MinWPM || *patch.ReadingSpeed > reader.MaxWPM) {
		RespondError(c, http.StatusBadRequest, "invalid_reading_speed",
			fmt.Errorf("reading_speed must be between %d and %d", reader.MinWPM, reader.MaxWPM))
		return
	}
	if patch.FontSize != nil && *patch.FontSize <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid_font_size", fmt.Errorf("font_size must be positive"))
		return
	}

	settings, err := s.lib.UpdateSettings(c.Request.Context(), patch)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "settings_failed", err)
		return
	}
	RespondOK(c, gin.H{"settings": settings})
}

type progressRequest struct {
	DocumentID      string `json:"document_id" binding:"required"`
	CurrentPage     int    `json:"current_page" binding:"min=0"`
	CurrentPosition int    `json:"current_position" binding:"min=0"`
	ReadingMode     string `json:"reading_mode"`
	Completed       bool   `json:"completed"`
}

func (s *Server) saveProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	mode, err := document.ParseMode(req.ReadingMode)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_reading_mode", err)
		return
	}

	err = s.lib.SaveProgress(c.Request.Context(), document.Progress{
		DocumentID:      req.DocumentID,
		CurrentPage:     req.CurrentPage,
		CurrentPosition: req.CurrentPosition,
		ReadingMode:     mode,
		Completed:       req.Completed,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "save_failed", err)
		return
	}
	respondSuccess(c)
}

type statsRequest struct {
	DocumentID       string `json:"document_id" binding:"required"`
	WordsRead        int    `json:"words_read" binding:"min=0"`
	TimeSpentSeconds int    `json:"time_spent_seconds" binding:"min=0"`
}

func (s *Server) recordStats(c *gin.Context) {
	var req statsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	err := s.lib.RecordStats(c.Request.Context(), document.SessionStats{
		DocumentID:       req.DocumentID,
		WordsRead:        req.WordsRead,
		TimeSpentSeconds: req.TimeSpentSeconds,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "save_failed", err)
		return
	}
	respondSuccess(c)
}

func (s *Server) getStats(c *gin.Context) {
	totals, err := s.lib.Totals(c.Request.Context(), c.Query("document_id"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "stats_failed", err)
		return
	}
	RespondOK(c, gin.H{"stats": totals})
}

func (s *Server) bionic(c *gin.Context) {
	word := c.Param("word")
	split := reader.Bionic(word)
	RespondOK(c, gin.H{
		"word":        word,
		"highlighted": split.Highlighted,
		"rest":        split.Rest,
		"punctuation": split.Punctuation,
	})
}
