// Package api serves the document library over HTTP for remote readers and
// the web frontend.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/ali6parmak/sezi/internal/document"
	"github.com/ali6parmak/sezi/internal/extract"
	"github.com/ali6parmak/sezi/internal/logger"
	"github.com/ali6parmak/sezi/internal/store"
)

// Library is the storage the API is backed by. *store.Store implements it.
type Library interface {
	AddDocument(ctx context.Context, doc *document.Document, hash string) (*store.Document, error)
	GetDocument(ctx context.Context, id string) (*store.Document, error)
	Touch(ctx context.Context, id string) error
	RecentDocuments(ctx context.Context, limit int) ([]store.RecentDocument, error)
	DeleteDocument(ctx context.Context, id string) error

	Progress(ctx context.Context, documentID string) (*document.Progress, error)
	SaveProgress(ctx context.Context, p document.Progress) error
	RecordStats(ctx context.Context, st document.SessionStats) error
	Totals(ctx context.Context, documentID string) (store.Totals, error)

	Settings(ctx context.Context) (document.Settings, error)
	UpdateSettings(ctx context.Context, patch store.SettingsPatch) (document.Settings, error)
}

type Config struct {
	Addr      string
	UploadDir string
	CacheTTL  time.Duration
	// Load extracts a file into pages. Defaults to extract.Load.
	Load func(path string) (*document.Document, error)
}

type Server struct {
	lib       Library
	log       *logger.Logger
	docs      *cache.Cache
	load      func(path string) (*document.Document, error)
	uploadDir string
	addr      string
	engine    *gin.Engine
}

func NewServer(lib Library, log *logger.Logger, cfg Config) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Minute
	}
	if cfg.Load == nil {
		cfg.Load = extract.Load
	}
	s := &Server{
		lib:       lib,
		log:       log.With("component", "api"),
		docs:      cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		load:      cfg.Load,
		uploadDir: cfg.UploadDir,
		addr:      cfg.Addr,
	}
	s.engine = s.router()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(s.log))
	r.Use(CORS())

	r.GET("/", s.health)

	api := r.Group("/api")
	{
		api.GET("/documents/recent", s.recentDocuments)
		api.POST("/documents/upload", s.uploadDocument)
		api.GET("/documents/:id", s.getDocument)
		api.DELETE("/documents/:id", s.deleteDocument)

		api.GET("/settings", s.getSettings)
		api.PUT("/settings", s.updateSettings)

		api.POST("/progress", s.saveProgress)
		api.POST("/stats", s.recordStats)
		api.GET("/stats", s.getStats)

		api.GET("/bionic/:word", s.bionic)
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
