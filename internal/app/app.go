// Package app opens a document for reading with the progress backend the
// configuration selects. Both the terminal and desktop front ends start here.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/facebookgo/clock"

	"github.com/ali6parmak/sezi/internal/client"
	"github.com/ali6parmak/sezi/internal/config"
	"github.com/ali6parmak/sezi/internal/document"
	"github.com/ali6parmak/sezi/internal/extract"
	"github.com/ali6parmak/sezi/internal/logger"
	"github.com/ali6parmak/sezi/internal/reader"
	"github.com/ali6parmak/sezi/internal/state"
	"github.com/ali6parmak/sezi/internal/store"
)

// Options for Open. Zero values fall back to the configuration.
type Options struct {
	Config   config.Config
	Logger   *logger.Logger
	Clock    clock.Clock
	WPM      int
	Mode     document.Mode
	Fresh    bool   // ignore the saved position
	StateDir string // state store directory, default XDG_STATE_HOME/sezi
	OnChange func(reader.View)
}

// Session is an open document and the backend its progress goes to.
type Session struct {
	Reader   *reader.Reader
	Settings document.Settings
	Backend  string

	closers  []func() error
	log      *logger.Logger
	settings bool
}

type backend interface {
	reader.ProgressSaver
	reader.StatsRecorder
}

// Open loads target and restores its saved position. target is a file path
// for the library and state backends and a document ID for the remote one.
func Open(ctx context.Context, target string, opts Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	cfg := opts.Config
	s := &Session{
		Settings: document.DefaultSettings(),
		Backend:  cfg.Store,
		log:      opts.Logger,
	}

	var (
		doc   *document.Document
		saved *document.Progress
		be    backend
		err   error
	)
	switch cfg.Store {
	case config.StoreLibrary, "":
		s.Backend = config.StoreLibrary
		doc, saved, be, err = s.openLibrary(ctx, target, cfg.DBPath)
	case config.StoreState:
		doc, saved, be, err = s.openState(target, opts.StateDir)
	case config.StoreRemote:
		doc, saved, be, err = s.openRemote(ctx, target, cfg)
	default:
		err = fmt.Errorf("unknown store %q", cfg.Store)
	}
	if err != nil {
		s.closeBackends()
		return nil, err
	}
	if !doc.HasContent() {
		s.closeBackends()
		return nil, fmt.Errorf("%s: %w", doc.Name, document.ErrNoContent)
	}
	if opts.Fresh {
		saved = nil
	}
	if err := s.start(doc, saved, be, opts); err != nil {
		s.closeBackends()
		return nil, err
	}
	return s, nil
}

// OpenText reads piped text. Nothing is saved because there is no file to
// key the position on.
func OpenText(text string, opts Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	doc := extract.FromText("stdin", text)
	if !doc.HasContent() {
		return nil, document.ErrNoContent
	}
	s := &Session{Settings: document.DefaultSettings(), Backend: "none", log: opts.Logger}
	if err := s.start(doc, nil, nil, opts); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) start(doc *document.Document, saved *document.Progress, be backend, opts Options) error {
	cfg := opts.Config
	wpm := opts.WPM
	if wpm == 0 && s.settings {
		wpm = s.Settings.ReadingSpeed
	}
	if wpm == 0 {
		wpm = cfg.Reader.WPM
	}
	mode := opts.Mode
	if mode == "" {
		mode, _ = document.ParseMode(cfg.Reader.Mode)
	}

	ro := reader.Options{
		WPM:           wpm,
		Mode:          mode,
		Clock:         opts.Clock,
		Logger:        opts.Logger,
		DebounceDelay: cfg.Reader.DebounceDelay.Duration,
		SaveInterval:  cfg.Reader.SaveInterval.Duration,
		SaveTimeout:   cfg.Reader.SaveTimeout.Duration,
		OnChange:      opts.OnChange,
	}
	if be != nil {
		ro.Progress = be
		ro.Stats = be
	}
	r, err := reader.NewReader(doc, saved, ro)
	if err != nil {
		return err
	}
	s.Reader = r

	v := r.View()
	opts.Logger.Info("document opened",
		"document_id", doc.ID,
		"store", s.Backend,
		"pages", doc.PageCount(),
		"words", doc.TotalWords(),
		"cursor", v.Cursor.String(),
	)
	return nil
}

func (s *Session) openLibrary(ctx context.Context, path, dbPath string) (*document.Document, *document.Progress, backend, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, nil, err
	}
	doc, err := extract.Load(abs)
	if err != nil {
		return nil, nil, nil, err
	}

	lib, err := store.Open(dbPath, s.log)
	if err != nil {
		return nil, nil, nil, err
	}
	s.closers = append(s.closers, lib.Close)

	hash, err := state.Hash(abs)
	if err != nil {
		return nil, nil, nil, err
	}
	if _, err := lib.AddDocument(ctx, doc, hash); err != nil {
		return nil, nil, nil, err
	}
	saved, err := lib.Progress(ctx, doc.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, nil, nil, err
	}
	if settings, err := lib.Settings(ctx); err == nil {
		s.Settings, s.settings = settings, true
	} else {
		s.log.Warn("settings unavailable", "error", err)
	}
	return doc, saved, lib, nil
}

func (s *Session) openState(path, dir string) (*document.Document, *document.Progress, backend, error) {
	doc, err := extract.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	hash, err := state.Hash(path)
	if err != nil {
		return nil, nil, nil, err
	}
	doc.ID = hash

	var st *state.Store
	if dir != "" {
		st, err = state.Open(dir)
	} else {
		st, err = state.Default()
	}
	if err != nil {
		return nil, nil, nil, err
	}
	return doc, st.Progress(hash), st, nil
}

func (s *Session) openRemote(ctx context.Context, id string, cfg config.Config) (*document.Document, *document.Progress, backend, error) {
	c := client.New(cfg.Server, cfg.Reader.SaveTimeout.Duration)
	doc, saved, err := c.Document(ctx, id)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetch document %s: %w", id, err)
	}
	if settings, err := c.Settings(ctx); err == nil {
		s.Settings, s.settings = settings, true
	} else {
		s.log.Warn("settings unavailable", "error", err)
	}
	return doc, saved, c, nil
}

// Close shuts the reader down, saving the final position, then releases the
// backend.
func (s *Session) Close(ctx context.Context) error {
	var err error
	if s.Reader != nil {
		err = s.Reader.Close(ctx)
	}
	if cerr := s.closeBackends(); err == nil {
		err = cerr
	}
	return err
}

func (s *Session) closeBackends() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
