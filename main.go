//go:build !gui

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/ali6parmak/sezi/internal/api"
	"github.com/ali6parmak/sezi/internal/app"
	"github.com/ali6parmak/sezi/internal/config"
	"github.com/ali6parmak/sezi/internal/document"
	"github.com/ali6parmak/sezi/internal/extract"
	"github.com/ali6parmak/sezi/internal/logger"
	"github.com/ali6parmak/sezi/internal/reader"
	"github.com/ali6parmak/sezi/internal/state"
	"github.com/ali6parmak/sezi/internal/store"
	"github.com/ali6parmak/sezi/internal/tui"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func usage(w io.Writer) {
	fmt.Fprintf(w, "Sezi - Paced Document Reader\n\n")
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  sezi [read] [options] [file]\n")
	fmt.Fprintf(w, "  sezi serve [options]\n")
	fmt.Fprintf(w, "  sezi import [options] file...\n")
	fmt.Fprintf(w, "  sezi stats [options] [document-id]\n")
	fmt.Fprintf(w, "  sezi version\n\n")
	fmt.Fprintf(w, "Formats: %s\n\n", strings.Join(extract.SupportedFormats(), ", "))
	fmt.Fprintf(w, "Examples:\n")
	fmt.Fprintf(w, "  sezi book.pdf                    Read, resuming where you left off\n")
	fmt.Fprintf(w, "  sezi read -w 400 -mode sentence notes.md\n")
	fmt.Fprintf(w, "  sezi read -store state paper.pdf Keep progress in a JSON file\n")
	fmt.Fprintf(w, "  sezi read -server http://host:51735 -doc ID\n")
	fmt.Fprintf(w, "  cat file.txt | sezi              Read from stdin\n")
	fmt.Fprintf(w, "\nControls:\n")
	fmt.Fprintf(w, "  SPACE    Play/pause\n")
	fmt.Fprintf(w, "  ←/→      Previous/next unit\n")
	fmt.Fprintf(w, "  [ ]      Previous/next page\n")
	fmt.Fprintf(w, "  ↑/↓      Increase/decrease speed by %d WPM\n", reader.WPMStep)
	fmt.Fprintf(w, "  M        Cycle word/sentence/page mode\n")
	fmt.Fprintf(w, "  G        Go to page\n")
	fmt.Fprintf(w, "  R        Restart\n")
	fmt.Fprintf(w, "  Q        Quit\n")
	fmt.Fprintf(w, "  Click the progress bar to seek.\n")
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) > 0 {
		switch args[0] {
		case "read":
			return cmdRead(args[1:])
		case "serve":
			return cmdServe(args[1:])
		case "import":
			return cmdImport(args[1:], out)
		case "stats":
			return cmdStats(args[1:], out)
		case "version", "-v", "-version", "--version":
			fmt.Fprintf(out, "sezi %s (commit: %s, built: %s)\n", version, commit, date)
			return nil
		case "help", "-h", "-help", "--help":
			usage(out)
			return nil
		}
	}
	return cmdRead(args)
}

type readFlags struct {
	config   string
	wpm      int
	mode     string
	store    string
	server   string
	doc      string
	fresh    bool
	noBionic bool
	file     string
}

func parseReadFlags(args []string) (readFlags, error) {
	var f readFlags
	fs := flag.NewFlagSet("read", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { usage(os.Stderr); fmt.Fprintln(os.Stderr, "\nOptions:"); fs.PrintDefaults() }
	fs.StringVar(&f.config, "config", "", "Config file (default $XDG_CONFIG_HOME/sezi/config.yaml)")
	fs.IntVar(&f.wpm, "w", 0, "Words per minute (50-800)")
	fs.StringVar(&f.mode, "mode", "", "Reading mode: word, sentence or page")
	fs.StringVar(&f.store, "store", "", "Progress store: library, state or remote")
	fs.StringVar(&f.server, "server", "", "Read from a sezi server at this URL")
	fs.StringVar(&f.doc, "doc", "", "Document ID on the server")
	fs.BoolVar(&f.fresh, "fresh", false, "Ignore saved reading position")
	fs.BoolVar(&f.noBionic, "no-bionic", false, "Disable bionic highlighting")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if fs.NArg() > 1 {
		return f, fmt.Errorf("expected one file, got %d", fs.NArg())
	}
	f.file = fs.Arg(0)
	if f.server != "" && f.doc == "" {
		return f, errors.New("-server needs -doc")
	}
	if f.mode != "" {
		if _, err := document.ParseMode(f.mode); err != nil {
			return f, err
		}
	}
	return f, nil
}

// apply layers the flags over cfg.
func (f readFlags) apply(cfg *config.Config) error {
	if f.store != "" {
		cfg.Store = f.store
	}
	if f.server != "" {
		cfg.Store = config.StoreRemote
		cfg.Server = f.server
	}
	if f.wpm != 0 {
		cfg.Reader.WPM = f.wpm
	}
	if f.mode != "" {
		cfg.Reader.Mode = f.mode
	}
	if f.noBionic {
		cfg.Reader.Bionic = false
	}
	return cfg.Validate()
}

func (f readFlags) target() string {
	if f.doc != "" {
		return f.doc
	}
	return f.file
}

func cmdRead(args []string) error {
	f, err := parseReadFlags(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	if err := f.apply(&cfg); err != nil {
		return err
	}

	log, err := fileLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	var notifier tui.Notifier
	opts := app.Options{
		Config:   cfg,
		Logger:   log,
		WPM:      f.wpm,
		Fresh:    f.fresh,
		OnChange: notifier.Notify,
	}
	if f.mode != "" {
		opts.Mode, _ = document.ParseMode(f.mode)
	}

	var sess *app.Session
	piped := f.target() == ""
	if piped {
		text, err := readStdin()
		if err != nil {
			return err
		}
		sess, err = app.OpenText(text, opts)
		if err != nil {
			return err
		}
	} else {
		sess, err = app.Open(context.Background(), f.target(), opts)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("terminating", "signal", sig.String())
			sess.Reader.Unloading()
			cancel()
		case <-ctx.Done():
		}
	}()

	runErr := tui.Run(ctx, sess.Reader, &notifier, tui.Options{
		Title:    sess.Reader.Document().Name,
		Bionic:   cfg.Reader.Bionic,
		Settings: sess.Settings,
		InputTTY: piped,
	})

	closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.Reader.SaveTimeout.Duration+time.Second)
	defer closeCancel()
	if err := sess.Close(closeCtx); err != nil {
		log.Warn("close failed", "error", err)
	}

	if v := sess.Reader.View(); v.Completed {
		fmt.Println("\n  Reading complete!")
	}
	return runErr
}

func readStdin() (string, error) {
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return "", errors.New("no input provided. Provide a file or pipe text to stdin (try: sezi -h)")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("no text to read")
	}
	return string(data), nil
}

// fileLogger keeps log output off the terminal the reader draws on.
func fileLogger(cfg config.Config) (*logger.Logger, error) {
	path := cfg.LogFile
	if path == "" {
		path = filepath.Join(config.DataDir(), "sezi.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return logger.New(cfg.Log, path)
}

func serviceConfig(name string, args []string, extra func(*flag.FlagSet)) (config.Config, *flag.FlagSet, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cfgPath := fs.String("config", "", "Config file")
	dbPath := fs.String("db", "", "Library database path")
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	return cfg, fs, nil
}

func cmdServe(args []string) error {
	var port int
	cfg, _, err := serviceConfig("serve", args, func(fs *flag.FlagSet) {
		fs.IntVar(&port, "port", 0, "Listen port (default 51735)")
	})
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Port = port
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	lib, err := store.Open(cfg.DBPath, log)
	if err != nil {
		return err
	}
	defer lib.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(lib, log, api.Config{
		Addr:      cfg.Addr(),
		UploadDir: cfg.UploadDir,
		CacheTTL:  cfg.CacheTTL.Duration,
	})
	return srv.Run(ctx)
}

func cmdImport(args []string, out io.Writer) error {
	cfg, fs, err := serviceConfig("import", args, nil)
	if err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("import needs at least one file")
	}

	lib, err := store.Open(cfg.DBPath, logger.Nop())
	if err != nil {
		return err
	}
	defer lib.Close()

	ctx := context.Background()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tPAGES\tWORDS\tMINUTES")
	var failed []string
	for _, name := range fs.Args() {
		rec, st, err := importFile(ctx, lib, name)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.1f\n", rec.ID, rec.FileName, st.TotalPages, st.TotalWords, st.EstimatedReadingMinutes)
	}
	tw.Flush()
	if len(failed) > 0 {
		return fmt.Errorf("import failed:\n  %s", strings.Join(failed, "\n  "))
	}
	return nil
}

func importFile(ctx context.Context, lib *store.Store, name string) (*store.Document, document.Stats, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, document.Stats{}, err
	}
	doc, err := extract.Load(abs)
	if err != nil {
		return nil, document.Stats{}, err
	}
	if !doc.HasContent() {
		return nil, document.Stats{}, document.ErrNoContent
	}
	hash, err := state.Hash(abs)
	if err != nil {
		return nil, document.Stats{}, err
	}
	rec, err := lib.AddDocument(ctx, doc, hash)
	if err != nil {
		return nil, document.Stats{}, err
	}
	return rec, document.ComputeStats(doc), nil
}

func cmdStats(args []string, out io.Writer) error {
	cfg, fs, err := serviceConfig("stats", args, nil)
	if err != nil {
		return err
	}
	lib, err := store.Open(cfg.DBPath, logger.Nop())
	if err != nil {
		return err
	}
	defer lib.Close()

	ctx := context.Background()
	id := fs.Arg(0)
	totals, err := lib.Totals(ctx, id)
	if err != nil {
		return err
	}
	scope := "all documents"
	if id != "" {
		scope = id
	}
	fmt.Fprintf(out, "Reading stats (%s)\n", scope)
	fmt.Fprintf(out, "  Words read:  %d\n", totals.TotalWords)
	fmt.Fprintf(out, "  Time spent:  %s\n", (time.Duration(totals.TotalTime) * time.Second).String())
	fmt.Fprintf(out, "  Days read:   %d\n", totals.Sessions)
	if id != "" {
		return nil
	}

	recent, err := lib.RecentDocuments(ctx, cfg.RecentLimit)
	if err != nil {
		return err
	}
	if len(recent) == 0 {
		return nil
	}
	fmt.Fprintf(out, "\nRecent documents\n")
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tPAGE\tPROGRESS")
	for _, d := range recent {
		pct := 0.0
		if d.TotalWords > 0 {
			pct = float64(d.CurrentPosition) / float64(d.TotalWords) * 100
		}
		status := fmt.Sprintf("%.0f%%", pct)
		if d.Completed {
			status = "done"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%s\n", d.ID, d.FileName, d.CurrentPage, d.TotalPages, status)
	}
	return tw.Flush()
}
