//go:build gui

package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ali6parmak/sezi/internal/app"
	"github.com/ali6parmak/sezi/internal/config"
	"github.com/ali6parmak/sezi/internal/document"
	"github.com/ali6parmak/sezi/internal/logger"
	"github.com/ali6parmak/sezi/internal/reader"
)

// set by -ldflags at release time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type model struct {
	*reader.Reader
	fontSize  float32
	bionic    bool
	highlight color.Color
	text      color.Color
}

func createWordDisplay(m *model, word string, windowWidth float32) *fyne.Container {
	split := reader.Bionic(word)
	if !m.bionic {
		split = reader.BionicSplit{Rest: word}
	}

	focusText := canvas.NewText(split.Highlighted, m.highlight)
	focusText.TextSize = m.fontSize
	focusText.TextStyle.Bold = true

	restText := canvas.NewText(split.Rest+split.Punctuation, m.text)
	restText.TextSize = m.fontSize

	// bionic words pivot on the end of the bold prefix, plain ones on their middle
	focusSize := focusText.MinSize()
	focusX := windowWidth/2 - focusSize.Width
	if !m.bionic {
		focusX = (windowWidth - restText.MinSize().Width) / 2
	}
	focusX = max(focusX, 0)

	focusText.Move(fyne.NewPos(focusX, 0))
	restText.Move(fyne.NewPos(focusX+focusSize.Width, 0))
	return container.New(rowLayout{}, focusText, restText)
}

// createTextDisplay renders a sentence or a page as wrapping rich text.
func createTextDisplay(m *model, text string) fyne.CanvasObject {
	var segs []widget.RichTextSegment
	for i, split := range reader.BionicLine(text) {
		if i > 0 {
			segs = append(segs, &widget.TextSegment{Text: " ", Style: widget.RichTextStyleInline})
		}
		if m.bionic {
			bold := widget.RichTextStyleStrong
			bold.ColorName = theme.ColorNamePrimary
			segs = append(segs, &widget.TextSegment{Text: split.Highlighted, Style: bold})
			segs = append(segs, &widget.TextSegment{Text: split.Rest + split.Punctuation, Style: widget.RichTextStyleInline})
			continue
		}
		segs = append(segs, &widget.TextSegment{Text: split.String(), Style: widget.RichTextStyleInline})
	}
	rt := widget.NewRichText(segs...)
	rt.Wrapping = fyne.TextWrapWord
	return container.NewPadded(container.NewVScroll(rt))
}

// rowLayout keeps each object at the x it was moved to and centres the row
// vertically on its tallest member.
type rowLayout struct{}

func tallest(objects []fyne.CanvasObject) float32 {
	var h float32
	for _, o := range objects {
		h = max(h, o.MinSize().Height)
	}
	return h
}

func (rowLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(0, tallest(objects))
}

func (rowLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	top := max((size.Height-tallest(objects))/2, 0)
	for _, o := range objects {
		o.Move(fyne.NewPos(o.Position().X, top))
		o.Resize(o.MinSize())
	}
}

// seekTracker keeps the slider on the reading position except while the
// user is dragging it.
type seekTracker struct {
	bar      *widget.Slider
	dragging bool
}

func (s *seekTracker) show(fraction float64) {
	if s.dragging || s.bar.Value == fraction {
		return
	}
	s.bar.Value = fraction
	s.bar.Refresh()
}

// parseColor reads "#RRGGBB", falling back to fallback.
func parseColor(s string, fallback color.Color) color.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return fallback
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func statusText(v reader.View, fontSize float32) string {
	state := ""
	switch {
	case v.Completed:
		state = " [DONE]"
	case !v.Playing:
		state = " [PAUSED]"
	}
	return fmt.Sprintf("Page %d/%d | %s %d/%d | %d WPM | %.0f%% | Font: %.0f%s",
		v.Cursor.Page, v.PageCount, v.Cursor.Mode, v.Cursor.Index+1, v.UnitCount,
		v.WPM, v.Percent(), fontSize, state)
}

func main() {
	wpm := flag.Int("w", 0, "Words per minute (50-800)")
	mode := flag.String("mode", "", "Reading mode: word, sentence or page")
	cfgPath := flag.String("config", "", "Config file")
	storeKind := flag.String("store", "", "Progress store: library, state or remote")
	server := flag.String("server", "", "Read from a sezi server at this URL")
	docID := flag.String("doc", "", "Document ID on the server")
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "Print version and exit")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	fresh := flag.Bool("fresh", false, "Start from the beginning instead of the saved position")
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprint(out, "sezi (desktop) - paced reader\n\nusage: sezi [options] [file]\n\n")
		flag.PrintDefaults()
		fmt.Fprint(out, `
  sezi book.pdf                        resume at the saved position
  sezi -w 400 -mode sentence book.epub
  cat notes.txt | sezi                 read piped text
`)
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("sezi %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fatal(err)
	}
	if *storeKind != "" {
		cfg.Store = *storeKind
	}
	if *server != "" {
		cfg.Store, cfg.Server = config.StoreRemote, *server
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fatal(err)
	}
	defer log.Sync()

	changes := make(chan reader.View, 1)
	opts := app.Options{
		Config: cfg,
		Logger: log,
		WPM:    *wpm,
		Fresh:  *fresh,
		OnChange: func(v reader.View) {
			select {
			case changes <- v:
			default:
			}
		},
	}
	if *mode != "" {
		m, err := document.ParseMode(*mode)
		if err != nil {
			fatal(err)
		}
		opts.Mode = m
	}

	var sess *app.Session
	target := *docID
	if target == "" {
		target = flag.Arg(0)
	}
	if target != "" {
		sess, err = app.Open(context.Background(), target, opts)
	} else {
		text, rerr := pipedText()
		if rerr != nil {
			fatal(rerr)
		}
		sess, err = app.OpenText(text, opts)
	}
	if err != nil {
		fatal(err)
	}

	m := &model{
		Reader:    sess.Reader,
		fontSize:  float32(sess.Settings.FontSize),
		bionic:    cfg.Reader.Bionic,
		highlight: parseColor(sess.Settings.HighlightColor, color.RGBA{R: 255, A: 255}),
		text:      parseColor(sess.Settings.FontColor, color.White),
	}
	if m.fontSize <= 0 {
		m.fontSize = 48
	}

	a := fyneapp.New()
	w := a.NewWindow("sezi - " + filepath.Base(m.Document().Name))

	statusLabel := widget.NewLabel(statusText(m.View(), m.fontSize))
	statusLabel.Alignment = fyne.TextAlignCenter

	controlsLabel := widget.NewLabel("SPACE: play  ↑/↓: speed  ←/→: step  PgUp/PgDn: page  M: mode  B: bionic  +/-: font  R: restart  F: fullscreen  Q: quit")
	controlsLabel.Alignment = fyne.TextAlignCenter

	seekBar := widget.NewSlider(0, 1)
	seekBar.Step = 0.001
	seek := &seekTracker{bar: seekBar}
	seekBar.OnChanged = func(float64) {
		seek.dragging = true
	}
	seekBar.OnChangeEnded = func(f float64) {
		seek.dragging = false
		m.Seek(f)
	}

	wordContainer := container.NewStack()
	background := canvas.NewRectangle(parseColor(sess.Settings.BackgroundColor, color.Black))

	readingContent := container.NewBorder(
		statusLabel,
		container.NewVBox(seekBar, controlsLabel),
		nil, nil,
		wordContainer,
	)

	updateDisplay := func() {
		v := m.View()

		canvasWidth := w.Canvas().Size().Width
		if canvasWidth <= 0 {
			canvasWidth = 800
		}

		var display fyne.CanvasObject
		switch {
		case v.Unit == "":
			display = widget.NewLabel("No text on this page.")
		case v.Cursor.Mode == document.ModeWord:
			display = createWordDisplay(m, v.Unit, canvasWidth)
		default:
			display = createTextDisplay(m, v.Unit)
		}
		wordContainer.Objects = []fyne.CanvasObject{display}
		wordContainer.Refresh()

		seek.show(v.Percent() / 100)
		statusLabel.SetText(statusText(v, m.fontSize))
	}

	done := make(chan struct{})
	quit := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Reader.SaveTimeout.Duration+time.Second)
		defer cancel()
		if err := sess.Close(ctx); err != nil {
			log.Warn("close failed", "error", err)
		}
		select {
		case <-done:
		default:
			close(done)
		}
	}

	w.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeySpace:
			m.Toggle()
		case fyne.KeyUp:
			m.AdjustWPM(reader.WPMStep)
		case fyne.KeyDown:
			m.AdjustWPM(-reader.WPMStep)
		case fyne.KeyLeft:
			m.StepBack()
		case fyne.KeyRight:
			m.StepForward()
		case fyne.KeyPageUp:
			m.PrevPage()
		case fyne.KeyPageDown:
			m.NextPage()
		case fyne.KeyF:
			w.SetFullScreen(!w.FullScreen())
		case fyne.KeyQ:
			w.Close()
		}
	})

	w.Canvas().SetOnTypedRune(func(r rune) {
		switch r {
		case 'm', 'M':
			m.CycleMode()
		case 'r', 'R':
			m.Restart()
		case 'b', 'B':
			m.bionic = !m.bionic
			updateDisplay()
		case '+', '=':
			if m.fontSize < 200 {
				m.fontSize += 5
				updateDisplay()
			}
		case '-':
			if m.fontSize > 20 {
				m.fontSize -= 5
				updateDisplay()
			}
		}
	})

	lc := a.Lifecycle()
	lc.SetOnExitedForeground(func() {
		m.Hidden()
	})
	lc.SetOnStopped(func() {
		m.Unloading()
	})

	w.SetCloseIntercept(func() {
		quit()
		w.Close()
	})

	w.Resize(fyne.NewSize(800, 600))
	w.SetContent(container.NewStack(background, readingContent))

	go redrawLoop(w, changes, done, updateDisplay)

	w.ShowAndRun()
	quit()
}

// redrawLoop repaints on reader changes and whenever the canvas width moves,
// since a word's position depends on it.
func redrawLoop(w fyne.Window, changes <-chan reader.View, done <-chan struct{}, redraw func()) {
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	var width float32
	for {
		select {
		case <-done:
			return
		case <-changes:
			fyne.Do(redraw)
		case <-tick.C:
			if cur := w.Canvas().Size().Width; cur > 0 && cur != width {
				width = cur
				fyne.Do(redraw)
			}
		}
	}
}

// pipedText reads stdin, refusing an interactive terminal.
func pipedText() (string, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return "", err
	}
	if stat.Mode()&os.ModeCharDevice != 0 {
		return "", fmt.Errorf("no input: give a file or pipe text to stdin (see sezi -h)")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "sezi:", err)
	os.Exit(1)
}
