// Package tui is the terminal front end: a bubbletea program that renders
// the reader's current unit and forwards keys, mouse and focus events to it.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ali6parmak/sezi/internal/document"
	"github.com/ali6parmak/sezi/internal/reader"
)

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)

	completeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)
)

// Options tune the terminal front end.
type Options struct {
	Title    string
	Bionic   bool
	Settings document.Settings
	// InputTTY reads keys from the terminal when stdin carries the text.
	InputTTY bool
}

// changedMsg tells the program the reader moved on its own.
type changedMsg struct{}

// Notifier forwards reader changes into a running program. Pass Notify as
// the reader's OnChange before the program exists.
type Notifier struct {
	p atomic.Pointer[tea.Program]
}

func (n *Notifier) Attach(p *tea.Program) {
	n.p.Store(p)
}

// Notify never blocks the reader: the send happens on its own goroutine.
func (n *Notifier) Notify(reader.View) {
	if p := n.p.Load(); p != nil {
		go p.Send(changedMsg{})
	}
}

type Model struct {
	r     *reader.Reader
	title string

	bionic    bool
	highlight lipgloss.Style
	text      lipgloss.Style

	keys keyMap
	help help.Model
	bar  progress.Model
	jump textinput.Model

	jumping  bool
	quitting bool
	width    int
	height   int
}

func New(r *reader.Reader, opts Options) Model {
	s := opts.Settings
	if s.HighlightColor == "" {
		s = document.DefaultSettings()
	}

	jump := textinput.New()
	jump.Prompt = "go to page: "
	jump.CharLimit = 6
	jump.Validate = func(v string) error {
		if v == "" {
			return nil
		}
		_, err := strconv.Atoi(v)
		return err
	}

	return Model{
		r:         r,
		title:     opts.Title,
		bionic:    opts.Bionic,
		highlight: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(s.HighlightColor)),
		text:      lipgloss.NewStyle().Foreground(lipgloss.Color(s.FontColor)),
		keys:      defaultKeys(),
		help:      help.New(),
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(80)),
		jump:      jump,
		width:     80,
		height:    24,
	}
}

// Run drives the reader until the user quits or ctx ends. Closing the reader
// is left to the caller so the final save happens after the terminal is
// restored.
func Run(ctx context.Context, r *reader.Reader, n *Notifier, opts Options) error {
	progOpts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	}
	if opts.InputTTY {
		progOpts = append(progOpts, tea.WithInputTTY())
	}
	p := tea.NewProgram(New(r, opts), progOpts...)
	n.Attach(p)
	defer n.Attach(nil)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.jumping {
			return m.updateJump(msg)
		}
		return m.updateKey(msg)

	case tea.MouseMsg:
		if m.seeking(msg) {
			m.r.SeekPointer(float64(msg.X), 0, float64(m.bar.Width))
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.BlurMsg:
		m.r.Hidden()
		return m, nil

	case changedMsg:
		return m, nil
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		m.r.Toggle()
	case key.Matches(msg, m.keys.Back):
		m.r.StepBack()
	case key.Matches(msg, m.keys.Forward):
		m.r.StepForward()
	case key.Matches(msg, m.keys.PrevPage):
		m.r.PrevPage()
	case key.Matches(msg, m.keys.NextPage):
		m.r.NextPage()
	case key.Matches(msg, m.keys.Faster):
		m.r.AdjustWPM(reader.WPMStep)
	case key.Matches(msg, m.keys.Slower):
		m.r.AdjustWPM(-reader.WPMStep)
	case key.Matches(msg, m.keys.Mode):
		m.r.CycleMode()
	case key.Matches(msg, m.keys.Restart):
		m.r.Restart()
	case key.Matches(msg, m.keys.Bionic):
		m.bionic = !m.bionic
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Jump):
		m.r.Pause()
		m.jumping = true
		m.jump.SetValue("")
		return m, m.jump.Focus()
	}
	return m, nil
}

func (m Model) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if n, err := strconv.Atoi(m.jump.Value()); err == nil {
			m.r.JumpToPage(n)
		}
		fallthrough
	case tea.KeyEsc:
		m.jumping = false
		m.jump.Blur()
		return m, nil
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

// seeking reports whether msg is a left-button press or drag on the bar.
func (m Model) seeking(msg tea.MouseMsg) bool {
	if msg.Button != tea.MouseButtonLeft || msg.Y != m.barRow() {
		return false
	}
	return msg.Action == tea.MouseActionPress || msg.Action == tea.MouseActionMotion
}

// barRow is the screen row of the progress bar, just above the help line.
func (m Model) barRow() int {
	return m.height - 2
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	v := m.r.View()
	height := m.height
	if height < 3 {
		height = 3
	}

	var body []string
	if m.help.ShowAll {
		body = strings.Split(m.help.View(m.keys), "\n")
	} else {
		body = m.renderUnit(v)
	}

	avail := height - 3
	if len(body) > avail {
		body = body[:avail]
	}
	top := (avail - len(body)) / 2

	lines := make([]string, 0, height)
	lines = append(lines, m.status(v))
	for i := 0; i < top; i++ {
		lines = append(lines, "")
	}
	lines = append(lines, body...)
	for len(lines) < height-2 {
		lines = append(lines, "")
	}
	lines = append(lines, m.bar.ViewAs(v.Percent()/100))
	if m.jumping {
		lines = append(lines, m.jump.View())
	} else {
		lines = append(lines, m.help.View(m.keys))
	}
	return strings.Join(lines, "\n")
}

func (m Model) status(v reader.View) string {
	state := ""
	switch {
	case v.Completed:
		state = completeStyle.Render(" Reading complete!")
	case !v.Playing:
		state = pausedStyle.Render(" [PAUSED]")
	}
	title := ""
	if m.title != "" {
		title = m.title + " | "
	}
	return statusStyle.Render(fmt.Sprintf("%sPage %d/%d | %s %d/%d | %d WPM | %.0f%%",
		title,
		v.Cursor.Page, v.PageCount,
		v.Cursor.Mode, v.Cursor.Index+1, v.UnitCount,
		v.WPM,
		v.Percent(),
	)) + state
}

// renderUnit lays out the current unit. A single word is anchored so its
// highlighted prefix sits at the centre column; longer units wrap.
func (m Model) renderUnit(v reader.View) []string {
	if v.Unit == "" {
		return []string{"No text on this page."}
	}
	if v.Cursor.Mode == document.ModeWord {
		pad := m.width/2 - reader.FocusWidth(v.Unit)
		if pad < 0 {
			pad = 0
		}
		return []string{strings.Repeat(" ", pad) + m.renderWord(v.Unit)}
	}

	words := strings.Fields(v.Unit)
	rendered := make([]string, len(words))
	for i, w := range words {
		rendered[i] = m.renderWord(w)
	}
	width := m.width - 4
	if width < 10 {
		width = 10
	}
	block := lipgloss.NewStyle().Width(width).Padding(0, 2).Render(strings.Join(rendered, " "))
	return strings.Split(block, "\n")
}

func (m Model) renderWord(word string) string {
	if !m.bionic {
		return m.text.Render(word)
	}
	b := reader.Bionic(word)
	return m.highlight.Render(b.Highlighted) + m.text.Render(b.Rest+b.Punctuation)
}
