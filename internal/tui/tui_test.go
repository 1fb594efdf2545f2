package tui

import (
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/facebookgo/clock"

	"github.com/ali6parmak/sezi/internal/document"
	"github.com/ali6parmak/sezi/internal/reader"
)

func newTestModel(t *testing.T) (Model, *reader.Reader) {
	t.Helper()
	doc := &document.Document{
		ID:   "doc",
		Name: "sample.txt",
		Pages: []document.Page{
			document.NewPage(1, "Reading quickly is fun. Another sentence follows here."),
			document.NewPage(2, "Second page words."),
		},
	}
	r, err := reader.NewReader(doc, nil, reader.Options{Clock: clock.NewMock(), WPM: 300})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Close(context.Background()) })

	m := New(r, Options{Title: "sample.txt", Bionic: true})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 42, Height: 20})
	return next.(Model), r
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeys(t *testing.T) {
	tests := []struct {
		name  string
		keys  []tea.KeyMsg
		check func(reader.View) bool
	}{
		{"space plays", []tea.KeyMsg{{Type: tea.KeySpace}}, func(v reader.View) bool { return v.Playing }},
		{"space twice pauses", []tea.KeyMsg{{Type: tea.KeySpace}, {Type: tea.KeySpace}}, func(v reader.View) bool { return !v.Playing }},
		{"right steps", []tea.KeyMsg{{Type: tea.KeyRight}}, func(v reader.View) bool { return v.Unit == "quickly" }},
		{"l then h", []tea.KeyMsg{runes("l"), runes("h")}, func(v reader.View) bool { return v.Absolute == 0 }},
		{"next page", []tea.KeyMsg{runes("]")}, func(v reader.View) bool { return v.Cursor.Page == 2 }},
		{"faster", []tea.KeyMsg{{Type: tea.KeyUp}}, func(v reader.View) bool { return v.WPM == 300+reader.WPMStep }},
		{"slower", []tea.KeyMsg{runes("-")}, func(v reader.View) bool { return v.WPM == 300-reader.WPMStep }},
		{"mode cycles", []tea.KeyMsg{runes("m")}, func(v reader.View) bool { return v.Cursor.Mode == document.ModeSentence }},
		{"restart", []tea.KeyMsg{runes("]"), runes("r")}, func(v reader.View) bool { return v.Absolute == 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, r := newTestModel(t)
			for _, k := range tt.keys {
				m, _ = send(m, k)
			}
			if v := r.View(); !tt.check(v) {
				t.Errorf("unexpected view %+v", v)
			}
		})
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	m, cmd := send(m, runes("q"))
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if m.View() != "" {
		t.Error("view not cleared on quit")
	}
}

func TestJumpToPage(t *testing.T) {
	m, r := newTestModel(t)
	m, _ = send(m, runes("g"))
	if !m.jumping {
		t.Fatal("g did not open page input")
	}
	m, _ = send(m, runes("2"))
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.jumping {
		t.Error("page input still open")
	}
	if v := r.View(); v.Cursor.Page != 2 {
		t.Errorf("page = %d, want 2", v.Cursor.Page)
	}
}

func TestJumpCancel(t *testing.T) {
	m, r := newTestModel(t)
	m, _ = send(m, runes("g"))
	m, _ = send(m, runes("2"))
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.jumping || r.View().Cursor.Page != 1 {
		t.Errorf("escape should cancel the jump")
	}
}

func TestMouseSeek(t *testing.T) {
	m, r := newTestModel(t)
	r.Play()

	// 11 words in total; the middle of the bar is word 5.
	send(m, tea.MouseMsg{X: 21, Y: m.barRow(), Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})

	v := r.View()
	if v.Playing {
		t.Error("seek did not stop playback")
	}
	if v.Absolute != 5 {
		t.Errorf("seek landed at %d, want 5", v.Absolute)
	}
}

func TestMouseDragSeeks(t *testing.T) {
	m, r := newTestModel(t)

	m, _ = send(m, tea.MouseMsg{X: 0, Y: m.barRow(), Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if v := r.View(); v.Absolute != 0 {
		t.Fatalf("press at bar start landed at %d", v.Absolute)
	}

	// hover without a button held leaves the position alone
	m, _ = send(m, tea.MouseMsg{X: 30, Y: m.barRow(), Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	if v := r.View(); v.Absolute != 0 {
		t.Errorf("hover moved to %d", v.Absolute)
	}

	// 30/42 of 11 words is word 7
	send(m, tea.MouseMsg{X: 30, Y: m.barRow(), Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	if v := r.View(); v.Absolute != 7 {
		t.Errorf("drag landed at %d, want 7", v.Absolute)
	}
}

func TestMouseOutsideBarIgnored(t *testing.T) {
	m, r := newTestModel(t)
	send(m, tea.MouseMsg{X: 21, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if v := r.View(); v.Absolute != 0 {
		t.Errorf("click off the bar moved to %d", v.Absolute)
	}
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t)
	out := m.View()

	if got := strings.Count(out, "\n") + 1; got != 20 {
		t.Errorf("view has %d lines, want 20", got)
	}
	for _, want := range []string{"sample.txt", "Page 1/2", "300 WPM", "PAUSED", "Read", "ing"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestViewSentenceMode(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = send(m, runes("b"))
	m, _ = send(m, runes("m"))
	out := m.View()
	if !strings.Contains(out, "sentence 1/2") {
		t.Errorf("status missing sentence position:\n%s", out)
	}
	if !strings.Contains(out, "quickly") {
		t.Errorf("sentence text missing:\n%s", out)
	}
}

func TestHelpBindings(t *testing.T) {
	k := defaultKeys()
	for _, row := range k.FullHelp() {
		for _, b := range row {
			if !b.Enabled() || b.Help().Key == "" {
				t.Errorf("binding %v has no help", b.Keys())
			}
		}
	}
	if !key.Matches(tea.KeyMsg{Type: tea.KeyCtrlC}, k.Quit) {
		t.Error("ctrl+c does not quit")
	}
}

func TestNotifierWithoutProgram(t *testing.T) {
	var n Notifier
	n.Notify(reader.View{})
}
