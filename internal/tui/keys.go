package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle   key.Binding
	Back     key.Binding
	Forward  key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Faster   key.Binding
	Slower   key.Binding
	Mode     key.Binding
	Restart  key.Binding
	Jump     key.Binding
	Bionic   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Back:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "back")),
		Forward:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "forward")),
		PrevPage: key.NewBinding(key.WithKeys("pgup", "["), key.WithHelp("pgup/[", "prev page")),
		NextPage: key.NewBinding(key.WithKeys("pgdown", "]"), key.WithHelp("pgdn/]", "next page")),
		Faster:   key.NewBinding(key.WithKeys("up", "+", "="), key.WithHelp("↑/+", "faster")),
		Slower:   key.NewBinding(key.WithKeys("down", "-"), key.WithHelp("↓/-", "slower")),
		Mode:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mode")),
		Restart:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Jump:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to page")),
		Bionic:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bionic")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Back, k.Forward, k.Faster, k.Slower, k.Mode, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Back, k.Forward, k.PrevPage, k.NextPage},
		{k.Faster, k.Slower, k.Mode, k.Bionic},
		{k.Restart, k.Jump, k.Help, k.Quit},
	}
}
