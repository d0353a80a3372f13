package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap implements help.KeyMap.
type keyMap struct {
	Quit    key.Binding
	Clear   key.Binding
	Refresh key.Binding

	NextPlayer key.Binding
	PrevPlayer key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Clear, k.NextPlayer, k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Clear, k.Refresh, k.Quit}, {k.PrevPlayer, k.NextPlayer}}
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear notifications")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),

	NextPlayer: key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n", "next player")),
	PrevPlayer: key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p", "previous player")),
}
