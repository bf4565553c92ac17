package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Seed      key.Binding
	Clock     key.Binding
	Reset     key.Binding
	Randomize key.Binding
	Save      key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Seed:      key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6"), key.WithHelp("1-6", "seed")),
	Clock:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clock")),
	Reset:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset")),
	Randomize: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "randomize")),
	Save:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Seed, k.Clock, k.Reset, k.Randomize, k.Save, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
