package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Add     key.Binding
	Delete  key.Binding
	Next    key.Binding
	Prev    key.Binding
	Up      key.Binding
	Down    key.Binding
	Save    key.Binding
	Dismiss key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Add:     key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "add row")),
		Delete:  key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete row")),
		Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Up:      key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "row up")),
		Down:    key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "row down")),
		Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "calculate")),
		Dismiss: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "hide status")),
		Help:    key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Delete, k.Save, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Add, k.Delete, k.Save},
		{k.Next, k.Prev, k.Up, k.Down},
		{k.Dismiss, k.Help, k.Quit},
	}
}
