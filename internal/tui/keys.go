package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings of the progress view.
type KeyMap struct {
	Quit key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("ctrl+c", "stop after current table"),
		),
	}
}
