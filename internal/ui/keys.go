package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	PlayPause key.Binding
	Next      key.Binding
	Prev      key.Binding
	SeekBack  key.Binding
	SeekFwd   key.Binding
	Mode      key.Binding
	Theme     key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "play"),
	),
	PlayPause: key.NewBinding(
		key.WithKeys(" ", "space"),
		key.WithHelp("space", "pause"),
	),
	Next: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n/p", "track"),
	),
	Prev: key.NewBinding(
		key.WithKeys("p"),
	),
	SeekBack: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/→", "seek"),
	),
	SeekFwd: key.NewBinding(
		key.WithKeys("right", "l"),
	),
	Mode: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "viz"),
	),
	Theme: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "theme"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap. Bindings without help text (Prev,
// SeekFwd) are covered by their pair's entry.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.SeekBack, k.Next, k.Toggle, k.Mode, k.Theme, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle},
		{k.PlayPause, k.Next, k.SeekBack},
		{k.Mode, k.Theme, k.Quit},
	}
}
