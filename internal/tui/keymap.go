package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Imports
	ImportPassive key.Binding
	ImportActive  key.Binding

	// Resolution
	Merge      key.Binding
	Reschedule key.Binding
	Defer      key.Binding
	Dismiss    key.Binding

	// Application
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		ImportPassive: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "import passive"),
		),
		ImportActive: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "import active"),
		),
		Merge: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "append back & reset"),
		),
		Reschedule: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset only"),
		),
		Defer: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit in Anki & reset"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d", "dismiss"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ImportPassive, k.ImportActive, k.Merge, k.Reschedule, k.Defer, k.Dismiss, k.Quit}
}

// FullHelp returns every binding grouped by purpose.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.ImportPassive, k.ImportActive},
		{k.Merge, k.Reschedule, k.Defer, k.Dismiss},
		{k.Help, k.Quit},
	}
}
