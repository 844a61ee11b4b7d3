package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Navigation
	Up        key.Binding
	Down      key.Binding
	NextPane  key.Binding
	NextPort  key.Binding
	LogUp     key.Binding
	LogDown   key.Binding
	Authorize key.Binding
	Forget    key.Binding

	// Connection
	Connect    key.Binding
	Disconnect key.Binding
	Refresh    key.Binding
	Query      key.Binding

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
		NextPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "switch list"),
		),
		NextPort: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "next port"),
		),
		LogUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll log up"),
		),
		LogDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll log down"),
		),
		Authorize: key.NewBinding(
			key.WithKeys("a", "enter"),
			key.WithHelp("a/Enter", "add to database"),
		),
		Forget: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d/Del", "remove"),
		),
		Connect: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "connect"),
		),
		Disconnect: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "disconnect"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh ports"),
		),
		Query: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "query mode"),
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

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Connect, k.Authorize, k.Forget, k.Help, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPane, k.LogUp, k.LogDown},
		{k.Authorize, k.Forget},
		{k.Connect, k.Disconnect, k.NextPort, k.Refresh, k.Query},
		{k.Help, k.Quit},
	}
}
