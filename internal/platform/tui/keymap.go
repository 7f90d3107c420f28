package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap holds the keys the platform keeps for itself. Everything else is
// forwarded to the keyboard provider, so these must not collide with game
// keys.
type KeyMap struct {
	Quit       key.Binding
	Screenshot key.Binding
	Help       key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// FullHelp returns key bindings for the full help view, one per column
// so the help stays on a single line.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Quit}, {k.Screenshot}, {k.Help}}
}

// DefaultKeyMap returns the default platform bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
		Screenshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "screenshot"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
	}
}

// PlatformAction is what a key means to the platform.
type PlatformAction int

const (
	ActionForward PlatformAction = iota // Not a platform key; goes to the game
	ActionQuit
	ActionScreenshot
	ActionHelp
)

// Map translates a key message to a platform action.
func (k KeyMap) Map(msg tea.KeyMsg) PlatformAction {
	switch {
	case key.Matches(msg, k.Quit):
		return ActionQuit
	case key.Matches(msg, k.Screenshot):
		return ActionScreenshot
	case key.Matches(msg, k.Help):
		return ActionHelp
	}
	return ActionForward
}
