// Package tui runs games in the terminal with Bubble Tea. It owns the
// frame loop, feeds key messages to the keyboard provider and renders the
// game's screen buffer, locally or over SSH.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a game simulation tick. Ticks belong to the
// game session that scheduled them; a model drops ticks of other sessions.
type TickMsg struct {
	At    time.Time
	owner *session
}

// tickCmd returns a Bubble Tea command that sends one tick after interval.
func tickCmd(owner *session, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{At: t, owner: owner}
	})
}
