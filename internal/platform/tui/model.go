package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/sisyphus/internal/core"
	"github.com/vovakirdan/sisyphus/internal/input"
	"github.com/vovakirdan/sisyphus/internal/input/keyboard"
	"github.com/vovakirdan/sisyphus/internal/persist"
	"github.com/vovakirdan/sisyphus/internal/registry"
)

// Options configures a game session.
type Options struct {
	Saves  *persist.Manager
	Player string
	Logger *log.Logger
	Theme  Theme

	// ScreenshotDir is where ctrl+s writes the screen. Empty disables
	// screenshots.
	ScreenshotDir string

	// OnExit is called once with the final state when the game is detached.
	OnExit func(core.GameState)

	// RepeatWindow is how long a key stays down after its last press.
	// Zero uses keyboard.DefaultRepeatWindow, negative reads presses
	// frame by frame.
	RepeatWindow time.Duration
}

// session holds what must survive Bubble Tea's value copies.
type session struct {
	detached bool
}

// Model is the Bubble Tea model for running a game.
type Model struct {
	game     registry.Game
	screen   *core.Screen
	keyboard *keyboard.Keyboard
	sampler  *input.Sampler
	config   core.RuntimeConfig
	opts     Options
	keys     KeyMap
	help     help.Model
	session  *session
	state    core.GameState
	quitting bool
}

// NewModel attaches game to a fresh keyboard and returns a model that runs
// it.
func NewModel(game registry.Game, cfg core.RuntimeConfig, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = log.Default().WithPrefix("tui")
	}
	if opts.Theme == nil {
		opts.Theme = DefaultTheme()
	}

	window := opts.RepeatWindow
	if window == 0 {
		window = keyboard.DefaultRepeatWindow
	}
	kb := keyboard.New(keyboard.WithRepeatWindow(window))
	sampler := input.NewSampler(kb)
	game.Attach(registry.Env{
		Keys:   kb,
		Input:  sampler,
		Saves:  opts.Saves,
		Player: opts.Player,
		Logger: opts.Logger.WithPrefix(game.ID()),
	})

	h := help.New()
	h.Width = cfg.ScreenW

	return Model{
		game:     game,
		screen:   core.NewScreen(cfg.ScreenW, max(cfg.ScreenH-1, 0)),
		keyboard: kb,
		sampler:  sampler,
		config:   cfg,
		opts:     opts,
		keys:     DefaultKeyMap(),
		help:     h,
		session:  &session{},
	}
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(m.session, m.config.TickDuration())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, max(msg.Height-1, 0))
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		if msg.owner != m.session {
			return m, nil
		}
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.Map(msg) {
	case ActionQuit:
		return m.quit()
	case ActionScreenshot:
		m.saveScreenshot()
	case ActionHelp:
		m.help.ShowAll = !m.help.ShowAll
	default:
		m.keyboard.HandleKey(msg)
	}
	return m, nil
}

// handleTick samples the keyboard and steps the game by one tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	m.sampler.Step()
	result := m.game.Step(m.config.TickDuration())
	m.state = result.State
	if result.Quit {
		return m.quit()
	}
	return m, tickCmd(m.session, m.config.TickDuration())
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.Detach()
	return m, tea.Quit
}

// Detach releases the game once. Safe to call after the program ends.
func (m Model) Detach() {
	if m.session.detached {
		return
	}
	m.session.detached = true
	m.game.Detach()
	if m.opts.OnExit != nil {
		m.opts.OnExit(m.game.State())
	}
}

// saveScreenshot saves the current screen to a file.
func (m Model) saveScreenshot() {
	if m.opts.ScreenshotDir == "" {
		return
	}
	m.game.Render(m.screen)

	if err := os.MkdirAll(m.opts.ScreenshotDir, 0o755); err != nil {
		m.opts.Logger.Warn("cannot create screenshot directory", "error", err)
		return
	}
	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(m.opts.ScreenshotDir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.opts.Logger.Warn("cannot save screenshot", "error", err)
		return
	}
	m.opts.Logger.Info("saved screenshot", "path", path)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return m.opts.Theme.Render(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keys))
}

// State returns the game state after the last tick.
func (m Model) State() core.GameState {
	return m.state
}

// IsQuitting returns true once the player has left the game.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// Run starts the Bubble Tea program for game and blocks until it exits.
func Run(game registry.Game, cfg core.RuntimeConfig, opts Options) error {
	model := NewModel(game, cfg, opts)
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err := p.Run()
	model.Detach()
	return err
}
