package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/google/uuid"

	"github.com/vovakirdan/sisyphus/internal/core"
	"github.com/vovakirdan/sisyphus/internal/persist"
	"github.com/vovakirdan/sisyphus/internal/registry"
	"github.com/vovakirdan/sisyphus/internal/storage"
)

// ProgressLoader reads a player's progress from their saves.
type ProgressLoader func(saves *persist.Manager, player string) ProgressData

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.sisyphus/host_key.
	HostKeyPath string

	// DBPath is the path to the saves database.
	DBPath string

	// Separator is the save key path separator.
	Separator string

	// TickRate is the simulation rate of every session.
	TickRate int

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Progress fills the progress screen. Nil hides scores and
	// achievements.
	Progress ProgressLoader
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.sisyphus/saves.db",
		Separator:   ".",
		TickRate:    60,
		IdleTimeout: 30 * time.Minute,
	}
}

// SSHServer wraps a Wish SSH server. Every SSH user gets their own save
// namespace in the shared store.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// connKey is the ssh.Context key of the connection's *connection.
type connKey struct{}

// connection is shared by the middleware and the session's program.
type connection struct {
	record storage.SessionRecord
	live   LiveGame
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "sisyphus-ssh",
	})

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open saves database: %w", err)
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			store.Close()
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".sisyphus", "host_key")
	}
	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		store.Close()
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.sessionMiddleware,
		),
	)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}
	conn, _ := sshSession.Context().Value(connKey{}).(*connection)
	if conn == nil {
		conn = &connection{record: storage.SessionRecord{ID: uuid.NewString(), User: sshSession.User()}}
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
	}
	model := NewSessionModel(SessionConfig{
		Backend:   s.store.Namespace(userNamespace(sshSession.User())),
		Separator: s.config.Separator,
		Sessions:  s.store,
		Progress:  s.config.Progress,
		Player:    sshSession.User(),
		Record:    &conn.record,
		Live:      &conn.live,
		Logger:    s.logger.With("session", conn.record.ID),
	}, cfg)

	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

// userNamespace returns the save namespace of an SSH user.
func userNamespace(user string) string {
	return "ssh:" + user
}

// sessionMiddleware logs sessions and stores a record of each once it ends.
// A game left running by a dropped connection is detached so its progress
// is saved.
func (s *SSHServer) sessionMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		conn := &connection{record: storage.SessionRecord{
			ID:        uuid.NewString(),
			User:      sshSession.User(),
			Remote:    sshSession.RemoteAddr().String(),
			StartedAt: time.Now(),
		}}
		rec := &conn.record
		sshSession.Context().SetValue(connKey{}, conn)
		s.logger.Info("session started", "session", rec.ID, "user", rec.User, "remote", rec.Remote)

		next(sshSession)

		conn.live.Detach()
		rec.EndedAt = time.Now()
		if err := s.store.SaveSession(*rec); err != nil {
			s.logger.Warn("cannot record session", "session", rec.ID, "error", err)
		}
		s.logger.Info("session ended", "session", rec.ID, "user", rec.User, "best", rec.Best, "duration", rec.Duration())
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	if closeErr := s.store.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SessionConfig is what a session model needs from its host.
type SessionConfig struct {
	// Backend holds the player's saves. Each game and progress view gets a
	// fresh manager over it.
	Backend   persist.Backend
	Separator string
	// Sessions lists past sessions for the progress screen. May be nil.
	Sessions *storage.Store
	Progress ProgressLoader
	Player   string
	// Record receives the best run of the session.
	Record *storage.SessionRecord
	// Live tracks the running game for the host. May be nil.
	Live   *LiveGame
	Logger *log.Logger
}

// LiveGame holds the game a session is running, so the host can detach it
// if the program is torn down mid-game.
type LiveGame struct {
	mu    sync.Mutex
	model *Model
}

func (l *LiveGame) set(m *Model) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.model = m
}

// Detach detaches the running game, if any.
func (l *LiveGame) Detach() {
	if l == nil {
		return
	}
	l.mu.Lock()
	m := l.model
	l.model = nil
	l.mu.Unlock()
	if m != nil {
		m.Detach()
	}
}

// sessionScreen is what the session is showing.
type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenGame
	screenProgress
)

// SessionModel manages the session flow: menu -> game or progress -> menu.
type SessionModel struct {
	cfg      SessionConfig
	config   core.RuntimeConfig
	screen   sessionScreen
	menu     MenuModel
	game     Model
	progress ScoreboardModel
	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(cfg SessionConfig, rc core.RuntimeConfig) SessionModel {
	if cfg.Logger == nil {
		cfg.Logger = log.Default().WithPrefix("session")
	}
	if cfg.Record == nil {
		cfg.Record = &storage.SessionRecord{}
	}
	return SessionModel{
		cfg:    cfg,
		config: rc,
		menu:   NewMenuModel(rc.ScreenW, rc.ScreenH),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

func (m SessionModel) saves() *persist.Manager {
	opts := []persist.Option{persist.WithLogger(m.cfg.Logger.WithPrefix("saves"))}
	if m.cfg.Separator != "" {
		opts = append(opts, persist.WithSeparator(m.cfg.Separator))
	}
	return persist.NewManager(m.cfg.Backend, opts...)
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenProgress:
		return m.updateProgress(msg)
	default:
		return m.updateMenu(msg)
	}
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsScoreboard():
		m.progress = NewScoreboardModel(m.loadProgress(), m.config.ScreenW, m.config.ScreenH)
		m.screen = screenProgress
		return m, m.progress.Init()

	case m.menu.Selected() != nil:
		game, err := registry.Create(m.menu.Selected().ID)
		if err != nil {
			m.cfg.Logger.Warn("cannot create game", "error", err)
			m.menu = NewMenuModel(m.config.ScreenW, m.config.ScreenH)
			return m, nil
		}
		rec := m.cfg.Record
		m.game = NewModel(game, m.config, Options{
			Saves:  m.saves(),
			Player: m.cfg.Player,
			Logger: m.cfg.Logger,
			OnExit: func(st core.GameState) {
				rec.Best = max(rec.Best, st.Best)
			},
		})
		m.screen = screenGame
		live := m.game
		m.cfg.Live.set(&live)
		return m, m.game.Init()
	}

	return m, cmd
}

// updateGame handles updates when in game mode. Leaving the game returns
// to the menu instead of ending the program.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(Model); ok {
		m.game = gameModel
	}
	if m.game.IsQuitting() {
		return m.backToMenu()
	}
	return m, cmd
}

// updateProgress handles updates when showing progress.
func (m SessionModel) updateProgress(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.progress.Update(msg)
	if board, ok := newModel.(ScoreboardModel); ok {
		m.progress = board
	}
	switch {
	case m.progress.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.progress.IsGoingBack():
		return m.backToMenu()
	}
	return m, cmd
}

func (m SessionModel) backToMenu() (tea.Model, tea.Cmd) {
	m.cfg.Live.set(nil)
	m.screen = screenMenu
	m.menu = NewMenuModel(m.config.ScreenW, m.config.ScreenH)
	return m, m.menu.Init()
}

// loadProgress reads progress through a manager of its own so it does not
// collide with a game's registrations.
func (m SessionModel) loadProgress() ProgressData {
	data := ProgressData{Player: m.cfg.Player}
	if m.cfg.Progress != nil {
		data = m.cfg.Progress(m.saves(), m.cfg.Player)
	}
	if m.cfg.Sessions != nil {
		sessions, err := m.cfg.Sessions.RecentSessions(50)
		if err != nil {
			m.cfg.Logger.Warn("cannot list sessions", "error", err)
		}
		data.Sessions = sessions
	}
	return data
}

// Detach releases a game still running when the program ends.
func (m SessionModel) Detach() {
	if m.screen == screenGame {
		m.game.Detach()
	}
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.screen {
	case screenGame:
		return m.game.View()
	case screenProgress:
		return m.progress.View()
	default:
		return m.menu.View()
	}
}

// RunSession runs the menu flow locally and blocks until it exits.
func RunSession(cfg SessionConfig, rc core.RuntimeConfig) error {
	p := tea.NewProgram(NewSessionModel(cfg, rc), tea.WithAltScreen())
	final, err := p.Run()
	if sm, ok := final.(SessionModel); ok {
		sm.Detach()
	}
	return err
}
