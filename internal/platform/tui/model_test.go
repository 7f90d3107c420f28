package tui

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/sisyphus/internal/core"
	"github.com/vovakirdan/sisyphus/internal/input"
	"github.com/vovakirdan/sisyphus/internal/registry"
)

// fakeGame counts what the platform does to it.
type fakeGame struct {
	key      *input.Key
	steps    int
	presses  int
	dt       time.Duration
	resets   int
	detaches int
}

func (g *fakeGame) ID() string    { return "fake" }
func (g *fakeGame) Title() string { return "Fake" }

func (g *fakeGame) Attach(env registry.Env) {
	g.key = env.Keys.Input("a")
}

func (g *fakeGame) Reset(core.RuntimeConfig) { g.resets++ }

func (g *fakeGame) Step(dt time.Duration) core.StepResult {
	g.steps++
	g.dt = dt
	if g.key.IsJustDown() {
		g.presses++
	}
	return core.StepResult{State: core.GameState{Score: g.presses, Best: g.presses}}
}

func (g *fakeGame) Render(dst *core.Screen) {
	dst.Clear()
	dst.DrawText(0, 0, "fake")
}

func (g *fakeGame) State() core.GameState {
	return core.GameState{Score: g.presses, Best: g.presses}
}

func (g *fakeGame) Detach() { g.detaches++ }

func newFakeModel(t *testing.T, onExit func(core.GameState)) (Model, *fakeGame) {
	t.Helper()
	g := &fakeGame{}
	m := NewModel(g, core.RuntimeConfig{ScreenW: 20, ScreenH: 5, TickRate: 50}, Options{
		Logger: log.New(io.Discard),
		Theme:  MonoTheme(),
		OnExit: onExit,
	})
	m.Init()
	return m, g
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelTicksGame(t *testing.T) {
	m, g := newFakeModel(t, nil)
	if g.resets != 1 {
		t.Fatalf("Init should reset the game once, got %d", g.resets)
	}

	m = update(m, TickMsg{At: time.Now(), owner: m.session})
	if g.steps != 1 || g.dt != 20*time.Millisecond {
		t.Errorf("steps = %d, dt = %v; expected 1 step of 20ms", g.steps, g.dt)
	}

	m = update(m, TickMsg{At: time.Now(), owner: &session{}})
	if g.steps != 1 {
		t.Error("ticks from another session should be dropped")
	}
	_ = m
}

func TestModelForwardsKeys(t *testing.T) {
	m, g := newFakeModel(t, nil)
	tick := TickMsg{owner: m.session}

	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	m = update(m, tick)
	m = update(m, tick)
	if g.presses != 1 {
		t.Errorf("presses = %d, expected one press seen on the next tick", g.presses)
	}
	if m.State().Score != 1 {
		t.Errorf("State().Score = %d, expected 1", m.State().Score)
	}
}

func TestModelQuitDetachesOnce(t *testing.T) {
	var exits []core.GameState
	m, g := newFakeModel(t, func(st core.GameState) { exits = append(exits, st) })

	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.IsQuitting() {
		t.Fatal("esc should quit")
	}
	m.Detach()
	if g.detaches != 1 || len(exits) != 1 {
		t.Errorf("detaches = %d, exits = %d; expected exactly one of each", g.detaches, len(exits))
	}

	m = update(m, TickMsg{owner: m.session})
	if g.steps != 0 {
		t.Error("a quit model should not step the game")
	}
}

func TestModelViewAddsHelp(t *testing.T) {
	m, _ := newFakeModel(t, nil)
	view := m.View()
	if len(view) < 4 || view[:4] != "fake" {
		t.Errorf("View() should start with the game screen, got %q", view)
	}
}

func TestMonoThemeRender(t *testing.T) {
	s := core.NewScreen(4, 2)
	s.SetColored(1, 0, 'x', core.ColorRed)
	s.SetColored(2, 1, 'y', core.ColorGray)

	if got, want := MonoTheme().Render(s), s.String(); got != want {
		t.Errorf("Render() = %q, expected %q", got, want)
	}
}

func TestKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	tests := []struct {
		msg  tea.KeyMsg
		want PlatformAction
	}{
		{tea.KeyMsg{Type: tea.KeyEsc}, ActionQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, ActionQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlS}, ActionScreenshot},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")}, ActionHelp},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}, ActionForward},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")}, ActionForward},
	}
	for _, tt := range tests {
		if got := km.Map(tt.msg); got != tt.want {
			t.Errorf("Map(%q) = %d, expected %d", tt.msg.String(), got, tt.want)
		}
	}
}

func TestModelReadsAutoRepeatAsOnePress(t *testing.T) {
	tests := []struct {
		name    string
		window  time.Duration
		presses int
	}{
		{"default window", 0, 1},
		{"frame by frame", -1, 2},
	}
	for _, tt := range tests {
		g := &fakeGame{}
		m := NewModel(g, core.RuntimeConfig{ScreenW: 20, ScreenH: 5, TickRate: 50}, Options{
			Logger:       log.New(io.Discard),
			Theme:        MonoTheme(),
			RepeatWindow: tt.window,
		})
		m.Init()
		tick := TickMsg{owner: m.session}
		key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")}

		// Press, one frame without a repeat, then the first auto-repeat.
		m = update(m, key)
		m = update(m, tick)
		m = update(m, tick)
		m = update(m, key)
		m = update(m, tick)
		if g.presses != tt.presses {
			t.Errorf("%s: presses = %d, expected %d", tt.name, g.presses, tt.presses)
		}
	}
}
