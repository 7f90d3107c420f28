package tui

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/sisyphus/internal/core"
	"github.com/vovakirdan/sisyphus/internal/highscores"
	"github.com/vovakirdan/sisyphus/internal/persist"
	"github.com/vovakirdan/sisyphus/internal/registry"
	"github.com/vovakirdan/sisyphus/internal/storage"
)

var lastFake *fakeGame

func init() {
	registry.Register("fake", func() registry.Game {
		lastFake = &fakeGame{}
		return lastFake
	})
}

func newTestSession(t *testing.T, loader ProgressLoader) (SessionModel, *storage.SessionRecord, *LiveGame) {
	t.Helper()
	rec := &storage.SessionRecord{ID: "test"}
	live := &LiveGame{}
	m := NewSessionModel(SessionConfig{
		Backend:  persist.NewMemoryBackend(),
		Progress: loader,
		Player:   "tester",
		Record:   rec,
		Live:     live,
		Logger:   log.New(io.Discard),
	}, core.RuntimeConfig{ScreenW: 40, ScreenH: 10, TickRate: 50})
	return m, rec, live
}

func sessionUpdate(m SessionModel, msg tea.Msg) SessionModel {
	next, _ := m.Update(msg)
	return next.(SessionModel)
}

func TestSessionPlaysAndReturnsToMenu(t *testing.T) {
	m, rec, live := newTestSession(t, nil)

	m = sessionUpdate(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenGame {
		t.Fatalf("screen = %d, expected the game after enter", m.screen)
	}
	fake := lastFake
	if fake.resets != 1 {
		t.Errorf("game resets = %d, expected 1", fake.resets)
	}

	tick := TickMsg{owner: m.game.session}
	m = sessionUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	m = sessionUpdate(m, tick)
	m = sessionUpdate(m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.screen != screenMenu {
		t.Fatalf("screen = %d, expected the menu after leaving the game", m.screen)
	}
	if fake.detaches != 1 {
		t.Errorf("detaches = %d, expected 1", fake.detaches)
	}
	if rec.Best != 1 {
		t.Errorf("record best = %d, expected 1", rec.Best)
	}

	// Back at the menu there is no live game to detach.
	live.Detach()
	if fake.detaches != 1 {
		t.Errorf("detaches = %d after LiveGame.Detach, expected 1", fake.detaches)
	}
}

func TestSessionLiveGameDetachesDroppedGame(t *testing.T) {
	m, rec, live := newTestSession(t, nil)
	m = sessionUpdate(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = sessionUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	m = sessionUpdate(m, TickMsg{owner: m.game.session})

	live.Detach()
	live.Detach()
	if lastFake.detaches != 1 {
		t.Errorf("detaches = %d, expected exactly 1", lastFake.detaches)
	}
	if rec.Best != 1 {
		t.Errorf("record best = %d, expected 1", rec.Best)
	}
}

func TestSessionProgressScreen(t *testing.T) {
	var loads int
	loader := func(saves *persist.Manager, player string) ProgressData {
		loads++
		if saves == nil {
			t.Error("loader got no save manager")
		}
		return ProgressData{
			Player: player,
			Scores: []highscores.Entry[int]{{Name: player, Score: 42}},
		}
	}
	m, _, _ := newTestSession(t, loader)

	m = sessionUpdate(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.screen != screenProgress || loads != 1 {
		t.Fatalf("screen = %d, loads = %d; expected progress loaded once", m.screen, loads)
	}
	view := m.View()
	if !strings.Contains(view, "PROGRESS - tester") || !strings.Contains(view, "42") {
		t.Errorf("progress view missing title or score:\n%s", view)
	}

	m = sessionUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	if m.screen != screenMenu {
		t.Errorf("screen = %d, expected the menu after back", m.screen)
	}

	m = sessionUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !m.quitting {
		t.Error("q on the menu should end the session")
	}
}

func TestScoreboardTabs(t *testing.T) {
	data := ProgressData{
		Player:       "p",
		Achievements: []string{"sisyphus_happy"},
	}
	sb := NewScoreboardModel(data, 60, 20)
	if !strings.Contains(sb.View(), "No runs recorded yet.") {
		t.Error("empty scores tab should say so")
	}

	next, _ := sb.Update(tea.KeyMsg{Type: tea.KeyTab})
	sb = next.(ScoreboardModel)
	if !strings.Contains(sb.View(), "sisyphus_happy") {
		t.Error("achievements tab should list the achievement")
	}

	next, _ = sb.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	next, _ = next.(ScoreboardModel).Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	sb = next.(ScoreboardModel)
	if !strings.Contains(sb.View(), "No sessions recorded yet.") {
		t.Error("two tabs back from achievements should wrap to sessions")
	}
}
