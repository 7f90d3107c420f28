package keyboard

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestPressedThisFrame(t *testing.T) {
	kb := New()
	a := kb.Input("a")

	tests := []struct {
		name     string
		press    bool
		down     bool
		justDown bool
	}{
		{"idle", false, false, false},
		{"press", true, true, true},
		{"repeat", true, true, false},
		{"gap", false, false, false},
		{"press again", true, true, true},
	}
	for _, tt := range tests {
		if tt.press {
			kb.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
		}
		kb.Poll()
		if a.IsDown() != tt.down || a.IsJustDown() != tt.justDown {
			t.Errorf("%s: down=%v justDown=%v, want %v %v",
				tt.name, a.IsDown(), a.IsJustDown(), tt.down, tt.justDown)
		}
	}
}

func TestNamesFollowKeyMsg(t *testing.T) {
	kb := New()
	space := kb.Input(Space)
	enter := kb.Input("enter")
	upper := kb.Input("Q")
	lower := kb.Input("q")

	kb.HandleKey(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	kb.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	kb.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'Q'}})
	kb.Poll()

	if !space.IsDown() || !enter.IsDown() {
		t.Errorf("space=%v enter=%v, want both down", space.IsDown(), enter.IsDown())
	}
	if !upper.IsDown() || lower.IsDown() {
		t.Errorf("Q=%v q=%v, names must be case-sensitive", upper.IsDown(), lower.IsDown())
	}
}

func TestInputIsStable(t *testing.T) {
	kb := New()
	if kb.Input("x") != kb.Input("x") {
		t.Fatal("Input must return the same key for the same name")
	}
	kb.Press("y")
	kb.Poll()
	if got := kb.Names(); len(got) != 1 || got[0] != "x" {
		t.Errorf("Names() = %v, presses of unknown keys must not create keys", got)
	}
}

func TestRepeatWindowHoldsKey(t *testing.T) {
	now := time.Unix(0, 0)
	kb := New(WithRepeatWindow(500*time.Millisecond), WithClock(func() time.Time { return now }))
	a := kb.Input("a")

	tests := []struct {
		name     string
		advance  time.Duration
		press    bool
		down     bool
		justDown bool
	}{
		{"press", 0, true, true, true},
		{"between presses", 100 * time.Millisecond, false, true, false},
		{"first auto-repeat", 300 * time.Millisecond, true, true, false},
		{"steady repeat", 30 * time.Millisecond, true, true, false},
		{"still inside window", 400 * time.Millisecond, false, true, false},
		{"released", 200 * time.Millisecond, false, false, false},
		{"press again", 10 * time.Millisecond, true, true, true},
	}
	for _, tt := range tests {
		now = now.Add(tt.advance)
		if tt.press {
			kb.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
		}
		kb.Poll()
		if a.IsDown() != tt.down || a.IsJustDown() != tt.justDown {
			t.Errorf("%s: down=%v justDown=%v, want %v %v",
				tt.name, a.IsDown(), a.IsJustDown(), tt.down, tt.justDown)
		}
	}
}
