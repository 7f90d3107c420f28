// Package keyboard feeds Bubble Tea key messages into input keys.
//
// Terminals report key presses (and auto-repeats) but never key releases.
// Without a repeat window a key reads as down only on frames in which a
// press for it arrived, so a held key flickers and IsJustDown fires on
// every repeat. With a repeat window a key stays down until no press has
// arrived for that long, so auto-repeat reads as one long press. A second
// tap of the same key inside the window is read as holding it.
package keyboard

import (
	"maps"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/sisyphus/internal/input"
)

// Space is the name of the space bar. Bubble Tea reports it as " ".
const Space = " "

// DefaultRepeatWindow outlasts the initial auto-repeat delay of common
// terminals and desktops.
const DefaultRepeatWindow = 700 * time.Millisecond

// Keyboard is an input provider backed by key messages.
type Keyboard struct {
	keys    map[string]*input.Key
	pressed map[string]bool
	last    map[string]time.Time // Last press per key
	window  time.Duration
	now     func() time.Time
}

// Option configures a Keyboard.
type Option func(*Keyboard)

// WithRepeatWindow keeps a key down until no press has arrived for d.
// Zero or negative reads presses frame by frame.
func WithRepeatWindow(d time.Duration) Option {
	return func(k *Keyboard) { k.window = max(d, 0) }
}

// WithClock sets the time source of the repeat window.
func WithClock(now func() time.Time) Option {
	return func(k *Keyboard) {
		if now != nil {
			k.now = now
		}
	}
}

// New creates a keyboard with no keys pressed.
func New(opts ...Option) *Keyboard {
	k := &Keyboard{
		keys:    make(map[string]*input.Key),
		pressed: make(map[string]bool),
		last:    make(map[string]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Input returns the key with the given name, as produced by
// tea.KeyMsg.String(): "a", "A", "enter", "ctrl+c", Space and so on.
// Names are case-sensitive.
func (k *Keyboard) Input(name string) *input.Key {
	key, ok := k.keys[name]
	if !ok {
		key = input.NewKey()
		k.keys[name] = key
	}
	return key
}

// HandleKey records a key message for the next Poll.
func (k *Keyboard) HandleKey(msg tea.KeyMsg) {
	k.Press(msg.String())
}

// Press records a press by name for the next Poll.
func (k *Keyboard) Press(name string) {
	k.pressed[name] = true
}

// Poll implements input.Poller: every key pressed since the last poll is
// down for this frame, and so is every key pressed within the repeat
// window. Every other key is up.
func (k *Keyboard) Poll() {
	var now time.Time
	if k.window > 0 {
		now = k.now()
	}
	for name, key := range k.keys {
		down := k.pressed[name]
		if k.window > 0 {
			if down {
				k.last[name] = now
			} else if last, ok := k.last[name]; ok {
				down = now.Sub(last) < k.window
				if !down {
					delete(k.last, name)
				}
			}
		}
		key.Update(down)
	}
	clear(k.pressed)
}

// Names returns the names of every key created so far, sorted.
func (k *Keyboard) Names() []string {
	return slices.Sorted(maps.Keys(k.keys))
}

var (
	_ input.Poller         = (*Keyboard)(nil)
	_ input.ButtonProvider = (*Keyboard)(nil)
)
