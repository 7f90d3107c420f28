// Package input turns raw platform input into per-frame signals.
//
// Base signals (Key, Axis) are written by providers once per frame. Derived
// signals (Conditional, Or, HighestMagnitude, dead zones, KeyFromAxis) are
// recomputed from their sources after every base signal has been written;
// a Sampler runs both phases in order. Controller and Handler are read-only
// facades that game code polls.
//
// Each signal must be updated at most once per frame. Updating twice breaks
// JustDown and Changed for that frame; the next frame recovers.
package input

import "github.com/vovakirdan/sisyphus/internal/event"

// KeySignal is a boolean input.
type KeySignal interface {
	IsDown() bool
	// IsJustDown is true only on the frame the key went from up to down.
	IsJustDown() bool
}

// AxisSignal is a continuous input, typically in [-1, 1].
type AxisSignal interface {
	Value() float64
	LastValue() float64
	// Changed reports whether Value differs from the previous frame.
	Changed() bool
}

// KeyState is a snapshot of a key.
type KeyState struct {
	Down     bool
	JustDown bool
}

// Key is a base boolean signal.
type Key struct {
	state   KeyState
	updates event.Bus[KeyState]
}

// NewKey creates a key that is up.
func NewKey() *Key {
	return &Key{}
}

// Update records whether the key is down this frame. Returns whether the
// key's state changed; subscribers are only notified on change.
func (k *Key) Update(down bool) bool {
	return k.set(down, down && !k.state.Down)
}

func (k *Key) set(down, justDown bool) bool {
	next := KeyState{Down: down, JustDown: justDown}
	if next == k.state {
		return false
	}
	k.state = next
	k.updates.Emit(next)
	return true
}

// IsDown implements KeySignal.
func (k *Key) IsDown() bool {
	return k.state.Down
}

// IsJustDown implements KeySignal.
func (k *Key) IsJustDown() bool {
	return k.state.JustDown
}

// State returns the current snapshot.
func (k *Key) State() KeyState {
	return k.state
}

// OnUpdate subscribes fn to state changes under owner.
func (k *Key) OnUpdate(owner any, fn func(KeyState)) event.Token {
	return k.updates.Subscribe(owner, fn)
}

// Unsubscribe removes a subscription made with OnUpdate.
func (k *Key) Unsubscribe(tok event.Token) bool {
	return k.updates.Unsubscribe(tok)
}

// UnsubscribeOwner removes every subscription made under owner.
func (k *Key) UnsubscribeOwner(owner any) int {
	return k.updates.UnsubscribeOwner(owner)
}

// Axis is a base continuous signal.
type Axis struct {
	value   float64
	last    float64
	updates event.Bus[float64]
}

// NewAxis creates an axis at rest.
func NewAxis() *Axis {
	return &Axis{}
}

// Update records this frame's value and returns whether it changed.
// Subscribers are only notified on change.
func (a *Axis) Update(value float64) bool {
	changed := a.value != value
	a.last = a.value
	a.value = value
	if changed {
		a.updates.Emit(value)
	}
	return changed
}

// Value implements AxisSignal.
func (a *Axis) Value() float64 {
	return a.value
}

// LastValue implements AxisSignal.
func (a *Axis) LastValue() float64 {
	return a.last
}

// Changed implements AxisSignal.
func (a *Axis) Changed() bool {
	return a.value != a.last
}

// OnUpdate subscribes fn to value changes under owner.
func (a *Axis) OnUpdate(owner any, fn func(float64)) event.Token {
	return a.updates.Subscribe(owner, fn)
}

// Unsubscribe removes a subscription made with OnUpdate.
func (a *Axis) Unsubscribe(tok event.Token) bool {
	return a.updates.Unsubscribe(tok)
}

// UnsubscribeOwner removes every subscription made under owner.
func (a *Axis) UnsubscribeOwner(owner any) int {
	return a.updates.UnsubscribeOwner(owner)
}
