// Package reference provides observable value holders, including ones that
// persist themselves through a persist.Manager.
package reference

import (
	"github.com/vovakirdan/sisyphus/internal/event"
)

// Change is emitted when a Reference's value changes.
type Change[T any] struct {
	Old T
	New T
}

// Reference holds a value and notifies subscribers when it changes.
type Reference[T comparable] struct {
	value   T
	changes event.Bus[Change[T]]
}

// New creates a reference holding value.
func New[T comparable](value T) *Reference[T] {
	return &Reference[T]{value: value}
}

// Get returns the current value.
func (r *Reference[T]) Get() T {
	return r.value
}

// Set stores value, notifying subscribers only if it differs from the
// current one. Returns whether it changed.
func (r *Reference[T]) Set(value T) bool {
	old := r.value
	if old == value {
		return false
	}
	r.value = value
	r.changes.Emit(Change[T]{Old: old, New: value})
	return true
}

// OnChange subscribes fn under owner. Use Unsubscribe or UnsubscribeOwner to
// stop receiving changes.
func (r *Reference[T]) OnChange(owner any, fn func(Change[T])) event.Token {
	return r.changes.Subscribe(owner, fn)
}

// Unsubscribe removes a single subscription.
func (r *Reference[T]) Unsubscribe(tok event.Token) bool {
	return r.changes.Unsubscribe(tok)
}

// UnsubscribeOwner removes every subscription registered under owner.
func (r *Reference[T]) UnsubscribeOwner(owner any) int {
	return r.changes.UnsubscribeOwner(owner)
}
