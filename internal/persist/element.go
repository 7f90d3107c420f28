// Package persist maps nested game objects onto flat key-value storage.
//
// Elements are registered by dotted path into a Manager. The first path
// segment is the root key: one backing-store entry holds the JSON for every
// element registered under it, and saves and loads happen per root key.
// Saving overlays element values onto the JSON already stored, so members
// that no registered element owns survive untouched.
package persist

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Element is anything the Manager can persist.
//
// Serialize returns the element's JSON. Deserialize hydrates the element from
// JSON previously produced by Serialize (or hand-edited); on a shape mismatch
// it should fall back to a default and return an error describing the
// problem, which the Manager logs. Bind is called once when the element is
// registered so it can request saves on mutation.
//
// Elements are tracked by identity and must be comparable, so use pointers.
type Element interface {
	Serialize() ([]byte, error)
	Deserialize(data []byte) error
	Bind(m *Manager)
}

// RawElement is an opaque JSON leaf. It is written back as-is and replaced
// wholesale on load. Registration wraps json.RawMessage values in one.
type RawElement struct {
	data json.RawMessage
}

// NewRawElement creates a leaf holding a copy of data.
func NewRawElement(data json.RawMessage) *RawElement {
	return &RawElement{data: bytes.Clone(data)}
}

// Serialize implements Element.
func (r *RawElement) Serialize() ([]byte, error) {
	if len(r.data) == 0 {
		return []byte("null"), nil
	}
	return bytes.Clone(r.data), nil
}

// Deserialize implements Element.
func (r *RawElement) Deserialize(data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("persist: invalid raw JSON %q", data)
	}
	r.data = bytes.Clone(data)
	return nil
}

// Bind implements Element. Raw leaves never save on their own.
func (r *RawElement) Bind(*Manager) {}

// Value returns a copy of the current JSON.
func (r *RawElement) Value() json.RawMessage {
	return bytes.Clone(r.data)
}
