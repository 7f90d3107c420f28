package reference

import (
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/sisyphus/internal/persist"
)

// Persistent is a Reference that serializes its value as JSON and can save
// itself through the manager it is registered with. T must round-trip
// through encoding/json.
type Persistent[T comparable] struct {
	Reference[T]
	manager      *persist.Manager
	defaultValue T
	saveOnChange bool
}

// NewPersistent creates a persistent reference. When saveOnChange is set,
// every Set that changes the value saves the owning root key.
func NewPersistent[T comparable](defaultValue T, saveOnChange bool) *Persistent[T] {
	return &Persistent[T]{
		Reference:    Reference[T]{value: defaultValue},
		defaultValue: defaultValue,
		saveOnChange: saveOnChange,
	}
}

// Set stores value and saves if configured to and the value changed.
func (p *Persistent[T]) Set(value T) bool {
	changed := p.Reference.Set(value)
	if changed && p.saveOnChange {
		p.Save()
	}
	return changed
}

// Default returns the value the reference was created with.
func (p *Persistent[T]) Default() T {
	return p.defaultValue
}

// Save asks the owning manager to save, if the reference is registered.
// Useful after mutating the internals of a value held by pointer.
func (p *Persistent[T]) Save() {
	if p.manager != nil {
		p.manager.Save(p)
	}
}

// Serialize implements persist.Element.
func (p *Persistent[T]) Serialize() ([]byte, error) {
	return json.Marshal(p.value)
}

// Deserialize implements persist.Element. Subscribers are notified of the
// loaded value but no save is triggered.
func (p *Persistent[T]) Deserialize(data []byte) error {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("reference: cannot decode value: %w", err)
	}
	p.Reference.Set(v)
	return nil
}

// Bind implements persist.Element.
func (p *Persistent[T]) Bind(m *persist.Manager) {
	p.manager = m
}

var _ persist.Element = (*Persistent[int])(nil)
