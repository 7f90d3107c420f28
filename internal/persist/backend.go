package persist

import (
	"errors"
	"sort"
)

// Backend is a flat string key-value store. Every method may fail (quota,
// permissions, a closed database); the Manager never lets those errors
// escape.
type Backend interface {
	// GetItem returns the stored value and whether the key exists.
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
	Keys() ([]string, error)
}

// ErrAccessDenied is returned by MemoryBackend when failure injection is on.
var ErrAccessDenied = errors.New("persist: storage access denied")

// MemoryBackend keeps items in a map. It is used for tests and for
// ephemeral sessions that should not touch disk.
type MemoryBackend struct {
	items map[string]string

	// FailReads and FailWrites make the matching operations return
	// ErrAccessDenied.
	FailReads  bool
	FailWrites bool

	// Writes counts successful SetItem calls.
	Writes int
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string]string)}
}

// GetItem implements Backend.
func (b *MemoryBackend) GetItem(key string) (string, bool, error) {
	if b.FailReads {
		return "", false, ErrAccessDenied
	}
	v, ok := b.items[key]
	return v, ok, nil
}

// SetItem implements Backend.
func (b *MemoryBackend) SetItem(key, value string) error {
	if b.FailWrites {
		return ErrAccessDenied
	}
	b.items[key] = value
	b.Writes++
	return nil
}

// RemoveItem implements Backend.
func (b *MemoryBackend) RemoveItem(key string) error {
	if b.FailWrites {
		return ErrAccessDenied
	}
	delete(b.items, key)
	return nil
}

// Keys implements Backend. Keys are returned sorted.
func (b *MemoryBackend) Keys() ([]string, error) {
	if b.FailReads {
		return nil, ErrAccessDenied
	}
	keys := make([]string, 0, len(b.items))
	for k := range b.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
