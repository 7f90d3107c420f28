// Package achievements persists which achievements a player has unlocked.
package achievements

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/sisyphus/internal/persist"
)

// MenagerieKey is the shared registration path for achievements across
// games built on this framework.
const MenagerieKey = "kh.menagerie.achievements"

// Set tracks unlocked achievements by name. Locked achievements are absent
// from the serialized form rather than stored as false.
type Set struct {
	manager  *persist.Manager
	logger   *log.Logger
	unlocked map[string]bool
	dirty    bool
}

// New creates an empty achievement set.
func New() *Set {
	return &Set{
		logger:   log.Default().WithPrefix("achievements"),
		unlocked: make(map[string]bool),
	}
}

// Unlock marks name as unlocked and reports whether it already was. A new
// unlock saves when save is true; unlocking twice never saves again.
func (s *Set) Unlock(name string, save bool) (already bool) {
	if s.unlocked[name] {
		return true
	}
	s.logger.Info("unlocked", "achievement", name)
	s.unlocked[name] = true
	s.dirty = true
	if save {
		s.Save()
	}
	return false
}

// Lock removes name from the unlocked set.
func (s *Set) Lock(name string, save bool) {
	if !s.unlocked[name] {
		return
	}
	delete(s.unlocked, name)
	s.dirty = true
	if save {
		s.Save()
	}
}

// IsUnlocked reports whether name is unlocked.
func (s *Set) IsUnlocked(name string) bool {
	return s.unlocked[name]
}

// Unlocked returns the unlocked names in sorted order.
func (s *Set) Unlocked() []string {
	names := make([]string, 0, len(s.unlocked))
	for name := range s.unlocked {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save persists pending changes. It does nothing if nothing changed since
// the last save or if the set is not registered.
func (s *Set) Save() {
	if !s.dirty || s.manager == nil {
		return
	}
	s.manager.Save(s)
	s.dirty = false
}

// Serialize implements persist.Element.
func (s *Set) Serialize() ([]byte, error) {
	return json.Marshal(s.unlocked)
}

// Deserialize implements persist.Element. Entries are merged into the
// current set; anything other than true is ignored.
func (s *Set) Deserialize(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("achievements: expected an object: %w", err)
	}
	for name, v := range raw {
		if b, ok := v.(bool); ok && b {
			s.unlocked[name] = true
			continue
		}
		s.logger.Warn("unexpected value in achievement map", "achievement", name, "value", v)
	}
	return nil
}

// Bind implements persist.Element.
func (s *Set) Bind(m *persist.Manager) {
	s.manager = m
}

var _ persist.Element = (*Set)(nil)
