// Package highscores keeps a bounded, sorted high score table that persists
// through a persist.Manager.
package highscores

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/vovakirdan/sisyphus/internal/persist"
)

// Entry is one row of the table. S must round-trip through encoding/json.
type Entry[S any] struct {
	Name  string `json:"name"`
	Score S      `json:"score"`
}

// Comparator orders scores; entries that compare lower rank higher.
type Comparator[S any] func(a, b S) int

// Descending ranks larger scores first.
func Descending[S cmp.Ordered](a, b S) int {
	return cmp.Compare(b, a)
}

// Ascending ranks smaller scores first, e.g. for completion times.
func Ascending[S cmp.Ordered](a, b S) int {
	return cmp.Compare(a, b)
}

// List is a fixed-capacity high score table.
type List[S any] struct {
	manager  *persist.Manager
	compare  Comparator[S]
	capacity int
	defaults []Entry[S]
	entries  []Entry[S]
}

// New creates a table ordered by compare holding at most capacity entries,
// starting from defaults.
func New[S any](compare Comparator[S], capacity int, defaults []Entry[S]) *List[S] {
	if capacity < 0 {
		capacity = 0
	}
	l := &List[S]{
		compare:  compare,
		capacity: capacity,
		defaults: slices.Clone(defaults),
	}
	l.entries = l.normalize(slices.Clone(defaults))
	return l
}

// Capacity returns the maximum number of entries.
func (l *List[S]) Capacity() int {
	return l.capacity
}

// Entries returns a copy of the table in rank order.
func (l *List[S]) Entries() []Entry[S] {
	return slices.Clone(l.entries)
}

// Add inserts a score, re-sorts and trims to capacity. Saves when save is
// true.
func (l *List[S]) Add(name string, score S, save bool) {
	l.entries = l.normalize(append(l.entries, Entry[S]{Name: name, Score: score}))
	if save {
		l.Save()
	}
}

// NewScoreRank returns the zero-based rank score would take if added now.
// Ties rank below existing entries. The table is not modified.
func (l *List[S]) NewScoreRank(score S) int {
	// Equivalent to appending a sentinel to a copy, stable-sorting and
	// finding the sentinel's index.
	rank := 0
	for _, e := range l.entries {
		if l.compare(e.Score, score) <= 0 {
			rank++
		}
	}
	return rank
}

// WouldBeHighScore reports whether score would make it into the table.
func (l *List[S]) WouldBeHighScore(score S) bool {
	return l.NewScoreRank(score) < l.capacity
}

// Clear empties the table without saving.
func (l *List[S]) Clear() {
	l.entries = nil
}

// Save persists the table if it is registered.
func (l *List[S]) Save() {
	if l.manager != nil {
		l.manager.Save(l)
	}
}

func (l *List[S]) normalize(entries []Entry[S]) []Entry[S] {
	slices.SortStableFunc(entries, func(a, b Entry[S]) int {
		return l.compare(a.Score, b.Score)
	})
	if len(entries) > l.capacity {
		entries = entries[:l.capacity]
	}
	return entries
}

// Serialize implements persist.Element.
func (l *List[S]) Serialize() ([]byte, error) {
	if l.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.entries)
}

// Deserialize implements persist.Element. Anything that is not an array of
// entries resets the table to its defaults.
func (l *List[S]) Deserialize(data []byte) error {
	var entries []Entry[S]
	err := json.Unmarshal(data, &entries)
	if err == nil && entries == nil {
		err = errors.New("expected an array, got null")
	}
	if err != nil {
		l.entries = l.normalize(slices.Clone(l.defaults))
		return fmt.Errorf("highscores: cannot decode table, using defaults: %w", err)
	}
	l.entries = l.normalize(entries)
	return nil
}

// Bind implements persist.Element.
func (l *List[S]) Bind(m *persist.Manager) {
	l.manager = m
}

var _ persist.Element = (*List[int])(nil)
