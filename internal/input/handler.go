package input

import (
	"maps"
	"slices"

	"github.com/charmbracelet/log"
)

// Handler maps action names to lists of keys. An action is down when any
// of its keys is down.
type Handler struct {
	actions map[string][]KeySignal
	set     *Set
	logger  *log.Logger
}

// NewHandler builds a handler. set holds the derived signals behind the
// keys and may be nil.
func NewHandler(actions map[string][]KeySignal, set *Set) *Handler {
	if set == nil {
		set = NewSet()
	}
	h := &Handler{
		actions: make(map[string][]KeySignal, len(actions)),
		set:     set,
		logger:  log.Default().WithPrefix("input"),
	}
	for name, keys := range actions {
		h.actions[name] = slices.Clone(keys)
	}
	return h
}

// WithLogger replaces the handler's logger.
func (h *Handler) WithLogger(l *log.Logger) *Handler {
	if l != nil {
		h.logger = l
	}
	return h
}

// Register attaches the handler's set to r.
func (h *Handler) Register(r Registrar) {
	h.set.RegisterWith(r)
}

// Unregister detaches the handler's set.
func (h *Handler) Unregister() {
	h.set.Unregister()
}

// Bind appends keys to an action, creating it if needed.
func (h *Handler) Bind(name string, keys ...KeySignal) {
	h.actions[name] = append(h.actions[name], keys...)
}

func (h *Handler) keys(name string) []KeySignal {
	keys, ok := h.actions[name]
	if !ok {
		h.logger.Warn("unknown action", "name", name)
	}
	return keys
}

// IsDown reports whether any key of the action is down. Unknown actions
// read as up.
func (h *Handler) IsDown(name string) bool {
	for _, k := range h.keys(name) {
		if k.IsDown() {
			return true
		}
	}
	return false
}

// IsJustDown reports whether any key of the action went down this frame.
func (h *Handler) IsJustDown(name string) bool {
	for _, k := range h.keys(name) {
		if k.IsJustDown() {
			return true
		}
	}
	return false
}

// Names returns the action names in sorted order.
func (h *Handler) Names() []string {
	return slices.Sorted(maps.Keys(h.actions))
}
