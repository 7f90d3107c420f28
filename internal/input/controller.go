package input

import (
	"maps"
	"slices"

	"github.com/charmbracelet/log"
)

// KeyStatus is a key's state within a Status snapshot.
type KeyStatus struct {
	JustDown bool `json:"just_down"`
	Down     bool `json:"down"`
}

// AxisStatus is an axis's state within a Status snapshot.
type AxisStatus struct {
	Value   float64 `json:"value"`
	Changed bool    `json:"changed"`
}

// Status is one frame of a controller, suitable for replay recording.
type Status[ID comparable] struct {
	Keys map[ID]KeyStatus  `json:"keys"`
	Axes map[ID]AxisStatus `json:"axes"`
}

// Controller maps logical inputs of a game to signals. Game code reads
// inputs through the controller only; it never updates them.
type Controller[ID comparable] struct {
	keys   map[ID]KeySignal
	axes   map[ID]AxisSignal
	set    *Set
	logger *log.Logger
}

// NewController builds a controller. set holds the derived signals behind
// keys and axes; it may be nil when there are none.
func NewController[ID comparable](keys map[ID]KeySignal, axes map[ID]AxisSignal, set *Set) *Controller[ID] {
	if set == nil {
		set = NewSet()
	}
	return &Controller[ID]{
		keys:   maps.Clone(keys),
		axes:   maps.Clone(axes),
		set:    set,
		logger: log.Default().WithPrefix("input"),
	}
}

// WithLogger replaces the controller's logger.
func (c *Controller[ID]) WithLogger(l *log.Logger) *Controller[ID] {
	if l != nil {
		c.logger = l
	}
	return c
}

// Set returns the derived-signal set behind the controller.
func (c *Controller[ID]) Set() *Set {
	return c.set
}

// Register attaches the controller's set to r so that its derived signals
// are updated every frame.
func (c *Controller[ID]) Register(r Registrar) {
	c.set.RegisterWith(r)
}

// Unregister detaches the controller's set.
func (c *Controller[ID]) Unregister() {
	c.set.Unregister()
}

// Input returns the key bound to id, or nil.
func (c *Controller[ID]) Input(id ID) KeySignal {
	k, ok := c.keys[id]
	if !ok {
		c.logger.Warn("no key bound", "id", id)
	}
	return k
}

// Axis returns the axis bound to id, or nil.
func (c *Controller[ID]) Axis(id ID) AxisSignal {
	a, ok := c.axes[id]
	if !ok {
		c.logger.Warn("no axis bound", "id", id)
	}
	return a
}

// IsDown reports whether the key bound to id is down. Unbound ids read as up.
func (c *Controller[ID]) IsDown(id ID) bool {
	k := c.Input(id)
	return k != nil && k.IsDown()
}

// IsJustDown reports whether the key bound to id went down this frame.
func (c *Controller[ID]) IsJustDown(id ID) bool {
	k := c.Input(id)
	return k != nil && k.IsJustDown()
}

// IsAxisUpdated reports whether the axis bound to id changed this frame.
func (c *Controller[ID]) IsAxisUpdated(id ID) bool {
	a := c.Axis(id)
	return a != nil && a.Changed()
}

// Inject binds or rebinds id to key.
func (c *Controller[ID]) Inject(id ID, key KeySignal) {
	if c.keys == nil {
		c.keys = make(map[ID]KeySignal)
	}
	c.keys[id] = key
}

// InjectAxis binds or rebinds id to axis.
func (c *Controller[ID]) InjectAxis(id ID, axis AxisSignal) {
	if c.axes == nil {
		c.axes = make(map[ID]AxisSignal)
	}
	c.axes[id] = axis
}

// KeyIDs returns the bound key ids. Order is unspecified.
func (c *Controller[ID]) KeyIDs() []ID {
	return slices.Collect(maps.Keys(c.keys))
}

// Status snapshots every bound input. Reading an unregistered controller
// is allowed but its derived signals are stale, so it logs a warning.
func (c *Controller[ID]) Status() Status[ID] {
	if !c.set.Registered() && c.set.Len() > 0 {
		c.logger.Warn("status of unregistered controller")
	}
	st := Status[ID]{
		Keys: make(map[ID]KeyStatus, len(c.keys)),
		Axes: make(map[ID]AxisStatus, len(c.axes)),
	}
	for id, k := range c.keys {
		st.Keys[id] = KeyStatus{JustDown: k.IsJustDown(), Down: k.IsDown()}
	}
	for id, a := range c.axes {
		st.Axes[id] = AxisStatus{Value: a.Value(), Changed: a.Changed()}
	}
	return st
}
