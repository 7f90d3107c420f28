package input

import "math"

// BoolSource is a readable boolean, such as a settings reference.
type BoolSource interface {
	Get() bool
}

// Conditional mirrors a key while a condition holds and reads as up
// otherwise. With invert set it mirrors the key while the condition is
// false.
type Conditional struct {
	Key
	source KeySignal
	cond   BoolSource
	invert bool
}

// NewConditional builds a gated key and adds it to set.
func NewConditional(set *Set, source KeySignal, cond BoolSource, invert bool) *Conditional {
	c := &Conditional{source: source, cond: cond, invert: invert}
	on := c.enabled()
	c.state = KeyState{Down: on && source.IsDown(), JustDown: on && source.IsJustDown()}
	set.Add(c)
	return c
}

func (c *Conditional) enabled() bool {
	return c.cond.Get() != c.invert
}

// UpdateDerived implements Derived.
func (c *Conditional) UpdateDerived() {
	c.Update(c.enabled() && c.source.IsDown())
}

// KeyFromAxis is down while an axis is past a threshold: at or above it for
// a non-negative threshold, at or below it for a negative one.
type KeyFromAxis struct {
	Key
	source    AxisSignal
	threshold float64
}

// NewKeyFromAxis builds a threshold key and adds it to set.
func NewKeyFromAxis(set *Set, source AxisSignal, threshold float64) *KeyFromAxis {
	k := &KeyFromAxis{source: source, threshold: threshold}
	k.state = KeyState{Down: k.past()}
	set.Add(k)
	return k
}

func (k *KeyFromAxis) past() bool {
	v := k.source.Value()
	if k.threshold < 0 {
		return v <= k.threshold
	}
	return v >= k.threshold
}

// UpdateDerived implements Derived.
func (k *KeyFromAxis) UpdateDerived() {
	k.Update(k.past())
}

// Or is down when any source is down.
//
// By default JustDown follows the combined key: pressing a second source
// while the first is held does not fire it again. With retrigger set,
// JustDown fires whenever any source is just down.
type Or struct {
	Key
	sources   []KeySignal
	retrigger bool
}

// NewOr builds a combined key and adds it to set.
func NewOr(set *Set, retrigger bool, sources ...KeySignal) *Or {
	o := &Or{sources: sources, retrigger: retrigger}
	down, just := o.any()
	o.state = KeyState{Down: down, JustDown: just}
	set.Add(o)
	return o
}

func (o *Or) any() (down, justDown bool) {
	for _, s := range o.sources {
		down = down || s.IsDown()
		justDown = justDown || s.IsJustDown()
	}
	return down, justDown
}

// UpdateDerived implements Derived.
func (o *Or) UpdateDerived() {
	down, just := o.any()
	if o.retrigger {
		o.set(down, just)
		return
	}
	o.Update(down)
}

// HighestMagnitude takes the source value with the largest absolute value.
// Ties go to the earliest source.
type HighestMagnitude struct {
	Axis
	sources []AxisSignal
}

// NewHighestMagnitude builds a combined axis and adds it to set.
func NewHighestMagnitude(set *Set, sources ...AxisSignal) *HighestMagnitude {
	h := &HighestMagnitude{sources: sources}
	h.value = h.pick()
	h.last = h.value
	set.Add(h)
	return h
}

func (h *HighestMagnitude) pick() float64 {
	best := 0.0
	for _, s := range h.sources {
		if v := s.Value(); math.Abs(v) > math.Abs(best) {
			best = v
		}
	}
	return best
}

// UpdateDerived implements Derived.
func (h *HighestMagnitude) UpdateDerived() {
	h.Update(h.pick())
}
