package input

// ButtonProvider exposes the keys of a physical or virtual device by name.
// Keys are created on first use and stay the same afterwards.
type ButtonProvider interface {
	Input(name string) *Key
}

// AxisProvider exposes the axes of a device by name.
type AxisProvider interface {
	Axis(name string) *Axis
}

// Keys looks up several keys of a provider at once.
func Keys(p ButtonProvider, names ...string) []KeySignal {
	out := make([]KeySignal, 0, len(names))
	for _, n := range names {
		out = append(out, p.Input(n))
	}
	return out
}

// Axes looks up several axes of a provider at once.
func Axes(p AxisProvider, names ...string) []AxisSignal {
	out := make([]AxisSignal, 0, len(names))
	for _, n := range names {
		out = append(out, p.Axis(n))
	}
	return out
}

// Combine merges keys into one. A single key is returned as is.
func Combine(set *Set, keys ...KeySignal) KeySignal {
	if len(keys) == 1 {
		return keys[0]
	}
	return NewOr(set, false, keys...)
}

// CombineAxes merges axes by highest magnitude. A single axis is returned
// as is.
func CombineAxes(set *Set, axes ...AxisSignal) AxisSignal {
	if len(axes) == 1 {
		return axes[0]
	}
	return NewHighestMagnitude(set, axes...)
}

// Unified merges keys and gates the result on cond. A nil cond skips the
// gate.
func Unified(set *Set, cond BoolSource, invert bool, keys ...KeySignal) KeySignal {
	k := Combine(set, keys...)
	if cond == nil {
		return k
	}
	return NewConditional(set, k, cond, invert)
}
