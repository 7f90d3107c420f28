package input

import "math"

// ScaleAxial applies a one-dimensional dead zone: magnitudes up to zone
// read as zero and the rest of the range is rescaled linearly onto [0, 1],
// keeping the sign. The output is continuous at the zone boundary.
func ScaleAxial(v, zone float64) float64 {
	zone = clampZone(zone)
	mag := math.Abs(v)
	if mag <= zone {
		return 0
	}
	return math.Copysign(rescale(mag, zone), v)
}

// ScaleRadial applies a circular dead zone to a two-dimensional stick.
// The direction is kept and the magnitude is rescaled like ScaleAxial.
func ScaleRadial(x, y, zone float64) (float64, float64) {
	zone = clampZone(zone)
	mag := math.Hypot(x, y)
	if mag <= zone {
		return 0, 0
	}
	k := rescale(mag, zone) / mag
	return x * k, y * k
}

func rescale(mag, zone float64) float64 {
	return (math.Min(mag, 1) - zone) / (1 - zone)
}

func clampZone(zone float64) float64 {
	switch {
	case zone < 0 || math.IsNaN(zone):
		return 0
	case zone >= 1:
		// Everything is inside the zone; keep rescale away from 1-1.
		return math.Inf(1)
	}
	return zone
}

// DeadZoneAxial is an axis with an axial dead zone applied.
type DeadZoneAxial struct {
	Axis
	source AxisSignal
	zone   float64
}

// NewDeadZoneAxial builds a dead-zoned axis and adds it to set.
func NewDeadZoneAxial(set *Set, source AxisSignal, zone float64) *DeadZoneAxial {
	d := &DeadZoneAxial{source: source, zone: zone}
	d.value = ScaleAxial(source.Value(), zone)
	d.last = d.value
	set.Add(d)
	return d
}

// UpdateDerived implements Derived.
func (d *DeadZoneAxial) UpdateDerived() {
	d.Update(ScaleAxial(d.source.Value(), d.zone))
}

// DeadZoneRadial is the primary component of a stick with a radial dead
// zone applied. The secondary axis only contributes to the magnitude.
type DeadZoneRadial struct {
	Axis
	primary   AxisSignal
	secondary AxisSignal
	zone      float64
}

// NewDeadZoneRadial builds a dead-zoned stick component and adds it to set.
func NewDeadZoneRadial(set *Set, primary, secondary AxisSignal, zone float64) *DeadZoneRadial {
	d := &DeadZoneRadial{primary: primary, secondary: secondary, zone: zone}
	d.value = d.compute()
	d.last = d.value
	set.Add(d)
	return d
}

func (d *DeadZoneRadial) compute() float64 {
	v, _ := ScaleRadial(d.primary.Value(), d.secondary.Value(), d.zone)
	return v
}

// UpdateDerived implements Derived.
func (d *DeadZoneRadial) UpdateDerived() {
	d.Update(d.compute())
}
