// Package random wraps pseudo-random generators behind one helper API.
//
// None of these generators are secure. Seedable is a small linear
// congruential generator whose sequence is fixed for a given seed, so
// content generated from a stored seed is the same on every run.
package random

import "math/rand/v2"

type generator interface {
	// raw returns a non-negative integer below limit.
	raw() int
	// float returns a value in [0, 1).
	float() float64
	limit() int
}

// Random draws values from an underlying generator.
type Random struct {
	gen generator
}

// NextInt returns a value in [min, maxExclusive). The result is drawn from
// the generator's raw range, so spans larger than that range are not
// covered uniformly. An empty or inverted span returns min.
func (r *Random) NextInt(min, maxExclusive int) int {
	span := maxExclusive - min
	if span <= 0 {
		return min
	}
	return r.gen.raw()%span + min
}

// Next returns a value in [0, 1).
func (r *Random) Next() float64 {
	return r.gen.float()
}

// NextFloat returns a value in [min, max).
func (r *Random) NextFloat(min, max float64) float64 {
	return r.Next()*(max-min) + min
}

// WithChance returns true with probability chance.
func (r *Random) WithChance(chance float64) bool {
	return r.Next() < chance
}

// NextBool returns true half of the time.
func (r *Random) NextBool() bool {
	return r.Next() >= 0.5
}

// Pick returns a random element of items, or the zero value when empty.
func Pick[T any](r *Random, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[r.NextInt(0, len(items))]
}

// PickN returns n distinct elements of items in random order. When n is at
// least len(items), a copy of items is returned unshuffled.
func PickN[T any](r *Random, items []T, n int) []T {
	if n >= len(items) {
		return append([]T(nil), items...)
	}
	if n <= 0 {
		return nil
	}
	return Shuffled(r, items)[:n]
}

// Shuffle shuffles items in place (Fisher-Yates).
func Shuffle[T any](r *Random, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := r.NextInt(0, i+1)
		items[i], items[j] = items[j], items[i]
	}
}

// Shuffled returns a shuffled copy of items.
func Shuffled[T any](r *Random, items []T) []T {
	out := append([]T(nil), items...)
	Shuffle(r, out)
	return out
}

const (
	seedableMultiplier = 0x41C64E6D
	seedableIncrement  = 0x3039
	seedableLimit      = 0x7FFF
)

type seedable struct {
	current int32
}

// NewSeedable returns a generator whose sequence depends only on seed.
// Seeds are truncated to 32 bits.
func NewSeedable(seed int64) *Random {
	return &Random{gen: &seedable{current: int32(seed)}}
}

func (s *seedable) raw() int {
	s.current = int32(uint32(s.current)*seedableMultiplier + seedableIncrement)
	return int(s.current>>10) & seedableLimit
}

func (s *seedable) float() float64 {
	return float64(s.raw()%seedableLimit) / seedableLimit
}

func (s *seedable) limit() int {
	return seedableLimit
}

const generalLimit = 0xFFFFFFFF

type general struct{}

// NewGeneral returns a generator backed by the runtime's global source.
// It cannot be seeded.
func NewGeneral() *Random {
	return &Random{gen: general{}}
}

func (general) raw() int {
	return int(rand.Float64() * generalLimit)
}

func (general) float() float64 {
	return rand.Float64()
}

func (general) limit() int {
	return generalLimit
}

// Limit returns the exclusive upper bound of the raw values the generator
// draws from.
func (r *Random) Limit() int {
	return r.gen.limit()
}

// NewSeed returns a fresh seed in [0, 1e9) for NewSeedable.
func NewSeed() int64 {
	return rand.Int64N(1_000_000_000)
}
