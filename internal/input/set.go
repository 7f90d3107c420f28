package input

// Derived is a signal recomputed from other signals once per frame.
type Derived interface {
	UpdateDerived()
}

// Registrar is a live input source that updates registered sets every
// frame. Sampler is the standard implementation.
type Registrar interface {
	Register(s *Set)
	Unregister(s *Set)
}

// Set groups the derived signals of one input profile so that the whole
// profile can be attached to or detached from a Registrar at once, e.g. on
// a screen transition.
//
// Derived signals are updated in the order they were added. Constructors
// add a signal after its sources exist, so a derived signal built on
// another derived signal always sees this frame's value.
type Set struct {
	derived   []Derived
	registrar Registrar
}

// NewSet creates an empty, unregistered set.
func NewSet() *Set {
	return &Set{}
}

// A nil *Set is an empty set that is never registered. Every method
// accepts it so that derived signals can be built standalone and updated
// by hand.

// Add appends d to the update order.
func (s *Set) Add(d Derived) {
	if s == nil {
		return
	}
	s.derived = append(s.derived, d)
}

// Len returns the number of derived signals in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.derived)
}

// UpdateDerived recomputes every derived signal in order.
func (s *Set) UpdateDerived() {
	if s == nil {
		return
	}
	for _, d := range s.derived {
		d.UpdateDerived()
	}
}

// RegisterWith attaches the set to r, detaching it from any previous
// registrar first. A nil registrar just detaches.
func (s *Set) RegisterWith(r Registrar) {
	s.Unregister()
	if s == nil || r == nil {
		return
	}
	s.registrar = r
	r.Register(s)
}

// Unregister detaches the set from its registrar, if any.
func (s *Set) Unregister() {
	if s == nil || s.registrar == nil {
		return
	}
	s.registrar.Unregister(s)
	s.registrar = nil
}

// Registered reports whether the set is attached to a registrar.
func (s *Set) Registered() bool {
	return s != nil && s.registrar != nil
}
