package input

// Poller is a provider that writes its base signals when polled.
type Poller interface {
	Poll()
}

// Sampler drives one frame of input: first every provider writes its base
// signals, then every registered set recomputes its derived signals.
type Sampler struct {
	providers []Poller
	sets      []*Set
	frame     uint64
}

// NewSampler creates a sampler over providers.
func NewSampler(providers ...Poller) *Sampler {
	return &Sampler{providers: providers}
}

// AddProvider appends a provider to the poll order.
func (s *Sampler) AddProvider(p Poller) {
	s.providers = append(s.providers, p)
}

// Register implements Registrar. Registering the same set twice is a no-op.
func (s *Sampler) Register(set *Set) {
	for _, existing := range s.sets {
		if existing == set {
			return
		}
	}
	s.sets = append(s.sets, set)
}

// Unregister implements Registrar.
func (s *Sampler) Unregister(set *Set) {
	for i, existing := range s.sets {
		if existing == set {
			s.sets = append(s.sets[:i:i], s.sets[i+1:]...)
			return
		}
	}
}

// Step samples one frame.
func (s *Sampler) Step() {
	s.frame++
	for _, p := range s.providers {
		p.Poll()
	}
	for _, set := range s.sets {
		set.UpdateDerived()
	}
}

// Frame returns the number of frames sampled so far.
func (s *Sampler) Frame() uint64 {
	return s.frame
}

var _ Registrar = (*Sampler)(nil)
