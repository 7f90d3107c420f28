// Package virtual provides a scriptable input device for tests, demos and
// replays.
package virtual

import "github.com/vovakirdan/sisyphus/internal/input"

// Pad is a device whose buttons and axes are set by code. Unlike the
// keyboard, state is held: a button stays down until released.
type Pad struct {
	buttons map[string]*input.Key
	axes    map[string]*input.Axis
	held    map[string]bool
	values  map[string]float64
}

// NewPad creates a pad at rest.
func NewPad() *Pad {
	return &Pad{
		buttons: make(map[string]*input.Key),
		axes:    make(map[string]*input.Axis),
		held:    make(map[string]bool),
		values:  make(map[string]float64),
	}
}

// Input implements input.ButtonProvider.
func (p *Pad) Input(name string) *input.Key {
	k, ok := p.buttons[name]
	if !ok {
		k = input.NewKey()
		p.buttons[name] = k
	}
	return k
}

// Axis implements input.AxisProvider.
func (p *Pad) Axis(name string) *input.Axis {
	a, ok := p.axes[name]
	if !ok {
		a = input.NewAxis()
		p.axes[name] = a
	}
	return a
}

// SetButton holds or releases a button from the next Poll on.
func (p *Pad) SetButton(name string, down bool) {
	p.held[name] = down
}

// Tap holds a button.
func (p *Pad) Tap(name string) { p.SetButton(name, true) }

// Release lets a button go.
func (p *Pad) Release(name string) { p.SetButton(name, false) }

// SetAxis sets an axis value from the next Poll on.
func (p *Pad) SetAxis(name string, v float64) {
	p.values[name] = v
}

// Poll implements input.Poller.
func (p *Pad) Poll() {
	for name, k := range p.buttons {
		k.Update(p.held[name])
	}
	for name, a := range p.axes {
		a.Update(p.values[name])
	}
}

// Frame is one step of a script: buttons to hold and axis values to set.
// Buttons not listed are released.
type Frame struct {
	Buttons []string
	Axes    map[string]float64
}

// Apply sets the pad to f.
func (p *Pad) Apply(f Frame) {
	clear(p.held)
	for _, b := range f.Buttons {
		p.held[b] = true
	}
	for name, v := range f.Axes {
		p.values[name] = v
	}
}

var (
	_ input.Poller         = (*Pad)(nil)
	_ input.ButtonProvider = (*Pad)(nil)
	_ input.AxisProvider   = (*Pad)(nil)
)
