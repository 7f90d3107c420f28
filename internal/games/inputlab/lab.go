// Package inputlab is a diagnostics screen for the input pipeline.
//
// Arrow keys (or hjkl) nudge a virtual stick that springs back to center.
// The lab shows the raw stick next to its dead-zoned reading and the keys
// and axes a controller derives from it, so bindings and dead zones can be
// checked in a real terminal.
package inputlab

import (
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/sisyphus/internal/core"
	"github.com/vovakirdan/sisyphus/internal/input"
	"github.com/vovakirdan/sisyphus/internal/reference"
	"github.com/vovakirdan/sisyphus/internal/registry"
)

// ID is the registry id of the lab.
const ID = "inputlab"

// Control is a logical input of the lab.
type Control string

const (
	Fire      Control = "fire"
	BoostFire Control = "boost_fire"
	TiltLeft  Control = "tilt_left"
	TiltRight Control = "tilt_right"
	TiltUp    Control = "tilt_up"
	TiltDown  Control = "tilt_down"
	StickX    Control = "stick_x"
	StickY    Control = "stick_y"
	Dominant  Control = "dominant"
	RawX      Control = "raw_x"
)

const (
	nudge      = 0.2 // Stick travel per key press
	springRate = 0.5 // Stick return speed, per second
	tilt       = 0.5 // Threshold of the tilt keys
	maxEvents  = 6
)

// DeadZones are the zones "z" cycles through.
var DeadZones = []float64{0.25, 0.5, 0, 0.1}

// Lab implements registry.Game.
type Lab struct {
	logger *log.Logger
	env    registry.Env

	keySet  *input.Set
	actions *input.Handler
	boost   *reference.Reference[bool]
	fire    input.KeySignal

	stick   *stick
	sampler *input.Sampler // Runs the stick and everything derived from it
	zone    int
	ctrl    *input.Controller[Control]

	fired  int
	events []string
	quit   bool
}

// New creates a new lab.
func New() *Lab {
	return &Lab{}
}

// ID returns the unique identifier for this game.
func (l *Lab) ID() string {
	return ID
}

// Title returns the display name for this game.
func (l *Lab) Title() string {
	return "Input Lab"
}

// Attach binds the lab to the keyboard.
func (l *Lab) Attach(env registry.Env) {
	l.env = env
	l.logger = env.Logger
	if l.logger == nil {
		l.logger = log.Default().WithPrefix(ID)
	}

	l.keySet = input.NewSet()
	combine := func(names ...string) input.KeySignal {
		return input.Combine(l.keySet, input.Keys(env.Keys, names...)...)
	}
	l.actions = input.NewHandler(map[string][]input.KeySignal{
		"left":  {combine("left", "h")},
		"right": {combine("right", "l")},
		"up":    {combine("up", "k")},
		"down":  {combine("down", "j")},
		"boost": {combine("b")},
		"zone":  {combine("z")},
		"quit":  {combine("q")},
	}, l.keySet).WithLogger(l.logger)

	l.boost = reference.New(false)
	l.boost.OnChange(l, func(c reference.Change[bool]) {
		l.logEvent(map[bool]string{true: "boost on", false: "boost off"}[c.New])
	})
	l.fire = input.NewOr(l.keySet, true, input.Keys(env.Keys, " ", "enter")...)
	if env.Input != nil {
		l.keySet.RegisterWith(env.Input)
	}

	l.stick = &stick{x: input.NewAxis(), y: input.NewAxis()}
	l.sampler = input.NewSampler(l.stick)
	l.buildController()
}

// buildController derives the stick signals for the current dead zone.
func (l *Lab) buildController() {
	if l.ctrl != nil {
		l.ctrl.Unregister()
	}
	zone := DeadZones[l.zone]
	set := input.NewSet()
	x := input.NewDeadZoneRadial(set, l.stick.x, l.stick.y, zone)
	y := input.NewDeadZoneRadial(set, l.stick.y, l.stick.x, zone)
	keys := map[Control]input.KeySignal{
		Fire:      l.fire,
		BoostFire: input.Unified(set, l.boost, false, l.fire),
		TiltLeft:  input.NewKeyFromAxis(set, x, -tilt),
		TiltRight: input.NewKeyFromAxis(set, x, tilt),
		TiltUp:    input.NewKeyFromAxis(set, y, -tilt),
		TiltDown:  input.NewKeyFromAxis(set, y, tilt),
	}
	axes := map[Control]input.AxisSignal{
		StickX:   x,
		StickY:   y,
		Dominant: input.NewHighestMagnitude(set, x, y),
		RawX:     input.NewDeadZoneAxial(set, l.stick.x, zone),
	}
	l.ctrl = input.NewController(keys, axes, set).WithLogger(l.logger)
	l.ctrl.Register(l.sampler)

	for _, id := range []Control{TiltLeft, TiltRight, TiltUp, TiltDown} {
		if k, ok := keys[id].(*input.KeyFromAxis); ok {
			k.OnUpdate(l, func(s input.KeyState) {
				if s.JustDown {
					l.logEvent(string(id))
				}
			})
		}
	}
}

// Reset centers the stick and clears the event log.
func (l *Lab) Reset(core.RuntimeConfig) {
	l.stick.vx, l.stick.vy = 0, 0
	l.stick.dt = 0
	l.sampler.Step()
	l.fired = 0
	l.events = nil
	l.quit = false
}

// Step advances the lab by dt.
func (l *Lab) Step(dt time.Duration) core.StepResult {
	if l.actions.IsJustDown("quit") {
		l.quit = true
	}
	if l.actions.IsJustDown("boost") {
		l.boost.Set(!l.boost.Get())
	}
	if l.actions.IsJustDown("zone") {
		l.zone = (l.zone + 1) % len(DeadZones)
		l.buildController()
		l.logger.Debug("dead zone", "zone", DeadZones[l.zone])
	}

	l.stick.dt = dt
	for dir, d := range directions {
		if l.actions.IsJustDown(dir) {
			l.stick.push(d[0]*nudge, d[1]*nudge)
		}
	}
	l.sampler.Step()

	if l.ctrl.IsJustDown(Fire) {
		l.fired++
		l.logEvent("fire")
	}
	if l.ctrl.IsJustDown(BoostFire) {
		l.logEvent("boosted fire")
	}

	return core.StepResult{State: l.State(), Quit: l.quit}
}

var directions = map[string][2]float64{
	"left":  {-1, 0},
	"right": {1, 0},
	"up":    {0, -1},
	"down":  {0, 1},
}

func (l *Lab) logEvent(e string) {
	l.events = append(l.events, e)
	if len(l.events) > maxEvents {
		l.events = l.events[len(l.events)-maxEvents:]
	}
}

// Status returns the controller snapshot.
func (l *Lab) Status() input.Status[Control] {
	return l.ctrl.Status()
}

// Zone returns the current dead zone.
func (l *Lab) Zone() float64 {
	return DeadZones[l.zone]
}

// Events returns the most recent events, oldest first.
func (l *Lab) Events() []string {
	return l.events
}

// State returns the current game state.
func (l *Lab) State() core.GameState {
	return core.GameState{Score: l.fired, Best: l.fired}
}

// Detach releases the keyboard.
func (l *Lab) Detach() {
	l.keySet.Unregister()
	l.ctrl.Unregister()
	l.boost.UnsubscribeOwner(l)
}

// stick is a virtual analog stick driven by key presses. It is the only
// provider of the lab's own sampler.
type stick struct {
	x, y   *input.Axis
	vx, vy float64
	dt     time.Duration
}

// push moves the stick, keeping it inside the unit circle.
func (s *stick) push(dx, dy float64) {
	s.vx += dx
	s.vy += dy
	if m := math.Hypot(s.vx, s.vy); m > 1 {
		s.vx /= m
		s.vy /= m
	}
}

// Poll implements input.Poller. The stick springs back toward center by
// springRate per second.
func (s *stick) Poll() {
	step := springRate * s.dt.Seconds()
	if m := math.Hypot(s.vx, s.vy); m <= step {
		s.vx, s.vy = 0, 0
	} else {
		k := (m - step) / m
		s.vx *= k
		s.vy *= k
	}
	s.x.Update(s.vx)
	s.y.Update(s.vy)
}

// Register the game with the registry
func init() {
	registry.Register(ID, func() registry.Game {
		return New()
	}, registry.WithOrder(100))
}
