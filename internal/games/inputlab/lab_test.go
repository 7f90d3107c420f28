package inputlab

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/sisyphus/internal/core"
	"github.com/vovakirdan/sisyphus/internal/input"
	"github.com/vovakirdan/sisyphus/internal/input/virtual"
	"github.com/vovakirdan/sisyphus/internal/registry"
)

type rig struct {
	lab     *Lab
	pad     *virtual.Pad
	sampler *input.Sampler
	last    core.StepResult
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{lab: New(), pad: virtual.NewPad()}
	r.sampler = input.NewSampler(r.pad)
	r.lab.Attach(registry.Env{Keys: r.pad, Input: r.sampler, Logger: log.New(io.Discard)})
	r.lab.Reset(core.DefaultConfig())
	return r
}

func (r *rig) step(dt time.Duration) {
	r.sampler.Step()
	r.last = r.lab.Step(dt)
}

func (r *rig) press(name string) {
	r.pad.Tap(name)
	r.step(0)
	r.pad.Release(name)
	r.step(0)
}

func TestNudgeAndDeadZone(t *testing.T) {
	r := newRig(t)
	require.Equal(t, 0.25, r.lab.Zone())

	for range 3 {
		r.press("right")
	}
	st := r.lab.Status()
	assert.InDelta(t, 0.6, r.lab.stick.x.Value(), 1e-9)
	assert.InDelta(t, (0.6-0.25)/0.75, st.Axes[StickX].Value, 1e-9)
	assert.InDelta(t, 0.6-0.25, st.Axes[RawX].Value*0.75, 1e-9)
	assert.False(t, st.Keys[TiltRight].Down)

	r.press("l")
	st = r.lab.Status()
	assert.True(t, st.Keys[TiltRight].Down, "0.8 past a 0.25 zone should tilt right")
	assert.False(t, st.Keys[TiltLeft].Down)
	assert.Contains(t, r.lab.Events(), string(TiltRight))
	assert.InDelta(t, st.Axes[StickX].Value, st.Axes[Dominant].Value, 1e-9)
}

func TestStickSpringsBack(t *testing.T) {
	r := newRig(t)
	for range 4 {
		r.press("down")
	}
	assert.InDelta(t, 0.8, r.lab.stick.y.Value(), 1e-9)

	r.step(time.Second)
	assert.InDelta(t, 0.3, r.lab.stick.y.Value(), 1e-9)
	assert.True(t, r.lab.Status().Axes[StickY].Changed)

	r.step(time.Second)
	assert.Zero(t, r.lab.stick.y.Value())
	assert.Zero(t, r.lab.Status().Axes[StickY].Value)
}

func TestStickStaysInUnitCircle(t *testing.T) {
	r := newRig(t)
	for range 10 {
		r.press("up")
		r.press("left")
	}
	x, y := r.lab.stick.x.Value(), r.lab.stick.y.Value()
	assert.LessOrEqual(t, x*x+y*y, 1+1e-9)
}

func TestBoostGatesFire(t *testing.T) {
	r := newRig(t)
	r.press(" ")
	assert.Equal(t, 1, r.lab.State().Score)
	assert.NotContains(t, r.lab.Events(), "boosted fire")

	r.press("b")
	r.press("enter")
	assert.Equal(t, 2, r.lab.State().Score)
	assert.Equal(t, []string{"fire", "boost on", "fire", "boosted fire"}, r.lab.Events())
}

func TestZoneCycleRebuildsController(t *testing.T) {
	r := newRig(t)
	for range 3 {
		r.press("right")
	}
	r.press("z")
	require.Equal(t, 0.5, r.lab.Zone())
	assert.InDelta(t, (0.6-0.5)/0.5, r.lab.Status().Axes[StickX].Value, 1e-9)

	r.press("z")
	require.Zero(t, r.lab.Zone())
	assert.InDelta(t, 0.6, r.lab.Status().Axes[StickX].Value, 1e-9)
}

func TestQuit(t *testing.T) {
	r := newRig(t)
	r.pad.Tap("q")
	r.step(0)
	assert.True(t, r.last.Quit)
}

func TestRenderAndDetach(t *testing.T) {
	r := newRig(t)
	r.press("right")

	s := core.NewScreen(80, 24)
	r.lab.Render(s)
	assert.True(t, strings.Contains(s.Row(0), "I N P U T"))
	assert.Contains(t, s.String(), "stick_x")

	r.lab.Detach()
	assert.False(t, r.lab.keySet.Registered())
	assert.False(t, r.lab.ctrl.Set().Registered())
}

func TestRegistered(t *testing.T) {
	assert.True(t, registry.Exists(ID))
}
