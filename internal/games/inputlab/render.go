package inputlab

import (
	"fmt"
	"math"
	"slices"

	"github.com/vovakirdan/sisyphus/internal/core"
)

// Stick panel size, odd so the center is a cell.
const (
	padW = 23
	padH = 11
)

// Render draws the lab into the screen buffer.
func (l *Lab) Render(dst *core.Screen) {
	dst.Clear()
	dst.DrawTextCentered(0, "I N P U T   L A B", core.ColorBrightWhite)

	pad := core.NewRect(1, 2, padW+2, padH+2)
	dst.DrawBox(pad, core.ColorGray)
	l.drawStick(dst, pad.Inset(1))

	x := pad.Right() + 2
	y := pad.Y
	dst.DrawTextColored(x, y, fmt.Sprintf("dead zone %.2f   boost %v   fired %d", l.Zone(), l.boost.Get(), l.fired), core.ColorWhite)
	y += 2

	st := l.Status()
	for _, id := range []Control{StickX, StickY, Dominant, RawX} {
		a := st.Axes[id]
		c := core.ColorGray
		if a.Changed {
			c = core.ColorCyan
		}
		dst.DrawTextColored(x, y, fmt.Sprintf("%-10s %+.2f", id, a.Value), c)
		y++
	}
	y++

	keys := l.ctrl.KeyIDs()
	slices.Sort(keys)
	for _, id := range keys {
		k := st.Keys[id]
		c := core.ColorGray
		switch {
		case k.JustDown:
			c = core.ColorBrightYellow
		case k.Down:
			c = core.ColorGreen
		}
		dst.DrawTextColored(x, y, fmt.Sprintf("%-10s %v", id, k.Down), c)
		y++
	}
	y++

	for _, e := range l.events {
		dst.DrawTextColored(x, y, e, core.ColorMagenta)
		y++
	}

	dst.DrawTextCentered(dst.Height()-1, "arrows/hjkl nudge  space fire  b boost  z dead zone  q quit", core.ColorGray)
}

// drawStick plots the raw stick, the dead zone ring and the dead-zoned
// reading inside r.
func (l *Lab) drawStick(dst *core.Screen, r core.Rect) {
	cx, cy := r.X+r.W/2, r.Y+r.H/2
	plot := func(vx, vy float64) (int, int) {
		vx, vy = core.ClampF(vx, -1, 1), core.ClampF(vy, -1, 1)
		return cx + int(math.Round(vx*float64(r.W/2))), cy + int(math.Round(vy*float64(r.H/2)))
	}

	if zone := l.Zone(); zone > 0 {
		for a := 0.0; a < 2*math.Pi; a += math.Pi / 24 {
			px, py := plot(zone*math.Cos(a), zone*math.Sin(a))
			dst.SetColored(px, py, '·', core.ColorGray)
		}
	}
	dst.SetColored(cx, cy, '+', core.ColorGray)

	st := l.Status()
	rx, ry := plot(l.stick.x.Value(), l.stick.y.Value())
	dst.SetColored(rx, ry, 'o', core.ColorWhite)
	dx, dy := plot(st.Axes[StickX].Value, st.Axes[StickY].Value)
	dst.SetColored(dx, dy, '@', core.ColorBrightCyan)
}
