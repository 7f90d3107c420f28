package sisyphus

import (
	"fmt"

	"github.com/vovakirdan/sisyphus/internal/core"
)

// Render draws the current game state into the screen buffer.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	rows, cols := g.cfg.Board.Rows, g.cfg.Board.Cols
	if dst.Width() < cols+2 || dst.Height() < rows+4 {
		dst.DrawTextCentered(dst.Height()/2, fmt.Sprintf("Terminal too small (need %dx%d)", cols+2, rows+4), core.ColorYellow)
		return
	}

	box := core.NewRect(0, 0, dst.Width(), dst.Height()-1).Centered(cols+2, rows+2)
	dst.DrawBox(box, core.ColorGray)
	inner := box.Inset(1)

	if color, ok := g.titleColor(); ok {
		dst.DrawTextCentered(inner.Y+rows/3, g.cfg.Title.Text, color)
	}

	text, color := g.typed, core.ColorBrightWhite
	if g.Collapsing() {
		text, color = g.collapse, core.ColorRed
	}
	g.drawText(dst, inner, text, color)
	if !g.Collapsing() && len(g.typed) < g.cfg.Board.Len() {
		row, col := Position(len(g.typed), cols)
		dst.SetColored(inner.X+col, inner.Bottom()-1-row, Cursor, core.ColorYellow)
	}

	g.drawStatus(dst, box.Bottom())
}

// drawText draws text in Layout order from the bottom of r. The last
// character is dimmed while it is fading.
func (g *Game) drawText(dst *core.Screen, r core.Rect, text []rune, color core.Color) {
	cols := g.cfg.Board.Cols
	for i, ch := range text {
		row, col := Position(i, cols)
		if row >= g.cfg.Board.Rows {
			break
		}
		c := color
		if g.fading && i == len(text)-1 {
			c = core.ColorGray
		}
		dst.SetColored(r.X+col, r.Bottom()-1-row, ch, c)
	}
}

// titleColor returns the title color for the current text height. The
// title dims between the fade rows and is hidden past the last one.
func (g *Game) titleColor() (core.Color, bool) {
	t := g.cfg.Title
	if t.Text == "" {
		return core.ColorDefault, false
	}
	h := Height(len(g.typed), g.cfg.Board.Cols)
	if g.Collapsing() {
		h = Height(len(g.collapse), g.cfg.Board.Cols)
	}
	switch {
	case h < t.FadeStartRow:
		return core.ColorBrightWhite, true
	case h >= t.FadeEndRow:
		return core.ColorDefault, false
	case h-t.FadeStartRow < (t.FadeEndRow-t.FadeStartRow+1)/2:
		return core.ColorBrightWhite.Dim(), true
	default:
		return core.ColorBrightWhite.Dim().Dim(), true
	}
}

func (g *Game) drawStatus(dst *core.Screen, y int) {
	status := fmt.Sprintf("%d/%d  best %d  seed %d", len(g.typed), g.cfg.Board.Len(), g.best, g.seed)
	if g.progress != nil && g.progress.Achievements.IsUnlocked(AchievementHappy) {
		status += "  ★"
	}
	dst.DrawTextCentered(y, status, core.ColorGray)
}
