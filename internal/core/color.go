package core

// Color is the foreground color of a screen cell. The platform theme maps
// each color to a terminal style.
type Color uint8

// Palette of the games.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

// Dim returns the next fainter color: a bright color becomes its normal
// variant, anything else becomes gray. Gray and the default stay as they
// are.
func (c Color) Dim() Color {
	switch {
	case c >= ColorBrightRed && c <= ColorBrightWhite:
		return c - (ColorBrightRed - ColorRed)
	case c == ColorDefault:
		return ColorDefault
	default:
		return ColorGray
	}
}
