package sisyphus

import (
	"slices"
	"strings"

	"github.com/vovakirdan/sisyphus/internal/random"
)

// Cursor marks the next character to type.
const Cursor = 'o'

// FullText returns the n-character target text for seed, drawn from
// symbols. The same seed always yields the same text.
func FullText(seed int64, n int, symbols string) string {
	if symbols == "" || n <= 0 {
		return ""
	}
	r := random.NewSeedable(seed)
	var sb strings.Builder
	sb.Grow(n)
	for range n {
		sb.WriteByte(symbols[r.NextInt(0, len(symbols))])
	}
	return sb.String()
}

// Layout splits text into rows of cols characters, bottom row first.
// Odd rows run right to left, so the text snakes up the board. Rows past
// the end of text are blank; text beyond rows*cols is dropped.
func Layout(text []rune, rows, cols int) []string {
	out := make([]string, rows)
	for i := range rows {
		row := make([]rune, cols)
		for j := range row {
			row[j] = ' '
		}
		start := i * cols
		if start < len(text) {
			copy(row, text[start:min(start+cols, len(text))])
		}
		if i%2 == 1 {
			slices.Reverse(row)
		}
		out[i] = string(row)
	}
	return out
}

// Position returns the row (bottom first) and column of character index i
// in Layout order.
func Position(i, cols int) (row, col int) {
	row, col = i/cols, i%cols
	if row%2 == 1 {
		col = cols - 1 - col
	}
	return row, col
}

// Height returns the number of rows that text of length n plus the cursor
// occupies.
func Height(n, cols int) int {
	return (n + cols) / cols
}
