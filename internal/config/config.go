// Package config provides YAML-based game configuration loading and
// difficulty presets for the fade schedule.
package config

// SisyphusConfig contains all configuration for the Sisyphus game.
type SisyphusConfig struct {
	Board   BoardConfig       `yaml:"board"`
	Fade    FadeConfig        `yaml:"fade"`
	Loss    LossConfig        `yaml:"loss"`
	Title   TitleConfig       `yaml:"title"`
	Scores  ScoresConfig      `yaml:"scores"`
	Storage StorageConfig     `yaml:"storage"`
	Keys    map[string]string `yaml:"keys"` // Physical key -> board symbol
}

// BoardConfig defines the text board.
type BoardConfig struct {
	Rows    int    `yaml:"rows"`
	Cols    int    `yaml:"cols"`
	Symbols string `yaml:"symbols"` // Alphabet the target text is drawn from
}

// Len returns the number of characters on a full board.
func (b BoardConfig) Len() int {
	return b.Rows * b.Cols
}

// FadeConfig defines how typed characters fade away.
type FadeConfig struct {
	LadderMS   []int            `yaml:"ladder_ms"`
	Difficulty DifficultyPreset `yaml:"difficulty"`
}

// LossConfig defines the collapse animation after a wrong key.
type LossConfig struct {
	RowMS int `yaml:"row_ms"` // Time to clear one row of the board
}

// TitleConfig defines the title that hides as the text grows.
type TitleConfig struct {
	Text         string `yaml:"text"`
	FadeStartRow int    `yaml:"fade_start_row"`
	FadeEndRow   int    `yaml:"fade_end_row"`
}

// ScoresConfig defines the best-progress table.
type ScoresConfig struct {
	Capacity int `yaml:"capacity"`
}

// StorageConfig defines where progress is saved.
type StorageConfig struct {
	Path      string `yaml:"path"`
	Separator string `yaml:"separator"` // Path separator for save keys
}

// DifficultyPreset represents a named fade speed.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParseDifficulty maps a CLI flag value to a preset. Unknown or empty
// values return "" so the config's own preset is kept.
func ParseDifficulty(s string) DifficultyPreset {
	switch p := DifficultyPreset(s); p {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p
	default:
		return ""
	}
}
