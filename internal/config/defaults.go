package config

import (
	_ "embed"
	"maps"
	"slices"
)

//go:embed defaults/sisyphus.yaml
var defaultSisyphusYAML []byte

// DefaultLadderMS is the stock fade schedule.
var DefaultLadderMS = []int{5000, 4000, 3000, 2000, 1000, 500, 250, 125, 64, 32, 16}

var defaultKeys = map[string]string{
	"1": "1", "2": "2", "3": "3", "4": "4",
	"5": "1", "6": "2", "7": "3", "8": "4",
	"9": "1", "0": "2",
	"Q": "1", "W": "2", "E": "3", "R": "4", "T": "1",
	"Y": "2", "U": "3", "I": "4", "O": "", "P": "2",
	"A": "3", "S": "4", "D": "1", "F": "2", "G": "3",
	"H": "4", "J": "1", "K": "2", "L": "3",
	"Z": "4", "X": "1", "C": "2", "V": "3", "B": "4",
	"N": "1", "M": "2",
}

// DefaultSisyphusConfig returns the hardcoded configuration, used when no
// YAML source can be read.
func DefaultSisyphusConfig() SisyphusConfig {
	return SisyphusConfig{
		Board: BoardConfig{
			Rows:    18,
			Cols:    50,
			Symbols: "1234",
		},
		Fade: FadeConfig{
			LadderMS:   slices.Clone(DefaultLadderMS),
			Difficulty: DifficultyNormal,
		},
		Loss: LossConfig{
			RowMS: 50,
		},
		Title: TitleConfig{
			Text:         "S I S Y P H U S",
			FadeStartRow: 8,
			FadeEndRow:   11,
		},
		Scores: ScoresConfig{
			Capacity: 10,
		},
		Storage: StorageConfig{
			Path:      "~/.sisyphus/saves.db",
			Separator: ".",
		},
		Keys: maps.Clone(defaultKeys),
	}
}
