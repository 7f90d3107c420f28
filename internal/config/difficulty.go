package config

import (
	"math"
	"time"

	"github.com/vovakirdan/sisyphus/internal/core"
)

// FadeSchedule yields the delay before each fade in a chain of fades.
type FadeSchedule struct {
	ladder []time.Duration
}

// NewFadeSchedule builds the schedule for cfg, scaled by its difficulty:
// easy doubles every delay, hard halves it, fixed keeps the first delay
// for the whole chain.
func NewFadeSchedule(cfg FadeConfig) FadeSchedule {
	ladder := cfg.LadderMS
	if len(ladder) == 0 {
		ladder = DefaultLadderMS
	}
	if cfg.Difficulty == DifficultyFixed {
		ladder = ladder[:1]
	}

	scale := scaleForPreset(cfg.Difficulty)
	s := FadeSchedule{ladder: make([]time.Duration, len(ladder))}
	for i, ms := range ladder {
		d := time.Duration(math.Round(float64(ms)*scale)) * time.Millisecond
		s.ladder[i] = max(d, time.Millisecond)
	}
	return s
}

// Delay returns the delay before fade n of a chain, counting from 0.
// The first step is used twice, then the ladder is walked down and its
// last step repeats.
func (s FadeSchedule) Delay(n int) time.Duration {
	return s.ladder[core.Clamp(n-1, 0, len(s.ladder)-1)]
}

// Len returns the number of distinct steps.
func (s FadeSchedule) Len() int {
	return len(s.ladder)
}

// ApplyDifficulty overrides the fade difficulty of cfg. An empty preset
// keeps the configured one.
func ApplyDifficulty(cfg *SisyphusConfig, preset DifficultyPreset) {
	if preset == "" {
		return
	}
	cfg.Fade.Difficulty = preset
}

func scaleForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 2.0
	case DifficultyHard:
		return 0.5
	default:
		return 1.0
	}
}
