package sisyphus

import (
	"github.com/vovakirdan/sisyphus/internal/achievements"
	"github.com/vovakirdan/sisyphus/internal/highscores"
	"github.com/vovakirdan/sisyphus/internal/persist"
	"github.com/vovakirdan/sisyphus/internal/reference"
)

// AchievementHappy is unlocked by typing out the whole board.
const AchievementHappy = "sisyphus_happy"

// NoSeed is the stored seed before the first game.
const NoSeed int64 = -1

// Progress is everything saved for one player.
type Progress struct {
	// Seed fixes the target text across sessions.
	Seed         *reference.Persistent[int64]
	Achievements *achievements.Set
	// Scores holds the longest runs, by characters typed.
	Scores *highscores.List[int]
}

// NewProgress returns unsaved progress with room for capacity scores.
func NewProgress(capacity int) *Progress {
	return &Progress{
		Seed:         reference.NewPersistent(NoSeed, true),
		Achievements: achievements.New(),
		Scores:       highscores.New(highscores.Descending[int], capacity, nil),
	}
}

// Register attaches the progress to m under kh.menagerie.achievements,
// kh.sisyphus.seed and kh.sisyphus.scores, and loads any saved values.
func (p *Progress) Register(m *persist.Manager) {
	m.RegisterAll(persist.Registration{
		"kh": persist.Registration{
			"menagerie": persist.Registration{"achievements": p.Achievements},
			"sisyphus": persist.Registration{
				"seed":   p.Seed,
				"scores": p.Scores,
			},
		},
	})
}
