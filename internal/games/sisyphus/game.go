// Package sisyphus implements a typing game that cannot be won for long.
//
// A seeded board of digits has to be typed out key by key. Every key is
// mapped onto a digit; a wrong key collapses the text. Typed characters
// fade away on an accelerating schedule as soon as the player stops, so
// the board is always slipping back to empty.
package sisyphus

import (
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/sisyphus/internal/config"
	"github.com/vovakirdan/sisyphus/internal/core"
	"github.com/vovakirdan/sisyphus/internal/input"
	"github.com/vovakirdan/sisyphus/internal/persist"
	"github.com/vovakirdan/sisyphus/internal/random"
	"github.com/vovakirdan/sisyphus/internal/registry"
)

// ID is the registry id of the game.
const ID = "sisyphus"

// configPath stores the custom config path set via CLI
var configPath string
var difficultyPreset config.DifficultyPreset

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the fade difficulty preset.
func SetDifficultyPreset(preset string) {
	difficultyPreset = config.ParseDifficulty(preset)
}

// Game implements the Sisyphus game logic.
type Game struct {
	cfg       config.SisyphusConfig
	hasConfig bool
	fade      config.FadeSchedule
	runtime   core.RuntimeConfig
	logger    *log.Logger

	player   string
	progress *Progress
	keys     *input.Handler
	names    []string        // Action names in polling order
	symbols  map[string]byte // Action name -> board symbol, 0 for never
	seed     int64

	target   string
	typed    []rune // Keys typed so far, as shown on the board
	peak     int    // Longest run since the last recorded score
	best     int    // Longest run this session
	fading   bool
	fadeStep int
	fadeLeft time.Duration
	collapse []rune // Text falling off the board; input is ignored meanwhile
	fallLeft time.Duration
}

// New creates a new game that loads its config on Attach.
func New() *Game {
	return &Game{}
}

// NewWithConfig creates a new game with a fixed config.
func NewWithConfig(cfg config.SisyphusConfig) *Game {
	return &Game{cfg: cfg, hasConfig: true}
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return ID
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Sisyphus"
}

// Attach loads the config, binds the keyboard and registers the player's
// progress with env.Saves.
func (g *Game) Attach(env registry.Env) {
	g.logger = env.Logger
	if g.logger == nil {
		g.logger = log.Default().WithPrefix(ID)
	}

	if !g.hasConfig {
		cfg, err := config.LoadSisyphus(configPath)
		if err != nil {
			g.logger.Warn("using default config", "error", err)
		}
		g.cfg = cfg
		g.hasConfig = true
	}
	config.ApplyDifficulty(&g.cfg, difficultyPreset)
	g.fade = config.NewFadeSchedule(g.cfg.Fade)

	saves := env.Saves
	if saves == nil {
		saves = persist.NewManager(persist.NewMemoryBackend(), persist.WithLogger(g.logger))
	}
	g.player = env.Player
	if g.player == "" {
		g.player = "anonymous"
	}
	g.progress = NewProgress(g.cfg.Scores.Capacity)
	g.progress.Register(saves)

	g.bindKeys(env)
}

// bindKeys maps every configured key to an action. Letters respond to
// both cases.
func (g *Game) bindKeys(env registry.Env) {
	set := input.NewSet()
	actions := make(map[string][]input.KeySignal, len(g.cfg.Keys))
	g.symbols = make(map[string]byte, len(g.cfg.Keys))
	for key, sym := range g.cfg.Keys {
		name := strings.ToUpper(key)
		variants := []string{name}
		if lower := strings.ToLower(key); lower != name {
			variants = append(variants, lower)
		}
		actions[name] = []input.KeySignal{input.Combine(set, input.Keys(env.Keys, variants...)...)}
		if sym != "" {
			g.symbols[name] = sym[0]
		} else {
			g.symbols[name] = 0
		}
	}
	g.keys = input.NewHandler(actions, set).WithLogger(g.logger)
	g.names = g.keys.Names()
	if env.Input != nil {
		g.keys.Register(env.Input)
	}
}

// Reset starts a new board. The seed comes from cfg.Seed when set,
// otherwise from the saved seed, creating and saving one on first play.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.runtime = cfg

	g.seed = cfg.Seed
	if g.seed == 0 {
		if g.progress.Seed.Get() < 0 {
			g.progress.Seed.Set(random.NewSeed())
			g.logger.Info("created seed", "seed", g.progress.Seed.Get())
		}
		g.seed = g.progress.Seed.Get()
	}

	n := g.cfg.Board.Len()
	g.target = FullText(g.seed, n, g.cfg.Board.Symbols)
	g.typed = nil
	g.peak = 0
	g.fading = false

	// Open on a full board falling apart.
	fake := random.NewGeneral().NextInt(0, 5_000_000)
	g.startCollapse([]rune(FullText(int64(fake), n-1, g.cfg.Board.Symbols)))
}

// Step advances the game by dt.
func (g *Game) Step(dt time.Duration) core.StepResult {
	if g.Collapsing() {
		g.stepCollapse(dt)
		return core.StepResult{State: g.State()}
	}

	pressed := false
	for _, name := range g.names {
		if g.Collapsing() {
			break
		}
		if g.keys.IsJustDown(name) {
			g.press(name)
			pressed = true
		}
	}
	if !pressed {
		g.stepFade(dt)
	}
	return core.StepResult{State: g.State()}
}

// press handles one key press.
func (g *Game) press(name string) {
	g.fading = false
	next := len(g.typed)
	if sym := g.symbols[name]; sym != 0 && next < len(g.target) && g.target[next] == sym {
		g.typed = append(g.typed, unicode.ToUpper([]rune(name)[0]))
		g.startFade()
		g.advanced()
		return
	}
	g.lose()
}

func (g *Game) advanced() {
	n := len(g.typed)
	g.peak = max(g.peak, n)
	g.best = max(g.best, n)
	if n == len(g.target) {
		if already := g.progress.Achievements.Unlock(AchievementHappy, true); !already {
			g.logger.Info("board complete", "player", g.player, "achievement", AchievementHappy)
		}
	}
}

func (g *Game) lose() {
	g.recordRun()
	g.fading = false
	g.startCollapse(g.typed)
	g.typed = nil
}

// recordRun adds the current run to the score table.
func (g *Game) recordRun() {
	if g.peak == 0 {
		return
	}
	if g.progress.Scores.WouldBeHighScore(g.peak) {
		g.progress.Scores.Add(g.player, g.peak, true)
	}
	g.peak = 0
}

func (g *Game) startFade() {
	g.fading = true
	g.fadeStep = 0
	g.fadeLeft = g.fade.Delay(0)
}

// stepFade removes typed characters whose delay has run out. Each removal
// starts the next, shorter delay.
func (g *Game) stepFade(dt time.Duration) {
	if !g.fading {
		return
	}
	g.fadeLeft -= dt
	for g.fadeLeft <= 0 {
		g.typed = g.typed[:len(g.typed)-1]
		if len(g.typed) == 0 {
			g.fading = false
			g.recordRun()
			return
		}
		g.fadeStep++
		g.fadeLeft += g.fade.Delay(g.fadeStep)
	}
}

func (g *Game) startCollapse(text []rune) {
	g.collapse = text
	g.fallLeft = g.rowDelay()
}

// stepCollapse drops the top row of the collapsing text every row delay.
func (g *Game) stepCollapse(dt time.Duration) {
	g.fallLeft -= dt
	cols := g.cfg.Board.Cols
	for g.fallLeft <= 0 && len(g.collapse) > 0 {
		cut := len(g.collapse) % cols
		if cut == 0 {
			cut = cols
		}
		g.collapse = g.collapse[:len(g.collapse)-cut]
		g.fallLeft += g.rowDelay()
	}
	if len(g.collapse) == 0 {
		g.collapse = nil
	}
}

func (g *Game) rowDelay() time.Duration {
	return time.Duration(g.cfg.Loss.RowMS) * time.Millisecond
}

// Collapsing reports whether text is falling and input is ignored.
func (g *Game) Collapsing() bool {
	return len(g.collapse) > 0
}

// Typed returns the text typed so far.
func (g *Game) Typed() string {
	return string(g.typed)
}

// Target returns the text to type.
func (g *Game) Target() string {
	return g.target
}

// Seed returns the seed of the current board.
func (g *Game) Seed() int64 {
	return g.seed
}

// Progress returns the player's saved progress.
func (g *Game) Progress() *Progress {
	return g.progress
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score: len(g.typed),
		Best:  g.best,
	}
}

// Detach records the current run and releases the keyboard.
func (g *Game) Detach() {
	g.recordRun()
	g.progress.Achievements.Save()
	g.keys.Unregister()
}

// Register the game with the registry
func init() {
	registry.Register(ID, func() registry.Game {
		return New()
	})
}
