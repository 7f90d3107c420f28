// Package registry provides a global registry for game factories.
// Games register themselves in init() functions, allowing the platform
// to discover and instantiate games without hardcoded dependencies.
package registry

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/sisyphus/internal/core"
	"github.com/vovakirdan/sisyphus/internal/input"
	"github.com/vovakirdan/sisyphus/internal/persist"
)

// Env is what the platform hands a game once, before the first Reset.
type Env struct {
	// Keys provides the keyboard, by tea.KeyMsg names.
	Keys input.ButtonProvider
	// Input updates the game's derived signals every frame.
	Input input.Registrar
	// Saves is the player's save manager.
	Saves *persist.Manager
	// Player names the player in score tables.
	Player string
	Logger *log.Logger
}

// Game is the core interface that all games must implement.
// Games contain pure logic with no Bubble Tea code. They read input
// through signals built from Env.Keys; the platform samples the keyboard
// before every Step.
type Game interface {
	// ID returns a unique identifier for this game (e.g., "sisyphus").
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Attach binds the game to its input and save data. Called once.
	Attach(env Env)

	// Reset initializes or resets the game state.
	// The RuntimeConfig provides screen dimensions and seed.
	Reset(cfg core.RuntimeConfig)

	// Step advances the simulation by dt of game time.
	Step(dt time.Duration) core.StepResult

	// Render draws the current game state into the provided screen buffer.
	Render(dst *core.Screen)

	// State returns the current game state.
	State() core.GameState

	// Detach releases input and flushes save data. Called once on exit.
	Detach()
}

// GameInfo contains metadata about a registered game.
type GameInfo struct {
	ID    string
	Title string
	Order int
}

// Factory is a function that creates a new instance of a game.
type Factory func() Game

// Option adjusts how a game is listed.
type Option func(*GameInfo)

// WithOrder sets the list position of a game. Lower comes first; games
// with the same order are sorted by ID.
func WithOrder(n int) Option {
	return func(g *GameInfo) { g.Order = n }
}

var (
	factories = make(map[string]Factory)
	infos     = make(map[string]GameInfo)
	mu        sync.RWMutex
)

// Register adds a game factory to the registry.
// Typically called from a game's init() function.
// Panics if a game with the same ID is already registered.
func Register(id string, f Factory, opts ...Option) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}

	// Get title by creating a temporary instance
	info := GameInfo{ID: id, Title: f().Title()}
	for _, opt := range opts {
		opt(&info)
	}
	factories[id] = f
	infos[id] = info
}

// List returns information about all registered games in list order.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, info)
	}
	slices.SortFunc(result, func(a, b GameInfo) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return result
}

// Create instantiates a new game by its ID.
// Returns an error if the game ID is not registered.
func Create(id string) (Game, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}

	return f(), nil
}

// Exists checks if a game with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
