package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/sisyphus/internal/core"
	"github.com/vovakirdan/sisyphus/internal/games/sisyphus"
	"github.com/vovakirdan/sisyphus/internal/platform/tui"
	"github.com/vovakirdan/sisyphus/internal/registry"
	"github.com/vovakirdan/sisyphus/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play [game]",
	Short: "Play a game",
	Long: `Start playing the specified game, or Sisyphus if none is given.

Controls:
  Any key    - Type the digit it stands for
  ?          - Toggle help
  Ctrl+S     - Save a screenshot
  Esc/Ctrl+C - Quit

The board is the same every time until you finish it or clear the saved
seed. Use --seed to try another board without touching the saved one.

Difficulty options (fade speed):
  easy   - Characters linger twice as long
  normal - Config ladder as is
  hard   - Characters fade twice as fast
  fixed  - Every character waits the first delay of the ladder

Examples:
  sisyphus play
  sisyphus play --difficulty easy
  sisyphus play --seed 42 --ephemeral
  sisyphus play inputlab
  sisyphus play --config ./my-sisyphus.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func runPlay(_ *cobra.Command, args []string) {
	gameID := sisyphus.ID
	if len(args) > 0 {
		gameID = args[0]
	}

	// Check if game exists
	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'sisyphus list' to see available games.")
		os.Exit(1)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		fail("cannot create game: %v", err)
	}

	cfg := loadConfig()
	store, err := openStore(cfg)
	if err != nil {
		fail("cannot open saves database: %v", err)
	}
	gameLog, closeLog := openGameLog()

	player := playerName()
	rec := storage.SessionRecord{
		ID:        uuid.NewString(),
		User:      player,
		Remote:    "local",
		StartedAt: time.Now(),
	}

	runErr := tui.Run(game, runtimeConfig(), tui.Options{
		Saves:         newSaves(store.Local(), cfg, gameLog),
		Player:        player,
		Logger:        gameLog,
		Theme:         theme(),
		ScreenshotDir: screenshotDir(),
		OnExit: func(st core.GameState) {
			rec.Best = max(rec.Best, st.Best)
		},
	})

	rec.EndedAt = time.Now()
	if err := store.SaveSession(rec); err != nil {
		logger.Warn("cannot record session", "error", err)
	}

	// Close store before potential exit
	store.Close()
	closeLog()

	if runErr != nil {
		fail("running game: %v", runErr)
	}
}

// runtimeConfig sizes the game to the terminal.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}
