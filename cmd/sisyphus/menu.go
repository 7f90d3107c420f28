package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/sisyphus/internal/platform/tui"
	"github.com/vovakirdan/sisyphus/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick a game interactively",
	Long: `Open the game picker. This is the same flow SSH players get.

Menu controls:
  Up/Down, j/k - Move
  Enter        - Play the selected game
  Tab          - View progress
  q/Esc        - Quit`,
	Run: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	store, err := openStore(cfg)
	if err != nil {
		fail("cannot open saves database: %v", err)
	}
	gameLog, closeLog := openGameLog()

	rec := storage.SessionRecord{
		ID:        uuid.NewString(),
		User:      playerName(),
		Remote:    "local",
		StartedAt: time.Now(),
	}
	runErr := tui.RunSession(tui.SessionConfig{
		Backend:   store.Local(),
		Separator: cfg.Storage.Separator,
		Sessions:  store,
		Progress:  progressLoader(cfg),
		Player:    rec.User,
		Record:    &rec,
		Logger:    gameLog,
	}, runtimeConfig())

	rec.EndedAt = time.Now()
	if err := store.SaveSession(rec); err != nil {
		logger.Warn("cannot record session", "error", err)
	}
	store.Close()
	closeLog()

	if runErr != nil {
		fail("running menu: %v", runErr)
	}
}
