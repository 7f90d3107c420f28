package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/sisyphus/internal/config"
	"github.com/vovakirdan/sisyphus/internal/games/sisyphus"
	"github.com/vovakirdan/sisyphus/internal/persist"
	"github.com/vovakirdan/sisyphus/internal/platform/tui"
	"github.com/vovakirdan/sisyphus/internal/storage"
)

// dataDir is where logs and screenshots go.
const dataDir = "~/.sisyphus"

// openStore opens the saves database. --ephemeral keeps everything in
// memory for the life of the process.
func openStore(cfg config.SisyphusConfig) (*storage.Store, error) {
	path := flagDBPath
	if path == "" {
		path = cfg.Storage.Path
	}
	if flagEphemeral {
		path = storage.MemoryPath
	}
	return storage.Open(path)
}

// newSaves returns a save manager over backend using the configured key
// separator.
func newSaves(backend persist.Backend, cfg config.SisyphusConfig, l *log.Logger) *persist.Manager {
	opts := []persist.Option{persist.WithLogger(l.WithPrefix("saves"))}
	if cfg.Storage.Separator != "" {
		opts = append(opts, persist.WithSeparator(cfg.Storage.Separator))
	}
	return persist.NewManager(backend, opts...)
}

// progressLoader reads scores and achievements through the game's own
// save layout.
func progressLoader(cfg config.SisyphusConfig) tui.ProgressLoader {
	return func(saves *persist.Manager, player string) tui.ProgressData {
		p := sisyphus.NewProgress(cfg.Scores.Capacity)
		p.Register(saves)
		return tui.ProgressData{
			Player:       player,
			Scores:       p.Scores.Entries(),
			Achievements: p.Achievements.Unlocked(),
		}
	}
}

// openGameLog returns a logger writing to the data directory, so log output
// does not tear the full-screen UI. Without a usable file, game logs are
// dropped.
func openGameLog() (*log.Logger, func()) {
	level := log.InfoLevel
	if flagVerbose {
		level = log.DebugLevel
	}
	var w io.Writer = io.Discard
	closeFn := func() {}

	if dir, err := config.ExpandHome(dataDir); err == nil {
		if err := os.MkdirAll(dir, 0o755); err == nil {
			f, err := os.OpenFile(filepath.Join(dir, "sisyphus.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err == nil {
				w = f
				closeFn = func() { f.Close() }
			}
		}
	}

	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
	}), closeFn
}

// screenshotDir returns where ctrl+s writes screens.
func screenshotDir() string {
	dir, err := config.ExpandHome(filepath.Join(dataDir, "screenshots"))
	if err != nil {
		return ""
	}
	return dir
}

// theme picks the color theme.
func theme() tui.Theme {
	if flagNoColor {
		return tui.MonoTheme()
	}
	return tui.DefaultTheme()
}
