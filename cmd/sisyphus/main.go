// sisyphus is a typing game you cannot keep winning, played in the terminal.
//
// Usage:
//
//	sisyphus play [game]           - Play a game (default: sisyphus)
//	sisyphus menu                  - Pick games and view progress interactively
//	sisyphus list                  - List available games
//	sisyphus scores                - Show the best runs
//	sisyphus achievements          - Show unlocked achievements
//	sisyphus progress              - Browse scores, achievements and sessions
//	sisyphus sessions              - Show recent play sessions
//	sisyphus saves <cmd>           - Inspect and edit raw save data
//	sisyphus serve                 - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>          - Set tick rate (default: 60)
//	--seed <value>        - Play one board without touching the saved seed
//	--db <path>           - Set saves database path (default from config)
//	--config <path>       - Use a custom game config YAML
//	--difficulty <preset> - Fade speed: easy, normal, hard, fixed
//	--ephemeral           - Keep saves in memory only
//	--player <name>       - Name in score tables
//	--no-color            - Disable colors
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/sisyphus/internal/config"
	"github.com/vovakirdan/sisyphus/internal/games/sisyphus"

	// Import games to register them
	_ "github.com/vovakirdan/sisyphus/internal/games/inputlab"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagEphemeral  bool
	flagPlayer     string
	flagVerbose    bool
	flagNoColor    bool
)

// logger reports CLI problems on stderr.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "sisyphus",
})

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sisyphus",
	Short: "Sisyphus - type the board before it slips away",
	Long: `Sisyphus is a terminal typing game. A seeded board of digits must be
typed out key by key; every key on the keyboard stands for one digit.
A wrong key collapses the board, and whatever you typed fades away,
faster and faster, as soon as you stop.

Available commands:
  play          - Play a game directly
  menu          - Interactive game picker
  list          - Show all available games
  scores        - Show the best runs
  achievements  - Show unlocked achievements
  progress      - Browse progress in a table view
  sessions      - Show recent play sessions
  saves         - Inspect and edit raw save data
  serve         - Start SSH server for remote play

Examples:
  sisyphus play
  sisyphus play --difficulty easy
  sisyphus play inputlab
  sisyphus saves get kh sisyphus.scores
  sisyphus serve --ssh :2222`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagVerbose {
			logger.SetLevel(log.DebugLevel)
		}
		sisyphus.SetConfigPath(flagConfig)
		sisyphus.SetDifficultyPreset(flagDifficulty)
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Board seed for this run (0 = saved seed)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to saves database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Fade preset: easy, normal, hard, fixed")
	rootCmd.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "Keep saves in memory only")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "Player name in score tables (default: $USER)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colors")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(achievementsCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(savesCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig loads the game config, warning and falling back to defaults
// if the custom file is unusable.
func loadConfig() config.SisyphusConfig {
	cfg, err := config.LoadSisyphus(flagConfig)
	if err != nil {
		logger.Warn("using default config", "error", err)
	}
	config.ApplyDifficulty(&cfg, config.ParseDifficulty(flagDifficulty))
	return cfg
}

// playerName returns the --player flag, or the OS user.
func playerName() string {
	if flagPlayer != "" {
		return flagPlayer
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "player"
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
