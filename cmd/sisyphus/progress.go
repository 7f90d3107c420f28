package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/sisyphus/internal/games/sisyphus"
	"github.com/vovakirdan/sisyphus/internal/platform/tui"
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the best runs",
	Long: `Display the longest runs, by characters typed, of the local player.

Examples:
  sisyphus scores
  sisyphus scores --db ./saves.db`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "Show unlocked achievements",
	Args:  cobra.NoArgs,
	Run:   runAchievements,
}

var flagSessionLimit int

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Browse scores, achievements and sessions",
	Long: `Open a tabbed table of the local player's progress.

Controls:
  Tab/Right/l       - Next tab
  Shift+Tab/Left/h  - Previous tab
  q/Esc             - Close`,
	Args: cobra.NoArgs,
	Run:  runProgress,
}

func init() {
	progressCmd.Flags().IntVar(&flagSessionLimit, "sessions", 50, "Number of recent sessions to show")
}

// achievementTitles are the display names of known achievements.
var achievementTitles = map[string]string{
	sisyphus.AchievementHappy: "One must imagine Sisyphus happy",
}

// readProgress loads the local player's progress and closes the store.
func readProgress(withSessions bool) tui.ProgressData {
	cfg := loadConfig()
	store, err := openStore(cfg)
	if err != nil {
		fail("cannot open saves database: %v", err)
	}
	defer store.Close()

	data := progressLoader(cfg)(newSaves(store.Local(), cfg, log.New(io.Discard)), playerName())
	if withSessions {
		sessions, err := store.RecentSessions(flagSessionLimit)
		if err != nil {
			logger.Warn("cannot list sessions", "error", err)
		}
		data.Sessions = sessions
	}
	return data
}

func runScores(_ *cobra.Command, _ []string) {
	data := readProgress(false)

	fmt.Println("Best Runs - Sisyphus")
	fmt.Println()

	if len(data.Scores) == 0 {
		fmt.Println("No runs yet. Be the first to play!")
		return
	}

	fmt.Printf("  %-4s  %-20s  %s\n", "Rank", "Player", "Typed")
	fmt.Printf("  %-4s  %-20s  %s\n", "----", "------", "-----")
	for i, e := range data.Scores {
		name := e.Name
		if len(name) > 20 {
			name = name[:17] + "..."
		}
		fmt.Printf("  %-4d  %-20s  %d\n", i+1, name, e.Score)
	}
}

func runAchievements(_ *cobra.Command, _ []string) {
	data := readProgress(false)

	if len(data.Achievements) == 0 {
		fmt.Println("No achievements unlocked.")
		return
	}
	for _, id := range data.Achievements {
		if title, ok := achievementTitles[id]; ok {
			fmt.Printf("  ★ %s (%s)\n", title, id)
			continue
		}
		fmt.Printf("  ★ %s\n", id)
	}
}

func runProgress(_ *cobra.Command, _ []string) {
	data := readProgress(true)

	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	if _, err := tui.RunScoreboard(data, width, height); err != nil {
		fail("%v", err)
	}
}
