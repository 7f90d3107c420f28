package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Show recent play sessions",
	Long: `List recent local and SSH sessions, newest first.

Examples:
  sisyphus sessions
  sisyphus sessions -n 5`,
	Args: cobra.NoArgs,
	Run:  runSessions,
}

var flagListLimit int

func init() {
	sessionsCmd.Flags().IntVarP(&flagListLimit, "limit", "n", 20, "Number of sessions to show")
}

func runSessions(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	store, err := openStore(cfg)
	if err != nil {
		fail("cannot open saves database: %v", err)
	}
	defer store.Close()

	sessions, err := store.RecentSessions(flagListLimit)
	if err != nil {
		fail("cannot list sessions: %v", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions recorded.")
		return
	}

	fmt.Printf("  %-16s  %-16s  %-21s  %5s  %s\n", "Started", "User", "Remote", "Best", "Duration")
	fmt.Printf("  %-16s  %-16s  %-21s  %5s  %s\n", "-------", "----", "------", "----", "--------")
	for _, s := range sessions {
		fmt.Printf("  %-16s  %-16s  %-21s  %5d  %s\n",
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.User,
			s.Remote,
			s.Best,
			s.Duration().Round(time.Second),
		)
	}
}
