package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/dailyquest/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "dailyquest",
	Short: "Daily fitness quests with streaks, rewards and penalties",
	Long: "dailyquest assigns one workout quest per period from a catalog chosen at onboarding,\n" +
		"pays XP and coins for completions, and drains stats for missed days.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides DAILYQUEST_DB env var)")
	rootCmd.PersistentFlags().String("store", "", "Store backend: sqlite, redis or memory (overrides DAILYQUEST_STORE)")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")

	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(todayCmd, snapshotCmd, completeCmd, failCmd, expireCmd, refreshCmd, allocateCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(serveCmd, watchCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}
