package cmd

import (
	"github.com/spf13/cobra"

	"campus/internal/session"
)

var rootCmd = &cobra.Command{
	Use:   "campus",
	Short: "Terminal client for the Campus e-learning platform",
	Long:  "Campus — browse the course catalog, enroll, and work through lessons from your terminal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to the session database file (overrides CAMPUS_DB env var)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(updateCmd)
}

// resolveDBPath returns the session database path using --db flag
// (highest priority), then CAMPUS_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, session.EnsureDir(p)
	}
	return session.DefaultPath()
}
