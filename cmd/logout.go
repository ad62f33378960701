package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"campus/internal/session"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve session DB path: %w", err)
		}
		sess, err := session.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open session store: %w", err)
		}
		defer sess.Close()

		if err := sess.Logout(); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		fmt.Println("Signed out.")
		return nil
	},
}
