package command

import (
	"fmt"

	"libraryhub/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Migrate(cmd.Context(), store.Gorm, logger); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Schema is up to date")
		return nil
	},
}
