package command

import (
	"errors"
	"fmt"

	"libraryhub/database"
	"libraryhub/internal/http-api/service"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample catalogue and the default admin account",
	Long: `seed migrates the schema, inserts the sample books that are not present yet
(matched by ISBN) and creates the default admin account if its email is free.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if err := database.Migrate(ctx, store.Gorm, logger); err != nil {
			return err
		}

		added, err := database.SeedBooks(ctx, store.Gorm)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Added %d of %d sample books\n", added, len(database.SampleBooks()))

		authService, err := newAuthService()
		if err != nil {
			return err
		}
		_, err = authService.CreateAdmin(ctx, database.DefaultAdminName, database.DefaultAdminEmail, database.DefaultAdminPassword)
		switch {
		case errors.Is(err, service.ErrEmailInUse):
			fmt.Fprintf(out, "• Admin %s already exists\n", database.DefaultAdminEmail)
		case err != nil:
			return fmt.Errorf("create default admin: %w", err)
		default:
			fmt.Fprintf(out, "✓ Created admin %s (password %s), change it after first login\n",
				database.DefaultAdminEmail, database.DefaultAdminPassword)
		}
		return nil
	},
}
