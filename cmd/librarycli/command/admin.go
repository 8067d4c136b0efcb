package command

import (
	"errors"
	"fmt"
	"strings"
	"syscall"

	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/http-api/service"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	Long:  `Create an admin account. The password is read from the terminal without echo.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")

		password, err := readPassword("Password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		confirm, err := readPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		if password != confirm {
			return errors.New("passwords do not match")
		}

		authService, err := newAuthService()
		if err != nil {
			return err
		}
		user, err := authService.CreateAdmin(cmd.Context(), name, email, password)
		if err != nil {
			return fmt.Errorf("create admin: %s", service.PublicMessage(err))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Admin created. UserID: %d\n", user.ID)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().String("name", "", "display name")
	createAdminCmd.Flags().String("email", "", "login email")
	createAdminCmd.MarkFlagRequired("name")
	createAdminCmd.MarkFlagRequired("email")
}

// readPassword reads a line from the terminal with echo disabled.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// newAuthService builds the account service without a revocation list;
// the CLI never issues or revokes tokens.
func newAuthService() (service.AuthService, error) {
	users := repository.NewUserRepository(store.Gorm)
	return service.NewAuthService(users, nil, service.AuthConfigFrom(cfg), logger)
}
