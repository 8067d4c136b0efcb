package command

// root.go defines the librarycli root command. Operator commands (migrate,
// seed, create-admin) work on the database directly; the remaining commands
// are an API client for library users.

import (
	"fmt"
	"log/slog"
	"os"

	"libraryhub/database"
	"libraryhub/internal/config"
	"libraryhub/internal/logging"

	"github.com/spf13/cobra"
)

var (
	apiURL string // Global flag for API server URL

	cfg    *config.Config
	logger *slog.Logger
	store  *database.Store
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "librarycli",
	Short: "librarycli - LibraryHub command line interface",
	Long: `librarycli works with a LibraryHub deployment.

Operators (needs DATABASE_URL and JWT_SECRET, read from the environment or .env):
- migrate       create or update the schema
- seed          load the sample catalogue and the default admin account
- create-admin  create an additional admin account

Library users (talks to the API server):
- login / logout, books, borrow, return, reserve, loans

Use "librarycli command --help" to see the flags of a command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err) // Print error to standard error
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:3000/api", "API server URL")

	for _, c := range []*cobra.Command{migrateCmd, seedCmd, createAdminCmd} {
		c.PreRunE = openStore
		c.PostRunE = closeStore
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(loginCmd, logoutCmd, booksCmd, borrowCmd, returnCmd, reserveCmd, loansCmd)
}

// openStore loads the server configuration and connects to the database.
func openStore(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger = logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	store, err = database.Connect(cmd.Context(), cfg, logger)
	return err
}

func closeStore(cmd *cobra.Command, args []string) error {
	return store.Close()
}
