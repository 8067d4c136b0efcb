package command

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"libraryhub/cmd/librarycli/command/client"
	"libraryhub/cmd/librarycli/command/credentials"

	"github.com/spf13/cobra"
)

// authenticatedClient builds a client from the stored session. The session
// remembers which server it belongs to, so --api is only needed at login.
func authenticatedClient() (*client.HTTPClient, error) {
	s, err := credentials.Load()
	if err != nil {
		return nil, err
	}
	base := s.APIURL
	if base == "" {
		base = apiURL
	}
	c := client.NewHTTPClient(base)
	c.SetToken(s.Token)
	return c, nil
}

// optionalClient is authenticated when a session exists, anonymous otherwise.
func optionalClient() (*client.HTTPClient, error) {
	c, err := authenticatedClient()
	if errors.Is(err, credentials.ErrNotLoggedIn) {
		return client.NewHTTPClient(apiURL), nil
	}
	return c, err
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", what, arg)
	}
	return id, nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to a LibraryHub server",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, err := readPassword("Password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		resp, err := client.NewHTTPClient(apiURL).Login(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if err := credentials.Save(&credentials.Session{
			Token:  resp.Token,
			Email:  resp.User.Email,
			Role:   resp.User.Role,
			APIURL: apiURL,
		}); err != nil {
			return fmt.Errorf("store session: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged in as %s (%s)\n", resp.User.Name, resp.User.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := authenticatedClient()
		if errors.Is(err, credentials.ErrNotLoggedIn) {
			fmt.Fprintln(cmd.OutOrStdout(), "• Not logged in")
			return nil
		}
		if err != nil {
			return err
		}
		var apiErr *client.APIError
		// an expired token is already useless server side
		if err := c.Logout(cmd.Context()); err != nil && !(errors.As(err, &apiErr) && apiErr.StatusCode == 401) {
			return fmt.Errorf("logout failed: %w", err)
		}
		if err := credentials.Delete(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
		return nil
	},
}

var booksCmd = &cobra.Command{
	Use:   "books [search]",
	Short: "Search the catalogue",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var search string
		if len(args) == 1 {
			search = args[0]
		}
		category, _ := cmd.Flags().GetString("category")
		status, _ := cmd.Flags().GetString("status")

		c, err := optionalClient()
		if err != nil {
			return err
		}
		books, err := c.SearchBooks(cmd.Context(), search, category, status)
		if err != nil {
			return err
		}
		if len(books) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "📚 No books found")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tCATEGORY\tSTATUS")
		for _, b := range books {
			category := "-"
			if b.Category != nil {
				category = *b.Category
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, category, b.AvailabilityStatus)
		}
		return w.Flush()
	},
}

var borrowCmd = &cobra.Command{
	Use:   "borrow [book_id]",
	Short: "Borrow a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bookID, err := parseID(args[0], "book id")
		if err != nil {
			return err
		}
		c, err := authenticatedClient()
		if err != nil {
			return err
		}
		resp, err := c.Borrow(cmd.Context(), bookID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s. Record %d, due %s\n",
			resp.Message, resp.RecordID, resp.DueDate.Local().Format("2006-01-02"))
		return nil
	},
}

var returnCmd = &cobra.Command{
	Use:   "return [record_id]",
	Short: "Return a borrowed book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recordID, err := parseID(args[0], "record id")
		if err != nil {
			return err
		}
		c, err := authenticatedClient()
		if err != nil {
			return err
		}
		resp, err := c.Return(cmd.Context(), recordID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s\n", resp.Message)
		if resp.FineAmount > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "   Late fine: %.2f\n", resp.FineAmount)
		}
		return nil
	},
}

var reserveCmd = &cobra.Command{
	Use:   "reserve [book_id]",
	Short: "Reserve a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bookID, err := parseID(args[0], "book id")
		if err != nil {
			return err
		}
		c, err := authenticatedClient()
		if err != nil {
			return err
		}
		resp, err := c.Reserve(cmd.Context(), bookID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s. Reservation %d\n", resp.Message, resp.ReservationID)
		return nil
	},
}

var loansCmd = &cobra.Command{
	Use:   "loans",
	Short: "List your borrowed books",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := authenticatedClient()
		if err != nil {
			return err
		}
		items, err := c.BorrowedBooks(cmd.Context())
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "📚 No active loans")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RECORD\tTITLE\tAUTHOR\tDUE")
		for _, it := range items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", it.ID, it.Title, it.Author, it.DueDate.Local().Format("2006-01-02"))
		}
		return w.Flush()
	},
}

func init() {
	loginCmd.Flags().String("email", "", "login email")
	loginCmd.MarkFlagRequired("email")

	booksCmd.Flags().String("category", "", "exact category")
	booksCmd.Flags().String("status", "", "available, borrowed or reserved")
}
