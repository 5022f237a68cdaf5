package command

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"nalanda/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

// borrow.go covers the member's loan commands. All of them need a token.

var borrowCmd = &cobra.Command{
	Use:   "borrow <book-id>",
	Short: "Borrow one copy of a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := authedClient()
		if err != nil {
			return err
		}
		resp, err := c.Borrow(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("borrow: %w", err)
		}
		fmt.Printf("✓ %s (record %s)\n", resp.Message, resp.Record.ID)
		return nil
	},
}

var returnCmd = &cobra.Command{
	Use:   "return <book-id>",
	Short: "Return a borrowed book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := authedClient()
		if err != nil {
			return err
		}
		resp, err := c.Return(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("return: %w", err)
		}
		fmt.Printf("✓ %s\n", resp.Message)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List your borrowing history, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := authedClient()
		if err != nil {
			return err
		}
		records, err := c.History(cmd.Context())
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "BOOK\tSTATUS\tBORROWED\tRETURNED")
		for _, r := range records {
			title := r.BookID
			if r.Book != nil {
				title = r.Book.Title
			}
			returned := "-"
			if r.ReturnDate != nil {
				returned = r.ReturnDate.Format(time.DateOnly)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", title, r.Status, r.BorrowDate.Format(time.DateOnly), returned)
		}
		return w.Flush()
	},
}

func authedClient() (*client.HTTPClient, error) {
	tok, err := loadToken()
	if err != nil {
		return nil, err
	}
	c := client.NewHTTPClient(apiURL)
	c.SetToken(tok)
	return c, nil
}

func init() {
	rootCmd.AddCommand(borrowCmd, returnCmd, historyCmd)
}
