package command

import (
	"fmt"
	"os"
	"text/tabwriter"

	"nalanda/cmd/cli/command/client"
	"nalanda/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Browse the catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		var q dto.ListBooksQuery
		q.Genre, _ = cmd.Flags().GetString("genre")
		q.Author, _ = cmd.Flags().GetString("author")
		q.Page, _ = cmd.Flags().GetInt("page")
		q.Limit, _ = cmd.Flags().GetInt("limit")

		page, err := client.NewHTTPClient(apiURL).ListBooks(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tGENRE\tAVAILABLE")
		for _, b := range page.Books {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\n", b.ID, b.Title, b.Author, b.Genre, b.AvailableCopies, b.Copies)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("page %d of %d (%d books)\n", page.CurrentPage, page.TotalPages, page.Total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(booksCmd)
	booksCmd.Flags().String("genre", "", "Exact genre to filter by")
	booksCmd.Flags().String("author", "", "Author substring, case-insensitive")
	booksCmd.Flags().Int("page", 1, "Page number")
	booksCmd.Flags().Int("limit", 10, "Books per page (max 100)")
}
