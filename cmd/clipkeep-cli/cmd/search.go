package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"clipkeep/internal/adapters/tui/views"
	"clipkeep/internal/application/commands"
)

var (
	searchKind  string
	searchLimit int
	searchFuzzy bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the history",
	Long: `Search captured items by text, source application or file name.

Results are ranked by relevance. With --fuzzy every item is ranked,
so "gdv" finds "go.dev".

Examples:
  clipkeep-cli search invoice
  clipkeep-cli search --kind url github
  clipkeep-cli search --fuzzy gdv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]
		ctx := context.Background()

		searchCmd := commands.NewSearchCommand(GetService(), query)
		searchCmd.Kind = searchKind
		searchCmd.Limit = searchLimit
		searchCmd.Fuzzy = searchFuzzy
		results, err := searchCmd.Execute(ctx)
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No results found")
			return nil
		}

		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s %s\n", r.Item.Kind(), r.Item.ID, views.ItemTitle(r.Item, previewWidth))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchKind, "kind", "k", "", "only items of this kind")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum number of results, 0 for all")
	searchCmd.Flags().BoolVarP(&searchFuzzy, "fuzzy", "f", false, "match characters in order instead of substrings")
}
