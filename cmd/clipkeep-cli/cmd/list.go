package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"clipkeep/internal/application/commands"
)

var (
	listKind  string
	listApp   string
	listLimit int
	listJSON  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List history items, newest first",
	Long: `List captured clipboard items, newest first.

Examples:
  clipkeep-cli list
  clipkeep-cli list --kind url --limit 5
  clipkeep-cli list --app /usr/bin/firefox
  clipkeep-cli list --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		listCmd := commands.NewListCommand(GetService(), listKind, listApp, listLimit)
		items, err := listCmd.Execute(ctx)
		if err != nil {
			return err
		}

		if listJSON {
			return commands.ExportJSON(cmd.OutOrStdout(), items)
		}
		printItems(cmd.OutOrStdout(), items)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listKind, "kind", "k", "", "only items of this kind (text, richText, url, image, file)")
	listCmd.Flags().StringVar(&listApp, "app", "", "only items captured from this application")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "maximum number of items, 0 for all")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print items as JSON")
}
