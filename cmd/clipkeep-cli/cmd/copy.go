package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"clipkeep/internal/application/commands"
)

var copyCmd = &cobra.Command{
	Use:   "copy <id>",
	Short: "Put an item back on the clipboard",
	Long: `Write a history item back to the system clipboard.

Text items are copied as text. File and image items are copied as a
file:// URL pointing at the stored copy.

Example:
  clipkeep-cli copy 6f1c2b9e-3d7a-4f0e-9a51-2c8d7e4b1a00`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		item, err := commands.NewCopyCommand(GetService(), args[0]).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Copied %s\n", item.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(copyCmd)
}
