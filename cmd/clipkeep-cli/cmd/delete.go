package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"clipkeep/internal/application/commands"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an item",
	Long: `Delete an item from the history.

The stored copy of a file or image item is removed as well, unless
another item still refers to it. This operation cannot be undone.

Example:
  clipkeep-cli delete 6f1c2b9e-3d7a-4f0e-9a51-2c8d7e4b1a00`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		ctx := context.Background()

		deleteCmd := commands.NewDeleteCommand(GetService(), id)
		result, err := deleteCmd.Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
