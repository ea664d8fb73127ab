package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"clipkeep/internal/application/commands"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the whole history",
	Long: `Delete every item and every stored file.

This operation cannot be undone, so it requires --yes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			return errors.New("refusing to clear the history without --yes")
		}

		removed, err := commands.NewClearCommand(GetService()).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d items\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "confirm deleting everything")
}
