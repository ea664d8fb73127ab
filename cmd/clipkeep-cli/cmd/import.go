package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"clipkeep/internal/application/commands"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge items from a JSON export",
	Long: `Merge items from a file written by "export". Use - to read stdin.

Items whose ID is already in the history are skipped, as are file items
over the size limit and items equal to the one before them.

Examples:
  clipkeep-cli import backup.json
  cat backup.json | clipkeep-cli import -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer f.Close()
			r = f
		}

		result, err := commands.NewImportCommand(GetService()).Execute(context.Background(), r)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d items, skipped %d\n", result.Imported, result.Skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
