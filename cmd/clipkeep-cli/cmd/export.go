package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"clipkeep/internal/application/commands"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history as JSON",
	Long: `Write every item, newest first, as a JSON array.

File and image items refer to their stored copies by path; the files
themselves are not included.

Examples:
  clipkeep-cli export > backup.json
  clipkeep-cli export -o backup.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var w io.Writer = cmd.OutOrStdout()
		if exportOutput != "" && exportOutput != "-" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer f.Close()
			w = f
		}

		n, err := commands.NewExportCommand(GetService()).Execute(context.Background(), w)
		if err != nil {
			return err
		}
		if w != cmd.OutOrStdout() {
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d items to %s\n", n, exportOutput)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to this file instead of stdout")
}
