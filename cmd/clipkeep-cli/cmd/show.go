package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"clipkeep/internal/application/commands"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one item in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		item, err := commands.NewGetCommand(GetService(), args[0]).Execute(context.Background())
		if err != nil {
			return err
		}
		printDetail(cmd.OutOrStdout(), item)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
