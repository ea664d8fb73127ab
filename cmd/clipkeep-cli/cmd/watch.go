package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"clipkeep/internal/adapters/notify"
	"clipkeep/internal/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Capture clipboard changes until interrupted",
	Long: `Poll the clipboard and record every change until Ctrl+C.

Scheduled maintenance (pending expiry, orphan sweep, compaction) runs
while watching. Set history.confirmPolicy to "ask" to answer
large-content prompts in this terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		rt.Notifier.Subscribe(func(event domain.Event) {
			fmt.Fprintln(out, notify.Message(event))
		})

		if err := rt.Engine.Start(ctx); err != nil {
			return err
		}
		fmt.Fprintf(out, "Watching clipboard, %d items in history (Ctrl+C to stop)\n", len(rt.Engine.History()))

		<-ctx.Done()
		fmt.Fprintln(out, "Stopping")
		return nil
	},
}

var maintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Run maintenance once",
	Long: `Expire stale pending items, delete stored files no item refers to
and compact history chunks left sparse by deletions.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.Engine.Maintain(context.Background()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Maintenance complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(maintainCmd)
}
