package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"clipkeep/internal/app"
	"clipkeep/internal/config"
	"clipkeep/internal/ports"
)

var (
	configPath string
	homeDir    string
	verbose    bool
	rt         *app.Runtime
)

var rootCmd = &cobra.Command{
	Use:   "clipkeep-cli",
	Short: "CLI for your clipboard history",
	Long: `clipkeep-cli captures clipboard changes into a persistent history
and lets you list, search, copy back, delete, export and import items.

Run "clipkeep-cli watch" to keep capturing in the foreground.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if homeDir != "" {
			cfg.SetHome(homeDir)
		}
		if !verbose && cfg.Log.Level == "info" {
			cfg.Log.Level = "warn"
		}

		rt, err = app.Open(cmd.Context(), cfg, app.Overrides{})
		return err
	},
}

// Execute runs the root command and releases the engine afterwards
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	if rt != nil {
		if cerr := rt.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.Path(), "path to the config file")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "override the storage directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log informational messages")
}

// GetService returns the loaded history engine
func GetService() ports.HistoryService {
	return rt.Engine
}
