package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"clipkeep/internal/adapters/editor"
	"clipkeep/internal/adapters/tui"
	"clipkeep/internal/app"
	"clipkeep/internal/config"
)

func main() {
	configFlag := flag.String("config", config.Path(), "path to the config file")
	homeFlag := flag.String("home", "", "override the storage directory")
	flag.Parse()

	if err := run(*configFlag, *homeFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, home string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if home != "" {
		cfg.SetHome(home)
	}
	// the terminal belongs to the UI
	if cfg.Log.Output != "file" {
		cfg.Log.Output = "file"
		cfg.Log.Path = filepath.Join(cfg.Storage.Path, "logs")
	}
	if cfg.History.ConfirmPolicy == "ask" {
		cfg.History.ConfirmPolicy = "defer"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := app.Open(ctx, cfg, app.Overrides{})
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.Engine.Start(ctx); err != nil {
		return err
	}

	// Create and run TUI app
	p := tea.NewProgram(tui.NewApp(rt.Engine, editor.NewOpener()), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
