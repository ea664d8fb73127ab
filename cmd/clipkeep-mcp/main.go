package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "clipkeep/internal/adapters/mcp"
	"clipkeep/internal/app"
	"clipkeep/internal/config"
)

func main() {
	configFlag := flag.String("config", config.Path(), "path to the config file")
	homeFlag := flag.String("home", "", "override the storage directory")
	captureFlag := flag.Bool("capture", true, "capture clipboard changes while serving")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("clipkeep-mcp: %v", err)
	}
	if *homeFlag != "" {
		cfg.SetHome(*homeFlag)
	}
	// stdout carries the protocol
	if cfg.Log.Output == "stdout" {
		cfg.Log.Output = "stderr"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.Open(ctx, cfg, app.Overrides{})
	if err != nil {
		log.Fatalf("clipkeep-mcp: %v", err)
	}
	defer rt.Close()

	if *captureFlag {
		if err := rt.Engine.Start(ctx); err != nil {
			log.Fatalf("clipkeep-mcp: %v", err)
		}
	}

	mcpServer := server.NewMCPServer(
		"clipkeep-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, rt.Engine)
	mcpadapter.RegisterWriteTools(mcpServer, rt.Engine)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Printf("clipkeep-mcp: %v", err)
	}
}
