package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"clipkeep/internal/application/commands"
	"clipkeep/internal/ports"
)

// RegisterWriteTools adds all history-mutating tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, svc ports.HistoryService) {
	s.AddTool(copyTool(), copyHandler(svc))
	s.AddTool(deleteTool(), deleteHandler(svc))
	s.AddTool(clearTool(), clearHandler(svc))
	s.AddTool(resolveTool(), resolveHandler(svc))
	s.AddTool(monitoringTool(), monitoringHandler(svc))
	s.AddTool(importTool(), importHandler(svc))
}

// --- copy_item ---

func copyTool() mcp.Tool {
	return mcp.NewTool("copy_item",
		mcp.WithDescription("Put a history item back on the system clipboard."),
		mcp.WithString("id",
			mcp.Description("Item ID"),
			mcp.Required(),
		),
	)
}

func copyHandler(svc ports.HistoryService) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		item, err := commands.NewCopyCommand(svc, req.GetString("id", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Copied %s to the clipboard", item.ID)), nil
	}
}

// --- delete_item ---

func deleteTool() mcp.Tool {
	return mcp.NewTool("delete_item",
		mcp.WithDescription("Delete one history item and its stored file, if any."),
		mcp.WithString("id",
			mcp.Description("Item ID"),
			mcp.Required(),
		),
	)
}

func deleteHandler(svc ports.HistoryService) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewDeleteCommand(svc, req.GetString("id", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- clear_history ---

func clearTool() mcp.Tool {
	return mcp.NewTool("clear_history",
		mcp.WithDescription("Delete the entire clipboard history and every stored file. Requires confirm=true."),
		mcp.WithBoolean("confirm",
			mcp.Description("Must be true"),
			mcp.Required(),
		),
	)
}

func clearHandler(svc ports.HistoryService) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !req.GetBool("confirm", false) {
			return toolError(fmt.Errorf("refusing to clear history without confirm=true"))
		}
		removed, err := commands.NewClearCommand(svc).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Cleared %d items", removed)), nil
	}
}

// --- resolve_pending ---

func resolveTool() mcp.Tool {
	return mcp.NewTool("resolve_pending",
		mcp.WithDescription("Accept or reject a large capture waiting for confirmation."),
		mcp.WithString("id",
			mcp.Description("Pending ID from list_pending"),
			mcp.Required(),
		),
		mcp.WithBoolean("accept",
			mcp.Description("true stores the item, false discards it"),
			mcp.Required(),
		),
	)
}

func resolveHandler(svc ports.HistoryService) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetString("id", "")
		result, err := commands.NewResolveCommand(svc, id, req.GetBool("accept", false)).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		msg := fmt.Sprintf("%s: %s", id, result.Outcome)
		if result.Item.ID != "" {
			msg += fmt.Sprintf(" as %s", result.Item.ID)
		}
		if result.Reason != "" {
			msg += fmt.Sprintf(" (%s)", result.Reason)
		}
		return mcp.NewToolResultText(msg), nil
	}
}

// --- set_monitoring ---

func monitoringTool() mcp.Tool {
	return mcp.NewTool("set_monitoring",
		mcp.WithDescription("Pause or resume clipboard capture. Omit enabled to report the current state."),
		mcp.WithBoolean("enabled",
			mcp.Description("true resumes capture, false pauses it"),
		),
	)
}

func monitoringHandler(svc ports.HistoryService) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, ok := req.GetArguments()["enabled"]; ok {
			if req.GetBool("enabled", false) {
				if err := svc.StartMonitoring(ctx); err != nil {
					return toolError(err)
				}
			} else {
				svc.StopMonitoring()
			}
		}
		state := "paused"
		if svc.IsMonitoring() {
			state = "active"
		}
		return mcp.NewToolResultText("Monitoring " + state), nil
	}
}

// --- import_items ---

func importTool() mcp.Tool {
	return mcp.NewTool("import_items",
		mcp.WithDescription("Merge items from a JSON array in the export_items format. Known IDs and consecutive duplicates are skipped."),
		mcp.WithString("json",
			mcp.Description("JSON array of items"),
			mcp.Required(),
		),
	)
}

func importHandler(svc ports.HistoryService) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewImportCommand(svc).Execute(ctx, strings.NewReader(req.GetString("json", "")))
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Imported %d items, skipped %d", result.Imported, result.Skipped)), nil
	}
}
