package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"clipkeep/internal/application/commands"
	"clipkeep/internal/domain"
	"clipkeep/internal/ports"
)

const previewLen = 80

// RegisterReadTools adds all read-only history tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, svc ports.HistoryService) {
	s.AddTool(listTool(), listHandler(svc))
	s.AddTool(searchTool(), searchHandler(svc))
	s.AddTool(getTool(), getHandler(svc))
	s.AddTool(pendingTool(), pendingHandler(svc))
	s.AddTool(exportTool(), exportHandler(svc))
}

// --- list_history ---

func listTool() mcp.Tool {
	return mcp.NewTool("list_history",
		mcp.WithDescription("List clipboard history, newest first. Each line is: id, kind, date, preview."),
		mcp.WithString("kind",
			mcp.Description("Only items of this kind"),
			mcp.Enum(kindNames()...),
		),
		mcp.WithString("source_app",
			mcp.Description("Only items copied from this application path"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of items (default 20, 0 for all)"),
		),
	)
}

func listHandler(svc ports.HistoryService) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewListCommand(svc,
			req.GetString("kind", ""),
			req.GetString("source_app", ""),
			req.GetInt("limit", 20),
		)
		items, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(items, formatItem)
	}
}

// --- search_history ---

func searchTool() mcp.Tool {
	return mcp.NewTool("search_history",
		mcp.WithDescription("Search clipboard history by text or source application. Results are ranked by relevance."),
		mcp.WithString("query",
			mcp.Description("Search query"),
			mcp.Required(),
		),
		mcp.WithString("kind",
			mcp.Description("Only items of this kind"),
			mcp.Enum(kindNames()...),
		),
		mcp.WithBoolean("fuzzy",
			mcp.Description("Match characters in order instead of a substring"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default 20)"),
		),
	)
}

func searchHandler(svc ports.HistoryService) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewSearchCommand(svc, req.GetString("query", ""))
		cmd.Kind = req.GetString("kind", "")
		cmd.Fuzzy = req.GetBool("fuzzy", false)
		cmd.Limit = req.GetInt("limit", 20)

		results, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if len(results) == 0 {
			return mcp.NewToolResultText("No results found."), nil
		}

		var sb strings.Builder
		for _, r := range results {
			fmt.Fprintf(&sb, "%s  (score %d)\n", formatItem(r.Item), r.Score)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- get_item ---

func getTool() mcp.Tool {
	return mcp.NewTool("get_item",
		mcp.WithDescription("Get the full content and metadata of one history item."),
		mcp.WithString("id",
			mcp.Description("Item ID"),
			mcp.Required(),
		),
	)
}

func getHandler(svc ports.HistoryService) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		item, err := commands.NewGetCommand(svc, req.GetString("id", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(formatDetail(item)), nil
	}
}

// --- list_pending ---

func pendingTool() mcp.Tool {
	return mcp.NewTool("list_pending",
		mcp.WithDescription("List large clipboard captures waiting for confirmation."),
	)
}

func pendingHandler(svc ports.HistoryService) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return formatEntities(svc.Pending(), formatPending)
	}
}

// --- export_items ---

func exportTool() mcp.Tool {
	return mcp.NewTool("export_items",
		mcp.WithDescription("Export the whole history as a JSON array."),
	)
}

func exportHandler(svc ports.HistoryService) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var sb strings.Builder
		if _, err := commands.NewExportCommand(svc).Execute(ctx, &sb); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatItem(i domain.ClipboardItem) string {
	return fmt.Sprintf("%s  %-8s  %s  %s", i.ID, i.Kind(), i.Date.Format(time.RFC3339), Preview(i))
}

func formatPending(p domain.PendingItem) string {
	return fmt.Sprintf("%s  %-8s  %d bytes  %s", p.ID, p.Kind, p.Size, p.Text)
}

func formatDetail(i domain.ClipboardItem) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "id: %s\nkind: %s\ndate: %s\n", i.ID, i.Kind(), i.Date.Format(time.RFC3339))
	if i.SourceAppPath != "" {
		fmt.Fprintf(&sb, "source: %s\n", i.SourceAppPath)
	}
	if i.IsFile() {
		fmt.Fprintf(&sb, "file: %s\nsize: %d\n", i.FilePath, i.FileSize)
		if i.FileHash != "" {
			fmt.Fprintf(&sb, "sha256: %s\n", i.FileHash)
		}
	}
	fmt.Fprintf(&sb, "\n%s\n", i.Text)
	return sb.String()
}

// Preview returns the first line of an item's text, shortened for listings
func Preview(i domain.ClipboardItem) string {
	text := strings.TrimSpace(i.Text)
	if line, _, found := strings.Cut(text, "\n"); found {
		text = line + " …"
	}
	if r := []rune(text); len(r) > previewLen {
		text = string(r[:previewLen-1]) + "…"
	}
	return text
}

func kindNames() []string {
	return []string{
		string(domain.KindPlainText),
		string(domain.KindRichText),
		string(domain.KindURL),
		string(domain.KindImage),
		string(domain.KindFile),
	}
}
