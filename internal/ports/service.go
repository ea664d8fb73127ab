package ports

import (
	"context"

	"clipkeep/internal/domain"
)

// HistoryService is the engine surface used by commands and driving adapters
// (CLI, MCP, TUI)
type HistoryService interface {
	// Queries
	History() []domain.ClipboardItem
	Item(id string) (domain.ClipboardItem, error)
	Search(ctx context.Context, query string, kind domain.Kind, limit int) ([]domain.ClipboardItem, error)
	Filter(kind domain.Kind, sourceApp string) []domain.ClipboardItem
	Pending() []domain.PendingItem

	// Mutations
	CopyToClipboard(ctx context.Context, item domain.ClipboardItem) error
	DeleteItem(ctx context.Context, id string) error
	ClearAll(ctx context.Context) error
	ImportItems(ctx context.Context, items []domain.ClipboardItem) (domain.ImportResult, error)
	ExportItems() []domain.ClipboardItem
	Resolve(ctx context.Context, pendingID string, accept bool) (domain.IngestResult, error)

	// Monitoring
	StartMonitoring(ctx context.Context) error
	StopMonitoring()
	IsMonitoring() bool
}
