package commands

import (
	"context"

	"clipkeep/internal/application"
	"clipkeep/internal/domain"
	"clipkeep/internal/ports"
)

// ListCommand lists history items, newest first
type ListCommand struct {
	svc       ports.HistoryService
	Kind      string
	SourceApp string
	Limit     int
}

// NewListCommand creates a new ListCommand
func NewListCommand(svc ports.HistoryService, kind, sourceApp string, limit int) *ListCommand {
	return &ListCommand{
		svc:       svc,
		Kind:      kind,
		SourceApp: sourceApp,
		Limit:     limit,
	}
}

// Execute runs the list command
func (c *ListCommand) Execute(ctx context.Context) ([]domain.ClipboardItem, error) {
	kind, err := application.ValidateKind("kind", c.Kind)
	if err != nil {
		return nil, err
	}
	if err := application.ValidateLimit("limit", c.Limit); err != nil {
		return nil, err
	}

	items := c.svc.Filter(kind, c.SourceApp)
	if c.Limit > 0 && len(items) > c.Limit {
		items = items[:c.Limit]
	}
	return items, nil
}

// GetCommand fetches one item by ID
type GetCommand struct {
	svc ports.HistoryService
	ID  string
}

// NewGetCommand creates a new GetCommand
func NewGetCommand(svc ports.HistoryService, id string) *GetCommand {
	return &GetCommand{svc: svc, ID: id}
}

// Execute runs the get command
func (c *GetCommand) Execute(ctx context.Context) (domain.ClipboardItem, error) {
	if err := application.ValidateItemID("itemID", c.ID); err != nil {
		return domain.ClipboardItem{}, err
	}
	return c.svc.Item(c.ID)
}

// CopyCommand writes a history item back to the clipboard
type CopyCommand struct {
	svc ports.HistoryService
	ID  string
}

// NewCopyCommand creates a new CopyCommand
func NewCopyCommand(svc ports.HistoryService, id string) *CopyCommand {
	return &CopyCommand{svc: svc, ID: id}
}

// Execute runs the copy command and returns the copied item
func (c *CopyCommand) Execute(ctx context.Context) (domain.ClipboardItem, error) {
	item, err := NewGetCommand(c.svc, c.ID).Execute(ctx)
	if err != nil {
		return domain.ClipboardItem{}, err
	}
	if err := c.svc.CopyToClipboard(ctx, item); err != nil {
		return domain.ClipboardItem{}, err
	}
	return item, nil
}
