package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"clipkeep/internal/domain"
	"clipkeep/internal/ports"
)

// ExportJSON writes items as an indented JSON array. Dates are RFC 3339.
func ExportJSON(w io.Writer, items []domain.ClipboardItem) error {
	if items == nil {
		items = []domain.ClipboardItem{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// ImportJSON decodes a JSON array of items written by ExportJSON
func ImportJSON(r io.Reader) ([]domain.ClipboardItem, error) {
	var items []domain.ClipboardItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode import: %w", err)
	}
	return items, nil
}

// ExportCommand writes the whole history to a writer
type ExportCommand struct {
	svc ports.HistoryService
}

// NewExportCommand creates a new ExportCommand
func NewExportCommand(svc ports.HistoryService) *ExportCommand {
	return &ExportCommand{svc: svc}
}

// Execute runs the export command and returns how many items were written
func (c *ExportCommand) Execute(ctx context.Context, w io.Writer) (int, error) {
	items := c.svc.ExportItems()
	if err := ExportJSON(w, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// ImportCommand merges items from a reader into the history
type ImportCommand struct {
	svc ports.HistoryService
}

// NewImportCommand creates a new ImportCommand
func NewImportCommand(svc ports.HistoryService) *ImportCommand {
	return &ImportCommand{svc: svc}
}

// Execute runs the import command
func (c *ImportCommand) Execute(ctx context.Context, r io.Reader) (domain.ImportResult, error) {
	items, err := ImportJSON(r)
	if err != nil {
		return domain.ImportResult{}, err
	}
	return c.svc.ImportItems(ctx, items)
}
