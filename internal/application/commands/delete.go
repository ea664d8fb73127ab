package commands

import (
	"context"
	"fmt"

	"clipkeep/internal/application"
	"clipkeep/internal/ports"
)

// DeleteResult contains the result of a delete operation
type DeleteResult struct {
	DeletedID string
	Message   string
}

// DeleteCommand deletes a history item by ID
type DeleteCommand struct {
	svc ports.HistoryService
	ID  string
}

// NewDeleteCommand creates a new DeleteCommand
func NewDeleteCommand(svc ports.HistoryService, id string) *DeleteCommand {
	return &DeleteCommand{
		svc: svc,
		ID:  id,
	}
}

// Validate checks if the delete operation is valid
func (c *DeleteCommand) Validate() error {
	return application.ValidateItemID("itemID", c.ID)
}

// Execute runs the delete command
func (c *DeleteCommand) Execute(ctx context.Context) (*DeleteResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := c.svc.DeleteItem(ctx, c.ID); err != nil {
		return nil, fmt.Errorf("failed to delete %s: %w", c.ID, err)
	}

	return &DeleteResult{
		DeletedID: c.ID,
		Message:   fmt.Sprintf("Deleted %s", c.ID),
	}, nil
}

// ClearCommand deletes the whole history
type ClearCommand struct {
	svc ports.HistoryService
}

// NewClearCommand creates a new ClearCommand
func NewClearCommand(svc ports.HistoryService) *ClearCommand {
	return &ClearCommand{svc: svc}
}

// Execute runs the clear command and returns how many items were removed
func (c *ClearCommand) Execute(ctx context.Context) (int, error) {
	count := len(c.svc.History())
	if err := c.svc.ClearAll(ctx); err != nil {
		return 0, err
	}
	return count, nil
}
