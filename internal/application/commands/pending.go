package commands

import (
	"context"

	"clipkeep/internal/application"
	"clipkeep/internal/domain"
	"clipkeep/internal/ports"
)

// ResolveCommand completes a pending large-content capture
type ResolveCommand struct {
	svc    ports.HistoryService
	ID     string
	Accept bool
}

// NewResolveCommand creates a new ResolveCommand
func NewResolveCommand(svc ports.HistoryService, id string, accept bool) *ResolveCommand {
	return &ResolveCommand{svc: svc, ID: id, Accept: accept}
}

// Execute runs the resolve command
func (c *ResolveCommand) Execute(ctx context.Context) (domain.IngestResult, error) {
	if err := application.ValidateRequired("pendingID", c.ID); err != nil {
		return domain.IngestResult{}, err
	}
	return c.svc.Resolve(ctx, c.ID, c.Accept)
}
