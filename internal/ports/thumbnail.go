package ports

import (
	"context"
	"image"

	"clipkeep/internal/domain"
)

// ThumbnailGenerator renders previews for file-backed items off the critical path
type ThumbnailGenerator interface {
	// Generate renders asynchronously and calls done on success only
	Generate(ctx context.Context, item domain.ClipboardItem, done func(id string, thumb image.Image))
	// GenerateAll renders previews for many items with bounded concurrency
	GenerateAll(ctx context.Context, items []domain.ClipboardItem, done func(id string, thumb image.Image))
}
