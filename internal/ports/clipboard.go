package ports

import (
	"context"

	"clipkeep/internal/domain"
)

// Clipboard is the system clipboard as seen by the change detector
type Clipboard interface {
	// ChangeCount returns the clipboard generation; it changes whenever the contents are replaced
	ChangeCount(ctx context.Context) (int64, error)

	// Snapshot reads every representation currently on the clipboard.
	// It may fail transiently right after a change.
	Snapshot(ctx context.Context) (domain.Snapshot, error)

	// Write replaces the clipboard contents with the item's payload
	Write(ctx context.Context, item domain.ClipboardItem) error

	// FrontmostApp identifies the application that currently owns focus, empty if unknown
	FrontmostApp(ctx context.Context) string
}
