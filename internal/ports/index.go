package ports

import "clipkeep/internal/domain"

// QueryIndex provides cached text and metadata queries over history
type QueryIndex interface {
	// Lifecycle
	Open(path string) error
	Close() error

	// Sync operations
	NeedsFullRebuild(itemCount int) bool
	Rebuild(items []domain.ClipboardItem) error
	Upsert(item domain.ClipboardItem) error
	Delete(id string) error
	Reset() error

	// Queries
	Search(query string, kind domain.Kind, limit int) ([]string, error)
	Count() (int, error)
}
