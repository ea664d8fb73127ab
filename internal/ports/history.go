package ports

import (
	"context"

	"clipkeep/internal/domain"
)

// HistoryStore persists clipboard items durably
type HistoryStore interface {
	Append(ctx context.Context, item domain.ClipboardItem) error
	LoadAll(ctx context.Context) ([]domain.ClipboardItem, error)
	// Delete removes the item with the given id, reporting whether it existed
	Delete(ctx context.Context, id string) (bool, error)
	// RewriteAll merges items into the stored set by id and rewrites every chunk
	RewriteAll(ctx context.Context, items []domain.ClipboardItem) error
	// Replace discards the stored set and writes exactly items
	Replace(ctx context.Context, items []domain.ClipboardItem) error
	Clear(ctx context.Context) error
}

// FileStore keeps private copies of file and image payloads
type FileStore interface {
	StoreFile(sourcePath string) (string, error)
	StoreImageBytes(data []byte) (string, error)
	DeleteFile(path string) error
	// Hash returns the hex sha256 of a stored file
	Hash(path string) (string, error)
	// Orphans lists stored files not present in referenced
	Orphans(referenced map[string]bool) ([]string, error)
}

// Migrator imports a legacy history format once
type Migrator interface {
	// Migrate reports attempted=false when there is no legacy data
	Migrate(ctx context.Context, legacyPath string) (stats domain.MigrationStats, attempted bool, err error)
}
