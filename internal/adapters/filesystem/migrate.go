package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"clipkeep/internal/domain"
	"clipkeep/internal/ports"
)

// Suffixes given to the legacy file once migration has been attempted
const (
	MigratedSuffix = ".migrated"
	FailedSuffix   = ".failed"
)

// Migrator moves a legacy single-file history into the chunk store
type Migrator struct {
	store *ChunkStore
	files ports.FileStore
	log   *logrus.Entry
}

// NewMigrator creates a migrator for store
func NewMigrator(store *ChunkStore, files ports.FileStore, log *logrus.Entry) *Migrator {
	return &Migrator{
		store: store,
		files: files,
		log:   log.WithField("component", "migration"),
	}
}

// Migrate imports legacyPath if it exists. attempted is false when there is
// nothing to migrate. The legacy file is renamed, never deleted, whether
// migration succeeds or fails, so it is only attempted once.
func (m *Migrator) Migrate(ctx context.Context, legacyPath string) (stats domain.MigrationStats, attempted bool, err error) {
	legacyPath = expandHome(legacyPath)
	data, err := os.ReadFile(legacyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, false, nil
		}
		return stats, true, fmt.Errorf("failed to read legacy history: %w", err)
	}

	var legacy []domain.ClipboardItem
	if err := json.Unmarshal(data, &legacy); err != nil {
		m.retire(legacyPath, FailedSuffix)
		return stats, true, fmt.Errorf("failed to decode legacy history: %w", err)
	}
	stats.Legacy = len(legacy)

	for n := range legacy {
		if legacy[n].ID == "" {
			legacy[n].ID = uuid.NewString()
		}
		if legacy[n].IsFile() && legacy[n].FileHash == "" {
			if hash, err := m.files.Hash(legacy[n].FilePath); err == nil {
				legacy[n].FileHash = hash
				stats.Hashed++
			}
		}
	}

	existing, err := m.store.LoadAll(ctx)
	if err != nil {
		return stats, true, fmt.Errorf("failed to load current history: %w", err)
	}
	stats.Existing = len(existing)

	if err := m.store.RewriteAll(ctx, legacy); err != nil {
		return stats, true, fmt.Errorf("failed to write migrated history: %w", err)
	}
	stats.Merged = len(MergeByID(existing, legacy))

	if err := m.retire(legacyPath, MigratedSuffix); err != nil {
		return stats, true, err
	}

	m.log.WithFields(logrus.Fields{
		"legacy":   stats.Legacy,
		"existing": stats.Existing,
		"merged":   stats.Merged,
		"hashed":   stats.Hashed,
	}).Info("legacy history migrated")
	return stats, true, nil
}

func (m *Migrator) retire(path, suffix string) error {
	if err := os.Rename(path, path+suffix); err != nil {
		m.log.WithError(err).Warn("failed to rename legacy history")
		return fmt.Errorf("failed to rename legacy history: %w", err)
	}
	return nil
}
