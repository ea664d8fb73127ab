package filesystem

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipkeep/internal/domain"
	"clipkeep/internal/logging"
)

func TestMigrate_MergesLegacyHistory(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewChunkStore(filepath.Join(dir, "history"), 10, logging.Discard())
	files := NewFileStore(filepath.Join(dir, "files"), DuplicateBySize)

	for _, item := range makeItems(3, time.Unix(5000, 0)) {
		item.ID = "current-" + item.ID
		require.NoError(t, store.Append(ctx, item))
	}

	blob := writeSource(t, dir, "blob.bin", "legacy file")
	legacy := makeItems(5, time.Unix(1000, 0))
	legacy[2].FilePath = blob
	legacy[2].FileSize = 11
	legacyPath := filepath.Join(dir, "history.json")
	data, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(legacyPath, data, 0644))

	stats, attempted, err := NewMigrator(store, files, logging.Discard()).Migrate(ctx, legacyPath)
	require.NoError(t, err)
	assert.True(t, attempted)
	assert.Equal(t, domain.MigrationStats{Legacy: 5, Existing: 3, Merged: 8, Hashed: 1}, stats)

	loaded, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 8)
	for _, item := range loaded {
		if item.ID == legacy[2].ID {
			assert.NotEmpty(t, item.FileHash)
		}
	}

	assert.NoFileExists(t, legacyPath)
	assert.FileExists(t, legacyPath+MigratedSuffix)
}

func TestMigrate_NoLegacyFile(t *testing.T) {
	dir := t.TempDir()
	store := NewChunkStore(dir, 10, logging.Discard())

	_, attempted, err := NewMigrator(store, NewFileStore(dir, DuplicateBySize), logging.Discard()).
		Migrate(context.Background(), filepath.Join(dir, "missing.json"))

	require.NoError(t, err)
	assert.False(t, attempted)
}

func TestMigrate_UndecodableFileIsRetired(t *testing.T) {
	dir := t.TempDir()
	store := NewChunkStore(filepath.Join(dir, "history"), 10, logging.Discard())
	legacyPath := filepath.Join(dir, "history.json")
	require.NoError(t, os.WriteFile(legacyPath, []byte("[{broken"), 0644))

	_, attempted, err := NewMigrator(store, NewFileStore(dir, DuplicateBySize), logging.Discard()).
		Migrate(context.Background(), legacyPath)

	require.Error(t, err)
	assert.True(t, attempted)
	assert.FileExists(t, legacyPath+FailedSuffix)

	loaded, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
