package sqlite

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipkeep/internal/domain"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx := NewIndex()
	require.NoError(t, idx.Open(filepath.Join(t.TempDir(), "index.db")))
	t.Cleanup(func() { idx.Close() })
	return idx
}

func sampleItems() []domain.ClipboardItem {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []domain.ClipboardItem{
		{ID: "a", Text: "Hello World", Date: base, SourceAppPath: "/usr/bin/gedit"},
		{ID: "b", Text: "https://example.com/hello", Date: base.Add(time.Minute)},
		{ID: "c", Text: domain.FileText, FilePath: "/store/report.pdf", FileSize: 10, Date: base.Add(2 * time.Minute)},
		{ID: "d", Text: "100% done_now", Date: base.Add(3 * time.Minute)},
	}
}

func TestIndex_RebuildAndCount(t *testing.T) {
	idx := openTestIndex(t)

	assert.True(t, idx.NeedsFullRebuild(0), "fresh index has no schema version")

	require.NoError(t, idx.Rebuild(sampleItems()))
	n, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	assert.False(t, idx.NeedsFullRebuild(4))
	assert.True(t, idx.NeedsFullRebuild(5), "count drift forces a rebuild")
}

func TestIndex_Search(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.Rebuild(sampleItems()))

	ids, err := idx.Search("hello", "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids, "newest first, case insensitive")

	ids, err = idx.Search("hello", domain.KindURL, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)

	ids, err = idx.Search("gedit", "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids, "source application is searchable")

	ids, err = idx.Search("", "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c"}, ids)

	ids, err = idx.Search("", domain.KindFile, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids)
}

func TestIndex_SearchEscapesWildcards(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.Rebuild(sampleItems()))

	ids, err := idx.Search("0%", "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, ids)

	ids, err = idx.Search("e_n", "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, ids)

	ids, err = idx.Search("_", "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, ids)
}

func TestIndex_UpsertDeleteReset(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.Rebuild(sampleItems()))

	require.NoError(t, idx.Upsert(domain.ClipboardItem{ID: "e", Text: "fresh", Date: time.Now()}))
	require.NoError(t, idx.Upsert(domain.ClipboardItem{ID: "a", Text: "renamed", Date: time.Now()}))
	assert.False(t, idx.NeedsFullRebuild(5))

	ids, err := idx.Search("renamed", "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)

	require.NoError(t, idx.Delete("e"))
	require.NoError(t, idx.Delete("missing"))
	assert.False(t, idx.NeedsFullRebuild(4))

	require.NoError(t, idx.Reset())
	n, err := idx.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.False(t, idx.NeedsFullRebuild(0))
}

func TestIndex_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "index.db")
	idx := NewIndex()
	require.NoError(t, idx.Open(path))
	require.NoError(t, idx.Rebuild(sampleItems()))
	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close())

	reopened := NewIndex()
	require.NoError(t, reopened.Open(path))
	defer reopened.Close()
	assert.False(t, reopened.NeedsFullRebuild(4))
}

func TestIndex_SearchFoldsNonASCII(t *testing.T) {
	idx := openTestIndex(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	items := []domain.ClipboardItem{
		{ID: "a", Text: "ÉCOLE Ørsted", Date: base},
		{ID: "b", Text: "ΣΟΦΙΑ", Date: base.Add(time.Minute), SourceAppPath: "/Applications/Café.app"},
	}
	require.NoError(t, idx.Rebuild(items))

	for _, tc := range []struct{ query, want string }{
		{"école", "a"},
		{"ørsted", "a"},
		{"σοφια", "b"},
		{"CAFÉ", "b"},
	} {
		ids, err := idx.Search(tc.query, "", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{tc.want}, ids, tc.query)

		var inMemory []string
		for _, item := range items {
			if item.Matches(tc.query) {
				inMemory = append(inMemory, item.ID)
			}
		}
		assert.Equal(t, ids, inMemory, tc.query)
	}
}

func TestIndex_OldSchemaDroppedOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx := NewIndex()
	require.NoError(t, idx.Open(path))
	require.NoError(t, idx.Rebuild(sampleItems()))
	_, err := idx.db.Exec(`UPDATE meta SET value = '1' WHERE key = 'schema_version'`)
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	reopened := NewIndex()
	require.NoError(t, reopened.Open(path))
	defer reopened.Close()
	assert.True(t, reopened.NeedsFullRebuild(4))
	n, err := reopened.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, reopened.Rebuild(sampleItems()))
	assert.False(t, reopened.NeedsFullRebuild(4))
}

// BenchmarkRebuild measures a full rebuild at the default history cap
func BenchmarkRebuild(b *testing.B) {
	idx := NewIndex()
	if err := idx.Open(filepath.Join(b.TempDir(), "index.db")); err != nil {
		b.Fatalf("failed to open index: %v", err)
	}
	defer func() {
		if err := idx.Close(); err != nil {
			b.Fatalf("failed to close index: %v", err)
		}
	}()

	items := make([]domain.ClipboardItem, 500)
	for n := range items {
		items[n] = domain.ClipboardItem{ID: fmt.Sprintf("item-%d", n), Text: fmt.Sprintf("text %d", n), Date: time.Unix(int64(n), 0)}
	}

	b.ResetTimer()
	for b.Loop() {
		if err := idx.Rebuild(items); err != nil {
			b.Fatalf("rebuild failed: %v", err)
		}
	}
}
