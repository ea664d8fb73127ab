package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileStore_StoreFileCopiesWithToken(t *testing.T) {
	src := writeSource(t, t.TempDir(), "report.pdf", "pdf bytes")
	fs := NewFileStore(t.TempDir(), DuplicateBySize)

	stored, err := fs.StoreFile(src)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(stored, "-report.pdf"))
	assert.Equal(t, "report.pdf", OriginalName(stored))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))
}

func TestFileStore_SizeDedupReusesExistingCopy(t *testing.T) {
	srcDir := t.TempDir()
	fs := NewFileStore(t.TempDir(), DuplicateBySize)

	first, err := fs.StoreFile(writeSource(t, srcDir, "a.txt", "12345"))
	require.NoError(t, err)
	// same length, different content: the size heuristic collapses them
	second, err := fs.StoreFile(writeSource(t, srcDir, "b.txt", "abcde"))
	require.NoError(t, err)
	third, err := fs.StoreFile(writeSource(t, srcDir, "c.txt", "longer content"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, third)
}

func TestFileStore_HashModeDistinguishesContent(t *testing.T) {
	srcDir := t.TempDir()
	fs := NewFileStore(t.TempDir(), DuplicateByHash)

	first, err := fs.StoreFile(writeSource(t, srcDir, "a.txt", "12345"))
	require.NoError(t, err)
	second, err := fs.StoreFile(writeSource(t, srcDir, "b.txt", "abcde"))
	require.NoError(t, err)
	again, err := fs.StoreFile(writeSource(t, srcDir, "c.txt", "12345"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, first, again)
}

func TestFileStore_StoreImageBytes(t *testing.T) {
	fs := NewFileStore(t.TempDir(), DuplicateBySize)

	first, err := fs.StoreImageBytes([]byte("fakepng"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(first, ImageSuffix))

	second, err := fs.StoreImageBytes([]byte("otherpn"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	third, err := fs.StoreImageBytes([]byte("a different length"))
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestFileStore_ImageDedupIgnoresOrdinaryFiles(t *testing.T) {
	fs := NewFileStore(t.TempDir(), DuplicateBySize)
	file, err := fs.StoreFile(writeSource(t, t.TempDir(), "notes.txt", "1234567"))
	require.NoError(t, err)

	image, err := fs.StoreImageBytes([]byte("7 bytes"))
	require.NoError(t, err)

	assert.NotEqual(t, file, image)
}

func TestFileStore_DeleteFile(t *testing.T) {
	fs := NewFileStore(t.TempDir(), DuplicateBySize)
	stored, err := fs.StoreFile(writeSource(t, t.TempDir(), "a.txt", "data"))
	require.NoError(t, err)

	require.NoError(t, fs.DeleteFile(stored))
	assert.NoFileExists(t, stored)

	// already gone
	require.NoError(t, fs.DeleteFile(stored))
	require.NoError(t, fs.DeleteFile(""))
}

func TestFileStore_DeleteFileIgnoresOutsidePaths(t *testing.T) {
	fs := NewFileStore(t.TempDir(), DuplicateBySize)
	outside := writeSource(t, t.TempDir(), "keep.txt", "data")

	require.NoError(t, fs.DeleteFile(outside))
	assert.FileExists(t, outside)
}

func TestFileStore_Orphans(t *testing.T) {
	fs := NewFileStore(t.TempDir(), DuplicateBySize)
	srcDir := t.TempDir()
	kept, err := fs.StoreFile(writeSource(t, srcDir, "a.txt", "a"))
	require.NoError(t, err)
	orphan, err := fs.StoreFile(writeSource(t, srcDir, "b.txt", "bb"))
	require.NoError(t, err)

	orphans, err := fs.Orphans(map[string]bool{kept: true})
	require.NoError(t, err)
	assert.Equal(t, []string{orphan}, orphans)
}

func TestFileStore_OrphansMissingDir(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "absent"), DuplicateBySize)
	orphans, err := fs.Orphans(nil)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestOriginalName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/s/123e4567-e89b-12d3-a456-426614174000-report.pdf", "report.pdf"},
		{"/s/123e4567-e89b-12d3-a456-426614174000-clipboard-image.png", "clipboard-image.png"},
		{"/s/plain.txt", "plain.txt"},
		{"/s/not-a-uuid-but-long-enough-to-look-like-one-file.txt", "not-a-uuid-but-long-enough-to-look-like-one-file.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, OriginalName(tt.path))
		})
	}
}
