package filesystem

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"clipkeep/internal/ports"
)

// ImageSuffix identifies image blobs written from raw clipboard bytes
const ImageSuffix = "-clipboard-image.png"

// DuplicateMode selects how the file store recognises an existing copy
type DuplicateMode string

const (
	// DuplicateBySize treats equal byte length as the same file. It is a
	// heuristic: distinct files of identical length collapse to one copy.
	DuplicateBySize DuplicateMode = "size"
	// DuplicateByHash additionally requires equal sha256
	DuplicateByHash DuplicateMode = "hash"
)

// FileStore implements ports.FileStore in a private directory.
// Stored names are "<token>-<original name>".
type FileStore struct {
	dir      string
	mode     DuplicateMode
	newToken func() string

	mu sync.Mutex
}

// Ensure FileStore implements FileStore
var _ ports.FileStore = (*FileStore)(nil)

// NewFileStore creates a file store in dir
func NewFileStore(dir string, mode DuplicateMode) *FileStore {
	if mode != DuplicateByHash {
		mode = DuplicateBySize
	}
	return &FileStore{
		dir:      expandHome(dir),
		mode:     mode,
		newToken: func() string { return uuid.NewString() },
	}
}

// Dir returns the store directory
func (fs *FileStore) Dir() string {
	return fs.dir
}

// StoreFile copies sourcePath into the store, or returns an existing copy of the same size
func (fs *FileStore) StoreFile(sourcePath string) (string, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", sourcePath, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("cannot store directory %s", sourcePath)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.MkdirAll(fs.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create file store: %w", err)
	}

	existing, err := fs.findDuplicate(info.Size(), "", func() (string, error) { return hashFile(sourcePath) })
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}

	dst := filepath.Join(fs.dir, fs.newToken()+"-"+filepath.Base(sourcePath))
	if err := copyFile(sourcePath, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// StoreImageBytes writes raw image bytes, or returns an existing image of the same length
func (fs *FileStore) StoreImageBytes(data []byte) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.MkdirAll(fs.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create file store: %w", err)
	}

	existing, err := fs.findDuplicate(int64(len(data)), ImageSuffix, func() (string, error) { return hashBytes(data), nil })
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}

	dst := filepath.Join(fs.dir, fs.newToken()+ImageSuffix)
	if err := writeFileAtomic(dst, data); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return dst, nil
}

// findDuplicate scans the store for a file of the given size (and suffix, when set)
func (fs *FileStore) findDuplicate(size int64, suffix string, sourceHash func() (string, error)) (string, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return "", fmt.Errorf("failed to read file store: %w", err)
	}

	var wantHash string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), ".tmp") {
			continue
		}
		if suffix != "" && !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() != size {
			continue
		}

		candidate := filepath.Join(fs.dir, entry.Name())
		if fs.mode != DuplicateByHash {
			return candidate, nil
		}

		if wantHash == "" {
			if wantHash, err = sourceHash(); err != nil {
				return "", err
			}
		}
		if got, err := hashFile(candidate); err == nil && got == wantHash {
			return candidate, nil
		}
	}
	return "", nil
}

// DeleteFile removes a stored file. Missing files and paths outside the store are ignored.
func (fs *FileStore) DeleteFile(path string) error {
	if path == "" || !fs.owns(path) {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

// Hash returns the hex sha256 of a file
func (fs *FileStore) Hash(path string) (string, error) {
	return hashFile(path)
}

// Orphans lists stored files that no item references
func (fs *FileStore) Orphans(referenced map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read file store: %w", err)
	}

	var orphans []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(fs.dir, entry.Name())
		if !referenced[path] {
			orphans = append(orphans, path)
		}
	}
	return orphans, nil
}

// OriginalName recovers the source filename from a stored name
func OriginalName(storedPath string) string {
	name := filepath.Base(storedPath)
	// uuid tokens are 36 characters followed by "-"
	if len(name) > 37 && name[36] == '-' {
		if _, err := uuid.Parse(name[:36]); err == nil {
			return name[37:]
		}
	}
	return name
}

func (fs *FileStore) owns(path string) bool {
	rel, err := filepath.Rel(fs.dir, path)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	return os.Rename(tmp, dst)
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
