package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"clipkeep/internal/domain"
	"clipkeep/internal/ports"
)

// ErrCorruptChunk marks a chunk or index file that cannot be decoded
var ErrCorruptChunk = errors.New("corrupt chunk")

const loadConcurrency = 4

// ChunkStore implements ports.HistoryStore as numbered JSON chunk files with
// a parallel directory of index files and a manifest.
// Every mutation is serialized by mu.
type ChunkStore struct {
	root      string
	chunkSize int
	log       *logrus.Entry

	mu       sync.Mutex
	manifest *manifest
}

// Ensure ChunkStore implements HistoryStore
var _ ports.HistoryStore = (*ChunkStore)(nil)

// NewChunkStore creates a chunk store rooted at dir
func NewChunkStore(dir string, chunkSize int, log *logrus.Entry) *ChunkStore {
	if chunkSize <= 0 {
		chunkSize = domain.ChunkSize
	}
	return &ChunkStore{
		root:      expandHome(dir),
		chunkSize: chunkSize,
		log:       log.WithField("component", "chunkstore"),
	}
}

// Root returns the data directory
func (s *ChunkStore) Root() string {
	return s.root
}

// ChunkCount returns the number of chunks recorded in the manifest
func (s *ChunkStore) ChunkCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loadManifestLocked()
	if err != nil {
		return 0, err
	}
	return len(m.Chunks), nil
}

// Append adds an item to the highest-numbered chunk, rolling to a new chunk when full
func (s *ChunkStore) Append(ctx context.Context, item domain.ClipboardItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loadManifestLocked()
	if err != nil {
		return err
	}

	last, ok := m.last()
	if !ok {
		return s.persistLocked(m, 0, []domain.ClipboardItem{item})
	}

	items, err := s.readChunk(last.Index)
	if err != nil {
		// never write over a chunk we could not read
		s.log.WithFields(logrus.Fields{"chunk": last.Index, "error": err}).Warn("latest chunk unreadable, starting a new one")
		return s.persistLocked(m, last.Index+1, []domain.ClipboardItem{item})
	}

	if len(items)+1 > s.chunkSize {
		if err := s.persistLocked(m, last.Index, items); err != nil {
			return err
		}
		return s.persistLocked(m, last.Index+1, []domain.ClipboardItem{item})
	}

	return s.persistLocked(m, last.Index, append(items, item))
}

// LoadAll reads every chunk and returns the items newest first.
// Unreadable chunks are skipped and logged.
func (s *ChunkStore) LoadAll(ctx context.Context) ([]domain.ClipboardItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadAllLocked(ctx)
}

func (s *ChunkStore) loadAllLocked(ctx context.Context) ([]domain.ClipboardItem, error) {
	m, err := s.loadManifestLocked()
	if err != nil {
		return nil, err
	}

	slots := make([][]domain.ClipboardItem, len(m.Chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for n, entry := range m.Chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items, err := s.readChunk(entry.Index)
			if err != nil {
				s.log.WithFields(logrus.Fields{"chunk": entry.Index, "error": err}).Warn("skipping unreadable chunk")
				return nil
			}
			slots[n] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []domain.ClipboardItem
	for _, items := range slots {
		all = append(all, items...)
	}
	domain.SortNewestFirst(all)
	return all, nil
}

// Delete removes the item from the first chunk that holds it
func (s *ChunkStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loadManifestLocked()
	if err != nil {
		return false, err
	}

	for _, entry := range m.Chunks {
		if !s.chunkMayContain(entry.Index, id) {
			continue
		}
		items, err := s.readChunk(entry.Index)
		if err != nil {
			s.log.WithFields(logrus.Fields{"chunk": entry.Index, "error": err}).Warn("skipping unreadable chunk during delete")
			continue
		}
		for n, item := range items {
			if item.ID != id {
				continue
			}
			kept := append(items[:n:n], items[n+1:]...)
			if err := s.persistLocked(m, entry.Index, kept); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// chunkMayContain consults the index file so full chunks are only decoded
// when they hold the id. A missing or unreadable index answers true.
func (s *ChunkStore) chunkMayContain(index int, id string) bool {
	indexed, err := s.readIndex(index)
	if err != nil {
		return true
	}
	for _, entry := range indexed {
		if entry.ID == id {
			return true
		}
	}
	return false
}

// RewriteAll merges items with the stored set by id, keeping the stored copy
// on collisions, and rewrites every chunk in date order
func (s *ChunkStore) RewriteAll(ctx context.Context, items []domain.ClipboardItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.loadAllLocked(ctx)
	if err != nil {
		return err
	}

	return s.rewriteLocked(MergeByID(existing, items))
}

// Replace discards the stored set and writes exactly items
func (s *ChunkStore) Replace(ctx context.Context, items []domain.ClipboardItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rewriteLocked(append([]domain.ClipboardItem(nil), items...))
}

// Clear deletes the whole data directory and recreates it empty
func (s *ChunkStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(s.root); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	if err := s.ensureDirs(); err != nil {
		return err
	}
	return s.writeManifestLocked(&manifest{})
}

// MergeByID returns existing plus every incoming item whose id is new
func MergeByID(existing, incoming []domain.ClipboardItem) []domain.ClipboardItem {
	seen := make(map[string]bool, len(existing)+len(incoming))
	merged := make([]domain.ClipboardItem, 0, len(existing)+len(incoming))
	for _, item := range existing {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		merged = append(merged, item)
	}
	for _, item := range incoming {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		merged = append(merged, item)
	}
	return merged
}

// rewriteLocked replaces every chunk with items. Chunks that no longer decode
// are moved aside first so a rewrite never destroys them.
func (s *ChunkStore) rewriteLocked(items []domain.ClipboardItem) error {
	domain.SortOldestFirst(items)

	indexes, err := s.listChunkIndexes()
	if err != nil {
		return err
	}
	for _, index := range indexes {
		if _, err := s.readChunk(index); errors.Is(err, ErrCorruptChunk) {
			if err := s.setAsideLocked(index, err); err != nil {
				return err
			}
		}
	}

	for _, dir := range []string{s.chunksDir(), s.indexDir()} {
		if err := removeMatching(dir, ".json"); err != nil {
			return err
		}
	}
	if err := s.ensureDirs(); err != nil {
		return err
	}

	m := &manifest{}
	for start, index := 0, 0; start < len(items); start, index = start+s.chunkSize, index+1 {
		end := min(start+s.chunkSize, len(items))
		if err := s.writeChunk(index, items[start:end]); err != nil {
			return err
		}
		m.Chunks = append(m.Chunks, chunkEntry{Index: index, Count: end - start})
	}
	return s.writeManifestLocked(m)
}

// setAsideLocked renames an unreadable chunk to a .corrupt file kept for
// inspection and drops its index file
func (s *ChunkStore) setAsideLocked(index int, cause error) error {
	aside := s.chunkPath(index) + ".corrupt"
	for n := 1; ; n++ {
		if _, err := os.Stat(aside); os.IsNotExist(err) {
			break
		}
		aside = fmt.Sprintf("%s.corrupt.%d", s.chunkPath(index), n)
	}
	s.log.WithFields(logrus.Fields{"chunk": index, "error": cause, "path": aside}).Warn("moving unreadable chunk aside")
	if err := os.Rename(s.chunkPath(index), aside); err != nil {
		return fmt.Errorf("failed to move chunk %d aside: %w", index, err)
	}
	os.Remove(s.indexPath(index))
	return nil
}

// persistLocked writes a chunk, its index file and the manifest in lockstep
func (s *ChunkStore) persistLocked(m *manifest, index int, items []domain.ClipboardItem) error {
	if err := s.ensureDirs(); err != nil {
		return err
	}
	if err := s.writeChunk(index, items); err != nil {
		return err
	}
	m.setCount(index, len(items))
	return s.writeManifestLocked(m)
}

func (s *ChunkStore) writeChunk(index int, items []domain.ClipboardItem) error {
	if items == nil {
		items = []domain.ClipboardItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode chunk %d: %w", index, err)
	}
	if err := writeFileAtomic(s.chunkPath(index), data); err != nil {
		return fmt.Errorf("failed to write chunk %d: %w", index, err)
	}
	return s.writeIndex(index, items)
}

func (s *ChunkStore) writeIndex(index int, items []domain.ClipboardItem) error {
	data, err := json.Marshal(domain.IndexChunk(items))
	if err != nil {
		return fmt.Errorf("failed to encode index %d: %w", index, err)
	}
	if err := writeFileAtomic(s.indexPath(index), data); err != nil {
		return fmt.Errorf("failed to write index %d: %w", index, err)
	}
	return nil
}

func (s *ChunkStore) readChunk(index int) ([]domain.ClipboardItem, error) {
	data, err := os.ReadFile(s.chunkPath(index))
	if err != nil {
		return nil, fmt.Errorf("failed to read chunk %d: %w", index, err)
	}
	var items []domain.ClipboardItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w %d: %v", ErrCorruptChunk, index, err)
	}
	return items, nil
}

func (s *ChunkStore) readIndex(index int) ([]domain.IndexedClipboardItem, error) {
	data, err := os.ReadFile(s.indexPath(index))
	if err != nil {
		return nil, err
	}
	var indexed []domain.IndexedClipboardItem
	if err := json.Unmarshal(data, &indexed); err != nil {
		return nil, fmt.Errorf("%w: index %d: %v", ErrCorruptChunk, index, err)
	}
	return indexed, nil
}

func (s *ChunkStore) ensureDirs() error {
	for _, dir := range []string{s.chunksDir(), s.indexDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

func (s *ChunkStore) chunksDir() string {
	return filepath.Join(s.root, "chunks")
}

func (s *ChunkStore) indexDir() string {
	return filepath.Join(s.root, "index")
}

func (s *ChunkStore) chunkPath(index int) string {
	return filepath.Join(s.chunksDir(), fmt.Sprintf("chunk-%06d.json", index))
}

func (s *ChunkStore) indexPath(index int) string {
	return filepath.Join(s.indexDir(), fmt.Sprintf("index-%06d.json", index))
}

// writeFileAtomic writes through a temporary file so readers never see a partial chunk
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func removeMatching(dir, suffix string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// expandHome expands a leading ~ to the home directory
func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}
