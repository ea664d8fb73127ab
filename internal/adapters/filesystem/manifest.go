package filesystem

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
)

const manifestVersion = 1

var chunkFilePattern = regexp.MustCompile(`^chunk-([0-9]+)\.json$`)

// manifest is the source of truth for chunk count and per-chunk item counts
type manifest struct {
	Version   int          `json:"version"`
	ChunkSize int          `json:"chunkSize"`
	Chunks    []chunkEntry `json:"chunks"`
}

type chunkEntry struct {
	Index int `json:"index"`
	Count int `json:"count"`
}

func (m *manifest) last() (chunkEntry, bool) {
	if len(m.Chunks) == 0 {
		return chunkEntry{}, false
	}
	return m.Chunks[len(m.Chunks)-1], true
}

func (m *manifest) setCount(index, count int) {
	for n := range m.Chunks {
		if m.Chunks[n].Index == index {
			m.Chunks[n].Count = count
			return
		}
	}
	m.Chunks = append(m.Chunks, chunkEntry{Index: index, Count: count})
}

func (m *manifest) total() int {
	total := 0
	for _, c := range m.Chunks {
		total += c.Count
	}
	return total
}

// loadManifestLocked returns the cached manifest, reading it from disk or
// reconciling it from the chunk directory when it is missing or stale
func (s *ChunkStore) loadManifestLocked() (*manifest, error) {
	if s.manifest != nil {
		return s.manifest, nil
	}

	m, err := s.readManifest()
	if err == nil && s.consistent(m) {
		s.manifest = m
		return m, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.WithError(err).Warn("manifest unreadable, reconciling from chunk files")
	}

	m, err = s.reconcileLocked()
	if err != nil {
		return nil, err
	}
	s.manifest = m
	return m, nil
}

func (s *ChunkStore) readManifest() (*manifest, error) {
	data, err := os.ReadFile(s.manifestPath())
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}

func (s *ChunkStore) writeManifestLocked(m *manifest) error {
	m.Version = manifestVersion
	m.ChunkSize = s.chunkSize
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := writeFileAtomic(s.manifestPath(), data); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	s.manifest = m
	return nil
}

// consistent checks the manifest against the chunk files actually present
func (s *ChunkStore) consistent(m *manifest) bool {
	onDisk, err := s.listChunkIndexes()
	if err != nil || len(onDisk) != len(m.Chunks) {
		return false
	}
	for n, entry := range m.Chunks {
		if entry.Index != n || onDisk[n] != n {
			return false
		}
	}
	return true
}

// listChunkIndexes returns the numbers of every chunk data file, ascending
func (s *ChunkStore) listChunkIndexes() ([]int, error) {
	entries, err := os.ReadDir(s.chunksDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read chunk directory: %w", err)
	}

	var indexes []int
	for _, entry := range entries {
		matches := chunkFilePattern.FindStringSubmatch(entry.Name())
		if matches == nil || entry.IsDir() {
			continue
		}
		n, err := strconv.Atoi(matches[1])
		if err != nil {
			continue
		}
		indexes = append(indexes, n)
	}
	sort.Ints(indexes)
	return indexes, nil
}

// reconcileLocked rebuilds the manifest from the chunk directory. Unreadable
// chunks are moved aside, survivors are renumbered contiguously and their
// index files regenerated.
func (s *ChunkStore) reconcileLocked() (*manifest, error) {
	if err := s.ensureDirs(); err != nil {
		return nil, err
	}

	indexes, err := s.listChunkIndexes()
	if err != nil {
		return nil, err
	}

	m := &manifest{}
	next := 0
	for _, index := range indexes {
		items, err := s.readChunk(index)
		if err != nil {
			if err := s.setAsideLocked(index, err); err != nil {
				return nil, err
			}
			continue
		}

		if index != next {
			if err := os.Rename(s.chunkPath(index), s.chunkPath(next)); err != nil {
				return nil, fmt.Errorf("failed to renumber chunk %d: %w", index, err)
			}
			os.Remove(s.indexPath(index))
		}
		if err := s.writeIndex(next, items); err != nil {
			return nil, err
		}
		m.Chunks = append(m.Chunks, chunkEntry{Index: next, Count: len(items)})
		next++
	}

	if err := s.writeManifestLocked(m); err != nil {
		return nil, err
	}
	if len(indexes) > 0 {
		s.log.WithFields(logrus.Fields{"chunks": len(m.Chunks), "items": m.total()}).Info("history manifest reconciled")
	}
	return m, nil
}

func (s *ChunkStore) manifestPath() string {
	return filepath.Join(s.root, "manifest.json")
}
