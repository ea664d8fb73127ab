package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"clipkeep/internal/config"
	"clipkeep/internal/domain"
	"clipkeep/internal/ports"
)

const schemaVersion = "2"

// Index implements ports.QueryIndex using SQLite. It is a cache over the
// chunk store and can be deleted and rebuilt at any time.
type Index struct {
	db     *sql.DB
	dbPath string
}

// Ensure Index implements QueryIndex
var _ ports.QueryIndex = (*Index)(nil)

// NewIndex creates a new SQLite index
func NewIndex() *Index {
	return &Index{}
}

// Open initializes the index database at path
func (idx *Index) Open(path string) error {
	idx.dbPath = config.ExpandHome(path)

	if err := os.MkdirAll(filepath.Dir(idx.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	// WAL lets the CLI read while a watcher writes
	db, err := sql.Open("sqlite3", idx.dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	idx.db = db

	if err := idx.dropStaleSchema(); err != nil {
		db.Close()
		idx.db = nil
		return err
	}

	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			text TEXT NOT NULL,
			text_fold TEXT NOT NULL DEFAULT '',
			source_app TEXT NOT NULL DEFAULT '',
			source_fold TEXT NOT NULL DEFAULT '',
			file_path TEXT NOT NULL DEFAULT '',
			file_size INTEGER NOT NULL DEFAULT 0,
			date INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_items_date ON items(date);
		CREATE INDEX IF NOT EXISTS idx_items_kind ON items(kind);
	`)
	if err != nil {
		db.Close()
		idx.db = nil
		return fmt.Errorf("failed to setup database: %w", err)
	}

	return nil
}

// dropStaleSchema drops the items table written by an older schema. The
// next NeedsFullRebuild call then reports the version mismatch.
func (idx *Index) dropStaleSchema() error {
	var version string
	err := idx.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&version)
	if err != nil || version == schemaVersion {
		return nil
	}
	if _, err := idx.db.Exec(`DROP TABLE IF EXISTS items`); err != nil {
		return fmt.Errorf("failed to drop stale index: %w", err)
	}
	return nil
}

// Close closes the database connection
func (idx *Index) Close() error {
	if idx.db != nil {
		err := idx.db.Close()
		idx.db = nil
		return err
	}
	return nil
}

// NeedsFullRebuild returns true when the schema changed or the index has
// drifted from the store
func (idx *Index) NeedsFullRebuild(itemCount int) bool {
	var version, count string

	idx.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&version)
	idx.db.QueryRow("SELECT value FROM meta WHERE key = 'item_count'").Scan(&count)

	if version != schemaVersion {
		return true
	}
	indexed, err := idx.Count()
	return err != nil || count != strconv.Itoa(itemCount) || indexed != itemCount
}

// Rebuild replaces the indexed rows with items
func (idx *Index) Rebuild(items []domain.ClipboardItem) error {
	tx, err := idx.beginTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := tx.clear(); err != nil {
		return err
	}
	for _, item := range items {
		if err := tx.upsert(item); err != nil {
			return fmt.Errorf("failed to index %s: %w", item.ID, err)
		}
	}
	if err := tx.writeMeta(len(items)); err != nil {
		return err
	}
	return tx.Commit()
}

// Upsert inserts or updates one item
func (idx *Index) Upsert(item domain.ClipboardItem) error {
	return idx.inTx(func(tx *indexTx) error {
		if err := tx.upsert(item); err != nil {
			return err
		}
		return tx.syncCount()
	})
}

// Delete removes one item
func (idx *Index) Delete(id string) error {
	return idx.inTx(func(tx *indexTx) error {
		if err := tx.delete(id); err != nil {
			return err
		}
		return tx.syncCount()
	})
}

// Reset drops every indexed row
func (idx *Index) Reset() error {
	return idx.inTx(func(tx *indexTx) error {
		if err := tx.clear(); err != nil {
			return err
		}
		return tx.writeMeta(0)
	})
}

// Search returns IDs of items whose text or source application contains
// query, newest first. Matching runs on columns folded by domain.FoldCase,
// so non-ASCII text matches the same way as the in-memory search.
// An empty kind matches every kind, limit 0 means no limit.
func (idx *Index) Search(query string, kind domain.Kind, limit int) ([]string, error) {
	if limit <= 0 {
		limit = -1
	}
	pattern := "%" + escapeLike(domain.FoldCase(query)) + "%"

	rows, err := idx.db.Query(`
		SELECT id FROM items
		WHERE (text_fold LIKE ? ESCAPE '\' OR source_fold LIKE ? ESCAPE '\')
		  AND (? = '' OR kind = ?)
		ORDER BY date DESC
		LIMIT ?
	`, pattern, pattern, string(kind), string(kind), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Count returns the number of indexed items
func (idx *Index) Count() (int, error) {
	var n int
	err := idx.db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n)
	return n, err
}

func (idx *Index) inTx(fn func(tx *indexTx) error) error {
	tx, err := idx.beginTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
