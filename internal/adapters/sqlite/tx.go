package sqlite

import (
	"database/sql"
	"strconv"

	"clipkeep/internal/domain"
)

// indexTx groups index writes so a rebuild is all or nothing
type indexTx struct {
	tx *sql.Tx
}

func (idx *Index) beginTx() (*indexTx, error) {
	tx, err := idx.db.Begin()
	if err != nil {
		return nil, err
	}
	return &indexTx{tx: tx}, nil
}

// upsert inserts or updates an item row
func (t *indexTx) upsert(item domain.ClipboardItem) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO items (id, kind, text, text_fold, source_app, source_fold, file_path, file_size, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, string(item.Kind()), item.Text, domain.FoldCase(item.Text),
		item.SourceAppPath, domain.FoldCase(item.SourceAppPath), item.FilePath, item.FileSize, item.Date.UnixNano())
	return err
}

// delete removes an item row by ID
func (t *indexTx) delete(id string) error {
	_, err := t.tx.Exec(`DELETE FROM items WHERE id = ?`, id)
	return err
}

// clear removes every item row
func (t *indexTx) clear() error {
	_, err := t.tx.Exec(`DELETE FROM items`)
	return err
}

// writeMeta records the schema version and the item count the index mirrors
func (t *indexTx) writeMeta(count int) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?);
		INSERT OR REPLACE INTO meta (key, value) VALUES ('item_count', ?);
	`, schemaVersion, strconv.Itoa(count))
	return err
}

// syncCount refreshes the recorded item count from the table
func (t *indexTx) syncCount() error {
	var n int
	if err := t.tx.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return err
	}
	return t.writeMeta(n)
}

// Commit commits the transaction
func (t *indexTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *indexTx) Rollback() error {
	return t.tx.Rollback()
}
