package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/arturoeanton/go-license-rag-ollama/internal/index"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// IndexCache persists a built embedding index to SQLite so a cold start with
// an unchanged dataset deserializes instead of re-embedding. The stored
// dataset hash and embed-model identity must both match before the blob is
// trusted.
type IndexCache struct {
	db *sql.DB
}

// NewIndexCache opens (or creates) the cache database at the given path.
func NewIndexCache(path string) (*IndexCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open index cache: %w", err)
	}

	cache := &IndexCache{db: db}
	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init index cache schema: %w", err)
	}
	return cache, nil
}

func (c *IndexCache) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS index_meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		hash TEXT NOT NULL,
		embed_model TEXT NOT NULL,
		dim INTEGER NOT NULL,
		built_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS index_entries (
		record_id INTEGER PRIMARY KEY,
		vector BLOB NOT NULL
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Close closes the cache database.
func (c *IndexCache) Close() error {
	return c.db.Close()
}

// Persist replaces the cached index with the given one in a single transaction.
func (c *IndexCache) Persist(ix *index.Index) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM index_meta`); err != nil {
		return fmt.Errorf("clear meta: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM index_entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO index_meta (id, hash, embed_model, dim) VALUES (1, ?, ?, ?)`,
		ix.Hash, ix.EmbedModel, ix.Dim,
	); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO index_entries (record_id, vector) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range ix.Entries {
		blob, err := json.Marshal(e.Vector)
		if err != nil {
			return fmt.Errorf("encode vector %d: %w", e.RecordID, err)
		}
		if _, err := stmt.Exec(e.RecordID, blob); err != nil {
			return fmt.Errorf("insert entry %d: %w", e.RecordID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	slog.Info("index persisted", "entries", ix.Len())
	return nil
}

// LoadCached returns the persisted index if its stored dataset hash and
// embed model both match; otherwise (nil, nil).
func (c *IndexCache) LoadCached(hash, embedModel string) (*index.Index, error) {
	var storedHash, storedModel string
	var dim int
	err := c.db.QueryRow(`SELECT hash, embed_model, dim FROM index_meta WHERE id = 1`).
		Scan(&storedHash, &storedModel, &dim)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}

	if storedHash != hash {
		slog.Info("index cache stale", "reason", "hash mismatch")
		return nil, nil
	}
	if storedModel != embedModel {
		slog.Info("index cache stale", "reason", "embed model changed", "stored", storedModel, "configured", embedModel)
		return nil, nil
	}

	rows, err := c.db.Query(`SELECT record_id, vector FROM index_entries ORDER BY record_id`)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	defer rows.Close()

	ix := &index.Index{Hash: storedHash, EmbedModel: storedModel, Dim: dim}
	for rows.Next() {
		var recordID int
		var blob []byte
		if err := rows.Scan(&recordID, &blob); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		var vec []float32
		if err := json.Unmarshal(blob, &vec); err != nil {
			return nil, fmt.Errorf("decode vector %d: %w", recordID, err)
		}
		ix.Entries = append(ix.Entries, index.Entry{RecordID: recordID, Vector: vec})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	slog.Info("index loaded from cache", "entries", ix.Len(), "dim", dim)
	return ix, nil
}
