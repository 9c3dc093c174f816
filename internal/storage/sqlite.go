package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var sqliteDialect = sqlDialect{
	schema: `
CREATE TABLE IF NOT EXISTS kv_store (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`,
	get: `SELECT value FROM kv_store WHERE key = ?`,
	upsert: `
INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	delete: `DELETE FROM kv_store WHERE key = ?`,
}

func OpenSQLiteKV(ctx context.Context, path string) (*SQLKV, error) {
	if path == "" {
		return nil, errors.New("sqlite storage: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite storage: create dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: open: %w", err)
	}
	// one writer; sqlite serializes writes anyway
	db.SetMaxOpenConns(1)

	s, err := newSQLKV(ctx, db, sqliteDialect)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite storage: schema: %w", err)
	}
	return s, nil
}
