package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var postgresDialect = sqlDialect{
	schema: `
CREATE TABLE IF NOT EXISTS kv_store (
	key TEXT PRIMARY KEY,
	value BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	get: `SELECT value FROM kv_store WHERE key = $1`,
	upsert: `
INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	delete: `DELETE FROM kv_store WHERE key = $1`,
}

func OpenPostgresKV(ctx context.Context, dsn string) (*SQLKV, error) {
	if dsn == "" {
		return nil, errors.New("postgres storage: empty dsn")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres storage: open: %w", err)
	}

	if err := withTimeout(ctx, pingTimeout, db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres storage: ping: %w", err)
	}

	s, err := newSQLKV(ctx, db, postgresDialect)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres storage: schema: %w", err)
	}
	return s, nil
}
