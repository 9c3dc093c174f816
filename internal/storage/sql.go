package storage

import (
	"context"
	"database/sql"
	"errors"
)

type sqlDialect struct {
	schema string
	get    string
	upsert string
	delete string
}

// SQLKV stores each key as a row in kv_store.
type SQLKV struct {
	db *sql.DB
	q  sqlDialect
}

func newSQLKV(ctx context.Context, db *sql.DB, q sqlDialect) (*SQLKV, error) {
	s := &SQLKV{db: db, q: q}
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := db.ExecContext(ctx, q.schema)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLKV) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *SQLKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, s.q.get, key).Scan(&v)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if v == nil {
		v = []byte{}
	}
	return v, true, nil
}

func (s *SQLKV) Set(ctx context.Context, key string, value []byte) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, s.q.upsert, key, value)
		return err
	})
}

func (s *SQLKV) Delete(ctx context.Context, key string) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, s.q.delete, key)
		return err
	})
}

func (s *SQLKV) Close() error {
	return s.db.Close()
}
