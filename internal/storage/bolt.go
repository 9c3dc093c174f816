package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

var kvBucket = []byte("kv")

type BoltKV struct {
	db *bolt.DB
}

func OpenBoltKV(path string) (*BoltKV, error) {
	if path == "" {
		return nil, errors.New("bolt storage: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("bolt storage: create dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: pingTimeout})
	if err != nil {
		return nil, fmt.Errorf("bolt storage: open: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(kvBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt storage: bucket: %w", err)
	}

	return &BoltKV{db: db}, nil
}

func (s *BoltKV) Ping(ctx context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(kvBucket) == nil {
			return ErrClosed
		}
		return nil
	})
}

func (s *BoltKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		out   []byte
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(kvBucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		// v is only valid inside the transaction.
		out, found = clone(v), true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, found, nil
}

func (s *BoltKV) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(kvBucket).Put([]byte(key), value)
	})
}

func (s *BoltKV) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(kvBucket).Delete([]byte(key))
	})
}

func (s *BoltKV) Close() error {
	return s.db.Close()
}
