// Package storage holds the key-value port the catalog persists its blob
// through, plus the adapters that back it.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

var (
	ErrUnknownDriver = errors.New("unknown storage driver")
	ErrClosed        = errors.New("storage closed")
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverBolt     = "bolt"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// KV is a flat string-keyed byte store. Every Set replaces the previous
// value; there is no locking across processes.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

type Options struct {
	Driver string
	// Path is the on-disk location for file, bolt and sqlite.
	Path string
	// DSN is the connection string for postgres.
	DSN string
}

func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemKV(), nil
	case DriverFile:
		return NewFileKV(opts.Path)
	case DriverBolt:
		return OpenBoltKV(opts.Path)
	case DriverSQLite:
		return OpenSQLiteKV(ctx, opts.Path)
	case DriverPostgres:
		return OpenPostgresKV(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

// DefaultPath picks an on-disk location for drivers that need one.
func DefaultPath(driver, dir string) string {
	switch driver {
	case DriverFile:
		return filepath.Join(dir, "catalog.json")
	case DriverBolt, DriverSQLite:
		return filepath.Join(dir, "catalog.db")
	default:
		return ""
	}
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
