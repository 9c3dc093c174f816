package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ProductAdmin/internal/storage"
)

const DefaultStorageKey = "products"

// LocalStore persists the whole product collection as one JSON array under
// a single key. Every write replaces the array; last write wins.
type LocalStore struct {
	seedMu sync.Mutex

	kv   storage.KV
	key  string
	seed func() []Product
	log  *zap.Logger
}

type StoreOptions struct {
	Key  string
	Seed func() []Product
	Log  *zap.Logger
}

func NewLocalStore(kv storage.KV, opts StoreOptions) *LocalStore {
	if opts.Key == "" {
		opts.Key = DefaultStorageKey
	}
	if opts.Seed == nil {
		gen := NewGenerator(nil)
		opts.Seed = func() []Product { return gen.Generate(DefaultSeedSize) }
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &LocalStore{kv: kv, key: opts.Key, seed: opts.Seed, log: opts.Log}
}

func (s *LocalStore) Key() string { return s.key }

func (s *LocalStore) revKey() string { return s.key + ":rev" }

func (s *LocalStore) Ping(ctx context.Context) error { return s.kv.Ping(ctx) }

// Read returns the persisted collection, seeding it first when the key is
// absent. A malformed blob is logged and replaced by a fresh, unpersisted
// seed.
func (s *LocalStore) Read(ctx context.Context) ([]Product, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}
	if !ok {
		if _, err := s.EnsureSeeded(ctx); err != nil {
			return nil, err
		}
		if raw, ok, err = s.kv.Get(ctx, s.key); err != nil {
			return nil, fmt.Errorf("read %s: %w", s.key, err)
		}
		if !ok {
			return []Product{}, nil
		}
	}

	var out []Product
	if err := json.Unmarshal(raw, &out); err != nil {
		s.log.Warn("stored catalog is malformed, using seed data",
			zap.String("key", s.key), zap.Error(err))
		return s.seed(), nil
	}
	if out == nil {
		out = []Product{}
	}
	return out, nil
}

func (s *LocalStore) Write(ctx context.Context, products []Product) error {
	if products == nil {
		products = []Product{}
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key, err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	if err := s.kv.Set(ctx, s.revKey(), []byte(uuid.NewString())); err != nil {
		return fmt.Errorf("write %s: %w", s.revKey(), err)
	}
	return nil
}

// EnsureSeeded writes seed data only when nothing is stored under the key.
// An empty array counts as stored.
func (s *LocalStore) EnsureSeeded(ctx context.Context) (bool, error) {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	_, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", s.key, err)
	}
	if ok {
		return false, nil
	}

	seed := s.seed()
	if err := s.Write(ctx, seed); err != nil {
		return false, err
	}
	s.log.Info("catalog seeded", zap.String("key", s.key), zap.Int("count", len(seed)))
	return true, nil
}

// Revision changes on every Write. Empty when nothing was written yet.
func (s *LocalStore) Revision(ctx context.Context) (string, error) {
	raw, ok, err := s.kv.Get(ctx, s.revKey())
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.revKey(), err)
	}
	if !ok {
		return "", nil
	}
	return string(raw), nil
}

func (s *LocalStore) Reset(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("delete %s: %w", s.key, err)
	}
	if err := s.kv.Delete(ctx, s.revKey()); err != nil {
		return fmt.Errorf("delete %s: %w", s.revKey(), err)
	}
	return nil
}
