package catalog

import (
	"context"
	"math/rand/v2"
	"testing"

	"go.uber.org/zap"

	"ProductAdmin/internal/storage"
)

func fixedGenerator() *Generator {
	return NewGenerator(rand.New(rand.NewPCG(1, 2)))
}

func newTestStore(t *testing.T, kv storage.KV, seedSize int) *LocalStore {
	t.Helper()

	gen := fixedGenerator()
	return NewLocalStore(kv, StoreOptions{
		Seed: func() []Product { return gen.Generate(seedSize) },
		Log:  zap.NewNop(),
	})
}

func newTestService(t *testing.T, seedSize int) (*Service, *storage.MemKV) {
	t.Helper()

	kv := storage.NewMemKV()
	return NewService(newTestStore(t, kv, seedSize), zap.NewNop(), 0), kv
}

func mustAll(t *testing.T, svc *Service) []Product {
	t.Helper()

	all, err := svc.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	return all
}

func ptr[T any](v T) *T { return &v }
