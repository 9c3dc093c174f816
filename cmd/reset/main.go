// Command reset drops the persisted product collection and writes a fresh
// seed in its place.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"ProductAdmin/internal/catalog"
	"ProductAdmin/internal/config"
	"ProductAdmin/internal/storage"
	"ProductAdmin/pkg/kit"
)

func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := kit.NewLogger(kit.LogConfig{Service: "reset", Level: cfg.LogLevel, Env: cfg.Env})
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	err = run(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatal("reset failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	kv, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() { _ = kv.Close() }()

	gen := catalog.NewGenerator(nil)
	store := catalog.NewLocalStore(kv, catalog.StoreOptions{
		Key:  cfg.StorageKey,
		Seed: func() []catalog.Product { return gen.Generate(cfg.SeedSize) },
		Log:  log,
	})
	svc := catalog.NewService(store, log, 0)

	if err := svc.Reset(ctx); err != nil {
		return err
	}

	rev, err := svc.Revision(ctx)
	if err != nil {
		return err
	}
	log.Info("catalog reset",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("key", cfg.StorageKey),
		zap.Int("seed_size", cfg.SeedSize),
		zap.String("revision", rev),
	)
	return nil
}
