package main

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"ProductAdmin/internal/auth"
	"ProductAdmin/internal/catalog"
	"ProductAdmin/internal/config"
	"ProductAdmin/internal/storage"
	"ProductAdmin/pkg/kit"
)

const service = "catalog"

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := kit.NewLogger(kit.LogConfig{
		Service: service,
		Level:   cfg.LogLevel,
		Env:     cfg.Env,
		File:    cfg.LogFile,
	})
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(context.Background(), cfg, log); err != nil {
		log.Fatal("catalog stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	kv, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() { _ = kv.Close() }()

	log.Info("storage opened",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("path", cfg.Storage.Path),
		zap.String("key", cfg.StorageKey),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	gen := catalog.NewGenerator(nil)
	store := catalog.NewLocalStore(kv, catalog.StoreOptions{
		Key:  cfg.StorageKey,
		Seed: func() []catalog.Product { return gen.Generate(cfg.SeedSize) },
		Log:  log.Named("store"),
	})

	svc := catalog.NewService(store, log.Named("service"), cfg.Latency)
	svc.Metrics = catalog.NewMetrics(reg)

	container := catalog.NewContainer(svc, log.Named("state"))
	if err := container.Init(ctx); err != nil {
		return err
	}

	srv := &catalog.Server{Service: svc, Container: container, Log: log}
	deps := catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	}

	if cfg.AuthEnabled() {
		authSrv, err := newAuth(cfg, log)
		if err != nil {
			return err
		}
		srv.Guard = auth.RequireAdmin(authSrv.JWT)
		deps.Auth = authSrv.Routes()
		log.Info("admin auth enabled", zap.String("user", cfg.AdminUser))
	} else {
		log.Warn("admin auth disabled; mutating routes are open")
	}

	return kit.RunHTTPServer(ctx, cfg.Addr(), catalog.NewHandler(srv, deps), log)
}

func newAuth(cfg *config.Config, log *zap.Logger) (*auth.Server, error) {
	admin, err := auth.NewAdmin(cfg.AdminUser, cfg.AdminPassword)
	if err != nil {
		return nil, err
	}
	return auth.NewServer(log.Named("auth"), admin, auth.NewTokenMaker(cfg.JWTSecret), cfg.TokenTTL), nil
}
