package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"ProductAdmin/internal/storage"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string
	LogFile  string

	Storage    storage.Options
	StorageKey string

	Latency  time.Duration
	SeedSize int

	MetricsEnabled bool
	MetricsToken   string

	JWTSecret     string
	AdminUser     string
	AdminPassword string
	TokenTTL      time.Duration
}

// AuthEnabled reports whether mutating routes are guarded by admin login.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != "" && c.AdminPassword != ""
}

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []error
	cfg := &Config{
		Port:     getenv("PORT", "8082"),
		Env:      getenv("APP_ENV", "development"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		StorageKey: getenv("STORAGE_KEY", "products"),

		MetricsToken: os.Getenv("METRICS_TOKEN"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminUser:     getenv("ADMIN_USER", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	cfg.Storage.Driver = getenv("STORAGE_DRIVER", storage.DriverFile)
	cfg.Storage.DSN = os.Getenv("STORAGE_DSN")
	cfg.Storage.Path = getenv("STORAGE_PATH", storage.DefaultPath(cfg.Storage.Driver, "data"))

	var err error
	if cfg.Latency, err = getenvDuration("CATALOG_LATENCY", 500*time.Millisecond); err != nil {
		errs = append(errs, err)
	}
	if cfg.SeedSize, err = getenvInt("CATALOG_SEED_SIZE", 50); err != nil {
		errs = append(errs, err)
	}
	if cfg.MetricsEnabled, err = getenvBool("METRICS_ENABLED", true); err != nil {
		errs = append(errs, err)
	}
	if cfg.TokenTTL, err = getenvDuration("TOKEN_TTL", 15*time.Minute); err != nil {
		errs = append(errs, err)
	}

	if cfg.Latency < 0 {
		errs = append(errs, fmt.Errorf("CATALOG_LATENCY must not be negative"))
	}
	if cfg.SeedSize < 0 {
		errs = append(errs, fmt.Errorf("CATALOG_SEED_SIZE must not be negative"))
	}
	if cfg.Storage.Driver == storage.DriverPostgres && cfg.Storage.DSN == "" {
		errs = append(errs, fmt.Errorf("STORAGE_DSN required for driver %q", storage.DriverPostgres))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return ":" + c.Port }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func getenvDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}

func getenvBool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}
