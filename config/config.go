/*
Package config loads server configuration from the environment.

PURPOSE:
  One place for every knob of the server binary. Values come from
  LOAN_PROJECTION_* environment variables with defaults; cmd/server then
  lets command-line flags override them.

VARIABLES:
  LOAN_PROJECTION_PORT              HTTP port (8080)
  LOAN_PROJECTION_DB                SQLite path (./data/catalog.db)
  LOAN_PROJECTION_REDIS_ADDR        Redis address; empty = in-process cache
  LOAN_PROJECTION_CACHE_TTL         lookup cache TTL (10m)
  LOAN_PROJECTION_ASSUMPTIONS       assumptions JSON file; empty = defaults
  LOAN_PROJECTION_DATASET           dataset seeded into an empty store (default)
  LOAN_PROJECTION_SEED              seed an empty store on start (true)
  LOAN_PROJECTION_DATASET_FILE      dataset JSON reloaded when it changes; empty = off
  LOAN_PROJECTION_REFRESH_INTERVAL  how often the dataset file is checked (5m)
  LOAN_PROJECTION_LOG_LEVEL         debug, info, warn, error (info)
  LOAN_PROJECTION_RATE_LIMIT        calculation requests per window per client (60)
  LOAN_PROJECTION_RATE_WINDOW       refill window (1m)
  LOAN_PROJECTION_ALLOWED_ORIGINS   comma-separated CORS origins

SEE ALSO:
  - cmd/server/main.go: flags and wiring
*/
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the server configuration.
type Config struct {
	Port            int           `env:"LOAN_PROJECTION_PORT" envDefault:"8080"`
	DBPath          string        `env:"LOAN_PROJECTION_DB" envDefault:"./data/catalog.db"`
	RedisAddr       string        `env:"LOAN_PROJECTION_REDIS_ADDR"`
	CacheTTL        time.Duration `env:"LOAN_PROJECTION_CACHE_TTL" envDefault:"10m"`
	AssumptionsPath string        `env:"LOAN_PROJECTION_ASSUMPTIONS"`
	Dataset         string        `env:"LOAN_PROJECTION_DATASET" envDefault:"default"`
	SeedOnStart     bool          `env:"LOAN_PROJECTION_SEED" envDefault:"true"`
	DatasetFile     string        `env:"LOAN_PROJECTION_DATASET_FILE"`
	RefreshInterval time.Duration `env:"LOAN_PROJECTION_REFRESH_INTERVAL" envDefault:"5m"`
	LogLevel        string        `env:"LOAN_PROJECTION_LOG_LEVEL" envDefault:"info"`
	RateLimit       int           `env:"LOAN_PROJECTION_RATE_LIMIT" envDefault:"60"`
	RateWindow      time.Duration `env:"LOAN_PROJECTION_RATE_WINDOW" envDefault:"1m"`
	AllowedOrigins  []string      `env:"LOAN_PROJECTION_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	case c.DBPath == "":
		return fmt.Errorf("%w: database path is required", ErrInvalidConfig)
	case c.CacheTTL < 0:
		return fmt.Errorf("%w: cache TTL must not be negative", ErrInvalidConfig)
	case c.RateLimit <= 0 || c.RateWindow <= 0:
		return fmt.Errorf("%w: rate limit and window must be positive", ErrInvalidConfig)
	case c.DatasetFile != "" && c.RefreshInterval <= 0:
		return fmt.Errorf("%w: refresh interval must be positive", ErrInvalidConfig)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// NewLogger builds a production JSON logger at the given level.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
