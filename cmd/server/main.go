/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the student loan projection server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (environment, then flags)
  2. Initialize logger
  3. Initialize SQLite store
  4. Connect the lookup cache (Redis, or in-process)
  5. Load projection assumptions
  6. Create API handler and seed an empty store
  7. Start the dataset refresher, if a dataset file is configured
  8. Configure HTTP router and start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port          HTTP server port (overrides LOAN_PROJECTION_PORT)
  -db            SQLite database path (overrides LOAN_PROJECTION_DB)
                 Use ":memory:" for in-memory database
  -redis         Redis address (overrides LOAN_PROJECTION_REDIS_ADDR)
  -assumptions   Assumptions JSON file (overrides LOAN_PROJECTION_ASSUMPTIONS)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the refresher and rate limiter
  4. Close cache and database connections
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/catalog.db"

  # Run with in-memory database and a shared cache
  ./server -db=":memory:" -redis="localhost:6379"

  # Run on different port with custom assumptions
  ./server -port=3000 -assumptions=./assumptions.json

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/loan-projection/api"
	"github.com/warp/loan-projection/catalog"
	"github.com/warp/loan-projection/config"
	"github.com/warp/loan-projection/factory"
	"github.com/warp/loan-projection/projection"
	"github.com/warp/loan-projection/store/memory"
	"github.com/warp/loan-projection/store/redis"
	"github.com/warp/loan-projection/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override the environment
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address (empty for in-process cache)")
	flag.StringVar(&cfg.AssumptionsPath, "assumptions", cfg.AssumptionsPath, "Assumptions JSON file")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	// Initialize store
	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	cache := newCache(cfg, logger)
	if c, ok := cache.(io.Closer); ok {
		defer c.Close()
	}

	assumptions, err := loadAssumptions(cfg.AssumptionsPath)
	if err != nil {
		return err
	}

	// Initialize handler
	handler := api.NewHandler(store, cache, cfg.CacheTTL, assumptions, logger)

	if cfg.SeedOnStart {
		ds, err := catalog.Embedded(cfg.Dataset)
		if err != nil {
			return fmt.Errorf("failed to read seed dataset: %w", err)
		}
		seeded, err := handler.SeedIfEmpty(context.Background(), ds)
		if err != nil {
			return fmt.Errorf("failed to seed dataset: %w", err)
		}
		if !seeded {
			logger.Info("store already populated, skipping seed")
		}
	}

	if cfg.DatasetFile != "" {
		refresher := api.NewDatasetRefresher(handler, cfg.DatasetFile)
		refresher.CheckInterval = cfg.RefreshInterval
		refresher.Start()
		defer refresher.Stop()
	}

	limiter := api.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	defer limiter.Stop()

	// Create router
	router := api.NewRouter(handler, api.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		Limiter:        limiter,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Port),
			zap.String("api", fmt.Sprintf("http://localhost:%d/api", cfg.Port)),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// newCache connects to Redis when configured, falling back to an
// in-process cache when it is unreachable.
func newCache(cfg config.Config, logger *zap.Logger) catalog.Cache {
	if cfg.RedisAddr == "" {
		return memory.NewCache()
	}

	rc := redis.New(cfg.RedisAddr)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, using in-process cache",
			zap.String("addr", cfg.RedisAddr),
			zap.Error(err),
		)
		rc.Close()
		return memory.NewCache()
	}

	logger.Info("using redis cache", zap.String("addr", cfg.RedisAddr))
	return rc
}

func loadAssumptions(path string) (projection.Assumptions, error) {
	f := factory.NewAssumptionsFactory()
	if path == "" {
		return f.Defaults(), nil
	}
	a, err := f.LoadFile(path)
	if err != nil {
		return projection.Assumptions{}, fmt.Errorf("failed to load assumptions: %w", err)
	}
	return a, nil
}
