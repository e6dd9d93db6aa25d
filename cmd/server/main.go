/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the absence tracker server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Resolve configuration (flags, environment, .env)
  2. Open the configured key-value store, optionally behind a circuit breaker
  3. Load the personnel registry from the store
  4. Create API handler, flush scheduler and router
  5. Serve until SIGINT/SIGTERM

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: absence.db)
           Use ":memory:" for in-memory database
  -store   memory | sqlite | redis (default: sqlite)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the flush scheduler and try a last flush
  4. Close the store

EXAMPLES:
  ./server -db="./data/absence.db"
  ./server -store=memory -port=3000
  ABSENCE_STORE=redis ABSENCE_REDIS_URL=redis://localhost:6379/0 ./server

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - timeoff/registry.go: Personnel registry
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/warp/absence-tracker/api"
	"github.com/warp/absence-tracker/config"
	"github.com/warp/absence-tracker/generic"
	"github.com/warp/absence-tracker/generic/store"
	"github.com/warp/absence-tracker/logging"
	"github.com/warp/absence-tracker/metrics"
	"github.com/warp/absence-tracker/store/breaker"
	"github.com/warp/absence-tracker/store/redis"
	"github.com/warp/absence-tracker/store/sqlite"
	"github.com/warp/absence-tracker/timeoff"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize store
	kv, health, closer, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	defer closer.Close()

	if cfg.Breaker {
		kv = breaker.New(kv, breaker.Settings{Name: cfg.Store}, logger)
	}

	// Initialize registry
	m := metrics.New()
	registry := timeoff.NewRegistry(
		timeoff.NewRepository(kv),
		timeoff.WithLogger(logger),
		timeoff.WithMetrics(m),
	)
	if err := registry.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("starting with an empty registry")
	}

	// Initialize handler
	handler := api.NewHandler(registry, logger)
	handler.StoreName = cfg.Store
	handler.StoreHealth = health

	scheduler := api.NewFlushScheduler(handler, logger)
	if cfg.FlushInterval > 0 {
		scheduler.CheckInterval = cfg.FlushInterval
	} else {
		scheduler.Enabled = false
	}
	scheduler.Start()

	router := api.NewRouter(handler, api.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
		Metrics:        m,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Int("port", cfg.Port).Str("store", cfg.Store).Int("people", registry.Len()).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)

		scheduler.Stop()
		if attempted, ok := scheduler.CheckAndFlush(shutdownCtx); attempted && !ok {
			logger.Error().Msg("unsaved changes lost on shutdown")
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// openStore returns the configured store, its health probe and a closer.
func openStore(ctx context.Context, cfg config.Config) (generic.KVStore, func(context.Context) error, io.Closer, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return store.NewMemory(), nil, io.NopCloser(nil), nil
	case config.StoreSQLite:
		s, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, s.Ping, s, nil
	case config.StoreRedis:
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		s, err := redis.New(dialCtx, redis.Config{
			URL:         cfg.RedisURL,
			KeyPrefix:   "absence:",
			DialTimeout: 5 * time.Second,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return s, s.Health, s, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
