/*
scheduler.go - Background flush of unsaved registry state

PURPOSE:
  When a save fails the registry keeps the change in memory and marks
  itself dirty. This scheduler periodically retries the save so storage
  catches up once the backend is reachable again, without waiting for
  the next mutation or a manual POST /api/admin/flush.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Does nothing while the registry is clean
  - Goes through Handler.FlushIfDirty, so it shares the request lock

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 minute)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewFlushScheduler(handler, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: Flush endpoint (manual flush)
  - timeoff/registry.go: dirty flag
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FlushScheduler retries failed saves in the background.
type FlushScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	logger zerolog.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewFlushScheduler creates a new scheduler.
func NewFlushScheduler(handler *Handler, logger zerolog.Logger) *FlushScheduler {
	return &FlushScheduler{
		Handler:       handler,
		CheckInterval: time.Minute,
		Enabled:       true,
		logger:        logger.With().Str("component", "flush-scheduler").Logger(),
	}
}

// Start begins the scheduler. Calling Start twice is a no-op.
func (fs *FlushScheduler) Start() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if !fs.Enabled {
		fs.logger.Info().Msg("disabled, not starting")
		return
	}
	if fs.ticker != nil {
		return
	}

	fs.ticker = time.NewTicker(fs.CheckInterval)
	fs.stop = make(chan struct{})
	fs.wg.Add(1)

	go fs.run(fs.ticker, fs.stop)

	fs.logger.Info().Dur("interval", fs.CheckInterval).Msg("started")
}

// Stop stops the scheduler and waits for an in-flight flush.
func (fs *FlushScheduler) Stop() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.ticker != nil {
		fs.ticker.Stop()
		close(fs.stop)
		fs.wg.Wait()
		fs.ticker = nil
		fs.logger.Info().Msg("stopped")
	}
}

func (fs *FlushScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer fs.wg.Done()

	for {
		select {
		case <-ticker.C:
			fs.CheckAndFlush(context.Background())
		case <-stop:
			return
		}
	}
}

// CheckAndFlush performs one check. It reports whether a flush was
// attempted and whether it succeeded.
func (fs *FlushScheduler) CheckAndFlush(ctx context.Context) (attempted, ok bool) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	attempted, err := fs.Handler.FlushIfDirty(ctx)
	if !attempted {
		return false, true
	}
	if err != nil {
		fs.logger.Warn().Err(err).Msg("flush of unsaved changes failed, will retry")
		return true, false
	}
	fs.logger.Info().Msg("unsaved changes flushed")
	return true, true
}
