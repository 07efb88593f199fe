/*
refresher.go - Automated dataset refresh

PURPOSE:
  Periodically checks a dataset file on disk and reloads the store when the
  file changes, so tuition and salary figures can be refreshed by dropping
  in a new file without restarting the server.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Reloads only when the file's modification time moves forward
  - An invalid file is logged and skipped; the current dataset stays

CONFIGURATION:
  - CheckInterval: How often to check (default: 5 minutes)
  - Enabled: Whether the refresher is active (default: true)

USAGE:
  refresher := NewDatasetRefresher(handler, "./data/dataset.json")
  refresher.Start()
  // ... later
  refresher.Stop()

SEE ALSO:
  - datasets.go: ReplaceDataset
  - catalog/dataset.go: file format
*/
package api

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/loan-projection/catalog"
)

// DatasetRefresher reloads a dataset file when it changes.
type DatasetRefresher struct {
	Handler       *Handler
	Path          string
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex // guards ticker and stop

	// checkMu serializes Check so manual and scheduled checks do not race.
	checkMu sync.Mutex
	lastMod time.Time
}

// NewDatasetRefresher creates a refresher for path.
func NewDatasetRefresher(handler *Handler, path string) *DatasetRefresher {
	return &DatasetRefresher{
		Handler:       handler,
		Path:          path,
		CheckInterval: 5 * time.Minute,
		Enabled:       true,
	}
}

// Start begins the refresher. The file is checked once immediately.
func (dr *DatasetRefresher) Start() {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	if !dr.Enabled || dr.ticker != nil {
		return
	}

	dr.ticker = time.NewTicker(dr.CheckInterval)
	dr.stop = make(chan struct{})
	dr.wg.Add(1)

	go dr.run(dr.ticker, dr.stop)

	dr.Handler.Logger.Info("dataset refresher started",
		zap.String("path", dr.Path),
		zap.Duration("interval", dr.CheckInterval),
	)
}

// Stop stops the refresher and waits for an in-flight reload.
func (dr *DatasetRefresher) Stop() {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	if dr.ticker != nil {
		dr.ticker.Stop()
		close(dr.stop)
		dr.wg.Wait()
		dr.ticker = nil
		dr.Handler.Logger.Info("dataset refresher stopped")
	}
}

func (dr *DatasetRefresher) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer dr.wg.Done()

	dr.checkAndReload()

	for {
		select {
		case <-ticker.C:
			dr.checkAndReload()
		case <-stop:
			return
		}
	}
}

func (dr *DatasetRefresher) checkAndReload() {
	reloaded, err := dr.Check(context.Background())
	if err != nil {
		dr.Handler.Logger.Warn("dataset refresh failed", zap.String("path", dr.Path), zap.Error(err))
		return
	}
	if reloaded {
		dr.Handler.Logger.Info("dataset refreshed", zap.String("path", dr.Path))
	}
}

// Check reloads the file if it changed since the last successful load.
func (dr *DatasetRefresher) Check(ctx context.Context) (bool, error) {
	dr.checkMu.Lock()
	defer dr.checkMu.Unlock()

	info, err := os.Stat(dr.Path)
	if err != nil {
		return false, fmt.Errorf("stat dataset: %w", err)
	}
	if !info.ModTime().After(dr.lastMod) {
		return false, nil
	}

	f, err := os.Open(dr.Path)
	if err != nil {
		return false, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := catalog.LoadDataset(f)
	if err != nil {
		// Do not retry the same broken file every tick
		dr.lastMod = info.ModTime()
		return false, err
	}
	if err := dr.Handler.ReplaceDataset(ctx, ds); err != nil {
		return false, err
	}

	dr.lastMod = info.ModTime()
	return true, nil
}
