package core

// sync.go keeps the in-memory table store in step with the backing source.
//
// A background goroutine polls the source's version marker on a fixed
// interval. When the marker moves (or the source has no cheap staleness
// signal), the controller fetches every sheet, normalizes it, derives the
// stock table if the source supplied none, and swaps all tables into the
// store in one atomic step. A failed cycle leaves the previous in-memory
// data untouched and retries on the next tick.

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// SyncState is the sync controller's lifecycle state.
type SyncState int32

const (
	SyncIdle SyncState = iota
	SyncLoading
	SyncFailed
)

// String returns the lowercase state name.
func (s SyncState) String() string {
	switch s {
	case SyncIdle:
		return "idle"
	case SyncLoading:
		return "loading"
	case SyncFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SyncController orchestrates load cycles from the backend into the store.
type SyncController struct {
	store    *TableStore
	backend  Backend
	interval time.Duration

	state atomic.Int32

	mu         sync.Mutex
	lastMarker string
	lastSync   time.Time
}

// NewSyncController creates a controller polling at the given interval.
func NewSyncController(store *TableStore, backend Backend, interval time.Duration) *SyncController {
	return &SyncController{
		store:    store,
		backend:  backend,
		interval: interval,
	}
}

// State returns the controller's current state.
func (c *SyncController) State() SyncState {
	return SyncState(c.state.Load())
}

// LastSync returns the time of the last successful load cycle.
func (c *SyncController) LastSync() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSync
}

// Start runs the polling loop until the context is cancelled.
// The first cycle runs immediately, then every interval.
func (c *SyncController) Start(ctx context.Context) {
	slog.Info("sync controller started", "interval", c.interval)

	if err := c.SyncOnce(ctx); err != nil {
		slog.Warn("initial sync failed, serving stale data until the source recovers", "error", err)
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync controller stopped")
			return
		case <-ticker.C:
			if err := c.SyncOnce(ctx); err != nil {
				slog.Error("sync cycle failed", "error", err)
			}
		}
	}
}

// SyncOnce performs one staleness check and, if the source changed, a full
// load cycle. A marker equal to the last synced value skips the cycle; an
// empty marker means the source cannot report staleness and always reloads.
func (c *SyncController) SyncOnce(ctx context.Context) error {
	marker, err := c.backend.VersionMarker(ctx)
	if err != nil {
		c.state.Store(int32(SyncFailed))
		return fmt.Errorf("check version marker: %w", err)
	}

	c.mu.Lock()
	unchanged := marker != "" && marker == c.lastMarker
	c.mu.Unlock()
	if unchanged {
		return nil
	}

	cycleID := uuid.New().String()
	c.state.Store(int32(SyncLoading))
	start := time.Now()

	tables, err := c.loadAll(ctx)
	if err != nil {
		c.state.Store(int32(SyncFailed))
		return fmt.Errorf("load cycle %s: %w", cycleID, err)
	}

	c.store.Swap(tables)

	c.mu.Lock()
	c.lastMarker = marker
	c.lastSync = time.Now()
	c.mu.Unlock()
	c.state.Store(int32(SyncIdle))

	slog.Info("sync cycle complete",
		"cycle_id", cycleID,
		"tables", len(tables),
		"stock_rows", len(tables[TableStock]),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// loadAll fetches and normalizes every registered table, deriving the stock
// table from the logs when the source supplied an empty one.
func (c *SyncController) loadAll(ctx context.Context) (map[string][]Row, error) {
	raw, err := c.backend.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	tables := make(map[string][]Row, TableCount())
	for _, def := range All() {
		tables[def.Info.Key] = NormalizeTable(def, raw[def.Info.Key])
	}

	if len(tables[TableStock]) == 0 {
		derived := DeriveStock(tables[TableRefills], tables[TableSales])
		tables[TableStock] = derived
		slog.Info("stock table absent in source, derived from logs",
			"refill_rows", len(tables[TableRefills]),
			"sales_rows", len(tables[TableSales]),
			"derived_rows", len(derived),
		)
	}

	return tables, nil
}

// RefreshMarker re-reads the source's version marker and records it as the
// last-synced value. Called after a local persist so the controller does not
// mistake its own write for an external edit.
func (c *SyncController) RefreshMarker(ctx context.Context) {
	marker, err := c.backend.VersionMarker(ctx)
	if err != nil {
		slog.Warn("could not refresh version marker after persist", "error", err)
		return
	}
	c.mu.Lock()
	c.lastMarker = marker
	c.mu.Unlock()
}
