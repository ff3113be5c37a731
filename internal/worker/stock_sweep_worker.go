package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// SnapshotRefresher reloads products and reconciles every session against them.
type SnapshotRefresher interface {
	RefreshSnapshot(ctx context.Context) error
}

// SessionEvicter drops alert sessions that have gone quiet.
type SessionEvicter interface {
	EvictIdle(maxIdle time.Duration) int
}

// StockSweepWorker periodically re-reads the catalog so stock changed outside
// the API (imports, manual SQL) still raises and retracts alerts. It also
// evicts idle alert sessions.
type StockSweepWorker struct {
	products  SnapshotRefresher
	sessions  SessionEvicter
	interval  time.Duration
	idleAfter time.Duration
}

// NewStockSweepWorker constructs a StockSweepWorker.
func NewStockSweepWorker(products SnapshotRefresher, sessions SessionEvicter, interval, idleAfter time.Duration) *StockSweepWorker {
	return &StockSweepWorker{
		products:  products,
		sessions:  sessions,
		interval:  interval,
		idleAfter: idleAfter,
	}
}

// Start begins the sweep loop until context is canceled. A zero interval
// disables the worker.
func (w *StockSweepWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		log.Info().Msg("Stock sweep worker disabled")
		return
	}

	log.Info().
		Dur("interval", w.interval).
		Dur("idle_after", w.idleAfter).
		Msg("Starting stock sweep worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Stock sweep worker stopped")
			return
		}
	}
}

func (w *StockSweepWorker) run(ctx context.Context) {
	if err := w.products.RefreshSnapshot(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to refresh product snapshot")
	}

	if evicted := w.sessions.EvictIdle(w.idleAfter); evicted > 0 {
		log.Info().Int("evicted", evicted).Msg("Evicted idle alert sessions")
	}
}
