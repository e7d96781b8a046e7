package worker

import (
	"context"
	"log/slog"
	"time"
)

// CatalogRefresher defines the interface for re-validating symbol mappings.
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}

// CatalogWorker periodically re-validates the persisted symbol catalog
// against the upstream providers.
type CatalogWorker struct {
	refresher CatalogRefresher
	interval  time.Duration
}

// NewCatalogWorker creates a new CatalogWorker.
func NewCatalogWorker(refresher CatalogRefresher, interval time.Duration) *CatalogWorker {
	return &CatalogWorker{
		refresher: refresher,
		interval:  interval,
	}
}

// Run starts the catalog worker loop. It blocks until the context is cancelled.
func (w *CatalogWorker) Run(ctx context.Context) {
	slog.Info("CatalogWorker: starting")

	// Refresh immediately on startup
	if err := w.refresher.Refresh(ctx); err != nil {
		slog.Error("CatalogWorker: initial refresh failed", "error", err)
	} else {
		slog.Info("CatalogWorker: initial refresh completed")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("CatalogWorker: shutting down")
			return
		case <-ticker.C:
			if err := w.refresher.Refresh(ctx); err != nil {
				slog.Error("CatalogWorker: refresh failed", "error", err)
			} else {
				slog.Info("CatalogWorker: refresh completed")
			}
		}
	}
}
