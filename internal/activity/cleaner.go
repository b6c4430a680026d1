package activity

import (
	"context"
	"log/slog"
	"time"

	"datamover/internal/activity/metrics"
)

// Cleaner periodically removes records older than the retention window. It is
// the only thing that ever deletes activity data.
type Cleaner struct {
	store     Store
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewCleaner(store Store, retention, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) *Cleaner {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Cleaner{
		store:     store,
		retention: retention,
		interval:  interval,
		logger:    logger,
		metrics:   m,
	}
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (c *Cleaner) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *Cleaner) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-c.retention)
	removed, err := c.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		c.logger.ErrorContext(ctx, "activity retention sweep failed", "error", err)
		return
	}
	if removed > 0 {
		c.metrics.AddCleaned(removed)
		c.logger.InfoContext(ctx, "activity retention sweep",
			"removed", removed,
			"cutoff", cutoff,
		)
	}
}
