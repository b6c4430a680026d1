package publisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"datamover/internal/activity"
	"datamover/internal/activity/metrics"
	"datamover/pkg/platform/circuit"
)

// EventPublisher is the Kafka sink; tests substitute a fake.
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Worker drains the activity outbox to Kafka on a fixed interval. Entries
// stay pending until the broker confirms them, so a broker outage only delays
// delivery. While the breaker is open each tick sends a single probe entry
// instead of a full batch.
type Worker struct {
	store     activity.OutboxStore
	publisher EventPublisher
	sampler   *Sampler
	breaker   *circuit.Breaker
	metrics   *metrics.Metrics
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

func NewWorker(store activity.OutboxStore, pub EventPublisher, sampler *Sampler, logger *slog.Logger, m *metrics.Metrics, interval time.Duration, batchSize int) *Worker {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Worker{
		store:     store,
		publisher: pub,
		sampler:   sampler,
		breaker:   circuit.New("activity-publisher"),
		metrics:   m,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run drains until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// outboxAction peeks the action type out of a staged payload for sampling and
// keying.
type outboxAction struct {
	ActionType string `json:"action_type"`
	ResourceID string `json:"resource_id"`
}

func (w *Worker) drain(ctx context.Context) {
	limit := w.batchSize
	if w.breaker.IsOpen() {
		limit = 1
	}

	entries, err := w.store.PendingOutbox(ctx, limit)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to read activity outbox", "error", err)
		return
	}
	if len(entries) == 0 {
		return
	}

	done := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		var meta outboxAction
		_ = json.Unmarshal(entry.Payload, &meta)

		if w.sampler != nil && !w.sampler.ShouldPublish(meta.ActionType) {
			// Sampled-out entries are marked published so they don't
			// accumulate; the record itself stays queryable in Postgres.
			w.metrics.IncSampled()
			done = append(done, entry.ID)
			continue
		}

		if err := w.publisher.Publish(ctx, meta.ResourceID, entry.Payload); err != nil {
			w.metrics.IncPublishFailures()
			if _, change := w.breaker.RecordFailure(); change.Opened {
				w.logger.WarnContext(ctx, "activity publisher circuit opened", "error", err)
			}
			break
		}
		w.breaker.RecordSuccess()
		done = append(done, entry.ID)
	}

	if len(done) == 0 {
		return
	}
	if err := w.store.MarkPublished(ctx, done); err != nil {
		// Entries will be re-published next tick; consumers must tolerate
		// duplicates.
		w.logger.ErrorContext(ctx, "failed to mark outbox entries published", "error", err)
		return
	}
	w.metrics.AddPublished(len(done))
}
