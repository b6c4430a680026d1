package monitoring

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"datamover/internal/monitoring/metrics"
	dErrors "datamover/pkg/domain-errors"
)

// Service serves monitoring queries. Snapshots come from the Redis cache
// when fresh and fall back to the newest stored point.
type Service struct {
	store   Store
	cache   *SnapshotCache
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, cache *SnapshotCache, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		cache:   cache,
		logger:  logger,
		metrics: m,
	}
}

// Timeseries returns bucketed samples for one pipeline over the window.
func (s *Service) Timeseries(ctx context.Context, pipelineID uuid.UUID, window, step time.Duration) ([]Bucket, error) {
	if window <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "window must be positive")
	}
	if step <= 0 || step > window {
		return nil, dErrors.New(dErrors.CodeBadRequest, "step must be positive and at most the window")
	}
	buckets, err := s.store.Timeseries(ctx, pipelineID, time.Now().Add(-window), step)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to query timeseries", err)
	}
	return buckets, nil
}

// Summary aggregates the latest state of every pipeline.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	summary, err := s.store.Summary(ctx)
	if err != nil {
		return Summary{}, dErrors.Wrap(dErrors.CodeInternal, "failed to query status summary", err)
	}
	return summary, nil
}

// Snapshot returns the freshest known health picture for one pipeline.
func (s *Service) Snapshot(ctx context.Context, pipelineID uuid.UUID) (Snapshot, error) {
	if s.cache != nil {
		snap, err := s.cache.Get(ctx, pipelineID)
		if err == nil {
			s.metrics.IncCacheHit()
			return snap, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.WarnContext(ctx, "snapshot cache read failed",
				"pipeline_id", pipelineID,
				"error", err,
			)
		}
		s.metrics.IncCacheMiss()
	}

	point, err := s.store.Latest(ctx, pipelineID)
	if errors.Is(err, ErrNoData) {
		return Snapshot{}, dErrors.New(dErrors.CodeNotFound, "no monitoring data for pipeline")
	}
	if err != nil {
		return Snapshot{}, dErrors.Wrap(dErrors.CodeInternal, "failed to query latest status", err)
	}

	// A point carries less detail than a cached snapshot; per-connector
	// health is only available while the cache entry is live.
	return Snapshot{
		PipelineID: point.PipelineID,
		State:      point.State,
		Lag:        point.Lag,
		RecordedAt: point.RecordedAt,
		Source: ConnectorHealth{
			TasksTotal:   point.TasksTotal,
			TasksRunning: point.TasksRunning,
			TasksFailed:  point.TasksFailed,
		},
	}, nil
}
