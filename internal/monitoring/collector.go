package monitoring

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"datamover/internal/connect"
	"datamover/internal/monitoring/metrics"
	"datamover/internal/pipeline"
	"datamover/internal/realtime"
)

// Pipelines is the slice of the pipeline store the collector needs: listing
// what to poll and reconciling statuses the dashboard got wrong.
type Pipelines interface {
	List(ctx context.Context) ([]pipeline.Pipeline, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status pipeline.Status, updatedAt time.Time) error
}

// Broadcaster pushes change events to live dashboard subscribers.
type Broadcaster interface {
	Broadcast(event realtime.Event)
}

// CollectorConfig carries the collector's tunables.
type CollectorConfig struct {
	Interval    time.Duration
	MaxParallel int
	Retention   time.Duration
}

// Collector polls Kafka Connect for every deployed pipeline on a fixed
// interval, fanning the status fetches out with a bounded errgroup. Each
// sweep records a time-series point per pipeline, refreshes the snapshot
// cache, updates gauges, and broadcasts state transitions.
type Collector struct {
	pipelines Pipelines
	connect   connect.Client
	store     Store
	cache     *SnapshotCache
	lag       LagFetcher
	hub       Broadcaster
	logger    *slog.Logger
	metrics   *metrics.Metrics
	cfg       CollectorConfig

	lastStates  map[uuid.UUID]string
	lastCleanup time.Time
}

func NewCollector(pipelines Pipelines, client connect.Client, store Store, cache *SnapshotCache, lag LagFetcher, hub Broadcaster, logger *slog.Logger, m *metrics.Metrics, cfg CollectorConfig) *Collector {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 8
	}
	return &Collector{
		pipelines:  pipelines,
		connect:    client,
		store:      store,
		cache:      cache,
		lag:        lag,
		hub:        hub,
		logger:     logger,
		metrics:    m,
		cfg:        cfg,
		lastStates: make(map[uuid.UUID]string),
	}
}

// Run sweeps until ctx is cancelled.
func (c *Collector) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()
	for {
		c.sweep(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Collector) sweep(ctx context.Context) {
	start := time.Now()

	all, err := c.pipelines.List(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "collector failed to list pipelines", "error", err)
		return
	}
	var deployed []pipeline.Pipeline
	for _, p := range all {
		if p.Deployed() && p.Status != pipeline.StatusDeletedPending {
			deployed = append(deployed, p)
		}
	}

	snaps := make([]Snapshot, len(deployed))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.MaxParallel)
	for i, p := range deployed {
		g.Go(func() error {
			snaps[i] = c.collectOne(gctx, p)
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return
	}

	points := make([]Point, 0, len(snaps))
	for i, snap := range snaps {
		c.process(ctx, deployed[i], snap)
		points = append(points, snap.Point())
	}
	if err := c.store.Insert(ctx, points); err != nil {
		c.logger.ErrorContext(ctx, "failed to persist status points", "error", err)
	}

	c.cleanupIfDue(ctx)
	c.metrics.ObserveSweep(time.Since(start).Seconds())
}

func (c *Collector) collectOne(ctx context.Context, p pipeline.Pipeline) Snapshot {
	snap := Snapshot{
		PipelineID: p.ID,
		RecordedAt: time.Now().UTC(),
	}
	snap.Source = c.health(ctx, p.SourceConnector())
	snap.Sink = c.health(ctx, p.SinkConnector())
	snap.State = deriveState(snap.Source, snap.Sink)

	if c.lag != nil && snap.State != StateUnknown {
		lag, err := c.lag.Lag(ctx, "connect-"+p.SinkConnector())
		if err != nil {
			c.logger.DebugContext(ctx, "failed to fetch sink lag",
				"pipeline_id", p.ID,
				"error", err,
			)
		} else {
			snap.Lag = lag
		}
	}
	return snap
}

func (c *Collector) health(ctx context.Context, name string) ConnectorHealth {
	status, err := c.connect.ConnectorStatus(ctx, name)
	if err != nil {
		c.metrics.IncSweepError()
		c.logger.WarnContext(ctx, "failed to fetch connector status",
			"connector", name,
			"error", err,
		)
		return ConnectorHealth{Name: name}
	}

	h := ConnectorHealth{
		Name:         name,
		State:        status.Connector.State,
		TasksTotal:   len(status.Tasks),
		TasksRunning: status.RunningTasks(),
		TasksFailed:  status.FailedTasks(),
	}
	for _, t := range status.Tasks {
		if t.State == connect.StateFailed && t.Trace != "" {
			h.Trace = t.Trace
			break
		}
	}
	return h
}

func (c *Collector) process(ctx context.Context, p pipeline.Pipeline, snap Snapshot) {
	if c.cache != nil {
		if err := c.cache.Set(ctx, snap); err != nil {
			c.logger.WarnContext(ctx, "failed to cache snapshot",
				"pipeline_id", p.ID,
				"error", err,
			)
		}
	}
	c.metrics.SetPipelineGauges(p.ID.String(),
		snap.Source.TasksRunning+snap.Sink.TasksRunning,
		snap.Source.TasksFailed+snap.Sink.TasksFailed,
		snap.Lag)

	if prev, ok := c.lastStates[p.ID]; ok && prev != snap.State && c.hub != nil {
		c.hub.Broadcast(realtime.Event{
			Type:       "monitoring.state_changed",
			Resource:   "pipeline",
			ResourceID: p.ID.String(),
			Payload:    snap,
		})
	}
	c.lastStates[p.ID] = snap.State

	c.reconcile(ctx, p, snap.State)
}

// reconcile folds observed connector state back into the pipeline record.
// Transitional statuses (deploying, deleted-pending) and unknown observations
// are left alone.
func (c *Collector) reconcile(ctx context.Context, p pipeline.Pipeline, state string) {
	var observed pipeline.Status
	switch state {
	case StateRunning:
		observed = pipeline.StatusRunning
	case StatePaused:
		observed = pipeline.StatusPaused
	case StateFailed:
		observed = pipeline.StatusFailed
	default:
		return
	}

	steady := p.Status == pipeline.StatusRunning ||
		p.Status == pipeline.StatusPaused ||
		p.Status == pipeline.StatusFailed
	if !steady || p.Status == observed {
		return
	}

	if err := c.pipelines.UpdateStatus(ctx, p.ID, observed, time.Now().UTC()); err != nil {
		c.logger.WarnContext(ctx, "failed to reconcile pipeline status",
			"pipeline_id", p.ID,
			"observed", observed,
			"error", err,
		)
		return
	}
	c.logger.InfoContext(ctx, "reconciled pipeline status",
		"pipeline_id", p.ID,
		"from", p.Status,
		"to", observed,
	)
}

func (c *Collector) cleanupIfDue(ctx context.Context) {
	if c.cfg.Retention <= 0 || time.Since(c.lastCleanup) < time.Hour {
		return
	}
	c.lastCleanup = time.Now()

	deleted, err := c.store.DeleteOlderThan(ctx, time.Now().Add(-c.cfg.Retention))
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to delete expired status points", "error", err)
		return
	}
	if deleted > 0 {
		c.logger.InfoContext(ctx, "deleted expired status points", "count", deleted)
	}
}
