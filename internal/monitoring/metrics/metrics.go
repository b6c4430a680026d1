// Package metrics provides observability for the monitoring collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for status collection.
type Metrics struct {
	Sweeps       prometheus.Counter
	SweepErrors  prometheus.Counter
	SweepSeconds prometheus.Histogram
	TasksRunning *prometheus.GaugeVec
	TasksFailed  *prometheus.GaugeVec
	Lag          *prometheus.GaugeVec
	CacheHits    prometheus.Counter
	CacheMisses  prometheus.Counter
}

// New creates a Metrics instance with all monitoring metrics registered.
func New() *Metrics {
	return &Metrics{
		Sweeps: promauto.NewCounter(prometheus.CounterOpts{
			Name: "datamover_monitor_sweeps_total",
			Help: "Total collector sweeps",
		}),
		SweepErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "datamover_monitor_sweep_errors_total",
			Help: "Total pipeline status fetches that failed during a sweep",
		}),
		SweepSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "datamover_monitor_sweep_duration_seconds",
			Help:    "Duration of one full collector sweep",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		TasksRunning: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "datamover_pipeline_tasks_running",
			Help: "Running connector tasks per pipeline",
		}, []string{"pipeline_id"}),
		TasksFailed: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "datamover_pipeline_tasks_failed",
			Help: "Failed connector tasks per pipeline",
		}, []string{"pipeline_id"}),
		Lag: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "datamover_pipeline_lag",
			Help: "Sink consumer group lag per pipeline",
		}, []string{"pipeline_id"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "datamover_monitor_snapshot_cache_hits_total",
			Help: "Snapshot reads served from the Redis cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "datamover_monitor_snapshot_cache_misses_total",
			Help: "Snapshot reads that fell back to Postgres",
		}),
	}
}

// ObserveSweep records one completed sweep.
func (m *Metrics) ObserveSweep(seconds float64) {
	if m != nil {
		m.Sweeps.Inc()
		m.SweepSeconds.Observe(seconds)
	}
}

// IncSweepError increments the per-pipeline fetch failure counter.
func (m *Metrics) IncSweepError() {
	if m != nil {
		m.SweepErrors.Inc()
	}
}

// SetPipelineGauges updates the per-pipeline task and lag gauges.
func (m *Metrics) SetPipelineGauges(pipelineID string, running, failed int, lag int64) {
	if m != nil {
		m.TasksRunning.WithLabelValues(pipelineID).Set(float64(running))
		m.TasksFailed.WithLabelValues(pipelineID).Set(float64(failed))
		m.Lag.WithLabelValues(pipelineID).Set(float64(lag))
	}
}

// IncCacheHit increments the cache hit counter.
func (m *Metrics) IncCacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

// IncCacheMiss increments the cache miss counter.
func (m *Metrics) IncCacheMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}
