// Package metrics provides observability for activity recording.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the activity pipeline.
type Metrics struct {
	Recorded        prometheus.Counter
	QueueDropped    prometheus.Counter
	PersistFailures prometheus.Counter
	Published       prometheus.Counter
	PublishFailures prometheus.Counter
	Sampled         prometheus.Counter
	Cleaned         prometheus.Counter
}

// New creates a Metrics instance with all activity metrics registered.
func New() *Metrics {
	return &Metrics{
		Recorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "datamover_activity_recorded_total",
			Help: "Total activity records accepted for persistence",
		}),
		QueueDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "datamover_activity_queue_dropped_total",
			Help: "Total activity records dropped because the queue was full",
		}),
		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "datamover_activity_persist_failures_total",
			Help: "Total activity record persistence failures",
		}),
		Published: promauto.NewCounter(prometheus.CounterOpts{
			Name: "datamover_activity_published_total",
			Help: "Total activity events published to Kafka",
		}),
		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "datamover_activity_publish_failures_total",
			Help: "Total activity event publish failures",
		}),
		Sampled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "datamover_activity_sampled_out_total",
			Help: "Total activity events dropped by sampling before publish",
		}),
		Cleaned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "datamover_activity_cleaned_total",
			Help: "Total activity records removed by retention cleanup",
		}),
	}
}

func (m *Metrics) IncRecorded() {
	if m != nil {
		m.Recorded.Inc()
	}
}

func (m *Metrics) IncQueueDropped() {
	if m != nil {
		m.QueueDropped.Inc()
	}
}

func (m *Metrics) IncPersistFailures() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}

func (m *Metrics) AddPublished(n int) {
	if m != nil {
		m.Published.Add(float64(n))
	}
}

func (m *Metrics) IncPublishFailures() {
	if m != nil {
		m.PublishFailures.Inc()
	}
}

func (m *Metrics) IncSampled() {
	if m != nil {
		m.Sampled.Inc()
	}
}

func (m *Metrics) AddCleaned(n int64) {
	if m != nil {
		m.Cleaned.Add(float64(n))
	}
}
