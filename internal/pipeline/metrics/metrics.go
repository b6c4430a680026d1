// Package metrics provides observability for pipeline lifecycle operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the pipeline service.
type Metrics struct {
	Operations *prometheus.CounterVec
	Rollbacks  prometheus.Counter
	Pipelines  *prometheus.GaugeVec
}

// New creates a Metrics instance with all pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		Operations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "datamover_pipeline_operations_total",
			Help: "Total pipeline lifecycle operations by action and outcome",
		}, []string{"action", "outcome"}),
		Rollbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "datamover_pipeline_rollbacks_total",
			Help: "Total optimistic status updates rolled back after a failed Connect call",
		}),
		Pipelines: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "datamover_pipelines",
			Help: "Number of pipelines by status",
		}, []string{"status"}),
	}
}

// ObserveOperation records one completed lifecycle operation.
func (m *Metrics) ObserveOperation(action, outcome string) {
	if m != nil {
		m.Operations.WithLabelValues(action, outcome).Inc()
	}
}

// IncRollback increments the rollback counter.
func (m *Metrics) IncRollback() {
	if m != nil {
		m.Rollbacks.Inc()
	}
}

// SetPipelineCount sets the gauge for one status.
func (m *Metrics) SetPipelineCount(status string, n int) {
	if m != nil {
		m.Pipelines.WithLabelValues(status).Set(float64(n))
	}
}
