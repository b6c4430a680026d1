// Package metrics provides observability for the Kafka Connect client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for outbound Kafka Connect calls.
type Metrics struct {
	Requests       *prometheus.CounterVec
	Retries        prometheus.Counter
	BreakerDropped prometheus.Counter
	BreakerState   prometheus.Gauge
	Latency        prometheus.Histogram
}

// New creates a Metrics instance with all Connect client metrics registered.
func New() *Metrics {
	return &Metrics{
		Requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "datamover_connect_requests_total",
			Help: "Total Kafka Connect REST requests by operation and outcome",
		}, []string{"operation", "outcome"}),
		Retries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "datamover_connect_retries_total",
			Help: "Total Kafka Connect request retries",
		}),
		BreakerDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "datamover_connect_breaker_dropped_total",
			Help: "Total Kafka Connect requests dropped by the open circuit breaker",
		}),
		BreakerState: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "datamover_connect_breaker_state",
			Help: "Circuit breaker state (0=closed/healthy, 1=open/unhealthy)",
		}),
		Latency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "datamover_connect_request_duration_seconds",
			Help:    "Duration of Kafka Connect REST requests including retries",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// ObserveRequest records one completed call.
func (m *Metrics) ObserveRequest(operation, outcome string, seconds float64) {
	if m != nil {
		m.Requests.WithLabelValues(operation, outcome).Inc()
		m.Latency.Observe(seconds)
	}
}

// IncRetry increments the retry counter.
func (m *Metrics) IncRetry() {
	if m != nil {
		m.Retries.Inc()
	}
}

// IncBreakerDropped increments the breaker drop counter.
func (m *Metrics) IncBreakerDropped() {
	if m != nil {
		m.BreakerDropped.Inc()
	}
}

// SetBreakerState sets the breaker state gauge.
func (m *Metrics) SetBreakerState(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerState.Set(1)
	} else {
		m.BreakerState.Set(0)
	}
}
