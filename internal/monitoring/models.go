// Package monitoring collects and serves pipeline health: a background
// collector polls Kafka Connect for every deployed pipeline, persists a
// time-series point per sweep, and caches the latest snapshot for cheap
// dashboard reads.
package monitoring

import (
	"time"

	"github.com/google/uuid"

	"datamover/internal/connect"
)

// Pipeline states derived from connector health. These overlap with the
// pipeline package's statuses but add unknown for an unreachable Connect.
const (
	StateRunning = "running"
	StatePaused  = "paused"
	StateFailed  = "failed"
	StateUnknown = "unknown"
)

// ConnectorHealth is one connector's condition at collection time.
type ConnectorHealth struct {
	Name         string        `json:"name"`
	State        connect.State `json:"state"`
	TasksTotal   int           `json:"tasks_total"`
	TasksRunning int           `json:"tasks_running"`
	TasksFailed  int           `json:"tasks_failed"`
	Trace        string        `json:"trace,omitempty"`
}

// Snapshot is the full health picture of one pipeline at a point in time.
type Snapshot struct {
	PipelineID uuid.UUID       `json:"pipeline_id"`
	State      string          `json:"state"`
	Source     ConnectorHealth `json:"source"`
	Sink       ConnectorHealth `json:"sink"`
	Lag        int64           `json:"lag"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// Point reduces a snapshot to the row stored in the time series.
func (s Snapshot) Point() Point {
	return Point{
		PipelineID:   s.PipelineID,
		State:        s.State,
		TasksTotal:   s.Source.TasksTotal + s.Sink.TasksTotal,
		TasksRunning: s.Source.TasksRunning + s.Sink.TasksRunning,
		TasksFailed:  s.Source.TasksFailed + s.Sink.TasksFailed,
		Lag:          s.Lag,
		RecordedAt:   s.RecordedAt,
	}
}

// Point is one stored time-series sample.
type Point struct {
	PipelineID   uuid.UUID `json:"pipeline_id"`
	State        string    `json:"state"`
	TasksTotal   int       `json:"tasks_total"`
	TasksRunning int       `json:"tasks_running"`
	TasksFailed  int       `json:"tasks_failed"`
	Lag          int64     `json:"lag"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// Bucket is one aggregated step of a timeseries query.
type Bucket struct {
	Start       time.Time `json:"start"`
	Samples     int       `json:"samples"`
	Running     int       `json:"running"`
	TasksFailed int       `json:"tasks_failed"`
	MaxLag      int64     `json:"max_lag"`
}

// Summary aggregates the latest state of every pipeline.
type Summary struct {
	Pipelines   int            `json:"pipelines"`
	ByState     map[string]int `json:"by_state"`
	TasksFailed int            `json:"tasks_failed"`
}

// deriveState folds two connector healths into one pipeline state.
func deriveState(source, sink ConnectorHealth) string {
	for _, h := range []ConnectorHealth{source, sink} {
		if h.State == connect.StateFailed || h.TasksFailed > 0 {
			return StateFailed
		}
		if h.State == "" {
			return StateUnknown
		}
	}
	if source.State == connect.StatePaused && sink.State == connect.StatePaused {
		return StatePaused
	}
	return StateRunning
}
