// Package connect is the Kafka Connect REST API client. Kafka Connect is an
// external collaborator; everything here treats it as an opaque HTTP service
// with retries, per-attempt timeouts, and a circuit breaker in front.
package connect

import "context"

// State is a connector or task state as reported by Kafka Connect.
type State string

const (
	StateRunning    State = "RUNNING"
	StatePaused     State = "PAUSED"
	StateFailed     State = "FAILED"
	StateUnassigned State = "UNASSIGNED"
)

// TaskStatus describes a single connector task.
type TaskStatus struct {
	ID       int    `json:"id"`
	State    State  `json:"state"`
	WorkerID string `json:"worker_id"`
	Trace    string `json:"trace,omitempty"`
}

// ConnectorStatus is the status document returned by
// GET /connectors/{name}/status.
type ConnectorStatus struct {
	Name      string       `json:"name"`
	Connector struct {
		State    State  `json:"state"`
		WorkerID string `json:"worker_id"`
	} `json:"connector"`
	Tasks []TaskStatus `json:"tasks"`
	Type  string       `json:"type"`
}

// RunningTasks counts tasks currently in the RUNNING state.
func (s ConnectorStatus) RunningTasks() int {
	n := 0
	for _, t := range s.Tasks {
		if t.State == StateRunning {
			n++
		}
	}
	return n
}

// FailedTasks counts tasks currently in the FAILED state.
func (s ConnectorStatus) FailedTasks() int {
	n := 0
	for _, t := range s.Tasks {
		if t.State == StateFailed {
			n++
		}
	}
	return n
}

// ConnectorInfo is returned when a connector config is created or updated.
type ConnectorInfo struct {
	Name   string            `json:"name"`
	Config map[string]string `json:"config"`
	Tasks  []struct {
		Connector string `json:"connector"`
		Task      int    `json:"task"`
	} `json:"tasks"`
	Type string `json:"type"`
}

// Client is the surface the rest of the service depends on. The HTTP
// implementation lives in this package; tests use the generated mock.
//
//go:generate mockgen -source=client.go -destination=mocks/client_mock.go -package=mocks Client
type Client interface {
	ListConnectors(ctx context.Context) ([]string, error)
	ApplyConnector(ctx context.Context, name string, config map[string]string) (*ConnectorInfo, error)
	ConnectorStatus(ctx context.Context, name string) (*ConnectorStatus, error)
	RestartConnector(ctx context.Context, name string) error
	PauseConnector(ctx context.Context, name string) error
	ResumeConnector(ctx context.Context, name string) error
	DeleteConnector(ctx context.Context, name string) error
}
