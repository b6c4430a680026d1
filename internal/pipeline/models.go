// Package pipeline manages CDC replication pipelines: a source database
// captured into Kafka and replayed into a destination database by a pair of
// Kafka Connect connectors. The package owns pipeline records and their
// lifecycle; the connectors themselves live in Kafka Connect and are driven
// through the connect client.
package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a pipeline as tracked by the dashboard.
type Status string

const (
	StatusDraft          Status = "draft"
	StatusDeploying      Status = "deploying"
	StatusRunning        Status = "running"
	StatusPaused         Status = "paused"
	StatusFailed         Status = "failed"
	StatusDeletedPending Status = "deleted-pending"
)

// Pipeline is one configured source to destination replication job.
type Pipeline struct {
	ID                uuid.UUID         `json:"id"`
	Name              string            `json:"name"`
	SourceConfig      map[string]string `json:"source_config"`
	DestinationConfig map[string]string `json:"destination_config"`
	Topics            []string          `json:"topics"`
	Status            Status            `json:"status"`
	CreatedBy         string            `json:"created_by"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// SourceConnector is the Kafka Connect connector name for the capture side.
func (p Pipeline) SourceConnector() string {
	return p.ID.String() + "-source"
}

// SinkConnector is the Kafka Connect connector name for the replay side.
func (p Pipeline) SinkConnector() string {
	return p.ID.String() + "-sink"
}

// Deployed reports whether the pipeline has connectors in Kafka Connect.
// Draft pipelines exist only as records.
func (p Pipeline) Deployed() bool {
	return p.Status != StatusDraft
}
