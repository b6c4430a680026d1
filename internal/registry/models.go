// Package registry versions connector configurations. Every save appends a
// new immutable version; exactly one version per pipeline connector may be
// active, and activating a version pushes its config to Kafka Connect.
package registry

import (
	"time"

	"github.com/google/uuid"
)

// Target selects which of a pipeline's two connectors a version configures.
type Target string

const (
	TargetSource Target = "source"
	TargetSink   Target = "sink"
)

// Valid reports whether t is a known connector target.
func (t Target) Valid() bool {
	return t == TargetSource || t == TargetSink
}

// ConfigVersion is one immutable connector configuration revision.
type ConfigVersion struct {
	ID         uuid.UUID         `json:"id"`
	PipelineID uuid.UUID         `json:"pipeline_id"`
	Target     Target            `json:"target"`
	Version    int               `json:"version"`
	Config     map[string]string `json:"config"`
	Active     bool              `json:"active"`
	Comment    string            `json:"comment,omitempty"`
	CreatedBy  string            `json:"created_by"`
	CreatedAt  time.Time         `json:"created_at"`
}
