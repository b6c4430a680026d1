// Package activity records and serves the audit trail of user and system
// actions. Records are append-only: the service never mutates or deletes a
// log once written (retention cleanup is a separate background concern).
package activity

import (
	"time"

	"github.com/google/uuid"
)

// Resource types referenced by activity records.
const (
	ResourcePipeline  = "pipeline"
	ResourceConnector = "connector"
	ResourceRegistry  = "registry"
	ResourceAlerts    = "alerts"
	ResourceAPIKey    = "api_key"
)

// Action types are dot-namespaced: "<resource>.<verb>".
const (
	ActionPipelineView    = "pipeline.view"
	ActionPipelineCreate  = "pipeline.create"
	ActionPipelineUpdate  = "pipeline.update"
	ActionPipelineDelete  = "pipeline.delete"
	ActionPipelineDeploy  = "pipeline.deploy"
	ActionPipelineStart   = "pipeline.start"
	ActionPipelinePause   = "pipeline.pause"
	ActionPipelineResume  = "pipeline.resume"
	ActionPipelineRestart = "pipeline.restart"

	ActionConnectorRestart = "connector.restart"

	ActionRegistrySave     = "registry.save"
	ActionRegistryActivate = "registry.activate"
	ActionRegistryRollback = "registry.rollback"

	ActionAlertsUpdate = "alerts.update"

	ActionAPIKeyIssue  = "api_key.issue"
	ActionAPIKeyRevoke = "api_key.revoke"
)

// Log is one activity record. All fields are immutable once persisted; the
// external caller (HTTP layer or background worker) assigns everything except
// ID and CreatedAt, which the recorder fills when absent.
type Log struct {
	ID                uuid.UUID      `json:"id"`
	UserID            string         `json:"user_id"`
	ActionType        string         `json:"action_type"`
	ActionDescription string         `json:"action_description"`
	ResourceType      string         `json:"resource_type"`
	ResourceID        string         `json:"resource_id"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// IsView reports whether the record is a pipeline view event. Views are
// deprioritized when choosing a group's main record.
func (l Log) IsView() bool {
	return l.ActionType == ActionPipelineView
}

// Filter narrows List queries. Zero values mean "no constraint".
type Filter struct {
	UserID       string
	ResourceType string
	ResourceID   string
	ActionPrefix string
	Since        time.Time
	Until        time.Time
	Limit        int
}

// Group is one collapsed row for the dashboard: a main record plus the burst
// of related records folded beneath it.
type Group struct {
	Main Log   `json:"main"`
	Subs []Log `json:"subs"`
}
