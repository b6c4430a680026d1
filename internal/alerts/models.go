// Package alerts stores per-user notification preferences: which channels to
// notify and on what pipeline conditions. Delivery itself happens outside
// this service; consumers read preferences off the activity event stream.
package alerts

import (
	"time"

	"github.com/google/uuid"
)

// Preference is one user's alert settings, optionally scoped to a single
// pipeline. A nil PipelineID means the preference applies to all pipelines
// the user can see.
type Preference struct {
	ID               uuid.UUID  `json:"id"`
	UserID           string     `json:"user_id"`
	PipelineID       *uuid.UUID `json:"pipeline_id,omitempty"`
	Channels         []string   `json:"channels"`
	NotifyOnFailure  bool       `json:"notify_on_failure"`
	NotifyOnRecovery bool       `json:"notify_on_recovery"`
	FailureThreshold int        `json:"failure_threshold"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
