package handler

import (
	"github.com/google/uuid"

	"datamover/internal/alerts"
	dErrors "datamover/pkg/domain-errors"
)

// SaveRequest is the HTTP request body for PUT /alerts/preferences.
type SaveRequest struct {
	PipelineID       string   `json:"pipeline_id,omitempty"`
	Channels         []string `json:"channels"`
	NotifyOnFailure  bool     `json:"notify_on_failure"`
	NotifyOnRecovery bool     `json:"notify_on_recovery"`
	FailureThreshold int      `json:"failure_threshold"`
}

// Validate implements httputil.Validator.
func (r *SaveRequest) Validate() error {
	if len(r.Channels) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "channels is required")
	}
	return nil
}

// ToInput converts the request to a service input.
func (r *SaveRequest) ToInput() (alerts.SaveInput, error) {
	in := alerts.SaveInput{
		Channels:         r.Channels,
		NotifyOnFailure:  r.NotifyOnFailure,
		NotifyOnRecovery: r.NotifyOnRecovery,
		FailureThreshold: r.FailureThreshold,
	}
	if r.PipelineID != "" {
		id, err := uuid.Parse(r.PipelineID)
		if err != nil {
			return alerts.SaveInput{}, dErrors.New(dErrors.CodeBadRequest, "pipeline_id must be a UUID")
		}
		in.PipelineID = &id
	}
	return in, nil
}
