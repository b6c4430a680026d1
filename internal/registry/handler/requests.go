package handler

import (
	dErrors "datamover/pkg/domain-errors"
)

// SaveRequest is the HTTP request body for saving a new config version.
type SaveRequest struct {
	Config  map[string]string `json:"config"`
	Comment string            `json:"comment,omitempty"`
}

// Validate implements httputil.Validator.
func (r *SaveRequest) Validate() error {
	if len(r.Config) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "config is required")
	}
	return nil
}
