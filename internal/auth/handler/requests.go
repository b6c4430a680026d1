package handler

import (
	"strings"

	dErrors "datamover/pkg/domain-errors"
)

// IssueRequest is the HTTP request body for POST /auth/keys.
type IssueRequest struct {
	Name string `json:"name"`
}

// Validate implements httputil.Validator.
func (r *IssueRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	return nil
}
