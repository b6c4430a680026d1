package handler

import (
	"strings"

	"datamover/internal/pipeline"
	dErrors "datamover/pkg/domain-errors"
)

// CreateRequest is the HTTP request body for POST /pipelines.
type CreateRequest struct {
	Name              string            `json:"name"`
	SourceConfig      map[string]string `json:"source_config"`
	DestinationConfig map[string]string `json:"destination_config"`
	Topics            []string          `json:"topics"`
}

// Validate implements httputil.Validator.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	return nil
}

// ToInput converts the request to a service input.
func (r *CreateRequest) ToInput() pipeline.CreateInput {
	return pipeline.CreateInput{
		Name:              r.Name,
		SourceConfig:      r.SourceConfig,
		DestinationConfig: r.DestinationConfig,
		Topics:            r.Topics,
	}
}

// UpdateRequest is the HTTP request body for PUT /pipelines/{id}. Absent
// fields leave the stored value unchanged.
type UpdateRequest struct {
	Name              *string           `json:"name,omitempty"`
	SourceConfig      map[string]string `json:"source_config,omitempty"`
	DestinationConfig map[string]string `json:"destination_config,omitempty"`
	Topics            []string          `json:"topics,omitempty"`
}

// Validate implements httputil.Validator.
func (r *UpdateRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "name must not be empty")
	}
	return nil
}

// ToInput converts the request to a service input.
func (r *UpdateRequest) ToInput() pipeline.UpdateInput {
	return pipeline.UpdateInput{
		Name:              r.Name,
		SourceConfig:      r.SourceConfig,
		DestinationConfig: r.DestinationConfig,
		Topics:            r.Topics,
	}
}
