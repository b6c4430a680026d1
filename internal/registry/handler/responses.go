package handler

import (
	"time"

	"datamover/internal/registry"
)

// VersionResponse is one config version as served over HTTP.
type VersionResponse struct {
	ID         string            `json:"id"`
	PipelineID string            `json:"pipeline_id"`
	Target     string            `json:"target"`
	Version    int               `json:"version"`
	Config     map[string]string `json:"config"`
	Active     bool              `json:"active"`
	Comment    string            `json:"comment,omitempty"`
	CreatedBy  string            `json:"created_by"`
	CreatedAt  time.Time         `json:"created_at"`
}

// ListResponse is the HTTP response for listing config versions.
type ListResponse struct {
	Versions []VersionResponse `json:"versions"`
}

// FromVersion converts a domain config version to an HTTP response.
func FromVersion(v registry.ConfigVersion) VersionResponse {
	return VersionResponse{
		ID:         v.ID.String(),
		PipelineID: v.PipelineID.String(),
		Target:     string(v.Target),
		Version:    v.Version,
		Config:     v.Config,
		Active:     v.Active,
		Comment:    v.Comment,
		CreatedBy:  v.CreatedBy,
		CreatedAt:  v.CreatedAt,
	}
}

// FromVersions converts a slice of domain config versions.
func FromVersions(versions []registry.ConfigVersion) ListResponse {
	out := ListResponse{Versions: make([]VersionResponse, 0, len(versions))}
	for _, v := range versions {
		out.Versions = append(out.Versions, FromVersion(v))
	}
	return out
}
