package handler

import (
	"time"

	"datamover/internal/pipeline"
)

// PipelineResponse is one pipeline as served over HTTP.
type PipelineResponse struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	SourceConfig      map[string]string `json:"source_config"`
	DestinationConfig map[string]string `json:"destination_config"`
	Topics            []string          `json:"topics"`
	Status            string            `json:"status"`
	CreatedBy         string            `json:"created_by"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ListResponse is the HTTP response for GET /pipelines.
type ListResponse struct {
	Pipelines []PipelineResponse `json:"pipelines"`
}

// FromPipeline converts a domain pipeline to an HTTP response.
func FromPipeline(p pipeline.Pipeline) PipelineResponse {
	return PipelineResponse{
		ID:                p.ID.String(),
		Name:              p.Name,
		SourceConfig:      p.SourceConfig,
		DestinationConfig: p.DestinationConfig,
		Topics:            p.Topics,
		Status:            string(p.Status),
		CreatedBy:         p.CreatedBy,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// FromPipelines converts a slice of domain pipelines.
func FromPipelines(pipelines []pipeline.Pipeline) ListResponse {
	out := ListResponse{Pipelines: make([]PipelineResponse, 0, len(pipelines))}
	for _, p := range pipelines {
		out.Pipelines = append(out.Pipelines, FromPipeline(p))
	}
	return out
}
