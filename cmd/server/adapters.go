package main

import (
	"context"

	"github.com/google/uuid"

	"datamover/internal/pipeline"
	dErrors "datamover/pkg/domain-errors"
)

// registryPipelines resolves pipelines for the registry straight from the
// store. Going through the pipeline service would record a view event for
// every activation.
type registryPipelines struct {
	store pipeline.Store
}

func (a registryPipelines) Get(ctx context.Context, id uuid.UUID) (pipeline.Pipeline, error) {
	p, err := a.store.Get(ctx, id)
	if err != nil {
		return pipeline.Pipeline{}, dErrors.New(dErrors.CodeNotFound, "pipeline not found")
	}
	return p, nil
}
