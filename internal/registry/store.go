package registry

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when the requested version does not exist.
	ErrNotFound = errors.New("config version not found")
	// ErrNoActive is returned when a pipeline connector has no active version.
	ErrNoActive = errors.New("no active config version")
)

// Store persists config versions. Save assigns the next version number
// atomically; SetActive flips the single active row in one transaction.
type Store interface {
	Save(ctx context.Context, v ConfigVersion) (ConfigVersion, error)
	List(ctx context.Context, pipelineID uuid.UUID, target Target) ([]ConfigVersion, error)
	Get(ctx context.Context, pipelineID uuid.UUID, target Target, version int) (ConfigVersion, error)
	Active(ctx context.Context, pipelineID uuid.UUID, target Target) (ConfigVersion, error)
	SetActive(ctx context.Context, pipelineID uuid.UUID, target Target, version int) error
}
