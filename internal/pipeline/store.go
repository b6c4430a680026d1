package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no pipeline exists with the requested ID.
var ErrNotFound = errors.New("pipeline not found")

// Store persists pipeline records.
type Store interface {
	Create(ctx context.Context, p Pipeline) error
	Get(ctx context.Context, id uuid.UUID) (Pipeline, error)
	List(ctx context.Context) ([]Pipeline, error)
	Update(ctx context.Context, p Pipeline) error
	// UpdateStatus sets only the status column. It backs the optimistic
	// lifecycle transitions, where the rest of the row must not change.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, updatedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}
