package alerts

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no preference exists for the requested scope.
var ErrNotFound = errors.New("alert preference not found")

// Store persists alert preferences. Upsert is keyed on (user, pipeline):
// one row per scope, replaced on save.
type Store interface {
	Upsert(ctx context.Context, pref Preference) error
	Get(ctx context.Context, userID string, pipelineID *uuid.UUID) (Preference, error)
	ListByUser(ctx context.Context, userID string) ([]Preference, error)
	Delete(ctx context.Context, userID string, pipelineID *uuid.UUID) error
}
