package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("api key not found")

// KeyStore persists API keys. Implementations return ErrNotFound when no key
// matches; the service maps it onto coded errors.
type KeyStore interface {
	Create(ctx context.Context, key APIKey) error
	GetByPrefix(ctx context.Context, prefix string) (APIKey, error)
	List(ctx context.Context) ([]APIKey, error)
	TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) error
}
