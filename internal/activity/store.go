package activity

import (
	"context"
	"time"

	"github.com/google/uuid"

	dErrors "datamover/pkg/domain-errors"
)

// ErrNotFound keeps store-level 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "activity record not found")

// Store persists activity records. Append also stages an outbox entry so the
// Kafka publisher can pick the event up; both writes happen atomically in the
// Postgres implementation.
type Store interface {
	Append(ctx context.Context, log Log) error
	List(ctx context.Context, filter Filter) ([]Log, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// OutboxEntry is one staged Kafka publication.
type OutboxEntry struct {
	ID        uuid.UUID
	Payload   []byte
	CreatedAt time.Time
}

// OutboxStore drains staged events. Implemented alongside Store.
type OutboxStore interface {
	PendingOutbox(ctx context.Context, limit int) ([]OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}
