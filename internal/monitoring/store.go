package monitoring

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNoData is returned when a pipeline has no recorded points yet.
var ErrNoData = errors.New("no monitoring data")

// Store persists the status time series.
type Store interface {
	Insert(ctx context.Context, points []Point) error
	Timeseries(ctx context.Context, pipelineID uuid.UUID, since time.Time, step time.Duration) ([]Bucket, error)
	Latest(ctx context.Context, pipelineID uuid.UUID) (Point, error)
	Summary(ctx context.Context) (Summary, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
