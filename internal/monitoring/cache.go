package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when no snapshot is cached for a pipeline.
var ErrCacheMiss = errors.New("snapshot not cached")

// SnapshotCache keeps the latest snapshot per pipeline in Redis so dashboard
// polls never touch Postgres for current state.
type SnapshotCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewSnapshotCache(client redis.Cmdable, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

func snapshotKey(pipelineID uuid.UUID) string {
	return "monitor:snapshot:" + pipelineID.String()
}

// Set stores the snapshot with the configured TTL.
func (c *SnapshotCache) Set(ctx context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKey(snap.PipelineID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache snapshot: %w", err)
	}
	return nil
}

// Get returns the cached snapshot or ErrCacheMiss.
func (c *SnapshotCache) Get(ctx context.Context, pipelineID uuid.UUID) (Snapshot, error) {
	payload, err := c.client.Get(ctx, snapshotKey(pipelineID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrCacheMiss
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read cached snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return snap, nil
}

// Delete drops a pipeline's cached snapshot, used when a pipeline is removed.
func (c *SnapshotCache) Delete(ctx context.Context, pipelineID uuid.UUID) error {
	return c.client.Del(ctx, snapshotKey(pipelineID)).Err()
}
