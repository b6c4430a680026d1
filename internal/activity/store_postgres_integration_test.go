//go:build integration

package activity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datamover/pkg/testutil/containers"
)

const activitySchema = `
	CREATE TABLE IF NOT EXISTS activity_logs (
		id                 UUID PRIMARY KEY,
		user_id            TEXT NOT NULL,
		action_type        TEXT NOT NULL,
		action_description TEXT NOT NULL DEFAULT '',
		resource_type      TEXT NOT NULL,
		resource_id        TEXT NOT NULL DEFAULT '',
		metadata           JSONB,
		created_at         TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_activity_logs_created_at ON activity_logs (created_at DESC);

	CREATE TABLE IF NOT EXISTS activity_outbox (
		id           UUID PRIMARY KEY,
		payload      JSONB NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		published_at TIMESTAMPTZ
	);
`

func newIntegrationStore(t *testing.T) *PostgresStore {
	t.Helper()

	pg := containers.NewPostgresContainer(t)
	require.NoError(t, pg.Exec(context.Background(), activitySchema))
	return NewPostgresStore(pg.Pool)
}

func TestPostgresStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	store := newIntegrationStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	logs := []Log{
		{
			ID:                uuid.New(),
			UserID:            "user-1",
			ActionType:        ActionPipelineCreate,
			ActionDescription: "created pipeline orders-cdc",
			ResourceType:      ResourcePipeline,
			ResourceID:        "pipe-1",
			Metadata:          map[string]any{"client_ip": "10.0.0.1"},
			CreatedAt:         base,
		},
		{
			ID:           uuid.New(),
			UserID:       "user-2",
			ActionType:   ActionPipelineStart,
			ResourceType: ResourcePipeline,
			ResourceID:   "pipe-1",
			CreatedAt:    base.Add(time.Minute),
		},
		{
			ID:           uuid.New(),
			UserID:       "user-1",
			ActionType:   ActionAlertsUpdate,
			ResourceType: ResourceAlerts,
			CreatedAt:    base.Add(2 * time.Minute),
		},
	}
	for _, l := range logs {
		require.NoError(t, store.Append(ctx, l))
	}

	t.Run("list returns newest first", func(t *testing.T) {
		got, err := store.List(ctx, Filter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, ActionAlertsUpdate, got[0].ActionType)
		assert.Equal(t, ActionPipelineCreate, got[2].ActionType)
		assert.Equal(t, map[string]any{"client_ip": "10.0.0.1"}, got[2].Metadata)
	})

	t.Run("filters compose", func(t *testing.T) {
		got, err := store.List(ctx, Filter{
			UserID:       "user-1",
			ResourceType: ResourcePipeline,
			ActionPrefix: "pipeline.",
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, ActionPipelineCreate, got[0].ActionType)
	})

	t.Run("time range and limit", func(t *testing.T) {
		got, err := store.List(ctx, Filter{
			Since: base.Add(30 * time.Second),
			Limit: 1,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, ActionAlertsUpdate, got[0].ActionType)
	})

	t.Run("append is idempotent in the outbox", func(t *testing.T) {
		pending, err := store.PendingOutbox(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 3)
		assert.Equal(t, logs[0].ID, pending[0].ID)
	})

	t.Run("mark published removes from pending", func(t *testing.T) {
		require.NoError(t, store.MarkPublished(ctx, []uuid.UUID{logs[0].ID, logs[1].ID}))

		pending, err := store.PendingOutbox(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, logs[2].ID, pending[0].ID)
	})

	t.Run("retention delete", func(t *testing.T) {
		deleted, err := store.DeleteOlderThan(ctx, base.Add(90*time.Second))
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		got, err := store.List(ctx, Filter{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, ActionAlertsUpdate, got[0].ActionType)
	})
}
