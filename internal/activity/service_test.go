package activity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datamover/internal/platform/logger"
	"datamover/internal/realtime"
	"datamover/pkg/requestcontext"
)

func newID() uuid.UUID { return uuid.New() }

type captureHub struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (h *captureHub) Broadcast(event realtime.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *captureHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func newTestService(t *testing.T, queueSize int) (*Service, *MemoryStore, *captureHub, context.CancelFunc) {
	t.Helper()
	store := NewMemoryStore()
	hub := &captureHub{}
	svc := NewService(store, hub, logger.New(), nil, queueSize)

	ctx, cancel := context.WithCancel(context.Background())
	go svc.Run(ctx)
	return svc, store, hub, cancel
}

func TestService_RecordPersistsAndBroadcasts(t *testing.T) {
	svc, store, hub, cancel := newTestService(t, 16)
	defer cancel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithUserID(ctx, "user-7")
	ctx = requestcontext.WithClientIP(ctx, "203.0.113.9")
	ctx = requestcontext.WithClientApp(ctx, "Chrome 120/Mac OS X")

	svc.Record(ctx, Log{
		ActionType:        ActionPipelineStart,
		ActionDescription: "started pipeline orders",
		ResourceType:      ResourcePipeline,
		ResourceID:        "pipe-1",
	})

	require.Eventually(t, func() bool {
		logs, _ := store.List(context.Background(), Filter{})
		return len(logs) == 1
	}, time.Second, 5*time.Millisecond)

	logs, err := store.List(context.Background(), Filter{})
	require.NoError(t, err)
	got := logs[0]
	assert.NotEqual(t, "", got.ID.String())
	assert.Equal(t, "user-7", got.UserID, "user id filled from context")
	assert.Equal(t, now, got.CreatedAt, "created_at uses request-scoped time")
	assert.Equal(t, "203.0.113.9", got.Metadata["client_ip"])
	assert.Equal(t, "Chrome 120/Mac OS X", got.Metadata["client_app"])

	require.Eventually(t, func() bool { return hub.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestService_RecordKeepsExplicitFields(t *testing.T) {
	svc, store, _, cancel := newTestService(t, 16)
	defer cancel()

	explicit := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.Record(context.Background(), Log{
		UserID:       "system",
		ActionType:   ActionPipelinePause,
		ResourceType: ResourcePipeline,
		ResourceID:   "pipe-2",
		CreatedAt:    explicit,
	})

	require.Eventually(t, func() bool {
		logs, _ := store.List(context.Background(), Filter{})
		return len(logs) == 1
	}, time.Second, 5*time.Millisecond)

	logs, _ := store.List(context.Background(), Filter{})
	assert.Equal(t, "system", logs[0].UserID)
	assert.Equal(t, explicit, logs[0].CreatedAt)
}

func TestService_ListGrouped(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil, logger.New(), nil, 16)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, Log{ID: newID(), ActionType: ActionPipelineUpdate, ResourceType: ResourcePipeline, ResourceID: "pipe-1", CreatedAt: base}))
	require.NoError(t, store.Append(ctx, Log{ID: newID(), ActionType: ActionPipelineView, ResourceType: ResourcePipeline, ResourceID: "pipe-1", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, store.Append(ctx, Log{ID: newID(), ActionType: "connector.restart", ResourceType: ResourceConnector, ResourceID: "c-1", CreatedAt: base.Add(2 * time.Minute)}))

	groups, err := svc.ListGrouped(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	// Newest record first: the connector singleton, then the pipeline burst.
	assert.Equal(t, ResourceConnector, groups[0].Main.ResourceType)
	assert.Equal(t, ActionPipelineUpdate, groups[1].Main.ActionType)
	assert.Len(t, groups[1].Subs, 1)
}

func TestService_QueueOverflowDrops(t *testing.T) {
	// No worker running: the queue fills and further records are dropped
	// without blocking.
	store := NewMemoryStore()
	svc := NewService(store, nil, logger.New(), nil, 2)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			svc.Record(context.Background(), Log{
				ActionType:   ActionPipelineView,
				ResourceType: ResourcePipeline,
				ResourceID:   "pipe-1",
			})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full queue")
	}
	assert.Len(t, svc.queue, 2)
}
