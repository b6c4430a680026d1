package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"datamover/internal/activity"
	"datamover/internal/connect"
	"datamover/internal/connect/mocks"
	"datamover/internal/realtime"
	dErrors "datamover/pkg/domain-errors"
	"datamover/pkg/requestcontext"
)

type captureRecorder struct {
	logs []activity.Log
}

func (r *captureRecorder) Record(_ context.Context, log activity.Log) {
	r.logs = append(r.logs, log)
}

type captureHub struct {
	events []realtime.Event
}

func (h *captureHub) Broadcast(event realtime.Event) {
	h.events = append(h.events, event)
}

type fixture struct {
	service  *Service
	store    *MemoryStore
	connect  *mocks.MockClient
	recorder *captureRecorder
	hub      *captureHub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	store := NewMemoryStore()
	recorder := &captureRecorder{}
	hub := &captureHub{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		service:  NewService(store, client, recorder, hub, logger, nil),
		store:    store,
		connect:  client,
		recorder: recorder,
		hub:      hub,
	}
}

func testCtx() context.Context {
	ctx := requestcontext.WithUserID(context.Background(), "user-1")
	return requestcontext.WithTime(ctx, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
}

func (f *fixture) seed(t *testing.T, status Status) Pipeline {
	t.Helper()
	p, err := f.service.Create(testCtx(), CreateInput{
		Name:              "orders-cdc",
		SourceConfig:      map[string]string{"connector.class": "io.debezium.connector.postgresql.PostgresConnector"},
		DestinationConfig: map[string]string{"connector.class": "io.confluent.connect.jdbc.JdbcSinkConnector"},
		Topics:            []string{"orders"},
	})
	require.NoError(t, err)
	if status != StatusDraft {
		require.NoError(t, f.store.UpdateStatus(context.Background(), p.ID, status, p.UpdatedAt))
		p.Status = status
	}
	f.recorder.logs = nil
	f.hub.events = nil
	return p
}

func TestCreate(t *testing.T) {
	t.Run("creates draft pipeline with audit trail", func(t *testing.T) {
		f := newFixture(t)

		p, err := f.service.Create(testCtx(), CreateInput{Name: "  orders-cdc  "})

		require.NoError(t, err)
		assert.Equal(t, "orders-cdc", p.Name)
		assert.Equal(t, StatusDraft, p.Status)
		assert.Equal(t, "user-1", p.CreatedBy)

		require.Len(t, f.recorder.logs, 1)
		assert.Equal(t, activity.ActionPipelineCreate, f.recorder.logs[0].ActionType)
		assert.Equal(t, p.ID.String(), f.recorder.logs[0].ResourceID)

		require.Len(t, f.hub.events, 1)
		assert.Equal(t, "pipeline.created", f.hub.events[0].Type)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Create(testCtx(), CreateInput{Name: "   "})

		assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
	})
}

func TestGet(t *testing.T) {
	t.Run("records a view", func(t *testing.T) {
		f := newFixture(t)
		p := f.seed(t, StatusDraft)

		got, err := f.service.Get(testCtx(), p.ID)

		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
		require.Len(t, f.recorder.logs, 1)
		assert.Equal(t, activity.ActionPipelineView, f.recorder.logs[0].ActionType)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Get(testCtx(), uuid.New())

		assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
	})
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	p := f.seed(t, StatusDraft)

	name := "orders-cdc-v2"
	got, err := f.service.Update(testCtx(), p.ID, UpdateInput{
		Name:   &name,
		Topics: []string{"orders", "refunds"},
	})

	require.NoError(t, err)
	assert.Equal(t, "orders-cdc-v2", got.Name)
	assert.Equal(t, []string{"orders", "refunds"}, got.Topics)
	// Untouched fields survive a partial update.
	assert.Equal(t, p.SourceConfig, got.SourceConfig)

	require.Len(t, f.recorder.logs, 1)
	assert.Equal(t, activity.ActionPipelineUpdate, f.recorder.logs[0].ActionType)
}

func TestDeploy(t *testing.T) {
	t.Run("applies both connectors and lands on running", func(t *testing.T) {
		f := newFixture(t)
		p := f.seed(t, StatusDraft)

		f.connect.EXPECT().
			ApplyConnector(gomock.Any(), p.SourceConnector(), p.SourceConfig).
			Return(&connect.ConnectorInfo{Name: p.SourceConnector()}, nil)
		f.connect.EXPECT().
			ApplyConnector(gomock.Any(), p.SinkConnector(), p.DestinationConfig).
			Return(&connect.ConnectorInfo{Name: p.SinkConnector()}, nil)

		got, err := f.service.Deploy(testCtx(), p.ID)

		require.NoError(t, err)
		assert.Equal(t, StatusRunning, got.Status)

		stored, err := f.store.Get(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusRunning, stored.Status)

		require.Len(t, f.recorder.logs, 1)
		assert.Equal(t, activity.ActionPipelineDeploy, f.recorder.logs[0].ActionType)
	})

	t.Run("rolls back to previous status when connect fails", func(t *testing.T) {
		f := newFixture(t)
		p := f.seed(t, StatusDraft)

		f.connect.EXPECT().
			ApplyConnector(gomock.Any(), p.SourceConnector(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeUnavailable, "kafka connect unreachable"))

		_, err := f.service.Deploy(testCtx(), p.ID)

		assert.Equal(t, dErrors.CodeUnavailable, dErrors.CodeOf(err))

		stored, storeErr := f.store.Get(context.Background(), p.ID)
		require.NoError(t, storeErr)
		assert.Equal(t, StatusDraft, stored.Status)
		assert.Empty(t, f.recorder.logs)
	})
}

func TestPause(t *testing.T) {
	t.Run("pauses running pipeline", func(t *testing.T) {
		f := newFixture(t)
		p := f.seed(t, StatusRunning)

		f.connect.EXPECT().PauseConnector(gomock.Any(), p.SourceConnector()).Return(nil)
		f.connect.EXPECT().PauseConnector(gomock.Any(), p.SinkConnector()).Return(nil)

		got, err := f.service.Pause(testCtx(), p.ID)

		require.NoError(t, err)
		assert.Equal(t, StatusPaused, got.Status)
	})

	t.Run("rejects pause when not running", func(t *testing.T) {
		f := newFixture(t)
		p := f.seed(t, StatusPaused)

		_, err := f.service.Pause(testCtx(), p.ID)

		assert.Equal(t, dErrors.CodeConflict, dErrors.CodeOf(err))
	})

	t.Run("rolls back when sink pause fails", func(t *testing.T) {
		f := newFixture(t)
		p := f.seed(t, StatusRunning)

		f.connect.EXPECT().PauseConnector(gomock.Any(), p.SourceConnector()).Return(nil)
		f.connect.EXPECT().PauseConnector(gomock.Any(), p.SinkConnector()).
			Return(dErrors.New(dErrors.CodeUnavailable, "kafka connect unreachable"))

		_, err := f.service.Pause(testCtx(), p.ID)

		assert.Equal(t, dErrors.CodeUnavailable, dErrors.CodeOf(err))
		stored, storeErr := f.store.Get(context.Background(), p.ID)
		require.NoError(t, storeErr)
		assert.Equal(t, StatusRunning, stored.Status)
	})
}

func TestResume(t *testing.T) {
	f := newFixture(t)
	p := f.seed(t, StatusPaused)

	f.connect.EXPECT().ResumeConnector(gomock.Any(), p.SourceConnector()).Return(nil)
	f.connect.EXPECT().ResumeConnector(gomock.Any(), p.SinkConnector()).Return(nil)

	got, err := f.service.Resume(testCtx(), p.ID)

	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)
	require.Len(t, f.recorder.logs, 1)
	assert.Equal(t, activity.ActionPipelineResume, f.recorder.logs[0].ActionType)
}

func TestStart(t *testing.T) {
	t.Run("rejects draft pipeline", func(t *testing.T) {
		f := newFixture(t)
		p := f.seed(t, StatusDraft)

		_, err := f.service.Start(testCtx(), p.ID)

		assert.Equal(t, dErrors.CodeConflict, dErrors.CodeOf(err))
	})

	t.Run("starts failed pipeline", func(t *testing.T) {
		f := newFixture(t)
		p := f.seed(t, StatusFailed)

		f.connect.EXPECT().ResumeConnector(gomock.Any(), p.SourceConnector()).Return(nil)
		f.connect.EXPECT().ResumeConnector(gomock.Any(), p.SinkConnector()).Return(nil)

		got, err := f.service.Start(testCtx(), p.ID)

		require.NoError(t, err)
		assert.Equal(t, StatusRunning, got.Status)
	})
}

func TestRestart(t *testing.T) {
	f := newFixture(t)
	p := f.seed(t, StatusRunning)

	f.connect.EXPECT().RestartConnector(gomock.Any(), p.SourceConnector()).Return(nil)
	f.connect.EXPECT().RestartConnector(gomock.Any(), p.SinkConnector()).Return(nil)

	got, err := f.service.Restart(testCtx(), p.ID)

	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)
	require.Len(t, f.recorder.logs, 1)
	assert.Equal(t, activity.ActionPipelineRestart, f.recorder.logs[0].ActionType)
}

func TestRestartConnector(t *testing.T) {
	t.Run("restarts one connector and records connector activity", func(t *testing.T) {
		f := newFixture(t)
		p := f.seed(t, StatusRunning)

		f.connect.EXPECT().RestartConnector(gomock.Any(), p.SinkConnector()).Return(nil)

		err := f.service.RestartConnector(testCtx(), p.ID, "sink")

		require.NoError(t, err)
		require.Len(t, f.recorder.logs, 1)
		assert.Equal(t, activity.ActionConnectorRestart, f.recorder.logs[0].ActionType)
		assert.Equal(t, activity.ResourceConnector, f.recorder.logs[0].ResourceType)
		assert.Equal(t, p.SinkConnector(), f.recorder.logs[0].ResourceID)
	})

	t.Run("rejects unknown target", func(t *testing.T) {
		f := newFixture(t)
		p := f.seed(t, StatusRunning)

		err := f.service.RestartConnector(testCtx(), p.ID, "sideways")

		assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
	})

	t.Run("rejects draft pipeline", func(t *testing.T) {
		f := newFixture(t)
		p := f.seed(t, StatusDraft)

		err := f.service.RestartConnector(testCtx(), p.ID, "source")

		assert.Equal(t, dErrors.CodeConflict, dErrors.CodeOf(err))
	})
}

func TestDelete(t *testing.T) {
	t.Run("draft pipeline is removed without touching connect", func(t *testing.T) {
		f := newFixture(t)
		p := f.seed(t, StatusDraft)

		err := f.service.Delete(testCtx(), p.ID)

		require.NoError(t, err)
		_, getErr := f.store.Get(context.Background(), p.ID)
		assert.ErrorIs(t, getErr, ErrNotFound)
	})

	t.Run("deployed pipeline deletes both connectors", func(t *testing.T) {
		f := newFixture(t)
		p := f.seed(t, StatusRunning)

		f.connect.EXPECT().DeleteConnector(gomock.Any(), p.SourceConnector()).Return(nil)
		f.connect.EXPECT().DeleteConnector(gomock.Any(), p.SinkConnector()).Return(nil)

		err := f.service.Delete(testCtx(), p.ID)

		require.NoError(t, err)
		_, getErr := f.store.Get(context.Background(), p.ID)
		assert.ErrorIs(t, getErr, ErrNotFound)
		require.Len(t, f.recorder.logs, 1)
		assert.Equal(t, activity.ActionPipelineDelete, f.recorder.logs[0].ActionType)
	})

	t.Run("missing connectors do not block deletion", func(t *testing.T) {
		f := newFixture(t)
		p := f.seed(t, StatusPaused)

		f.connect.EXPECT().DeleteConnector(gomock.Any(), p.SourceConnector()).
			Return(dErrors.New(dErrors.CodeNotFound, "connector not found"))
		f.connect.EXPECT().DeleteConnector(gomock.Any(), p.SinkConnector()).Return(nil)

		err := f.service.Delete(testCtx(), p.ID)

		require.NoError(t, err)
		_, getErr := f.store.Get(context.Background(), p.ID)
		assert.ErrorIs(t, getErr, ErrNotFound)
	})

	t.Run("unreachable connect rolls back deleted-pending", func(t *testing.T) {
		f := newFixture(t)
		p := f.seed(t, StatusRunning)

		f.connect.EXPECT().DeleteConnector(gomock.Any(), p.SourceConnector()).
			Return(dErrors.New(dErrors.CodeUnavailable, "kafka connect unreachable"))

		err := f.service.Delete(testCtx(), p.ID)

		assert.Equal(t, dErrors.CodeUnavailable, dErrors.CodeOf(err))
		stored, storeErr := f.store.Get(context.Background(), p.ID)
		require.NoError(t, storeErr)
		assert.Equal(t, StatusRunning, stored.Status)
	})
}
