package registry

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
	"datamover/internal/pipeline"
	dErrors "datamover/pkg/domain-errors"
	"datamover/pkg/requestcontext"
)

type captureRecorder struct {
	logs []activity.Log
}

func (r *captureRecorder) Record(_ context.Context, log activity.Log) {
	r.logs = append(r.logs, log)
}

type fixture struct {
	service   *Service
	store     *MemoryStore
	pipelines *pipeline.MemoryStore
	connect   *mocks.MockClient
	recorder  *captureRecorder
	pipeline  pipeline.Pipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	store := NewMemoryStore()
	pipelines := pipeline.NewMemoryStore()
	recorder := &captureRecorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	p := pipeline.Pipeline{
		ID:        uuid.New(),
		Name:      "orders-cdc",
		Status:    pipeline.StatusRunning,
		CreatedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, pipelines.Create(context.Background(), p))

	return &fixture{
		service:   NewService(store, pipelinesAdapter{pipelines}, client, recorder, nil, logger),
		store:     store,
		pipelines: pipelines,
		connect:   client,
		recorder:  recorder,
		pipeline:  p,
	}
}

// pipelinesAdapter maps the store's not-found error to the coded error the
// service layer normally produces.
type pipelinesAdapter struct {
	store *pipeline.MemoryStore
}

func (a pipelinesAdapter) Get(ctx context.Context, id uuid.UUID) (pipeline.Pipeline, error) {
	p, err := a.store.Get(ctx, id)
	if err != nil {
		return pipeline.Pipeline{}, dErrors.New(dErrors.CodeNotFound, "pipeline not found")
	}
	return p, nil
}

func testCtx() context.Context {
	ctx := requestcontext.WithUserID(context.Background(), "user-1")
	return requestcontext.WithTime(ctx, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
}

func (f *fixture) save(t *testing.T, config map[string]string) ConfigVersion {
	t.Helper()
	v, err := f.service.Save(testCtx(), SaveInput{
		PipelineID: f.pipeline.ID,
		Target:     TargetSource,
		Config:     config,
	})
	require.NoError(t, err)
	return v
}

func TestSave(t *testing.T) {
	t.Run("versions count up from one", func(t *testing.T) {
		f := newFixture(t)

		v1 := f.save(t, map[string]string{"a": "1"})
		v2 := f.save(t, map[string]string{"a": "2"})

		assert.Equal(t, 1, v1.Version)
		assert.Equal(t, 2, v2.Version)
		assert.False(t, v1.Active)
		assert.False(t, v2.Active)
		assert.Equal(t, "user-1", v1.CreatedBy)

		require.Len(t, f.recorder.logs, 2)
		assert.Equal(t, activity.ActionRegistrySave, f.recorder.logs[0].ActionType)
	})

	t.Run("rejects unknown target", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Save(testCtx(), SaveInput{
			PipelineID: f.pipeline.ID,
			Target:     "sideways",
			Config:     map[string]string{"a": "1"},
		})

		assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
	})

	t.Run("rejects empty config", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Save(testCtx(), SaveInput{
			PipelineID: f.pipeline.ID,
			Target:     TargetSource,
		})

		assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
	})

	t.Run("rejects unknown pipeline", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Save(testCtx(), SaveInput{
			PipelineID: uuid.New(),
			Target:     TargetSource,
			Config:     map[string]string{"a": "1"},
		})

		assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
	})
}

func TestList(t *testing.T) {
	f := newFixture(t)
	f.save(t, map[string]string{"a": "1"})
	f.save(t, map[string]string{"a": "2"})

	versions, err := f.service.List(testCtx(), f.pipeline.ID, TargetSource)

	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].Version)
	assert.Equal(t, 1, versions[1].Version)
}

func TestActivate(t *testing.T) {
	t.Run("applies config and deactivates predecessor", func(t *testing.T) {
		f := newFixture(t)
		v1 := f.save(t, map[string]string{"a": "1"})
		v2 := f.save(t, map[string]string{"a": "2"})

		f.connect.EXPECT().
			ApplyConnector(gomock.Any(), f.pipeline.SourceConnector(), v1.Config).
			Return(&connect.ConnectorInfo{}, nil)
		f.connect.EXPECT().
			ApplyConnector(gomock.Any(), f.pipeline.SourceConnector(), v2.Config).
			Return(&connect.ConnectorInfo{}, nil)

		_, err := f.service.Activate(testCtx(), f.pipeline.ID, TargetSource, 1)
		require.NoError(t, err)
		got, err := f.service.Activate(testCtx(), f.pipeline.ID, TargetSource, 2)
		require.NoError(t, err)
		assert.True(t, got.Active)

		active, err := f.store.Active(context.Background(), f.pipeline.ID, TargetSource)
		require.NoError(t, err)
		assert.Equal(t, 2, active.Version)

		versions, err := f.store.List(context.Background(), f.pipeline.ID, TargetSource)
		require.NoError(t, err)
		activeCount := 0
		for _, v := range versions {
			if v.Active {
				activeCount++
			}
		}
		assert.Equal(t, 1, activeCount)
	})

	t.Run("restores incumbent when connect fails", func(t *testing.T) {
		f := newFixture(t)
		v1 := f.save(t, map[string]string{"a": "1"})
		f.save(t, map[string]string{"a": "2"})

		f.connect.EXPECT().
			ApplyConnector(gomock.Any(), f.pipeline.SourceConnector(), v1.Config).
			Return(&connect.ConnectorInfo{}, nil)
		f.connect.EXPECT().
			ApplyConnector(gomock.Any(), f.pipeline.SourceConnector(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeUnavailable, "kafka connect unreachable"))

		_, err := f.service.Activate(testCtx(), f.pipeline.ID, TargetSource, 1)
		require.NoError(t, err)

		_, err = f.service.Activate(testCtx(), f.pipeline.ID, TargetSource, 2)
		assert.Equal(t, dErrors.CodeUnavailable, dErrors.CodeOf(err))

		active, err := f.store.Active(context.Background(), f.pipeline.ID, TargetSource)
		require.NoError(t, err)
		assert.Equal(t, 1, active.Version)
	})

	t.Run("unknown version is not found", func(t *testing.T) {
		f := newFixture(t)
		f.save(t, map[string]string{"a": "1"})

		_, err := f.service.Activate(testCtx(), f.pipeline.ID, TargetSource, 7)

		assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
	})
}

func TestRollback(t *testing.T) {
	t.Run("activates the previous version", func(t *testing.T) {
		f := newFixture(t)
		v1 := f.save(t, map[string]string{"a": "1"})
		v2 := f.save(t, map[string]string{"a": "2"})

		f.connect.EXPECT().
			ApplyConnector(gomock.Any(), f.pipeline.SourceConnector(), v2.Config).
			Return(&connect.ConnectorInfo{}, nil)
		f.connect.EXPECT().
			ApplyConnector(gomock.Any(), f.pipeline.SourceConnector(), v1.Config).
			Return(&connect.ConnectorInfo{}, nil)

		_, err := f.service.Activate(testCtx(), f.pipeline.ID, TargetSource, 2)
		require.NoError(t, err)
		f.recorder.logs = nil

		got, err := f.service.Rollback(testCtx(), f.pipeline.ID, TargetSource)

		require.NoError(t, err)
		assert.Equal(t, 1, got.Version)
		assert.True(t, got.Active)
		require.Len(t, f.recorder.logs, 1)
		assert.Equal(t, activity.ActionRegistryRollback, f.recorder.logs[0].ActionType)
	})

	t.Run("nothing earlier than version one", func(t *testing.T) {
		f := newFixture(t)
		v1 := f.save(t, map[string]string{"a": "1"})

		f.connect.EXPECT().
			ApplyConnector(gomock.Any(), f.pipeline.SourceConnector(), v1.Config).
			Return(&connect.ConnectorInfo{}, nil)
		_, err := f.service.Activate(testCtx(), f.pipeline.ID, TargetSource, 1)
		require.NoError(t, err)

		_, err = f.service.Rollback(testCtx(), f.pipeline.ID, TargetSource)

		assert.Equal(t, dErrors.CodeConflict, dErrors.CodeOf(err))
	})

	t.Run("no active version is not found", func(t *testing.T) {
		f := newFixture(t)
		f.save(t, map[string]string{"a": "1"})

		_, err := f.service.Rollback(testCtx(), f.pipeline.ID, TargetSource)

		assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
	})
}
