package monitoring

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

	"datamover/internal/connect"
	"datamover/internal/connect/mocks"
	"datamover/internal/pipeline"
	"datamover/internal/realtime"
)

type captureHub struct {
	events []realtime.Event
}

func (h *captureHub) Broadcast(event realtime.Event) {
	h.events = append(h.events, event)
}

func runningStatus(name string) *connect.ConnectorStatus {
	st := &connect.ConnectorStatus{Name: name}
	st.Connector.State = connect.StateRunning
	st.Tasks = []connect.TaskStatus{{ID: 0, State: connect.StateRunning}}
	return st
}

func failedStatus(name string) *connect.ConnectorStatus {
	st := &connect.ConnectorStatus{Name: name}
	st.Connector.State = connect.StateRunning
	st.Tasks = []connect.TaskStatus{{ID: 0, State: connect.StateFailed, Trace: "boom"}}
	return st
}

type collectorFixture struct {
	collector *Collector
	pipelines *pipeline.MemoryStore
	store     *MemoryStore
	connect   *mocks.MockClient
	hub       *captureHub
}

func newCollectorFixture(t *testing.T) *collectorFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	pipelines := pipeline.NewMemoryStore()
	store := NewMemoryStore()
	hub := &captureHub{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	collector := NewCollector(pipelines, client, store, nil, nil, hub, logger, nil, CollectorConfig{
		Interval:    10 * time.Millisecond,
		MaxParallel: 4,
	})
	return &collectorFixture{
		collector: collector,
		pipelines: pipelines,
		store:     store,
		connect:   client,
		hub:       hub,
	}
}

func (f *collectorFixture) seed(t *testing.T, status pipeline.Status) pipeline.Pipeline {
	t.Helper()
	p := pipeline.Pipeline{
		ID:        uuid.New(),
		Name:      "orders-cdc",
		Status:    status,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.pipelines.Create(context.Background(), p))
	return p
}

func TestSweep(t *testing.T) {
	t.Run("records a point per deployed pipeline", func(t *testing.T) {
		f := newCollectorFixture(t)
		deployed := f.seed(t, pipeline.StatusRunning)
		f.seed(t, pipeline.StatusDraft)

		f.connect.EXPECT().ConnectorStatus(gomock.Any(), deployed.SourceConnector()).
			Return(runningStatus(deployed.SourceConnector()), nil)
		f.connect.EXPECT().ConnectorStatus(gomock.Any(), deployed.SinkConnector()).
			Return(runningStatus(deployed.SinkConnector()), nil)

		f.collector.sweep(context.Background())

		point, err := f.store.Latest(context.Background(), deployed.ID)
		require.NoError(t, err)
		assert.Equal(t, StateRunning, point.State)
		assert.Equal(t, 2, point.TasksRunning)

		summary, err := f.store.Summary(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Pipelines)
	})

	t.Run("failed task marks the pipeline failed and reconciles", func(t *testing.T) {
		f := newCollectorFixture(t)
		p := f.seed(t, pipeline.StatusRunning)

		f.connect.EXPECT().ConnectorStatus(gomock.Any(), p.SourceConnector()).
			Return(runningStatus(p.SourceConnector()), nil)
		f.connect.EXPECT().ConnectorStatus(gomock.Any(), p.SinkConnector()).
			Return(failedStatus(p.SinkConnector()), nil)

		f.collector.sweep(context.Background())

		point, err := f.store.Latest(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, StateFailed, point.State)
		assert.Equal(t, 1, point.TasksFailed)

		stored, err := f.pipelines.Get(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, pipeline.StatusFailed, stored.Status)
	})

	t.Run("unreachable connect leaves the stored status alone", func(t *testing.T) {
		f := newCollectorFixture(t)
		p := f.seed(t, pipeline.StatusRunning)

		f.connect.EXPECT().ConnectorStatus(gomock.Any(), gomock.Any()).
			Return(nil, unreachableErr()).Times(2)

		f.collector.sweep(context.Background())

		point, err := f.store.Latest(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, StateUnknown, point.State)

		stored, err := f.pipelines.Get(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, pipeline.StatusRunning, stored.Status)
	})

	t.Run("broadcasts state transitions only", func(t *testing.T) {
		f := newCollectorFixture(t)
		p := f.seed(t, pipeline.StatusRunning)

		f.connect.EXPECT().ConnectorStatus(gomock.Any(), gomock.Any()).
			Return(runningStatus(p.SourceConnector()), nil).Times(2)
		f.collector.sweep(context.Background())
		assert.Empty(t, f.hub.events)

		f.connect.EXPECT().ConnectorStatus(gomock.Any(), p.SourceConnector()).
			Return(runningStatus(p.SourceConnector()), nil)
		f.connect.EXPECT().ConnectorStatus(gomock.Any(), p.SinkConnector()).
			Return(failedStatus(p.SinkConnector()), nil)
		f.collector.sweep(context.Background())

		require.Len(t, f.hub.events, 1)
		assert.Equal(t, "monitoring.state_changed", f.hub.events[0].Type)
		assert.Equal(t, p.ID.String(), f.hub.events[0].ResourceID)
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newCollectorFixture(t)
	f.seed(t, pipeline.StatusRunning)
	f.connect.EXPECT().ConnectorStatus(gomock.Any(), gomock.Any()).
		Return(runningStatus("any"), nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.collector.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("collector did not stop after cancellation")
	}
}

func unreachableErr() error {
	return context.DeadlineExceeded
}
