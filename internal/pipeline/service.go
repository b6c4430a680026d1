package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"datamover/internal/activity"
	"datamover/internal/connect"
	"datamover/internal/pipeline/metrics"
	"datamover/internal/realtime"
	dErrors "datamover/pkg/domain-errors"
	"datamover/pkg/requestcontext"
)

// Recorder accepts activity records for the audit trail.
type Recorder interface {
	Record(ctx context.Context, log activity.Log)
}

// Broadcaster pushes change events to live dashboard subscribers.
type Broadcaster interface {
	Broadcast(event realtime.Event)
}

// Service owns pipeline records and drives their lifecycle against Kafka
// Connect. Lifecycle operations are optimistic: the new status is written
// first, the Connect call follows, and a failed call rolls the status back to
// what the store last confirmed.
type Service struct {
	store    Store
	connect  connect.Client
	recorder Recorder
	hub      Broadcaster
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(store Store, client connect.Client, recorder Recorder, hub Broadcaster, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:    store,
		connect:  client,
		recorder: recorder,
		hub:      hub,
		logger:   logger,
		metrics:  m,
	}
}

// CreateInput carries the fields a caller provides for a new pipeline.
type CreateInput struct {
	Name              string
	SourceConfig      map[string]string
	DestinationConfig map[string]string
	Topics            []string
}

// UpdateInput carries a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Name              *string
	SourceConfig      map[string]string
	DestinationConfig map[string]string
	Topics            []string
}

// Create registers a new pipeline in draft status. Nothing is sent to Kafka
// Connect until Deploy.
func (s *Service) Create(ctx context.Context, in CreateInput) (Pipeline, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Pipeline{}, dErrors.New(dErrors.CodeBadRequest, "pipeline name must not be empty")
	}

	now := requestcontext.Now(ctx)
	p := Pipeline{
		ID:                uuid.New(),
		Name:              name,
		SourceConfig:      in.SourceConfig,
		DestinationConfig: in.DestinationConfig,
		Topics:            in.Topics,
		Status:            StatusDraft,
		CreatedBy:         requestcontext.UserID(ctx),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return Pipeline{}, dErrors.Wrap(dErrors.CodeInternal, "failed to create pipeline", err)
	}

	s.record(ctx, activity.ActionPipelineCreate, p, fmt.Sprintf("created pipeline %q", p.Name))
	s.broadcast("pipeline.created", p)
	s.metrics.ObserveOperation("create", "success")
	return p, nil
}

// Get returns one pipeline and records the view for the activity trail.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Pipeline, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return Pipeline{}, err
	}
	s.record(ctx, activity.ActionPipelineView, p, fmt.Sprintf("viewed pipeline %q", p.Name))
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]Pipeline, error) {
	pipelines, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list pipelines", err)
	}
	return pipelines, nil
}

// Update applies the non-nil fields of in. Config changes do not reach Kafka
// Connect until the next Deploy.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (Pipeline, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return Pipeline{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Pipeline{}, dErrors.New(dErrors.CodeBadRequest, "pipeline name must not be empty")
		}
		p.Name = name
	}
	if in.SourceConfig != nil {
		p.SourceConfig = in.SourceConfig
	}
	if in.DestinationConfig != nil {
		p.DestinationConfig = in.DestinationConfig
	}
	if in.Topics != nil {
		p.Topics = in.Topics
	}
	p.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, p); err != nil {
		return Pipeline{}, s.storeError("failed to update pipeline", err)
	}

	s.record(ctx, activity.ActionPipelineUpdate, p, fmt.Sprintf("updated pipeline %q", p.Name))
	s.broadcast("pipeline.updated", p)
	s.metrics.ObserveOperation("update", "success")
	return p, nil
}

// Deploy pushes the pipeline's source and sink connector configs to Kafka
// Connect. The status passes through deploying and lands on running.
func (s *Service) Deploy(ctx context.Context, id uuid.UUID) (Pipeline, error) {
	return s.lifecycle(ctx, id, lifecycleOp{
		action:      "deploy",
		actionType:  activity.ActionPipelineDeploy,
		optimistic:  StatusDeploying,
		final:       StatusRunning,
		description: "deployed pipeline %q",
		allowed:     func(Status) bool { return true },
		call: func(ctx context.Context, p Pipeline) error {
			if _, err := s.connect.ApplyConnector(ctx, p.SourceConnector(), p.SourceConfig); err != nil {
				return err
			}
			_, err := s.connect.ApplyConnector(ctx, p.SinkConnector(), p.DestinationConfig)
			return err
		},
	})
}

// Start resumes a deployed pipeline's connectors.
func (s *Service) Start(ctx context.Context, id uuid.UUID) (Pipeline, error) {
	return s.lifecycle(ctx, id, lifecycleOp{
		action:      "start",
		actionType:  activity.ActionPipelineStart,
		optimistic:  StatusRunning,
		final:       StatusRunning,
		description: "started pipeline %q",
		allowed:     deployedOnly,
		call:        s.resumeConnectors,
	})
}

// Pause suspends a running pipeline's connectors.
func (s *Service) Pause(ctx context.Context, id uuid.UUID) (Pipeline, error) {
	return s.lifecycle(ctx, id, lifecycleOp{
		action:      "pause",
		actionType:  activity.ActionPipelinePause,
		optimistic:  StatusPaused,
		final:       StatusPaused,
		description: "paused pipeline %q",
		allowed:     func(st Status) bool { return st == StatusRunning },
		call: func(ctx context.Context, p Pipeline) error {
			return s.eachConnector(ctx, p, s.connect.PauseConnector)
		},
	})
}

// Resume is Start under its dashboard name: paused back to running.
func (s *Service) Resume(ctx context.Context, id uuid.UUID) (Pipeline, error) {
	return s.lifecycle(ctx, id, lifecycleOp{
		action:      "resume",
		actionType:  activity.ActionPipelineResume,
		optimistic:  StatusRunning,
		final:       StatusRunning,
		description: "resumed pipeline %q",
		allowed:     func(st Status) bool { return st == StatusPaused },
		call:        s.resumeConnectors,
	})
}

// Restart bounces both connectors without changing the stored config.
func (s *Service) Restart(ctx context.Context, id uuid.UUID) (Pipeline, error) {
	return s.lifecycle(ctx, id, lifecycleOp{
		action:      "restart",
		actionType:  activity.ActionPipelineRestart,
		optimistic:  StatusRunning,
		final:       StatusRunning,
		description: "restarted pipeline %q",
		allowed:     deployedOnly,
		call: func(ctx context.Context, p Pipeline) error {
			return s.eachConnector(ctx, p, s.connect.RestartConnector)
		},
	})
}

// RestartConnector bounces a single connector without touching the pipeline
// status. The activity record carries the connector resource type, so these
// restarts never fold into pipeline activity groups.
func (s *Service) RestartConnector(ctx context.Context, id uuid.UUID, target string) error {
	p, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !p.Deployed() {
		return dErrors.New(dErrors.CodeConflict, "pipeline has no deployed connectors")
	}

	var name string
	switch target {
	case "source":
		name = p.SourceConnector()
	case "sink":
		name = p.SinkConnector()
	default:
		return dErrors.New(dErrors.CodeBadRequest, "connector target must be source or sink")
	}

	if err := s.connect.RestartConnector(ctx, name); err != nil {
		s.metrics.ObserveOperation("connector_restart", "error")
		return err
	}

	if s.recorder != nil {
		s.recorder.Record(ctx, activity.Log{
			ActionType:        activity.ActionConnectorRestart,
			ActionDescription: fmt.Sprintf("restarted %s connector of pipeline %q", target, p.Name),
			ResourceType:      activity.ResourceConnector,
			ResourceID:        name,
		})
	}
	s.broadcast("connector.restarted", p)
	s.metrics.ObserveOperation("connector_restart", "success")
	return nil
}

// Delete removes the pipeline record. Deployed pipelines first have their
// connectors deleted from Kafka Connect; the record stays in deleted-pending
// until Connect confirms, and rolls back if it does not.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	now := requestcontext.Now(ctx)

	if p.Deployed() {
		prev := p.Status
		if err := s.store.UpdateStatus(ctx, id, StatusDeletedPending, now); err != nil {
			return s.storeError("failed to update pipeline status", err)
		}
		// Missing connectors are fine: deleting one is then a no-op.
		deleteConnector := func(ctx context.Context, name string) error {
			err := s.connect.DeleteConnector(ctx, name)
			if err != nil && dErrors.CodeOf(err) != dErrors.CodeNotFound {
				return err
			}
			return nil
		}
		if err := s.eachConnector(ctx, p, deleteConnector); err != nil {
			s.rollback(ctx, p, prev)
			s.metrics.ObserveOperation("delete", "error")
			return err
		}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return s.storeError("failed to delete pipeline", err)
	}

	s.record(ctx, activity.ActionPipelineDelete, p, fmt.Sprintf("deleted pipeline %q", p.Name))
	s.broadcast("pipeline.deleted", p)
	s.metrics.ObserveOperation("delete", "success")
	return nil
}

// lifecycleOp describes one optimistic status transition.
type lifecycleOp struct {
	action      string
	actionType  string
	optimistic  Status
	final       Status
	description string
	allowed     func(Status) bool
	call        func(ctx context.Context, p Pipeline) error
}

func (s *Service) lifecycle(ctx context.Context, id uuid.UUID, op lifecycleOp) (Pipeline, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return Pipeline{}, err
	}
	if !op.allowed(p.Status) {
		return Pipeline{}, dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("cannot %s pipeline in status %s", op.action, p.Status))
	}

	prev := p.Status
	now := requestcontext.Now(ctx)
	if err := s.store.UpdateStatus(ctx, id, op.optimistic, now); err != nil {
		return Pipeline{}, s.storeError("failed to update pipeline status", err)
	}

	if err := op.call(ctx, p); err != nil {
		s.rollback(ctx, p, prev)
		s.metrics.ObserveOperation(op.action, "error")
		return Pipeline{}, err
	}

	if op.final != op.optimistic {
		if err := s.store.UpdateStatus(ctx, id, op.final, now); err != nil {
			return Pipeline{}, s.storeError("failed to update pipeline status", err)
		}
	}
	p.Status = op.final
	p.UpdatedAt = now

	s.record(ctx, op.actionType, p, fmt.Sprintf(op.description, p.Name))
	s.broadcast("pipeline.status_changed", p)
	s.metrics.ObserveOperation(op.action, "success")
	return p, nil
}

// rollback restores the last status the store confirmed before the failed
// Connect call. A rollback failure leaves the optimistic status in place;
// the monitoring collector reconciles it on the next sweep.
func (s *Service) rollback(ctx context.Context, p Pipeline, prev Status) {
	s.metrics.IncRollback()
	if err := s.store.UpdateStatus(ctx, p.ID, prev, requestcontext.Now(ctx)); err != nil {
		s.logger.ErrorContext(ctx, "failed to roll back pipeline status",
			"pipeline_id", p.ID,
			"status", prev,
			"error", err,
		)
	}
}

func (s *Service) resumeConnectors(ctx context.Context, p Pipeline) error {
	return s.eachConnector(ctx, p, s.connect.ResumeConnector)
}

func (s *Service) eachConnector(ctx context.Context, p Pipeline, fn func(ctx context.Context, name string) error) error {
	if err := fn(ctx, p.SourceConnector()); err != nil {
		return err
	}
	return fn(ctx, p.SinkConnector())
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (Pipeline, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return Pipeline{}, s.storeError("failed to load pipeline", err)
	}
	return p, nil
}

func (s *Service) storeError(message string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "pipeline not found")
	}
	return dErrors.Wrap(dErrors.CodeInternal, message, err)
}

func (s *Service) record(ctx context.Context, actionType string, p Pipeline, description string) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(ctx, activity.Log{
		ActionType:        actionType,
		ActionDescription: description,
		ResourceType:      activity.ResourcePipeline,
		ResourceID:        p.ID.String(),
	})
}

func (s *Service) broadcast(eventType string, p Pipeline) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(realtime.Event{
		Type:       eventType,
		Resource:   activity.ResourcePipeline,
		ResourceID: p.ID.String(),
		Payload:    p,
	})
}

func deployedOnly(st Status) bool {
	return st != StatusDraft
}
