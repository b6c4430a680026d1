package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"datamover/internal/activity"
	"datamover/internal/connect"
	"datamover/internal/pipeline"
	"datamover/internal/realtime"
	dErrors "datamover/pkg/domain-errors"
	"datamover/pkg/requestcontext"
)

// Pipelines resolves pipeline records for connector naming.
type Pipelines interface {
	Get(ctx context.Context, id uuid.UUID) (pipeline.Pipeline, error)
}

// Recorder accepts activity records for the audit trail.
type Recorder interface {
	Record(ctx context.Context, log activity.Log)
}

// Broadcaster pushes change events to live dashboard subscribers.
type Broadcaster interface {
	Broadcast(event realtime.Event)
}

// Service owns the versioned config registry. Saving never touches Kafka
// Connect; only Activate (and Rollback, which is an activation of the
// previous version) pushes a config out.
type Service struct {
	store     Store
	pipelines Pipelines
	connect   connect.Client
	recorder  Recorder
	hub       Broadcaster
	logger    *slog.Logger
}

func NewService(store Store, pipelines Pipelines, client connect.Client, recorder Recorder, hub Broadcaster, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		pipelines: pipelines,
		connect:   client,
		recorder:  recorder,
		hub:       hub,
		logger:    logger,
	}
}

// SaveInput carries the fields for a new config version.
type SaveInput struct {
	PipelineID uuid.UUID
	Target     Target
	Config     map[string]string
	Comment    string
}

// Save appends a new inactive version numbered one past the latest.
func (s *Service) Save(ctx context.Context, in SaveInput) (ConfigVersion, error) {
	if !in.Target.Valid() {
		return ConfigVersion{}, dErrors.New(dErrors.CodeBadRequest, "target must be source or sink")
	}
	if len(in.Config) == 0 {
		return ConfigVersion{}, dErrors.New(dErrors.CodeBadRequest, "config must not be empty")
	}
	p, err := s.pipelines.Get(ctx, in.PipelineID)
	if err != nil {
		return ConfigVersion{}, err
	}

	v, err := s.store.Save(ctx, ConfigVersion{
		ID:         uuid.New(),
		PipelineID: in.PipelineID,
		Target:     in.Target,
		Config:     in.Config,
		Comment:    in.Comment,
		CreatedBy:  requestcontext.UserID(ctx),
		CreatedAt:  requestcontext.Now(ctx),
	})
	if err != nil {
		return ConfigVersion{}, dErrors.Wrap(dErrors.CodeInternal, "failed to save config version", err)
	}

	s.record(ctx, activity.ActionRegistrySave, v,
		fmt.Sprintf("saved %s config v%d for pipeline %q", v.Target, v.Version, p.Name))
	return v, nil
}

// List returns all versions for one pipeline connector, newest first.
func (s *Service) List(ctx context.Context, pipelineID uuid.UUID, target Target) ([]ConfigVersion, error) {
	if !target.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "target must be source or sink")
	}
	versions, err := s.store.List(ctx, pipelineID, target)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list config versions", err)
	}
	return versions, nil
}

// Get returns one version.
func (s *Service) Get(ctx context.Context, pipelineID uuid.UUID, target Target, version int) (ConfigVersion, error) {
	v, err := s.store.Get(ctx, pipelineID, target, version)
	if err != nil {
		return ConfigVersion{}, s.storeError(err)
	}
	return v, nil
}

// Activate marks the version active, deactivating any predecessor, and
// applies its config to the pipeline's connector. A failed Connect call
// restores the previously active version.
func (s *Service) Activate(ctx context.Context, pipelineID uuid.UUID, target Target, version int) (ConfigVersion, error) {
	return s.activate(ctx, pipelineID, target, version, activity.ActionRegistryActivate, "activated")
}

// Rollback activates the version before the currently active one.
func (s *Service) Rollback(ctx context.Context, pipelineID uuid.UUID, target Target) (ConfigVersion, error) {
	active, err := s.store.Active(ctx, pipelineID, target)
	if err != nil {
		return ConfigVersion{}, s.storeError(err)
	}
	if active.Version <= 1 {
		return ConfigVersion{}, dErrors.New(dErrors.CodeConflict, "no earlier version to roll back to")
	}
	return s.activate(ctx, pipelineID, target, active.Version-1, activity.ActionRegistryRollback, "rolled back to")
}

func (s *Service) activate(ctx context.Context, pipelineID uuid.UUID, target Target, version int, actionType, verb string) (ConfigVersion, error) {
	if !target.Valid() {
		return ConfigVersion{}, dErrors.New(dErrors.CodeBadRequest, "target must be source or sink")
	}
	p, err := s.pipelines.Get(ctx, pipelineID)
	if err != nil {
		return ConfigVersion{}, err
	}
	v, err := s.store.Get(ctx, pipelineID, target, version)
	if err != nil {
		return ConfigVersion{}, s.storeError(err)
	}

	// Remember the incumbent for rollback; ErrNoActive means a fresh
	// pipeline with nothing to restore.
	prev, err := s.store.Active(ctx, pipelineID, target)
	hadPrev := err == nil
	if err != nil && !errors.Is(err, ErrNoActive) {
		return ConfigVersion{}, s.storeError(err)
	}

	if err := s.store.SetActive(ctx, pipelineID, target, version); err != nil {
		return ConfigVersion{}, s.storeError(err)
	}

	name := p.SourceConnector()
	if target == TargetSink {
		name = p.SinkConnector()
	}
	if _, err := s.connect.ApplyConnector(ctx, name, v.Config); err != nil {
		if hadPrev {
			if restoreErr := s.store.SetActive(ctx, pipelineID, target, prev.Version); restoreErr != nil {
				s.logger.ErrorContext(ctx, "failed to restore previous active config version",
					"pipeline_id", pipelineID,
					"target", target,
					"version", prev.Version,
					"error", restoreErr,
				)
			}
		}
		return ConfigVersion{}, err
	}
	v.Active = true

	s.record(ctx, actionType, v,
		fmt.Sprintf("%s %s config v%d for pipeline %q", verb, target, v.Version, p.Name))
	if s.hub != nil {
		s.hub.Broadcast(realtime.Event{
			Type:       "registry.activated",
			Resource:   activity.ResourceRegistry,
			ResourceID: pipelineID.String(),
			Payload:    v,
		})
	}
	return v, nil
}

func (s *Service) record(ctx context.Context, actionType string, v ConfigVersion, description string) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(ctx, activity.Log{
		ActionType:        actionType,
		ActionDescription: description,
		ResourceType:      activity.ResourceRegistry,
		ResourceID:        v.PipelineID.String(),
		Metadata: map[string]any{
			"target":  string(v.Target),
			"version": v.Version,
		},
	})
}

func (s *Service) storeError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "config version not found")
	case errors.Is(err, ErrNoActive):
		return dErrors.New(dErrors.CodeNotFound, "no active config version")
	default:
		return dErrors.Wrap(dErrors.CodeInternal, "config registry query failed", err)
	}
}
