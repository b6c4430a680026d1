package alerts

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"datamover/internal/activity"
	dErrors "datamover/pkg/domain-errors"
	platformstrings "datamover/pkg/platform/strings"
	"datamover/pkg/requestcontext"
)

// Channels a preference may notify.
var knownChannels = map[string]bool{
	"email":     true,
	"slack":     true,
	"webhook":   true,
	"dashboard": true,
}

// Recorder accepts activity records for the audit trail.
type Recorder interface {
	Record(ctx context.Context, log activity.Log)
}

// Service owns alert preferences. All operations are scoped to the
// authenticated user taken from the request context.
type Service struct {
	store    Store
	recorder Recorder
	logger   *slog.Logger
}

func NewService(store Store, recorder Recorder, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		recorder: recorder,
		logger:   logger,
	}
}

// SaveInput carries the fields for a preference upsert.
type SaveInput struct {
	PipelineID       *uuid.UUID
	Channels         []string
	NotifyOnFailure  bool
	NotifyOnRecovery bool
	FailureThreshold int
}

// Save creates or replaces the caller's preference for one scope. Channels
// are deduplicated case-insensitively.
func (s *Service) Save(ctx context.Context, in SaveInput) (Preference, error) {
	userID := requestcontext.UserID(ctx)
	if userID == "" {
		return Preference{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	channels := platformstrings.DedupeAndTrimLower(in.Channels)
	if len(channels) == 0 {
		return Preference{}, dErrors.New(dErrors.CodeBadRequest, "at least one channel is required")
	}
	for _, ch := range channels {
		if !knownChannels[ch] {
			return Preference{}, dErrors.New(dErrors.CodeBadRequest, "unknown channel: "+ch)
		}
	}
	if in.FailureThreshold < 0 {
		return Preference{}, dErrors.New(dErrors.CodeBadRequest, "failure threshold must not be negative")
	}

	pref := Preference{
		ID:               uuid.New(),
		UserID:           userID,
		PipelineID:       in.PipelineID,
		Channels:         channels,
		NotifyOnFailure:  in.NotifyOnFailure,
		NotifyOnRecovery: in.NotifyOnRecovery,
		FailureThreshold: in.FailureThreshold,
		UpdatedAt:        requestcontext.Now(ctx),
	}
	if err := s.store.Upsert(ctx, pref); err != nil {
		return Preference{}, dErrors.Wrap(dErrors.CodeInternal, "failed to save alert preference", err)
	}

	if s.recorder != nil {
		s.recorder.Record(ctx, activity.Log{
			ActionType:        activity.ActionAlertsUpdate,
			ActionDescription: "updated alert preferences",
			ResourceType:      activity.ResourceAlerts,
			ResourceID:        scopeResourceID(in.PipelineID),
		})
	}
	return pref, nil
}

// List returns all of the caller's preferences, global scope first.
func (s *Service) List(ctx context.Context) ([]Preference, error) {
	userID := requestcontext.UserID(ctx)
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	prefs, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list alert preferences", err)
	}
	return prefs, nil
}

// Delete removes the caller's preference for one scope.
func (s *Service) Delete(ctx context.Context, pipelineID *uuid.UUID) error {
	userID := requestcontext.UserID(ctx)
	if userID == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if err := s.store.Delete(ctx, userID, pipelineID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "alert preference not found")
		}
		return dErrors.Wrap(dErrors.CodeInternal, "failed to delete alert preference", err)
	}
	return nil
}

func scopeResourceID(pipelineID *uuid.UUID) string {
	if pipelineID == nil {
		return ""
	}
	return pipelineID.String()
}
