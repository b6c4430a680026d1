package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"datamover/internal/activity/metrics"
	"datamover/internal/realtime"
	"datamover/pkg/requestcontext"
)

// Broadcaster pushes change events to live dashboard subscribers.
type Broadcaster interface {
	Broadcast(event realtime.Event)
}

// Service accepts activity records from request handlers and persists them in
// the background. Recording is fire-and-forget: a full queue drops the record
// rather than slowing the request path.
type Service struct {
	store   Store
	hub     Broadcaster
	queue   chan Log
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewService constructs the activity service with the given queue capacity.
func NewService(store Store, hub Broadcaster, logger *slog.Logger, m *metrics.Metrics, queueSize int) *Service {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &Service{
		store:   store,
		hub:     hub,
		queue:   make(chan Log, queueSize),
		logger:  logger,
		metrics: m,
	}
}

// Record enqueues an activity record. Missing ID and CreatedAt are filled in;
// client metadata from the request context enriches the record's metadata.
// Returns immediately; persistence happens in Run.
func (s *Service) Record(ctx context.Context, log Log) {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = requestcontext.Now(ctx)
	}
	if log.UserID == "" {
		log.UserID = requestcontext.UserID(ctx)
	}
	if ip := requestcontext.ClientIP(ctx); ip != "" {
		log.Metadata = withMeta(log.Metadata, "client_ip", ip)
	}
	if app := requestcontext.ClientApp(ctx); app != "" {
		log.Metadata = withMeta(log.Metadata, "client_app", app)
	}

	select {
	case s.queue <- log:
		s.metrics.IncRecorded()
	default:
		s.metrics.IncQueueDropped()
		s.logger.WarnContext(ctx, "activity queue full, dropping record",
			"action_type", log.ActionType,
			"resource_id", log.ResourceID,
		)
	}
}

// Run persists queued records until ctx is cancelled, then drains whatever is
// still buffered before returning.
func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.drain()
			return ctx.Err()
		case log := <-s.queue:
			s.persist(ctx, log)
		}
	}
}

func (s *Service) drain() {
	// Bounded context: shutdown should not hang on a dead database.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case log := <-s.queue:
			s.persist(ctx, log)
		default:
			return
		}
	}
}

func (s *Service) persist(ctx context.Context, log Log) {
	if err := s.store.Append(ctx, log); err != nil {
		s.metrics.IncPersistFailures()
		s.logger.ErrorContext(ctx, "failed to persist activity record",
			"action_type", log.ActionType,
			"resource_id", log.ResourceID,
			"error", err,
		)
		return
	}
	if s.hub != nil {
		s.hub.Broadcast(realtime.Event{
			Type:       "activity.recorded",
			Resource:   log.ResourceType,
			ResourceID: log.ResourceID,
			Payload:    log,
		})
	}
}

// List returns records newest-first, filtered.
func (s *Service) List(ctx context.Context, filter Filter) ([]Log, error) {
	return s.store.List(ctx, filter)
}

// ListGrouped returns records collapsed by the grouping heuristic.
func (s *Service) ListGrouped(ctx context.Context, filter Filter) ([]Group, error) {
	logs, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return GroupLogs(logs), nil
}

func withMeta(m map[string]any, key string, value any) map[string]any {
	if m == nil {
		m = make(map[string]any, 2)
	}
	if _, exists := m[key]; !exists {
		m[key] = value
	}
	return m
}
