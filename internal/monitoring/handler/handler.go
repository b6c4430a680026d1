package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"datamover/internal/monitoring"
	dErrors "datamover/pkg/domain-errors"
	"datamover/pkg/platform/httputil"
)

const (
	defaultWindow = time.Hour
	defaultStep   = time.Minute
)

// Service defines the interface for monitoring queries.
type Service interface {
	Timeseries(ctx context.Context, pipelineID uuid.UUID, window, step time.Duration) ([]monitoring.Bucket, error)
	Summary(ctx context.Context) (monitoring.Summary, error)
	Snapshot(ctx context.Context, pipelineID uuid.UUID) (monitoring.Snapshot, error)
}

// Handler wires monitoring endpoints to the monitoring service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a monitoring handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts monitoring endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/monitoring", func(r chi.Router) {
		r.Get("/summary", h.HandleSummary)
		r.Get("/pipelines/{pipelineID}/snapshot", h.HandleSnapshot)
		r.Get("/pipelines/{pipelineID}/timeseries", h.HandleTimeseries)
	})
}

// HandleSummary handles GET /monitoring/summary.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.service.Summary(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "monitoring summary failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

// HandleSnapshot handles GET /monitoring/pipelines/{pipelineID}/snapshot.
func (h *Handler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.pipelineID(w, r)
	if !ok {
		return
	}

	snap, err := h.service.Snapshot(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

// HandleTimeseries handles GET /monitoring/pipelines/{pipelineID}/timeseries.
// Query params window and step take Go duration strings.
func (h *Handler) HandleTimeseries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.pipelineID(w, r)
	if !ok {
		return
	}

	window, ok := h.duration(w, r, "window", defaultWindow)
	if !ok {
		return
	}
	step, ok := h.duration(w, r, "step", defaultStep)
	if !ok {
		return
	}

	buckets, err := h.service.Timeseries(ctx, id, window, step)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TimeseriesResponse{Buckets: buckets})
}

// TimeseriesResponse is the HTTP response for timeseries queries.
type TimeseriesResponse struct {
	Buckets []monitoring.Bucket `json:"buckets"`
}

func (h *Handler) pipelineID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "pipelineID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "pipeline id must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) duration(w http.ResponseWriter, r *http.Request, param string, fallback time.Duration) (time.Duration, bool) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return fallback, true
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, param+" must be a positive duration"))
		return 0, false
	}
	return d, true
}
