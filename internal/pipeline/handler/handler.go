package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"datamover/internal/pipeline"
	dErrors "datamover/pkg/domain-errors"
	"datamover/pkg/platform/httputil"
	"datamover/pkg/requestcontext"
)

// Service defines the interface for pipeline operations.
type Service interface {
	Create(ctx context.Context, in pipeline.CreateInput) (pipeline.Pipeline, error)
	Get(ctx context.Context, id uuid.UUID) (pipeline.Pipeline, error)
	List(ctx context.Context) ([]pipeline.Pipeline, error)
	Update(ctx context.Context, id uuid.UUID, in pipeline.UpdateInput) (pipeline.Pipeline, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Deploy(ctx context.Context, id uuid.UUID) (pipeline.Pipeline, error)
	Start(ctx context.Context, id uuid.UUID) (pipeline.Pipeline, error)
	Pause(ctx context.Context, id uuid.UUID) (pipeline.Pipeline, error)
	Resume(ctx context.Context, id uuid.UUID) (pipeline.Pipeline, error)
	Restart(ctx context.Context, id uuid.UUID) (pipeline.Pipeline, error)
	RestartConnector(ctx context.Context, id uuid.UUID, target string) error
}

// Handler wires pipeline endpoints to the pipeline service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a pipeline handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts pipeline endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/pipelines", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Route("/{pipelineID}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Put("/", h.HandleUpdate)
			r.Delete("/", h.HandleDelete)
			r.Post("/deploy", h.lifecycle("deploy", h.service.Deploy))
			r.Post("/start", h.lifecycle("start", h.service.Start))
			r.Post("/pause", h.lifecycle("pause", h.service.Pause))
			r.Post("/resume", h.lifecycle("resume", h.service.Resume))
			r.Post("/restart", h.lifecycle("restart", h.service.Restart))
			r.Post("/connectors/{target}/restart", h.HandleConnectorRestart)
		})
	})
}

// HandleCreate handles POST /pipelines requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, err := h.service.Create(ctx, req.ToInput())
	if err != nil {
		h.logger.ErrorContext(ctx, "pipeline create failed",
			"request_id", requestID,
			"name", req.Name,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "pipeline created",
		"request_id", requestID,
		"pipeline_id", p.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromPipeline(p))
}

// HandleList handles GET /pipelines requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pipelines, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "pipeline list failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPipelines(pipelines))
}

// HandleGet handles GET /pipelines/{pipelineID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.pipelineID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPipeline(p))
}

// HandleUpdate handles PUT /pipelines/{pipelineID} requests.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, ok := h.pipelineID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, err := h.service.Update(ctx, id, req.ToInput())
	if err != nil {
		h.logger.ErrorContext(ctx, "pipeline update failed",
			"request_id", requestID,
			"pipeline_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPipeline(p))
}

// HandleDelete handles DELETE /pipelines/{pipelineID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, ok := h.pipelineID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "pipeline delete failed",
			"request_id", requestID,
			"pipeline_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "pipeline deleted",
		"request_id", requestID,
		"pipeline_id", id,
	)
	w.WriteHeader(http.StatusNoContent)
}

// lifecycle builds a POST handler for one status transition.
func (h *Handler) lifecycle(action string, op func(ctx context.Context, id uuid.UUID) (pipeline.Pipeline, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := requestcontext.RequestID(ctx)
		start := time.Now()

		id, ok := h.pipelineID(w, r)
		if !ok {
			return
		}

		p, err := op(ctx, id)
		if err != nil {
			h.logger.ErrorContext(ctx, "pipeline lifecycle operation failed",
				"request_id", requestID,
				"pipeline_id", id,
				"action", action,
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}

		h.logger.InfoContext(ctx, "pipeline lifecycle operation applied",
			"request_id", requestID,
			"pipeline_id", id,
			"action", action,
			"status", p.Status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		httputil.WriteJSON(w, http.StatusOK, FromPipeline(p))
	}
}

// HandleConnectorRestart handles POST /pipelines/{pipelineID}/connectors/{target}/restart.
func (h *Handler) HandleConnectorRestart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, ok := h.pipelineID(w, r)
	if !ok {
		return
	}
	target := chi.URLParam(r, "target")

	if err := h.service.RestartConnector(ctx, id, target); err != nil {
		h.logger.ErrorContext(ctx, "connector restart failed",
			"request_id", requestID,
			"pipeline_id", id,
			"target", target,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "connector restarted",
		"request_id", requestID,
		"pipeline_id", id,
		"target", target,
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pipelineID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "pipelineID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "pipeline id must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}
