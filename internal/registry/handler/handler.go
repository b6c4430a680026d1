package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"datamover/internal/registry"
	dErrors "datamover/pkg/domain-errors"
	"datamover/pkg/platform/httputil"
	"datamover/pkg/requestcontext"
)

// Service defines the interface for config registry operations.
type Service interface {
	Save(ctx context.Context, in registry.SaveInput) (registry.ConfigVersion, error)
	List(ctx context.Context, pipelineID uuid.UUID, target registry.Target) ([]registry.ConfigVersion, error)
	Get(ctx context.Context, pipelineID uuid.UUID, target registry.Target, version int) (registry.ConfigVersion, error)
	Activate(ctx context.Context, pipelineID uuid.UUID, target registry.Target, version int) (registry.ConfigVersion, error)
	Rollback(ctx context.Context, pipelineID uuid.UUID, target registry.Target) (registry.ConfigVersion, error)
}

// Handler wires registry endpoints to the registry service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a registry handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts registry endpoints on the router. Versions are scoped to
// one pipeline connector: /pipelines/{id}/registry/{target}.
func (h *Handler) Register(r chi.Router) {
	r.Route("/pipelines/{pipelineID}/registry/{target}", func(r chi.Router) {
		r.Post("/", h.HandleSave)
		r.Get("/", h.HandleList)
		r.Get("/{version}", h.HandleGet)
		r.Post("/{version}/activate", h.HandleActivate)
		r.Post("/rollback", h.HandleRollback)
	})
}

// HandleSave handles POST /pipelines/{pipelineID}/registry/{target}.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	pipelineID, target, ok := h.scope(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SaveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	v, err := h.service.Save(ctx, registry.SaveInput{
		PipelineID: pipelineID,
		Target:     target,
		Config:     req.Config,
		Comment:    req.Comment,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "config version save failed",
			"request_id", requestID,
			"pipeline_id", pipelineID,
			"target", target,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "config version saved",
		"request_id", requestID,
		"pipeline_id", pipelineID,
		"target", target,
		"version", v.Version,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromVersion(v))
}

// HandleList handles GET /pipelines/{pipelineID}/registry/{target}.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pipelineID, target, ok := h.scope(w, r)
	if !ok {
		return
	}

	versions, err := h.service.List(ctx, pipelineID, target)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromVersions(versions))
}

// HandleGet handles GET /pipelines/{pipelineID}/registry/{target}/{version}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pipelineID, target, ok := h.scope(w, r)
	if !ok {
		return
	}
	version, ok := h.version(w, r)
	if !ok {
		return
	}

	v, err := h.service.Get(ctx, pipelineID, target, version)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromVersion(v))
}

// HandleActivate handles POST .../registry/{target}/{version}/activate.
func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	pipelineID, target, ok := h.scope(w, r)
	if !ok {
		return
	}
	version, ok := h.version(w, r)
	if !ok {
		return
	}

	v, err := h.service.Activate(ctx, pipelineID, target, version)
	if err != nil {
		h.logger.ErrorContext(ctx, "config version activation failed",
			"request_id", requestID,
			"pipeline_id", pipelineID,
			"target", target,
			"version", version,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "config version activated",
		"request_id", requestID,
		"pipeline_id", pipelineID,
		"target", target,
		"version", v.Version,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromVersion(v))
}

// HandleRollback handles POST .../registry/{target}/rollback.
func (h *Handler) HandleRollback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	pipelineID, target, ok := h.scope(w, r)
	if !ok {
		return
	}

	v, err := h.service.Rollback(ctx, pipelineID, target)
	if err != nil {
		h.logger.ErrorContext(ctx, "config rollback failed",
			"request_id", requestID,
			"pipeline_id", pipelineID,
			"target", target,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "config rolled back",
		"request_id", requestID,
		"pipeline_id", pipelineID,
		"target", target,
		"version", v.Version,
	)
	httputil.WriteJSON(w, http.StatusOK, FromVersion(v))
}

func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (uuid.UUID, registry.Target, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "pipelineID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "pipeline id must be a UUID"))
		return uuid.Nil, "", false
	}
	target := registry.Target(chi.URLParam(r, "target"))
	if !target.Valid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "target must be source or sink"))
		return uuid.Nil, "", false
	}
	return id, target, true
}

func (h *Handler) version(w http.ResponseWriter, r *http.Request) (int, bool) {
	version, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil || version < 1 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "version must be a positive integer"))
		return 0, false
	}
	return version, true
}
