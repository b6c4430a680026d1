package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"datamover/internal/alerts"
	dErrors "datamover/pkg/domain-errors"
	"datamover/pkg/platform/httputil"
	"datamover/pkg/requestcontext"
)

// Service defines the interface for alert preference operations.
type Service interface {
	Save(ctx context.Context, in alerts.SaveInput) (alerts.Preference, error)
	List(ctx context.Context) ([]alerts.Preference, error)
	Delete(ctx context.Context, pipelineID *uuid.UUID) error
}

// Handler wires alert preference endpoints to the alerts service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an alerts handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts alert preference endpoints on the router. The pipeline
// scope comes from an optional pipeline_id query parameter.
func (h *Handler) Register(r chi.Router) {
	r.Route("/alerts/preferences", func(r chi.Router) {
		r.Put("/", h.HandleSave)
		r.Get("/", h.HandleList)
		r.Delete("/", h.HandleDelete)
	})
}

// HandleSave handles PUT /alerts/preferences.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SaveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	pref, err := h.service.Save(ctx, in)
	if err != nil {
		h.logger.ErrorContext(ctx, "alert preference save failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "alert preference saved",
		"request_id", requestID,
		"channels", pref.Channels,
	)
	httputil.WriteJSON(w, http.StatusOK, FromPreference(pref))
}

// HandleList handles GET /alerts/preferences.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	prefs, err := h.service.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPreferences(prefs))
}

// HandleDelete handles DELETE /alerts/preferences.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pipelineID, ok := h.scopeFromQuery(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, pipelineID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) scopeFromQuery(w http.ResponseWriter, r *http.Request) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get("pipeline_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "pipeline_id must be a UUID"))
		return nil, false
	}
	return &id, true
}
