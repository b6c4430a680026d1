// Package handler exposes API key management endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"datamover/internal/auth"
	dErrors "datamover/pkg/domain-errors"
	"datamover/pkg/platform/httputil"
	"datamover/pkg/requestcontext"
)

// Service defines the interface for API key operations.
type Service interface {
	Issue(ctx context.Context, name string) (auth.APIKey, string, error)
	List(ctx context.Context) ([]auth.APIKey, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

// Handler wires API key endpoints to the auth service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an auth handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts API key endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/auth/keys", func(r chi.Router) {
		r.Post("/", h.HandleIssue)
		r.Get("/", h.HandleList)
		r.Delete("/{keyID}", h.HandleRevoke)
	})
}

// HandleIssue handles POST /auth/keys. The response carries the plaintext
// key exactly once.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	key, plaintext, err := h.service.Issue(ctx, req.Name)
	if err != nil {
		h.logger.ErrorContext(ctx, "api key issue failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "api key issued",
		"request_id", requestID,
		"key_id", key.ID,
		"name", key.Name,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromIssuedKey(key, plaintext))
}

// HandleList handles GET /auth/keys.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	keys, err := h.service.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromKeys(keys))
}

// HandleRevoke handles DELETE /auth/keys/{keyID}.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "keyID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "key id must be a UUID"))
		return
	}

	if err := h.service.Revoke(ctx, id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
