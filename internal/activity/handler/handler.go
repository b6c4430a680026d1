package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"datamover/internal/activity"
	dErrors "datamover/pkg/domain-errors"
	"datamover/pkg/platform/httputil"
	"datamover/pkg/requestcontext"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Service defines the interface for activity queries.
type Service interface {
	List(ctx context.Context, filter activity.Filter) ([]activity.Log, error)
	ListGrouped(ctx context.Context, filter activity.Filter) ([]activity.Group, error)
}

// Handler wires activity endpoints to the activity service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an activity handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts activity endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/activity", h.HandleList)
}

// HandleList handles GET /activity requests. With grouped=true the results
// are collapsed into bursts of related records.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	grouped := r.URL.Query().Get("grouped") == "true"

	if grouped {
		groups, err := h.service.ListGrouped(ctx, filter)
		if err != nil {
			h.logger.ErrorContext(ctx, "activity grouped list failed",
				"request_id", requestID,
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}
		h.logger.InfoContext(ctx, "activity listed",
			"request_id", requestID,
			"grouped", true,
			"count", len(groups),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		httputil.WriteJSON(w, http.StatusOK, GroupedListResponse{Groups: toGroupResponses(groups)})
		return
	}

	logs, err := h.service.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "activity list failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "activity listed",
		"request_id", requestID,
		"grouped", false,
		"count", len(logs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Logs: toLogResponses(logs)})
}

func filterFromQuery(r *http.Request) (activity.Filter, error) {
	q := r.URL.Query()

	filter := activity.Filter{
		UserID:       q.Get("user_id"),
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
		ActionPrefix: q.Get("action_prefix"),
		Limit:        defaultLimit,
	}

	if raw := q.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return activity.Filter{}, dErrors.New(dErrors.CodeBadRequest, "since must be an RFC 3339 timestamp")
		}
		filter.Since = since
	}
	if raw := q.Get("until"); raw != "" {
		until, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return activity.Filter{}, dErrors.New(dErrors.CodeBadRequest, "until must be an RFC 3339 timestamp")
		}
		filter.Until = until
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return activity.Filter{}, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer")
		}
		if limit > maxLimit {
			limit = maxLimit
		}
		filter.Limit = limit
	}

	return filter, nil
}
