// Package httpapi assembles the chi router: middleware chain, health and
// metrics endpoints, and the authenticated API surface.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"datamover/pkg/platform/httputil"
	authmw "datamover/pkg/platform/middleware/auth"
	"datamover/pkg/platform/middleware/logging"
	"datamover/pkg/platform/middleware/metadata"
	"datamover/pkg/platform/middleware/requestid"
	"datamover/pkg/platform/middleware/requesttime"
	"datamover/pkg/requestcontext"
)

// Registerer is implemented by feature handlers that mount their own routes.
type Registerer interface {
	Register(r chi.Router)
}

// HealthCheck probes one dependency for the /healthz endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// RouterConfig carries everything the router needs. Handlers register under
// the authenticated group; /healthz and /metrics stay public.
type RouterConfig struct {
	Logger   *slog.Logger
	Metrics  *Metrics
	Tokens   authmw.TokenValidator
	Keys     authmw.KeyValidator
	Handlers []Registerer
	Checks   []HealthCheck
}

// NewRouter builds the full HTTP surface.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(logging.Middleware(cfg.Logger))
	r.Use(cfg.Metrics.Middleware)

	r.Get("/healthz", handleHealthz(cfg.Logger, cfg.Checks))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(authmw.Require(cfg.Tokens, cfg.Keys, cfg.Logger))
		for _, h := range cfg.Handlers {
			h.Register(r)
		}
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// handleHealthz pings each registered dependency. Any failure turns the
// response into a 503 so load balancers stop routing here.
func handleHealthz(logger *slog.Logger, checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed",
					"component", c.Name,
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				resp.Status = "degraded"
				resp.Checks[c.Name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[c.Name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
