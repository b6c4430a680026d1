// Package auth gates API routes behind bearer JWTs or service API keys.
// Validation is delegated through small interfaces so the middleware stays
// free of crypto and storage concerns.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	dErrors "datamover/pkg/domain-errors"
	"datamover/pkg/platform/httputil"
	"datamover/pkg/requestcontext"
)

const APIKeyHeader = "X-API-Key"

// Claims carries the identity extracted from a validated bearer token.
type Claims struct {
	UserID string
}

// TokenValidator checks a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (*Claims, error)
}

// KeyValidator checks a service API key and returns the identity it acts as.
type KeyValidator interface {
	VerifyKey(ctx context.Context, key string) (string, error)
}

// Require rejects requests that carry neither a valid bearer token nor a
// valid API key. The authenticated user ID lands in the request context for
// downstream handlers and the activity recorder.
func Require(tokens TokenValidator, keys KeyValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
				claims, err := tokens.ValidateToken(token)
				if err != nil {
					logger.WarnContext(ctx, "rejected bearer token",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
					httputil.WriteError(w, err)
					return
				}
				ctx = requestcontext.WithUserID(ctx, claims.UserID)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if key := r.Header.Get(APIKeyHeader); key != "" && keys != nil {
				callerID, err := keys.VerifyKey(ctx, key)
				if err != nil {
					logger.WarnContext(ctx, "rejected API key",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
					httputil.WriteError(w, err)
					return
				}
				ctx = requestcontext.WithUserID(ctx, callerID)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			logger.WarnContext(ctx, "rejected unauthenticated request",
				"path", r.URL.Path,
				"request_id", requestcontext.RequestID(ctx),
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing credentials"))
		})
	}
}
