// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them, services read them, and tests
// inject them without pulling in net/http.
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	userIDKey    struct{}
	requestIDKey struct{}
	clientIPKey  struct{}
	userAgentKey struct{}
	clientAppKey struct{}
	timeKey      struct{}
)

// UserID retrieves the authenticated user ID from the context.
// Returns the empty string if not set.
func UserID(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects a user ID into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// RequestID retrieves the correlation ID assigned by middleware.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// ClientIP retrieves the caller's IP address as resolved by middleware.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

// WithClientIP injects a client IP into the context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// UserAgent retrieves the raw User-Agent header value.
func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(userAgentKey{}).(string); ok {
		return v
	}
	return ""
}

// WithUserAgent injects a raw User-Agent into the context.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey{}, ua)
}

// ClientApp retrieves the parsed "browser/os" summary of the caller's
// User-Agent, used to enrich activity log metadata.
func ClientApp(ctx context.Context) string {
	if v, ok := ctx.Value(clientAppKey{}).(string); ok {
		return v
	}
	return ""
}

// WithClientApp injects a parsed client application summary into the context.
func WithClientApp(ctx context.Context, app string) context.Context {
	return context.WithValue(ctx, clientAppKey{}, app)
}

// Now retrieves the request-scoped time, falling back to time.Now so services
// behave sensibly outside an HTTP request.
func Now(ctx context.Context) time.Time {
	if v, ok := ctx.Value(timeKey{}).(time.Time); ok {
		return v
	}
	return time.Now()
}

// WithTime injects a fixed time into the context. All operations within one
// request observe the same "now".
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, timeKey{}, t)
}
