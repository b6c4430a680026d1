package metadata

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"datamover/pkg/requestcontext"
)

// ClientMetadata extracts the client IP, raw User-Agent, and a parsed
// "browser/os" summary from the request and adds them to the context for use
// by handlers and services. Apply early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = requestcontext.WithClientIP(ctx, ClientIPFromRequest(r))

		ua := r.Header.Get("User-Agent")
		ctx = requestcontext.WithUserAgent(ctx, ua)
		ctx = requestcontext.WithClientApp(ctx, summarizeUserAgent(ua))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// summarizeUserAgent reduces a User-Agent header to "browser version/os" for
// activity log metadata. Unparseable agents pass through truncated.
func summarizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	parsed := useragent.New(raw)
	name, version := parsed.Browser()
	if name == "" {
		if len(raw) > 64 {
			return raw[:64]
		}
		return raw
	}
	summary := name
	if version != "" {
		summary += " " + version
	}
	if os := parsed.OS(); os != "" {
		summary += "/" + os
	}
	return summary
}

// ClientIPFromRequest extracts the real client IP from the request, handling
// proxies and load balancers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs (client, proxy1, proxy2, ...);
	// the first is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "ip:port" ("[::1]:port" for IPv6), so strip the port.
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}

	return "unknown"
}
