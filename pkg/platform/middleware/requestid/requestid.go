// Package requestid assigns a correlation ID to every request. Incoming
// X-Request-ID headers are trusted so IDs survive proxy hops; otherwise a UUID
// is generated. The ID is echoed back on the response.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"datamover/pkg/requestcontext"
)

const Header = "X-Request-ID"

// Middleware injects the request ID into the context and response headers.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
