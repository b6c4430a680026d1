package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "datamover/pkg/domain-errors"
	"datamover/pkg/requestcontext"
)

type stubTokens struct {
	claims *Claims
	err    error
}

func (s *stubTokens) ValidateToken(string) (*Claims, error) {
	return s.claims, s.err
}

type stubKeys struct {
	callerID string
	err      error
}

func (s *stubKeys) VerifyKey(context.Context, string) (string, error) {
	return s.callerID, s.err
}

func newGuarded(tokens TokenValidator, keys KeyValidator) (http.Handler, *string) {
	var seenUser string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = requestcontext.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return Require(tokens, keys, logger)(handler), &seenUser
}

func TestRequire(t *testing.T) {
	t.Run("accepts valid bearer token", func(t *testing.T) {
		guarded, seenUser := newGuarded(&stubTokens{claims: &Claims{UserID: "user-1"}}, &stubKeys{})

		r := httptest.NewRequest(http.MethodGet, "/pipelines", nil)
		r.Header.Set("Authorization", "Bearer some-token")
		rr := httptest.NewRecorder()
		guarded.ServeHTTP(rr, r)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "user-1", *seenUser)
	})

	t.Run("rejects invalid bearer token", func(t *testing.T) {
		guarded, _ := newGuarded(&stubTokens{err: dErrors.New(dErrors.CodeUnauthorized, "invalid token")}, &stubKeys{})

		r := httptest.NewRequest(http.MethodGet, "/pipelines", nil)
		r.Header.Set("Authorization", "Bearer bad-token")
		rr := httptest.NewRecorder()
		guarded.ServeHTTP(rr, r)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("accepts valid API key", func(t *testing.T) {
		guarded, seenUser := newGuarded(&stubTokens{}, &stubKeys{callerID: "svc-reporting"})

		r := httptest.NewRequest(http.MethodGet, "/pipelines", nil)
		r.Header.Set(APIKeyHeader, "dmk_abc.secret")
		rr := httptest.NewRecorder()
		guarded.ServeHTTP(rr, r)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "svc-reporting", *seenUser)
	})

	t.Run("rejects invalid API key", func(t *testing.T) {
		guarded, _ := newGuarded(&stubTokens{}, &stubKeys{err: dErrors.New(dErrors.CodeUnauthorized, "invalid secret")})

		r := httptest.NewRequest(http.MethodGet, "/pipelines", nil)
		r.Header.Set(APIKeyHeader, "dmk_abc.wrong")
		rr := httptest.NewRecorder()
		guarded.ServeHTTP(rr, r)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects missing credentials", func(t *testing.T) {
		guarded, _ := newGuarded(&stubTokens{}, &stubKeys{})

		rr := httptest.NewRecorder()
		guarded.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/pipelines", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("bearer takes precedence over API key", func(t *testing.T) {
		guarded, seenUser := newGuarded(&stubTokens{claims: &Claims{UserID: "user-1"}}, &stubKeys{callerID: "svc"})

		r := httptest.NewRequest(http.MethodGet, "/pipelines", nil)
		r.Header.Set("Authorization", "Bearer some-token")
		r.Header.Set(APIKeyHeader, "dmk_abc.secret")
		rr := httptest.NewRecorder()
		guarded.ServeHTTP(rr, r)

		assert.Equal(t, "user-1", *seenUser)
	})
}
