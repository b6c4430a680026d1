package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datamover/internal/auth"
	dErrors "datamover/pkg/domain-errors"
	"datamover/pkg/testutil"
)

type stubService struct {
	key       auth.APIKey
	plaintext string
	keys      []auth.APIKey
	err       error
	lastName  string
	revokedID uuid.UUID
}

func (s *stubService) Issue(_ context.Context, name string) (auth.APIKey, string, error) {
	s.lastName = name
	return s.key, s.plaintext, s.err
}

func (s *stubService) List(_ context.Context) ([]auth.APIKey, error) {
	return s.keys, s.err
}

func (s *stubService) Revoke(_ context.Context, id uuid.UUID) error {
	s.revokedID = id
	return s.err
}

func newTestRouter(svc Service) http.Handler {
	r := chi.NewRouter()
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.Register(r)
	return r
}

func sampleKey() auth.APIKey {
	return auth.APIKey{
		ID:        uuid.New(),
		Name:      "reporting",
		Prefix:    "a1b2c3d4e5f6",
		CreatedBy: "admin-1",
		CreatedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestHandleIssue(t *testing.T) {
	t.Run("issues key with one-time plaintext", func(t *testing.T) {
		svc := &stubService{key: sampleKey(), plaintext: "dmk_a1b2c3d4e5f6.secret"}
		router := newTestRouter(svc)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/keys", IssueRequest{Name: "reporting"})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[IssuedKeyResponse](t, rr)
		assert.Equal(t, "dmk_a1b2c3d4e5f6.secret", resp.Key)
		assert.Equal(t, "reporting", resp.Name)
		assert.Equal(t, "reporting", svc.lastName)
	})

	t.Run("rejects missing name", func(t *testing.T) {
		router := newTestRouter(&stubService{})

		req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/keys", IssueRequest{})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})
}

func TestHandleListKeys(t *testing.T) {
	svc := &stubService{keys: []auth.APIKey{sampleKey()}}
	router := newTestRouter(svc)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/auth/keys"))

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[ListResponse](t, rr)
	require.Len(t, resp.Keys, 1)
	assert.Equal(t, "reporting", resp.Keys[0].Name)
}

func TestHandleRevoke(t *testing.T) {
	t.Run("revokes key", func(t *testing.T) {
		svc := &stubService{}
		router := newTestRouter(svc)
		id := uuid.New()

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/auth/keys/"+id.String()))

		testutil.AssertStatus(t, rr, http.StatusNoContent)
		assert.Equal(t, id, svc.revokedID)
	})

	t.Run("malformed id", func(t *testing.T) {
		router := newTestRouter(&stubService{})

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/auth/keys/not-a-uuid"))

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("unknown key", func(t *testing.T) {
		svc := &stubService{err: dErrors.New(dErrors.CodeNotFound, "api key not found")}
		router := newTestRouter(svc)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/auth/keys/"+uuid.NewString()))

		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}
