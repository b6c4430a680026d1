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

	"datamover/internal/registry"
	dErrors "datamover/pkg/domain-errors"
	"datamover/pkg/testutil"
)

type stubService struct {
	version     registry.ConfigVersion
	versions    []registry.ConfigVersion
	err         error
	lastAction  string
	lastSave    registry.SaveInput
	lastTarget  registry.Target
	lastVersion int
}

func (s *stubService) Save(_ context.Context, in registry.SaveInput) (registry.ConfigVersion, error) {
	s.lastAction, s.lastSave = "save", in
	return s.version, s.err
}

func (s *stubService) List(_ context.Context, _ uuid.UUID, target registry.Target) ([]registry.ConfigVersion, error) {
	s.lastAction, s.lastTarget = "list", target
	return s.versions, s.err
}

func (s *stubService) Get(_ context.Context, _ uuid.UUID, target registry.Target, version int) (registry.ConfigVersion, error) {
	s.lastAction, s.lastTarget, s.lastVersion = "get", target, version
	return s.version, s.err
}

func (s *stubService) Activate(_ context.Context, _ uuid.UUID, target registry.Target, version int) (registry.ConfigVersion, error) {
	s.lastAction, s.lastTarget, s.lastVersion = "activate", target, version
	return s.version, s.err
}

func (s *stubService) Rollback(_ context.Context, _ uuid.UUID, target registry.Target) (registry.ConfigVersion, error) {
	s.lastAction, s.lastTarget = "rollback", target
	return s.version, s.err
}

func newTestRouter(svc Service) http.Handler {
	r := chi.NewRouter()
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.Register(r)
	return r
}

func sampleVersion(pipelineID uuid.UUID) registry.ConfigVersion {
	return registry.ConfigVersion{
		ID:         uuid.New(),
		PipelineID: pipelineID,
		Target:     registry.TargetSource,
		Version:    2,
		Config:     map[string]string{"connector.class": "PostgresConnector"},
		Active:     true,
		CreatedBy:  "user-1",
		CreatedAt:  time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestRegistryEndpoints(t *testing.T) {
	pipelineID := uuid.New()
	base := "/pipelines/" + pipelineID.String() + "/registry/source"

	t.Run("save", func(t *testing.T) {
		svc := &stubService{version: sampleVersion(pipelineID)}
		router := newTestRouter(svc)

		req := testutil.NewJSONRequest(t, http.MethodPost, base, SaveRequest{
			Config:  map[string]string{"connector.class": "PostgresConnector"},
			Comment: "bump poll interval",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		assert.Equal(t, "save", svc.lastAction)
		assert.Equal(t, pipelineID, svc.lastSave.PipelineID)
		assert.Equal(t, registry.TargetSource, svc.lastSave.Target)
		assert.Equal(t, "bump poll interval", svc.lastSave.Comment)
	})

	t.Run("save rejects empty config", func(t *testing.T) {
		router := newTestRouter(&stubService{})

		req := testutil.NewJSONRequest(t, http.MethodPost, base, SaveRequest{})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("list", func(t *testing.T) {
		svc := &stubService{versions: []registry.ConfigVersion{sampleVersion(pipelineID)}}
		router := newTestRouter(svc)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, base))

		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[ListResponse](t, rr)
		require.Len(t, resp.Versions, 1)
		assert.Equal(t, 2, resp.Versions[0].Version)
	})

	t.Run("get version", func(t *testing.T) {
		svc := &stubService{version: sampleVersion(pipelineID)}
		router := newTestRouter(svc)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, base+"/2"))

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, 2, svc.lastVersion)
	})

	t.Run("activate", func(t *testing.T) {
		svc := &stubService{version: sampleVersion(pipelineID)}
		router := newTestRouter(svc)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, base+"/2/activate"))

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "activate", svc.lastAction)
		assert.Equal(t, 2, svc.lastVersion)
	})

	t.Run("rollback", func(t *testing.T) {
		svc := &stubService{version: sampleVersion(pipelineID)}
		router := newTestRouter(svc)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, base+"/rollback"))

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "rollback", svc.lastAction)
	})

	t.Run("rejects unknown target", func(t *testing.T) {
		router := newTestRouter(&stubService{})

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet,
			"/pipelines/"+pipelineID.String()+"/registry/sideways"))

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("rejects bad version", func(t *testing.T) {
		router := newTestRouter(&stubService{})

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, base+"/zero"))

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("rollback conflict surfaces as 409", func(t *testing.T) {
		svc := &stubService{err: dErrors.New(dErrors.CodeConflict, "no earlier version to roll back to")}
		router := newTestRouter(svc)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, base+"/rollback"))

		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
	})
}
