package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"textattack/app"
	domainAugmentation "textattack/domain/augmentation"
	"textattack/domain/core"
	"textattack/internal"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	runs    map[core.RunID]*domainAugmentation.Run
	lastReq app.AugmentRequest
	err     error
}

func (f *fakeService) Recipes() []string { return []string{"deletion", "eda"} }

func (f *fakeService) Augment(_ context.Context, req app.AugmentRequest) (*domainAugmentation.Run, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	run := &domainAugmentation.Run{ID: core.NewRunID(), Recipe: "eda", Params: domainAugmentation.Params{Seed: 5}}
	for _, in := range req.Inputs {
		run.Results = append(run.Results, domainAugmentation.Result{
			Input:   in,
			Outputs: []string{in + " again"},
			Dropped: []domainAugmentation.DroppedCandidate{{Reason: domainAugmentation.ReasonDuplicate}},
		})
	}
	return run, nil
}

func (f *fakeService) GetRun(_ context.Context, id core.RunID) (*domainAugmentation.Run, error) {
	if run, ok := f.runs[id]; ok {
		return run, nil
	}
	return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
}

func (f *fakeService) ListRuns(_ context.Context, limit int) ([]*domainAugmentation.Run, error) {
	out := []*domainAugmentation.Run{}
	for _, run := range f.runs {
		if len(out) == limit {
			break
		}
		out = append(out, run)
	}
	return out, nil
}

func newTestServer(svc *fakeService) *Server {
	return NewServer(svc, internal.NewNopLogger(), gin.TestMode)
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthAndRecipes(t *testing.T) {
	s := newTestServer(&fakeService{})

	rec := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/recipes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"deletion", "eda"}, decode(t, rec)["recipes"])
}

func TestAugmentText(t *testing.T) {
	svc := &fakeService{}
	s := newTestServer(svc)
	n := 3

	rec := do(t, s, http.MethodPost, "/api/v1/augment", AugmentTextRequest{Text: "hello world", Recipe: "eda", NumAugmentations: &n})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AugmentTextResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"hello world again"}, resp.Outputs)
	assert.Equal(t, int64(5), resp.Seed)
	assert.Nil(t, resp.Result)

	assert.Equal(t, []string{"hello world"}, svc.lastReq.Inputs)
	require.NotNil(t, svc.lastReq.NumAugmentations)
	assert.Equal(t, 3, *svc.lastReq.NumAugmentations)
}

func TestAugmentTextWithAudit(t *testing.T) {
	s := newTestServer(&fakeService{})

	rec := do(t, s, http.MethodPost, "/api/v1/augment", AugmentTextRequest{Text: "hello", Audit: true})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AugmentTextResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result)
	assert.Len(t, resp.Result.Dropped, 1)
}

func TestAugmentErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unknown recipe", fmt.Errorf("%w: %q", core.ErrUnknownRecipe, "x"), http.StatusBadRequest, "CONFIG_INVALID"},
		{"missing resource", core.NewResourceError("English word embedding", fmt.Errorf("not found")), http.StatusServiceUnavailable, "RESOURCE_UNAVAILABLE"},
		{"contract violation", core.NewArityError(1), http.StatusInternalServerError, "CONTRACT_VIOLATION"},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeService{err: tt.err})
			rec := do(t, s, http.MethodPost, "/api/v1/augment", AugmentTextRequest{Text: "a b"})
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode(t, rec)["code"])
		})
	}
}

func TestAugmentBadJSON(t *testing.T) {
	s := newTestServer(&fakeService{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/augment", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatch(t *testing.T) {
	svc := &fakeService{}
	s := newTestServer(svc)

	rec := do(t, s, http.MethodPost, "/api/v1/batch", app.AugmentRequest{Recipe: "eda", Inputs: []string{"a b", "c d"}, Persist: true})
	require.Equal(t, http.StatusOK, rec.Code)

	var run domainAugmentation.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Len(t, run.Results, 2)
	assert.True(t, svc.lastReq.Persist)

	rec = do(t, s, http.MethodPost, "/api/v1/batch", app.AugmentRequest{Recipe: "eda"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decode(t, rec)["code"])
}

func TestGetRun(t *testing.T) {
	stored := &domainAugmentation.Run{ID: core.NewRunID(), Recipe: "swap"}
	s := newTestServer(&fakeService{runs: map[core.RunID]*domainAugmentation.Run{stored.ID: stored}})

	rec := do(t, s, http.MethodGet, "/api/v1/runs/"+stored.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "swap", decode(t, rec)["recipe"])

	rec = do(t, s, http.MethodGet, "/api/v1/runs/"+core.NewRunID().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/runs/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRuns(t *testing.T) {
	stored := &domainAugmentation.Run{ID: core.NewRunID(), Recipe: "swap"}
	s := newTestServer(&fakeService{runs: map[core.RunID]*domainAugmentation.Run{stored.ID: stored}})

	rec := do(t, s, http.MethodGet, "/api/v1/runs?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["runs"], 1)

	rec = do(t, s, http.MethodGet, "/api/v1/runs?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
