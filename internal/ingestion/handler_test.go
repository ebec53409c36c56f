package ingestion

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	httperr "github.com/luboil-lab/sales-ledger/internal/core/errors"
	"github.com/luboil-lab/sales-ledger/internal/core/storage/memory"
	storagemocks "github.com/luboil-lab/sales-ledger/internal/mocks/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRunHandler_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	writeInput(t, dir, "a.csv", header+"R32,2024-01-03,10,,,\n")

	store := memory.New()
	r := gin.New()
	NewService(NewSynchronizer(store, DefaultOptions()), dir).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/v1/runs", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var summary RunSummary
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &summary))
	require.Equal(t, 1, summary.Accepted)
	require.Len(t, summary.Files, 1)
	require.Equal(t, 1, store.Len())
}

func TestRunHandler_InProgress(t *testing.T) {
	gin.SetMode(gin.TestMode)

	syncer := NewSynchronizer(memory.New(), DefaultOptions())
	syncer.running.Store(true)

	r := gin.New()
	NewService(syncer, t.TempDir()).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/v1/runs", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusConflict, resp.Code)
	var body httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, httperr.HttpRunInProgressError, body.ErrorType)

	req = httptest.NewRequest(http.MethodGet, "/v1/runs/status", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"running":true`)
}

func TestRunHandler_StoreUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	writeInput(t, dir, "a.csv", header+"R32,2024-01-03,10,,,\n")

	store := storagemocks.NewRecordStore(t)
	store.EXPECT().
		FindMaxInstants(mock.Anything, []string{"R32"}).
		Return(nil, errors.New("dial tcp: connection refused")).
		Once()

	r := gin.New()
	NewService(NewSynchronizer(store, DefaultOptions()), dir).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/v1/runs", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	var body httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, httperr.HttpStoreUnavailable, body.ErrorType)
	require.NotNil(t, body.Details)
}
