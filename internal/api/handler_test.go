// internal/api/handler_test.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "registry-matcher/internal/common/errors"
	"registry-matcher/internal/common/logger"
	"registry-matcher/internal/models"
)

type fakeMatchService struct {
	scanResult *models.ScanResult
	scanErr    error
	page       models.MatchPage
	pageErr    error
	detail     *models.CandidateDetail
	detailErr  error

	lastThreshold int
	lastPage      int
	lastIndex     int
}

func (f *fakeMatchService) Scan(_ context.Context, minConfidence int) (*models.ScanResult, error) {
	f.lastThreshold = minConfidence
	return f.scanResult, f.scanErr
}

func (f *fakeMatchService) GetPage(pageIndex int) (models.MatchPage, error) {
	f.lastPage = pageIndex
	return f.page, f.pageErr
}

func (f *fakeMatchService) CandidateDetail(_ context.Context, index int) (*models.CandidateDetail, error) {
	f.lastIndex = index
	return f.detail, f.detailErr
}

func newTestServer(t *testing.T, service MatchService) *httptest.Server {
	handler, err := NewHandler(service, 80, logger.NewNop())
	require.NoError(t, err)

	mux := http.NewServeMux()
	handler.Routes(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func postScan(t *testing.T, server *httptest.Server, body string) *http.Response {
	resp, err := http.Post(server.URL+"/api/v1/scan", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandler_Scan_OK(t *testing.T) {
	service := &fakeMatchService{
		scanResult: &models.ScanResult{
			ScanID:         "scan-1",
			MinConfidence:  80,
			Candidates:     make([]models.MatchCandidate, 3),
			PendingCount:   10,
			ReferenceCount: 20,
			PairsCompared:  200,
			SkippedRecords: 1,
			Duration:       1500 * time.Millisecond,
		},
	}
	server := newTestServer(t, service)

	resp := postScan(t, server, `{"minConfidence": 80}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 80, service.lastThreshold)

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "scan-1", payload["scanId"])
	assert.Equal(t, float64(3), payload["candidateCount"])
	assert.Equal(t, float64(200), payload["pairsCompared"])
	assert.Equal(t, float64(1500), payload["durationMs"])
}

func TestHandler_Scan_SchemaRejectsBadThresholds(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "below minimum", body: `{"minConfidence": 47}`},
		{name: "off the step", body: `{"minConfidence": 82}`},
		{name: "above maximum", body: `{"minConfidence": 100}`},
		{name: "not an integer", body: `{"minConfidence": 80.5}`},
		{name: "extra field", body: `{"minConfidence": 80, "force": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeMatchService{lastThreshold: -1}
			server := newTestServer(t, service)

			resp := postScan(t, server, tt.body)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			// Validation failures never reach the service.
			assert.Equal(t, -1, service.lastThreshold)
		})
	}
}

func TestHandler_Scan_OmittedThresholdUsesDefault(t *testing.T) {
	service := &fakeMatchService{scanResult: &models.ScanResult{ScanID: "scan-2", MinConfidence: 80}}
	server := newTestServer(t, service)

	resp := postScan(t, server, `{}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 80, service.lastThreshold)
}

func TestHandler_Scan_MalformedJSON(t *testing.T) {
	server := newTestServer(t, &fakeMatchService{})

	resp := postScan(t, server, `{"minConfidence":`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_Scan_ServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "fetch failure", err: apperrors.NewCitizenFetchError("db down"), expected: http.StatusServiceUnavailable},
		{name: "cancelled", err: apperrors.NewScanCancelledError("superseded"), expected: http.StatusConflict},
		{name: "invalid threshold", err: apperrors.NewInvalidThresholdError(47), expected: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, &fakeMatchService{scanErr: tt.err})

			resp := postScan(t, server, `{"minConfidence": 80}`)

			assert.Equal(t, tt.expected, resp.StatusCode)

			var payload errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
			var se *apperrors.StandardError
			require.ErrorAs(t, tt.err, &se)
			assert.Equal(t, string(se.Code), payload.Code)
		})
	}
}

func TestHandler_Matches_DefaultsToFirstPage(t *testing.T) {
	service := &fakeMatchService{
		page: models.MatchPage{ScanID: "scan-1", PageSize: 15, Candidates: []models.MatchCandidate{}},
	}
	server := newTestServer(t, service)

	resp, err := http.Get(server.URL + "/api/v1/matches")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, service.lastPage)
}

func TestHandler_Matches_PageQuery(t *testing.T) {
	service := &fakeMatchService{page: models.MatchPage{PageIndex: 2}}
	server := newTestServer(t, service)

	resp, err := http.Get(server.URL + "/api/v1/matches?page=2")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, service.lastPage)
}

func TestHandler_Matches_BadPageQuery(t *testing.T) {
	server := newTestServer(t, &fakeMatchService{})

	for _, raw := range []string{"abc", "-1", "1.5"} {
		resp, err := http.Get(server.URL + "/api/v1/matches?page=" + raw)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "page=%s", raw)
	}
}

func TestHandler_Matches_NoScanYet(t *testing.T) {
	server := newTestServer(t, &fakeMatchService{pageErr: apperrors.NewNoScanResultError()})

	resp, err := http.Get(server.URL + "/api/v1/matches")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_MatchDetail(t *testing.T) {
	service := &fakeMatchService{
		detail: &models.CandidateDetail{
			Candidate:      models.MatchCandidate{Confidence: 100},
			PendingAddress: models.AddressDisplay{Province: "Ilocos Norte"},
		},
	}
	server := newTestServer(t, service)

	resp, err := http.Get(server.URL + "/api/v1/matches/4")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 4, service.lastIndex)

	var detail models.CandidateDetail
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	assert.Equal(t, 100, detail.Candidate.Confidence)
	assert.Equal(t, "Ilocos Norte", detail.PendingAddress.Province)
}

func TestHandler_MatchDetail_BadIndex(t *testing.T) {
	server := newTestServer(t, &fakeMatchService{})

	resp, err := http.Get(server.URL + "/api/v1/matches/xyz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_Health(t *testing.T) {
	server := newTestServer(t, &fakeMatchService{})

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
