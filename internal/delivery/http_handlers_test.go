package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"adintel/internal/domain"
	"adintel/internal/infrastructure"
	"adintel/internal/usecase"
	"adintel/pkg/logger"
	"adintel/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// One registry-backed metrics instance per test binary; promauto panics on
// duplicate registration.
var testMetrics = metrics.New()

var testLogger = logger.New("error")

// stubScraper serves canned raw records instead of calling the scraping
// platform.
type stubScraper struct {
	records []domain.RawAdRecord
	err     error
}

func (s *stubScraper) FetchAds(ctx context.Context, targetURL string, resultsLimit int) ([]domain.RawAdRecord, error) {
	return s.records, s.err
}

func newTestRouter(scraper domain.AdScraper) *gin.Engine {
	scanService := usecase.NewScanService(
		scraper,
		nil,
		infrastructure.NewScanRepository(testLogger),
		usecase.NewTimeWindowFilter(testLogger),
		testLogger,
		testMetrics,
	)
	handlers := NewHTTPHandlers(scanService, infrastructure.NewBookmarkRepository(testLogger), testLogger, testMetrics)
	return NewHTTPRouter(handlers, testLogger, testMetrics).SetupRoutes()
}

func imageRecord(archiveID, body, imageURL string) domain.RawAdRecord {
	return domain.RawAdRecord{
		AdArchiveID: archiveID,
		PageName:    "Jackery",
		Snapshot: domain.Snapshot{
			DisplayFormat: "IMAGE",
			Body:          domain.SnapshotBody{Text: body},
			Images:        []domain.Image{{OriginalImageURL: imageURL}},
		},
	}
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestScanRunThenGroups(t *testing.T) {
	scraper := &stubScraper{records: []domain.RawAdRecord{
		imageRecord("1", "Buy the solar generator", "http://x/a.jpg?tok=1"),
		imageRecord("2", "Buy the solar generator", "http://x/a.jpg?tok=2"),
		imageRecord("3", "A totally different ad", "http://x/b.jpg"),
	}}
	router := newTestRouter(scraper)

	rec, body := doJSON(t, router, "POST", "/api/v1/scan/run",
		`{"url": "https://www.facebook.com/ads/library/?q=jackery"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), body["raw_records"])
	assert.Equal(t, float64(2), body["groups"])
	assert.Equal(t, false, body["analyzed"])
	assert.NotEmpty(t, body["request_id"])

	rec, body = doJSON(t, router, "GET", "/api/v1/scan/groups", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["total"])

	groups, ok := body["groups"].([]any)
	require.True(t, ok)
	require.Len(t, groups, 2)

	first, ok := groups[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), first["intensity"])
	assert.Equal(t, []any{"1", "2"}, first["ad_ids"])
	assert.Equal(t, "Jackery", first["page_name"])
}

func TestScanGroupsBeforeAnyScan(t *testing.T) {
	router := newTestRouter(&stubScraper{})

	rec, body := doJSON(t, router, "GET", "/api/v1/scan/groups", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No scan available", body["error"])
}

func TestScanRunRejectsMissingURL(t *testing.T) {
	router := newTestRouter(&stubScraper{})

	rec, body := doJSON(t, router, "POST", "/api/v1/scan/run", `{"results_limit": 10}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestScanRunRejectsNonPositiveHours(t *testing.T) {
	router := newTestRouter(&stubScraper{})

	rec, body := doJSON(t, router, "POST", "/api/v1/scan/run",
		`{"url": "https://example.com", "hours": 0}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid parameter", body["error"])
}

func TestScanRunAcquisitionFailure(t *testing.T) {
	router := newTestRouter(&stubScraper{err: fmt.Errorf("actor run r1 ended with status FAILED")})

	rec, body := doJSON(t, router, "POST", "/api/v1/scan/run",
		`{"url": "https://example.com"}`)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Scan failed, no records produced", body["error"])
	assert.Contains(t, body["message"], "FAILED")
}

func TestScanGroupsRejectsBadHoursParam(t *testing.T) {
	router := newTestRouter(&stubScraper{})

	rec, _ := doJSON(t, router, "GET", "/api/v1/scan/groups?hours=soon", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, router, "GET", "/api/v1/scan/groups?hours=-3", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScanReportWithoutAnalysis(t *testing.T) {
	scraper := &stubScraper{records: []domain.RawAdRecord{
		imageRecord("1", "Buy now", "http://x/a.jpg"),
	}}
	router := newTestRouter(scraper)

	rec, _ := doJSON(t, router, "POST", "/api/v1/scan/run",
		`{"url": "https://example.com", "analyze": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// No analyzer is wired, so the scan succeeds without a report.
	rec, body := doJSON(t, router, "GET", "/api/v1/scan/report", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No analysis available", body["error"])
}

func TestBrandBookmarkLifecycle(t *testing.T) {
	router := newTestRouter(&stubScraper{})

	rec, body := doJSON(t, router, "POST", "/api/v1/brands",
		`{"name": "jackery", "url": "https://www.facebook.com/ads/library/?q=jackery"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Brand saved", body["message"])

	rec, body = doJSON(t, router, "POST", "/api/v1/brands",
		`{"name": "jackery", "url": "https://elsewhere.example"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Brand already exists", body["error"])

	rec, body = doJSON(t, router, "GET", "/api/v1/brands", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["total"])

	rec, _ = doJSON(t, router, "DELETE", "/api/v1/brands/jackery", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, router, "DELETE", "/api/v1/brands/jackery", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Brand not found", body["error"])
}

func TestBrandAddRejectsMissingFields(t *testing.T) {
	router := newTestRouter(&stubScraper{})

	rec, body := doJSON(t, router, "POST", "/api/v1/brands", `{"name": "jackery"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestHealthAndAPIInfo(t *testing.T) {
	router := newTestRouter(&stubScraper{})

	rec, body := doJSON(t, router, "GET", "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "adintel", body["service"])

	rec, body = doJSON(t, router, "GET", "/api/v1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v1", body["api_version"])
}
