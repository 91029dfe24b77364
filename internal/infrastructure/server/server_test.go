package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/seminarhub/core/internal/infrastructure/config"
	"github.com/seminarhub/core/internal/infrastructure/logger"
	"github.com/seminarhub/core/internal/infrastructure/storage"
)

const allowedOrigin = "http://localhost:5173"

func testConfig(t *testing.T, seed string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seminars.json")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	return &config.Config{
		App: config.AppConfig{Name: "Seminars", Version: "test", Environment: "test"},
		Server: config.ServerConfig{
			Port:            3001,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			IdleTimeout:     5 * time.Second,
			ShutdownTimeout: time.Second,
			BodyLimit:       "1M",
		},
		Storage: config.StorageConfig{File: path},
		Security: config.SecurityConfig{
			CORSAllowedOrigin: allowedOrigin,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Metrics: config.MetricsConfig{Enabled: true},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	srv, err := New(cfg, storage.New(cfg.Storage), logger.NewNop())
	require.NoError(t, err)
	return srv
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestNewRejectsInvalidDataFile(t *testing.T) {
	cfg := testConfig(t, `{"seminars": [{"id": 1, "title": ""}]}`)

	_, err := New(cfg, storage.New(cfg.Storage), logger.NewNop())
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, testConfig(t, `{"seminars": []}`))

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDetailedHealthReportsMissingFile(t *testing.T) {
	cfg := testConfig(t, `{"seminars": []}`)
	srv := newTestServer(t, cfg)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/health/detailed", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, os.Remove(cfg.Storage.File))

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/health/detailed", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflightFromAllowedOrigin(t *testing.T) {
	srv := newTestServer(t, testConfig(t, `{"seminars": []}`))

	req := httptest.NewRequest(http.MethodOptions, "/seminars/1", nil)
	req.Header.Set(echo.HeaderOrigin, allowedOrigin)
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPut)

	rec := serve(srv, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, allowedOrigin, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	methods := rec.Header().Get(echo.HeaderAccessControlAllowMethods)
	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		assert.Contains(t, methods, m)
	}
	assert.NotContains(t, methods, http.MethodPatch)
	assert.Equal(t, echo.HeaderContentType, rec.Header().Get(echo.HeaderAccessControlAllowHeaders))
}

func TestCORSRejectsOtherOrigins(t *testing.T) {
	srv := newTestServer(t, testConfig(t, `{"seminars": []}`))

	req := httptest.NewRequest(http.MethodGet, "/seminars", nil)
	req.Header.Set(echo.HeaderOrigin, "http://evil.example")

	rec := serve(srv, req)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig(t, `{"seminars": []}`)
	cfg.Security.RateLimitRequests = 2
	srv := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(srv, httptest.NewRequest(http.MethodGet, "/seminars", nil)).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(srv, httptest.NewRequest(http.MethodGet, "/seminars", nil)).Code)
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	srv := newTestServer(t, testConfig(t, `{"seminars": []}`))

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/seminars", nil))
	assert.Equal(t, "nosniff", rec.Header().Get(echo.HeaderXContentTypeOptions))
	assert.Equal(t, "DENY", rec.Header().Get(echo.HeaderXFrameOptions))
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
}

func TestBodyLimit(t *testing.T) {
	cfg := testConfig(t, `{"seminars": []}`)
	cfg.Server.BodyLimit = "1K"
	srv := newTestServer(t, cfg)

	body := `{"title":"` + strings.Repeat("a", 2048) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/seminars", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	assert.Equal(t, http.StatusRequestEntityTooLarge, serve(srv, req).Code)
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t, testConfig(t, `{"seminars": []}`))

	serve(srv, httptest.NewRequest(http.MethodGet, "/seminars", nil))
	serve(srv, httptest.NewRequest(http.MethodDelete, "/seminars/9", nil))

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",path="/seminars",status="200"} 1`)
	assert.Contains(t, body, `http_requests_total{method="DELETE",path="/seminars/:id",status="404"} 1`)
	assert.Contains(t, body, `seminar_store_operations_total{operation="delete",result="not_found"} 1`)
	assert.Contains(t, body, "seminars_stored 0")
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig(t, `{"seminars": []}`)
	cfg.Metrics.Enabled = false
	srv := newTestServer(t, cfg)

	assert.Equal(t, http.StatusNotFound, serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)
}

func TestRequestLogRecordsErrorStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cfg := testConfig(t, `{"seminars": []}`)

	srv, err := New(cfg, storage.New(cfg.Storage), &logger.Logger{SugaredLogger: zap.New(core).Sugar()})
	require.NoError(t, err)

	missing := serve(srv, httptest.NewRequest(http.MethodGet, "/seminars/999", nil))
	require.Equal(t, http.StatusNotFound, missing.Code)

	req := httptest.NewRequest(http.MethodPost, "/seminars", strings.NewReader(`{"title":""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	invalid := serve(srv, req)
	require.Equal(t, http.StatusBadRequest, invalid.Code)

	logged := make(map[string]int64)
	for _, entry := range logs.FilterField(zap.String("ip", "192.0.2.1")).All() {
		fields := entry.ContextMap()
		assert.NotEmpty(t, fields["request_id"])
		logged[fields["method"].(string)+" "+fields["path"].(string)] = fields["status_code"].(int64)
	}

	assert.Equal(t, int64(http.StatusNotFound), logged["GET /seminars/999"])
	assert.Equal(t, int64(http.StatusBadRequest), logged["POST /seminars"])
}
