package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/verzoeken/config"
	"github.com/Ramsey-B/verzoeken/pkg/mask"
)

func testConfig() *config.Config {
	return &config.Config{
		AppName:               "verzoeken-api",
		Version:               "test",
		AllowOrigins:          []string{"*"},
		AllowMethods:          []string{"GET", "POST"},
		StartupMaxAttempts:    1,
		MaskBackend:           MaskBackendMemory,
		NotificationsDisabled: true,
		SiteDomain:            "verzoeken.example.nl",
		IsHTTPS:               true,
		APIVersion:            "1",
		PageSize:              100,
	}
}

func TestBuildServer(t *testing.T) {
	a := New(testConfig(), ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))
	a.mask = mask.NewMemory()

	e, err := a.buildServer()
	require.NoError(t, err)

	t.Run("api root lists collections", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var links map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &links))
		assert.Len(t, links, 6)
		assert.Equal(t, "https://verzoeken.example.nl/api/v1/verzoeken", links["verzoeken"])
	})

	t.Run("liveness", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready before run", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid uuid is not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/verzoeken/not-a-uuid", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestStartMask_UnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.MaskBackend = "etcd"
	a := New(cfg, ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))

	err := a.startMask(t.Context())
	assert.ErrorContains(t, err, "unknown mask backend")
}
