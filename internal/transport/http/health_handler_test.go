package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rankpulse/internal/infrastructure"
	"rankpulse/internal/services"
)

func TestHealthHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		dataDir        func(t *testing.T) string
		expectedStatus string
	}{
		{
			name:           "data directory present",
			dataDir:        func(t *testing.T) string { return t.TempDir() },
			expectedStatus: "ok",
		},
		{
			name:           "data directory missing",
			dataDir:        func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing") },
			expectedStatus: "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := infrastructure.DiscardLogger()
			handler := NewHealthHandler(services.NewHealthService("1.0.0", tt.dataDir(t), logger), logger)

			rec := httptest.NewRecorder()
			handler.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, http.StatusOK, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedStatus, body["status"])
			assert.Equal(t, "1.0.0", body["version"])
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	t.Run("exporter disabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewMetricsHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Metrics Disabled")
	})

	t.Run("exporter enabled", func(t *testing.T) {
		prom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("# HELP up\n"))
		})
		rec := httptest.NewRecorder()
		NewMetricsHandler(prom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "# HELP up\n", rec.Body.String())
	})
}
