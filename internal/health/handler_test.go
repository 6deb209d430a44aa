package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/health"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (s stubPinger) PingContext(context.Context) error { return s.err }

func serve(t *testing.T, pinger health.Pinger, path string) (int, health.HealthResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	health.NewHandler(pinger, metrics.NewMock()).RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var resp health.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHealth(t *testing.T) {
	code, resp := serve(t, stubPinger{}, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Status)
}

func TestReady(t *testing.T) {
	t.Run("DatabaseUp", func(t *testing.T) {
		code, resp := serve(t, stubPinger{}, "/ready")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ready", resp.Status)
	})

	t.Run("DatabaseDown", func(t *testing.T) {
		code, resp := serve(t, stubPinger{err: errors.New("connection refused")}, "/ready")
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unavailable", resp.Status)
	})
}
