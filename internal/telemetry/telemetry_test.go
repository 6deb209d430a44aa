package telemetry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/config"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/logger"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_PrometheusHandler(t *testing.T) {
	ctx := context.Background()
	log := logger.Discard()

	tel, err := telemetry.Init(ctx, config.TelemetryConfig{Prometheus: true}, "attendance-test", "test", "unit", log)
	require.NoError(t, err)
	defer tel.Shutdown(ctx, log)

	tel.Metrics.RecordAttendance(ctx, "course")

	rec := httptest.NewRecorder()
	tel.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "attendance_service_attendance_recorded")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestInit_PrometheusDisabled(t *testing.T) {
	ctx := context.Background()
	log := logger.Discard()

	tel, err := telemetry.Init(ctx, config.TelemetryConfig{}, "attendance-test", "test", "unit", log)
	require.NoError(t, err)
	defer tel.Shutdown(ctx, log)

	rec := httptest.NewRecorder()
	tel.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
