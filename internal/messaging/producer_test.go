package messaging_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/logger"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/messaging"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/metrics"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/userlog"
	"github.com/elle-sys/automated-attendance-tracking-system/testing/testnats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// memoryLogs is a userlog.Repository kept in memory.
type memoryLogs struct {
	entries []userlog.UserLog
}

func (m *memoryLogs) Create(ctx context.Context, entry *userlog.UserLog) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryLogs) List(ctx context.Context, filter userlog.Filter) ([]userlog.UserLog, error) {
	return m.entries, nil
}

func TestProducer(t *testing.T) {
	natsContainer := testnats.SetupSharedNATS(t)
	defer natsContainer.Cleanup(t)

	t.Run("PublishUserLog", func(t *testing.T) {
		msgs := natsContainer.Subscribe(t, "attendance.userlogs.publish")

		producer, err := messaging.NewProducer(natsContainer.URL, "attendance.userlogs.publish", logger.Discard(), nil)
		require.NoError(t, err)
		defer producer.Close()
		assert.Equal(t, "attendance.userlogs.publish", producer.Subject())

		entry := &userlog.UserLog{
			ID:       "log-1",
			UserID:   "student-1",
			UserType: userlog.UserTypeStudent,
			FullName: "Ann",
			IDNumber: "S100",
			Action:   userlog.ActionLogin,
		}
		require.NoError(t, producer.Publish(context.Background(), entry))

		msg := testnats.Next(t, msgs, 5*time.Second)
		var got userlog.UserLog
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, "S100", got.IDNumber)
		assert.Equal(t, userlog.ActionLogin, got.Action)
	})

	t.Run("UserLogServiceFansOut", func(t *testing.T) {
		msgs := natsContainer.Subscribe(t, "attendance.userlogs.audit")

		producer, err := messaging.NewProducer(natsContainer.URL, "attendance.userlogs.audit", logger.Discard(), nil)
		require.NoError(t, err)
		defer producer.Close()

		repo := &memoryLogs{}
		svc := userlog.NewService(repo, producer, logger.Discard(), metrics.NewMock())

		require.NoError(t, svc.Append(context.Background(), &userlog.UserLog{
			UserID:   "instructor-1",
			UserType: userlog.UserTypeInstructor,
			FullName: "Dr. Reyes",
			IDNumber: "T1",
			Action:   userlog.ActionLogout,
		}))
		require.Len(t, repo.entries, 1)

		var got userlog.UserLog
		require.NoError(t, json.Unmarshal(testnats.Next(t, msgs, 5*time.Second).Data, &got))
		assert.Equal(t, "T1", got.IDNumber)
		assert.Equal(t, userlog.UserTypeInstructor, got.UserType)
		assert.Equal(t, userlog.ActionLogout, got.Action)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		producer, err := messaging.NewProducer(natsContainer.URL, "attendance.userlogs.test", logger.Discard(), nil)
		require.NoError(t, err)
		defer producer.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, producer.Publish(ctx, map[string]string{"a": "b"}), context.Canceled)
	})

	t.Run("ReportsDependencyHealth", func(t *testing.T) {
		health, reader := healthMetrics(t)

		producer, err := messaging.NewProducer(natsContainer.URL, "attendance.userlogs.health", logger.Discard(), health)
		require.NoError(t, err)
		defer producer.Close()
		assert.Equal(t, int64(1), dependencyUp(t, reader)[messaging.Dependency])

		require.NoError(t, producer.Publish(context.Background(), map[string]string{"a": "b"}))
		assert.Equal(t, int64(1), dependencyUp(t, reader)[messaging.Dependency])
	})

	t.Run("Unreachable", func(t *testing.T) {
		health, reader := healthMetrics(t)

		_, err := messaging.NewProducer("nats://127.0.0.1:1", "x", logger.Discard(), health)
		assert.Error(t, err)

		up, ok := dependencyUp(t, reader)[messaging.Dependency]
		require.True(t, ok)
		assert.Equal(t, int64(0), up)
	})
}

func healthMetrics(t *testing.T) (*metrics.HealthMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { provider.Shutdown(context.Background()) })

	meter := provider.Meter("test")
	m, err := metrics.New(meter)
	require.NoError(t, err)
	require.NoError(t, m.Health.RegisterDependencies(meter, messaging.Dependency))
	return m.Health, reader
}

func dependencyUp(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "dependency.up" {
				continue
			}
			gauge, ok := m.Data.(metricdata.Gauge[int64])
			require.True(t, ok)
			for _, dp := range gauge.DataPoints {
				name, _ := dp.Attributes.Value("dependency")
				out[name.AsString()] = dp.Value
			}
		}
	}
	return out
}
