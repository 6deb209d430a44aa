package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics groups the service counters. A nil or mock value ignores every Record call.
type Metrics struct {
	Database *DatabaseMetrics
	Health   *HealthMetrics

	accountsRegistered metric.Int64Counter
	logins             metric.Int64Counter
	attendanceRecorded metric.Int64Counter
	trendRequests      metric.Int64Counter
	userLogsPublished  metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	health, err := NewHealthMetrics(meter)
	if err != nil {
		return nil, err
	}

	m := &Metrics{Database: database, Health: health}

	m.accountsRegistered, err = meter.Int64Counter(
		"attendance_service.accounts.registered",
		metric.WithDescription("Total number of student and instructor accounts created"),
		metric.WithUnit("{account}"),
	)
	if err != nil {
		return nil, err
	}

	m.logins, err = meter.Int64Counter(
		"attendance_service.logins",
		metric.WithDescription("Login attempts by role and outcome"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, err
	}

	m.attendanceRecorded, err = meter.Int64Counter(
		"attendance_service.attendance.recorded",
		metric.WithDescription("Total number of attendance records written"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	m.trendRequests, err = meter.Int64Counter(
		"attendance_service.trends.requested",
		metric.WithDescription("Total number of trend reports served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	m.userLogsPublished, err = meter.Int64Counter(
		"attendance_service.userlogs.published",
		metric.WithDescription("User log events handed to the message bus"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordAccountRegistered(ctx context.Context, role string) {
	if m != nil && m.accountsRegistered != nil {
		m.accountsRegistered.Add(ctx, 1, metric.WithAttributes(attribute.String("role", role)))
	}
}

func (m *Metrics) RecordLogin(ctx context.Context, role string, success bool) {
	if m != nil && m.logins != nil {
		m.logins.Add(ctx, 1, metric.WithAttributes(
			attribute.String("role", role),
			attribute.Bool("success", success),
		))
	}
}

func (m *Metrics) RecordAttendance(ctx context.Context, source string) {
	if m != nil && m.attendanceRecorded != nil {
		m.attendanceRecorded.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
	}
}

func (m *Metrics) RecordTrendRequest(ctx context.Context, scope string) {
	if m != nil && m.trendRequests != nil {
		m.trendRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("scope", scope)))
	}
}

func (m *Metrics) RecordUserLogPublished(ctx context.Context, err error) {
	if m != nil && m.userLogsPublished != nil {
		m.userLogsPublished.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", err == nil)))
	}
}

// NewMock creates a no-op Metrics instance for testing.
func NewMock() *Metrics {
	return &Metrics{
		Database: &DatabaseMetrics{},
		Health:   &HealthMetrics{},
	}
}
