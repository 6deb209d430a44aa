package attendance

import (
	"context"
	"time"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/db"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, record *Record) (*Record, error)
	ListByCourse(ctx context.Context, courseID string) ([]Record, error)
	ListByStudent(ctx context.Context, studentID string) ([]Record, error)
	ListSessionRecords(ctx context.Context, courseID string) ([]Record, error)
	TimesForCourses(ctx context.Context, courseIDs []string, from, to time.Time) ([]time.Time, error)
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Create(ctx context.Context, record *Record) (*Record, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(record).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "attendance_records", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyRecorded
		}
		return nil, err
	}
	return record, nil
}

func (r *repository) ListByCourse(ctx context.Context, courseID string) ([]Record, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("course_id = ?", courseID)
	})
}

func (r *repository) ListByStudent(ctx context.Context, studentID string) ([]Record, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("student_id = ?", studentID)
	})
}

// ListSessionRecords returns the course's records that belong to a session.
func (r *repository) ListSessionRecords(ctx context.Context, courseID string) ([]Record, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("course_id = ?", courseID).Where("session_id IS NOT NULL")
	})
}

func (r *repository) list(ctx context.Context, filter func(*bun.SelectQuery) *bun.SelectQuery) ([]Record, error) {
	start := time.Now()
	records := make([]Record, 0)

	err := filter(r.db.NewSelect().Model(&records)).
		OrderExpr("recorded_at DESC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "attendance_records", time.Since(start), err)

	return records, err
}

// TimesForCourses returns the check-in times of the given courses in [from, to).
func (r *repository) TimesForCourses(ctx context.Context, courseIDs []string, from, to time.Time) ([]time.Time, error) {
	times := make([]time.Time, 0)
	if len(courseIDs) == 0 {
		return times, nil
	}

	start := time.Now()
	err := r.db.NewSelect().
		Model((*Record)(nil)).
		Column("recorded_at").
		Where("course_id IN (?)", bun.In(courseIDs)).
		Where("recorded_at >= ?", from).
		Where("recorded_at < ?", to).
		Scan(ctx, &times)

	r.metrics.Database.RecordQuery(ctx, "select", "attendance_records", time.Since(start), err)

	return times, err
}
