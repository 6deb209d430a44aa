package course

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/db"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, course *Course) (*Course, error)
	GetAll(ctx context.Context) ([]Course, error)
	GetByID(ctx context.Context, id string) (*Course, error)
	GetByInstructor(ctx context.Context, instructorID string) ([]Course, error)
	GetByCode(ctx context.Context, code string) ([]Course, error)
	GetByStudent(ctx context.Context, studentID string) ([]Course, error)
	IDsByInstructor(ctx context.Context, instructorID string) ([]string, error)
	Update(ctx context.Context, course *Course) error
	Delete(ctx context.Context, id string) error
	AddStudent(ctx context.Context, courseID, studentID string) error
	RemoveStudent(ctx context.Context, courseID, studentID string) (bool, error)
	Count(ctx context.Context) (int, error)
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

func (r *repository) Create(ctx context.Context, course *Course) (*Course, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(course).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "courses", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrCourseCodeTaken
		}
		return nil, err
	}
	return course, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Course, error) {
	return r.list(ctx, "select", nil)
}

func (r *repository) GetByInstructor(ctx context.Context, instructorID string) ([]Course, error) {
	return r.list(ctx, "select", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("instructor_id = ?", instructorID)
	})
}

func (r *repository) GetByCode(ctx context.Context, code string) ([]Course, error) {
	return r.list(ctx, "select", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("course_code = ?", code)
	})
}

// GetByStudent returns the courses whose enrollment contains studentID.
func (r *repository) GetByStudent(ctx context.Context, studentID string) ([]Course, error) {
	return r.list(ctx, "select", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("? = ANY(students)", studentID)
	})
}

func (r *repository) list(ctx context.Context, op string, filter func(*bun.SelectQuery) *bun.SelectQuery) ([]Course, error) {
	start := time.Now()
	courses := make([]Course, 0)

	q := r.db.NewSelect().Model(&courses)
	if filter != nil {
		q = filter(q)
	}
	err := q.OrderExpr("course_code ASC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, op, "courses", time.Since(start), err)

	return courses, err
}

func (r *repository) GetByID(ctx context.Context, id string) (*Course, error) {
	start := time.Now()
	course := new(Course)
	err := r.db.NewSelect().Model(course).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "courses", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (r *repository) IDsByInstructor(ctx context.Context, instructorID string) ([]string, error) {
	start := time.Now()
	ids := make([]string, 0)
	err := r.db.NewSelect().
		Model((*Course)(nil)).
		Column("id").
		Where("instructor_id = ?", instructorID).
		Scan(ctx, &ids)

	r.metrics.Database.RecordQuery(ctx, "select", "courses", time.Since(start), err)

	return ids, err
}

func (r *repository) Update(ctx context.Context, course *Course) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(course).
		Column("course_code", "course_name", "instructor_id", "schedule", "room", "updated_at").
		WherePK().
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "courses", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrCourseCodeTaken
		}
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model(&Course{ID: id}).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "courses", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// AddStudent appends studentID to the enrollment unless it is already there.
func (r *repository) AddStudent(ctx context.Context, courseID, studentID string) error {
	start := time.Now()
	_, err := r.db.NewUpdate().
		Model((*Course)(nil)).
		Set("students = array_append(students, ?)", studentID).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", courseID).
		Where("NOT (? = ANY(students))", studentID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "courses", time.Since(start), err)

	return err
}

// RemoveStudent reports whether studentID was enrolled.
func (r *repository) RemoveStudent(ctx context.Context, courseID, studentID string) (bool, error) {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*Course)(nil)).
		Set("students = array_remove(students, ?)", studentID).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", courseID).
		Where("? = ANY(students)", studentID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "courses", time.Since(start), err)

	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	start := time.Now()
	count, err := r.db.NewSelect().Model((*Course)(nil)).Count(ctx)

	r.metrics.Database.RecordQuery(ctx, "count", "courses", time.Since(start), err)

	return count, err
}
