package student

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
	Create(ctx context.Context, student *Student) (*Student, error)
	GetAll(ctx context.Context) ([]Student, error)
	Search(ctx context.Context, query string) ([]Student, error)
	GetByID(ctx context.Context, id string) (*Student, error)
	GetByIDNumber(ctx context.Context, idNumber string) (*Student, error)
	GetByIDNumbers(ctx context.Context, idNumbers []string) ([]Student, error)
	Update(ctx context.Context, student *Student) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	CreatedBetween(ctx context.Context, from, to time.Time) ([]time.Time, error)
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

func (r *repository) Create(ctx context.Context, student *Student) (*Student, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(student).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "students", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrStudentIDTaken
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Student, error) {
	start := time.Now()
	students := make([]Student, 0)
	err := r.db.NewSelect().Model(&students).OrderExpr("created_at ASC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	return students, err
}

// Search matches query as a case-insensitive POSIX regex against name or ID number.
func (r *repository) Search(ctx context.Context, query string) ([]Student, error) {
	start := time.Now()
	students := make([]Student, 0)

	err := r.db.NewSelect().
		Model(&students).
		Column("id", "id_number", "full_name").
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("full_name ~* ?", query).WhereOr("id_number ~* ?", query)
		}).
		OrderExpr("full_name ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if db.IsInvalidRegex(err) {
		return nil, ErrInvalidSearch
	}
	return students, err
}

func (r *repository) GetByID(ctx context.Context, id string) (*Student, error) {
	start := time.Now()
	student := new(Student)
	err := r.db.NewSelect().Model(student).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) GetByIDNumber(ctx context.Context, idNumber string) (*Student, error) {
	start := time.Now()
	student := new(Student)
	err := r.db.NewSelect().Model(student).Where("id_number = ?", idNumber).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) GetByIDNumbers(ctx context.Context, idNumbers []string) ([]Student, error) {
	students := make([]Student, 0, len(idNumbers))
	if len(idNumbers) == 0 {
		return students, nil
	}

	start := time.Now()
	err := r.db.NewSelect().
		Model(&students).
		Where("id_number IN (?)", bun.In(idNumbers)).
		OrderExpr("full_name ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	return students, err
}

func (r *repository) Update(ctx context.Context, student *Student) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(student).
		Column("id_number", "full_name", "updated_at").
		WherePK().
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "students", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrIDNumberTaken
		}
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrStudentNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	student := &Student{ID: id}
	result, err := r.db.NewDelete().Model(student).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "students", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrStudentNotFound
	}
	return nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	start := time.Now()
	count, err := r.db.NewSelect().Model((*Student)(nil)).Count(ctx)

	r.metrics.Database.RecordQuery(ctx, "count", "students", time.Since(start), err)

	return count, err
}

// CreatedBetween returns sign-up times in [from, to).
func (r *repository) CreatedBetween(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	start := time.Now()
	times := make([]time.Time, 0)
	err := r.db.NewSelect().
		Model((*Student)(nil)).
		Column("created_at").
		Where("created_at >= ?", from).
		Where("created_at < ?", to).
		Scan(ctx, &times)

	r.metrics.Database.RecordQuery(ctx, "select", "students", time.Since(start), err)

	return times, err
}
