package instructor

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
	Create(ctx context.Context, instructor *Instructor) (*Instructor, error)
	GetAll(ctx context.Context) ([]Instructor, error)
	GetByID(ctx context.Context, id string) (*Instructor, error)
	GetByIDNumber(ctx context.Context, idNumber string) (*Instructor, error)
	GetByIDNumbers(ctx context.Context, idNumbers []string) ([]Instructor, error)
	Update(ctx context.Context, instructor *Instructor) error
	Delete(ctx context.Context, id string) error
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

func (r *repository) Create(ctx context.Context, instructor *Instructor) (*Instructor, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(instructor).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "instructors", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrInstructorIDTaken
		}
		return nil, err
	}
	return instructor, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Instructor, error) {
	start := time.Now()
	instructors := make([]Instructor, 0)
	err := r.db.NewSelect().Model(&instructors).OrderExpr("full_name ASC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "instructors", time.Since(start), err)

	return instructors, err
}

func (r *repository) GetByID(ctx context.Context, id string) (*Instructor, error) {
	return r.getBy(ctx, "id", id)
}

func (r *repository) GetByIDNumber(ctx context.Context, idNumber string) (*Instructor, error) {
	return r.getBy(ctx, "id_number", idNumber)
}

func (r *repository) getBy(ctx context.Context, column, value string) (*Instructor, error) {
	start := time.Now()
	instructor := new(Instructor)
	err := r.db.NewSelect().Model(instructor).Where("? = ?", bun.Ident(column), value).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "instructors", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInstructorNotFound
		}
		return nil, err
	}
	return instructor, nil
}

func (r *repository) GetByIDNumbers(ctx context.Context, idNumbers []string) ([]Instructor, error) {
	instructors := make([]Instructor, 0, len(idNumbers))
	if len(idNumbers) == 0 {
		return instructors, nil
	}

	start := time.Now()
	err := r.db.NewSelect().
		Model(&instructors).
		Where("id_number IN (?)", bun.In(idNumbers)).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "instructors", time.Since(start), err)

	return instructors, err
}

func (r *repository) Update(ctx context.Context, instructor *Instructor) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(instructor).
		Column("id_number", "full_name", "password", "updated_at").
		WherePK().
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "instructors", time.Since(start), err)

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
		return ErrInstructorNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model(&Instructor{ID: id}).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "instructors", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrInstructorNotFound
	}
	return nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	start := time.Now()
	count, err := r.db.NewSelect().Model((*Instructor)(nil)).Count(ctx)

	r.metrics.Database.RecordQuery(ctx, "count", "instructors", time.Since(start), err)

	return count, err
}
