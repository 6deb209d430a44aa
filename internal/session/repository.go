package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, session *Session) (*Session, error)
	GetByID(ctx context.Context, id string) (*Session, error)
	ListActive(ctx context.Context, now time.Time) ([]Session, error)
	End(ctx context.Context, id string, at time.Time) error
	CountByCourse(ctx context.Context, courseID string) (int, error)
	CountActive(ctx context.Context, now time.Time) (int, error)
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

func (r *repository) Create(ctx context.Context, session *Session) (*Session, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(session).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "class_sessions", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return session, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Session, error) {
	start := time.Now()
	session := new(Session)
	err := r.db.NewSelect().Model(session).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "class_sessions", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (r *repository) ListActive(ctx context.Context, now time.Time) ([]Session, error) {
	start := time.Now()
	sessions := make([]Session, 0)
	err := r.db.NewSelect().
		Model(&sessions).
		Where("ended_at IS NULL").
		Where("ends_at > ?", now).
		OrderExpr("started_at DESC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "class_sessions", time.Since(start), err)

	return sessions, err
}

// End marks a running session as ended. It returns ErrSessionEnded when the
// session was already ended.
func (r *repository) End(ctx context.Context, id string, at time.Time) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*Session)(nil)).
		Set("ended_at = ?", at).
		Where("id = ?", id).
		Where("ended_at IS NULL").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "class_sessions", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrSessionEnded
	}
	return nil
}

func (r *repository) CountByCourse(ctx context.Context, courseID string) (int, error) {
	start := time.Now()
	count, err := r.db.NewSelect().Model((*Session)(nil)).Where("course_id = ?", courseID).Count(ctx)

	r.metrics.Database.RecordQuery(ctx, "count", "class_sessions", time.Since(start), err)

	return count, err
}

func (r *repository) CountActive(ctx context.Context, now time.Time) (int, error) {
	start := time.Now()
	count, err := r.db.NewSelect().
		Model((*Session)(nil)).
		Where("ended_at IS NULL").
		Where("ends_at > ?", now).
		Count(ctx)

	r.metrics.Database.RecordQuery(ctx, "count", "class_sessions", time.Since(start), err)

	return count, err
}
