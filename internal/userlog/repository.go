package userlog

import (
	"context"
	"time"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, entry *UserLog) error
	List(ctx context.Context, filter Filter) ([]UserLog, error)
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

func (r *repository) Create(ctx context.Context, entry *UserLog) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(entry).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "user_logs", time.Since(start), err)

	return err
}

func (r *repository) List(ctx context.Context, filter Filter) ([]UserLog, error) {
	start := time.Now()
	logs := make([]UserLog, 0)

	q := r.db.NewSelect().Model(&logs).OrderExpr("created_at DESC").Limit(filter.Limit)
	if filter.UserType != "" {
		q = q.Where("user_type = ?", filter.UserType)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	err := q.Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "user_logs", time.Since(start), err)

	return logs, err
}
