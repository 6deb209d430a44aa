package userlog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/metrics"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Publisher fans entries out to the message bus.
type Publisher interface {
	Publish(ctx context.Context, value any) error
}

type Service interface {
	Append(ctx context.Context, entry *UserLog) error
	List(ctx context.Context, filter Filter) ([]UserLog, error)
}

type service struct {
	repo      Repository
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewService wires the audit log. publisher may be nil.
func NewService(repo Repository, publisher Publisher, logger *slog.Logger, metrics *metrics.Metrics) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// Append stores entry and then publishes it. A failed publish is logged only.
func (s *service) Append(ctx context.Context, entry *UserLog) error {
	if err := s.repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("append user log: %w", err)
	}

	if s.publisher == nil {
		return nil
	}

	err := s.publisher.Publish(ctx, entry)
	s.metrics.RecordUserLogPublished(ctx, err)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to publish user log",
			"error", err,
			"user_type", entry.UserType,
			"action", entry.Action,
		)
	}
	return nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]UserLog, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultLimit
	case filter.Limit > MaxLimit:
		filter.Limit = MaxLimit
	}
	return s.repo.List(ctx, filter)
}
