package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/metrics"

	"github.com/nats-io/nats.go"
)

// Dependency is the name the producer reports under dependency.up.
const Dependency = "nats"

type Producer struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
	health  *metrics.HealthMetrics
}

// NewProducer connects to NATS. health may be nil; when set, connect,
// publish and disconnect/reconnect events update the nats dependency gauge.
func NewProducer(url string, subject string, logger *slog.Logger, health *metrics.HealthMetrics) (*Producer, error) {
	start := time.Now()
	nc, err := nats.Connect(url,
		nats.Name("attendance-service"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err == nil {
				err = nats.ErrDisconnected
			}
			logger.Warn("NATS disconnected", "error", err)
			health.RecordDependencyCheck(context.Background(), Dependency, 0, err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
			health.RecordDependencyCheck(context.Background(), Dependency, 0, nil)
		}),
	)
	health.RecordDependencyCheck(context.Background(), Dependency, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("NATS producer initialized", "url", url, "subject", subject)

	return &Producer{
		conn:    nc,
		subject: subject,
		logger:  logger,
		health:  health,
	}, nil
}

// Publish sends value as JSON on the producer subject.
func (p *Producer) Publish(ctx context.Context, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	start := time.Now()
	err = p.conn.Publish(p.subject, payload)
	p.health.RecordDependencyCheck(ctx, Dependency, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.subject, err)
	}

	p.logger.DebugContext(ctx, "message sent to NATS", "subject", p.subject)
	return nil
}

func (p *Producer) Subject() string {
	return p.subject
}

// Close flushes pending messages and closes the connection.
func (p *Producer) Close() error {
	if p.conn == nil {
		return nil
	}
	err := p.conn.Drain()
	if err != nil {
		p.conn.Close()
	}
	return err
}
