// Package messaging publishes hostel events to NATS.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SHADOW0715/Hostel-Management-System/internal/hostel"
	"github.com/SHADOW0715/Hostel-Management-System/internal/metrics"

	"github.com/nats-io/nats.go"
)

// Publisher sends each event to "<prefix>.<event type>", so subscribers can
// listen to "hostel.>" or narrow down to "hostel.room_change.*".
type Publisher struct {
	conn    *nats.Conn
	prefix  string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewPublisher(url string, prefix string, logger *slog.Logger, m *metrics.Metrics) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("hostel-management"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("NATS publisher initialized", "url", url, "prefix", prefix)

	return &Publisher{
		conn:    nc,
		prefix:  prefix,
		logger:  logger,
		metrics: m,
	}, nil
}

func (p *Publisher) Subject(t hostel.EventType) string {
	return fmt.Sprintf("%s.%s", p.prefix, t)
}

func (p *Publisher) Publish(ctx context.Context, event hostel.Event) error {
	valueBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal event", "error", err)
		return err
	}

	subject := p.Subject(event.Type)
	start := time.Now()
	err = p.conn.Publish(subject, valueBytes)
	p.metrics.RecordPublish(ctx, subject, time.Since(start), err)

	if err != nil {
		p.logger.ErrorContext(ctx, "failed to send event to NATS", "subject", subject, "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "event sent to NATS", "subject", subject)
	return nil
}

// Ping backs the readiness probe.
func (p *Publisher) Ping(ctx context.Context) error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats: %s", p.conn.Status())
	}
	return p.conn.FlushWithContext(ctx)
}

func (p *Publisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}
