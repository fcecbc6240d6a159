package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Subject is the NATS subject changes to table are published on.
func Subject(table string) string {
	return table + ".changed"
}

// NATSPublisher mirrors the change feed onto NATS for consumers outside this process.
type NATSPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewNATSPublisher(url string, logger *zap.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("logistics-admin-service"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn, logger: logger}, nil
}

func (p *NATSPublisher) Notify(_ context.Context, change Change) {
	data, err := json.Marshal(change)
	if err != nil {
		p.logger.Error("Failed to encode change event", zap.Error(err))
		return
	}

	if err := p.conn.Publish(Subject(change.Table), data); err != nil {
		p.logger.Warn("Failed to publish change event",
			zap.String("subject", Subject(change.Table)),
			zap.String("id", change.ID),
			zap.Error(err),
		)
	}
}

func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("Failed to drain NATS connection", zap.Error(err))
	}
}
