// Package natsbridge forwards bus events to NATS subjects so other services
// can follow launches.
package natsbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rovshanmuradov/token-launcher/internal/events"
	"go.uber.org/zap"
)

// Conn is the part of *nats.Conn the forwarder uses.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Forwarder publishes every event as JSON to <prefix>.<event type>.
type Forwarder struct {
	conn   Conn
	prefix string
	logger *zap.Logger
}

func NewForwarder(conn Conn, prefix string, logger *zap.Logger) *Forwarder {
	return &Forwarder{
		conn:   conn,
		prefix: strings.TrimSuffix(prefix, "."),
		logger: logger.Named("nats_bridge"),
	}
}

// Connect dials url with reconnects enabled.
func Connect(url, name string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// Subject returns the subject an event of typ is published on.
func (f *Forwarder) Subject(typ events.EventType) string {
	return f.prefix + "." + string(typ)
}

// Handle implements events.Handler.
func (f *Forwarder) Handle(_ context.Context, event events.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type(), err)
	}

	subject := f.Subject(event.Type())
	if err := f.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	f.logger.Debug("event forwarded", zap.String("subject", subject))
	return nil
}

// Attach subscribes f to every event on bus.
func (f *Forwarder) Attach(bus *events.Bus) events.Subscription {
	return bus.Subscribe(events.AllEvents, f)
}
