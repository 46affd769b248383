// Package events publishes file lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// Event names, appended to the configured subject prefix.
const (
	PDFUnlocked = "pdf.unlocked"
	PDFEvicted  = "pdf.evicted"
)

// FileUnlocked is published after a password was removed and the result stored.
type FileUnlocked struct {
	FileID     string    `json:"file_id"`
	Filename   string    `json:"filename"`
	Pages      int       `json:"pages"`
	Size       int64     `json:"size"`
	OccurredAt time.Time `json:"occurred_at"`
}

// FileEvicted is published when the reaper removes an expired file.
type FileEvicted struct {
	FileID     string    `json:"file_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends an event under a name such as PDFUnlocked.
type Publisher interface {
	Publish(ctx context.Context, name string, payload any) error
	Close()
}

// NoopPublisher drops every event. Used when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
func (NoopPublisher) Close()                                     {}

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	Publish(subj string, data []byte) error
	IsConnected() bool
	Drain() error
}

// NATSPublisher publishes JSON events with core NATS. Delivery is fire-and-forget.
type NATSPublisher struct {
	nc     conn
	prefix string
	logger *slog.Logger
}

// NewNATSPublisher connects to url and keeps reconnecting in the background.
func NewNATSPublisher(url, prefix string, logger *slog.Logger) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("doctools"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", slog.Any("error", err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			logger.Info("nats_closed")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	logger.Info("nats_connected", slog.String("url", nc.ConnectedUrl()))
	return newNATSPublisher(nc, prefix, logger), nil
}

func newNATSPublisher(nc conn, prefix string, logger *slog.Logger) *NATSPublisher {
	return &NATSPublisher{nc: nc, prefix: strings.TrimSuffix(prefix, "."), logger: logger}
}

var _ Publisher = (*NATSPublisher)(nil)

// Subject returns the full subject for an event name.
func (p *NATSPublisher) Subject(name string) string {
	if p.prefix == "" {
		return name
	}
	return p.prefix + "." + name
}

// Publish marshals payload to JSON and publishes it.
func (p *NATSPublisher) Publish(ctx context.Context, name string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.nc.IsConnected() {
		return nats.ErrConnectionClosed
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", name, err)
	}
	subject := p.Subject(name)
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Warn("event_publish_failed", slog.String("subject", subject), slog.Any("error", err))
		return err
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.logger.Warn("nats_drain_failed", slog.Any("error", err))
	}
}
