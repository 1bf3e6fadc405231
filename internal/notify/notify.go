// Package notify announces snapshot swaps to out-of-process consumers.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// SnapshotSwapped is published after a new snapshot replaces the current one.
type SnapshotSwapped struct {
	Type        string    `json:"type"`
	BuildID     string    `json:"build_id"`
	Generation  uint64    `json:"generation"`
	Fingerprint string    `json:"fingerprint"`
	Documents   int       `json:"documents"`
	SwappedAt   time.Time `json:"swapped_at"`
}

// TypeSnapshotSwapped is the Type of every SnapshotSwapped message.
const TypeSnapshotSwapped = "snapshot.swapped"

// Publisher announces snapshot swaps.
type Publisher interface {
	PublishSwap(ctx context.Context, msg SnapshotSwapped) error
	Close() error
}

// NoopPublisher discards every message.
type NoopPublisher struct{}

func (NoopPublisher) PublishSwap(context.Context, SnapshotSwapped) error { return nil }
func (NoopPublisher) Close() error                                     { return nil }

// conn is the subset of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// NATSPublisher publishes swaps as JSON on a NATS subject.
type NATSPublisher struct {
	conn    conn
	subject string
}

// NewNATSPublisher connects to url and publishes on subject.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("docnav"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", logfields.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("NATS reconnected", logfields.Addr(c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to connect to NATS").
			WithContext("url", url).
			Retryable().
			Build()
	}
	slog.Info("NATS publisher connected", logfields.Addr(url), slog.String("subject", subject))
	return newPublisher(nc, subject), nil
}

func newPublisher(c conn, subject string) *NATSPublisher {
	return &NATSPublisher{conn: c, subject: subject}
}

// PublishSwap publishes msg and waits for the server to acknowledge the flush.
func (p *NATSPublisher) PublishSwap(ctx context.Context, msg SnapshotSwapped) error {
	msg.Type = TypeSnapshotSwapped
	if msg.SwappedAt.IsZero() {
		msg.SwappedAt = time.Now().UTC()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal swap message: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to publish swap message").
			WithContext("subject", p.subject).
			Build()
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to flush swap message").
			WithContext("subject", p.subject).
			Build()
	}

	slog.Debug("Published snapshot swap",
		logfields.BuildID(msg.BuildID),
		logfields.Generation(msg.Generation),
		slog.String("subject", p.subject))
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
