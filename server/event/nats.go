// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/nats-io/nats.go"

	a2a "github.com/go-a2a/a2a-agent"
)

// DefaultSubjectPrefix is the NATS subject prefix mirrored events are published under.
const DefaultSubjectPrefix = "a2a.events"

// Publisher publishes raw messages on a subject. [*nats.Conn] satisfies it.
type Publisher interface {
	Publish(subj string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

// Connect opens a NATS connection for event mirroring.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("a2a-agent"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

// NATSMirror is a [Bus] that forwards every event to another bus and mirrors it as JSON
// to NATS subject "<prefix>.<taskId>". Mirroring is best effort: failures are logged and
// never fail the publish.
type NATSMirror struct {
	next   Bus
	pub    Publisher
	prefix string
	logger *slog.Logger
}

var _ Bus = (*NATSMirror)(nil)

// NewNATSMirror wraps next.
func NewNATSMirror(next Bus, pub Publisher, prefix string, logger *slog.Logger) *NATSMirror {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSMirror{next: next, pub: pub, prefix: prefix, logger: logger}
}

// Publish implements [Bus].
func (m *NATSMirror) Publish(ctx context.Context, ev a2a.Event) error {
	if err := m.next.Publish(ctx, ev); err != nil {
		return err
	}

	subject := m.prefix + "." + TaskID(ev)
	data, err := json.Marshal(ev)
	if err != nil {
		m.logger.WarnContext(ctx, "encode mirrored event", slog.String("subject", subject), slog.Any("error", err))
		return nil
	}
	if err := m.pub.Publish(subject, data); err != nil {
		m.logger.WarnContext(ctx, "mirror event to nats", slog.String("subject", subject), slog.Any("error", err))
	}
	return nil
}
