package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the subject payloads are published on when none is given.
const DefaultSubject = "reqlog.payloads"

// NATS publishes each payload as one message.
type NATS struct {
	conn    *nats.Conn
	subject string
	owned   bool
}

// NewNATS publishes on subject over an existing connection. The caller keeps
// ownership of conn.
func NewNATS(conn *nats.Conn, subject string) (*NATS, error) {
	if conn == nil {
		return nil, errors.New("nats connection is required")
	}
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATS{conn: conn, subject: subject}, nil
}

// ConnectNATS dials url and returns a sink that owns the connection. opts
// are applied after the defaults, e.g. nats.Token.
func ConnectNATS(url, subject string, opts ...nats.Option) (*NATS, error) {
	base := []nats.Option{
		nats.Name("reqlog"),
		nats.Timeout(5 * time.Second),
		nats.MaxReconnects(-1),
	}
	conn, err := nats.Connect(url, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	s, err := NewNATS(conn, subject)
	if err != nil {
		conn.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// Subject returns the publish subject.
func (s *NATS) Subject() string {
	return s.subject
}

// Write implements Sink.
func (s *NATS) Write(_ context.Context, payload string) error {
	if err := s.conn.Publish(s.subject, []byte(payload)); err != nil {
		return fmt.Errorf("publishing to %s: %w", s.subject, err)
	}
	return nil
}

// Flush waits until the server has processed published payloads.
func (s *NATS) Flush(ctx context.Context) error {
	return s.conn.FlushWithContext(ctx)
}

// Close drains the connection when the sink owns it.
func (s *NATS) Close() error {
	if !s.owned {
		return nil
	}
	return s.conn.Drain()
}
