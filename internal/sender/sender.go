// Package sender delivers a single marker to a remote bank node.
package sender

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/zcu-kiv/marker/internal/transport"
	"github.com/zcu-kiv/marker/pkg/marker"
)

// Progress lines written for the operator.
const (
	ConnectingLine = "Connecting to server ..."
	SendingLine    = "Sending marker."
)

// Config describes one marker delivery.
type Config struct {
	Address  string
	Marker   marker.Marker
	Progress io.Writer // receives the progress lines; nil discards them
}

// Dependencies holds the collaborators of a Sender
type Dependencies struct {
	Transport transport.Transport
	Logger    *slog.Logger
	Meter     metric.Meter
}

// Sender connects, sends the marker once and releases the connection.
type Sender struct {
	cfg       Config
	transport transport.Transport
	logger    *slog.Logger
	sent      metric.Int64Counter
}

// New creates a Sender. A nil Meter disables the sent counter.
func New(cfg Config, deps Dependencies) (*Sender, error) {
	if deps.Transport == nil {
		return nil, errors.New("sender requires a transport")
	}
	if cfg.Progress == nil {
		cfg.Progress = io.Discard
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Sender{
		cfg:       cfg,
		transport: deps.Transport,
		logger:    logger,
	}

	if deps.Meter != nil {
		counter, err := deps.Meter.Int64Counter("markers.sent",
			metric.WithDescription("Markers handed to the transport"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create sent counter: %w", err)
		}
		s.sent = counter
	}

	return s, nil
}

// Run performs connect, encode and send, in that order, exactly once.
// Errors are returned unretried; the connection is closed in every case
// once it has been opened.
func (s *Sender) Run(ctx context.Context) (err error) {
	fmt.Fprintln(s.cfg.Progress, ConnectingLine)
	s.logger.Info("Connecting", "address", s.cfg.Address)

	if err := s.transport.Connect(ctx, s.cfg.Address); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", s.cfg.Address, err)
	}
	defer func() {
		if cerr := s.transport.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close connection: %w", cerr)
		}
	}()

	payload, err := s.cfg.Marker.Encode()
	if err != nil {
		return err
	}

	fmt.Fprintln(s.cfg.Progress, SendingLine)
	if err := s.transport.Send(ctx, payload); err != nil {
		return fmt.Errorf("failed to send marker: %w", err)
	}

	if s.sent != nil {
		s.sent.Add(ctx, 1, metric.WithAttributes(
			attribute.String("type", string(s.cfg.Marker.Type)),
			attribute.Int("from", s.cfg.Marker.From),
		))
	}
	s.logger.Info("Marker sent", "address", s.cfg.Address, "from", s.cfg.Marker.From, "bytes", len(payload))

	return nil
}
