// Package zmq carries messages over ZeroMQ PAIR sockets.
package zmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	zmq4 "github.com/pebbe/zmq4"

	"github.com/zcu-kiv/marker/internal/transport"
)

// Config holds PAIR socket settings.
type Config struct {
	// Linger bounds how long Close waits for queued messages.
	// Negative waits until they are sent, zero discards them.
	Linger time.Duration
}

// Sender is the connecting end of a PAIR channel. It owns its own context,
// created on Connect and terminated on Close.
type Sender struct {
	mu     sync.Mutex
	cfg    Config
	zctx   *zmq4.Context
	socket *zmq4.Socket
	logger *slog.Logger
}

// New creates an unconnected PAIR sender.
func New(cfg Config, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// zmqDuration maps any negative duration to the library's "infinite" value.
func zmqDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -1
	}
	return d
}

// Connect creates the context and a PAIR socket connected to address.
// No data is exchanged with the peer.
func (s *Sender) Connect(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.socket != nil {
		return errors.New("pair socket already connected")
	}

	zctx, err := zmq4.NewContext()
	if err != nil {
		return fmt.Errorf("failed to create zmq context: %w", err)
	}

	socket, err := zctx.NewSocket(zmq4.PAIR)
	if err != nil {
		_ = zctx.Term()
		return fmt.Errorf("failed to create pair socket: %w", err)
	}

	if err := socket.SetLinger(zmqDuration(s.cfg.Linger)); err != nil {
		_ = socket.Close()
		_ = zctx.Term()
		return fmt.Errorf("failed to set linger: %w", err)
	}

	if err := socket.Connect(address); err != nil {
		_ = socket.Close()
		_ = zctx.Term()
		return fmt.Errorf("failed to connect pair socket to %s: %w", address, err)
	}

	s.zctx = zctx
	s.socket = socket
	s.logger.Debug("Pair socket connected", "address", address, "linger", s.cfg.Linger)
	return nil
}

// Send queues payload as a single frame. It blocks while no peer is
// attached or the high water mark is reached.
func (s *Sender) Send(_ context.Context, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.socket == nil {
		return transport.ErrNotConnected
	}

	n, err := s.socket.SendBytes(payload, 0)
	if err != nil {
		return fmt.Errorf("pair send failed: %w", err)
	}
	s.logger.Debug("Pair frame queued", "bytes", n)
	return nil
}

// Close closes the socket and terminates the context. Termination waits
// for queued frames according to Linger.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.socket == nil {
		return nil
	}

	var errs []error
	if err := s.socket.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pair socket: %w", err))
	}
	if err := s.zctx.Term(); err != nil {
		errs = append(errs, fmt.Errorf("terminate zmq context: %w", err))
	}
	s.socket = nil
	s.zctx = nil

	return errors.Join(errs...)
}
