// Package websocket carries messages to a WebSocket relay, one text frame
// per message.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/zcu-kiv/marker/internal/transport"
)

const (
	defaultDialTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
	closeWait           = time.Second
)

// Config holds WebSocket transport configuration.
type Config struct {
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

// Sender writes messages to a single WebSocket peer.
type Sender struct {
	mu     sync.Mutex
	conn   *ws.Conn
	cfg    Config
	logger *slog.Logger
}

// New creates an unconnected WebSocket sender.
func New(cfg Config, logger *slog.Logger) *Sender {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// Connect performs the WebSocket handshake with address.
func (s *Sender) Connect(ctx context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return errors.New("websocket already connected")
	}

	dialer := ws.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: s.cfg.DialTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, address, nil)
	if err != nil {
		return fmt.Errorf("websocket dial failed: %w", err)
	}

	s.conn = conn
	s.logger.Debug("WebSocket connected", "address", address)
	return nil
}

// Send writes payload as one text frame under the write deadline.
func (s *Sender) Send(_ context.Context, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return transport.ErrNotConnected
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
		return fmt.Errorf("websocket set write deadline: %w", err)
	}
	if err := s.conn.WriteMessage(ws.TextMessage, payload); err != nil {
		return fmt.Errorf("websocket write failed: %w", err)
	}
	s.logger.Debug("WebSocket frame written", "bytes", len(payload))
	return nil
}

// Close sends a normal close frame and closes the connection.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	conn := s.conn
	s.conn = nil

	err := conn.WriteControl(
		ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
		time.Now().Add(closeWait),
	)
	if err != nil {
		s.logger.Warn("WebSocket close frame failed", "error", err)
	}
	return conn.Close()
}
