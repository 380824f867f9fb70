package main

import (
	"fmt"
	"log/slog"

	"github.com/zcu-kiv/marker/internal/config"
	"github.com/zcu-kiv/marker/internal/transport"
	"github.com/zcu-kiv/marker/internal/transport/websocket"
	"github.com/zcu-kiv/marker/internal/transport/zmq"
)

// createTransport picks the transport from the scheme of the configured address.
func createTransport(cfg config.SenderConfig, logger *slog.Logger) (transport.Transport, error) {
	scheme, err := transport.Scheme(cfg.Address)
	if err != nil {
		return nil, err
	}

	switch scheme {
	case "tcp", "ipc":
		logger.Debug("Using PAIR transport", "scheme", scheme, "linger", cfg.Linger)
		return zmq.New(zmq.Config{
			Linger: cfg.Linger,
		}, logger), nil

	case "ws", "wss":
		logger.Debug("Using WebSocket transport", "scheme", scheme)
		return websocket.New(websocket.Config{
			DialTimeout:  cfg.DialTimeout,
			WriteTimeout: cfg.WriteTimeout,
		}, logger), nil

	default:
		return nil, fmt.Errorf("unsupported endpoint scheme: %s", scheme)
	}
}
