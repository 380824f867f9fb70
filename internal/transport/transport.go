// internal/transport/transport.go
package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotConnected is returned by Send on a transport without a peer channel.
var ErrNotConnected = errors.New("transport not connected")

// Transport is the interface every outbound channel must satisfy.
// A transport carries opaque messages to exactly one remote peer.
type Transport interface {
	// Connect opens the channel to address, e.g. tcp://10.0.1.12:5555.
	Connect(ctx context.Context, address string) error

	// Send transmits payload as one discrete message. It does not wait
	// for a reply.
	Send(ctx context.Context, payload []byte) error

	// Close releases the channel once queued messages are handed off.
	Close() error
}

// Scheme returns the lower-cased scheme of an endpoint address.
func Scheme(address string) (string, error) {
	scheme, rest, ok := strings.Cut(address, "://")
	if !ok || scheme == "" || rest == "" {
		return "", fmt.Errorf("invalid endpoint %q: expected scheme://host:port", address)
	}
	return strings.ToLower(scheme), nil
}
