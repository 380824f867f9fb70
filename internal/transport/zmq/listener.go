package zmq

import (
	"errors"
	"fmt"
	"syscall"
	"time"

	zmq4 "github.com/pebbe/zmq4"
)

// ErrTimeout is returned by Recv when no frame arrives in time.
var ErrTimeout = errors.New("receive timed out")

// Listener is the binding end of a PAIR channel.
type Listener struct {
	zctx     *zmq4.Context
	socket   *zmq4.Socket
	endpoint string
}

// Listen binds a PAIR socket to endpoint. A wildcard port such as
// tcp://127.0.0.1:* is resolved; see Endpoint.
func Listen(endpoint string) (*Listener, error) {
	zctx, err := zmq4.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create zmq context: %w", err)
	}

	socket, err := zctx.NewSocket(zmq4.PAIR)
	if err != nil {
		_ = zctx.Term()
		return nil, fmt.Errorf("failed to create pair socket: %w", err)
	}

	fail := func(err error) (*Listener, error) {
		_ = socket.Close()
		_ = zctx.Term()
		return nil, err
	}

	if err := socket.SetLinger(0); err != nil {
		return fail(fmt.Errorf("failed to set linger: %w", err))
	}
	if err := socket.Bind(endpoint); err != nil {
		return fail(fmt.Errorf("failed to bind pair socket to %s: %w", endpoint, err))
	}
	bound, err := socket.GetLastEndpoint()
	if err != nil {
		return fail(fmt.Errorf("failed to read bound endpoint: %w", err))
	}

	return &Listener{
		zctx:     zctx,
		socket:   socket,
		endpoint: bound,
	}, nil
}

// Endpoint returns the address the listener is bound to.
func (l *Listener) Endpoint() string {
	return l.endpoint
}

// Recv returns the next frame, waiting at most timeout.
func (l *Listener) Recv(timeout time.Duration) ([]byte, error) {
	if err := l.socket.SetRcvtimeo(zmqDuration(timeout)); err != nil {
		return nil, fmt.Errorf("failed to set receive timeout: %w", err)
	}

	data, err := l.socket.RecvBytes(0)
	if err != nil {
		if zmq4.AsErrno(err) == zmq4.Errno(syscall.EAGAIN) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("pair receive failed: %w", err)
	}
	return data, nil
}

// Close discards pending frames and releases the socket.
func (l *Listener) Close() error {
	return errors.Join(l.socket.Close(), l.zctx.Term())
}
