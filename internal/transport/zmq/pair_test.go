package zmq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zcu-kiv/marker/internal/transport"
)

// Compile-time interface check.
var _ transport.Transport = (*Sender)(nil)

const markerWire = `{"strData":"","numData":0,"type":"MARKER","from":-1}`

func testListener(t *testing.T) *Listener {
	t.Helper()
	l, err := Listen("tcp://127.0.0.1:*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestSender_DeliversOneFrame(t *testing.T) {
	l := testListener(t)
	ctx := context.Background()

	s := New(Config{Linger: 5 * time.Second}, nil)
	require.NoError(t, s.Connect(ctx, l.Endpoint()))
	require.NoError(t, s.Send(ctx, []byte(markerWire)))
	require.NoError(t, s.Close())

	got, err := l.Recv(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, markerWire, string(got))

	_, err = l.Recv(200 * time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout, "exactly one frame expected")
}

func TestSender_InfiniteLingerFlushesBeforeClose(t *testing.T) {
	l := testListener(t)
	ctx := context.Background()

	s := New(Config{Linger: -time.Second}, nil)
	require.NoError(t, s.Connect(ctx, l.Endpoint()))
	require.NoError(t, s.Send(ctx, []byte(markerWire)))
	require.NoError(t, s.Close())

	got, err := l.Recv(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, markerWire, string(got))
}

func TestSender_SendBeforeConnect(t *testing.T) {
	s := New(Config{}, nil)
	err := s.Send(context.Background(), []byte(markerWire))
	assert.ErrorIs(t, err, transport.ErrNotConnected)
}

func TestSender_ConnectTwice(t *testing.T) {
	l := testListener(t)
	ctx := context.Background()

	s := New(Config{Linger: 0}, nil)
	require.NoError(t, s.Connect(ctx, l.Endpoint()))
	t.Cleanup(func() { _ = s.Close() })

	err := s.Connect(ctx, l.Endpoint())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already connected")
}

func TestSender_ConnectInvalidEndpoint(t *testing.T) {
	s := New(Config{Linger: 0}, nil)
	err := s.Connect(context.Background(), "tcp://no-port-here")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect pair socket")

	// A failed connect leaves nothing to close.
	assert.NoError(t, s.Close())
}

func TestSender_CloseIdempotent(t *testing.T) {
	s := New(Config{}, nil)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestListener_RecvTimeout(t *testing.T) {
	l := testListener(t)

	_, err := l.Recv(50 * time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestListener_ResolvesWildcardPort(t *testing.T) {
	l := testListener(t)

	assert.Regexp(t, `^tcp://127\.0\.0\.1:\d+$`, l.Endpoint())
	assert.NotContains(t, l.Endpoint(), "*")
}

func TestZmqDuration(t *testing.T) {
	assert.Equal(t, time.Duration(-1), zmqDuration(-time.Second))
	assert.Equal(t, time.Duration(-1), zmqDuration(-1))
	assert.Equal(t, time.Duration(0), zmqDuration(0))
	assert.Equal(t, 2*time.Second, zmqDuration(2*time.Second))
}
