package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zcu-kiv/marker/internal/config"
	"github.com/zcu-kiv/marker/internal/transport/websocket"
	"github.com/zcu-kiv/marker/internal/transport/zmq"
)

const markerWire = `{"strData":"","numData":0,"type":"MARKER","from":-1}`

func configDir(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(body), 0644))
	return dir
}

func TestRun_SendsMarkerToListener(t *testing.T) {
	t.Cleanup(viper.Reset)

	l, err := zmq.Listen("tcp://127.0.0.1:*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	dir := configDir(t, `{"sender": {"linger": "5s"}}`)
	var stdout bytes.Buffer

	err = run(context.Background(), []string{"--config-dir", dir, "--address", l.Endpoint()}, &stdout)
	require.NoError(t, err)

	assert.Equal(t, "Connecting to server ...\nSending marker.\n", stdout.String())

	got, err := l.Recv(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, markerWire, string(got))

	_, err = l.Recv(200 * time.Millisecond)
	assert.ErrorIs(t, err, zmq.ErrTimeout)
}

func TestRun_MarkerFieldsFromConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	l, err := zmq.Listen("tcp://127.0.0.1:*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	dir := configDir(t, `{"sender": {"linger": "5s"}, "marker": {"strData": "x", "numData": 3}}`)

	err = run(context.Background(), []string{"--config-dir", dir, "--address", l.Endpoint(), "--from", "1"}, &bytes.Buffer{})
	require.NoError(t, err)

	got, err := l.Recv(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, `{"strData":"x","numData":3,"type":"MARKER","from":1}`, string(got))
}

func TestRun_WritesLogFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	l, err := zmq.Listen("tcp://127.0.0.1:*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	logsDir := filepath.Join(t.TempDir(), "logs")
	dir := configDir(t, `{"logsDir": "`+filepath.ToSlash(logsDir)+`", "sender": {"linger": "5s"}}`)
	var stdout bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"--config-dir", dir, "--address", l.Endpoint()}, &stdout))

	entries, err := os.ReadDir(logsDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), ProgramName+"."))

	content, err := os.ReadFile(filepath.Join(logsDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Marker sent")
	assert.NotContains(t, stdout.String(), "Marker sent", "logs must not reach stdout")
}

func TestRun_ExportsSentCounter(t *testing.T) {
	t.Cleanup(viper.Reset)

	l, err := zmq.Listen("tcp://127.0.0.1:*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	logsDir := filepath.Join(t.TempDir(), "logs")
	dir := configDir(t, `{"logsDir": "`+filepath.ToSlash(logsDir)+`", "sender": {"linger": "5s"}, "otel": {"enabled": true}}`)

	require.NoError(t, run(context.Background(), []string{"--config-dir", dir, "--address", l.Endpoint()}, &bytes.Buffer{}))

	entries, err := os.ReadDir(logsDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	content, err := os.ReadFile(filepath.Join(logsDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(content), "markers.sent")
}

func TestRun_UnsupportedScheme(t *testing.T) {
	t.Cleanup(viper.Reset)

	var stdout bytes.Buffer
	err := run(context.Background(), []string{"--config-dir", configDir(t, `{}`), "--address", "udp://127.0.0.1:5555"}, &stdout)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported endpoint scheme: udp")
	assert.Empty(t, stdout.String())
}

func TestRun_BadFlag(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := run(context.Background(), []string{"--no-such-flag"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse flags")
}

func TestRun_Help(t *testing.T) {
	t.Cleanup(viper.Reset)
	assert.NoError(t, run(context.Background(), []string{"--help"}, &bytes.Buffer{}))
}

func TestCreateTransport(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	tests := []struct {
		address string
		check   func(t *testing.T, v any)
	}{
		{"tcp://10.0.1.12:5555", func(t *testing.T, v any) { assert.IsType(t, &zmq.Sender{}, v) }},
		{"ipc:///tmp/bank.sock", func(t *testing.T, v any) { assert.IsType(t, &zmq.Sender{}, v) }},
		{"ws://localhost:8080/markers", func(t *testing.T, v any) { assert.IsType(t, &websocket.Sender{}, v) }},
		{"wss://bank.example/markers", func(t *testing.T, v any) { assert.IsType(t, &websocket.Sender{}, v) }},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			tr, err := createTransport(config.SenderConfig{Address: tt.address}, logger)
			require.NoError(t, err)
			tt.check(t, tr)
		})
	}
}

func TestCreateTransport_Invalid(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	_, err := createTransport(config.SenderConfig{Address: "10.0.1.12:5555"}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid endpoint")
}

func TestCreateTransport_InprocRejected(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	_, err := createTransport(config.SenderConfig{Address: "inproc://markers"}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported endpoint scheme: inproc")
}
