package transport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zcu-kiv/marker/internal/transport"
)

func TestScheme(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"tcp://10.0.1.12:5555", "tcp"},
		{"TCP://127.0.0.1:5555", "tcp"},
		{"ipc:///tmp/bank.sock", "ipc"},
		{"ws://localhost:8080/markers", "ws"},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			got, err := transport.Scheme(tt.address)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScheme_Invalid(t *testing.T) {
	for _, address := range []string{"", "10.0.1.12:5555", "://host:1", "tcp://"} {
		t.Run(address, func(t *testing.T) {
			_, err := transport.Scheme(address)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid endpoint")
		})
	}
}
