package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQdrantAddr(t *testing.T) {
	cases := []struct {
		name     string
		addr     string
		wantHost string
		wantPort int
	}{
		{"host and port", "localhost:6334", "localhost", 6334},
		{"http scheme", "http://qdrant.internal:6334", "qdrant.internal", 6334},
		{"https scheme", "https://qdrant.internal:6334", "qdrant.internal", 6334},
		{"no port defaults to 6334", "qdrant.internal", "qdrant.internal", 6334},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			host, port, err := ParseQdrantAddr(tc.addr)
			require.NoError(t, err)
			assert.Equal(t, tc.wantHost, host)
			assert.Equal(t, tc.wantPort, port)
		})
	}
}

func TestParseQdrantAddr_InvalidPort(t *testing.T) {
	_, _, err := ParseQdrantAddr("localhost:not-a-port")
	assert.Error(t, err)
}
