package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-s", "http://auth:9000", "-g", "auth:9001", "-transport", "grpc", "-state", "s.db", "-timeout", "4", "-l", "development"},
			expected: &Config{
				ServerURL:      "http://auth:9000",
				GRPCAddr:       "auth:9001",
				Transport:      TransportGRPC,
				StateDSN:       "s.db",
				RequestTimeout: 4 * time.Second,
				LogEnv:         "development",
			},
		},
		{
			name:     "unrelated flags ignored",
			args:     []string{"cmd", "-c", "x.json", "-timeout=2"},
			expected: &Config{RequestTimeout: 2 * time.Second},
		},
		{name: "incorrect timeout", args: []string{"cmd", "-timeout", "abc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}
			err := parseFlags(config)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
