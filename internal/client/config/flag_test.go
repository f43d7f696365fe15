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

	base := Config{
		ServerURL:           "http://base",
		RequestTimeout:      1500 * time.Millisecond,
		OnlineCheckInterval: 2 * time.Second,
		CacheFile:           "base.db",
	}

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-a", "http://127.0.0.1:9090", "-t", "30", "-i", "10", "-d", "/tmp/c.db"},
			expected: &Config{
				ServerURL:           "http://127.0.0.1:9090",
				RequestTimeout:      30 * time.Second,
				OnlineCheckInterval: 10 * time.Second,
				CacheFile:           "/tmp/c.db",
			},
		},
		{
			name:     "absent flags keep earlier values",
			args:     []string{"cmd", "-a", "http://x"},
			expected: &Config{ServerURL: "http://x", RequestTimeout: 1500 * time.Millisecond, OnlineCheckInterval: 2 * time.Second, CacheFile: "base.db"},
		},
		{name: "incorrect timeout", args: []string{"cmd", "-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := base

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(&config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(&config) })
			assert.Empty(t, cmp.Diff(tt.expected, &config))
		})
	}
}
