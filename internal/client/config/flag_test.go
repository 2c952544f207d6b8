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
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-a", "127.0.0.1:9090", "-i", "10", "-n", "30", "-o", "3", "-f", "x.db"},
			expected: &Config{
				ServerEndpointAddr: "127.0.0.1:9090",
				SyncInterval:       10 * time.Second,
				ReminderInterval:   30 * time.Second,
				RequestTimeout:     3 * time.Second,
				CachePath:          "x.db",
			},
		},
		{
			name: "unknown flags are ignored",
			args: []string{"cmd", "-z", "1", "-a=host:1"},
			expected: &Config{
				ServerEndpointAddr: "host:1",
			},
		},
		{name: "incorrect sync interval", args: []string{"cmd", "-i", "abc"}, expectPanic: true},
		{
			name:     "zero is passed through for LoadConfig to fix",
			args:     []string{"cmd", "-i", "0"},
			expected: &Config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseFlags_KeepsUnsetIntervals(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd", "-n", "5"}

	config := &Config{
		SyncInterval:     1500 * time.Millisecond,
		ReminderInterval: 500 * time.Millisecond,
		RequestTimeout:   2500 * time.Millisecond,
	}
	parseFlags(config)

	assert.Equal(t, 1500*time.Millisecond, config.SyncInterval)
	assert.Equal(t, 5*time.Second, config.ReminderInterval)
	assert.Equal(t, 2500*time.Millisecond, config.RequestTimeout)
}
