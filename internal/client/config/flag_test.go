package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://10.0.0.1:8000/api", "-d", "/tmp/s.db", "-t", "10", "-l", "debug"},
			expected: &Config{
				APIBaseURL: "http://10.0.0.1:8000/api", DatabasePath: "/tmp/s.db",
				RequestTimeout: 10 * time.Second, LogLevel: "debug",
			},
		},
		{
			name:     "unrelated args are ignored",
			args:     []string{"list", "tissues", "--search", "oak", "-a", "http://h/api"},
			expected: &Config{APIBaseURL: "http://h/api"},
		},
		{
			name:    "incorrect timeout",
			args:    []string{"-t", "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			err := parseFlags(config, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseFlags_TimeoutUntouchedWhenAbsent(t *testing.T) {
	cfg := &Config{RequestTimeout: 1500 * time.Millisecond}
	require.NoError(t, parseFlags(cfg, []string{"-a", "http://h/api"}))
	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
}
