package logging

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "json", cfg.Format)
	assert.True(t, cfg.Output.Console)
	assert.Equal(t, StreamStderr, cfg.Output.Stream)
	assert.False(t, cfg.Output.OTEL)
	assert.Equal(t, "knowledged", cfg.Fields["service"])
	assert.Contains(t, cfg.Redaction.Fields, "contents")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad format",
			mutate:  func(c *Config) { c.Format = "xml" },
			wantErr: "format must be",
		},
		{
			name:    "no outputs",
			mutate:  func(c *Config) { c.Output.Console = false; c.Output.OTEL = false },
			wantErr: "at least one output",
		},
		{
			name:    "bad stream",
			mutate:  func(c *Config) { c.Output.Stream = "syslog" },
			wantErr: "output stream",
		},
		{
			name:    "zero sampling tick",
			mutate:  func(c *Config) { c.Sampling.Tick = 0 },
			wantErr: "sampling tick",
		},
		{
			name:    "negative caller skip",
			mutate:  func(c *Config) { c.Caller.Skip = -1 },
			wantErr: "caller skip",
		},
		{
			name:    "invalid pattern",
			mutate:  func(c *Config) { c.Redaction.Patterns = []string{"("} },
			wantErr: "invalid redaction pattern",
		},
		{
			name:    "pattern too long",
			mutate:  func(c *Config) { c.Redaction.Patterns = []string{strings.Repeat("a", maxPatternLen+1)} },
			wantErr: "too long",
		},
		{
			name:    "empty field value",
			mutate:  func(c *Config) { c.Fields["env"] = "" },
			wantErr: "empty value",
		},
		{
			name:   "otel only",
			mutate: func(c *Config) { c.Output.Console = false; c.Output.OTEL = true },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
