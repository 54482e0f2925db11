package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log/noop"
	"go.uber.org/zap/zapcore"
)

func TestNewDualCore_ConsoleOnly(t *testing.T) {
	cfg := NewDefaultConfig()

	core, err := newDualCore(cfg, nil, zapcore.AddSync(&bytes.Buffer{}))
	require.NoError(t, err)
	assert.True(t, core.Enabled(zapcore.InfoLevel))
	assert.False(t, core.Enabled(zapcore.DebugLevel))
}

func TestNewDualCore_BothOutputs(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Output.OTEL = true

	core, err := newDualCore(cfg, noop.NewLoggerProvider(), zapcore.AddSync(&bytes.Buffer{}))
	require.NoError(t, err)
	assert.NotNil(t, core)
}

func TestNewDualCore_OTELWithoutProvider(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Output.Console = false
	cfg.Output.OTEL = true

	_, err := newDualCore(cfg, nil, zapcore.AddSync(&bytes.Buffer{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one output")
}
