package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestRedactedString(t *testing.T) {
	f := RedactedString("contents", "hello")
	assert.Equal(t, "contents", f.Key)
	assert.Equal(t, "[REDACTED:5]", f.String)
}

func TestNewRedactingEncoder_Errors(t *testing.T) {
	base := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	_, err := NewRedactingEncoder(base, RedactionConfig{Enabled: true, Patterns: []string{"("}})
	assert.Error(t, err)

	long := make([]byte, maxPatternLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = NewRedactingEncoder(base, RedactionConfig{Enabled: true, Patterns: []string{string(long)}})
	assert.Error(t, err)
}

func TestRedactingEncoder_EncodeEntry(t *testing.T) {
	base := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	enc, err := NewRedactingEncoder(base, RedactionConfig{
		Enabled:  true,
		Fields:   []string{"Contents"},
		Patterns: []string{`(?i)bearer\s+\S+`},
	})
	require.NoError(t, err)

	buf, err := enc.EncodeEntry(zapcore.Entry{Message: "m", Time: time.Unix(0, 0)}, []zapcore.Field{
		zap.String("contents", "secret note"),
		zap.String("auth", "Bearer xyz"),
		zap.String("tag", "go"),
		zap.Int("n", 3),
	})
	require.NoError(t, err)
	out := buf.String()

	assert.NotContains(t, out, "secret note")
	assert.NotContains(t, out, "xyz")
	assert.Contains(t, out, `"contents":"[REDACTED]"`)
	assert.Contains(t, out, `"auth":"[REDACTED:pattern]"`)
	assert.Contains(t, out, `"tag":"go"`)
	assert.Contains(t, out, `"n":3`)
}

func TestRedactingEncoder_Disabled(t *testing.T) {
	base := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	enc, err := NewRedactingEncoder(base, RedactionConfig{Enabled: false, Fields: []string{"contents"}})
	require.NoError(t, err)

	buf, err := enc.EncodeEntry(zapcore.Entry{Message: "m"}, []zapcore.Field{zap.String("contents", "visible")})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "visible")
}

func TestRedactingEncoder_CloneKeepsRules(t *testing.T) {
	base := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	enc, err := NewRedactingEncoder(base, RedactionConfig{Enabled: true, Fields: []string{"token"}})
	require.NoError(t, err)

	clone := enc.Clone()
	clone.AddString("token", "abc")
	buf, err := clone.EncodeEntry(zapcore.Entry{Message: "m"}, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"token":"[REDACTED]"`)
}
