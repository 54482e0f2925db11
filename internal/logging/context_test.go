package logging

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func fieldKeys(ctx context.Context) []string {
	var keys []string
	for _, f := range ContextFields(ctx) {
		keys = append(keys, f.Key)
	}
	return keys
}

func TestContextFields_Empty(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))
}

func TestContextFields_RequestAndCommand(t *testing.T) {
	ctx := WithRequestID(context.Background(), "0b7c6f0e-1b1d-4c55-9d0b-0c1c2e6f1a11")
	ctx = WithCommand(ctx, "import")

	assert.Equal(t, []string{"request.id", "command"}, fieldKeys(ctx))
	assert.Equal(t, "import", CommandFromContext(ctx))
}

func TestContextFields_Trace(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	keys := fieldKeys(ctx)
	assert.Equal(t, []string{"trace_id", "span_id", "trace_sampled"}, keys)
}

func TestWithRequestID_Invalid(t *testing.T) {
	tests := []string{"", "has space", "semi;colon", strings.Repeat("a", maxIDLen+1)}
	for _, id := range tests {
		assert.Panics(t, func() { WithRequestID(context.Background(), id) }, "id %q", id)
	}
}

func TestWithCommand_Invalid(t *testing.T) {
	assert.Panics(t, func() { WithCommand(context.Background(), "") })
}

func TestFromContext(t *testing.T) {
	nop := FromContext(context.Background())
	require.NotNil(t, nop)
	assert.False(t, nop.Enabled(TraceLevel))

	tl := NewTestLogger()
	ctx := WithLogger(context.Background(), tl.Logger)
	FromContext(ctx).Info(ctx, "from context")
	tl.AssertLogged(t, 0, "from context")
}
