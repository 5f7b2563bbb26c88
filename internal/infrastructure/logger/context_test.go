package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func contextWithSpan(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestFromContext(t *testing.T) {
	l := zap.NewExample()
	assert.Same(t, l, FromContext(WithContext(context.Background(), l)))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestContextIDs(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithUserID(ctx, "user-1")
	ctx = WithSessionID(ctx, "sess-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "user-1", GetUserID(ctx))
	assert.Equal(t, "sess-1", GetSessionID(ctx))

	empty := context.Background()
	assert.Empty(t, GetRequestID(empty))
	assert.Empty(t, GetUserID(empty))
	assert.Empty(t, GetSessionID(empty))
}

func TestFields(t *testing.T) {
	assert.Empty(t, Fields(context.Background()))

	ctx := WithUserID(contextWithSpan(t), "user-2")
	keys := make([]string, 0, 3)
	for _, f := range Fields(ctx) {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"trace_id", "span_id", "user_id"}, keys)
}

func TestL(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)

	ctx := WithContext(contextWithSpan(t), zap.New(core))
	ctx = WithRequestID(ctx, "req-9")
	ctx = WithSessionID(ctx, "sess-9")

	L(ctx).Info("checkout", zap.String("ticket", "TK-20260314-0001"))

	require.Equal(t, 1, recorded.Len())
	entry := recorded.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "sess-9", fields["session_id"])
	assert.Equal(t, "TK-20260314-0001", fields["ticket"])
	assert.NotContains(t, fields, "user_id")
	assert.Len(t, entry.Context, 5, "each id appears once")
}

func TestL_WithoutLogger(t *testing.T) {
	assert.NotPanics(t, func() { L(context.Background()).Info("nothing") })
}
