package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	userIDKey
	sessionIDKey
)

// WithContext stores the base logger in ctx
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the stored base logger, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID records the request id for L and the SQL logger
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithUserID records the authenticated operator
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// WithSessionID records the shopper session a kiosk request acts on
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

func GetRequestID(ctx context.Context) string { return stringValue(ctx, requestIDKey) }
func GetUserID(ctx context.Context) string    { return stringValue(ctx, userIDKey) }
func GetSessionID(ctx context.Context) string { return stringValue(ctx, sessionIDKey) }

func stringValue(ctx context.Context, key ctxKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// Fields returns trace_id and span_id when ctx carries a valid span, then
// whichever of request_id, user_id and session_id are set
func Fields(ctx context.Context) []zap.Field {
	fields := traceFields(ctx)
	for _, f := range []struct {
		name string
		key  ctxKey
	}{
		{"request_id", requestIDKey},
		{"user_id", userIDKey},
		{"session_id", sessionIDKey},
	} {
		if v := stringValue(ctx, f.key); v != "" {
			fields = append(fields, zap.String(f.name, v))
		}
	}
	return fields
}

func traceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}

// L returns the logger stored in ctx with Fields(ctx) attached:
//
//	logger.L(ctx).Info("Ticket issued", zap.String("number", n))
func L(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)
	if fields := Fields(ctx); len(fields) > 0 {
		return l.With(fields...)
	}
	return l
}
