package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(prev)
	})
	return sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{ServiceName: "pimpos-test"}))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sr.Ended())
}

func TestSpanEnricher_ShopSession(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(RequestID(), TracingWithConfig(TracingConfig{ServiceName: "pimpos-test", Enabled: true}), SpanEnricher())
	var loggedSession string
	router.GET("/api/v1/shop/sessions/:id", func(c *gin.Context) {
		loggedSession = logger.GetSessionID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shop/sessions/5b0c7e9e-3f55-4a1e-9d43-1b8f4b1d2a10", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "5b0c7e9e-3f55-4a1e-9d43-1b8f4b1d2a10", loggedSession)
	require.Len(t, sr.Ended(), 1)
	span := sr.Ended()[0]

	v, ok := spanAttr(span, "shopping.session_id")
	require.True(t, ok)
	assert.Equal(t, "5b0c7e9e-3f55-4a1e-9d43-1b8f4b1d2a10", v.AsString())

	v, ok = spanAttr(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-1", v.AsString())

	_, ok = spanAttr(span, "user.role")
	assert.False(t, ok)
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestSpanEnricher_OperatorAndServerError(t *testing.T) {
	sr := setupTestTracer(t)
	jwtService := newTestJWTService(15 * time.Minute)
	pair, input := newTestTokenPair(t, jwtService, "cashier")

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{ServiceName: "pimpos-test", Enabled: true}), SpanEnricher())
	router.GET("/api/v1/tickets", JWTAuthMiddleware(jwtService), func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, sr.Ended(), 1)
	span := sr.Ended()[0]

	v, ok := spanAttr(span, "user.id")
	require.True(t, ok)
	assert.Equal(t, input.UserID.String(), v.AsString())

	v, ok = spanAttr(span, "user.role")
	require.True(t, ok)
	assert.Equal(t, "cashier", v.AsString())

	_, ok = spanAttr(span, "shopping.session_id")
	assert.False(t, ok)
	assert.Equal(t, codes.Error, span.Status().Code)
}
