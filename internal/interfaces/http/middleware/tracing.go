// Package middleware provides the gin middleware chain for the store API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig wraps otelgin. Span names follow the matched route,
// e.g. "GET /api/v1/shop/sessions/:id".
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// SpanEnricher records the shopper session of /shop/sessions/:id routes in
// the request context for logging, then annotates the active span with the
// request id, the operator and the session once the handler has run. 5xx
// responses mark the span as failed.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		if session := shopperSessionID(c); session != "" {
			c.Request = c.Request.WithContext(logger.WithSessionID(c.Request.Context(), session))
		}
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		span.SetAttributes(spanAttributes(c)...)

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetAttributes(attribute.Int("http.status_code", status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
		}
	}
}

func spanAttributes(c *gin.Context) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 4)
	if id := c.GetString(RequestIDKey); id != "" {
		attrs = append(attrs, attribute.String("request_id", id))
	}
	if id := GetJWTUserID(c); id != "" {
		attrs = append(attrs, attribute.String("user.id", id))
	}
	if role := GetJWTRole(c); role != "" {
		attrs = append(attrs, attribute.String("user.role", role))
	}
	if session := shopperSessionID(c); session != "" {
		attrs = append(attrs, attribute.String("shopping.session_id", session))
	}
	return attrs
}

const shopSessionRoute = "/api/v1/shop/sessions/:id"

// shopperSessionID reads the session id from /shop/sessions/:id routes
func shopperSessionID(c *gin.Context) string {
	if !strings.HasPrefix(c.FullPath(), shopSessionRoute) {
		return ""
	}
	return c.Param("id")
}
