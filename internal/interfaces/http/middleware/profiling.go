package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Profile label names. All are low cardinality.
const (
	ProfilingLabelRoute    = "route"
	ProfilingLabelMethod   = "method"
	ProfilingLabelResource = "resource"
	ProfilingLabelAudience = "audience" // shop or admin
)

// Profiling tags the handler goroutine with pyroscope labels so CPU and
// allocation profiles can be split by route. Health and swagger requests
// are not tagged.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return passThrough
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || route == "/health" || strings.HasPrefix(route, "/swagger") {
			c.Next()
			return
		}

		labels := []string{
			ProfilingLabelRoute, route,
			ProfilingLabelMethod, c.Request.Method,
		}
		if res := resourceFromRoute(route); res != "" {
			labels = append(labels, ProfilingLabelResource, res)
		}
		if strings.HasPrefix(route, "/api/v1/shop") {
			labels = append(labels, ProfilingLabelAudience, "shop")
		} else {
			labels = append(labels, ProfilingLabelAudience, "admin")
		}

		pyroscope.TagWrapper(c.Request.Context(), pyroscope.Labels(labels...), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// resourceFromRoute returns the first static segment after the version:
// "/api/v1/catalog/products/:id" -> "catalog".
func resourceFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || isVersionSegment(part) {
			continue
		}
		if strings.HasPrefix(part, ":") || strings.HasPrefix(part, "*") {
			return ""
		}
		return part
	}
	return ""
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
