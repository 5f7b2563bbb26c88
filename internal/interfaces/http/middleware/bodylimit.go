package middleware

import (
	"net/http"
	"strings"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimit rejects bodies larger than maxBytes. Requests whose path ends
// with one of exemptSuffixes are left alone so the route can apply its
// own limit (image uploads).
func BodyLimit(maxBytes int64, exemptSuffixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, suffix := range exemptSuffixes {
			if strings.HasSuffix(c.Request.URL.Path, suffix) {
				c.Next()
				return
			}
		}
		limitBody(c, maxBytes)
	}
}

// RouteBodyLimit applies a per-route body limit
func RouteBodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limitBody(c, maxBytes)
	}
}

func limitBody(c *gin.Context, maxBytes int64) {
	if c.Request.ContentLength > maxBytes {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size", c.GetString(RequestIDKey)))
		return
	}
	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	}
	c.Next()
}
