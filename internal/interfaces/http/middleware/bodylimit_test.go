package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func bodyEcho(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusRequestEntityTooLarge)
		return
	}
	c.String(http.StatusOK, "%d", len(body))
}

func TestBodyLimit(t *testing.T) {
	router := gin.New()
	router.Use(BodyLimit(100, "/image"))
	router.POST("/api/v1/catalog/products", bodyEcho)
	router.POST("/api/v1/catalog/products/:id/image", RouteBodyLimit(500), bodyEcho)
	router.GET("/api/v1/catalog/products", func(c *gin.Context) { c.Status(http.StatusOK) })

	post := func(path string, size int, setLength bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(strings.Repeat("x", size)))
		if !setLength {
			req.ContentLength = -1
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("within limit", func(t *testing.T) {
		rec := post("/api/v1/catalog/products", 50, true)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "50", rec.Body.String())
	})

	t.Run("content length over limit", func(t *testing.T) {
		rec := post("/api/v1/catalog/products", 200, true)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, dto.ErrCodeRequestTooLarge, decodeError(t, rec).Code)
	})

	t.Run("streamed body over limit", func(t *testing.T) {
		rec := post("/api/v1/catalog/products", 200, false)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("exempt route uses its own limit", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, post("/api/v1/catalog/products/abc/image", 400, true).Code)
		assert.Equal(t, http.StatusRequestEntityTooLarge, post("/api/v1/catalog/products/abc/image", 600, true).Code)
	})

	t.Run("get without body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
