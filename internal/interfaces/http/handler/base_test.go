package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/interfaces/http/dto"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(method, path string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	return c, w
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name:       "from context",
			setup:      func(c *gin.Context) { c.Set(middleware.RequestIDKey, "ctx-request-id") },
			expectedID: "ctx-request-id",
		},
		{
			name:       "from header when context empty",
			setup:      func(c *gin.Context) { c.Request.Header.Set(middleware.RequestIDHeader, "header-request-id") },
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "context takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set(middleware.RequestIDKey, "ctx-id")
				c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
			},
			expectedID: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodGet, "/")
			tt.setup(c)
			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandlerSuccessResponses(t *testing.T) {
	h := &BaseHandler{}

	t.Run("success", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/")
		h.Success(c, gin.H{"name": "Lácteos"})

		assert.Equal(t, http.StatusOK, w.Code)
		var data map[string]string
		resp := decodeResponse(t, w, &data)
		assert.True(t, resp.Success)
		assert.Equal(t, "Lácteos", data["name"])
	})

	t.Run("with meta", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/")
		h.SuccessWithMeta(c, []string{"a", "b"}, 45, 2, 20)

		resp := decodeResponse(t, w, nil)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(45), resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})

	t.Run("created", func(t *testing.T) {
		c, w := newTestContext(http.MethodPost, "/")
		h.Created(c, gin.H{"id": "1"})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("no content", func(t *testing.T) {
		router := gin.New()
		router.DELETE("/", func(c *gin.Context) { h.NoContent(c) })
		w := performRequest(router, http.MethodDelete, "/", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestBaseHandlerFile(t *testing.T) {
	h := &BaseHandler{}

	c, w := newTestContext(http.MethodGet, "/")
	h.File(c, "application/pdf", "T-20260315-0001", []byte("%PDF-1.7"), true)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="T-20260315-0001"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "%PDF-1.7", w.Body.String())

	c, w = newTestContext(http.MethodGet, "/")
	h.File(c, "image/png", "qr.png", []byte{0x89}, false)
	assert.Equal(t, `inline; filename="qr.png"`, w.Header().Get("Content-Disposition"))
}

func TestBaseHandlerErrorMethods(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name       string
		call       func(*gin.Context)
		wantStatus int
		wantCode   string
	}{
		{"bad request", func(c *gin.Context) { h.BadRequest(c, "bad") }, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"unauthorized", func(c *gin.Context) { h.Unauthorized(c, "no") }, http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"internal", func(c *gin.Context) { h.InternalError(c, "boom") }, http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/")
			c.Set(middleware.RequestIDKey, "req-1")
			tt.call(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w, nil)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandlerParseUUIDParam(t *testing.T) {
	h := &BaseHandler{}
	router := gin.New()
	router.GET("/products/:id", func(c *gin.Context) {
		id, ok := h.ParseUUIDParam(c, "id")
		if !ok {
			return
		}
		c.String(http.StatusOK, id.String())
	})

	w := performRequest(router, http.MethodGet, "/products/6f1c7a52-3c1e-4d4b-9d7e-0a8b5c2f1e11", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "6f1c7a52-3c1e-4d4b-9d7e-0a8b5c2f1e11", w.Body.String())

	w = performRequest(router, http.MethodGet, "/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w, nil)
	assert.Equal(t, "Invalid id format", resp.Error.Message)
}

func TestBaseHandlerBindError(t *testing.T) {
	h := &BaseHandler{}
	router := gin.New()
	router.POST("/", func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	t.Run("validation errors carry field details", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/", map[string]string{"username": "ab"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeResponse(t, w, nil)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		fields := make([]string, 0, len(resp.Error.Details))
		for _, d := range resp.Error.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"username", "password"}, fields)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/", `{"username":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w, nil).Error.Code)
	})
}

func TestBaseHandlerHandleError(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", shared.ErrNotFound), http.StatusNotFound, dto.ErrCodeNotFound},
		{"session not found", shopping.ErrSessionNotFound, http.StatusNotFound, dto.ErrCodeSessionNotFound},
		{"budget prompt", shopping.ErrBudgetPromptRequired, http.StatusConflict, dto.ErrCodeBudgetPromptRequired},
		{"insufficient stock", shared.ErrInsufficientStock, http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock},
		{"unregistered invalid code", shared.NewDomainError("INVALID_DATE", "bad date"), http.StatusBadRequest, "INVALID_DATE"},
		{"unregistered rule code", shared.NewDomainError("PRODUCT_INACTIVE", "inactive"), http.StatusUnprocessableEntity, "PRODUCT_INACTIVE"},
		{"plain error", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/")
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w, nil)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}

	t.Run("internal errors do not leak", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/")
		h.HandleError(c, errors.New("pq: password authentication failed"))
		assert.NotContains(t, w.Body.String(), "password authentication")
	})

	t.Run("nil is a no-op", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/")
		h.HandleError(c, nil)
		assert.Empty(t, w.Body.String())
	})
}
