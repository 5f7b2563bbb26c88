package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSwaggerProtection(t *testing.T) {
	denyAll := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }

	tests := []struct {
		name       string
		cfg        config.SwaggerConfig
		remoteAddr string
		want       int
	}{
		{"disabled", config.SwaggerConfig{}, "10.0.0.5:1234", http.StatusNotFound},
		{"open", config.SwaggerConfig{Enabled: true}, "10.0.0.5:1234", http.StatusOK},
		{"ip allowed by cidr", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/24"}}, "10.0.0.5:1234", http.StatusOK},
		{"ip allowed exactly", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.168.0.9"}}, "192.168.0.9:80", http.StatusOK},
		{"ip rejected", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/24", "bogus"}}, "172.16.0.1:1234", http.StatusForbidden},
		{"auth required", config.SwaggerConfig{Enabled: true, RequireAuth: true}, "10.0.0.5:1234", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/swagger/*any", SwaggerProtection(tt.cfg, denyAll), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
			req.RemoteAddr = tt.remoteAddr
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
