package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/salonlink/backend/pkg/models"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestSecurityHeadersDefaults(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := SecurityHeaders(SecurityHeadersConfig{})(okHandler)(c)
	assert.NoError(t, err)

	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
	assert.NotEmpty(t, rec.Header().Get("Permissions-Policy"))
}

func TestCORSConfigUsesConfiguredOrigins(t *testing.T) {
	cfg := CORSConfig([]string{"https://admin.salonlink.in"})
	assert.Equal(t, []string{"https://admin.salonlink.in"}, cfg.AllowOrigins)
	assert.True(t, cfg.AllowCredentials)
}

func TestCORSConfigFallback(t *testing.T) {
	cfg := CORSConfig(nil)
	assert.NotEmpty(t, cfg.AllowOrigins)
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	e := echo.New()
	// 60 requests per minute is 1 rps, so a burst of 2 exhausts immediately
	rl := NewRateLimiter(60, 2)
	handler := rl.RateLimitMiddleware()(okHandler)

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler(c)
		assert.NoError(t, err)
		statuses = append(statuses, rec.Code)
	}

	assert.Equal(t, http.StatusOK, statuses[0])
	assert.Equal(t, http.StatusOK, statuses[1])
	assert.Equal(t, http.StatusTooManyRequests, statuses[2])
}

func TestRateLimiterIsolatesIPs(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(60, 1)
	handler := rl.RateLimitMiddleware()(okHandler)

	for _, addr := range []string{"10.0.0.1:1234", "10.0.0.2:1234"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	run := func(role string, mw echo.MiddlewareFunc) int {
		req := httptest.NewRequest(http.MethodDelete, "/leads", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != "" {
			c.Set("user_role", role)
		}
		_ = mw(okHandler)(c)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run(models.RoleAdmin, RequireAdmin()))
	assert.Equal(t, http.StatusOK, run(models.RoleSuperAdmin, RequireAdmin()))
	assert.Equal(t, http.StatusForbidden, run(models.RoleLeadCaller, RequireAdmin()))
	assert.Equal(t, http.StatusForbidden, run(models.RoleAdmin, RequireSuperAdmin()))
	assert.Equal(t, http.StatusOK, run(models.RoleSuperAdmin, RequireSuperAdmin()))
	assert.Equal(t, http.StatusUnauthorized, run("", RequireAdmin()))
}
