package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/agency-identity/pkg/helpers"
	"github.com/oksasatya/agency-identity/pkg/ratelimit"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_HeadersAndDenial(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/x", RateLimit(ratelimit.NewMemoryLimiter(), 2, time.Minute, KeyByIP(), nil), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for i := 0; i < 2; i++ {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}
	rec := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// other clients have their own counter
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, ...ratelimit.Rule) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("down")
}

func TestRateLimit_FailsOpenAndBypass(t *testing.T) {
	r := gin.New()
	r.GET("/open", RateLimit(brokenLimiter{}, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/nil", RateLimit(nil, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/private", RateLimit(ratelimit.NewMemoryLimiter(), 1, time.Minute, KeyByIP(), AllowPrivateIP()), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/open", nil)).Code)
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/nil", nil)).Code)

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.RemoteAddr = "10.1.2.3:4000"
		assert.Equal(t, http.StatusOK, serve(r, req).Code)
	}
}

func TestThrottle(t *testing.T) {
	r := gin.New()
	r.GET("/x", Throttle(1, 2, KeyByIP()), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRealIP(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/ip", func(c *gin.Context) { c.String(http.StatusOK, ClientIP(c)) })

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("CF-Connecting-IP", "203.0.113.9")
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	assert.Equal(t, "203.0.113.9", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	assert.Equal(t, "198.51.100.1", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Forwarded-For", "garbage")
	req.RemoteAddr = "192.0.2.5:1234"
	assert.Equal(t, "192.0.2.5", serve(r, req).Body.String())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestIDKey)) })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Body.String(), 36)
	assert.Equal(t, rec.Body.String(), rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "6f1c3d2e-1111-4a4a-9b9b-0123456789ab")
	assert.Equal(t, "6f1c3d2e-1111-4a4a-9b9b-0123456789ab", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	assert.NotEqual(t, "<script>", serve(r, req).Body.String())
}

type jwtParser struct{ jwt *helpers.JWTManager }

func (p jwtParser) ParseAccess(token string) (*helpers.AccessClaims, error) {
	return p.jwt.ParseAccessToken(token)
}

type staticAdmins map[int64]bool

func (s staticAdmins) IsAdmin(_ context.Context, id int64) (bool, error) { return s[id], nil }

func TestAuthAndRequireAdmin(t *testing.T) {
	jwt := helpers.NewJWTManager("a", "v", time.Hour, time.Hour)
	logger, _ := test.NewNullLogger()

	r := gin.New()
	r.GET("/me", Auth(jwtParser{jwt}), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxPublicIDKey))
	})
	r.GET("/admin", Auth(jwtParser{jwt}), RequireAdmin(staticAdmins{1: true}, logger), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodGet, "/me", nil)).Code)

	admin, _, err := jwt.GenerateAccessToken(1, "USR-ADMIN001")
	require.NoError(t, err)
	user, _, err := jwt.GenerateAccessToken(2, "USR-USER0002")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: helpers.AccessCookie, Value: admin})
	rec := serve(r, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "USR-ADMIN001", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+user)
	assert.Equal(t, "USR-USER0002", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+user)
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}
