package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/agency-identity/internal/interface/http"
	"github.com/oksasatya/agency-identity/internal/interface/middleware"
	"github.com/oksasatya/agency-identity/pkg/ratelimit"
)

// AuthModule serves the public credential endpoints under /auth. Login has
// its own per-IP and per-identifier ceilings inside the service; the
// limiters here only guard the cheaper endpoints against floods.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Limiter ratelimit.Limiter
}

func NewAuthModule(h *handlers.AuthHandler, l ratelimit.Limiter) *AuthModule {
	return &AuthModule{Handler: h, Limiter: l}
}

func (m *AuthModule) Name() string { return "auth" }

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.Limiter, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	verifyLimiter := middleware.RateLimit(m.Limiter, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(m.Limiter, 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	auth := rg.Group("/auth")
	auth.POST("/register", registerLimiter, m.Handler.Register)
	auth.POST("/verify-user", verifyLimiter, m.Handler.VerifyUser)
	auth.POST("/login-user", m.Handler.LoginUser)
	auth.POST("/refresh", refreshLimiter, m.Handler.Refresh)
	auth.POST("/logout", m.Handler.Logout)
}
