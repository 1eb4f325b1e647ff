package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/agency-identity/internal/interface/http"
	"github.com/oksasatya/agency-identity/internal/interface/middleware"
	"github.com/oksasatya/agency-identity/pkg/ratelimit"
)

// ProfileModule wires the signed-in user's own profile.
// Protected: GET /api/profile, PUT /api/profile, POST /api/profile/avatar
type ProfileModule struct {
	Handler *handlers.UserHandler
	Access  middleware.AccessParser
	Limiter ratelimit.Limiter
}

func NewProfileModule(h *handlers.UserHandler, access middleware.AccessParser, l ratelimit.Limiter) *ProfileModule {
	return &ProfileModule{Handler: h, Access: access, Limiter: l}
}

func (m *ProfileModule) Name() string { return "profile" }

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/profile")
	auth.Use(middleware.Auth(m.Access))
	auth.Use(middleware.RateLimit(m.Limiter, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("", m.Handler.GetProfile)
		auth.PUT("", m.Handler.UpdateProfile)
		auth.POST("/avatar",
			middleware.RateLimit(m.Limiter, 10, time.Hour, middleware.KeyByUserID(), nil),
			m.Handler.UploadAvatar)
	}
}
