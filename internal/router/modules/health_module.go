package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/agency-identity/internal/interface/http"
	"github.com/oksasatya/agency-identity/internal/interface/middleware"
	"github.com/oksasatya/agency-identity/pkg/obs"
	"github.com/oksasatya/agency-identity/pkg/ratelimit"
)

// HealthModule exposes GET /health and, when metrics are enabled, GET /metrics.
type HealthModule struct {
	Handler *handlers.HealthHandler
	Metrics *obs.Metrics
	Limiter ratelimit.Limiter
}

func NewHealthModule(h *handlers.HealthHandler, m *obs.Metrics, l ratelimit.Limiter) *HealthModule {
	return &HealthModule{Handler: h, Metrics: m, Limiter: l}
}

func (m *HealthModule) Name() string { return "health" }

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Limiter, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/health", rl, m.Handler.Health)
	if m.Metrics != nil {
		rg.GET("/metrics", rl, gin.WrapH(m.Metrics.Handler()))
	}
}
