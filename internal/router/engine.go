package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/agency-identity/config"
	"github.com/oksasatya/agency-identity/internal/interface/middleware"
	"github.com/oksasatya/agency-identity/pkg/obs"
)

// apiBurst and apiRate bound each client IP across the whole API.
const (
	apiRate  = 20
	apiBurst = 40
)

// NewEngine builds the Gin engine with the global middleware chain.
func NewEngine(cfg *config.Config, metrics *obs.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(metrics.Middleware())

	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Retry-After", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}
	r.Use(middleware.Throttle(apiRate, apiBurst, middleware.KeyByIP()))
	return r
}
