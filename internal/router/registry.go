package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Registry collects modules and mounts them on the /api group in the order
// they were added.
type Registry struct {
	Engine  *gin.Engine
	API     *gin.RouterGroup
	logger  *logrus.Logger
	modules []Module
}

func NewRegistry(engine *gin.Engine, logger *logrus.Logger) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api"), logger: logger}
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

func (r *Registry) RegisterAll() {
	for _, m := range r.modules {
		m.Register(r.API)
		if r.logger != nil {
			r.logger.WithField("module", m.Name()).Debug("module registered")
		}
	}
	if r.logger != nil {
		r.logger.WithField("routes", len(r.Engine.Routes())).Info("routes registered")
	}
}
