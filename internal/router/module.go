package router

import "github.com/gin-gonic/gin"

// Module is a feature slice of the API. Register mounts its routes under
// /api; Name is only used for startup logging.
type Module interface {
	Name() string
	Register(rg *gin.RouterGroup)
}
