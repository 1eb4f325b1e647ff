package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/agency-identity/internal/interface/http"
	"github.com/oksasatya/agency-identity/internal/interface/middleware"
)

type AdminModule struct {
	Handler *handlers.AdminHandler
	Access  middleware.AccessParser
	Admins  middleware.AdminChecker
	Logger  *logrus.Logger
}

func NewAdminModule(h *handlers.AdminHandler, access middleware.AccessParser, admins middleware.AdminChecker, logger *logrus.Logger) *AdminModule {
	return &AdminModule{Handler: h, Access: access, Admins: admins, Logger: logger}
}

func (m *AdminModule) Name() string { return "admin" }

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin/users")
	admin.Use(middleware.Auth(m.Access), middleware.RequireAdmin(m.Admins, m.Logger))
	{
		admin.GET("", m.Handler.ListUsers)
		admin.PUT("/status/:public_id", m.Handler.SetStatus)
		admin.PUT("/role/:public_id", m.Handler.SetRole)
		admin.PUT("/verify/:public_id", m.Handler.ForceVerify)
	}
}
