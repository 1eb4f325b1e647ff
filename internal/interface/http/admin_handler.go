package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/agency-identity/internal/application"
	"github.com/oksasatya/agency-identity/pkg/response"
)

type AdminHandler struct {
	Svc    *application.AdminService
	Logger *logrus.Logger
}

func NewAdminHandler(svc *application.AdminService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Svc: svc, Logger: logger}
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	out, err := h.Svc.ListUsers(c.Request.Context(), c.Query("search"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, out, "users")
}

func (h *AdminHandler) SetStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	u, err := h.Svc.SetStatus(c.Request.Context(), c.Param("public_id"), req.Status)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Logger.WithFields(logrus.Fields{"public_id": u.PublicID, "status": u.Status}).Info("account status changed")
	response.OK(c, http.StatusOK, application.NewUserView(u), "status updated")
}

func (h *AdminHandler) SetRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	u, err := h.Svc.SetRole(c.Request.Context(), c.Param("public_id"), req.Role)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, application.NewUserView(u), "role updated")
}

func (h *AdminHandler) ForceVerify(c *gin.Context) {
	u, err := h.Svc.ForceVerify(c.Request.Context(), c.Param("public_id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, application.NewUserView(u), "account activated")
}
