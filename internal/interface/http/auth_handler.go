package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/agency-identity/internal/application"
	"github.com/oksasatya/agency-identity/internal/domain/apperror"
	"github.com/oksasatya/agency-identity/internal/interface/middleware"
	"github.com/oksasatya/agency-identity/pkg/helpers"
	"github.com/oksasatya/agency-identity/pkg/response"
)

type AuthHandler struct {
	Registration *application.RegistrationService
	Verification *application.VerificationService
	Login        *application.LoginService
	Sessions     *application.SessionManager
	Cookies      *helpers.Manager
	RefreshTTL   time.Duration
	Logger       *logrus.Logger
}

func NewAuthHandler(reg *application.RegistrationService, ver *application.VerificationService, login *application.LoginService,
	sessions *application.SessionManager, cookies *helpers.Manager, refreshTTL time.Duration, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		Registration: reg, Verification: ver, Login: login, Sessions: sessions,
		Cookies: cookies, RefreshTTL: refreshTTL, Logger: logger,
	}
}

type verifyRequest struct {
	Token string `json:"token"`
}

type authResponse struct {
	Authenticated bool     `json:"authenticated"`
	PublicID      string   `json:"public_id"`
	Role          []string `json:"role,omitempty"`
	Next          string   `json:"next,omitempty"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var in application.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	in.IP = middleware.ClientIP(c)
	in.UserAgent = c.Request.UserAgent()

	res, err := h.Registration.Register(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusCreated, res, "registration successful")
}

// VerifyUser handles POST /auth/verify-user. The token may come in the body
// or as ?token= so a plain link also works.
func (h *AuthHandler) VerifyUser(c *gin.Context) {
	var req verifyRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badPayload(c, err)
			return
		}
	}
	if req.Token == "" {
		req.Token = c.Query("token")
	}

	res, err := h.Verification.Verify(c.Request.Context(), req.Token)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetAccess(c, res.Access.Token, res.Access.ExpiresAt)
	response.OK(c, http.StatusOK, authResponse{Authenticated: true, PublicID: res.PublicID, Next: res.Next}, "account verified")
}

// LoginUser handles POST /auth/login-user.
func (h *AuthHandler) LoginUser(c *gin.Context) {
	var in application.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c, err)
		return
	}
	in.IP = middleware.ClientIP(c)
	in.UserAgent = c.Request.UserAgent()

	res, err := h.Login.Login(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, res.Access.Token, res.Access.ExpiresAt, res.RefreshSecret, h.RefreshTTL)
	response.OK(c, http.StatusOK, authResponse{Authenticated: true, PublicID: res.PublicID, Role: res.Roles}, "login successful")
}

// Refresh handles POST /auth/refresh using the refresh_token cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	secret, _ := c.Cookie(helpers.RefreshCookie)

	res, err := h.Sessions.Refresh(c.Request.Context(), secret, middleware.ClientIP(c), c.Request.UserAgent())
	if err != nil {
		if apperror.KindOf(err) == apperror.KindAuth {
			h.Cookies.Clear(c)
		}
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetAccess(c, res.Access.Token, res.Access.ExpiresAt)
	if res.NewSecret != "" {
		h.Cookies.SetRefresh(c, res.NewSecret, h.RefreshTTL)
	}
	response.OK(c, http.StatusOK, authResponse{Authenticated: true, PublicID: res.User.PublicID, Role: res.User.Roles()}, "token refreshed")
}

// Logout revokes the presented session, if any, and clears both cookies.
// It always succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	if secret, _ := c.Cookie(helpers.RefreshCookie); secret != "" {
		if _, err := h.Sessions.Revoke(c.Request.Context(), secret); err != nil {
			h.Logger.WithError(err).Warn("logout revoke failed")
		}
	}
	h.Cookies.Clear(c)
	response.OK(c, http.StatusOK, gin.H{"logged_out": true}, "logged out")
}
