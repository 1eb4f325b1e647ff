package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/agency-identity/internal/domain/apperror"
	"github.com/oksasatya/agency-identity/pkg/helpers"
	"github.com/oksasatya/agency-identity/pkg/response"
)

const (
	CtxUserIDKey   = "userID"
	CtxPublicIDKey = "publicID"
)

// AccessParser is satisfied by *application.SessionManager.
type AccessParser interface {
	ParseAccess(token string) (*helpers.AccessClaims, error)
}

// Auth validates the access credential from the auth_token cookie, or an
// Authorization Bearer header for non-browser clients, and stores the
// caller's ids in the Gin context.
func Auth(parser AccessParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parser.ParseAccess(accessToken(c))
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, apperror.PublicMessage(err), nil)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxPublicIDKey, claims.PublicID)
		c.Next()
	}
}

func accessToken(c *gin.Context) string {
	if tok, err := c.Cookie(helpers.AccessCookie); err == nil && tok != "" {
		return tok
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// AdminChecker is satisfied by *application.AdminService.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// RequireAdmin must run after Auth. The role is read from the store on every
// request rather than trusted from the credential.
func RequireAdmin(checker AdminChecker, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := checker.IsAdmin(c.Request.Context(), c.GetInt64(CtxUserIDKey))
		if err != nil {
			logger.WithError(err).Error("admin check failed")
			response.Fail(c, http.StatusInternalServerError, apperror.PublicMessage(err), nil)
			return
		}
		if !ok {
			response.Fail(c, http.StatusForbidden, "admin role required", nil)
			return
		}
		c.Next()
	}
}
