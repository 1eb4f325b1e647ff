package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/agency-identity/internal/domain/apperror"
	"github.com/oksasatya/agency-identity/internal/interface/middleware"
	"github.com/oksasatya/agency-identity/pkg/helpers"
	"github.com/oksasatya/agency-identity/pkg/response"
	"github.com/oksasatya/agency-identity/pkg/validation"
)

// writeError maps a service error onto the response envelope. Causes of 500s
// are logged and never returned.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	status := apperror.HTTPStatus(err)
	if status >= 500 {
		helpers.RequestLogger(logger, c.GetString(middleware.CtxRequestIDKey), middleware.ClientIP(c)).
			WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	if retry := apperror.RetryAfterOf(err); retry > 0 {
		c.Header("Retry-After", middleware.RetryAfterSeconds(retry))
	}
	var details any
	if d := apperror.DetailsOf(err); len(d) > 0 {
		details = d
	}
	response.Fail(c, status, apperror.PublicMessage(err), details)
}

func badPayload(c *gin.Context, err error) {
	response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
