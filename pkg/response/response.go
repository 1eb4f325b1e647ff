// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// requestIDKey matches middleware.CtxRequestIDKey; importing middleware here
// would create a cycle.
const requestIDKey = "request_id"

type APIResponse[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data,omitempty"`
	Error     any       `json:"error,omitempty"`
}

func envelope[T any](ctx *gin.Context, status int, ok bool, message string) APIResponse[T] {
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: ctx.GetString(requestIDKey),
		Success:   ok,
		Message:   message,
	}
}

// OK writes a success envelope carrying data. status defaults to 200.
func OK[T any](ctx *gin.Context, status int, data T, message string) {
	if status == 0 {
		status = http.StatusOK
	}
	res := envelope[T](ctx, status, true, message)
	res.Data = data
	ctx.JSON(status, res)
}

// Fail writes an error envelope and aborts the chain. details, when
// non-nil, lands in the error member. status defaults to 400.
func Fail(ctx *gin.Context, status int, message string, details any) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	res := envelope[any](ctx, status, false, message)
	res.Error = details
	ctx.AbortWithStatusJSON(status, res)
}
