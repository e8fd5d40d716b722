package response

import (
	"errors"
	"net/http"
	"time"

	"palma-lending/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "request_id"

// ErrorCodeKey is the gin context key the error code is recorded under for
// the request logger.
const ErrorCodeKey = "error_code"

// Meta correlates a response with its request.
type Meta struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// SuccessResponse wraps a payload.
type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta
}

// ErrorResponse carries a stable error code clients branch on.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	Meta
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{Data: data, Meta: meta(c)})
}

// Created is used for ledger operations, which always record an event.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{Data: data, Meta: meta(c)})
}

// Error writes err as an ErrorResponse. Anything that is not an AppError is
// reported as SYS_001 without exposing its text.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.InternalError(err)
	}
	c.Set(ErrorCodeKey, appErr.Code)
	c.JSON(appErr.HTTPStatus, ErrorResponse{
		ErrorCode: appErr.Code,
		Message:   appErr.Message,
		Meta:      meta(c),
	})
}

func meta(c *gin.Context) Meta {
	id := c.GetString(RequestIDKey)
	if id == "" {
		id = uuid.NewString()
	}
	return Meta{RequestID: id, Timestamp: time.Now().UTC().Format(time.RFC3339)}
}
