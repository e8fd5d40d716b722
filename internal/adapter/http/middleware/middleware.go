package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"palma-lending/internal/core/domain"
	"palma-lending/internal/core/ports"
	"palma-lending/pkg/apperror"
	"palma-lending/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	HeaderRequestID      = "X-Request-ID"
	HeaderIdempotencyKey = "Idempotency-Key"

	// Context keys
	CtxAccount   = "account"
	CtxRole      = "role"
	CtxRequestID = response.RequestIDKey
)

// RequestID propagates the caller's X-Request-ID or assigns a fresh one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.New().String()
		}
		c.Set(CtxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// JWTAuth validates the bearer token and stores the account and role it
// names in the context.
func JWTAuth(tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") || len(authHeader) < 8 {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		claims, err := tokenSvc.Validate(authHeader[7:])
		if err != nil {
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("token rejected")
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		c.Set(CtxAccount, claims.Account)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// RequireRole rejects callers whose token does not carry role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxRole) != role {
			response.Error(c, apperror.ErrForbidden())
			c.Abort()
			return
		}
		c.Next()
	}
}

// AccountFrom returns the authenticated account set by JWTAuth.
func AccountFrom(c *gin.Context) (domain.Account, bool) {
	v, ok := c.Get(CtxAccount)
	if !ok {
		return domain.Account{}, false
	}
	account, ok := v.(domain.Account)
	return account, ok
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		if code := c.GetString(response.ErrorCodeKey); code != "" {
			event = event.Str("error_code", code)
		}
		if account, ok := AccountFrom(c); ok {
			event = event.Str("account", account.Hex())
		}

		event.
			Str("request_id", c.GetString(CtxRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				response.Error(c, apperror.InternalError(fmt.Errorf("panic: %v", r)))
				c.Abort()
			}
		}()
		c.Next()
	}
}

// RequestObserver records per-request metrics.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Metrics reports every request to observer, labelled by route template.
func Metrics(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		observer.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
