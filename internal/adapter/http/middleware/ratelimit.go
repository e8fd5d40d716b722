package middleware

import (
	"fmt"
	"strconv"
	"time"

	redisStore "palma-lending/internal/adapter/storage/redis"
	"palma-lending/pkg/apperror"
	"palma-lending/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Rate limit groups.
const (
	GroupOperations   = "operations"
	GroupLiquidations = "liquidations"
	GroupQueries      = "queries"
	GroupAdmin        = "admin"
)

// RateLimitRule defines a rate limit for an endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// DefaultRateLimitRules returns the limits per endpoint group.
func DefaultRateLimitRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		GroupOperations:   {Limit: 60, Window: time.Minute},
		GroupLiquidations: {Limit: 30, Window: time.Minute},
		GroupQueries:      {Limit: 120, Window: time.Minute},
		GroupAdmin:        {Limit: 10, Window: time.Minute},
	}
}

// RateLimiter creates a rate-limiting middleware for a given endpoint group.
// When the store fails the request is let through (degraded mode).
func RateLimiter(store *redisStore.RateLimitStore, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", extractIdentifier(c), group)

		result, err := store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit check failed, allowing request (degraded mode)")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			retryAfter := result.ResetAt - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.Error(c, apperror.ErrRateLimitExceeded())
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractIdentifier keys limits by authenticated account, falling back to
// the client IP for anonymous routes.
func extractIdentifier(c *gin.Context) string {
	if account, ok := AccountFrom(c); ok {
		return account.Hex()
	}
	return c.ClientIP()
}
