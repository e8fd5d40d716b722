package middleware

import (
	"bytes"
	"encoding/json"
	"time"

	"palma-lending/internal/core/domain"
	"palma-lending/internal/core/ports"
	"palma-lending/pkg/apperror"
	"palma-lending/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// HeaderIdempotentReplayed marks a response served from the cache.
	HeaderIdempotentReplayed = "Idempotent-Replayed"

	idempotencyTTL = 24 * time.Hour
	maxKeyLength   = 128
)

// inFlight is the placeholder stored while the first request runs.
var inFlight = []byte(`{"status_code":0}`)

// bodyCapture tees the response body so it can be cached.
type bodyCapture struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCapture) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the first successful response for a repeated
// Idempotency-Key, scoped to the authenticated account and the route.
// Requests without the header pass through. A concurrent duplicate gets IDEM_001 while the
// first is still running. Non-2xx outcomes release the key so the client
// can retry. Cache failures degrade to pass-through.
func Idempotency(cache ports.IdempotencyCache, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := c.GetHeader(HeaderIdempotencyKey)
		account, ok := AccountFrom(c)
		if clientKey == "" || !ok {
			c.Next()
			return
		}
		if len(clientKey) > maxKeyLength {
			response.Error(c, apperror.Validation("Idempotency-Key is too long"))
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		key := domain.BuildIdempotencyKey(account, c.Request.Method, c.FullPath(), clientKey)

		reserved, err := cache.Reserve(ctx, key, inFlight, idempotencyTTL)
		if err != nil {
			log.Warn().Err(err).Msg("idempotency cache unavailable, processing request")
			c.Next()
			return
		}

		if !reserved {
			replay(c, cache, key, log)
			return
		}

		w := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status < 200 || status >= 300 {
			if err := cache.Release(ctx, key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("failed to release idempotency key")
			}
			return
		}

		cached, err := json.Marshal(domain.IdempotentResponse{StatusCode: status, Body: w.buf.Bytes()})
		if err == nil {
			err = cache.Set(ctx, key, cached, idempotencyTTL)
		}
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to cache idempotent response")
		}
	}
}

func replay(c *gin.Context, cache ports.IdempotencyCache, key string, log zerolog.Logger) {
	raw, err := cache.Get(c.Request.Context(), key)
	if err != nil {
		log.Warn().Err(err).Msg("idempotency cache unavailable, processing request")
		c.Next()
		return
	}
	if raw == nil {
		// Released or expired between Reserve and Get.
		response.Error(c, apperror.ErrRequestInFlight())
		c.Abort()
		return
	}

	var cached domain.IdempotentResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		response.Error(c, apperror.InternalError(err))
		c.Abort()
		return
	}
	if cached.StatusCode == 0 {
		response.Error(c, apperror.ErrRequestInFlight())
		c.Abort()
		return
	}

	c.Header(HeaderIdempotentReplayed, "true")
	c.Data(cached.StatusCode, "application/json; charset=utf-8", cached.Body)
	c.Abort()
}
