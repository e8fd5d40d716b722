package redis

import (
	"context"

	"palma-lending/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// NewHealthCheck pings the server backing oracle rounds, rate limits and
// idempotency records.
func NewHealthCheck(client *goredis.Client) ports.HealthChecker {
	return ports.CheckFunc{
		Dependency: "redis",
		Probe: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}
}
