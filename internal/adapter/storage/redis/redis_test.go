package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"palma-lending/config"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return s, client
}

func TestNewClient_Connects(t *testing.T) {
	s := miniredis.RunT(t)
	cfg := config.RedisConfig{Host: s.Host(), Port: mustPort(t, s)}

	client, err := NewClient(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer client.Close()

	hc := NewHealthCheck(client)
	assert.Equal(t, "redis", hc.Name())
	assert.NoError(t, hc.Ping(context.Background()))
}

func TestNewClient_Unreachable(t *testing.T) {
	s := miniredis.RunT(t)
	cfg := config.RedisConfig{Host: s.Host(), Port: mustPort(t, s)}
	s.Close()

	_, err := NewClient(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connecting to redis")
}

func TestNewClient_AppliesPoolOptions(t *testing.T) {
	s := miniredis.RunT(t)
	cfg := config.RedisConfig{
		Host:        s.Host(),
		Port:        mustPort(t, s),
		PoolSize:    3,
		DialTimeout: time.Second,
		OpTimeout:   200 * time.Millisecond,
	}

	client, err := NewClient(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 3, client.Options().PoolSize)
	assert.Equal(t, 200*time.Millisecond, client.Options().ReadTimeout)
}

func mustPort(t *testing.T, s *miniredis.Miniredis) int {
	t.Helper()
	port, err := strconv.Atoi(s.Port())
	require.NoError(t, err)
	return port
}
