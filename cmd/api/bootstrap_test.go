package main

import (
	"context"
	"testing"
	"time"

	"palma-lending/config"
	"palma-lending/internal/adapter/custody"
	redisStorage "palma-lending/internal/adapter/storage/redis"
	"palma-lending/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/common"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pool  = common.HexToAddress("0x000000000000000000000000000000000000b0b0")
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	usdc  = common.HexToAddress("0x0000000000000000000000000000000000001001")
	weth  = common.HexToAddress("0x0000000000000000000000000000000000001004")
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newRounds(t *testing.T) *redisStorage.RoundStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisStorage.NewRoundStore(client)
}

func fixtureTokens() []config.TokenConfig {
	return []config.TokenConfig{
		{Address: usdc.Hex(), Symbol: "USDC", Decimals: 6, Allowed: true, FeedDecimals: 8, InitialPrice: "1"},
		{Address: weth.Hex(), Symbol: "WETH", Decimals: 18, FeedDecimals: 8},
	}
}

func TestSetupTokens(t *testing.T) {
	ctx := context.Background()
	rounds := newRounds(t)
	log := zerolog.Nop()

	vault := custody.NewVault(pool, log)
	registry := service.NewTokenRegistry(vault, log)
	oracle := service.NewFeedOracle(log)

	require.NoError(t, setupTokens(ctx, fixtureTokens(), rounds, vault, registry, oracle, log))

	assert.True(t, registry.IsAllowed(usdc))
	assert.False(t, registry.IsAllowed(weth))

	d, err := registry.Decimals(ctx, weth)
	require.NoError(t, err)
	assert.Equal(t, uint8(18), d)

	sample, err := oracle.LatestPrice(ctx, usdc)
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000_000), sample.Price.Uint64())

	// No initial price: the feed exists but has no round.
	_, err = oracle.LatestPrice(ctx, weth)
	require.Error(t, err)
}

func TestSetupTokens_KeepsExistingRound(t *testing.T) {
	ctx := context.Background()
	rounds := newRounds(t)
	log := zerolog.Nop()

	answer, err := redisStorage.ParseAnswer("0.98", 8)
	require.NoError(t, err)
	_, err = rounds.PushRound(ctx, usdc, answer, fixedTime)
	require.NoError(t, err)

	vault := custody.NewVault(pool, log)
	oracle := service.NewFeedOracle(log)
	require.NoError(t, setupTokens(ctx, fixtureTokens(), rounds, vault, service.NewTokenRegistry(vault, log), oracle, log))

	sample, err := oracle.LatestPrice(ctx, usdc)
	require.NoError(t, err)
	assert.Equal(t, uint64(98_000_000), sample.Price.Uint64())
	assert.Equal(t, uint64(1), sample.RoundID)
}

func TestSetupTokens_BadInitialPrice(t *testing.T) {
	log := zerolog.Nop()
	vault := custody.NewVault(pool, log)
	tokens := []config.TokenConfig{{Address: usdc.Hex(), Symbol: "USDC", Decimals: 6, FeedDecimals: 8, InitialPrice: "one"}}

	err := setupTokens(context.Background(), tokens, newRounds(t), vault, service.NewTokenRegistry(vault, log), service.NewFeedOracle(log), log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USDC")
}

func TestMintGenesis(t *testing.T) {
	log := zerolog.Nop()
	vault := custody.NewVault(pool, log)
	vault.AddToken(usdc, 6)

	require.NoError(t, mintGenesis(vault, []config.GenesisBalance{
		{Account: alice.Hex(), Asset: usdc.Hex(), Amount: "1000000000"},
		{Account: alice.Hex(), Asset: usdc.Hex(), Amount: "5"},
	}))
	assert.Equal(t, uint64(1_000_000_005), vault.BalanceOf(usdc, alice).Uint64())
}

func TestMintGenesis_Errors(t *testing.T) {
	log := zerolog.Nop()
	vault := custody.NewVault(pool, log)
	vault.AddToken(usdc, 6)

	tests := []struct {
		name string
		g    config.GenesisBalance
	}{
		{"bad account", config.GenesisBalance{Account: "alice", Asset: usdc.Hex(), Amount: "1"}},
		{"bad amount", config.GenesisBalance{Account: alice.Hex(), Asset: usdc.Hex(), Amount: "1e6"}},
		{"unknown token", config.GenesisBalance{Account: alice.Hex(), Asset: weth.Hex(), Amount: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mintGenesis(vault, []config.GenesisBalance{tt.g})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "custody.genesis[0]")
		})
	}
}
