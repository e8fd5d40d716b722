package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"palma-lending/config"
	"palma-lending/internal/adapter/custody"
	redisStorage "palma-lending/internal/adapter/storage/redis"
	"palma-lending/internal/core/domain"
	"palma-lending/internal/service"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
)

// roundStore is the subset of the Redis round store used at startup.
type roundStore interface {
	PushRound(ctx context.Context, asset domain.Asset, answer *big.Int, at time.Time) (domain.RoundData, error)
	LatestRound(ctx context.Context, asset domain.Asset) (domain.RoundData, error)
}

// setupTokens registers every configured token with the vault, the
// registry and the oracle, and seeds initial prices for feeds without a
// round yet.
func setupTokens(
	ctx context.Context,
	tokens []config.TokenConfig,
	rounds roundStore,
	vault *custody.Vault,
	registry *service.TokenRegistry,
	oracle *service.FeedOracle,
	log zerolog.Logger,
) error {
	for _, t := range tokens {
		asset := t.Asset()
		vault.AddToken(asset, t.Decimals)
		registry.Register(asset, t.Symbol, t.Allowed)
		oracle.SetFeed(asset, redisStorage.NewPriceFeed(rounds, asset, t.FeedDecimals))

		if t.InitialPrice == "" {
			continue
		}
		_, err := rounds.LatestRound(ctx, asset)
		if err == nil {
			continue
		}
		if !errors.Is(err, redisStorage.ErrNoRound) {
			return fmt.Errorf("token %s: %w", t.Symbol, err)
		}

		answer, err := redisStorage.ParseAnswer(t.InitialPrice, t.FeedDecimals)
		if err != nil {
			return fmt.Errorf("token %s: %w", t.Symbol, err)
		}
		round, err := rounds.PushRound(ctx, asset, answer, time.Now())
		if err != nil {
			return fmt.Errorf("token %s: seed price: %w", t.Symbol, err)
		}
		log.Info().
			Str("symbol", t.Symbol).
			Str("answer", round.Answer.String()).
			Uint64("round_id", round.RoundID).
			Msg("seeded initial price")
	}
	return nil
}

// mintGenesis credits the configured development balances.
func mintGenesis(vault *custody.Vault, genesis []config.GenesisBalance) error {
	for i, g := range genesis {
		if !common.IsHexAddress(g.Account) || !common.IsHexAddress(g.Asset) {
			return fmt.Errorf("custody.genesis[%d]: invalid address", i)
		}
		amount, err := uint256.FromDecimal(g.Amount)
		if err != nil {
			return fmt.Errorf("custody.genesis[%d]: amount: %w", i, err)
		}
		if err := vault.Mint(common.HexToAddress(g.Asset), common.HexToAddress(g.Account), amount); err != nil {
			return fmt.Errorf("custody.genesis[%d]: %w", i, err)
		}
	}
	return nil
}
