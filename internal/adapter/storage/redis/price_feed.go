package redis

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"palma-lending/internal/core/domain"

	"github.com/shopspring/decimal"
)

type roundReader interface {
	LatestRound(ctx context.Context, asset domain.Asset) (domain.RoundData, error)
}

// PriceFeed exposes one asset's rounds as an aggregator-style feed.
type PriceFeed struct {
	rounds   roundReader
	asset    domain.Asset
	decimals uint8
}

// NewPriceFeed creates a feed reporting answers with the given decimals.
func NewPriceFeed(rounds roundReader, asset domain.Asset, decimals uint8) *PriceFeed {
	return &PriceFeed{rounds: rounds, asset: asset, decimals: decimals}
}

// LatestRoundData implements ports.PriceFeed.
func (f *PriceFeed) LatestRoundData(ctx context.Context) (domain.RoundData, error) {
	return f.rounds.LatestRound(ctx, f.asset)
}

// Decimals implements ports.PriceFeed.
func (f *PriceFeed) Decimals() uint8 {
	return f.decimals
}

// ParseAnswer converts a decimal price such as "2000.5" to a feed answer
// with the given decimals. Digits beyond that precision are rejected.
func ParseAnswer(price string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return nil, fmt.Errorf("price %q: %w", price, err)
	}
	shifted := d.Shift(int32(decimals))
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("price %q: more than %d fractional digits", price, decimals)
	}
	return shifted.BigInt(), nil
}
