package service

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"palma-lending/internal/core/domain"
	"palma-lending/internal/core/ports"
	"palma-lending/pkg/apperror"
	"palma-lending/pkg/wad"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
)

// FeedOracle implements ports.PriceOracleV1 over one aggregator feed per asset.
// Every call reads the feed; nothing is cached and nothing is retried.
type FeedOracle struct {
	mu    sync.RWMutex
	feeds map[domain.Asset]ports.PriceFeed
	log   zerolog.Logger
}

// NewFeedOracle creates an oracle with no feeds.
func NewFeedOracle(log zerolog.Logger) *FeedOracle {
	return &FeedOracle{
		feeds: make(map[domain.Asset]ports.PriceFeed),
		log:   log,
	}
}

// SetFeed installs or replaces the feed for asset.
func (o *FeedOracle) SetFeed(asset domain.Asset, feed ports.PriceFeed) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.feeds[asset] = feed
}

// LatestPrice returns the feed's latest answer rescaled to 8 decimals.
func (o *FeedOracle) LatestPrice(ctx context.Context, asset domain.Asset) (domain.PriceSample, error) {
	o.mu.RLock()
	feed, ok := o.feeds[asset]
	o.mu.RUnlock()
	if !ok {
		return domain.PriceSample{}, apperror.ErrOracleUnavailable(fmt.Errorf("no price feed for %s", asset.Hex()))
	}

	round, err := feed.LatestRoundData(ctx)
	if err != nil {
		o.log.Warn().Err(err).Str("asset", asset.Hex()).Msg("price feed read failed")
		return domain.PriceSample{}, apperror.ErrOracleUnavailable(fmt.Errorf("read feed for %s: %w", asset.Hex(), err))
	}

	price, err := normalizeAnswer(round.Answer, feed.Decimals())
	if err != nil {
		o.log.Warn().Err(err).Str("asset", asset.Hex()).Uint64("round_id", round.RoundID).Msg("price feed returned invalid answer")
		return domain.PriceSample{}, apperror.ErrOracleUnavailable(fmt.Errorf("feed for %s: %w", asset.Hex(), err))
	}

	return domain.PriceSample{
		Asset:     asset,
		Price:     price,
		RoundID:   round.RoundID,
		StartedAt: round.StartedAt,
		UpdatedAt: round.UpdatedAt,
	}, nil
}

// normalizeAnswer rescales a positive feed answer from feedDecimals to 8.
func normalizeAnswer(answer *big.Int, feedDecimals uint8) (*uint256.Int, error) {
	if answer == nil || answer.Sign() <= 0 {
		return nil, fmt.Errorf("non-positive answer %v", answer)
	}
	v, overflow := uint256.FromBig(answer)
	if overflow {
		return nil, fmt.Errorf("answer exceeds 256 bits")
	}

	switch {
	case feedDecimals > wad.PriceDecimals:
		v.Div(v, wad.Pow10(feedDecimals-wad.PriceDecimals))
	case feedDecimals < wad.PriceDecimals:
		scaled, err := wad.MulDiv(v, wad.Pow10(wad.PriceDecimals-feedDecimals), uint256.NewInt(1))
		if err != nil {
			return nil, err
		}
		v = scaled
	}
	if v.IsZero() {
		return nil, fmt.Errorf("answer rounds to zero at %d decimals", wad.PriceDecimals)
	}
	return v, nil
}
