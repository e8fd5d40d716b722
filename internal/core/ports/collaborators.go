package ports

import (
	"context"
	"math/big"
	"time"

	"palma-lending/internal/core/domain"

	"github.com/holiman/uint256"
)

//go:generate mockgen -source=collaborators.go -destination=mocks/collaborators_mock.go -package=mocks

// PriceFeed is an aggregator-style feed for a single asset.
type PriceFeed interface {
	LatestRoundData(ctx context.Context) (domain.RoundData, error)
	// Decimals is the scale of RoundData.Answer.
	Decimals() uint8
}

// PriceOracleV1 returns validated prices normalized to 8 decimals.
// It performs no staleness check; a later version may add one.
type PriceOracleV1 interface {
	LatestPrice(ctx context.Context, asset domain.Asset) (domain.PriceSample, error)
}

// TokenTransferer moves tokens held by the pool. A false return means the
// token rejected the transfer.
type TokenTransferer interface {
	// Transfer sends amount from the pool to to.
	Transfer(ctx context.Context, asset domain.Asset, to domain.Account, amount *uint256.Int) (bool, error)
	// TransferFrom pulls amount from from into to.
	TransferFrom(ctx context.Context, asset domain.Asset, from, to domain.Account, amount *uint256.Int) (bool, error)
	// Decimals returns the token's decimal precision.
	Decimals(ctx context.Context, asset domain.Asset) (uint8, error)
}

// RoundStore persists published oracle rounds.
type RoundStore interface {
	PushRound(ctx context.Context, asset domain.Asset, answer *big.Int, at time.Time) (domain.RoundData, error)
	LatestRound(ctx context.Context, asset domain.Asset) (domain.RoundData, error)
}

// EventPublisher delivers committed ledger events to observers.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.Event) error
}

// EventJournal stores ledger events for history queries.
type EventJournal interface {
	Create(ctx context.Context, event *domain.Event) error
	ListByAccount(ctx context.Context, account domain.Account, limit int) ([]domain.Event, error)
}

// IdempotencyCache is the Redis-layer store for replayable responses.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Reserve claims key with placeholder if unused and reports whether it did.
	Reserve(ctx context.Context, key string, placeholder []byte, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
