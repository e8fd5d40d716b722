package service

import (
	"context"
	"errors"
	"fmt"

	"palma-lending/internal/core/domain"
	"palma-lending/internal/core/ports"
	"palma-lending/pkg/apperror"
	"palma-lending/pkg/wad"

	"github.com/holiman/uint256"
)

// DecimalsSource resolves a token's decimal precision.
type DecimalsSource interface {
	Decimals(ctx context.Context, asset domain.Asset) (uint8, error)
}

// HealthCalculator converts multi-asset positions into USD values and a
// health factor. It never mutates positions.
type HealthCalculator struct {
	oracle ports.PriceOracleV1
	tokens DecimalsSource
	params domain.RiskParams
}

// NewHealthCalculator creates a calculator using params.LiquidationThreshold.
func NewHealthCalculator(oracle ports.PriceOracleV1, tokens DecimalsSource, params domain.RiskParams) *HealthCalculator {
	return &HealthCalculator{
		oracle: oracle,
		tokens: tokens,
		params: params,
	}
}

// Value returns amount * price / 10^decimals in the 1e8 USD scale, rounded
// down. A zero amount is worth zero and does not consult the oracle.
func (h *HealthCalculator) Value(ctx context.Context, asset domain.Asset, amount *uint256.Int) (*uint256.Int, error) {
	return h.value(ctx, asset, amount, wad.MulDiv)
}

// debtValue is Value rounded up, so any outstanding borrow counts as debt.
func (h *HealthCalculator) debtValue(ctx context.Context, asset domain.Asset, amount *uint256.Int) (*uint256.Int, error) {
	return h.value(ctx, asset, amount, wad.MulDivUp)
}

func (h *HealthCalculator) value(
	ctx context.Context,
	asset domain.Asset,
	amount *uint256.Int,
	mulDiv func(x, y, d *uint256.Int) (*uint256.Int, error),
) (*uint256.Int, error) {
	if amount == nil || amount.IsZero() {
		return new(uint256.Int), nil
	}
	sample, err := h.oracle.LatestPrice(ctx, asset)
	if err != nil {
		return nil, err
	}
	decimals, err := h.tokens.Decimals(ctx, asset)
	if err != nil {
		return nil, err
	}
	v, err := mulDiv(amount, sample.Price, wad.Pow10(decimals))
	if err != nil {
		return nil, arithmetic(fmt.Errorf("value of %s: %w", asset.Hex(), err))
	}
	return v, nil
}

// Health computes the account-wide health of positions.
func (h *HealthCalculator) Health(ctx context.Context, positions domain.Positions) (domain.AccountHealth, error) {
	collateral, err := h.sum(ctx, positions.Deposits, h.Value)
	if err != nil {
		return domain.AccountHealth{}, err
	}
	debt, err := h.sum(ctx, positions.Borrows, h.debtValue)
	if err != nil {
		return domain.AccountHealth{}, err
	}
	return h.ratio(collateral, debt)
}

// Hypothetical computes health as if change had already been applied.
func (h *HealthCalculator) Hypothetical(ctx context.Context, positions domain.Positions, change domain.PositionChange) (domain.AccountHealth, error) {
	return h.Health(ctx, positions.Apply(change))
}

// PairHealth computes health counting only the deposit of collateral against
// the borrow of debt.
func (h *HealthCalculator) PairHealth(ctx context.Context, positions domain.Positions, collateral, debt domain.Asset) (domain.AccountHealth, error) {
	collateralUSD, err := h.Value(ctx, collateral, positions.Deposit(collateral))
	if err != nil {
		return domain.AccountHealth{}, err
	}
	debtUSD, err := h.debtValue(ctx, debt, positions.Borrow(debt))
	if err != nil {
		return domain.AccountHealth{}, err
	}
	return h.ratio(collateralUSD, debtUSD)
}

type valuer func(ctx context.Context, asset domain.Asset, amount *uint256.Int) (*uint256.Int, error)

func (h *HealthCalculator) sum(ctx context.Context, amounts map[domain.Asset]*uint256.Int, value valuer) (*uint256.Int, error) {
	total := new(uint256.Int)
	for asset, amount := range amounts {
		v, err := value(ctx, asset, amount)
		if err != nil {
			return nil, err
		}
		if total, err = wad.Add(total, v); err != nil {
			return nil, arithmetic(err)
		}
	}
	return total, nil
}

func (h *HealthCalculator) ratio(collateralUSD, debtUSD *uint256.Int) (domain.AccountHealth, error) {
	health := domain.AccountHealth{CollateralUSD: collateralUSD, DebtUSD: debtUSD}
	if debtUSD.IsZero() {
		return health, nil
	}
	factor, err := wad.MulDiv(collateralUSD, h.params.LiquidationThreshold, debtUSD)
	if err != nil {
		return domain.AccountHealth{}, arithmetic(err)
	}
	health.Factor = factor
	return health, nil
}

// arithmetic maps wad errors to ArithmeticOverflow, leaving app errors as is.
func arithmetic(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.ErrArithmeticOverflow(err)
}
