package service

import (
	"context"
	"fmt"

	"palma-lending/internal/core/domain"
	"palma-lending/internal/core/ports"
	"palma-lending/pkg/apperror"
	"palma-lending/pkg/wad"

	"github.com/holiman/uint256"
)

// LiquidationEngine computes liquidation outcomes. It reads positions and
// prices only; applying a plan is the caller's job.
type LiquidationEngine struct {
	health *HealthCalculator
	oracle ports.PriceOracleV1
	tokens DecimalsSource
	params domain.RiskParams
}

// NewLiquidationEngine creates an engine sharing the calculator's collaborators.
func NewLiquidationEngine(health *HealthCalculator, oracle ports.PriceOracleV1, tokens DecimalsSource, params domain.RiskParams) *LiquidationEngine {
	return &LiquidationEngine{
		health: health,
		oracle: oracle,
		tokens: tokens,
		params: params,
	}
}

// Plan validates that target can be liquidated and computes the repayment,
// the seized collateral and its split between liquidator and protocol.
func (e *LiquidationEngine) Plan(
	ctx context.Context,
	target, liquidator domain.Account,
	collateralAsset, debtAsset domain.Asset,
	positions domain.Positions,
) (*domain.LiquidationPlan, error) {
	health, err := e.health.Health(ctx, positions)
	if err != nil {
		return nil, err
	}
	if !health.Below(e.params.MinHealthFactor) {
		return nil, apperror.ErrAccountCannotBeLiquidated()
	}

	borrowed := positions.Borrow(debtAsset)
	deposited := positions.Deposit(collateralAsset)
	if borrowed.IsZero() || deposited.IsZero() {
		return nil, apperror.ErrLiquidationForbidden()
	}

	repaid, err := wad.MulWad(borrowed, e.params.CloseFactor)
	if err != nil {
		return nil, arithmetic(err)
	}
	if repaid.IsZero() {
		return nil, apperror.ErrLiquidationForbidden()
	}

	debtUSD, err := e.health.Value(ctx, debtAsset, repaid)
	if err != nil {
		return nil, err
	}
	collateralPrice, err := e.oracle.LatestPrice(ctx, collateralAsset)
	if err != nil {
		return nil, err
	}
	collateralDecimals, err := e.tokens.Decimals(ctx, collateralAsset)
	if err != nil {
		return nil, err
	}

	equivalent, err := wad.MulDiv(debtUSD, wad.Pow10(collateralDecimals), collateralPrice.Price)
	if err != nil {
		return nil, arithmetic(err)
	}
	bonusFactor, err := wad.Add(wad.One, e.params.LiquidationBonus)
	if err != nil {
		return nil, arithmetic(err)
	}
	seized, err := wad.MulWad(equivalent, bonusFactor)
	if err != nil {
		return nil, arithmetic(err)
	}

	// Never seize more than the target holds; repay proportionally less.
	if seized.Gt(deposited) {
		if repaid, err = wad.MulDiv(repaid, deposited, seized); err != nil {
			return nil, arithmetic(err)
		}
		seized = deposited.Clone()
		if repaid.IsZero() {
			return nil, apperror.ErrLiquidationForbidden()
		}
	}

	cut, err := wad.MulWad(seized, e.params.ProtocolFee)
	if err != nil {
		return nil, arithmetic(err)
	}
	reward := new(uint256.Int).Sub(seized, cut)

	rewardUSD, err := wad.MulDiv(reward, collateralPrice.Price, wad.Pow10(collateralDecimals))
	if err != nil {
		return nil, arithmetic(fmt.Errorf("reward value: %w", err))
	}
	if rewardUSD.Lt(e.params.MinLiquidationRewardUSD) {
		return nil, apperror.ErrLiquidationForbidden()
	}

	return &domain.LiquidationPlan{
		Target:          target,
		Liquidator:      liquidator,
		CollateralAsset: collateralAsset,
		DebtAsset:       debtAsset,
		DebtRepaid:      repaid,
		Seized:          seized,
		ProtocolCut:     cut,
		Reward:          reward,
		RewardUSD:       rewardUSD,
	}, nil
}
