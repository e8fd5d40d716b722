package domain

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// RiskParams holds the protocol's risk configuration. Ratios are WAD (1e18)
// fixed point; MinLiquidationRewardUSD uses the 1e8 price scale.
type RiskParams struct {
	LiquidationThreshold    *uint256.Int
	MinHealthFactor         *uint256.Int
	CloseFactor             *uint256.Int
	LiquidationBonus        *uint256.Int
	ProtocolFee             *uint256.Int
	MinLiquidationRewardUSD *uint256.Int
	// MinBorrowUnits is the smallest borrow in whole tokens.
	MinBorrowUnits *uint256.Int
}

var wadOne = uint256.NewInt(1_000_000_000_000_000_000)

// DefaultRiskParams returns the production defaults.
func DefaultRiskParams() RiskParams {
	return RiskParams{
		LiquidationThreshold:    uint256.NewInt(800_000_000_000_000_000),
		MinHealthFactor:         uint256.NewInt(1_100_000_000_000_000_000),
		CloseFactor:             uint256.NewInt(500_000_000_000_000_000),
		LiquidationBonus:        uint256.NewInt(100_000_000_000_000_000),
		ProtocolFee:             uint256.NewInt(50_000_000_000_000_000),
		MinLiquidationRewardUSD: uint256.NewInt(5_000_000_000),
		MinBorrowUnits:          uint256.NewInt(1),
	}
}

// Validate checks that every parameter is set and within range.
func (p RiskParams) Validate() error {
	fields := []struct {
		name string
		v    *uint256.Int
	}{
		{"liquidation_threshold", p.LiquidationThreshold},
		{"min_health_factor", p.MinHealthFactor},
		{"close_factor", p.CloseFactor},
		{"liquidation_bonus", p.LiquidationBonus},
		{"protocol_fee", p.ProtocolFee},
		{"min_liquidation_reward_usd", p.MinLiquidationRewardUSD},
		{"min_borrow_units", p.MinBorrowUnits},
	}
	for _, f := range fields {
		if f.v == nil {
			return fmt.Errorf("risk: %s is not set", f.name)
		}
	}

	if p.LiquidationThreshold.IsZero() || p.LiquidationThreshold.Gt(wadOne) {
		return errors.New("risk: liquidation_threshold must be in (0, 1]")
	}
	if !p.MinHealthFactor.Gt(wadOne) {
		return errors.New("risk: min_health_factor must be greater than 1")
	}
	if p.CloseFactor.IsZero() || p.CloseFactor.Gt(wadOne) {
		return errors.New("risk: close_factor must be in (0, 1]")
	}
	if !p.ProtocolFee.Lt(wadOne) {
		return errors.New("risk: protocol_fee must be less than 1")
	}
	return nil
}
