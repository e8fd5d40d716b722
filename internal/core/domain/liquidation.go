package domain

import "github.com/holiman/uint256"

// LiquidationPlan is the fully computed outcome of a liquidation, produced
// before any state changes.
type LiquidationPlan struct {
	Target          Account
	Liquidator      Account
	CollateralAsset Asset
	DebtAsset       Asset
	DebtRepaid      *uint256.Int
	Seized          *uint256.Int
	ProtocolCut     *uint256.Int
	Reward          *uint256.Int
	RewardUSD       *uint256.Int
}
