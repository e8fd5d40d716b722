package domain

import (
	"github.com/holiman/uint256"
)

// AccountHealth is a solvency snapshot. USD values use the 1e8 scale and
// Factor is WAD; a nil Factor means the account has no debt.
type AccountHealth struct {
	CollateralUSD *uint256.Int
	DebtUSD       *uint256.Int
	Factor        *uint256.Int
}

// IsInfinite reports whether the account carries no debt.
func (h AccountHealth) IsInfinite() bool {
	return h.Factor == nil
}

// Below reports whether the factor is finite and strictly less than min.
func (h AccountHealth) Below(min *uint256.Int) bool {
	return h.Factor != nil && h.Factor.Lt(min)
}

// Positions is a snapshot of one account's deposits and borrows by asset.
// Zero balances may be absent.
type Positions struct {
	Deposits map[Asset]*uint256.Int
	Borrows  map[Asset]*uint256.Int
}

// NewPositions returns empty positions.
func NewPositions() Positions {
	return Positions{
		Deposits: make(map[Asset]*uint256.Int),
		Borrows:  make(map[Asset]*uint256.Int),
	}
}

// Deposit returns the deposit of asset, or zero.
func (p Positions) Deposit(asset Asset) *uint256.Int {
	if v, ok := p.Deposits[asset]; ok && v != nil {
		return v
	}
	return new(uint256.Int)
}

// Borrow returns the borrow of asset, or zero.
func (p Positions) Borrow(asset Asset) *uint256.Int {
	if v, ok := p.Borrows[asset]; ok && v != nil {
		return v
	}
	return new(uint256.Int)
}

// Assets returns every asset with a deposit or borrow entry.
func (p Positions) Assets() []Asset {
	seen := make(map[Asset]struct{}, len(p.Deposits)+len(p.Borrows))
	out := make([]Asset, 0, len(p.Deposits)+len(p.Borrows))
	for a := range p.Deposits {
		if _, ok := seen[a]; !ok {
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	for a := range p.Borrows {
		if _, ok := seen[a]; !ok {
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

// PositionChange substitutes the post-operation balance of one asset when
// evaluating a hypothetical health factor. Nil fields keep the current value.
type PositionChange struct {
	Asset   Asset
	Deposit *uint256.Int
	Borrow  *uint256.Int
}

// Apply returns a copy of p with the change substituted.
func (p Positions) Apply(c PositionChange) Positions {
	out := NewPositions()
	for a, v := range p.Deposits {
		out.Deposits[a] = v
	}
	for a, v := range p.Borrows {
		out.Borrows[a] = v
	}
	if c.Deposit != nil {
		out.Deposits[c.Asset] = c.Deposit
	}
	if c.Borrow != nil {
		out.Borrows[c.Asset] = c.Borrow
	}
	return out
}
