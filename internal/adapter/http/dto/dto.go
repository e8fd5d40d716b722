package dto

import (
	"sort"
	"time"

	"palma-lending/internal/core/domain"
	"palma-lending/internal/core/ports"

	"github.com/holiman/uint256"
)

// Amounts travel as base-10 strings of native token units.

// DepositRequest is the request body for a deposit.
type DepositRequest struct {
	Asset  string `json:"asset" binding:"required,eth_addr"`
	Amount string `json:"amount" binding:"required,amount"`
}

// WithdrawRequest is the request body for a withdrawal.
type WithdrawRequest struct {
	CollateralAsset string `json:"collateral_asset" binding:"required,eth_addr"`
	DebtAsset       string `json:"debt_asset" binding:"required,eth_addr"`
	Amount          string `json:"amount" binding:"required,amount"`
}

// BorrowRequest is the request body for a borrow.
type BorrowRequest struct {
	CollateralAsset string `json:"collateral_asset" binding:"required,eth_addr"`
	DebtAsset       string `json:"debt_asset" binding:"required,eth_addr"`
	Amount          string `json:"amount" binding:"required,amount"`
}

// RepayRequest is the request body for a repayment.
type RepayRequest struct {
	Asset  string `json:"asset" binding:"required,eth_addr"`
	Amount string `json:"amount" binding:"required,amount"`
}

// LiquidateRequest is the request body for a liquidation.
type LiquidateRequest struct {
	Target          string `json:"target" binding:"required,eth_addr"`
	CollateralAsset string `json:"collateral_asset" binding:"required,eth_addr"`
	DebtAsset       string `json:"debt_asset" binding:"required,eth_addr"`
}

// SetAllowedRequest is the request body for toggling a token's allow flag.
type SetAllowedRequest struct {
	Allowed *bool `json:"allowed" binding:"required"`
}

// EventResponse is the response body for a committed operation.
type EventResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Account     string  `json:"account"`
	Asset       string  `json:"asset"`
	Amount      string  `json:"amount"`
	Target      *string `json:"target,omitempty"`
	DebtAsset   *string `json:"debt_asset,omitempty"`
	DebtRepaid  *string `json:"debt_repaid,omitempty"`
	ProtocolCut *string `json:"protocol_cut,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// NewEventResponse renders an event.
func NewEventResponse(e *domain.Event) EventResponse {
	resp := EventResponse{
		ID:        e.ID.String(),
		Type:      string(e.Type),
		Account:   e.Account.Hex(),
		Asset:     e.Asset.Hex(),
		Amount:    decimal(e.Amount),
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if e.Target != nil {
		s := e.Target.Hex()
		resp.Target = &s
	}
	if e.DebtAsset != nil {
		s := e.DebtAsset.Hex()
		resp.DebtAsset = &s
	}
	if e.DebtRepaid != nil {
		s := e.DebtRepaid.Dec()
		resp.DebtRepaid = &s
	}
	if e.ProtocolCut != nil {
		s := e.ProtocolCut.Dec()
		resp.ProtocolCut = &s
	}
	return resp
}

// NewEventList renders a journal page.
func NewEventList(events []domain.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, NewEventResponse(&events[i]))
	}
	return out
}

// PositionResponse is one asset's balances for an account.
type PositionResponse struct {
	Asset   string `json:"asset"`
	Deposit string `json:"deposit"`
	Borrow  string `json:"borrow"`
}

// AccountSummaryResponse is the response body for an account summary.
// HealthFactor is a WAD string, or "infinite" when the account has no debt.
type AccountSummaryResponse struct {
	Account       string             `json:"account"`
	CollateralUSD string             `json:"collateral_usd"`
	DebtUSD       string             `json:"debt_usd"`
	HealthFactor  string             `json:"health_factor"`
	Positions     []PositionResponse `json:"positions"`
}

// NewAccountSummaryResponse renders a summary with positions ordered by asset.
func NewAccountSummaryResponse(s *ports.AccountSummary) AccountSummaryResponse {
	assets := s.Positions.Assets()
	sort.Slice(assets, func(i, j int) bool { return assets[i].Cmp(assets[j]) < 0 })

	positions := make([]PositionResponse, 0, len(assets))
	for _, a := range assets {
		positions = append(positions, PositionResponse{
			Asset:   a.Hex(),
			Deposit: s.Positions.Deposit(a).Dec(),
			Borrow:  s.Positions.Borrow(a).Dec(),
		})
	}

	factor := "infinite"
	if !s.Health.IsInfinite() {
		factor = s.Health.Factor.Dec()
	}
	return AccountSummaryResponse{
		Account:       s.Account.Hex(),
		CollateralUSD: decimal(s.Health.CollateralUSD),
		DebtUSD:       decimal(s.Health.DebtUSD),
		HealthFactor:  factor,
		Positions:     positions,
	}
}

// AssetPositionResponse is the response body for a single account/asset query.
type AssetPositionResponse struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
	Deposit string `json:"deposit"`
	Borrow  string `json:"borrow"`
}

// TokenResponse is one entry of the token listing.
type TokenResponse struct {
	Asset            string `json:"asset"`
	Symbol           string `json:"symbol"`
	Decimals         uint8  `json:"decimals"`
	Allowed          bool   `json:"allowed"`
	ProtocolEarnings string `json:"protocol_earnings"`
}

// NewTokenList renders the token listing.
func NewTokenList(tokens []ports.TokenStatus) []TokenResponse {
	out := make([]TokenResponse, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, TokenResponse{
			Asset:            t.Asset.Hex(),
			Symbol:           t.Symbol,
			Decimals:         t.Decimals,
			Allowed:          t.Allowed,
			ProtocolEarnings: decimal(t.ProtocolEarnings),
		})
	}
	return out
}

func decimal(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}
