package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

// EventType names a ledger state change.
type EventType string

const (
	EventDeposit   EventType = "DEPOSIT"
	EventWithdraw  EventType = "WITHDRAW"
	EventBorrow    EventType = "BORROW"
	EventRepay     EventType = "REPAY"
	EventLiquidate EventType = "LIQUIDATE"
)

// Event is emitted once per committed operation.
//
// For LIQUIDATE, Account is the liquidator, Target the liquidated account,
// Asset the collateral and Amount the collateral seized from the target.
type Event struct {
	ID        uuid.UUID    `json:"id"`
	Type      EventType    `json:"type"`
	Account   Account      `json:"account"`
	Asset     Asset        `json:"asset"`
	Amount    *uint256.Int `json:"amount"`
	Target    *Account     `json:"target,omitempty"`
	DebtAsset *Asset       `json:"debt_asset,omitempty"`
	// DebtRepaid and ProtocolCut are set on LIQUIDATE only.
	DebtRepaid  *uint256.Int `json:"debt_repaid,omitempty"`
	ProtocolCut *uint256.Int `json:"protocol_cut,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NewEvent builds an event with a fresh ID and timestamp.
func NewEvent(t EventType, account Account, asset Asset, amount *uint256.Int) *Event {
	return &Event{
		ID:        uuid.New(),
		Type:      t,
		Account:   account,
		Asset:     asset,
		Amount:    amount.Clone(),
		CreatedAt: time.Now().UTC(),
	}
}

// Involves reports whether account is the actor or the liquidation target.
func (e *Event) Involves(account Account) bool {
	return e.Account == account || (e.Target != nil && *e.Target == account)
}
