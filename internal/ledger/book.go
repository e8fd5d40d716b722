// Package ledger owns the deposit, borrow and earnings balances of the pool.
//
// A Book is mutated only through a Tx. Every mutation records the entry's
// previous value so that Rollback can restore the exact pre-transaction
// state, which lets callers apply balance changes before calling out to
// token contracts and undo them if the transfer fails.
package ledger

import (
	"errors"

	"palma-lending/internal/core/domain"
	"palma-lending/pkg/wad"

	"github.com/holiman/uint256"
)

var (
	// ErrInsufficientBalance is returned when a debit exceeds the entry.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
	// ErrTxClosed is returned when a committed or rolled back Tx is reused.
	ErrTxClosed = errors.New("ledger: transaction already closed")
)

type balances map[domain.Account]map[domain.Asset]*uint256.Int

func (b balances) get(account domain.Account, asset domain.Asset) *uint256.Int {
	if byAsset, ok := b[account]; ok {
		if v, ok := byAsset[asset]; ok {
			return v
		}
	}
	return nil
}

func (b balances) set(account domain.Account, asset domain.Asset, v *uint256.Int) {
	byAsset, ok := b[account]
	if !ok {
		byAsset = make(map[domain.Asset]*uint256.Int)
		b[account] = byAsset
	}
	byAsset[asset] = v
}

func (b balances) unset(account domain.Account, asset domain.Asset) {
	byAsset, ok := b[account]
	if !ok {
		return
	}
	delete(byAsset, asset)
	if len(byAsset) == 0 {
		delete(b, account)
	}
}

// Book is the in-memory aggregate of all pool balances.
// It is not safe for concurrent use; callers serialize access.
type Book struct {
	deposits balances
	borrows  balances
	earnings map[domain.Asset]*uint256.Int
}

// NewBook returns an empty Book.
func NewBook() *Book {
	return &Book{
		deposits: make(balances),
		borrows:  make(balances),
		earnings: make(map[domain.Asset]*uint256.Int),
	}
}

// Deposit returns a copy of the account's deposit of asset.
func (b *Book) Deposit(account domain.Account, asset domain.Asset) *uint256.Int {
	return wad.OrZero(b.deposits.get(account, asset)).Clone()
}

// Borrow returns a copy of the account's borrow of asset.
func (b *Book) Borrow(account domain.Account, asset domain.Asset) *uint256.Int {
	return wad.OrZero(b.borrows.get(account, asset)).Clone()
}

// Earnings returns a copy of the protocol earnings for asset.
func (b *Book) Earnings(asset domain.Asset) *uint256.Int {
	return wad.OrZero(b.earnings[asset]).Clone()
}

// Positions returns a snapshot of the account's non-zero balances.
func (b *Book) Positions(account domain.Account) domain.Positions {
	p := domain.NewPositions()
	for asset, v := range b.deposits[account] {
		if !v.IsZero() {
			p.Deposits[asset] = v.Clone()
		}
	}
	for asset, v := range b.borrows[account] {
		if !v.IsZero() {
			p.Borrows[asset] = v.Clone()
		}
	}
	return p
}

// Begin opens a transaction against the book.
func (b *Book) Begin() *Tx {
	return &Tx{book: b}
}
