package ledger

import (
	"palma-lending/internal/core/domain"
	"palma-lending/pkg/wad"

	"github.com/holiman/uint256"
)

// Tx is a set of balance mutations that is either committed or rolled back
// as a whole. The usual shape is:
//
//	tx := book.Begin()
//	defer tx.Rollback()
//	...
//	tx.Commit()
type Tx struct {
	book   *Book
	undo   []func()
	closed bool
}

func (tx *Tx) setBalance(m balances, account domain.Account, asset domain.Asset, v *uint256.Int) {
	prev := m.get(account, asset)
	tx.undo = append(tx.undo, func() {
		if prev == nil {
			m.unset(account, asset)
			return
		}
		m.set(account, asset, prev)
	})
	m.set(account, asset, v)
}

// CreditDeposit adds amount to the account's deposit of asset.
func (tx *Tx) CreditDeposit(account domain.Account, asset domain.Asset, amount *uint256.Int) error {
	if tx.closed {
		return ErrTxClosed
	}
	next, err := wad.Add(wad.OrZero(tx.book.deposits.get(account, asset)), amount)
	if err != nil {
		return err
	}
	tx.setBalance(tx.book.deposits, account, asset, next)
	return nil
}

// DebitDeposit subtracts amount from the account's deposit of asset.
// It fails without mutating when the deposit is smaller than amount.
func (tx *Tx) DebitDeposit(account domain.Account, asset domain.Asset, amount *uint256.Int) error {
	if tx.closed {
		return ErrTxClosed
	}
	cur := wad.OrZero(tx.book.deposits.get(account, asset))
	if cur.Lt(amount) {
		return ErrInsufficientBalance
	}
	tx.setBalance(tx.book.deposits, account, asset, new(uint256.Int).Sub(cur, amount))
	return nil
}

// CreditBorrow adds amount to the account's borrow of asset.
func (tx *Tx) CreditBorrow(account domain.Account, asset domain.Asset, amount *uint256.Int) error {
	if tx.closed {
		return ErrTxClosed
	}
	next, err := wad.Add(wad.OrZero(tx.book.borrows.get(account, asset)), amount)
	if err != nil {
		return err
	}
	tx.setBalance(tx.book.borrows, account, asset, next)
	return nil
}

// ClearBorrow reduces the account's borrow of asset by at most amount and
// returns the amount actually cleared.
func (tx *Tx) ClearBorrow(account domain.Account, asset domain.Asset, amount *uint256.Int) (*uint256.Int, error) {
	if tx.closed {
		return nil, ErrTxClosed
	}
	cur := wad.OrZero(tx.book.borrows.get(account, asset))
	cleared := wad.Min(cur, amount)
	if cleared.IsZero() {
		return cleared, nil
	}
	tx.setBalance(tx.book.borrows, account, asset, wad.SubClamped(cur, cleared))
	return cleared, nil
}

// CreditEarnings adds amount to the protocol earnings of asset.
func (tx *Tx) CreditEarnings(asset domain.Asset, amount *uint256.Int) error {
	if tx.closed {
		return ErrTxClosed
	}
	earnings := tx.book.earnings
	prev, had := earnings[asset]
	next, err := wad.Add(wad.OrZero(prev), amount)
	if err != nil {
		return err
	}
	tx.undo = append(tx.undo, func() {
		if !had {
			delete(earnings, asset)
			return
		}
		earnings[asset] = prev
	})
	earnings[asset] = next
	return nil
}

// Commit makes the mutations permanent.
func (tx *Tx) Commit() {
	tx.closed = true
	tx.undo = nil
}

// Rollback restores every entry touched by the transaction. It is a no-op
// after Commit or a previous Rollback.
func (tx *Tx) Rollback() {
	if tx.closed {
		return
	}
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
	tx.closed = true
}
