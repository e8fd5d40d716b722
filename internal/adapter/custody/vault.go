// Package custody holds an in-process token vault used as the transfer
// collaborator in development and tests. Balances live in memory only.
package custody

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"palma-lending/internal/core/domain"
	"palma-lending/pkg/wad"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
)

// ErrUnknownToken is returned for assets the vault was never told about.
var ErrUnknownToken = errors.New("custody: unknown token")

type token struct {
	decimals uint8
	balances map[domain.Account]*uint256.Int
}

// Vault implements ports.TokenTransferer with ERC-20-like semantics.
// Transfer moves funds out of the pool account; TransferFrom moves funds
// between any two accounts. An insufficient balance returns false.
type Vault struct {
	mu     sync.Mutex
	pool   domain.Account
	tokens map[domain.Asset]*token
	log    zerolog.Logger
}

// NewVault creates an empty vault whose Transfer source is pool.
func NewVault(pool domain.Account, log zerolog.Logger) *Vault {
	return &Vault{
		pool:   pool,
		tokens: make(map[domain.Asset]*token),
		log:    log,
	}
}

// AddToken registers asset with the given decimals. Re-adding keeps balances.
func (v *Vault) AddToken(asset domain.Asset, decimals uint8) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if t, ok := v.tokens[asset]; ok {
		t.decimals = decimals
		return
	}
	v.tokens[asset] = &token{decimals: decimals, balances: make(map[domain.Account]*uint256.Int)}
}

// Mint credits account with amount of asset.
func (v *Vault) Mint(asset domain.Asset, account domain.Account, amount *uint256.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := v.tokens[asset]
	if !ok {
		return fmt.Errorf("mint %s: %w", asset.Hex(), ErrUnknownToken)
	}
	sum, err := wad.Add(wad.OrZero(t.balances[account]), amount)
	if err != nil {
		return fmt.Errorf("mint %s: %w", asset.Hex(), err)
	}
	t.balances[account] = sum
	return nil
}

// BalanceOf returns a copy of account's balance of asset.
func (v *Vault) BalanceOf(asset domain.Asset, account domain.Account) *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := v.tokens[asset]
	if !ok {
		return new(uint256.Int)
	}
	return wad.OrZero(t.balances[account]).Clone()
}

// Pool returns the account Transfer draws from.
func (v *Vault) Pool() domain.Account {
	return v.pool
}

// Assets lists registered tokens sorted by address.
func (v *Vault) Assets() []domain.Asset {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]domain.Asset, 0, len(v.tokens))
	for a := range v.tokens {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}

// Transfer implements ports.TokenTransferer.
func (v *Vault) Transfer(ctx context.Context, asset domain.Asset, to domain.Account, amount *uint256.Int) (bool, error) {
	return v.move(ctx, asset, v.pool, to, amount)
}

// TransferFrom implements ports.TokenTransferer.
func (v *Vault) TransferFrom(ctx context.Context, asset domain.Asset, from, to domain.Account, amount *uint256.Int) (bool, error) {
	return v.move(ctx, asset, from, to, amount)
}

// Decimals implements ports.TokenTransferer.
func (v *Vault) Decimals(ctx context.Context, asset domain.Asset) (uint8, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := v.tokens[asset]
	if !ok {
		return 0, fmt.Errorf("decimals %s: %w", asset.Hex(), ErrUnknownToken)
	}
	return t.decimals, nil
}

func (v *Vault) move(ctx context.Context, asset domain.Asset, from, to domain.Account, amount *uint256.Int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	t, ok := v.tokens[asset]
	if !ok {
		return false, fmt.Errorf("transfer %s: %w", asset.Hex(), ErrUnknownToken)
	}
	bal := wad.OrZero(t.balances[from])
	if bal.Lt(amount) {
		v.log.Debug().
			Str("asset", asset.Hex()).
			Str("from", from.Hex()).
			Str("balance", bal.Dec()).
			Str("amount", amount.Dec()).
			Msg("custody transfer rejected: insufficient balance")
		return false, nil
	}
	if from == to || amount.IsZero() {
		return true, nil
	}

	credited, err := wad.Add(wad.OrZero(t.balances[to]), amount)
	if err != nil {
		return false, fmt.Errorf("transfer %s: %w", asset.Hex(), err)
	}
	t.balances[from] = new(uint256.Int).Sub(bal, amount)
	t.balances[to] = credited
	return true, nil
}
