package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"palma-lending/internal/core/domain"
	"palma-lending/internal/core/ports"
	"palma-lending/pkg/apperror"

	"github.com/rs/zerolog"
)

type tokenEntry struct {
	info          domain.TokenInfo
	decimalsKnown bool
}

// TokenRegistry tracks which assets may be deposited or borrowed and caches
// each token's decimal precision.
type TokenRegistry struct {
	mu     sync.RWMutex
	tokens map[domain.Asset]*tokenEntry
	meta   ports.TokenTransferer
	log    zerolog.Logger
}

// NewTokenRegistry creates an empty registry. Decimals are looked up through
// meta on first use.
func NewTokenRegistry(meta ports.TokenTransferer, log zerolog.Logger) *TokenRegistry {
	return &TokenRegistry{
		tokens: make(map[domain.Asset]*tokenEntry),
		meta:   meta,
		log:    log,
	}
}

// Register adds a token with its symbol and initial allow flag. Registering
// a known token updates its symbol and flag.
func (r *TokenRegistry) Register(asset domain.Asset, symbol string, allowed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entry(asset)
	e.info.Symbol = symbol
	e.info.Allowed = allowed
}

// IsAllowed reports whether asset may participate in gated operations.
func (r *TokenRegistry) IsAllowed(asset domain.Asset) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.tokens[asset]
	return ok && e.info.Allowed
}

// SetAllowed sets the allow flag. Unknown assets are registered without a symbol.
func (r *TokenRegistry) SetAllowed(asset domain.Asset, allowed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entry(asset).info.Allowed = allowed
}

// Decimals returns the token's decimal precision, fetching and caching it
// on first use.
func (r *TokenRegistry) Decimals(ctx context.Context, asset domain.Asset) (uint8, error) {
	r.mu.RLock()
	if e, ok := r.tokens[asset]; ok && e.decimalsKnown {
		d := e.info.Decimals
		r.mu.RUnlock()
		return d, nil
	}
	r.mu.RUnlock()

	d, err := r.meta.Decimals(ctx, asset)
	if err != nil {
		r.log.Warn().Err(err).Str("asset", asset.Hex()).Msg("token decimals lookup failed")
		return 0, apperror.ErrTokenMetadataUnavailable(fmt.Errorf("decimals of %s: %w", asset.Hex(), err))
	}

	r.mu.Lock()
	e := r.entry(asset)
	e.info.Decimals = d
	e.decimalsKnown = true
	r.mu.Unlock()

	return d, nil
}

// Tokens lists every known token ordered by address. Decimals that cannot
// be resolved are reported as zero.
func (r *TokenRegistry) Tokens(ctx context.Context) []domain.TokenInfo {
	r.mu.RLock()
	assets := make([]domain.Asset, 0, len(r.tokens))
	for a := range r.tokens {
		assets = append(assets, a)
	}
	r.mu.RUnlock()

	sort.Slice(assets, func(i, j int) bool {
		return bytes.Compare(assets[i][:], assets[j][:]) < 0
	})

	out := make([]domain.TokenInfo, 0, len(assets))
	for _, a := range assets {
		// Error already logged; the listing still shows the token.
		_, _ = r.Decimals(ctx, a)

		r.mu.RLock()
		out = append(out, r.tokens[a].info)
		r.mu.RUnlock()
	}
	return out
}

// entry returns the entry for asset, creating it. Callers hold the write lock.
func (r *TokenRegistry) entry(asset domain.Asset) *tokenEntry {
	e, ok := r.tokens[asset]
	if !ok {
		e = &tokenEntry{info: domain.TokenInfo{Asset: asset}}
		r.tokens[asset] = e
	}
	return e
}
