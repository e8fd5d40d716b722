package service

import (
	"context"
	"sync"
	"testing"

	"palma-lending/internal/adapter/custody"
	"palma-lending/internal/core/domain"
	"palma-lending/internal/core/ports"
	"palma-lending/internal/ledger"
	"palma-lending/pkg/apperror"
	"palma-lending/pkg/wad"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var (
	pool  = common.HexToAddress("0x000000000000000000000000000000000000b0b0")
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol = common.HexToAddress("0x00000000000000000000000000000000000ca401")

	usdc = common.HexToAddress("0x0000000000000000000000000000000000001001")
	usdt = common.HexToAddress("0x0000000000000000000000000000000000001002")
	dai  = common.HexToAddress("0x0000000000000000000000000000000000001003")
	weth = common.HexToAddress("0x0000000000000000000000000000000000001004")
)

// units returns n whole tokens of a 6-decimal asset.
func units(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1_000_000))
}

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func usd(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), wad.USD)
}

// priceBoard is a settable PriceOracleV1.
type priceBoard struct {
	mu     sync.Mutex
	prices map[domain.Asset]*uint256.Int
}

func newPriceBoard() *priceBoard {
	return &priceBoard{prices: make(map[domain.Asset]*uint256.Int)}
}

func (p *priceBoard) set(asset domain.Asset, dollars uint64) {
	p.setRaw(asset, usd(dollars))
}

func (p *priceBoard) setRaw(asset domain.Asset, price *uint256.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[asset] = price
}

func (p *priceBoard) drop(asset domain.Asset) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.prices, asset)
}

func (p *priceBoard) LatestPrice(_ context.Context, asset domain.Asset) (domain.PriceSample, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	price, ok := p.prices[asset]
	if !ok {
		return domain.PriceSample{}, apperror.ErrOracleUnavailable(nil)
	}
	return domain.PriceSample{Asset: asset, Price: price.Clone(), RoundID: 1}, nil
}

// recorder captures published events.
type recorder struct {
	mu     sync.Mutex
	events []*domain.Event
}

func (r *recorder) Publish(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) all() []*domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.Event(nil), r.events...)
}

type harness struct {
	svc      *LendingServiceImpl
	book     *ledger.Book
	vault    *custody.Vault
	prices   *priceBoard
	registry *TokenRegistry
	events   *recorder
	params   domain.RiskParams
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	transferer func(*custody.Vault) ports.TokenTransferer
	publisher  ports.EventPublisher
	log        zerolog.Logger
}

func withTransferer(f func(*custody.Vault) ports.TokenTransferer) harnessOption {
	return func(c *harnessConfig) { c.transferer = f }
}

func withPublisher(p ports.EventPublisher) harnessOption {
	return func(c *harnessConfig) { c.publisher = p }
}

func withLogger(log zerolog.Logger) harnessOption {
	return func(c *harnessConfig) { c.log = log }
}

// newHarness wires the service over an in-memory vault holding the
// four-token fixture: USDC, USDT and DAI with 6 decimals at $10, WETH with
// 18 decimals at $2000. USDC and USDT are allowed.
func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	h := &harness{
		book:   ledger.NewBook(),
		vault:  custody.NewVault(pool, zerolog.Nop()),
		prices: newPriceBoard(),
		events: &recorder{},
		params: domain.DefaultRiskParams(),
	}
	cfg := harnessConfig{
		transferer: func(v *custody.Vault) ports.TokenTransferer { return v },
		publisher:  h.events,
		log:        zerolog.Nop(),
	}
	for _, o := range opts {
		o(&cfg)
	}

	for _, tok := range []struct {
		asset    domain.Asset
		decimals uint8
		price    uint64
	}{
		{usdc, 6, 10},
		{usdt, 6, 10},
		{dai, 6, 10},
		{weth, 18, 2000},
	} {
		h.vault.AddToken(tok.asset, tok.decimals)
		h.prices.set(tok.asset, tok.price)
		whole := wad.Pow10(tok.decimals)
		for _, acct := range []domain.Account{alice, bob, carol} {
			require.NoError(t, h.vault.Mint(tok.asset, acct, new(uint256.Int).Mul(whole, u(1_000_000))))
		}
		require.NoError(t, h.vault.Mint(tok.asset, pool, new(uint256.Int).Mul(whole, u(1_000_000))))
	}

	h.registry = NewTokenRegistry(h.vault, zerolog.Nop())
	h.registry.Register(usdc, "USDC", true)
	h.registry.Register(usdt, "USDT", true)
	h.registry.Register(dai, "DAI", false)
	h.registry.Register(weth, "WETH", false)

	health := NewHealthCalculator(h.prices, h.registry, h.params)
	engine := NewLiquidationEngine(health, h.prices, h.registry, h.params)
	h.svc = NewLendingService(h.book, h.registry, health, engine, cfg.transferer(h.vault), cfg.publisher, pool, h.params, cfg.log)
	return h
}

func (h *harness) deposit(t *testing.T, acct domain.Account, asset domain.Asset, amount *uint256.Int) {
	t.Helper()
	_, err := h.svc.Deposit(context.Background(), ports.DepositRequest{Account: acct, Asset: asset, Amount: amount})
	require.NoError(t, err)
}

func (h *harness) borrow(t *testing.T, acct domain.Account, collateral, debt domain.Asset, amount *uint256.Int) {
	t.Helper()
	_, err := h.svc.Borrow(context.Background(), ports.BorrowRequest{
		Account: acct, CollateralAsset: collateral, DebtAsset: debt, Amount: amount,
	})
	require.NoError(t, err)
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, apperror.Is(err, code), "want %s, got %v", code, err)
}
