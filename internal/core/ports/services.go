package ports

import (
	"context"
	"time"

	"palma-lending/internal/core/domain"

	"github.com/holiman/uint256"
)

//go:generate mockgen -source=services.go -destination=mocks/services_mock.go -package=mocks

// Roles carried in access tokens.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(account domain.Account, role string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Account domain.Account
	Role    string
}

// LendingService is the ledger's public operation and query surface.
type LendingService interface {
	Deposit(ctx context.Context, req DepositRequest) (*domain.Event, error)
	Withdraw(ctx context.Context, req WithdrawRequest) (*domain.Event, error)
	Borrow(ctx context.Context, req BorrowRequest) (*domain.Event, error)
	Repay(ctx context.Context, req RepayRequest) (*domain.Event, error)
	Liquidate(ctx context.Context, req LiquidateRequest) (*domain.Event, error)

	// Queries observe committed state. Called from inside an operation's
	// collaborator (same context chain) they observe that operation's
	// applied mutations instead of blocking.
	AccountToTokenDeposits(ctx context.Context, account domain.Account, asset domain.Asset) *uint256.Int
	AccountToTokenBorrows(ctx context.Context, account domain.Account, asset domain.Asset) *uint256.Int
	ProtocolEarnings(ctx context.Context, asset domain.Asset) *uint256.Int
	AllowedTokens(ctx context.Context, asset domain.Asset) bool
	AccountHealth(ctx context.Context, account domain.Account) (domain.AccountHealth, error)
	AccountSummary(ctx context.Context, account domain.Account) (*AccountSummary, error)
	Tokens(ctx context.Context) ([]TokenStatus, error)

	SetAllowedToken(ctx context.Context, asset domain.Asset, allowed bool) error
}

// DepositRequest holds validated input for a deposit.
type DepositRequest struct {
	Account domain.Account
	Asset   domain.Asset
	Amount  *uint256.Int
}

// WithdrawRequest holds validated input for a withdrawal. DebtAsset names
// the borrow used for the secondary coverage check.
type WithdrawRequest struct {
	Account         domain.Account
	CollateralAsset domain.Asset
	DebtAsset       domain.Asset
	Amount          *uint256.Int
}

// BorrowRequest holds validated input for a borrow.
type BorrowRequest struct {
	Account         domain.Account
	CollateralAsset domain.Asset
	DebtAsset       domain.Asset
	Amount          *uint256.Int
}

// RepayRequest holds validated input for a repayment.
type RepayRequest struct {
	Account domain.Account
	Asset   domain.Asset
	Amount  *uint256.Int
}

// LiquidateRequest holds validated input for a liquidation.
type LiquidateRequest struct {
	Liquidator      domain.Account
	Target          domain.Account
	CollateralAsset domain.Asset
	DebtAsset       domain.Asset
}

// AccountSummary is an account's positions with its current health.
type AccountSummary struct {
	Account   domain.Account
	Positions domain.Positions
	Health    domain.AccountHealth
}

// TokenStatus pairs registry metadata with accumulated earnings.
type TokenStatus struct {
	domain.TokenInfo
	ProtocolEarnings *uint256.Int
}
