package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"palma-lending/internal/core/domain"
	"palma-lending/internal/core/ports"
	"palma-lending/internal/ledger"
	"palma-lending/pkg/apperror"
	"palma-lending/pkg/wad"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
)

// inFlightKey marks a context derived inside a running operation.
type inFlightKey struct{}

// LendingServiceImpl implements ports.LendingService.
//
// Operations run one at a time under a write lock. Each applies its balance
// changes to a ledger transaction first, then calls the token collaborator,
// and commits only when every transfer succeeded. The resulting event is
// published after the lock is released, so slow sinks never stall queries.
type LendingServiceImpl struct {
	mu          sync.RWMutex
	book        *ledger.Book
	tokens      *TokenRegistry
	health      *HealthCalculator
	liquidation *LiquidationEngine
	transferer  ports.TokenTransferer
	publisher   ports.EventPublisher
	pool        domain.Account
	params      domain.RiskParams
	log         zerolog.Logger
}

// NewLendingService creates a new LendingServiceImpl. pool is the account
// that custodies deposited funds.
func NewLendingService(
	book *ledger.Book,
	tokens *TokenRegistry,
	health *HealthCalculator,
	liquidation *LiquidationEngine,
	transferer ports.TokenTransferer,
	publisher ports.EventPublisher,
	pool domain.Account,
	params domain.RiskParams,
	log zerolog.Logger,
) *LendingServiceImpl {
	return &LendingServiceImpl{
		book:        book,
		tokens:      tokens,
		health:      health,
		liquidation: liquidation,
		transferer:  transferer,
		publisher:   publisher,
		pool:        pool,
		params:      params,
		log:         log,
	}
}

// Deposit credits the account's deposit and pulls the tokens into the pool.
func (s *LendingServiceImpl) Deposit(ctx context.Context, req ports.DepositRequest) (*domain.Event, error) {
	return s.run(ctx, func(ctx context.Context) (*domain.Event, error) { return s.deposit(ctx, req) })
}

func (s *LendingServiceImpl) deposit(ctx context.Context, req ports.DepositRequest) (*domain.Event, error) {
	if isZero(req.Amount) {
		return nil, s.reject("deposit", apperror.ErrZeroAmount())
	}
	if err := s.requireAllowed("deposit", req.Asset); err != nil {
		return nil, err
	}

	tx := s.book.Begin()
	defer tx.Rollback()

	if err := tx.CreditDeposit(req.Account, req.Asset, req.Amount); err != nil {
		return nil, arithmetic(err)
	}
	if err := s.pull(ctx, req.Asset, req.Account, req.Amount); err != nil {
		return nil, err
	}
	tx.Commit()

	return domain.NewEvent(domain.EventDeposit, req.Account, req.Asset, req.Amount), nil
}

// Withdraw debits the account's deposit and sends the tokens back.
func (s *LendingServiceImpl) Withdraw(ctx context.Context, req ports.WithdrawRequest) (*domain.Event, error) {
	return s.run(ctx, func(ctx context.Context) (*domain.Event, error) { return s.withdraw(ctx, req) })
}

func (s *LendingServiceImpl) withdraw(ctx context.Context, req ports.WithdrawRequest) (*domain.Event, error) {
	if isZero(req.Amount) {
		return nil, s.reject("withdraw", apperror.ErrZeroAmount())
	}
	if err := s.requireAllowed("withdraw", req.CollateralAsset); err != nil {
		return nil, err
	}

	positions := s.book.Positions(req.Account)
	deposited := positions.Deposit(req.CollateralAsset)
	if deposited.Lt(req.Amount) {
		return nil, s.reject("withdraw", apperror.ErrNotEnoughFundsToWithdraw())
	}

	change := domain.PositionChange{
		Asset:   req.CollateralAsset,
		Deposit: new(uint256.Int).Sub(deposited, req.Amount),
	}

	// The collateral/debt pair must stay healthy if it was healthy before.
	if !positions.Borrow(req.DebtAsset).IsZero() {
		before, err := s.health.PairHealth(ctx, positions, req.CollateralAsset, req.DebtAsset)
		if err != nil {
			return nil, err
		}
		if !before.Below(s.params.MinHealthFactor) {
			after, err := s.health.PairHealth(ctx, positions.Apply(change), req.CollateralAsset, req.DebtAsset)
			if err != nil {
				return nil, err
			}
			if after.Below(s.params.MinHealthFactor) {
				return nil, s.reject("withdraw", apperror.ErrWithdrawLesserAmount())
			}
		}
	}

	after, err := s.health.Hypothetical(ctx, positions, change)
	if err != nil {
		return nil, err
	}
	if after.Below(s.params.MinHealthFactor) {
		return nil, s.reject("withdraw", apperror.ErrPlatformWillGoInsolvent())
	}

	tx := s.book.Begin()
	defer tx.Rollback()

	if err := tx.DebitDeposit(req.Account, req.CollateralAsset, req.Amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit deposit: %w", err))
	}
	if err := s.send(ctx, req.CollateralAsset, req.Account, req.Amount); err != nil {
		return nil, err
	}
	tx.Commit()

	return domain.NewEvent(domain.EventWithdraw, req.Account, req.CollateralAsset, req.Amount), nil
}

// Borrow records new debt and sends the borrowed tokens to the account.
func (s *LendingServiceImpl) Borrow(ctx context.Context, req ports.BorrowRequest) (*domain.Event, error) {
	return s.run(ctx, func(ctx context.Context) (*domain.Event, error) { return s.borrow(ctx, req) })
}

func (s *LendingServiceImpl) borrow(ctx context.Context, req ports.BorrowRequest) (*domain.Event, error) {
	if isZero(req.Amount) {
		return nil, s.reject("borrow", apperror.ErrZeroAmount())
	}
	if err := s.requireAllowed("borrow", req.DebtAsset, req.CollateralAsset); err != nil {
		return nil, err
	}

	decimals, err := s.tokens.Decimals(ctx, req.DebtAsset)
	if err != nil {
		return nil, err
	}
	wholeUnits := new(uint256.Int).Div(req.Amount, wad.Pow10(decimals))
	if wholeUnits.Lt(s.params.MinBorrowUnits) {
		return nil, s.reject("borrow", apperror.ErrZeroBorrowAmount())
	}

	positions := s.book.Positions(req.Account)
	newBorrow, err := wad.Add(positions.Borrow(req.DebtAsset), req.Amount)
	if err != nil {
		return nil, arithmetic(err)
	}
	after, err := s.health.Hypothetical(ctx, positions, domain.PositionChange{
		Asset:  req.DebtAsset,
		Borrow: newBorrow,
	})
	if err != nil {
		return nil, err
	}
	if after.Below(s.params.MinHealthFactor) {
		return nil, s.reject("borrow", apperror.ErrBorrowLesserAmount())
	}

	tx := s.book.Begin()
	defer tx.Rollback()

	if err := tx.CreditBorrow(req.Account, req.DebtAsset, req.Amount); err != nil {
		return nil, arithmetic(err)
	}
	if err := s.send(ctx, req.DebtAsset, req.Account, req.Amount); err != nil {
		return nil, err
	}
	tx.Commit()

	return domain.NewEvent(domain.EventBorrow, req.Account, req.DebtAsset, req.Amount), nil
}

// Repay clears up to amount of the account's debt and pulls only the
// cleared amount from the account.
func (s *LendingServiceImpl) Repay(ctx context.Context, req ports.RepayRequest) (*domain.Event, error) {
	return s.run(ctx, func(ctx context.Context) (*domain.Event, error) { return s.repay(ctx, req) })
}

func (s *LendingServiceImpl) repay(ctx context.Context, req ports.RepayRequest) (*domain.Event, error) {
	if isZero(req.Amount) {
		return nil, s.reject("repay", apperror.ErrZeroAmount())
	}
	if err := s.requireAllowed("repay", req.Asset); err != nil {
		return nil, err
	}

	tx := s.book.Begin()
	defer tx.Rollback()

	cleared, err := tx.ClearBorrow(req.Account, req.Asset, req.Amount)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("clear borrow: %w", err))
	}
	if !cleared.IsZero() {
		if err := s.pull(ctx, req.Asset, req.Account, cleared); err != nil {
			return nil, err
		}
	}
	tx.Commit()

	return domain.NewEvent(domain.EventRepay, req.Account, req.Asset, cleared), nil
}

// Liquidate repays part of target's debt on behalf of the liquidator and
// hands the liquidator the seized collateral minus the protocol cut.
func (s *LendingServiceImpl) Liquidate(ctx context.Context, req ports.LiquidateRequest) (*domain.Event, error) {
	return s.run(ctx, func(ctx context.Context) (*domain.Event, error) { return s.liquidate(ctx, req) })
}

func (s *LendingServiceImpl) liquidate(ctx context.Context, req ports.LiquidateRequest) (*domain.Event, error) {
	if err := s.requireAllowed("liquidate", req.DebtAsset, req.CollateralAsset); err != nil {
		return nil, err
	}

	plan, err := s.liquidation.Plan(ctx, req.Target, req.Liquidator, req.CollateralAsset, req.DebtAsset, s.book.Positions(req.Target))
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.HTTPStatus < 500 {
			return nil, s.reject("liquidate", err)
		}
		return nil, err
	}

	tx := s.book.Begin()
	defer tx.Rollback()

	if err := tx.DebitDeposit(plan.Target, plan.CollateralAsset, plan.Seized); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit seized collateral: %w", err))
	}
	if _, err := tx.ClearBorrow(plan.Target, plan.DebtAsset, plan.DebtRepaid); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("clear repaid debt: %w", err))
	}
	if err := tx.CreditEarnings(plan.CollateralAsset, plan.ProtocolCut); err != nil {
		return nil, arithmetic(err)
	}

	if err := s.pull(ctx, plan.DebtAsset, plan.Liquidator, plan.DebtRepaid); err != nil {
		return nil, err
	}
	if err := s.send(ctx, plan.CollateralAsset, plan.Liquidator, plan.Reward); err != nil {
		if refundErr := s.send(ctx, plan.DebtAsset, plan.Liquidator, plan.DebtRepaid); refundErr != nil {
			s.log.Error().
				Err(refundErr).
				Str("liquidator", plan.Liquidator.Hex()).
				Str("asset", plan.DebtAsset.Hex()).
				Str("amount", plan.DebtRepaid.Dec()).
				Msg("failed to return liquidation repayment after reward transfer failed")
		}
		return nil, err
	}
	tx.Commit()

	target, debtAsset := plan.Target, plan.DebtAsset
	event := domain.NewEvent(domain.EventLiquidate, plan.Liquidator, plan.CollateralAsset, plan.Seized)
	event.Target = &target
	event.DebtAsset = &debtAsset
	event.DebtRepaid = plan.DebtRepaid.Clone()
	event.ProtocolCut = plan.ProtocolCut.Clone()

	s.log.Debug().
		Str("liquidator", plan.Liquidator.Hex()).
		Str("target", plan.Target.Hex()).
		Str("debt_repaid", plan.DebtRepaid.Dec()).
		Str("seized", plan.Seized.Dec()).
		Str("reward_usd", plan.RewardUSD.Dec()).
		Msg("account liquidated")

	return event, nil
}

// AccountToTokenDeposits returns the account's deposit of asset.
func (s *LendingServiceImpl) AccountToTokenDeposits(ctx context.Context, account domain.Account, asset domain.Asset) *uint256.Int {
	defer s.read(ctx)()
	return s.book.Deposit(account, asset)
}

// AccountToTokenBorrows returns the account's borrow of asset.
func (s *LendingServiceImpl) AccountToTokenBorrows(ctx context.Context, account domain.Account, asset domain.Asset) *uint256.Int {
	defer s.read(ctx)()
	return s.book.Borrow(account, asset)
}

// ProtocolEarnings returns the protocol's accumulated cut of asset.
func (s *LendingServiceImpl) ProtocolEarnings(ctx context.Context, asset domain.Asset) *uint256.Int {
	defer s.read(ctx)()
	return s.book.Earnings(asset)
}

// AllowedTokens reports the allow flag of asset.
func (s *LendingServiceImpl) AllowedTokens(ctx context.Context, asset domain.Asset) bool {
	defer s.read(ctx)()
	return s.tokens.IsAllowed(asset)
}

// AccountHealth computes the account's current health at live prices.
func (s *LendingServiceImpl) AccountHealth(ctx context.Context, account domain.Account) (domain.AccountHealth, error) {
	defer s.read(ctx)()
	return s.health.Health(ctx, s.book.Positions(account))
}

// AccountSummary returns positions and health in one consistent snapshot.
func (s *LendingServiceImpl) AccountSummary(ctx context.Context, account domain.Account) (*ports.AccountSummary, error) {
	defer s.read(ctx)()

	positions := s.book.Positions(account)
	health, err := s.health.Health(ctx, positions)
	if err != nil {
		return nil, err
	}
	return &ports.AccountSummary{
		Account:   account,
		Positions: positions,
		Health:    health,
	}, nil
}

// Tokens lists registered tokens with their protocol earnings.
func (s *LendingServiceImpl) Tokens(ctx context.Context) ([]ports.TokenStatus, error) {
	defer s.read(ctx)()

	infos := s.tokens.Tokens(ctx)
	out := make([]ports.TokenStatus, 0, len(infos))
	for _, info := range infos {
		out = append(out, ports.TokenStatus{
			TokenInfo:        info,
			ProtocolEarnings: s.book.Earnings(info.Asset),
		})
	}
	return out, nil
}

// SetAllowedToken toggles whether ledger operations accept asset.
func (s *LendingServiceImpl) SetAllowedToken(ctx context.Context, asset domain.Asset, allowed bool) error {
	_, release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	s.tokens.SetAllowed(asset, allowed)
	s.log.Info().Str("asset", asset.Hex()).Bool("allowed", allowed).Msg("token allow flag updated")
	return nil
}

// run executes op under the write lock and publishes its event once the
// lock is released. Sinks get a context that outlives the caller's, so a
// client that disconnects after commit does not cancel delivery.
func (s *LendingServiceImpl) run(ctx context.Context, op func(context.Context) (*domain.Event, error)) (*domain.Event, error) {
	opCtx, release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	event, err := func() (*domain.Event, error) {
		defer release()
		return op(opCtx)
	}()
	if err != nil {
		return nil, err
	}
	s.emit(context.WithoutCancel(ctx), event)
	return event, nil
}

// requireAllowed rejects the operation when any of assets is not allow-listed.
// Assets are checked in order, so the first offender is reported.
func (s *LendingServiceImpl) requireAllowed(op string, assets ...domain.Asset) error {
	for _, asset := range assets {
		if !s.tokens.IsAllowed(asset) {
			return s.reject(op, apperror.ErrTokenNotAllowed(asset.Hex()))
		}
	}
	return nil
}

// acquire takes the write lock and returns a context marked as in flight.
// A call arriving with an already marked context would deadlock, so it is
// rejected instead.
func (s *LendingServiceImpl) acquire(ctx context.Context) (context.Context, func(), error) {
	if ctx.Value(inFlightKey{}) == s {
		s.log.Warn().Msg("reentrant call rejected")
		return nil, nil, apperror.ErrReentrantCall()
	}
	s.mu.Lock()
	return context.WithValue(ctx, inFlightKey{}, s), s.mu.Unlock, nil
}

// read takes the read lock unless ctx belongs to the operation holding the
// write lock, in which case the caller already has exclusive access.
func (s *LendingServiceImpl) read(ctx context.Context) func() {
	if ctx.Value(inFlightKey{}) == s {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

// pull moves amount of asset from account into the pool.
func (s *LendingServiceImpl) pull(ctx context.Context, asset domain.Asset, from domain.Account, amount *uint256.Int) error {
	ok, err := s.transferer.TransferFrom(ctx, asset, from, s.pool, amount)
	return s.transferResult("transferFrom", asset, from, amount, ok, err)
}

// send moves amount of asset from the pool to account.
func (s *LendingServiceImpl) send(ctx context.Context, asset domain.Asset, to domain.Account, amount *uint256.Int) error {
	ok, err := s.transferer.Transfer(ctx, asset, to, amount)
	return s.transferResult("transfer", asset, to, amount, ok, err)
}

func (s *LendingServiceImpl) transferResult(op string, asset domain.Asset, account domain.Account, amount *uint256.Int, ok bool, err error) error {
	if err == nil && ok {
		return nil
	}
	if err == nil {
		err = errors.New("token returned false")
	}
	s.log.Warn().
		Err(err).
		Str("op", op).
		Str("asset", asset.Hex()).
		Str("account", account.Hex()).
		Str("amount", amount.Dec()).
		Msg("token transfer failed")
	return apperror.ErrTransferFailed(fmt.Errorf("%s %s: %w", op, asset.Hex(), err))
}

// emit publishes a committed event. Delivery failures are logged only; the
// operation has already taken effect.
func (s *LendingServiceImpl) emit(ctx context.Context, event *domain.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to publish ledger event")
	}
}

func (s *LendingServiceImpl) reject(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		s.log.Debug().Str("op", op).Str("code", appErr.Code).Msg("operation rejected")
	}
	return err
}

func isZero(amount *uint256.Int) bool {
	return amount == nil || amount.IsZero()
}
