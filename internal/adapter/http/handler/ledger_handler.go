package handler

import (
	"palma-lending/internal/adapter/http/dto"
	"palma-lending/internal/adapter/http/middleware"
	"palma-lending/internal/core/domain"
	"palma-lending/internal/core/ports"
	"palma-lending/pkg/apperror"
	"palma-lending/pkg/response"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// LedgerHandler handles the state-changing ledger operations. The acting
// account is always the token subject.
type LedgerHandler struct {
	lending ports.LendingService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(lending ports.LendingService) *LedgerHandler {
	return &LedgerHandler{lending: lending}
}

// Deposit handles POST /api/v1/deposits.
func (h *LedgerHandler) Deposit(c *gin.Context) {
	account, ok := caller(c)
	if !ok {
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	event, err := h.lending.Deposit(c.Request.Context(), ports.DepositRequest{
		Account: account,
		Asset:   common.HexToAddress(req.Asset),
		Amount:  amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewEventResponse(event))
}

// Withdraw handles POST /api/v1/withdrawals.
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	account, ok := caller(c)
	if !ok {
		return
	}

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	event, err := h.lending.Withdraw(c.Request.Context(), ports.WithdrawRequest{
		Account:         account,
		CollateralAsset: common.HexToAddress(req.CollateralAsset),
		DebtAsset:       common.HexToAddress(req.DebtAsset),
		Amount:          amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewEventResponse(event))
}

// Borrow handles POST /api/v1/borrows.
func (h *LedgerHandler) Borrow(c *gin.Context) {
	account, ok := caller(c)
	if !ok {
		return
	}

	var req dto.BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	event, err := h.lending.Borrow(c.Request.Context(), ports.BorrowRequest{
		Account:         account,
		CollateralAsset: common.HexToAddress(req.CollateralAsset),
		DebtAsset:       common.HexToAddress(req.DebtAsset),
		Amount:          amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewEventResponse(event))
}

// Repay handles POST /api/v1/repayments.
func (h *LedgerHandler) Repay(c *gin.Context) {
	account, ok := caller(c)
	if !ok {
		return
	}

	var req dto.RepayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	event, err := h.lending.Repay(c.Request.Context(), ports.RepayRequest{
		Account: account,
		Asset:   common.HexToAddress(req.Asset),
		Amount:  amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewEventResponse(event))
}

// Liquidate handles POST /api/v1/liquidations. The caller is the liquidator.
func (h *LedgerHandler) Liquidate(c *gin.Context) {
	account, ok := caller(c)
	if !ok {
		return
	}

	var req dto.LiquidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	event, err := h.lending.Liquidate(c.Request.Context(), ports.LiquidateRequest{
		Liquidator:      account,
		Target:          common.HexToAddress(req.Target),
		CollateralAsset: common.HexToAddress(req.CollateralAsset),
		DebtAsset:       common.HexToAddress(req.DebtAsset),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewEventResponse(event))
}

// caller returns the authenticated account, writing a 401 when absent.
func caller(c *gin.Context) (domain.Account, bool) {
	account, ok := middleware.AccountFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
	}
	return account, ok
}
