package handler

import (
	"strconv"

	"palma-lending/internal/adapter/http/dto"
	"palma-lending/internal/core/ports"
	"palma-lending/pkg/apperror"
	"palma-lending/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// AccountHandler serves read-only account queries.
type AccountHandler struct {
	lending ports.LendingService
	journal ports.EventJournal
}

// NewAccountHandler creates a new AccountHandler. A nil journal disables
// the events route.
func NewAccountHandler(lending ports.LendingService, journal ports.EventJournal) *AccountHandler {
	return &AccountHandler{lending: lending, journal: journal}
}

// Summary handles GET /api/v1/accounts/:account.
func (h *AccountHandler) Summary(c *gin.Context) {
	account, err := dto.ParseAddress("account", c.Param("account"))
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.lending.AccountSummary(c.Request.Context(), account)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewAccountSummaryResponse(summary))
}

// Position handles GET /api/v1/accounts/:account/assets/:asset.
func (h *AccountHandler) Position(c *gin.Context) {
	account, err := dto.ParseAddress("account", c.Param("account"))
	if err != nil {
		response.Error(c, err)
		return
	}
	asset, err := dto.ParseAddress("asset", c.Param("asset"))
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	response.OK(c, dto.AssetPositionResponse{
		Account: account.Hex(),
		Asset:   asset.Hex(),
		Deposit: h.lending.AccountToTokenDeposits(ctx, account, asset).Dec(),
		Borrow:  h.lending.AccountToTokenBorrows(ctx, account, asset).Dec(),
	})
}

// Events handles GET /api/v1/accounts/:account/events?limit=N, newest first.
func (h *AccountHandler) Events(c *gin.Context) {
	account, err := dto.ParseAddress("account", c.Param("account"))
	if err != nil {
		response.Error(c, err)
		return
	}

	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxEventLimit {
			response.Error(c, apperror.Validation("limit must be between 1 and 500"))
			return
		}
		limit = n
	}

	events, err := h.journal.ListByAccount(c.Request.Context(), account, limit)
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}
	response.OK(c, dto.NewEventList(events))
}
