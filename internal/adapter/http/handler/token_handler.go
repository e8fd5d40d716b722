package handler

import (
	"palma-lending/internal/adapter/http/dto"
	"palma-lending/internal/core/ports"
	"palma-lending/pkg/apperror"
	"palma-lending/pkg/response"

	"github.com/gin-gonic/gin"
)

// TokenHandler serves the token listing and the admin allowlist toggle.
type TokenHandler struct {
	lending ports.LendingService
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(lending ports.LendingService) *TokenHandler {
	return &TokenHandler{lending: lending}
}

// List handles GET /api/v1/tokens.
func (h *TokenHandler) List(c *gin.Context) {
	tokens, err := h.lending.Tokens(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewTokenList(tokens))
}

// SetAllowed handles PUT /api/v1/admin/tokens/:asset.
func (h *TokenHandler) SetAllowed(c *gin.Context) {
	asset, err := dto.ParseAddress("asset", c.Param("asset"))
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.SetAllowedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.lending.SetAllowedToken(c.Request.Context(), asset, *req.Allowed); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{
		"asset":   asset.Hex(),
		"allowed": *req.Allowed,
	})
}
