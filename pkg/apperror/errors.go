package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Is reports whether err is (or wraps) an AppError carrying code.
func Is(err error, code string) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}

// Stable error codes. Clients branch on these, never on messages.
const (
	CodeZeroAmount       = "VAL_001"
	CodeZeroBorrowAmount = "VAL_002"
	CodeTokenNotAllowed  = "VAL_003"
	CodeValidation       = "VAL_004"

	CodePlatformWillGoInsolvent  = "SOLV_001"
	CodeBorrowLesserAmount       = "SOLV_002"
	CodeWithdrawLesserAmount     = "SOLV_003"
	CodeNotEnoughFundsToWithdraw = "SOLV_004"

	CodeAccountCannotBeLiquidated = "LIQ_001"
	CodeLiquidationForbidden      = "LIQ_002"

	CodeOracleUnavailable        = "EXT_001"
	CodeTransferFailed           = "EXT_002"
	CodeTokenMetadataUnavailable = "EXT_003"

	CodeInvalidToken = "AUTH_001"
	CodeForbidden    = "AUTH_002"

	CodeRateLimitExceeded = "RATE_001"

	CodeRequestInFlight = "IDEM_001"

	CodeInternal           = "SYS_001"
	CodeReentrantCall      = "SYS_002"
	CodeArithmeticOverflow = "SYS_003"
)

// ---- Input Validation (VAL) ----

func ErrZeroAmount() *AppError {
	return New(CodeZeroAmount, "Amount must be greater than zero", http.StatusBadRequest)
}

func ErrZeroBorrowAmount() *AppError {
	return New(CodeZeroBorrowAmount, "Borrow amount is below one whole token", http.StatusBadRequest)
}

func ErrTokenNotAllowed(asset string) *AppError {
	return New(CodeTokenNotAllowed, fmt.Sprintf("Token %s is not allowed", asset), http.StatusBadRequest)
}

// Validation returns a VAL_004 request validation error.
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

// ---- Solvency Gating (SOLV) ----

func ErrPlatformWillGoInsolvent() *AppError {
	return New(CodePlatformWillGoInsolvent, "Operation would leave the account below the minimum health factor", http.StatusUnprocessableEntity)
}

func ErrBorrowLesserAmount() *AppError {
	return New(CodeBorrowLesserAmount, "Borrow a lesser amount", http.StatusUnprocessableEntity)
}

func ErrWithdrawLesserAmount() *AppError {
	return New(CodeWithdrawLesserAmount, "Withdraw a lesser amount", http.StatusUnprocessableEntity)
}

func ErrNotEnoughFundsToWithdraw() *AppError {
	return New(CodeNotEnoughFundsToWithdraw, "Not enough deposited funds to withdraw", http.StatusUnprocessableEntity)
}

// ---- Liquidation Gating (LIQ) ----

func ErrAccountCannotBeLiquidated() *AppError {
	return New(CodeAccountCannotBeLiquidated, "Account health factor is above the liquidation threshold", http.StatusConflict)
}

func ErrLiquidationForbidden() *AppError {
	return New(CodeLiquidationForbidden, "Liquidation reward is below the minimum", http.StatusUnprocessableEntity)
}

// ---- Collaborator Failure (EXT) ----

func ErrOracleUnavailable(err error) *AppError {
	return Wrap(CodeOracleUnavailable, "Price oracle unavailable", http.StatusServiceUnavailable, err)
}

func ErrTransferFailed(err error) *AppError {
	return Wrap(CodeTransferFailed, "Token transfer failed", http.StatusBadGateway, err)
}

func ErrTokenMetadataUnavailable(err error) *AppError {
	return Wrap(CodeTokenMetadataUnavailable, "Token metadata unavailable", http.StatusBadGateway, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New(CodeForbidden, "Insufficient role for this operation", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimitExceeded, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- Idempotency (IDEM) ----

func ErrRequestInFlight() *AppError {
	return New(CodeRequestInFlight, "A request with this Idempotency-Key is still in progress", http.StatusConflict)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

func ErrReentrantCall() *AppError {
	return New(CodeReentrantCall, "Reentrant call rejected", http.StatusConflict)
}

func ErrArithmeticOverflow(err error) *AppError {
	return Wrap(CodeArithmeticOverflow, "Arithmetic overflow", http.StatusUnprocessableEntity, err)
}
