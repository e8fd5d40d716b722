package dto

import (
	"regexp"

	"palma-lending/internal/core/domain"
	"palma-lending/pkg/apperror"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/holiman/uint256"
)

// maxAmountDigits is the width of 2^256-1 in base 10.
const maxAmountDigits = 78

var amountRe = regexp.MustCompile(`^[0-9]+$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("amount", validateAmount)
	}
}

// validateAmount accepts unsigned base-10 integers. Zero is accepted here
// and rejected by the ledger with its own error code.
func validateAmount(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return len(s) <= maxAmountDigits && amountRe.MatchString(s)
}

// ParseAmount converts a validated amount string to a 256-bit integer.
func ParseAmount(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, apperror.Validation("amount must be an unsigned integer below 2^256")
	}
	return v, nil
}

// ParseAddress converts a hex path or body value to an address.
func ParseAddress(field, s string) (domain.Account, error) {
	a, ok := domain.ParseAddress(s)
	if !ok {
		return a, apperror.Validation(field + " must be a 0x-prefixed 20-byte hex address")
	}
	return a, nil
}
