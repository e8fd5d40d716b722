// Package wad holds the fixed-point helpers shared by the ledger and the risk engine.
// All values are unsigned 256-bit integers; scaled quantities carry their scale in the name.
package wad

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// PriceDecimals is the scale of every normalized price and USD value (1e8).
const PriceDecimals = 8

var (
	// One is 1.0 in WAD (1e18) precision.
	One = uint256.NewInt(1_000_000_000_000_000_000)
	// USD is one dollar in the 1e8 price scale.
	USD = uint256.NewInt(100_000_000)
)

// ErrOverflow is returned when an intermediate or final value exceeds 256 bits.
var ErrOverflow = errors.New("wad: arithmetic overflow")

// ErrDivisionByZero is returned by MulDiv when the divisor is zero.
var ErrDivisionByZero = errors.New("wad: division by zero")

// Pow10 returns 10^n.
func Pow10(n uint8) *uint256.Int {
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(n)))
}

// MulDiv computes floor(x*y/d) with a 512-bit intermediate product.
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// MulDivUp computes ceil(x*y/d).
func MulDivUp(x, y, d *uint256.Int) (*uint256.Int, error) {
	z, err := MulDiv(x, y, d)
	if err != nil {
		return nil, err
	}
	if new(uint256.Int).MulMod(x, y, d).IsZero() {
		return z, nil
	}
	return Add(z, uint256.NewInt(1))
}

// MulWad computes floor(x*f/1e18).
func MulWad(x, f *uint256.Int) (*uint256.Int, error) {
	return MulDiv(x, f, One)
}

// Add returns x+y or ErrOverflow.
func Add(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// SubClamped returns x-y, or zero when y > x.
func SubClamped(x, y *uint256.Int) *uint256.Int {
	if y.Gt(x) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(x, y)
}

// Min returns a copy of the smaller of x and y.
func Min(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return x.Clone()
	}
	return y.Clone()
}

// OrZero returns v, or a fresh zero when v is nil.
func OrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

// ParseAmount parses a base-10 unsigned integer string.
func ParseAmount(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v, nil
}

// String renders v in base 10; nil renders as "0".
func String(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}
