package domain

import (
	"github.com/ethereum/go-ethereum/common"
)

// Account identifies a ledger participant. The zero address is a valid but
// unusual handle; callers validate format at the transport boundary.
type Account = common.Address

// Asset identifies a fungible token by its contract address.
type Asset = common.Address

// TokenInfo describes a token known to the registry.
type TokenInfo struct {
	Asset    Asset  `json:"asset"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Allowed  bool   `json:"allowed"`
}

// ParseAddress parses a 0x-prefixed hex address. It reports false for
// anything that is not exactly 20 bytes of hex.
func ParseAddress(s string) (common.Address, bool) {
	if !common.IsHexAddress(s) {
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}
