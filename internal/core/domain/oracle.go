package domain

import (
	"math/big"
	"time"

	"github.com/holiman/uint256"
)

// RoundData mirrors an aggregator's latest round. Answer is signed because
// feeds may report zero or negative values, which consumers must reject.
type RoundData struct {
	RoundID         uint64
	Answer          *big.Int
	StartedAt       time.Time
	UpdatedAt       time.Time
	AnsweredInRound uint64
}

// PriceSample is a validated USD price normalized to 8 decimals.
type PriceSample struct {
	Asset     Asset
	Price     *uint256.Int
	RoundID   uint64
	StartedAt time.Time
	UpdatedAt time.Time
}
