package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/crossarb/internal/symbol"
)

// Classification buckets a scanned symbol by its net profit percentage.
type Classification string

const (
	// ClassificationExecutable means the spread clears the profit threshold.
	ClassificationExecutable Classification = "executable"
	// ClassificationLossAverting means the spread is negative enough that
	// holding the position would realize a loss beyond the loss threshold.
	ClassificationLossAverting Classification = "loss_averting"
	// ClassificationNeutral means the spread is too small either way to act on.
	ClassificationNeutral Classification = "neutral"
)

// Classify buckets netProfitPct against the configured thresholds.
// Both boundaries are inclusive: a spread exactly at the profit threshold is
// executable, and a loss exactly at the loss threshold is loss-averting.
func Classify(netProfitPct, profitThreshold, lossThreshold decimal.Decimal) Classification {
	switch {
	case netProfitPct.GreaterThanOrEqual(profitThreshold):
		return ClassificationExecutable
	case netProfitPct.LessThanOrEqual(lossThreshold.Neg()):
		return ClassificationLossAverting
	default:
		return ClassificationNeutral
	}
}

// Quote pairs an exchange with the price it quoted for a symbol.
type Quote struct {
	ExchangeID string
	Price      decimal.Decimal
}

// Opportunity is the best buy/sell pairing found for one symbol in one cycle.
// Buy is the exchange quoting the lowest price, Sell the highest; on a tie the
// exchange listed first in configuration wins.
type Opportunity struct {
	Timestamp      time.Time
	Symbol         symbol.Symbol
	OrderSize      decimal.Decimal
	Buy            Quote
	Sell           Quote
	Profit         ProfitResult
	Classification Classification
}

// Executable reports whether this opportunity should be handed to the executor.
func (o *Opportunity) Executable() bool {
	return o.Classification == ClassificationExecutable
}
