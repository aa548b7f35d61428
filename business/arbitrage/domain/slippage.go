package domain

import (
	"github.com/shopspring/decimal"
)

// SlippagePct returns the absolute deviation of observed from expected as a
// percentage of expected. A zero expected price yields zero deviation.
func SlippagePct(expected, observed decimal.Decimal) decimal.Decimal {
	if expected.IsZero() {
		return decimal.Zero
	}
	return observed.Sub(expected).Abs().Div(expected).Mul(oneHundred)
}

// WithinSlippage reports whether observed deviates from expected by at most
// tolerance percent. The boundary is inclusive: a deviation exactly equal to
// the tolerance is still acceptable.
func WithinSlippage(expected, observed, tolerance decimal.Decimal) bool {
	return SlippagePct(expected, observed).LessThanOrEqual(tolerance)
}
