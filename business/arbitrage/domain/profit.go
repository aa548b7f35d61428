// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// TakerFee returns the fee charged for a taker order of size at price.
func TakerFee(size, price, rate decimal.Decimal) decimal.Decimal {
	return size.Mul(price).Mul(rate)
}

// ProfitResult contains the fee-adjusted outcome of a candidate trade.
type ProfitResult struct {
	GrossProfit  decimal.Decimal
	BuyFee       decimal.Decimal
	SellFee      decimal.Decimal
	WithdrawFee  decimal.Decimal
	NetProfit    decimal.Decimal
	NetProfitPct decimal.Decimal // percentage of capital deployed, e.g. 0.3 for 0.3%
}

// ComputeProfit prices a buy of size at buyPrice against a sell of size at
// sellPrice, charging taker fees on both legs plus the flat withdrawal fee.
// NetProfitPct is relative to the buy-side notional (buyPrice * size).
func ComputeProfit(buyPrice, sellPrice, size, buyFeeRate, sellFeeRate, withdrawFee decimal.Decimal) ProfitResult {
	buyFee := TakerFee(size, buyPrice, buyFeeRate)
	sellFee := TakerFee(size, sellPrice, sellFeeRate)

	gross := sellPrice.Sub(buyPrice).Mul(size)
	net := gross.Sub(buyFee).Sub(sellFee).Sub(withdrawFee)

	capital := buyPrice.Mul(size)
	var pct decimal.Decimal
	if capital.IsPositive() {
		pct = net.Div(capital).Mul(oneHundred)
	}

	return ProfitResult{
		GrossProfit:  gross,
		BuyFee:       buyFee,
		SellFee:      sellFee,
		WithdrawFee:  withdrawFee,
		NetProfit:    net,
		NetProfitPct: pct,
	}
}
