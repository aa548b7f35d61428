package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeProfit(t *testing.T) {
	tests := []struct {
		name        string
		buyPrice    string
		sellPrice   string
		size        string
		buyFeeRate  string
		sellFeeRate string
		withdrawFee string
		wantNet     string
		wantPct     string
	}{
		{
			name:     "fee_free_double",
			buyPrice: "100", sellPrice: "200", size: "1",
			buyFeeRate: "0", sellFeeRate: "0", withdrawFee: "0",
			wantNet: "100", wantPct: "100",
		},
		{
			name:     "btc_spread_with_taker_fees",
			buyPrice: "60000", sellPrice: "60300", size: "0.001",
			buyFeeRate: "0.001", sellFeeRate: "0.001", withdrawFee: "0",
			wantNet: "0.1797", wantPct: "0.2995",
		},
		{
			name:     "withdraw_fee_turns_loss",
			buyPrice: "100", sellPrice: "101", size: "1",
			buyFeeRate: "0", sellFeeRate: "0", withdrawFee: "2",
			wantNet: "-1", wantPct: "-1",
		},
		{
			name:     "negative_spread",
			buyPrice: "100", sellPrice: "95", size: "2",
			buyFeeRate: "0", sellFeeRate: "0", withdrawFee: "0",
			wantNet: "-10", wantPct: "-5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeProfit(d(tt.buyPrice), d(tt.sellPrice), d(tt.size),
				d(tt.buyFeeRate), d(tt.sellFeeRate), d(tt.withdrawFee))

			if !got.NetProfit.Equal(d(tt.wantNet)) {
				t.Errorf("NetProfit = %s, want %s", got.NetProfit, tt.wantNet)
			}
			if !got.NetProfitPct.Equal(d(tt.wantPct)) {
				t.Errorf("NetProfitPct = %s, want %s", got.NetProfitPct, tt.wantPct)
			}
		})
	}
}

func TestComputeProfit_FeeBreakdown(t *testing.T) {
	got := ComputeProfit(d("60000"), d("60300"), d("0.001"), d("0.001"), d("0.001"), d("0"))

	if !got.BuyFee.Equal(d("0.06")) {
		t.Errorf("BuyFee = %s, want 0.06", got.BuyFee)
	}
	if !got.SellFee.Equal(d("0.0603")) {
		t.Errorf("SellFee = %s, want 0.0603", got.SellFee)
	}
	if !got.GrossProfit.Equal(d("0.3")) {
		t.Errorf("GrossProfit = %s, want 0.3", got.GrossProfit)
	}
}

func TestClassify(t *testing.T) {
	profitThreshold := d("50")
	lossThreshold := d("10")

	tests := []struct {
		name string
		pct  string
		want Classification
	}{
		{"well_above_profit_threshold", "75", ClassificationExecutable},
		{"exactly_at_profit_threshold", "50", ClassificationExecutable},
		{"just_below_profit_threshold", "49.999", ClassificationNeutral},
		{"zero", "0", ClassificationNeutral},
		{"just_above_loss_threshold", "-9.999", ClassificationNeutral},
		{"exactly_at_loss_threshold", "-10", ClassificationLossAverting},
		{"deep_loss", "-40", ClassificationLossAverting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(d(tt.pct), profitThreshold, lossThreshold); got != tt.want {
				t.Errorf("Classify(%s) = %s, want %s", tt.pct, got, tt.want)
			}
		})
	}
}

func BenchmarkComputeProfit(b *testing.B) {
	buy := d("60000")
	sell := d("60300")
	size := d("0.001")
	rate := d("0.001")
	fee := d("0")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ComputeProfit(buy, sell, size, rate, rate, fee)
	}
}
