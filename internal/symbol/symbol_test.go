package symbol

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		base    string
		quote   string
	}{
		{name: "btc_usdt", input: "BTC/USDT", base: "BTC", quote: "USDT"},
		{name: "shib_usdt", input: "SHIB/USDT", base: "SHIB", quote: "USDT"},
		{name: "missing_separator", input: "BTCUSDT", wantErr: true},
		{name: "empty_base", input: "/USDT", wantErr: true},
		{name: "empty_quote", input: "BTC/", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sym, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %q", tt.input, sym)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if sym.Base() != tt.base {
				t.Errorf("Base() = %q, want %q", sym.Base(), tt.base)
			}
			if sym.Quote() != tt.quote {
				t.Errorf("Quote() = %q, want %q", sym.Quote(), tt.quote)
			}
		})
	}
}

func TestNewTable(t *testing.T) {
	size := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	t.Run("preserves_order", func(t *testing.T) {
		table, err := NewTable([]Entry{
			{Symbol: "BTC/USDT", OrderSize: size("0.001")},
			{Symbol: "LTC/USDT", OrderSize: size("0.01")},
			{Symbol: "DOGE/USDT", OrderSize: size("100")},
		})
		if err != nil {
			t.Fatalf("NewTable: %v", err)
		}

		want := []Symbol{"BTC/USDT", "LTC/USDT", "DOGE/USDT"}
		got := table.Symbols()
		if len(got) != len(want) {
			t.Fatalf("Symbols() len = %d, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Symbols()[%d] = %s, want %s", i, got[i], want[i])
			}
		}

		orderSize, ok := table.OrderSize("LTC/USDT")
		if !ok || !orderSize.Equal(size("0.01")) {
			t.Errorf("OrderSize(LTC/USDT) = %s, %v", orderSize, ok)
		}
	})

	t.Run("rejects_empty", func(t *testing.T) {
		if _, err := NewTable(nil); err == nil {
			t.Error("expected error for empty table")
		}
	})

	t.Run("rejects_zero_order_size", func(t *testing.T) {
		_, err := NewTable([]Entry{{Symbol: "BTC/USDT", OrderSize: decimal.Zero}})
		if err == nil {
			t.Error("expected error for zero order size")
		}
	})

	t.Run("rejects_negative_order_size", func(t *testing.T) {
		_, err := NewTable([]Entry{{Symbol: "BTC/USDT", OrderSize: size("-1")}})
		if err == nil {
			t.Error("expected error for negative order size")
		}
	})

	t.Run("rejects_duplicate", func(t *testing.T) {
		_, err := NewTable([]Entry{
			{Symbol: "BTC/USDT", OrderSize: size("0.001")},
			{Symbol: "BTC/USDT", OrderSize: size("0.002")},
		})
		if err == nil {
			t.Error("expected error for duplicate symbol")
		}
	})

	t.Run("rejects_malformed_symbol", func(t *testing.T) {
		_, err := NewTable([]Entry{{Symbol: "BTCUSDT", OrderSize: size("1")}})
		if err == nil {
			t.Error("expected error for malformed symbol")
		}
	})
}
