package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !cfg.Trading.PaperTrading {
		t.Error("paper_trading should default to true")
	}
	if cfg.Trading.WithdrawFee != 0 {
		t.Errorf("withdraw_fee default = %v, want 0", cfg.Trading.WithdrawFee)
	}
	if cfg.Trading.PostProcessing {
		t.Error("post_processing should default to false")
	}
	if cfg.Trading.SlippageTolerance != 0.5 {
		t.Errorf("slippage_tolerance default = %v, want 0.5", cfg.Trading.SlippageTolerance)
	}
	if cfg.Trading.ProfitUnit != "USDT" {
		t.Errorf("profit_unit default = %q, want USDT", cfg.Trading.ProfitUnit)
	}
	if cfg.Trading.ProfitThreshold != 50 {
		t.Errorf("profit_threshold default = %v, want 50", cfg.Trading.ProfitThreshold)
	}
	if cfg.Trading.LossThreshold != 10 {
		t.Errorf("loss_threshold default = %v, want 10", cfg.Trading.LossThreshold)
	}
	if cfg.Trading.CycleInterval != 5*time.Second {
		t.Errorf("cycle_interval default = %v, want 5s", cfg.Trading.CycleInterval)
	}
	if len(cfg.Exchanges) != 6 {
		t.Errorf("default exchange count = %d, want 6", len(cfg.Exchanges))
	}
	if len(cfg.Symbols) != 10 {
		t.Errorf("default symbol count = %d, want 10", len(cfg.Symbols))
	}

	table, err := cfg.SymbolTable()
	if err != nil {
		t.Fatalf("SymbolTable: %v", err)
	}
	if table.Len() != 10 {
		t.Errorf("symbol table len = %d, want 10", table.Len())
	}
	// First configured symbol drives tie-breaks downstream, order matters.
	if table.Symbols()[0] != "BTC/USDT" {
		t.Errorf("first symbol = %s, want BTC/USDT", table.Symbols()[0])
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty_exchanges",
			mutate:  func(c *Config) { c.Exchanges = nil },
			wantErr: "exchanges cannot be empty",
		},
		{
			name:    "empty_symbols",
			mutate:  func(c *Config) { c.Symbols = nil },
			wantErr: "symbols cannot be empty",
		},
		{
			name:    "zero_order_size",
			mutate:  func(c *Config) { c.Symbols[0].OrderSize = 0 },
			wantErr: "order size",
		},
		{
			name:    "negative_order_size",
			mutate:  func(c *Config) { c.Symbols[0].OrderSize = -0.5 },
			wantErr: "order size",
		},
		{
			name:    "duplicate_exchange",
			mutate:  func(c *Config) { c.Exchanges[1].ID = c.Exchanges[0].ID },
			wantErr: "configured twice",
		},
		{
			name:    "missing_base_url",
			mutate:  func(c *Config) { c.Exchanges[0].BaseURL = "" },
			wantErr: "base_url",
		},
		{
			name:    "fee_rate_out_of_range",
			mutate:  func(c *Config) { c.Exchanges[0].TakerFeeRate = 1.5 },
			wantErr: "taker_fee_rate",
		},
		{
			name:    "negative_slippage",
			mutate:  func(c *Config) { c.Trading.SlippageTolerance = -1 },
			wantErr: "slippage_tolerance",
		},
		{
			name:    "zero_cycle_interval",
			mutate:  func(c *Config) { c.Trading.CycleInterval = 0 },
			wantErr: "cycle_interval",
		},
		{
			name:    "zero_transfer_deadline",
			mutate:  func(c *Config) { c.Trading.TransferDeadline = 0 },
			wantErr: "transfer_deadline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}
