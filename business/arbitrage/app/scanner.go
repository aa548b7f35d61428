// Package app contains the application services for the arbitrage context.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/crossarb/business/arbitrage/domain"
	marketapp "github.com/fd1az/crossarb/business/market/app"
	marketdomain "github.com/fd1az/crossarb/business/market/domain"
	"github.com/fd1az/crossarb/internal/symbol"
)

const meterName = "arbitrage"

// ScannerConfig holds the thresholds the scanner classifies against.
type ScannerConfig struct {
	ProfitThreshold decimal.Decimal // net profit pct at or above which a spread is executable
	LossThreshold   decimal.Decimal // positive magnitude; pct at or below its negation is loss-averting
	WithdrawFee     decimal.Decimal // flat fee in the quote asset, charged once per trade
}

// ScanResult pairs a symbol with its outcome for one cycle.
// Opportunity is nil when no exchange quoted the symbol this cycle.
type ScanResult struct {
	Symbol      symbol.Symbol
	QuoteCount  int
	Opportunity *domain.Opportunity
}

// Scanner finds, for each configured symbol, the best buy/sell pairing across
// the cycle's snapshots and classifies it against the configured thresholds.
type Scanner struct {
	symbols  *symbol.Table
	config   ScannerConfig
	feeRates map[string]decimal.Decimal // exchange ID -> taker fee rate
	logger   *slog.Logger

	opportunityCounter metric.Int64Counter
}

// NewScanner creates a Scanner over the given exchanges and symbol table.
func NewScanner(exchanges []marketapp.Exchange, symbols *symbol.Table, cfg ScannerConfig, logger *slog.Logger) (*Scanner, error) {
	feeRates := make(map[string]decimal.Decimal, len(exchanges))
	for _, ex := range exchanges {
		feeRates[ex.ID()] = ex.TakerFeeRate()
	}

	s := &Scanner{
		symbols:  symbols,
		config:   cfg,
		feeRates: feeRates,
		logger:   logger,
	}

	var err error
	s.opportunityCounter, err = otel.Meter(meterName).Int64Counter(
		"arbitrage_scans_total",
		metric.WithDescription("Scanned symbols by classification"),
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Scan evaluates every configured symbol against the cycle's snapshots and
// returns one result per symbol, in configuration order.
func (s *Scanner) Scan(ctx context.Context, snapshots []marketdomain.Snapshot) []ScanResult {
	results := make([]ScanResult, 0, s.symbols.Len())
	for _, sym := range s.symbols.Symbols() {
		results = append(results, s.scanSymbol(ctx, sym, snapshots))
	}
	return results
}

func (s *Scanner) scanSymbol(ctx context.Context, sym symbol.Symbol, snapshots []marketdomain.Snapshot) ScanResult {
	var (
		found      bool
		buy, sell  domain.Quote
		quoteCount int
	)

	for _, snap := range snapshots {
		ticker, ok := snap.Ticker(sym)
		if !ok || !ticker.Last.IsPositive() {
			continue
		}
		quoteCount++

		price := ticker.Last
		if !found {
			buy = domain.Quote{ExchangeID: snap.ExchangeID, Price: price}
			sell = buy
			found = true
			continue
		}
		// Strict comparisons keep the first exchange on a tied price.
		if price.LessThan(buy.Price) {
			buy = domain.Quote{ExchangeID: snap.ExchangeID, Price: price}
		}
		if price.GreaterThan(sell.Price) {
			sell = domain.Quote{ExchangeID: snap.ExchangeID, Price: price}
		}
	}

	if !found {
		s.logger.Debug("no prices available", "symbol", sym)
		s.count(ctx, "unavailable")
		return ScanResult{Symbol: sym}
	}

	size, _ := s.symbols.OrderSize(sym)
	profit := domain.ComputeProfit(buy.Price, sell.Price, size,
		s.feeRates[buy.ExchangeID], s.feeRates[sell.ExchangeID], s.config.WithdrawFee)
	classification := domain.Classify(profit.NetProfitPct, s.config.ProfitThreshold, s.config.LossThreshold)

	s.count(ctx, string(classification))

	return ScanResult{
		Symbol:     sym,
		QuoteCount: quoteCount,
		Opportunity: &domain.Opportunity{
			Timestamp:      time.Now(),
			Symbol:         sym,
			OrderSize:      size,
			Buy:            buy,
			Sell:           sell,
			Profit:         profit,
			Classification: classification,
		},
	}
}

func (s *Scanner) count(ctx context.Context, classification string) {
	s.opportunityCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("classification", classification)))
}
