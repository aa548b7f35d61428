// Package app contains application services and port definitions for the market context.
package app

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/crossarb/business/market/domain"
	"github.com/fd1az/crossarb/internal/symbol"
)

const meterName = "market"

// AggregatorConfig holds configuration for the price aggregator.
type AggregatorConfig struct {
	FetchTimeout time.Duration // per-exchange budget for one cycle's fetch
}

// aggregatorMetrics holds OTEL metric instruments.
type aggregatorMetrics struct {
	fetchFailures metric.Int64Counter
	fetchLatency  metric.Float64Histogram
}

// Aggregator fetches one price snapshot per configured exchange each cycle.
//
// The contract downstream code relies on: FetchAll always returns exactly one
// snapshot per exchange, in configuration order, so indexing by position is
// safe. A failing exchange degrades to an empty snapshot and is logged; it
// never fails the cycle.
type Aggregator struct {
	exchanges []Exchange
	symbols   *symbol.Table
	config    AggregatorConfig
	logger    *slog.Logger

	// markets are loaded once per exchange, on first successful call
	marketsLoaded []atomic.Bool

	metrics *aggregatorMetrics
}

// NewAggregator creates an Aggregator over the configured exchanges.
func NewAggregator(exchanges []Exchange, symbols *symbol.Table, cfg AggregatorConfig, logger *slog.Logger) (*Aggregator, error) {
	a := &Aggregator{
		exchanges:     exchanges,
		symbols:       symbols,
		config:        cfg,
		logger:        logger,
		marketsLoaded: make([]atomic.Bool, len(exchanges)),
	}
	if a.config.FetchTimeout <= 0 {
		a.config.FetchTimeout = 10 * time.Second
	}
	if err := a.initMetrics(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Aggregator) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	a.metrics = &aggregatorMetrics{}

	a.metrics.fetchFailures, err = meter.Int64Counter(
		"market_fetch_failures_total",
		metric.WithDescription("Ticker fetches that degraded to an empty snapshot"),
	)
	if err != nil {
		return err
	}

	a.metrics.fetchLatency, err = meter.Float64Histogram(
		"market_fetch_latency_ms",
		metric.WithDescription("Per-exchange ticker fetch latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Exchanges returns the configured exchanges in configuration order.
func (a *Aggregator) Exchanges() []Exchange {
	return a.exchanges
}

// FetchAll fetches the configured symbol set from every exchange concurrently
// and returns one snapshot per exchange, input order preserved.
func (a *Aggregator) FetchAll(ctx context.Context) []domain.Snapshot {
	symbols := a.symbols.Symbols()
	snapshots := make([]domain.Snapshot, len(a.exchanges))

	g, gctx := errgroup.WithContext(ctx)
	for i, ex := range a.exchanges {
		g.Go(func() error {
			snapshots[i] = a.fetchOne(gctx, i, ex, symbols)
			// Failures degrade to empty snapshots, they never cancel siblings.
			return nil
		})
	}
	_ = g.Wait()

	return snapshots
}

func (a *Aggregator) fetchOne(ctx context.Context, idx int, ex Exchange, symbols []symbol.Symbol) domain.Snapshot {
	ctx, cancel := context.WithTimeout(ctx, a.config.FetchTimeout)
	defer cancel()

	start := time.Now()

	if !a.marketsLoaded[idx].Load() {
		if err := ex.LoadMarkets(ctx); err != nil {
			// Retried on the next cycle.
			a.degrade(ctx, ex, "load markets failed", err)
			return domain.EmptySnapshot(ex.ID())
		}
		a.marketsLoaded[idx].Store(true)
	}

	tickers, err := ex.FetchTickers(ctx, symbols)
	a.metrics.fetchLatency.Record(ctx, float64(time.Since(start).Milliseconds()),
		metric.WithAttributes(attribute.String("exchange", ex.ID())))
	if err != nil {
		a.degrade(ctx, ex, "ticker fetch failed", err)
		return domain.EmptySnapshot(ex.ID())
	}

	return domain.Snapshot{
		ExchangeID: ex.ID(),
		Tickers:    tickers,
		Timestamp:  time.Now(),
	}
}

func (a *Aggregator) degrade(ctx context.Context, ex Exchange, msg string, err error) {
	a.metrics.fetchFailures.Add(ctx, 1,
		metric.WithAttributes(attribute.String("exchange", ex.ID())))
	a.logger.Warn(msg, "exchange", ex.ID(), "error", err)
}
