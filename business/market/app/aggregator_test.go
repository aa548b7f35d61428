package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/crossarb/business/market/domain"
	"github.com/fd1az/crossarb/internal/symbol"
)

// fakeExchange implements Exchange for aggregator tests.
type fakeExchange struct {
	id          string
	tickers     map[symbol.Symbol]domain.Ticker
	fetchErr    error
	loadErr     error
	loadCalls   int
	fetchCalls  int
	fetchedSyms []symbol.Symbol
}

func (f *fakeExchange) ID() string                    { return f.id }
func (f *fakeExchange) TakerFeeRate() decimal.Decimal { return decimal.NewFromFloat(0.001) }

func (f *fakeExchange) LoadMarkets(ctx context.Context) error {
	f.loadCalls++
	return f.loadErr
}

func (f *fakeExchange) FetchTickers(ctx context.Context, symbols []symbol.Symbol) (map[symbol.Symbol]domain.Ticker, error) {
	f.fetchCalls++
	f.fetchedSyms = symbols
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make(map[symbol.Symbol]domain.Ticker, len(symbols))
	for _, s := range symbols {
		if t, ok := f.tickers[s]; ok {
			out[s] = t
		}
	}
	return out, nil
}

func (f *fakeExchange) FetchTicker(ctx context.Context, sym symbol.Symbol) (domain.Ticker, error) {
	t, ok := f.tickers[sym]
	if !ok {
		return domain.Ticker{}, errors.New("no ticker")
	}
	return t, nil
}

func (f *fakeExchange) CreateLimitBuyOrder(ctx context.Context, sym symbol.Symbol, qty, price decimal.Decimal) (domain.Order, error) {
	return domain.Order{}, errors.New("not implemented")
}

func (f *fakeExchange) CreateLimitSellOrder(ctx context.Context, sym symbol.Symbol, qty, price decimal.Decimal) (domain.Order, error) {
	return domain.Order{}, errors.New("not implemented")
}

func (f *fakeExchange) FetchDepositAddress(ctx context.Context, asset string) (domain.DepositAddress, error) {
	return domain.DepositAddress{}, errors.New("not implemented")
}

func (f *fakeExchange) Withdraw(ctx context.Context, asset string, qty decimal.Decimal, addr domain.DepositAddress) (domain.WithdrawalRef, error) {
	return domain.WithdrawalRef{}, errors.New("not implemented")
}

func (f *fakeExchange) FetchBalance(ctx context.Context) (map[string]domain.Balance, error) {
	return nil, errors.New("not implemented")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTable(t *testing.T) *symbol.Table {
	t.Helper()
	table, err := symbol.NewTable([]symbol.Entry{
		{Symbol: "BTC/USDT", OrderSize: decimal.RequireFromString("0.001")},
		{Symbol: "ETH/USDT", OrderSize: decimal.RequireFromString("0.01")},
	})
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func ticker(last string) domain.Ticker {
	p := decimal.RequireFromString(last)
	return domain.Ticker{Last: p, Bid: p, Ask: p}
}

func newTestAggregator(t *testing.T, exchanges []Exchange) *Aggregator {
	t.Helper()
	agg, err := NewAggregator(exchanges, testTable(t), AggregatorConfig{FetchTimeout: time.Second}, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	return agg
}

func TestAggregator_FetchAll(t *testing.T) {
	a := &fakeExchange{id: "alpha", tickers: map[symbol.Symbol]domain.Ticker{
		"BTC/USDT": ticker("60000"),
		"ETH/USDT": ticker("3400"),
	}}
	b := &fakeExchange{id: "beta", tickers: map[symbol.Symbol]domain.Ticker{
		"BTC/USDT": ticker("60300"),
	}}

	agg := newTestAggregator(t, []Exchange{a, b})
	snapshots := agg.FetchAll(context.Background())

	if len(snapshots) != 2 {
		t.Fatalf("snapshot count = %d, want 2", len(snapshots))
	}
	if snapshots[0].ExchangeID != "alpha" || snapshots[1].ExchangeID != "beta" {
		t.Errorf("snapshot order = [%s %s], want [alpha beta]",
			snapshots[0].ExchangeID, snapshots[1].ExchangeID)
	}

	if got, ok := snapshots[0].Ticker("BTC/USDT"); !ok || !got.Last.Equal(decimal.RequireFromString("60000")) {
		t.Errorf("alpha BTC/USDT = %v, %v", got, ok)
	}
	// beta does not list ETH/USDT, entry must be absent
	if _, ok := snapshots[1].Ticker("ETH/USDT"); ok {
		t.Error("beta should not have an ETH/USDT entry")
	}

	// the fetch must request exactly the configured symbol set
	if len(a.fetchedSyms) != 2 {
		t.Errorf("fetched symbols = %v, want the 2 configured", a.fetchedSyms)
	}
}

func TestAggregator_FailingExchangeDegradesToEmptySnapshot(t *testing.T) {
	a := &fakeExchange{id: "alpha", tickers: map[symbol.Symbol]domain.Ticker{
		"BTC/USDT": ticker("60000"),
	}}
	b := &fakeExchange{id: "beta", fetchErr: errors.New("connection refused")}
	c := &fakeExchange{id: "gamma", tickers: map[symbol.Symbol]domain.Ticker{
		"BTC/USDT": ticker("60100"),
	}}

	agg := newTestAggregator(t, []Exchange{a, b, c})
	snapshots := agg.FetchAll(context.Background())

	if len(snapshots) != 3 {
		t.Fatalf("snapshot count = %d, want 3 (never short)", len(snapshots))
	}
	if len(snapshots[1].Tickers) != 0 {
		t.Errorf("failing exchange snapshot should be empty, got %d tickers", len(snapshots[1].Tickers))
	}
	// healthy neighbours are unaffected
	if len(snapshots[0].Tickers) == 0 || len(snapshots[2].Tickers) == 0 {
		t.Error("healthy exchanges should still produce tickers")
	}
}

func TestAggregator_LoadMarketsFailureIsolatedAndRetried(t *testing.T) {
	a := &fakeExchange{id: "alpha", loadErr: errors.New("auth failed")}

	agg := newTestAggregator(t, []Exchange{a})

	snapshots := agg.FetchAll(context.Background())
	if len(snapshots) != 1 || len(snapshots[0].Tickers) != 0 {
		t.Fatalf("expected one empty snapshot, got %+v", snapshots)
	}
	if a.fetchCalls != 0 {
		t.Error("tickers should not be fetched when markets fail to load")
	}

	// Next cycle retries the load.
	a.loadErr = nil
	a.tickers = map[symbol.Symbol]domain.Ticker{"BTC/USDT": ticker("60000")}
	snapshots = agg.FetchAll(context.Background())
	if len(snapshots[0].Tickers) != 1 {
		t.Errorf("expected recovery after load succeeds, got %+v", snapshots[0])
	}
	if a.loadCalls != 2 {
		t.Errorf("loadCalls = %d, want 2", a.loadCalls)
	}

	// Once loaded, markets are not reloaded each cycle.
	agg.FetchAll(context.Background())
	if a.loadCalls != 2 {
		t.Errorf("loadCalls after third cycle = %d, want 2", a.loadCalls)
	}
}
