package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	marketdomain "github.com/fd1az/crossarb/business/market/domain"
	"github.com/fd1az/crossarb/internal/symbol"
)

// scriptedExchange is a counting fake used by the scanner, executor and
// scheduler tests.
type scriptedExchange struct {
	id      string
	feeRate decimal.Decimal

	tickers     map[symbol.Symbol]marketdomain.Ticker
	tickerErr   error
	balanceFree map[string]decimal.Decimal
	balanceGate chan struct{} // when set, FetchBalance blocks until closed
	executedQty decimal.Decimal

	mu    sync.Mutex
	calls map[string]int
}

func newScriptedExchange(id string) *scriptedExchange {
	return &scriptedExchange{
		id:          id,
		feeRate:     decimal.Zero,
		tickers:     map[symbol.Symbol]marketdomain.Ticker{},
		balanceFree: map[string]decimal.Decimal{},
		calls:       map[string]int{},
	}
}

func (s *scriptedExchange) bump(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[method]++
}

func (s *scriptedExchange) callCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *scriptedExchange) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *scriptedExchange) ID() string                    { return s.id }
func (s *scriptedExchange) TakerFeeRate() decimal.Decimal { return s.feeRate }

func (s *scriptedExchange) LoadMarkets(ctx context.Context) error {
	s.bump("LoadMarkets")
	return nil
}

func (s *scriptedExchange) FetchTickers(ctx context.Context, symbols []symbol.Symbol) (map[symbol.Symbol]marketdomain.Ticker, error) {
	s.bump("FetchTickers")
	out := make(map[symbol.Symbol]marketdomain.Ticker, len(symbols))
	for _, sym := range symbols {
		if t, ok := s.tickers[sym]; ok {
			out[sym] = t
		}
	}
	return out, nil
}

func (s *scriptedExchange) FetchTicker(ctx context.Context, sym symbol.Symbol) (marketdomain.Ticker, error) {
	s.bump("FetchTicker")
	if s.tickerErr != nil {
		return marketdomain.Ticker{}, s.tickerErr
	}
	t, ok := s.tickers[sym]
	if !ok {
		return marketdomain.Ticker{}, errors.New("symbol not listed")
	}
	return t, nil
}

func (s *scriptedExchange) CreateLimitBuyOrder(ctx context.Context, sym symbol.Symbol, qty, price decimal.Decimal) (marketdomain.Order, error) {
	s.bump("CreateLimitBuyOrder")
	return marketdomain.Order{
		ID: "buy-1", Symbol: sym, Side: marketdomain.OrderSideBuy,
		Price: price, Amount: qty, ExecutedQty: qty,
	}, nil
}

func (s *scriptedExchange) CreateLimitSellOrder(ctx context.Context, sym symbol.Symbol, qty, price decimal.Decimal) (marketdomain.Order, error) {
	s.bump("CreateLimitSellOrder")
	executed := s.executedQty
	if executed.IsZero() {
		executed = qty
	}
	return marketdomain.Order{
		ID: "sell-1", Symbol: sym, Side: marketdomain.OrderSideSell,
		Price: price, Amount: qty, ExecutedQty: executed,
	}, nil
}

func (s *scriptedExchange) FetchDepositAddress(ctx context.Context, asset string) (marketdomain.DepositAddress, error) {
	s.bump("FetchDepositAddress")
	return marketdomain.DepositAddress{Asset: asset, Address: "addr-" + s.id}, nil
}

func (s *scriptedExchange) Withdraw(ctx context.Context, asset string, qty decimal.Decimal, addr marketdomain.DepositAddress) (marketdomain.WithdrawalRef, error) {
	s.bump("Withdraw")
	return marketdomain.WithdrawalRef{ID: "wd-1", TxID: "tx-1"}, nil
}

func (s *scriptedExchange) FetchBalance(ctx context.Context) (map[string]marketdomain.Balance, error) {
	s.bump("FetchBalance")
	if s.balanceGate != nil {
		select {
		case <-s.balanceGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]marketdomain.Balance, len(s.balanceFree))
	for asset, free := range s.balanceFree {
		out[asset] = marketdomain.Balance{Free: free, Total: free}
	}
	return out, nil
}

func (s *scriptedExchange) setBalance(asset string, free decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balanceFree[asset] = free
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTable(t *testing.T, entries ...symbol.Entry) *symbol.Table {
	t.Helper()
	if len(entries) == 0 {
		entries = []symbol.Entry{{Symbol: "BTC/USDT", OrderSize: d("0.001")}}
	}
	table, err := symbol.NewTable(entries)
	if err != nil {
		t.Fatal(err)
	}
	return table
}
