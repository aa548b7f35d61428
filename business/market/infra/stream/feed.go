// Package stream overlays live WebSocket ticker quotes on a REST-backed
// exchange. Venues that expose a streaming endpoint get sub-second quotes
// between REST cycles; everything else keeps working unchanged.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	marketapp "github.com/fd1az/crossarb/business/market/app"
	"github.com/fd1az/crossarb/business/market/domain"
	"github.com/fd1az/crossarb/internal/config"
	"github.com/fd1az/crossarb/internal/symbol"
	"github.com/fd1az/crossarb/internal/wsconn"
)

const defaultStaleAfter = 10 * time.Second

// tickerEvent is one quote update on the gateway's ticker channel.
type tickerEvent struct {
	Symbol string          `json:"symbol"`
	Last   decimal.Decimal `json:"last"`
	Bid    decimal.Decimal `json:"bid"`
	Ask    decimal.Decimal `json:"ask"`
}

type quoteEntry struct {
	ticker domain.Ticker
	at     time.Time
}

// Feed consumes the streaming ticker channel for one venue and keeps the
// latest quote per symbol.
type Feed struct {
	exchangeID string
	client     *wsconn.Client
	symbols    []symbol.Symbol
	staleAfter time.Duration
	logger     *slog.Logger

	mu     sync.RWMutex
	quotes map[symbol.Symbol]quoteEntry
}

// NewFeed builds a feed for a venue with a configured websocket_url.
func NewFeed(cfg config.ExchangeConfig, symbols []symbol.Symbol, logger *slog.Logger) (*Feed, error) {
	client, err := wsconn.New(wsconn.DefaultConfig(cfg.WebSocketURL, cfg.ID))
	if err != nil {
		return nil, err
	}

	return &Feed{
		exchangeID: cfg.ID,
		client:     client,
		symbols:    symbols,
		staleAfter: defaultStaleAfter,
		logger:     logger,
		quotes:     make(map[symbol.Symbol]quoteEntry),
	}, nil
}

// Start connects and subscribes to the ticker channel for the configured
// symbols.
func (f *Feed) Start(ctx context.Context) error {
	f.client.OnMessage(f.handleMessage)
	f.client.OnStateChange(func(state wsconn.State, err error) {
		if err != nil {
			f.logger.Warn("ticker stream state changed",
				"exchange", f.exchangeID, "state", state, "error", err)
		}
	})

	if err := f.client.Connect(ctx); err != nil {
		return err
	}

	pairs := make([]string, len(f.symbols))
	for i, sym := range f.symbols {
		pairs[i] = sym.String()
	}
	return f.client.SendJSON(ctx, map[string]any{
		"op":      "subscribe",
		"channel": "tickers",
		"symbols": pairs,
	})
}

// ExchangeID returns the venue this feed streams quotes for.
func (f *Feed) ExchangeID() string {
	return f.exchangeID
}

// Connected reports whether the underlying stream is up.
func (f *Feed) Connected() bool {
	return f.client.IsConnected()
}

// Close shuts the feed down.
func (f *Feed) Close() error {
	return f.client.Close()
}

func (f *Feed) handleMessage(ctx context.Context, msg []byte) {
	var event tickerEvent
	if err := json.Unmarshal(msg, &event); err != nil || event.Symbol == "" {
		return
	}

	f.mu.Lock()
	f.quotes[symbol.Symbol(event.Symbol)] = quoteEntry{
		ticker: domain.Ticker{Last: event.Last, Bid: event.Bid, Ask: event.Ask},
		at:     time.Now(),
	}
	f.mu.Unlock()
}

// Ticker returns the latest streamed quote for sym if it is still fresh.
func (f *Feed) Ticker(sym symbol.Symbol) (domain.Ticker, bool) {
	f.mu.RLock()
	entry, ok := f.quotes[sym]
	f.mu.RUnlock()
	if !ok || time.Since(entry.at) > f.staleAfter {
		return domain.Ticker{}, false
	}
	return entry.ticker, true
}

// Exchange decorates a REST-backed exchange with fresh streamed quotes.
// Only quote reads are overlaid; trading capabilities pass straight through.
type Exchange struct {
	marketapp.Exchange
	feed *Feed
}

// WithFeed wraps ex so ticker reads prefer the streaming feed.
func WithFeed(ex marketapp.Exchange, feed *Feed) *Exchange {
	return &Exchange{Exchange: ex, feed: feed}
}

// FetchTickers merges fresh streamed quotes over the REST result.
func (e *Exchange) FetchTickers(ctx context.Context, symbols []symbol.Symbol) (map[symbol.Symbol]domain.Ticker, error) {
	tickers, err := e.Exchange.FetchTickers(ctx, symbols)
	if err != nil {
		return nil, err
	}
	for _, sym := range symbols {
		if live, ok := e.feed.Ticker(sym); ok {
			tickers[sym] = live
		}
	}
	return tickers, nil
}

// FetchTicker prefers the streamed quote when it is fresh.
func (e *Exchange) FetchTicker(ctx context.Context, sym symbol.Symbol) (domain.Ticker, error) {
	if live, ok := e.feed.Ticker(sym); ok {
		return live, nil
	}
	return e.Exchange.FetchTicker(ctx, sym)
}
