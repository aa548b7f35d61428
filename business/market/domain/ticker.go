// Package domain contains the core domain types for the market context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/crossarb/internal/symbol"
)

// Ticker holds the current quote for one symbol on one exchange.
type Ticker struct {
	Last decimal.Decimal
	Bid  decimal.Decimal
	Ask  decimal.Decimal
}

// Snapshot is one exchange's view of the configured symbol set for one cycle.
// A failed fetch produces an empty snapshot, never a nil map lookup hazard:
// absent symbols simply have no entry.
type Snapshot struct {
	ExchangeID string
	Tickers    map[symbol.Symbol]Ticker
	Timestamp  time.Time
}

// EmptySnapshot returns a snapshot with no tickers for the given exchange.
func EmptySnapshot(exchangeID string) Snapshot {
	return Snapshot{
		ExchangeID: exchangeID,
		Tickers:    map[symbol.Symbol]Ticker{},
		Timestamp:  time.Now(),
	}
}

// Ticker returns the ticker for sym, if the exchange quoted it this cycle.
func (s Snapshot) Ticker(sym symbol.Symbol) (Ticker, bool) {
	t, ok := s.Tickers[sym]
	return t, ok
}

// Balance holds the free and total amount of one asset on an exchange.
type Balance struct {
	Free  decimal.Decimal
	Total decimal.Decimal
}

// OrderSide is the side of an order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Order is the exchange's acknowledgement of a placed limit order.
type Order struct {
	ID          string
	Symbol      symbol.Symbol
	Side        OrderSide
	Price       decimal.Decimal
	Amount      decimal.Decimal
	ExecutedQty decimal.Decimal
}

// DepositAddress identifies where an asset can be deposited on an exchange.
type DepositAddress struct {
	Asset   string
	Address string
	Tag     string // memo/tag for chains that require one
}

// WithdrawalRef is the exchange's reference for a submitted withdrawal.
type WithdrawalRef struct {
	ID   string
	TxID string
}
