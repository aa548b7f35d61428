// Package app contains application services and port definitions for the market context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/crossarb/business/market/domain"
	"github.com/fd1az/crossarb/internal/symbol"
)

// Exchange is the capability interface for one configured exchange.
// Every call may fail with a connector-level error; callers decide how far
// such failures propagate.
type Exchange interface {
	// ID returns the exchange identifier, e.g. "binance".
	ID() string

	// TakerFeeRate returns the taker fee rate, e.g. 0.001 for 10 bps.
	TakerFeeRate() decimal.Decimal

	// LoadMarkets loads market metadata. Idempotent; called before the
	// first ticker fetch.
	LoadMarkets(ctx context.Context) error

	// FetchTickers returns current quotes for the given symbols.
	// Symbols the exchange does not list are absent from the result.
	FetchTickers(ctx context.Context, symbols []symbol.Symbol) (map[symbol.Symbol]domain.Ticker, error)

	// FetchTicker returns the current quote for one symbol.
	FetchTicker(ctx context.Context, sym symbol.Symbol) (domain.Ticker, error)

	// CreateLimitBuyOrder places a limit buy for qty at price.
	CreateLimitBuyOrder(ctx context.Context, sym symbol.Symbol, qty, price decimal.Decimal) (domain.Order, error)

	// CreateLimitSellOrder places a limit sell for qty at price.
	CreateLimitSellOrder(ctx context.Context, sym symbol.Symbol, qty, price decimal.Decimal) (domain.Order, error)

	// FetchDepositAddress returns a deposit address for the asset.
	FetchDepositAddress(ctx context.Context, asset string) (domain.DepositAddress, error)

	// Withdraw submits a withdrawal of qty of asset to the address.
	Withdraw(ctx context.Context, asset string, qty decimal.Decimal, addr domain.DepositAddress) (domain.WithdrawalRef, error)

	// FetchBalance returns per-asset balances for the account.
	FetchBalance(ctx context.Context) (map[string]domain.Balance, error)
}
