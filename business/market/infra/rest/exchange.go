// Package rest implements the Exchange port over a unified spot gateway API.
//
// Every configured exchange is reached through the same REST dialect; only the
// base URL, credentials and fee schedule differ. Requests are rate limited per
// exchange and go through a circuit breaker so a dead venue stops consuming
// its request budget.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/crossarb/business/market/domain"
	"github.com/fd1az/crossarb/internal/apperror"
	"github.com/fd1az/crossarb/internal/circuitbreaker"
	"github.com/fd1az/crossarb/internal/config"
	"github.com/fd1az/crossarb/internal/httpclient"
	"github.com/fd1az/crossarb/internal/ratelimit"
	"github.com/fd1az/crossarb/internal/symbol"
)

const defaultRequestsPerMinute = 600

// Exchange talks to one venue through the unified gateway.
type Exchange struct {
	id      string
	feeRate decimal.Decimal
	client  httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[*httpclient.Response]
	logger  *slog.Logger

	mu      sync.RWMutex
	markets map[symbol.Symbol]marketMessage
}

// New builds an Exchange from its configuration. Credentials are read from
// the environment variables named in the config; both may be empty for
// venues used read-only.
func New(cfg config.ExchangeConfig, logger *slog.Logger) (*Exchange, error) {
	headers := map[string]string{}
	if cfg.APIKeyEnv != "" {
		if key := os.Getenv(cfg.APIKeyEnv); key != "" {
			headers["X-API-Key"] = key
		}
	}
	if cfg.APISecretEnv != "" {
		if secret := os.Getenv(cfg.APISecretEnv); secret != "" {
			headers["X-API-Secret"] = secret
		}
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithVenueName(cfg.ID),
		httpclient.WithRequestTimeout(10*time.Second),
		httpclient.WithHeaders(headers),
	)
	if err != nil {
		return nil, err
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRequestsPerMinute
	}

	return &Exchange{
		id:      cfg.ID,
		feeRate: cfg.TakerFeeRateDecimal(),
		client:  client,
		limiter: ratelimit.New(rpm),
		breaker: circuitbreaker.New[*httpclient.Response](circuitbreaker.DefaultConfig(cfg.ID)),
		logger:  logger,
	}, nil
}

func (e *Exchange) ID() string                    { return e.id }
func (e *Exchange) TakerFeeRate() decimal.Decimal { return e.feeRate }

// do runs one request through the rate limiter and circuit breaker.
func (e *Exchange) do(ctx context.Context, fn func() (*httpclient.Response, error)) (*httpclient.Response, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeRateLimitExceeded, e.id)
	}

	resp, err := e.breaker.Execute(func() (*httpclient.Response, error) {
		resp, err := fn()
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return resp, e.apiError(resp)
		}
		return resp, nil
	})
	if err != nil {
		return resp, apperror.Wrap(err, apperror.CodeConnectorError, e.id)
	}
	return resp, nil
}

// apiError maps a gateway error payload onto a connector error code.
func (e *Exchange) apiError(resp *httpclient.Response) error {
	var payload errorMessage
	msg := strings.TrimSpace(string(resp.Body()))
	code := apperror.CodeConnectorError

	switch resp.StatusCode {
	case 401, 403:
		code = apperror.CodeConnectorAuthFailed
	case 429:
		code = apperror.CodeRateLimitExceeded
	}
	if jsonErr := json.Unmarshal(resp.Body(), &payload); jsonErr == nil && payload.Message != "" {
		msg = payload.Message
	}

	return apperror.New(code,
		apperror.WithMessage(msg),
		apperror.WithContext(fmt.Sprintf("%s status=%d", e.id, resp.StatusCode)))
}

// LoadMarkets fetches the venue's market list and caches it.
func (e *Exchange) LoadMarkets(ctx context.Context) error {
	var markets []marketMessage
	_, err := e.do(ctx, func() (*httpclient.Response, error) {
		return e.client.NewRequest().SetResult(&markets).Get(ctx, "/api/v1/markets")
	})
	if err != nil {
		return apperror.Wrap(err, apperror.CodeMarketsLoadFailed, e.id)
	}

	bySymbol := make(map[symbol.Symbol]marketMessage, len(markets))
	for _, m := range markets {
		if !m.Active {
			continue
		}
		bySymbol[symbol.Symbol(m.Symbol)] = m
	}

	e.mu.Lock()
	e.markets = bySymbol
	e.mu.Unlock()

	e.logger.Debug("markets loaded", "exchange", e.id, "count", len(bySymbol))
	return nil
}

// listed reports whether the venue trades sym, once markets are loaded.
func (e *Exchange) listed(sym symbol.Symbol) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.markets == nil {
		return true
	}
	_, ok := e.markets[sym]
	return ok
}

// FetchTickers returns quotes for the listed subset of symbols.
func (e *Exchange) FetchTickers(ctx context.Context, symbols []symbol.Symbol) (map[symbol.Symbol]domain.Ticker, error) {
	wanted := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if e.listed(sym) {
			wanted = append(wanted, sym.String())
		}
	}
	if len(wanted) == 0 {
		return map[symbol.Symbol]domain.Ticker{}, nil
	}

	var tickers []tickerMessage
	_, err := e.do(ctx, func() (*httpclient.Response, error) {
		return e.client.NewRequest().
			SetResult(&tickers).
			SetQueryParam("symbols", strings.Join(wanted, ",")).
			Get(ctx, "/api/v1/tickers")
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeTickerFetchFailed, e.id)
	}

	out := make(map[symbol.Symbol]domain.Ticker, len(tickers))
	for _, t := range tickers {
		out[symbol.Symbol(t.Symbol)] = domain.Ticker{Last: t.Last, Bid: t.Bid, Ask: t.Ask}
	}
	return out, nil
}

// FetchTicker returns the quote for one symbol.
func (e *Exchange) FetchTicker(ctx context.Context, sym symbol.Symbol) (domain.Ticker, error) {
	var ticker tickerMessage
	_, err := e.do(ctx, func() (*httpclient.Response, error) {
		return e.client.NewRequest().
			SetResult(&ticker).
			SetQueryParam("symbol", sym.String()).
			Get(ctx, "/api/v1/ticker")
	})
	if err != nil {
		return domain.Ticker{}, apperror.Wrap(err, apperror.CodeTickerFetchFailed, e.id)
	}
	return domain.Ticker{Last: ticker.Last, Bid: ticker.Bid, Ask: ticker.Ask}, nil
}

// CreateLimitBuyOrder places a limit buy for qty at price.
func (e *Exchange) CreateLimitBuyOrder(ctx context.Context, sym symbol.Symbol, qty, price decimal.Decimal) (domain.Order, error) {
	return e.createOrder(ctx, sym, domain.OrderSideBuy, qty, price)
}

// CreateLimitSellOrder places a limit sell for qty at price.
func (e *Exchange) CreateLimitSellOrder(ctx context.Context, sym symbol.Symbol, qty, price decimal.Decimal) (domain.Order, error) {
	return e.createOrder(ctx, sym, domain.OrderSideSell, qty, price)
}

func (e *Exchange) createOrder(ctx context.Context, sym symbol.Symbol, side domain.OrderSide, qty, price decimal.Decimal) (domain.Order, error) {
	if !qty.IsPositive() {
		return domain.Order{}, apperror.New(apperror.CodeInvalidOrderSize,
			apperror.WithContext(sym.String()))
	}

	var order orderMessage
	_, err := e.do(ctx, func() (*httpclient.Response, error) {
		return e.client.NewRequest().
			SetResult(&order).
			SetBody(orderRequest{
				Symbol: sym.String(),
				Side:   string(side),
				Type:   "limit",
				Amount: qty,
				Price:  price,
			}).
			Post(ctx, "/api/v1/orders")
	})
	if err != nil {
		return domain.Order{}, apperror.Wrap(err, apperror.CodeOrderRejected, e.id)
	}

	return domain.Order{
		ID:          order.ID,
		Symbol:      symbol.Symbol(order.Symbol),
		Side:        side,
		Price:       order.Price,
		Amount:      order.Amount,
		ExecutedQty: order.ExecutedQty,
	}, nil
}

// FetchDepositAddress returns a deposit address for the asset.
func (e *Exchange) FetchDepositAddress(ctx context.Context, asset string) (domain.DepositAddress, error) {
	var addr depositAddressMessage
	_, err := e.do(ctx, func() (*httpclient.Response, error) {
		return e.client.NewRequest().
			SetResult(&addr).
			SetQueryParam("asset", asset).
			Get(ctx, "/api/v1/deposit-address")
	})
	if err != nil {
		return domain.DepositAddress{}, apperror.Wrap(err, apperror.CodeDepositAddressUnavailable, e.id)
	}
	return domain.DepositAddress{Asset: addr.Asset, Address: addr.Address, Tag: addr.Tag}, nil
}

// Withdraw submits a withdrawal of qty of asset to the address.
func (e *Exchange) Withdraw(ctx context.Context, asset string, qty decimal.Decimal, addr domain.DepositAddress) (domain.WithdrawalRef, error) {
	var ref withdrawMessage
	_, err := e.do(ctx, func() (*httpclient.Response, error) {
		return e.client.NewRequest().
			SetResult(&ref).
			SetBody(withdrawRequest{
				Asset:   asset,
				Amount:  qty,
				Address: addr.Address,
				Tag:     addr.Tag,
			}).
			Post(ctx, "/api/v1/withdrawals")
	})
	if err != nil {
		return domain.WithdrawalRef{}, apperror.Wrap(err, apperror.CodeWithdrawFailed, e.id)
	}
	return domain.WithdrawalRef{ID: ref.ID, TxID: ref.TxID}, nil
}

// FetchBalance returns per-asset balances for the account.
func (e *Exchange) FetchBalance(ctx context.Context) (map[string]domain.Balance, error) {
	var balances []balanceMessage
	_, err := e.do(ctx, func() (*httpclient.Response, error) {
		return e.client.NewRequest().SetResult(&balances).Get(ctx, "/api/v1/balances")
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeBalanceFetchFailed, e.id)
	}

	out := make(map[string]domain.Balance, len(balances))
	for _, b := range balances {
		out[b.Asset] = domain.Balance{Free: b.Free, Total: b.Total}
	}
	return out, nil
}
