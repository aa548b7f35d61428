package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/crossarb/business/arbitrage/domain"
	marketapp "github.com/fd1az/crossarb/business/market/app"
	"github.com/fd1az/crossarb/internal/apm"
	"github.com/fd1az/crossarb/internal/apperror"
	"github.com/fd1az/crossarb/internal/symbol"
)

// ExecutorConfig holds the guards and modes for trade execution.
type ExecutorConfig struct {
	PaperTrading      bool
	PostProcessing    bool
	SlippageTolerance decimal.Decimal // max price drift in percent, inclusive
	WithdrawFee       decimal.Decimal
	ProfitUnit        string // asset profits are repatriated in, e.g. "USDT"

	TransferDeadline    time.Duration // total budget for the cross-exchange transfer
	TransferPollInitial time.Duration
	TransferPollMax     time.Duration
}

type executorMetrics struct {
	executions metric.Int64Counter
	duration   metric.Float64Histogram
}

// Executor drives one opportunity through the buy, transfer, sell pipeline.
//
// At most one execution runs per symbol at a time; Execute returns an
// in-flight error when the symbol is already being traded. In paper trading
// mode no exchange capability is ever called.
type Executor struct {
	exchanges map[string]marketapp.Exchange
	config    ExecutorConfig
	logger    *slog.Logger

	mu       sync.Mutex
	inFlight map[symbol.Symbol]struct{}

	metrics executorMetrics
	tracer  apm.Tracer
}

// NewExecutor creates an Executor over the given exchanges.
func NewExecutor(exchanges []marketapp.Exchange, cfg ExecutorConfig, logger *slog.Logger) (*Executor, error) {
	byID := make(map[string]marketapp.Exchange, len(exchanges))
	for _, ex := range exchanges {
		byID[ex.ID()] = ex
	}

	if cfg.TransferDeadline <= 0 {
		cfg.TransferDeadline = 30 * time.Minute
	}
	if cfg.TransferPollInitial <= 0 {
		cfg.TransferPollInitial = 2 * time.Second
	}
	if cfg.TransferPollMax <= 0 {
		cfg.TransferPollMax = 30 * time.Second
	}

	e := &Executor{
		exchanges: byID,
		config:    cfg,
		logger:    logger,
		inFlight:  make(map[symbol.Symbol]struct{}),
		tracer:    apm.NewTracer(meterName),
	}

	meter := otel.Meter(meterName)
	var err error
	e.metrics.executions, err = meter.Int64Counter(
		"arbitrage_executions_total",
		metric.WithDescription("Execution attempts by outcome"),
	)
	if err != nil {
		return nil, err
	}
	e.metrics.duration, err = meter.Float64Histogram(
		"arbitrage_execution_duration_ms",
		metric.WithDescription("Wall time of one execution attempt"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return e, nil
}

// InFlight reports whether an execution is currently running for sym.
func (e *Executor) InFlight(sym symbol.Symbol) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.inFlight[sym]
	return ok
}

func (e *Executor) acquire(sym symbol.Symbol) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.inFlight[sym]; ok {
		return false
	}
	e.inFlight[sym] = struct{}{}
	return true
}

func (e *Executor) release(sym symbol.Symbol) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, sym)
}

// Execute runs the opportunity through the pipeline and returns the full
// report. The only error return is an in-flight or unknown-exchange rejection;
// trade-level aborts and failures are reported through the outcome.
func (e *Executor) Execute(ctx context.Context, opp *domain.Opportunity) (domain.ExecutionReport, error) {
	report := domain.ExecutionReport{
		ExecutionID: uuid.NewString(),
		Symbol:      opp.Symbol,
		Opportunity: *opp,
		StartedAt:   time.Now(),
	}

	if e.config.PaperTrading {
		report.Outcome = domain.OutcomeSkippedPaperTrading
		report.FinalState = domain.StateIdle
		report.FinishedAt = time.Now()
		e.record(ctx, report)
		return report, nil
	}

	buyEx, ok := e.exchanges[opp.Buy.ExchangeID]
	if !ok {
		return report, apperror.New(apperror.CodeInternalError,
			apperror.WithMessage("unknown buy exchange "+opp.Buy.ExchangeID))
	}
	sellEx, ok := e.exchanges[opp.Sell.ExchangeID]
	if !ok {
		return report, apperror.New(apperror.CodeInternalError,
			apperror.WithMessage("unknown sell exchange "+opp.Sell.ExchangeID))
	}

	if !e.acquire(opp.Symbol) {
		return report, apperror.New(apperror.CodeExecutionInFlight,
			apperror.WithContext(opp.Symbol.String()))
	}
	defer e.release(opp.Symbol)

	ctx, span := e.tracer.StartSpanFromContext(ctx, "execute_trade", trace.WithAttributes(
		attribute.String("symbol", opp.Symbol.String()),
		attribute.String("buy_exchange", opp.Buy.ExchangeID),
		attribute.String("sell_exchange", opp.Sell.ExchangeID),
	))
	defer span.End()

	report = e.run(ctx, report, opp, buyEx, sellEx)
	report.FinishedAt = time.Now()
	span.SetAttribute(attribute.String("outcome", string(report.Outcome)))
	e.record(ctx, report)
	return report, nil
}

func (e *Executor) run(ctx context.Context, report domain.ExecutionReport, opp *domain.Opportunity, buyEx, sellEx marketapp.Exchange) domain.ExecutionReport {
	sym := opp.Symbol
	size := opp.OrderSize
	base := sym.Base()

	fail := func(state domain.ExecutionState, err error) domain.ExecutionReport {
		report.Outcome = domain.OutcomeFailed
		report.FinalState = state
		report.Reason = err.Error()
		e.logger.Error("execution failed", "execution_id", report.ExecutionID,
			"symbol", sym, "state", state, "error", err)
		return report
	}

	// Re-quote the buy side; the scan price may be stale by now.
	report.FinalState = domain.StateCheckBuySlippage
	ticker, err := buyEx.FetchTicker(ctx, sym)
	if err != nil {
		return fail(domain.StateCheckBuySlippage, err)
	}
	observedBuy := ticker.Ask
	if !domain.WithinSlippage(opp.Buy.Price, observedBuy, e.config.SlippageTolerance) {
		report.Outcome = domain.OutcomeAbortedSlippageBuy
		report.Reason = "buy price moved beyond tolerance"
		report.BuyPrice = observedBuy
		e.logger.Warn("buy slippage exceeded", "execution_id", report.ExecutionID,
			"symbol", sym, "expected", opp.Buy.Price, "observed", observedBuy)
		return report
	}
	report.BuyPrice = observedBuy

	report.FinalState = domain.StateBuying
	if _, err := buyEx.CreateLimitBuyOrder(ctx, sym, size, observedBuy); err != nil {
		return fail(domain.StateBuying, err)
	}
	e.logger.Info("bought", "execution_id", report.ExecutionID,
		"symbol", sym, "exchange", buyEx.ID(), "price", observedBuy)

	report.FinalState = domain.StateTransferring
	addr, err := sellEx.FetchDepositAddress(ctx, base)
	if err != nil {
		return fail(domain.StateTransferring, err)
	}
	withdrawal, err := buyEx.Withdraw(ctx, base, size, addr)
	if err != nil {
		return fail(domain.StateTransferring, err)
	}
	e.logger.Info("transfer submitted", "execution_id", report.ExecutionID,
		"symbol", sym, "from", buyEx.ID(), "to", sellEx.ID(), "withdrawal_id", withdrawal.ID)

	report.FinalState = domain.StateAwaitingFunds
	if err := e.awaitFunds(ctx, sellEx, base, size); err != nil {
		report.Outcome = domain.OutcomeAbortedTransferTimeout
		report.Reason = err.Error()
		e.logger.Error("transfer never arrived", "execution_id", report.ExecutionID,
			"symbol", sym, "to", sellEx.ID(), "error", err)
		return report
	}

	report.FinalState = domain.StateCheckSellSlippage
	ticker, err = sellEx.FetchTicker(ctx, sym)
	if err != nil {
		return fail(domain.StateCheckSellSlippage, err)
	}
	observedSell := ticker.Bid
	if !domain.WithinSlippage(opp.Sell.Price, observedSell, e.config.SlippageTolerance) {
		report.Outcome = domain.OutcomeAbortedSlippageSell
		report.Reason = "sell price moved beyond tolerance"
		report.SellPrice = observedSell
		e.logger.Warn("sell slippage exceeded", "execution_id", report.ExecutionID,
			"symbol", sym, "expected", opp.Sell.Price, "observed", observedSell)
		return report
	}
	report.SellPrice = observedSell

	report.FinalState = domain.StateSelling
	sellOrder, err := sellEx.CreateLimitSellOrder(ctx, sym, size, observedSell)
	if err != nil {
		return fail(domain.StateSelling, err)
	}
	e.logger.Info("sold", "execution_id", report.ExecutionID,
		"symbol", sym, "exchange", sellEx.ID(), "price", observedSell)

	if e.config.PostProcessing {
		report.FinalState = domain.StatePostProcessing
		if err := e.repatriateProceeds(ctx, buyEx, sellEx, sym, sellOrder.ExecutedQty); err != nil {
			return fail(domain.StatePostProcessing, err)
		}
	}

	report.FinalState = domain.StateCompleted
	report.Outcome = domain.OutcomeCompleted
	report.RealizedPL = domain.ComputeProfit(observedBuy, observedSell, size,
		buyEx.TakerFeeRate(), sellEx.TakerFeeRate(), e.config.WithdrawFee).NetProfit
	return report
}

// awaitFunds polls the destination exchange until the transferred amount is
// free to trade, backing off exponentially up to TransferPollMax and giving
// up at TransferDeadline.
func (e *Executor) awaitFunds(ctx context.Context, ex marketapp.Exchange, asset string, need decimal.Decimal) error {
	ctx, cancel := context.WithTimeout(ctx, e.config.TransferDeadline)
	defer cancel()

	delay := e.config.TransferPollInitial
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		balances, err := ex.FetchBalance(ctx)
		if err != nil {
			// Transient balance errors do not abort the wait.
			e.logger.Warn("balance fetch failed while awaiting funds",
				"exchange", ex.ID(), "asset", asset, "error", err)
		} else if b, ok := balances[asset]; ok && b.Free.GreaterThanOrEqual(need) {
			return nil
		}

		timer.Reset(delay)
		select {
		case <-ctx.Done():
			return apperror.New(apperror.CodeTransferTimeout,
				apperror.WithCause(ctx.Err()),
				apperror.WithContext(ex.ID()+"/"+asset))
		case <-timer.C:
		}

		delay *= 2
		if delay > e.config.TransferPollMax {
			delay = e.config.TransferPollMax
		}
	}
}

// repatriateProceeds converts the sale proceeds into the profit unit and
// withdraws them back to the buy exchange for the next cycle.
func (e *Executor) repatriateProceeds(ctx context.Context, buyEx, sellEx marketapp.Exchange, sym symbol.Symbol, executedQty decimal.Decimal) error {
	rate := decimal.NewFromInt(1)
	if base := sym.Base(); base != e.config.ProfitUnit {
		conv, err := sellEx.FetchTicker(ctx, symbol.Symbol(base+"/"+e.config.ProfitUnit))
		if err != nil {
			return err
		}
		rate = conv.Last
	}
	proceeds := executedQty.Mul(rate)

	addr, err := buyEx.FetchDepositAddress(ctx, e.config.ProfitUnit)
	if err != nil {
		return err
	}
	if _, err := sellEx.Withdraw(ctx, e.config.ProfitUnit, proceeds, addr); err != nil {
		return err
	}
	e.logger.Info("proceeds repatriated", "symbol", sym,
		"from", sellEx.ID(), "to", buyEx.ID(), "amount", proceeds, "unit", e.config.ProfitUnit)
	return nil
}

func (e *Executor) record(ctx context.Context, report domain.ExecutionReport) {
	e.metrics.executions.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", string(report.Outcome))))
	e.metrics.duration.Record(ctx, float64(report.FinishedAt.Sub(report.StartedAt).Milliseconds()),
		metric.WithAttributes(attribute.String("outcome", string(report.Outcome))))
}
