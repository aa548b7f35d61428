package app

import (
	"context"
	"testing"
	"time"

	"github.com/fd1az/crossarb/business/arbitrage/domain"
	marketapp "github.com/fd1az/crossarb/business/market/app"
	marketdomain "github.com/fd1az/crossarb/business/market/domain"
	"github.com/fd1az/crossarb/internal/apperror"
)

func testOpportunity() *domain.Opportunity {
	return &domain.Opportunity{
		Timestamp:      time.Now(),
		Symbol:         "BTC/USDT",
		OrderSize:      d("0.001"),
		Buy:            domain.Quote{ExchangeID: "alpha", Price: d("100")},
		Sell:           domain.Quote{ExchangeID: "beta", Price: d("110")},
		Classification: domain.ClassificationExecutable,
	}
}

func newTestExecutor(t *testing.T, cfg ExecutorConfig, exchanges ...marketapp.Exchange) *Executor {
	t.Helper()
	e, err := NewExecutor(exchanges, cfg, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func liveConfig() ExecutorConfig {
	return ExecutorConfig{
		SlippageTolerance:   d("0.5"),
		ProfitUnit:          "USDT",
		TransferDeadline:    time.Second,
		TransferPollInitial: time.Millisecond,
		TransferPollMax:     5 * time.Millisecond,
	}
}

func TestExecutor_PaperTradingCallsNothing(t *testing.T) {
	buy := newScriptedExchange("alpha")
	sell := newScriptedExchange("beta")

	cfg := liveConfig()
	cfg.PaperTrading = true
	e := newTestExecutor(t, cfg, buy, sell)

	report, err := e.Execute(context.Background(), testOpportunity())
	if err != nil {
		t.Fatal(err)
	}
	if report.Outcome != domain.OutcomeSkippedPaperTrading {
		t.Errorf("outcome = %s, want %s", report.Outcome, domain.OutcomeSkippedPaperTrading)
	}
	if n := buy.totalCalls() + sell.totalCalls(); n != 0 {
		t.Errorf("exchange calls = %d, want 0 in paper trading", n)
	}
}

func TestExecutor_Completed(t *testing.T) {
	buy := newScriptedExchange("alpha")
	buy.tickers["BTC/USDT"] = marketdomain.Ticker{Ask: d("100"), Bid: d("99.9"), Last: d("100")}
	sell := newScriptedExchange("beta")
	sell.tickers["BTC/USDT"] = marketdomain.Ticker{Ask: d("110.1"), Bid: d("110"), Last: d("110")}
	sell.setBalance("BTC", d("0.001"))

	e := newTestExecutor(t, liveConfig(), buy, sell)

	report, err := e.Execute(context.Background(), testOpportunity())
	if err != nil {
		t.Fatal(err)
	}

	if report.Outcome != domain.OutcomeCompleted {
		t.Fatalf("outcome = %s (%s), want completed", report.Outcome, report.Reason)
	}
	if report.FinalState != domain.StateCompleted {
		t.Errorf("final state = %s, want %s", report.FinalState, domain.StateCompleted)
	}

	if n := buy.callCount("CreateLimitBuyOrder"); n != 1 {
		t.Errorf("buy orders = %d, want 1", n)
	}
	if n := buy.callCount("Withdraw"); n != 1 {
		t.Errorf("withdrawals from buy exchange = %d, want 1", n)
	}
	if n := sell.callCount("CreateLimitSellOrder"); n != 1 {
		t.Errorf("sell orders = %d, want 1", n)
	}
	if n := sell.callCount("Withdraw"); n != 0 {
		t.Errorf("withdrawals from sell exchange = %d, want 0 without post-processing", n)
	}

	// Fees are zero in this fake, so the realized result is the raw spread.
	if !report.RealizedPL.Equal(d("0.01")) {
		t.Errorf("realized P/L = %s, want 0.01", report.RealizedPL)
	}
	if !report.BuyPrice.Equal(d("100")) || !report.SellPrice.Equal(d("110")) {
		t.Errorf("prices = buy %s, sell %s, want 100/110", report.BuyPrice, report.SellPrice)
	}
}

func TestExecutor_PostProcessingRepatriatesProceeds(t *testing.T) {
	buy := newScriptedExchange("alpha")
	buy.tickers["BTC/USDT"] = marketdomain.Ticker{Ask: d("100"), Bid: d("99.9"), Last: d("100")}
	sell := newScriptedExchange("beta")
	sell.tickers["BTC/USDT"] = marketdomain.Ticker{Ask: d("110.1"), Bid: d("110"), Last: d("110")}
	sell.setBalance("BTC", d("0.001"))

	cfg := liveConfig()
	cfg.PostProcessing = true
	e := newTestExecutor(t, cfg, buy, sell)

	report, err := e.Execute(context.Background(), testOpportunity())
	if err != nil {
		t.Fatal(err)
	}
	if report.Outcome != domain.OutcomeCompleted {
		t.Fatalf("outcome = %s (%s), want completed", report.Outcome, report.Reason)
	}

	// Proceeds flow back: deposit address on the buy side, withdrawal from
	// the sell side, both in the profit unit.
	if n := buy.callCount("FetchDepositAddress"); n != 1 {
		t.Errorf("deposit address fetches on buy exchange = %d, want 1", n)
	}
	if n := sell.callCount("Withdraw"); n != 1 {
		t.Errorf("withdrawals from sell exchange = %d, want 1", n)
	}
}

func TestExecutor_BuySlippage(t *testing.T) {
	tests := []struct {
		name        string
		ask         string
		wantOutcome domain.Outcome
	}{
		{"exactly_at_tolerance_proceeds", "100.5", domain.OutcomeCompleted},
		{"just_over_tolerance_aborts", "100.501", domain.OutcomeAbortedSlippageBuy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buy := newScriptedExchange("alpha")
			buy.tickers["BTC/USDT"] = marketdomain.Ticker{Ask: d(tt.ask), Bid: d("100"), Last: d("100")}
			sell := newScriptedExchange("beta")
			sell.tickers["BTC/USDT"] = marketdomain.Ticker{Ask: d("110.1"), Bid: d("110"), Last: d("110")}
			sell.setBalance("BTC", d("0.001"))

			e := newTestExecutor(t, liveConfig(), buy, sell)

			report, err := e.Execute(context.Background(), testOpportunity())
			if err != nil {
				t.Fatal(err)
			}
			if report.Outcome != tt.wantOutcome {
				t.Fatalf("outcome = %s (%s), want %s", report.Outcome, report.Reason, tt.wantOutcome)
			}
			if tt.wantOutcome == domain.OutcomeAbortedSlippageBuy {
				if n := buy.callCount("CreateLimitBuyOrder"); n != 0 {
					t.Errorf("buy orders after abort = %d, want 0", n)
				}
				if report.FinalState != domain.StateCheckBuySlippage {
					t.Errorf("final state = %s, want %s", report.FinalState, domain.StateCheckBuySlippage)
				}
			}
		})
	}
}

func TestExecutor_SellSlippageAbortsAfterTransfer(t *testing.T) {
	buy := newScriptedExchange("alpha")
	buy.tickers["BTC/USDT"] = marketdomain.Ticker{Ask: d("100"), Bid: d("99.9"), Last: d("100")}
	sell := newScriptedExchange("beta")
	// Bid collapsed well below the expected 110.
	sell.tickers["BTC/USDT"] = marketdomain.Ticker{Ask: d("105.1"), Bid: d("105"), Last: d("105")}
	sell.setBalance("BTC", d("0.001"))

	e := newTestExecutor(t, liveConfig(), buy, sell)

	report, err := e.Execute(context.Background(), testOpportunity())
	if err != nil {
		t.Fatal(err)
	}
	if report.Outcome != domain.OutcomeAbortedSlippageSell {
		t.Fatalf("outcome = %s, want %s", report.Outcome, domain.OutcomeAbortedSlippageSell)
	}
	// The buy and transfer already happened; only the sell must be withheld.
	if n := buy.callCount("CreateLimitBuyOrder"); n != 1 {
		t.Errorf("buy orders = %d, want 1", n)
	}
	if n := sell.callCount("CreateLimitSellOrder"); n != 0 {
		t.Errorf("sell orders = %d, want 0", n)
	}
}

func TestExecutor_TransferTimeout(t *testing.T) {
	buy := newScriptedExchange("alpha")
	buy.tickers["BTC/USDT"] = marketdomain.Ticker{Ask: d("100"), Bid: d("99.9"), Last: d("100")}
	sell := newScriptedExchange("beta")
	sell.tickers["BTC/USDT"] = marketdomain.Ticker{Ask: d("110.1"), Bid: d("110"), Last: d("110")}
	// Funds never arrive.

	cfg := liveConfig()
	cfg.TransferDeadline = 30 * time.Millisecond
	e := newTestExecutor(t, cfg, buy, sell)

	report, err := e.Execute(context.Background(), testOpportunity())
	if err != nil {
		t.Fatal(err)
	}
	if report.Outcome != domain.OutcomeAbortedTransferTimeout {
		t.Fatalf("outcome = %s, want %s", report.Outcome, domain.OutcomeAbortedTransferTimeout)
	}
	if report.FinalState != domain.StateAwaitingFunds {
		t.Errorf("final state = %s, want %s", report.FinalState, domain.StateAwaitingFunds)
	}
	if n := sell.callCount("FetchBalance"); n < 2 {
		t.Errorf("balance polls = %d, want at least 2", n)
	}
	if n := sell.callCount("CreateLimitSellOrder"); n != 0 {
		t.Errorf("sell orders after timeout = %d, want 0", n)
	}
}

func TestExecutor_OnePerSymbol(t *testing.T) {
	buy := newScriptedExchange("alpha")
	buy.tickers["BTC/USDT"] = marketdomain.Ticker{Ask: d("100"), Bid: d("99.9"), Last: d("100")}
	sell := newScriptedExchange("beta")
	sell.tickers["BTC/USDT"] = marketdomain.Ticker{Ask: d("110.1"), Bid: d("110"), Last: d("110")}
	sell.setBalance("BTC", d("0.001"))
	gate := make(chan struct{})
	sell.balanceGate = gate

	e := newTestExecutor(t, liveConfig(), buy, sell)

	done := make(chan domain.ExecutionReport, 1)
	go func() {
		report, _ := e.Execute(context.Background(), testOpportunity())
		done <- report
	}()

	// Wait until the first execution is parked in the balance poll.
	deadline := time.After(time.Second)
	for !e.InFlight("BTC/USDT") {
		select {
		case <-deadline:
			t.Fatal("first execution never started")
		case <-time.After(time.Millisecond):
		}
	}

	_, err := e.Execute(context.Background(), testOpportunity())
	if !apperror.HasCode(err, apperror.CodeExecutionInFlight) {
		t.Fatalf("second execute error = %v, want %s", err, apperror.CodeExecutionInFlight)
	}

	close(gate)
	report := <-done
	if report.Outcome != domain.OutcomeCompleted {
		t.Fatalf("first execution outcome = %s (%s), want completed", report.Outcome, report.Reason)
	}
	if e.InFlight("BTC/USDT") {
		t.Error("symbol still marked in flight after completion")
	}
}
