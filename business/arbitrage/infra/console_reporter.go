// Package infra provides reporting sinks for cycle and execution results.
package infra

import (
	"log/slog"

	"github.com/fd1az/crossarb/business/arbitrage/app"
	"github.com/fd1az/crossarb/business/arbitrage/domain"
)

// ConsoleReporter logs cycle and execution results through the structured logger.
// Used in CLI mode where no TUI is running.
type ConsoleReporter struct {
	logger *slog.Logger
}

// NewConsoleReporter creates a reporter that writes to the given logger.
func NewConsoleReporter(logger *slog.Logger) *ConsoleReporter {
	return &ConsoleReporter{logger: logger}
}

// ReportCycle logs a one line summary per symbol scanned.
func (r *ConsoleReporter) ReportCycle(report app.CycleReport) {
	r.logger.Info("cycle complete",
		"cycle", report.Number,
		"symbols", len(report.Results),
		"duration", report.Duration.String(),
	)

	for _, result := range report.Results {
		opp := result.Opportunity
		if opp == nil {
			r.logger.Warn("no prices available",
				"cycle", report.Number,
				"symbol", result.Symbol.String(),
			)
			continue
		}

		attrs := []any{
			"cycle", report.Number,
			"symbol", result.Symbol.String(),
			"buy_exchange", opp.Buy.ExchangeID,
			"buy_price", opp.Buy.Price.String(),
			"sell_exchange", opp.Sell.ExchangeID,
			"sell_price", opp.Sell.Price.String(),
			"net_profit", opp.Profit.NetProfit.String(),
			"net_profit_pct", opp.Profit.NetProfitPct.StringFixed(4),
			"classification", string(opp.Classification),
		}

		switch opp.Classification {
		case domain.ClassificationExecutable:
			r.logger.Info("executable opportunity", attrs...)
		case domain.ClassificationLossAverting:
			r.logger.Warn("loss averting spread", attrs...)
		default:
			r.logger.Debug("spread below threshold", attrs...)
		}
	}
}

// ReportExecution logs a finished execution attempt.
func (r *ConsoleReporter) ReportExecution(report domain.ExecutionReport) {
	attrs := []any{
		"execution_id", report.ExecutionID,
		"symbol", report.Symbol.String(),
		"outcome", string(report.Outcome),
		"final_state", string(report.FinalState),
		"duration", report.FinishedAt.Sub(report.StartedAt).String(),
	}
	if report.Reason != "" {
		attrs = append(attrs, "reason", report.Reason)
	}

	switch report.Outcome {
	case domain.OutcomeCompleted:
		attrs = append(attrs,
			"buy_price", report.BuyPrice.String(),
			"sell_price", report.SellPrice.String(),
			"realized_pl", report.RealizedPL.String(),
		)
		r.logger.Info("execution completed", attrs...)
	case domain.OutcomeSkippedPaperTrading:
		r.logger.Info("execution skipped, paper trading", attrs...)
	case domain.OutcomeFailed:
		r.logger.Error("execution failed", attrs...)
	default:
		r.logger.Warn("execution aborted", attrs...)
	}
}
