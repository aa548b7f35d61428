package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/crossarb/internal/symbol"
)

// ExecutionState is one stage of the buy, transfer, sell pipeline.
type ExecutionState string

const (
	StateIdle              ExecutionState = "idle"
	StateCheckBuySlippage  ExecutionState = "check_buy_slippage"
	StateBuying            ExecutionState = "buying"
	StateTransferring      ExecutionState = "transferring"
	StateAwaitingFunds     ExecutionState = "awaiting_funds"
	StateCheckSellSlippage ExecutionState = "check_sell_slippage"
	StateSelling           ExecutionState = "selling"
	StatePostProcessing    ExecutionState = "post_processing"
	StateCompleted         ExecutionState = "completed"
)

// Outcome is the terminal result of one execution attempt.
type Outcome string

const (
	OutcomeCompleted             Outcome = "completed"
	OutcomeSkippedPaperTrading   Outcome = "skipped_paper_trading"
	OutcomeAbortedSlippageBuy    Outcome = "aborted_slippage_buy"
	OutcomeAbortedSlippageSell   Outcome = "aborted_slippage_sell"
	OutcomeAbortedTransferTimeout Outcome = "aborted_transfer_timeout"
	OutcomeFailed                Outcome = "failed"
)

// Aborted reports whether the outcome is a guard-triggered abort rather than
// a completed trade or an infrastructure failure.
func (o Outcome) Aborted() bool {
	switch o {
	case OutcomeAbortedSlippageBuy, OutcomeAbortedSlippageSell, OutcomeAbortedTransferTimeout:
		return true
	}
	return false
}

// ExecutionReport is the full record of one execution attempt.
type ExecutionReport struct {
	ExecutionID string
	Symbol      symbol.Symbol
	Opportunity Opportunity
	Outcome     Outcome
	FinalState  ExecutionState
	Reason      string // populated for aborts and failures

	BuyPrice   decimal.Decimal // observed price the buy leg was placed at
	SellPrice  decimal.Decimal // observed price the sell leg was placed at
	RealizedPL decimal.Decimal // in the configured profit unit; zero unless completed

	StartedAt  time.Time
	FinishedAt time.Time
}
