package app

import (
	"time"

	"github.com/fd1az/crossarb/business/arbitrage/domain"
)

// CycleReport summarizes one full scan pass over every configured symbol.
type CycleReport struct {
	Number    int
	StartedAt time.Time
	Duration  time.Duration
	Results   []ScanResult
}

// Reporter receives cycle and execution results as they happen.
// Implementations must be safe for concurrent use: execution reports arrive
// from executor goroutines while the next cycle is already scanning.
type Reporter interface {
	ReportCycle(report CycleReport)
	ReportExecution(report domain.ExecutionReport)
}
