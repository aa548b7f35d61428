package infra

import (
	"github.com/fd1az/crossarb/business/arbitrage/app"
	"github.com/fd1az/crossarb/business/arbitrage/domain"
	"github.com/fd1az/crossarb/pkg/ui"
)

// TUIReporter forwards cycle and execution results to the Bubble Tea program.
type TUIReporter struct{}

// NewTUIReporter creates a reporter that renders through the TUI.
func NewTUIReporter() *TUIReporter {
	return &TUIReporter{}
}

// ReportCycle sends the cycle results to the dashboard.
func (r *TUIReporter) ReportCycle(report app.CycleReport) {
	ui.Send(ui.CycleMsg{Report: report})
}

// ReportExecution sends a finished execution to the dashboard.
func (r *TUIReporter) ReportExecution(report domain.ExecutionReport) {
	ui.Send(ui.ExecutionMsg{Report: report})
}
