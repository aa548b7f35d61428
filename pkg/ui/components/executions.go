package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// ExecutionRow is one finished execution attempt.
type ExecutionRow struct {
	Timestamp  string
	Symbol     string
	Route      string // "buy-exchange → sell-exchange" rendered by the caller
	Outcome    string
	RealizedPL decimal.Decimal
	Completed  bool
	Aborted    bool
}

// ExecutionsComponent renders the recent execution attempts, newest first.
type ExecutionsComponent struct {
	rows    []ExecutionRow
	maxRows int
}

// NewExecutionsComponent creates a new executions component.
func NewExecutionsComponent(maxRows int) *ExecutionsComponent {
	return &ExecutionsComponent{
		rows:    make([]ExecutionRow, 0),
		maxRows: maxRows,
	}
}

// Add prepends a finished execution.
func (e *ExecutionsComponent) Add(row ExecutionRow) {
	e.rows = append([]ExecutionRow{row}, e.rows...)
	if len(e.rows) > e.maxRows {
		e.rows = e.rows[:e.maxRows]
	}
}

// Clear clears all executions.
func (e *ExecutionsComponent) Clear() {
	e.rows = make([]ExecutionRow, 0)
}

// View renders the executions component.
func (e *ExecutionsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))

	if len(e.rows) == 0 {
		return headerStyle.Render("EXECUTIONS") + "\n\n  No executions yet..."
	}

	completedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	abortedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	failedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	result := headerStyle.Render(fmt.Sprintf("EXECUTIONS (last %d)", e.maxRows))
	result += "\n\n"

	for _, row := range e.rows {
		style := failedStyle
		icon := "✗"
		switch {
		case row.Completed:
			style = completedStyle
			icon = "✓"
		case row.Aborted:
			style = abortedStyle
			icon = "⚠"
		}

		line := fmt.Sprintf("[%s] %s %s %s", row.Timestamp, row.Symbol, row.Route,
			style.Render(icon+" "+row.Outcome))
		if row.Completed {
			line += completedStyle.Render(fmt.Sprintf("  %+.4f", row.RealizedPL.InexactFloat64()))
		}
		result += "  " + line + "\n"
	}

	return result
}
