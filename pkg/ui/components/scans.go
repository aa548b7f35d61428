// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// ScanRow is one symbol's result from the latest cycle.
type ScanRow struct {
	Symbol       string
	BuyExchange  string
	BuyPrice     decimal.Decimal
	SellExchange string
	SellPrice    decimal.Decimal
	NetProfitPct decimal.Decimal
	Status       string // "EXECUTABLE", "LOSS SKIP", "neutral", "no data"
	HasData      bool
	Executable   bool
	LossAverting bool
}

// ScansComponent renders the per-symbol spread table for the latest cycle.
type ScansComponent struct {
	rows  []ScanRow
	cycle int
}

// NewScansComponent creates a new scans component.
func NewScansComponent() *ScansComponent {
	return &ScansComponent{rows: make([]ScanRow, 0)}
}

// Update replaces the table with the latest cycle's rows.
func (s *ScansComponent) Update(cycle int, rows []ScanRow) {
	s.cycle = cycle
	s.rows = rows
}

// View renders the scans component.
func (s *ScansComponent) View() string {
	if len(s.rows) == 0 {
		return "Waiting for first scan cycle..."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	executableStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	lossStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var result string
	result = headerStyle.Render(fmt.Sprintf("SPREADS (cycle %d)", s.cycle))
	result += "\n\n"

	result += fmt.Sprintf("  %-11s  %-20s  %-20s  %9s  %-11s\n",
		"Symbol", "Buy", "Sell", "Net %", "Status")
	result += dimStyle.Render("  "+strings.Repeat("─", 78)) + "\n"

	for _, row := range s.rows {
		if !row.HasData {
			result += fmt.Sprintf("  %-11s  %s\n", row.Symbol,
				dimStyle.Render("no prices available"))
			continue
		}

		statusStyle := dimStyle
		if row.Executable {
			statusStyle = executableStyle
		} else if row.LossAverting {
			statusStyle = lossStyle
		}

		pctStyle := dimStyle
		if row.NetProfitPct.IsPositive() {
			pctStyle = executableStyle
		} else if row.NetProfitPct.IsNegative() {
			pctStyle = lossStyle
		}

		result += fmt.Sprintf("  %-11s  %-20s  %-20s  %s  %s\n",
			row.Symbol,
			fmt.Sprintf("%s @ %s", row.BuyExchange, row.BuyPrice.StringFixed(4)),
			fmt.Sprintf("%s @ %s", row.SellExchange, row.SellPrice.StringFixed(4)),
			pctStyle.Render(fmt.Sprintf("%+8.4f%%", row.NetProfitPct.InexactFloat64())),
			statusStyle.Render(row.Status),
		)
	}

	return result
}
