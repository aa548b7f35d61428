// Package ui provides the Bubble Tea TUI for the arbitrage bot.
package ui

import (
	arbitrageApp "github.com/fd1az/crossarb/business/arbitrage/app"
	"github.com/fd1az/crossarb/business/arbitrage/domain"
)

// Message types for TUI updates

// CycleMsg is sent after every scan cycle with the full per-symbol results.
type CycleMsg struct {
	Report arbitrageApp.CycleReport
}

// ExecutionMsg is sent when an execution attempt finishes.
type ExecutionMsg struct {
	Report domain.ExecutionReport
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string // Current step name
	Status  string // "connecting", "connected", "failed"
	Message string // Optional message
}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}
