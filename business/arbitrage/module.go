// Package arbitrage implements the arbitrage bounded context: spread
// scanning, trade execution and the cycle scheduler.
package arbitrage

import (
	"context"

	"github.com/fd1az/crossarb/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/crossarb/business/arbitrage/di"
	"github.com/fd1az/crossarb/business/arbitrage/infra"
	marketDI "github.com/fd1az/crossarb/business/market/di"
	"github.com/fd1az/crossarb/internal/config"
	"github.com/fd1az/crossarb/internal/di"
	"github.com/fd1az/crossarb/internal/logger"
	"github.com/fd1az/crossarb/internal/monolith"
	"github.com/fd1az/crossarb/internal/symbol"
)

// Module implements the arbitrage bounded context. With TUI set, cycle and
// execution results render on the dashboard instead of the log stream.
type Module struct {
	TUI bool
}

// RegisterServices registers all arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register the Scanner - private dependency
	di.RegisterToken(c, arbitrageDI.Scanner, func(sr di.ServiceRegistry) *app.Scanner {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(*logger.Logger)
		symbols := sr.Get("symbols").(*symbol.Table)
		gateways := marketDI.GetGateways(sr)

		scanner, err := app.NewScanner(gateways.Exchanges, symbols, app.ScannerConfig{
			ProfitThreshold: cfg.Trading.ProfitThresholdDecimal(),
			LossThreshold:   cfg.Trading.LossThresholdDecimal(),
			WithdrawFee:     cfg.Trading.WithdrawFeeDecimal(),
		}, log.Slog())
		if err != nil {
			panic("failed to create scanner: " + err.Error())
		}
		return scanner
	})

	// Register the Executor - private dependency
	di.RegisterToken(c, arbitrageDI.Executor, func(sr di.ServiceRegistry) *app.Executor {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(*logger.Logger)
		gateways := marketDI.GetGateways(sr)

		executor, err := app.NewExecutor(gateways.Exchanges, app.ExecutorConfig{
			PaperTrading:        cfg.Trading.PaperTrading,
			PostProcessing:      cfg.Trading.PostProcessing,
			SlippageTolerance:   cfg.Trading.SlippageToleranceDecimal(),
			WithdrawFee:         cfg.Trading.WithdrawFeeDecimal(),
			ProfitUnit:          cfg.Trading.ProfitUnit,
			TransferDeadline:    cfg.Trading.TransferDeadline,
			TransferPollInitial: cfg.Trading.TransferPollInitial,
			TransferPollMax:     cfg.Trading.TransferPollMax,
		}, log.Slog())
		if err != nil {
			panic("failed to create executor: " + err.Error())
		}
		return executor
	})

	// Register the Reporter - private dependency
	di.RegisterToken(c, arbitrageDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		if m.TUI {
			return infra.NewTUIReporter()
		}
		log := sr.Get("logger").(*logger.Logger)
		return infra.NewConsoleReporter(log.Slog())
	})

	// Register the Scheduler (public - exposed to other modules)
	di.RegisterToken(c, arbitrageDI.Scheduler, func(sr di.ServiceRegistry) *app.Scheduler {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(*logger.Logger)

		scheduler, err := app.NewScheduler(
			marketDI.GetAggregator(sr),
			arbitrageDI.GetScanner(sr),
			arbitrageDI.GetExecutor(sr),
			arbitrageDI.GetReporter(sr),
			app.SchedulerConfig{CycleInterval: cfg.Trading.CycleInterval},
			log.Slog(),
		)
		if err != nil {
			panic("failed to create scheduler: " + err.Error())
		}
		return scheduler
	})

	return nil
}

// Startup resolves the scheduler so construction failures surface at boot.
// The scheduler loop itself is run by the caller.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	arbitrageDI.GetScheduler(mono.Services())

	mono.Logger().Info(ctx, "arbitrage module started",
		"paper_trading", mono.Config().Trading.PaperTrading,
		"cycle_interval", mono.Config().Trading.CycleInterval.String(),
	)
	return nil
}
