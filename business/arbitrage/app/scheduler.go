package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	marketapp "github.com/fd1az/crossarb/business/market/app"
	"github.com/fd1az/crossarb/internal/apperror"
)

// SchedulerConfig holds the cycle timing configuration.
type SchedulerConfig struct {
	CycleInterval time.Duration // pause between the end of one cycle and the start of the next
}

// Scheduler runs the fetch, scan, execute loop until its context is cancelled.
//
// Executions run in their own goroutines so a slow cross-exchange transfer
// never blocks the next scan; the executor's per-symbol guard prevents the
// same symbol from being traded twice concurrently.
type Scheduler struct {
	aggregator *marketapp.Aggregator
	scanner    *Scanner
	executor   *Executor
	reporter   Reporter
	config     SchedulerConfig
	logger     *slog.Logger

	executions sync.WaitGroup

	cycleDuration metric.Float64Histogram
}

// NewScheduler wires the cycle loop together.
func NewScheduler(aggregator *marketapp.Aggregator, scanner *Scanner, executor *Executor, reporter Reporter, cfg SchedulerConfig, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		aggregator: aggregator,
		scanner:    scanner,
		executor:   executor,
		reporter:   reporter,
		config:     cfg,
		logger:     logger,
	}

	var err error
	s.cycleDuration, err = otel.Meter(meterName).Float64Histogram(
		"arbitrage_cycle_duration_ms",
		metric.WithDescription("Wall time of one fetch and scan cycle"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Run loops until ctx is cancelled, then waits for in-flight executions to
// finish before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.executions.Wait()

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for cycle := 1; ; cycle++ {
		s.runCycle(ctx, cycle)

		timer.Reset(s.config.CycleInterval)
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", "cycles_completed", cycle)
			return nil
		case <-timer.C:
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context, cycle int) {
	start := time.Now()

	snapshots := s.aggregator.FetchAll(ctx)
	results := s.scanner.Scan(ctx, snapshots)

	s.reporter.ReportCycle(CycleReport{
		Number:    cycle,
		StartedAt: start,
		Duration:  time.Since(start),
		Results:   results,
	})
	s.cycleDuration.Record(ctx, float64(time.Since(start).Milliseconds()))

	for _, result := range results {
		opp := result.Opportunity
		if opp == nil || !opp.Executable() {
			continue
		}
		if s.executor.InFlight(opp.Symbol) {
			s.logger.Debug("symbol already being traded", "symbol", opp.Symbol)
			continue
		}

		s.executions.Add(1)
		go func() {
			defer s.executions.Done()
			report, err := s.executor.Execute(ctx, opp)
			if err != nil {
				// Lost the in-flight race to a previous cycle's execution.
				if !apperror.HasCode(err, apperror.CodeExecutionInFlight) {
					s.logger.Error("execution rejected", "symbol", opp.Symbol, "error", err)
				}
				return
			}
			s.reporter.ReportExecution(report)
		}()
	}
}
