// Package main is the entry point for the cross-exchange arbitrage bot.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fd1az/crossarb/business/arbitrage"
	arbitrageApp "github.com/fd1az/crossarb/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/crossarb/business/arbitrage/di"
	"github.com/fd1az/crossarb/business/market"
	marketDI "github.com/fd1az/crossarb/business/market/di"
	"github.com/fd1az/crossarb/internal/apm"
	"github.com/fd1az/crossarb/internal/config"
	"github.com/fd1az/crossarb/internal/health"
	"github.com/fd1az/crossarb/internal/logger"
	"github.com/fd1az/crossarb/internal/metrics"
	"github.com/fd1az/crossarb/internal/monolith"
	"github.com/fd1az/crossarb/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("crossarb %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for debugging
	tuiMode := !*cliMode

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	// Run application
	if err := run(ctx, *configPath, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode bool) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger (only log to stderr in CLI mode)
	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	var log *logger.Logger
	if tuiMode {
		// In TUI mode, suppress logs (discard output)
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting cross-exchange arbitrage bot",
			"version", version,
			"environment", cfg.App.Environment,
			"paper_trading", cfg.Trading.PaperTrading,
		)
	}

	// Initialize observability if enabled
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		// Set service name env var for OTEL
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		// Initialize tracing with Zipkin (local dev friendly)
		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		// Initialize metrics with Prometheus
		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		// Start Prometheus metrics server in background
		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	// Start health check server on port 8081
	healthServer := health.NewServer(8081, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	// Create monolith (application container)
	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Define modules in dependency order
	modules := []monolith.Module{
		&market.Module{},                // Must be first - provides exchange gateways
		&arbitrage.Module{TUI: tuiMode}, // Depends on market for quotes and order routing
	}

	// Register all module services
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	// Streaming venues degrade to polling when their feed drops, so this
	// reports degraded rather than failing readiness outright.
	healthServer.RegisterCheck("ticker_feeds", func(ctx context.Context) (bool, string) {
		var down []string
		for _, feed := range marketDI.GetGateways(mono.Services()).Feeds {
			if !feed.Connected() {
				down = append(down, feed.ExchangeID())
			}
		}
		if len(down) > 0 {
			return false, "feeds down: " + strings.Join(down, ", ")
		}
		return true, ""
	})

	if tuiMode {
		// TUI mode: Start modules in background so TUI shows immediately
		startFunc := func() error {
			ui.Send(ui.StartupMsg{Step: "config", Status: "connected"})
			ui.Send(ui.StartupMsg{Step: "exchanges", Status: "connecting"})
			if err := mono.StartModules(ctx, modules...); err != nil {
				ui.Send(ui.StartupMsg{Step: "exchanges", Status: "failed"})
				return fmt.Errorf("failed to start modules: %w", err)
			}
			ui.Send(ui.StartupMsg{Step: "exchanges", Status: "connected"})
			ui.Send(ui.StartupMsg{Step: "scheduler", Status: "connected"})
			scheduler := arbitrageDI.GetScheduler(mono.Services())
			go func() {
				if err := scheduler.Run(ctx); err != nil {
					ui.Send(ui.ErrorMsg{Error: err})
				}
			}()
			return nil
		}
		return runTUI(ctx, cfg, startFunc)
	}

	// CLI mode: Start modules synchronously
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	// Get scheduler
	scheduler := arbitrageDI.GetScheduler(mono.Services())
	return runCLI(ctx, scheduler, log)
}

func runCLI(ctx context.Context, scheduler *arbitrageApp.Scheduler, log *logger.Logger) error {
	log.Info(ctx, "all modules started, beginning arbitrage cycles")

	// Blocks until the context is cancelled; in-flight executions are
	// drained before it returns.
	if err := scheduler.Run(ctx); err != nil {
		return fmt.Errorf("scheduler failed: %w", err)
	}

	log.Info(ctx, "shutting down")
	return nil
}

func runTUI(ctx context.Context, cfg *config.Config, startFunc func() error) error {
	ui.PaperTrading = cfg.Trading.PaperTrading

	// Channel to receive the start signal from the welcome screen
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	// Create and start the TUI program IMMEDIATELY (shows welcome screen)
	p := tea.NewProgram(ui.New(), tea.WithAltScreen())
	ui.Program = p

	// Run bot logic in background (non-blocking)
	errCh := make(chan error, 1)
	go func() {
		// Wait for welcome screen to complete
		select {
		case <-startSignal:
			// Welcome complete, start modules
		case <-ctx.Done():
			errCh <- nil
			return
		}

		// Start modules and scheduler (connections happen here, TUI shows progress)
		if err := startFunc(); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}

		<-ctx.Done()
		errCh <- nil
	}()

	// Run TUI (blocking) - shows immediately with welcome screen
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Check for bot errors
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
