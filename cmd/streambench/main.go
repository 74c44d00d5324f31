// Package main implements streambench, a benchmark harness for the
// streamkit pipeline engine. It times a fixed set of pipelines in
// sequential and parallel mode, optionally round-trips messages
// through a JetStream server, and can expose the library's Prometheus
// metrics while it runs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/google/uuid"

	"github.com/c360/streamkit/config"
	"github.com/c360/streamkit/metric"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "streambench"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	// Run application with proper error handling
	if err := run(); err != nil {
		slog.Error("Benchmark failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := loadConfig(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := metric.NewMetricsRegistry()
	if cfg.Metrics.Enabled {
		startMetricsServer(cfg, registry)
	}

	if err := runSession(ctx, cliCfg, cfg, registry, logger); err != nil {
		return err
	}

	if cliCfg.Wait {
		slog.Info("Benchmark complete, waiting for shutdown signal")
		<-ctx.Done()
	}
	slog.Info("Benchmark shutdown complete")
	return nil
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting streambench",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath,
		"elements", cliCfg.Elements,
		"rounds", cliCfg.Rounds)

	return cliCfg, logger, false, nil
}

// loadConfig loads configuration from the given path, or the built-in
// defaults plus environment overrides when no path is given.
func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	if path == "" {
		return loader.Load()
	}
	return loader.LoadFile(path)
}

// startMetricsServer exposes the registry in the background. A serve
// failure is logged rather than fatal; the benchmark itself can still
// run.
func startMetricsServer(cfg *config.Config, registry *metric.MetricsRegistry) {
	srv := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
	slog.Info("Metrics server listening", "address", srv.Address())
}

// runSession drives the pipeline cases and the optional NATS round
// trip, then prints the result table.
func runSession(ctx context.Context, cliCfg *CLIConfig, cfg *config.Config, registry *metric.MetricsRegistry, logger *slog.Logger) error {
	evalCfg := cfg.Evaluation
	if cliCfg.Parallelism > 0 {
		evalCfg.Parallelism = cliCfg.Parallelism
	}

	runID := uuid.NewString()
	logger = logger.With("bench_run", runID)
	logger.Info("Benchmark session starting",
		"parallelism", evalCfg.Parallelism,
		"leaf_target_factor", evalCfg.LeafTargetFactor,
		"gomaxprocs", runtime.GOMAXPROCS(0))

	b := &bench{
		ctx:      ctx,
		logger:   logger,
		core:     registry.CoreMetrics(),
		evalCfg:  evalCfg,
		elements: cliCfg.Elements,
		rounds:   cliCfg.Rounds,
	}

	results, err := b.runBench()
	if err != nil {
		return fmt.Errorf("pipeline cases: %w", err)
	}

	if cliCfg.WithNATS {
		natsResults, err := b.runNATSBench(cfg, registry, logger)
		if err != nil {
			return fmt.Errorf("nats cases: %w", err)
		}
		results = append(results, natsResults...)
	}

	printResults(os.Stdout, results)
	return nil
}
