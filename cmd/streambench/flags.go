package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath  string
	LogLevel    string
	LogFormat   string
	Debug       bool
	Elements    int64
	Rounds      int
	Parallelism int
	WithNATS    bool
	Wait        bool
	ShowVersion bool
	ShowHelp    bool
	Validate    bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("STREAMBENCH_CONFIG", ""),
		"Path to configuration file, empty for defaults (env: STREAMBENCH_CONFIG)")

	flag.StringVar(&cfg.ConfigPath, "c",
		getEnv("STREAMBENCH_CONFIG", ""),
		"Path to configuration file, empty for defaults (env: STREAMBENCH_CONFIG)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("STREAMBENCH_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: STREAMBENCH_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("STREAMBENCH_LOG_FORMAT", "text"),
		"Log format: json, text (env: STREAMBENCH_LOG_FORMAT)")

	flag.BoolVar(&cfg.Debug, "debug",
		getEnvBool("STREAMBENCH_DEBUG", false),
		"Enable debug mode (env: STREAMBENCH_DEBUG)")

	flag.Int64Var(&cfg.Elements, "elements",
		getEnvInt64("STREAMBENCH_ELEMENTS", 1_000_000),
		"Elements per pipeline run (env: STREAMBENCH_ELEMENTS)")

	flag.IntVar(&cfg.Rounds, "rounds",
		getEnvInt("STREAMBENCH_ROUNDS", 3),
		"Rounds per case, best round wins (env: STREAMBENCH_ROUNDS)")

	flag.IntVar(&cfg.Parallelism, "parallelism",
		getEnvInt("STREAMBENCH_PARALLELISM", 0),
		"Goroutine cap for parallel runs, 0 for config or GOMAXPROCS (env: STREAMBENCH_PARALLELISM)")

	flag.BoolVar(&cfg.WithNATS, "nats",
		getEnvBool("STREAMBENCH_NATS", false),
		"Run the NATS round-trip cases against the configured server (env: STREAMBENCH_NATS)")

	flag.BoolVar(&cfg.Wait, "wait",
		getEnvBool("STREAMBENCH_WAIT", false),
		"Keep serving metrics after the run until interrupted (env: STREAMBENCH_WAIT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	// Custom usage
	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	// Override log level if debug is set
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	// Validate config file exists when one is named
	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	// Validate log level
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	// Validate log format
	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.Elements <= 0 {
		return fmt.Errorf("invalid element count: %d", cfg.Elements)
	}

	if cfg.Rounds <= 0 {
		return fmt.Errorf("invalid round count: %d", cfg.Rounds)
	}

	if cfg.Parallelism < 0 {
		return fmt.Errorf("invalid parallelism: %d", cfg.Parallelism)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Stream Pipeline Benchmark

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Run the default cases over ten million elements
  %s --elements=10000000

  # Compare with a tuned split budget
  %s --config=/path/to/config.yaml --rounds=5

  # Include the NATS round trip and expose metrics
  export STREAMKIT_METRICS_ENABLED=true
  %s --nats --wait

  # Validate configuration only
  %s --config=/path/to/config.yaml --validate

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
