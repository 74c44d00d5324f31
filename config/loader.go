package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader loads configuration as layers over built-in defaults: later
// layers override earlier ones field by field, then environment
// variables override everything.
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
}

// NewLoader creates a loader with no layers and the STREAMKIT env
// prefix.
func NewLoader() *Loader {
	return &Loader{
		envPrefix: "STREAMKIT",
	}
}

// AddLayer appends a configuration file layer. JSON and YAML files are
// accepted, chosen by extension.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation makes Load run Config.Validate on the merged
// result.
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads a single file over the defaults, replacing any layers
// added earlier.
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load merges defaults, file layers, and environment overrides.
func (l *Loader) Load() (*Config, error) {
	cfg := l.defaults()

	for _, path := range l.layers {
		raw, err := l.loadRaw(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		cfg = l.mergeFromMap(cfg, raw)
	}

	l.applyEnvOverrides(cfg)

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// defaults returns the built-in configuration.
func (l *Loader) defaults() *Config {
	return &Config{
		Evaluation: EvaluationConfig{
			LeafTargetFactor:   4,
			SpinedInitialChunk: 16,
		},
		Metrics: MetricsConfig{
			Namespace: "streamkit",
			Port:      9090,
			Path:      "/metrics",
		},
		NATS: NATSConfig{
			URLs:       []string{"nats://localhost:4222"},
			FetchBatch: 64,
			FetchWait:  5 * time.Second,
			Retry: RetryConfig{
				MaxRetries:    3,
				InitialDelay:  100 * time.Millisecond,
				MaxDelay:      5 * time.Second,
				BackoffFactor: 2.0,
			},
		},
		WS: WSConfig{
			ReadLimit:      1 << 20,
			BufferCapacity: 1024,
			OverflowPolicy: PolicyBlock,
			WriteTimeout:   10 * time.Second,
			PingInterval:   30 * time.Second,
		},
	}
}

// loadRaw reads one layer into a map, converting duration strings to
// nanoseconds so the final unmarshal lands on time.Duration fields.
func (l *Loader) loadRaw(path string) (map[string]any, error) {
	data, err := safeReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	if depth := nestingDepth(raw); depth > maxNestingDepth {
		return nil, fmt.Errorf("config nesting too deep: %d > %d", depth, maxNestingDepth)
	}

	l.parseDurations(raw)
	return raw, nil
}

// durationKeys are the fields that accept Go duration strings in
// config files.
var durationKeys = map[string]bool{
	"fetch_wait":    true,
	"initial_delay": true,
	"max_delay":     true,
	"write_timeout": true,
	"ping_interval": true,
}

// parseDurations rewrites duration strings anywhere in the tree into
// nanosecond counts.
func (l *Loader) parseDurations(m map[string]any) {
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any:
			l.parseDurations(val)
		case string:
			if durationKeys[k] {
				if d, err := time.ParseDuration(val); err == nil {
					m[k] = d.Nanoseconds()
				}
			}
		}
	}
}

// mergeFromMap merges a raw layer over base, overriding only the
// fields the layer mentions.
func (l *Loader) mergeFromMap(base *Config, override map[string]any) *Config {
	if override == nil {
		return base
	}

	baseJSON, err := json.Marshal(base)
	if err != nil {
		return base
	}
	var baseMap map[string]any
	if err := json.Unmarshal(baseJSON, &baseMap); err != nil {
		return base
	}

	mergedMap := deepMergeMaps(baseMap, override)

	mergedJSON, err := json.Marshal(mergedMap)
	if err != nil {
		return base
	}
	var merged Config
	if err := json.Unmarshal(mergedJSON, &merged); err != nil {
		return base
	}
	return &merged
}

// deepMergeMaps merges override into base recursively. Explicit nulls
// are skipped, explicit zero values win.
func deepMergeMaps(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base))
	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		if v == nil {
			continue
		}
		if baseMap, ok := base[k].(map[string]any); ok {
			if overrideMap, ok := v.(map[string]any); ok {
				result[k] = deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}
		result[k] = v
	}
	return result
}

// applyEnvOverrides overrides individual fields from the environment.
func (l *Loader) applyEnvOverrides(cfg *Config) {
	get := func(suffix string) string {
		key := l.envPrefix + suffix
		val := os.Getenv(key)
		if val == "" || validateEnvVar(key, val) != nil {
			return ""
		}
		return val
	}

	if val := get("_NATS_URLS"); val != "" {
		cfg.NATS.URLs = strings.Split(val, ",")
	}
	if val := get("_NATS_STREAM"); val != "" {
		cfg.NATS.Stream = val
	}
	if val := get("_NATS_SUBJECT"); val != "" {
		cfg.NATS.Subject = val
	}
	if val := get("_NATS_DURABLE"); val != "" {
		cfg.NATS.Durable = val
	}
	if val := get("_WS_URL"); val != "" {
		cfg.WS.URL = val
	}
	if val := get("_METRICS_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = enabled
		}
	}
	if val := get("_METRICS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Metrics.Port = port
		}
	}
	if val := get("_EVALUATION_PARALLELISM"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Evaluation.Parallelism = p
		}
	}
}

// SaveToFile writes the configuration as indented JSON.
func (c *Config) SaveToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return safeWriteFile(path, data)
}
