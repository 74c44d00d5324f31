package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/c360/streamkit/errors"
)

// Overflow policy names accepted by WSConfig.OverflowPolicy.
const (
	PolicyDropOldest = "drop_oldest"
	PolicyDropNewest = "drop_newest"
	PolicyBlock      = "block"
)

// Config is the complete library configuration: evaluation tuning,
// metrics exposure, and the two connector endpoints.
type Config struct {
	Evaluation EvaluationConfig `json:"evaluation"`
	Metrics    MetricsConfig    `json:"metrics"`
	NATS       NATSConfig       `json:"nats"`
	WS         WSConfig         `json:"ws"`
}

// EvaluationConfig tunes pipeline evaluation.
type EvaluationConfig struct {
	// Parallelism caps concurrent leaves in parallel evaluation.
	// Zero means GOMAXPROCS.
	Parallelism int `json:"parallelism,omitempty"`

	// LeafTargetFactor scales the split target: a source of N elements
	// aims for leaves of about N/(parallelism*factor). Zero means 4.
	LeafTargetFactor int `json:"leaf_target_factor,omitempty"`

	// SpinedInitialChunk is the first chunk size of growable result
	// buffers. Must be a power of two. Zero means 16.
	SpinedInitialChunk int `json:"spined_initial_chunk,omitempty"`
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	Port      int    `json:"port,omitempty"`
	Path      string `json:"path,omitempty"`
}

// NATSConfig defines the JetStream connector endpoint.
type NATSConfig struct {
	URLs         []string      `json:"urls,omitempty"`
	Stream       string        `json:"stream,omitempty"`
	Subject      string        `json:"subject,omitempty"`
	Durable      string        `json:"durable,omitempty"`
	FetchBatch   int           `json:"fetch_batch,omitempty"`
	FetchWait    time.Duration `json:"fetch_wait,omitempty"`
	PublishRate  float64       `json:"publish_rate,omitempty"` // messages per second, 0 = unlimited
	PublishBurst int           `json:"publish_burst,omitempty"`
	Retry        RetryConfig   `json:"retry"`
}

// RetryConfig is the serializable shape of a backoff policy.
type RetryConfig struct {
	MaxRetries    int           `json:"max_retries,omitempty"`
	InitialDelay  time.Duration `json:"initial_delay,omitempty"`
	MaxDelay      time.Duration `json:"max_delay,omitempty"`
	BackoffFactor float64       `json:"backoff_factor,omitempty"`
}

// ToRetry converts to the errors package policy used by connectors.
func (rc RetryConfig) ToRetry() errors.RetryConfig {
	out := errors.DefaultRetryConfig()
	if rc.MaxRetries > 0 {
		out.MaxRetries = rc.MaxRetries
	}
	if rc.InitialDelay > 0 {
		out.InitialDelay = rc.InitialDelay
	}
	if rc.MaxDelay > 0 {
		out.MaxDelay = rc.MaxDelay
	}
	if rc.BackoffFactor > 0 {
		out.BackoffFactor = rc.BackoffFactor
	}
	return out
}

// WSConfig defines the websocket connector endpoint.
type WSConfig struct {
	URL            string        `json:"url,omitempty"`
	ReadLimit      int64         `json:"read_limit,omitempty"` // bytes per message
	BufferCapacity int           `json:"buffer_capacity,omitempty"`
	OverflowPolicy string        `json:"overflow_policy,omitempty"`
	WriteTimeout   time.Duration `json:"write_timeout,omitempty"`
	PingInterval   time.Duration `json:"ping_interval,omitempty"`
}

// Validate checks the configuration and classifies every failure as
// invalid.
func (c *Config) Validate() error {
	if err := c.Evaluation.validate(); err != nil {
		return err
	}
	if err := c.Metrics.validate(); err != nil {
		return err
	}
	if err := c.NATS.validate(); err != nil {
		return err
	}
	return c.WS.validate()
}

func invalid(detail string) error {
	return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", detail)
}

func (e *EvaluationConfig) validate() error {
	if e.Parallelism < 0 {
		return invalid(fmt.Sprintf("evaluation.parallelism %d is negative", e.Parallelism))
	}
	if e.LeafTargetFactor < 0 {
		return invalid(fmt.Sprintf("evaluation.leaf_target_factor %d is negative", e.LeafTargetFactor))
	}
	if c := e.SpinedInitialChunk; c != 0 && (c < 2 || c&(c-1) != 0) {
		return invalid(fmt.Sprintf("evaluation.spined_initial_chunk %d is not a power of two", c))
	}
	return nil
}

func (m *MetricsConfig) validate() error {
	if m.Port < 0 || m.Port > 65535 {
		return invalid(fmt.Sprintf("metrics.port %d is out of range", m.Port))
	}
	if m.Path != "" && !strings.HasPrefix(m.Path, "/") {
		return invalid(fmt.Sprintf("metrics.path %q must start with /", m.Path))
	}
	if m.Namespace != "" && !isValidMetricNamespace(m.Namespace) {
		return invalid(fmt.Sprintf("metrics.namespace %q is not a valid Prometheus namespace", m.Namespace))
	}
	return nil
}

func (n *NATSConfig) validate() error {
	if n.FetchBatch < 0 {
		return invalid(fmt.Sprintf("nats.fetch_batch %d is negative", n.FetchBatch))
	}
	if n.FetchWait < 0 {
		return invalid(fmt.Sprintf("nats.fetch_wait %s is negative", n.FetchWait))
	}
	if n.PublishRate < 0 {
		return invalid(fmt.Sprintf("nats.publish_rate %v is negative", n.PublishRate))
	}
	if n.PublishBurst < 0 {
		return invalid(fmt.Sprintf("nats.publish_burst %d is negative", n.PublishBurst))
	}
	if n.Subject != "" && !isValidSubject(n.Subject) {
		return invalid(fmt.Sprintf("nats.subject %q has characters NATS subjects reject", n.Subject))
	}
	// Durable consumer names are subject tokens, dots are separators.
	if strings.ContainsAny(n.Durable, ". *>") {
		return invalid(fmt.Sprintf("nats.durable %q must be a single token", n.Durable))
	}
	if n.Retry.MaxRetries < 0 {
		return invalid(fmt.Sprintf("nats.retry.max_retries %d is negative", n.Retry.MaxRetries))
	}
	if n.Retry.InitialDelay < 0 || n.Retry.MaxDelay < 0 {
		return invalid("nats.retry delays must not be negative")
	}
	return nil
}

func (w *WSConfig) validate() error {
	if w.URL != "" {
		u, err := url.Parse(w.URL)
		if err != nil {
			return invalid(fmt.Sprintf("ws.url %q does not parse", w.URL))
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return invalid(fmt.Sprintf("ws.url scheme %q must be ws or wss", u.Scheme))
		}
	}
	if w.ReadLimit < 0 {
		return invalid(fmt.Sprintf("ws.read_limit %d is negative", w.ReadLimit))
	}
	if w.BufferCapacity < 0 {
		return invalid(fmt.Sprintf("ws.buffer_capacity %d is negative", w.BufferCapacity))
	}
	switch w.OverflowPolicy {
	case "", PolicyDropOldest, PolicyDropNewest, PolicyBlock:
	default:
		return invalid(fmt.Sprintf("ws.overflow_policy %q is not one of drop_oldest, drop_newest, block", w.OverflowPolicy))
	}
	if w.WriteTimeout < 0 || w.PingInterval < 0 {
		return invalid("ws timeouts must not be negative")
	}
	return nil
}

// isValidSubject accepts dot-separated tokens of letters, digits,
// dashes, and underscores. Wildcards are rejected, the subject is a
// publish target.
func isValidSubject(s string) bool {
	for _, token := range strings.Split(s, ".") {
		if token == "" {
			return false
		}
		for _, r := range token {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
				return false
			}
		}
	}
	return true
}

func isValidMetricNamespace(s string) bool {
	for i, r := range s {
		if unicode.IsLetter(r) || r == '_' {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return s != ""
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}

	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}
	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}
	return &clone
}

// String returns an indented JSON rendering.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// SafeConfig provides thread-safe access to a configuration that may
// be swapped at runtime.
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig wraps cfg. A nil cfg starts empty.
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = &Config{}
	}
	return &SafeConfig{config: cfg}
}

// Get returns a deep copy of the current configuration.
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Snapshot returns the current configuration by value.
func (sc *SafeConfig) Snapshot() Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return *sc.config.Clone()
}

// Update validates cfg and swaps it in atomically. The stored config
// never changes when validation fails.
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Update", "nil config")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
	return nil
}
