// Package errors provides standardized error handling patterns for StreamKit.
//
// # Overview
//
// The errors package implements a three-class error classification system
// designed for stream processing: Transient (temporary, retryable), Invalid
// (bad input, non-retryable), and Fatal (unrecoverable, stop processing).
//
// This classification enables intelligent error handling strategies
// throughout StreamKit, allowing pipelines and connectors to make informed
// decisions about retries, graceful degradation, and failure recovery
// without hardcoded error string matching.
//
// The package also provides the Carrier, which tunnels errors raised inside
// push callbacks (pipeline sink chains) out to the terminal operation
// boundary via panic/recover, so internal interfaces stay free of error
// returns while public APIs still surface plain errors.
//
// # Error Classification
//
// Errors are automatically classified based on their type or content:
//
//   - Transient: Network timeouts, connection issues, temporary unavailability (retry recommended)
//   - Invalid: Malformed input, validation failures, bad configuration (do not retry)
//   - Fatal: Resource exhaustion, data corruption, unrecoverable states (stop processing)
//
// The classification system integrates seamlessly with Go's standard error
// handling patterns, supporting errors.Is(), errors.As(), and error
// wrapping chains.
//
// # Quick Start
//
// Use standard error variables for common conditions:
//
//	// Return standard error for known conditions
//	if !connected {
//	    return errors.ErrNotStarted
//	}
//
// Wrap errors with context for debugging:
//
//	// Wrap third-party errors with component context
//	if err := source.Fetch(ctx); err != nil {
//	    return errors.Wrap(err, "Source", "Fetch", "batch fetch")
//	}
//
// Check classification for retry logic:
//
//	if err := operation(); err != nil {
//	    if errors.IsTransient(err) {
//	        config := errors.DefaultRetryConfig()
//	        if config.ShouldRetry(err, attempt) {
//	            time.Sleep(config.BackoffDelay(attempt))
//	            // retry operation
//	        }
//	    }
//	}
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// This format enables consistent log parsing, debugging, and operational
// monitoring. The Wrap family of functions automatically applies this
// pattern while preserving error classification through the chain.
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Component", "Method", "action")  // For retryable errors
//	errors.WrapInvalid(err, "Component", "Method", "action")    // For validation errors
//	errors.WrapFatal(err, "Component", "Method", "action")      // For unrecoverable errors
//
// The generic Wrap() function preserves the original error's classification:
//
//	errors.Wrap(err, "Component", "Method", "action")  // Preserves original class
//
// # Standard Error Variables
//
// The package provides pre-defined error variables for common conditions,
// organized by category:
//
//   - Lifecycle: ErrAlreadyStarted, ErrNotStarted
//   - Connection issues: ErrConnectionLost, ErrConnectionTimeout, ErrSubscriptionFailed
//   - Pipelines: ErrStreamConsumed
//   - Data: ErrInvalidData, ErrDecodeFailed
//   - Configuration: ErrInvalidConfig, ErrMissingConfig
//   - Resources: ErrQueueFull, ErrBufferFull, ErrBufferClosed, ErrRateLimited
//   - Retries: ErrMaxRetriesExceeded
//
// Use these variables instead of creating custom error messages for
// consistency.
//
// # Carrier Tunneling
//
// Pipeline sink chains push elements through callbacks that cannot return
// errors. When a user callback fails, the failure is raised as a carrier
// panic and recovered exactly once at the terminal operation boundary:
//
//	func (s *mapSink) Accept(v In) {
//	    out, err := s.fn(v)
//	    if err != nil {
//	        errors.Tunnel(err)  // does not return
//	    }
//	    s.down.Accept(out)
//	}
//
//	// at the evaluation boundary
//	defer func() {
//	    if err := errors.Recover(recover()); err != nil {
//	        evalErr = err
//	    }
//	}()
//
// Recover restores the original error with identity preserved, so
// errors.Is checks written against the callback's error still hold.
// Non-carrier panics (runtime faults, foreign panics) are re-raised
// unchanged. WrapCarrier is idempotent: wrapping an existing carrier
// returns it as-is, and the round trip through Tunnel/Recover never
// alters the error value.
//
// # Retry Configuration
//
// The package includes built-in retry support with exponential backoff:
//
//	config := errors.DefaultRetryConfig()
//
//	for attempt := 0; attempt < config.MaxRetries; attempt++ {
//	    if err := operation(); err != nil {
//	        if !config.ShouldRetry(err, attempt) {
//	            return err  // Non-retryable or max attempts reached
//	        }
//	        time.Sleep(config.BackoffDelay(attempt))
//	        continue
//	    }
//	    return nil  // Success
//	}
//
// # Integration with errors.As/Is
//
// All error types support standard library error inspection:
//
//	// Check error classification
//	var ce *errors.ClassifiedError
//	if errors.As(err, &ce) {
//	    log.Printf("Component: %s, Class: %s", ce.Component, ce.Class)
//	}
//
//	// Classification is preserved through error chains
//	wrapped := errors.Wrap(errors.ErrConnectionTimeout, "Source", "Connect", "dial")
//	if errors.IsTransient(wrapped) {  // true - classification preserved
//	    // Retry logic
//	}
//
// # Context Cancellation
//
// Context errors (context.DeadlineExceeded, context.Canceled) are
// automatically classified as Transient, enabling consistent handling of
// context-based timeouts.
//
// # Thread Safety
//
// All classification and wrapping operations are thread-safe. Error
// variables are immutable constants safe for concurrent access. The
// ClassifiedError and Carrier types are safe to share across goroutines
// after creation.
//
// # Architecture Integration
//
// The errors package integrates with other StreamKit components:
//
//   - stream: terminal operations recover carriers and surface classified errors
//   - spliterator: adapters document carrier behavior for standalone use
//   - connector: connectors use connection error variables and retry config
//   - pkg/worker: the worker pool reports queue and lifecycle errors
//
// # Design Philosophy
//
// The errors package follows these design principles:
//
//   - Classification over string matching: Errors are classified by type, not content
//   - Wrapping over replacement: Preserve original errors, add context via wrapping
//   - Standards over invention: Use Go's error handling idioms (Is/As/Unwrap)
//   - Simplicity over completeness: Three classes cover the common cases
package errors
