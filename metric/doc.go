// Package metric provides Prometheus-based metrics collection and HTTP server
// for StreamKit pipeline monitoring and observability.
//
// The package offers a centralized metrics registry managing both core library
// metrics (pipeline evaluations, connector traffic, errors) and custom
// application-specific metrics. It includes an HTTP server exposing metrics in
// Prometheus format for monitoring system integration.
//
// # Architecture
//
// The package follows a three-layer design:
//
//  1. Core Metrics: Library-level metrics automatically registered (Metrics type)
//  2. Application Registry: Extensible registration for application metrics (MetricsRegistrar interface)
//  3. HTTP Server: Metrics endpoint with health checks (Server type)
//
// This architecture separates infrastructure concerns (core metrics) from
// application concerns (application-specific metrics) while providing a unified
// metrics endpoint for monitoring systems.
//
// # Basic Usage
//
// Setting up metrics collection and HTTP server:
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//
//	go func() {
//	    if err := server.Start(); err != nil {
//	        log.Printf("Metrics server error: %v", err)
//	    }
//	}()
//	defer server.Stop()
//
//	// Hand the core metrics to pipelines
//	core := registry.CoreMetrics()
//	n, err := stream.FromSlice(data).WithMetrics(core).Parallel().Count()
//
// The metrics server exposes Prometheus-formatted metrics at
// http://localhost:9090/metrics and a health check at
// http://localhost:9090/health.
//
// # Core Metrics
//
// The package automatically registers core library metrics tracking:
//
//   - Pipeline evaluations: evaluations_total{mode,outcome}, duration_seconds{mode}
//   - Parallel decomposition: parallel_leaves histogram
//   - Short circuits: short_circuits_total{mode}
//   - Error tracking: errors_total{component,class}
//   - Connector traffic: messages_received_total, messages_published_total,
//     publish_duration_seconds, connector_connected, reconnects_total,
//     buffer_dropped_total
//
// Access core metrics through the registry:
//
//	core := registry.CoreMetrics()
//
//	core.RecordEvaluation("parallel", "ok", 12*time.Millisecond)
//	core.RecordParallelLeaves(16)
//	core.RecordShortCircuit("sequential")
//	core.RecordError("Stream.ForEach", "transient")
//
//	core.RecordMessageReceived("natsio", "events.orders")
//	core.RecordConnectorStatus("natsio", true)
//
// All core metrics use the namespace "streamkit" and appropriate subsystems:
//   - streamkit_pipeline_evaluations_total{mode="...",outcome="..."}
//   - streamkit_pipeline_duration_seconds{mode="..."}
//   - streamkit_messages_received_total{connector="...",subject="..."}
//
// # Application-Specific Metrics
//
// Applications can register custom metrics through the registry:
//
//	rows := prometheus.NewCounter(prometheus.CounterOpts{
//	    Name: "rows_loaded_total",
//	    Help: "Total number of rows loaded",
//	})
//	err := registry.RegisterCounter("loader", "rows_loaded_total", rows)
//
// Registration methods return errors for duplicate registration and for
// Prometheus-level conflicts. The MetricsRegistrar interface enables testing
// with mock registrars and provides loose coupling:
//
//	func NewLoader(metrics metric.MetricsRegistrar) *Loader { ... }
//
// # Thread Safety
//
// All registry operations are thread-safe:
//   - Registration methods use mutex protection
//   - Metric recording is lock-free (Prometheus guarantee)
//   - CoreMetrics() returns a thread-safe shared instance
//
// # Design Decisions
//
// Centralized Registry: Chose centralized registry over distributed collectors
// to ensure consistent metric namespace, prevent duplication, and enable
// runtime metric discovery.
//
// Core vs Application Metrics: Separated library-level metrics (core) from
// application-specific metrics to distinguish engine health from application
// health.
//
// Prometheus Direct Integration: Used official Prometheus client rather than
// abstraction to leverage native features, avoid wrapper overhead, and ensure
// compatibility with the Prometheus ecosystem.
package metric
