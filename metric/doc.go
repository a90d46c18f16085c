// Package metric provides Prometheus-based metrics collection and HTTP
// serving for SchemaScope monitoring and observability.
//
// The package offers a centralized metrics registry managing both core
// platform metrics (service status, diagram sessions, schema pipeline,
// source health) and custom component-specific metrics. Metrics are exposed
// in Prometheus format either on the standalone metrics server or mounted
// onto an existing mux via Handler.
//
// # Architecture
//
// The package follows a three-layer design:
//
//  1. Core Metrics: Platform-level metrics automatically registered (Metrics type)
//  2. Component Registry: Extensible registration for component-specific metrics (MetricsRegistrar interface)
//  3. HTTP Server: Metrics endpoint with health checks (Server type)
//
// This separates infrastructure concerns (core metrics) from application
// concerns (component-specific metrics) while providing a unified endpoint
// for monitoring systems.
//
// # Basic Usage
//
// Setting up metrics collection and the HTTP server:
//
//	registry := metric.NewMetricsRegistry()
//	securityCfg := security.Config{} // Platform security config
//	server := metric.NewServer(9090, "/metrics", registry, securityCfg)
//
//	go func() {
//	    if err := server.Start(); err != nil && err != http.ErrServerClosed {
//	        log.Printf("Metrics server error: %v", err)
//	    }
//	}()
//
//	// Record core platform metrics
//	coreMetrics := registry.CoreMetrics()
//	coreMetrics.RecordSessionOpened()
//	coreMetrics.RecordSchemaLoad(true)
//	coreMetrics.RecordGraphSize(42, 97)
//
// # Core Metrics
//
// The package automatically registers core platform metrics tracking:
//
//   - Service lifecycle: service_status (0=stopped, 1=starting, 2=running, 3=stopping, 4=failed)
//   - Diagram sessions: sessions_active, sessions_total, sessions_events_total, sessions_frames_total
//   - Schema pipeline: schema_loads_total, schema_graph_nodes, schema_graph_edges, layout_ticks_total
//   - Operation timing: processing_duration_seconds
//   - Schema source: source_up, source_fetches_total
//   - Error tracking: errors_total{component, class}
//
// All core metrics use the namespace "schemascope":
//   - schemascope_service_status{service="..."}
//   - schemascope_sessions_events_total{type="node_click"}
//   - schemascope_source_up
//
// # Component-Specific Metrics
//
// Components register custom metrics through the MetricsRegistrar interface:
//
//	framesDropped := prometheus.NewCounter(prometheus.CounterOpts{
//	    Name: "gateway_frames_dropped_total",
//	    Help: "Frames dropped on slow client connections",
//	})
//	err := registry.RegisterCounter("gateway", "frames_dropped", framesDropped)
//
// Vector variants (RegisterCounterVec, RegisterGaugeVec,
// RegisterHistogramVec) cover labelled metrics. Duplicate registrations are
// rejected with a classified invalid error; Unregister releases a name for
// re-registration.
//
// # Thread Safety
//
// All registry operations are thread-safe: registration methods use mutex
// protection, metric recording is lock-free per the Prometheus client
// guarantees, and CoreMetrics() returns a shared instance safe for
// concurrent use.
//
// # Prometheus Integration
//
// Metrics are served in OpenMetrics format. Configure Prometheus to scrape
// the endpoint:
//
//	scrape_configs:
//	  - job_name: 'schemascope'
//	    static_configs:
//	      - targets: ['localhost:9090']
//	    metrics_path: '/metrics'
//	    scrape_interval: 15s
package metric
