package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "schemascope"

// Metrics contains all platform-level metrics (not handler-specific)
type Metrics struct {
	// Service metrics
	ServiceStatus     *prometheus.GaugeVec
	HealthCheckStatus *prometheus.GaugeVec
	ErrorsTotal       *prometheus.CounterVec

	// Diagram session metrics
	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter
	EventsReceived *prometheus.CounterVec
	FramesSent     prometheus.Counter

	// Schema pipeline metrics
	SchemaLoads        *prometheus.CounterVec
	GraphNodes         prometheus.Gauge
	GraphEdges         prometheus.Gauge
	LayoutTicks        prometheus.Counter
	ProcessingDuration *prometheus.HistogramVec

	// Schema source metrics
	SourceUp      prometheus.Gauge
	SourceFetches *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		ServiceStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "service",
				Name:      "status",
				Help:      "Service status (0=stopped, 1=starting, 2=running, 3=stopping, 4=failed)",
			},
			[]string{"service"},
		),

		HealthCheckStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "health",
				Name:      "status",
				Help:      "Health check status (0=unhealthy, 1=healthy)",
			},
			[]string{"service"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors",
			},
			[]string{"component", "class"},
		),

		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "sessions",
				Name:      "active",
				Help:      "Number of open diagram sessions",
			},
		),

		SessionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sessions",
				Name:      "total",
				Help:      "Total number of diagram sessions opened",
			},
		),

		EventsReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sessions",
				Name:      "events_total",
				Help:      "Total number of interaction events received, by event type",
			},
			[]string{"type"},
		),

		FramesSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sessions",
				Name:      "frames_total",
				Help:      "Total number of layout frames sent to clients",
			},
		),

		SchemaLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "schema",
				Name:      "loads_total",
				Help:      "Total number of schema loads, by outcome",
			},
			[]string{"status"},
		),

		GraphNodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "schema",
				Name:      "graph_nodes",
				Help:      "Node count of the most recently built schema graph",
			},
		),

		GraphEdges: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "schema",
				Name:      "graph_edges",
				Help:      "Edge count of the most recently built schema graph",
			},
		),

		LayoutTicks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "layout",
				Name:      "ticks_total",
				Help:      "Total number of simulation ticks run",
			},
		),

		ProcessingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "processing",
				Name:      "duration_seconds",
				Help:      "Operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		SourceUp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "source",
				Name:      "up",
				Help:      "Schema source reachability (0=down, 1=up)",
			},
		),

		SourceFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "source",
				Name:      "fetches_total",
				Help:      "Total number of schema source fetches, by outcome",
			},
			[]string{"status"},
		),
	}
}

// RecordServiceStatus updates service status metric
func (c *Metrics) RecordServiceStatus(service string, status int) {
	c.ServiceStatus.WithLabelValues(service).Set(float64(status))
}

// RecordHealthStatus updates health check status
func (c *Metrics) RecordHealthStatus(service string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	c.HealthCheckStatus.WithLabelValues(service).Set(value)
}

// RecordError increments the error counter for a component and error class
func (c *Metrics) RecordError(component, class string) {
	c.ErrorsTotal.WithLabelValues(component, class).Inc()
}

// RecordSessionOpened tracks a new diagram session
func (c *Metrics) RecordSessionOpened() {
	c.SessionsActive.Inc()
	c.SessionsTotal.Inc()
}

// RecordSessionClosed tracks a closed diagram session
func (c *Metrics) RecordSessionClosed() {
	c.SessionsActive.Dec()
}

// RecordEvent increments the interaction event counter
func (c *Metrics) RecordEvent(eventType string) {
	c.EventsReceived.WithLabelValues(eventType).Inc()
}

// RecordFrameSent increments the frame counter
func (c *Metrics) RecordFrameSent() {
	c.FramesSent.Inc()
}

// RecordSchemaLoad increments the schema load counter
func (c *Metrics) RecordSchemaLoad(ok bool) {
	status := "error"
	if ok {
		status = "success"
	}
	c.SchemaLoads.WithLabelValues(status).Inc()
}

// RecordGraphSize updates the current graph size gauges
func (c *Metrics) RecordGraphSize(nodes, edges int) {
	c.GraphNodes.Set(float64(nodes))
	c.GraphEdges.Set(float64(edges))
}

// RecordLayoutTick increments the tick counter
func (c *Metrics) RecordLayoutTick() {
	c.LayoutTicks.Inc()
}

// RecordProcessingDuration records operation time
func (c *Metrics) RecordProcessingDuration(operation string, duration time.Duration) {
	c.ProcessingDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordSourceStatus updates schema source reachability
func (c *Metrics) RecordSourceStatus(up bool) {
	value := 0.0
	if up {
		value = 1.0
	}
	c.SourceUp.Set(value)
}

// RecordSourceFetch increments the source fetch counter
func (c *Metrics) RecordSourceFetch(status string) {
	c.SourceFetches.WithLabelValues(status).Inc()
}
