// Package health provides health monitoring for SchemaScope components and systems
// with thread-safe status tracking and aggregation.
//
// The health package enables tracking the health status of individual components and
// aggregating system-wide health information for monitoring, alerting, and operational
// visibility.
//
// # Health States
//
// The package supports three health states:
//   - Healthy: component operating normally
//   - Degraded: component operating with reduced functionality
//   - Unhealthy: component not functioning properly
//
// This three-state model enables nuanced health reporting. A degraded schema source
// (fetches slow but succeeding) reads differently from an unhealthy one (endpoint
// unreachable), and the HTTP health endpoint maps the distinction onto status codes.
//
// # Core Components
//
// Status: Individual component health state containing status level, descriptive
// message, timestamp, optional metrics, and hierarchical sub-statuses.
//
// Monitor: Thread-safe centralized tracking for multiple component health statuses
// with concurrent read/write access and automatic timestamp management.
//
// Report: Raw health snapshot produced by a component, converted to a Status via
// FromReport with automatic error message sanitization (URLs, file paths, IPs,
// ports, and credentials are redacted before exposure).
//
// # Basic Usage
//
// Creating and tracking component health:
//
//	monitor := health.NewMonitor()
//
//	// Update component health
//	monitor.UpdateHealthy("gateway", "All sessions responsive")
//	monitor.UpdateDegraded("schema-source", "Fetch latency elevated")
//	monitor.UpdateUnhealthy("metrics", "Endpoint bind failed")
//
//	// Check individual component health
//	if status, exists := monitor.Get("gateway"); exists && status.IsHealthy() {
//	    log.Println("Gateway is healthy")
//	}
//
// # System-Wide Aggregation
//
// Combining component statuses into a system-wide indicator:
//
//	systemHealth := monitor.AggregateHealth("schemascope")
//	if systemHealth.IsUnhealthy() {
//	    // Return 503 from the health endpoint
//	}
//
// Aggregation uses hierarchical rules: any unhealthy component makes the system
// unhealthy; any degraded component (with none unhealthy) makes it degraded;
// otherwise the system is healthy.
package health
