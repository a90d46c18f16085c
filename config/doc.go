// Package config provides configuration management for SchemaScope.
//
// This package handles loading and validation of application configuration
// from JSON files and environment variables, with layered merging so a base
// file can be specialized per deployment.
//
// # Core Components
//
// Config: Main configuration structure with typed sections for the HTTP and
// WebSocket listener (Server), the schema origin (Source), the layout
// simulation parameters (Layout), per-session diagram behavior (Diagram),
// logging (Log), the Prometheus endpoint (Metrics), and TLS (Security).
//
// SafeConfig: Thread-safe wrapper using RWMutex and deep cloning to prevent
// concurrent access issues and accidental mutations.
//
// Loader: Loads configuration with layer merging (base + overrides) and
// environment variable substitution for flexible deployment scenarios.
//
// # Basic Usage
//
// Loading configuration from files with layer merging:
//
//	loader := config.NewLoader()
//	loader.AddLayer("config/base.json")
//	loader.AddLayer("config/production.json") // Overrides base
//	loader.EnableValidation(true)
//
//	cfg, err := loader.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Environment Variable Overrides
//
// Configuration values can be overridden using environment variables with the
// SCHEMASCOPE_ prefix. Overrides apply after all file layers:
//
//	# Override the listen address
//	export SCHEMASCOPE_SERVER_ADDR=":9443"
//
//	# Point at a schema admin endpoint
//	export SCHEMASCOPE_SOURCE_URL="https://db.example.com/admin/schema"
//
//	# Turn on debug logging (comma-separated for list values)
//	export SCHEMASCOPE_LOG_LEVEL="debug"
//	export SCHEMASCOPE_ALLOWED_ORIGINS="https://studio.example.com,https://ops.example.com"
//
// Recognized variables: SCHEMASCOPE_SERVER_ADDR, SCHEMASCOPE_ALLOWED_ORIGINS,
// SCHEMASCOPE_SOURCE_URL, SCHEMASCOPE_SOURCE_FILE, SCHEMASCOPE_LOG_LEVEL,
// SCHEMASCOPE_LOG_FORMAT, SCHEMASCOPE_METRICS_PORT.
//
// # Layer Merging
//
// Configuration layers are merged with last-wins semantics:
//
//	base.json:
//	  {"server": {"addr": ":8080"}, "log": {"level": "debug"}}
//
//	production.json:
//	  {"server": {"addr": ":443"}}
//
//	Result:
//	  {"server": {"addr": ":443"}, "log": {"level": "debug"}}
//
// Duration fields accept human-readable strings in JSON ("10s", "250ms"):
//
//	{"server": {"shutdown_timeout": "30s"}, "diagram": {"frame_interval": "33ms"}}
//
// The layout section uses the layout engine's own parameter names
// (springLength, repulsionStrength, alphaDecay, ...) so a tuned simulation
// config can be pasted between the config file and the engine unchanged.
//
// # Thread-Safe Access
//
// SafeConfig guards configuration shared across goroutines:
//
//	safe := config.NewSafeConfig(cfg)
//
//	// Get returns a deep copy - safe to use without locks
//	current := safe.Get()
//
//	// Update validates and swaps atomically
//	if err := safe.Update(next); err != nil {
//		log.Printf("rejected config update: %v", err)
//	}
//
// # Security
//
// The package includes security validation:
//   - File size limits (1MB max) to prevent memory exhaustion
//   - JSON depth validation (100 levels max) to prevent DoS attacks
//   - Path validation to prevent directory traversal
//   - Regular file checks (no symlinks or device files)
//   - Environment variable length and content checks
package config
