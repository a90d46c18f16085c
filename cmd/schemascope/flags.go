package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	Addr            string
	SchemaURL       string
	SchemaFile      string
	LogLevel        string
	LogFormat       string
	Debug           bool
	ShutdownTimeout time.Duration
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback where the config
	// loader has no override of its own
	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("SCHEMASCOPE_CONFIG", ""),
		"Path to configuration file, empty for defaults (env: SCHEMASCOPE_CONFIG)")

	flag.StringVar(&cfg.ConfigPath, "c",
		getEnv("SCHEMASCOPE_CONFIG", ""),
		"Path to configuration file, empty for defaults (env: SCHEMASCOPE_CONFIG)")

	flag.StringVar(&cfg.Addr, "addr", "",
		"Listen address, overrides server.addr from config")

	flag.StringVar(&cfg.SchemaURL, "schema-url", "",
		"Fetch schema SDL from this HTTP endpoint, overrides source.url from config")

	flag.StringVar(&cfg.SchemaFile, "schema-file", "",
		"Load schema SDL from this file, overrides source.file from config")

	flag.StringVar(&cfg.LogLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides log.level from config)")

	flag.StringVar(&cfg.LogFormat, "log-format", "",
		"Log format: json, text (overrides log.format from config)")

	flag.BoolVar(&cfg.Debug, "debug",
		getEnvBool("SCHEMASCOPE_DEBUG", false),
		"Enable debug mode (env: SCHEMASCOPE_DEBUG)")

	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("SCHEMASCOPE_SHUTDOWN_TIMEOUT", 0),
		"Graceful shutdown timeout, 0 for the config value (env: SCHEMASCOPE_SHUTDOWN_TIMEOUT)")

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

	// Validate log level (empty defers to config)
	validLevels := []string{"", "debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	// Validate log format (empty defers to config)
	validFormats := []string{"", "json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	// Only one schema source override makes sense
	if cfg.SchemaURL != "" && cfg.SchemaFile != "" {
		return fmt.Errorf("schema-url and schema-file are mutually exclusive")
	}

	if cfg.ShutdownTimeout < 0 {
		return fmt.Errorf("invalid shutdown timeout: %v", cfg.ShutdownTimeout)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - GraphQL Schema Relationship Diagrams

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Serve diagrams for a schema file
  %s --schema-file=schema.graphql

  # Poll a database admin endpoint for schema changes
  %s --config=/etc/schemascope/config.json

  # Run with debug logging
  %s --schema-file=schema.graphql --log-level=debug --log-format=text

  # Run with environment variables
  export SCHEMASCOPE_CONFIG=/etc/schemascope/config.json
  export SCHEMASCOPE_LOG_LEVEL=debug
  %s

  # Validate configuration only
  %s --config=/etc/schemascope/config.json --validate

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
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
