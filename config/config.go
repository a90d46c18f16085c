package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/c360/schemascope/layout"
	"github.com/c360/schemascope/pkg/security"
)

// Config represents the complete application configuration.
// Sections: Server (listener), Source (schema origin), Layout (simulation
// parameters), Diagram (per-session behavior), Log, Metrics, Security (TLS).
type Config struct {
	Server   ServerConfig    `json:"server"`
	Source   SourceConfig    `json:"source"`
	Layout   layout.Config   `json:"layout"`
	Diagram  DiagramConfig   `json:"diagram"`
	Log      LogConfig       `json:"log"`
	Metrics  MetricsConfig   `json:"metrics"`
	Security security.Config `json:"security,omitempty"`
}

// SafeConfig provides thread-safe access to configuration
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig creates a new thread-safe config wrapper
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = &Config{}
	}
	return &SafeConfig{
		config: cfg,
	}
}

// Get returns a deep copy of the current configuration
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically updates the configuration after validation
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	// Validate before updating
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}

	// Use JSON marshaling/unmarshaling for deep copy
	data, err := json.Marshal(c)
	if err != nil {
		// Fallback to shallow copy if marshaling fails
		copied := *c
		return &copied
	}

	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		// Fallback to shallow copy if unmarshaling fails
		copied := *c
		return &copied
	}

	return &clone
}

// ServerConfig defines the HTTP and WebSocket listener
type ServerConfig struct {
	Addr            string        `json:"addr"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout,omitempty"`
	AllowedOrigins  []string      `json:"allowed_origins,omitempty"` // Empty allows same-origin only
}

// SourceConfig defines where schema SDL is fetched from.
// URL and File are mutually exclusive; both empty means schema text
// arrives only through the API or a diagram session. PollInterval of
// zero disables change polling.
type SourceConfig struct {
	URL          string        `json:"url,omitempty"`
	File         string        `json:"file,omitempty"`
	Timeout      time.Duration `json:"timeout,omitempty"`
	Retries      int           `json:"retries,omitempty"`
	PollInterval time.Duration `json:"poll_interval,omitempty"`
}

// DiagramConfig tunes per-session diagram behavior
type DiagramConfig struct {
	IncludeScalars bool          `json:"include_scalars"`
	FrameInterval  time.Duration `json:"frame_interval,omitempty"`
}

// LogConfig controls the root logger
type LogConfig struct {
	Level  string `json:"level,omitempty"`  // debug, info, warn, error
	Format string `json:"format,omitempty"` // json, text
}

// MetricsConfig controls the Prometheus exposition endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port,omitempty"`
	Path    string `json:"path,omitempty"`
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.ShutdownTimeout < 0 {
		return errors.New("server.shutdown_timeout cannot be negative")
	}

	if err := c.validateSource(); err != nil {
		return err
	}

	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("layout configuration: %w", err)
	}

	if c.Diagram.FrameInterval < 0 {
		return errors.New("diagram.frame_interval cannot be negative")
	}

	// Normalize log settings to lowercase
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)

	if err := validateLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if err := validateLogFormat(c.Log.Format); err != nil {
		return fmt.Errorf("log.format: %w", err)
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port %d out of range (1-65535)", c.Metrics.Port)
		}
		if c.Metrics.Path != "" && !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("metrics.path %q must start with /", c.Metrics.Path)
		}
	}

	if err := c.validateSecurity(); err != nil {
		return fmt.Errorf("security configuration: %w", err)
	}

	return nil
}

// validateSource validates the schema source configuration
func (c *Config) validateSource() error {
	if c.Source.URL != "" && c.Source.File != "" {
		return errors.New("source.url and source.file are mutually exclusive")
	}

	if c.Source.URL != "" {
		u, err := url.Parse(c.Source.URL)
		if err != nil {
			return fmt.Errorf("source.url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("source.url %q must use http or https", c.Source.URL)
		}
		if u.Host == "" {
			return fmt.Errorf("source.url %q has no host", c.Source.URL)
		}
	}

	if c.Source.Timeout < 0 {
		return errors.New("source.timeout cannot be negative")
	}
	if c.Source.Retries < 0 {
		return errors.New("source.retries cannot be negative")
	}
	if c.Source.PollInterval < 0 {
		return errors.New("source.poll_interval cannot be negative")
	}
	if c.Source.PollInterval > 0 && c.Source.URL == "" && c.Source.File == "" {
		return errors.New("source.poll_interval requires source.url or source.file")
	}

	return nil
}

// validateLogLevel checks if a log level string is valid.
// Empty is allowed and falls back to the default level.
func validateLogLevel(level string) error {
	switch level {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("invalid log level %q (must be debug, info, warn or error)", level)
	}
}

// validateLogFormat checks if a log format string is valid
func validateLogFormat(format string) error {
	switch format {
	case "", "json", "text":
		return nil
	default:
		return fmt.Errorf("invalid log format %q (must be \"json\" or \"text\")", format)
	}
}

// validateSecurity validates the security configuration
func (c *Config) validateSecurity() error {
	// Validate Server TLS
	if c.Security.TLS.Server.Enabled {
		if c.Security.TLS.Server.CertFile == "" {
			return errors.New("tls.server.cert_file is required when TLS is enabled")
		}
		if c.Security.TLS.Server.KeyFile == "" {
			return errors.New("tls.server.key_file is required when TLS is enabled")
		}

		// Check if cert file exists
		if _, err := os.Stat(c.Security.TLS.Server.CertFile); err != nil {
			return fmt.Errorf("tls.server.cert_file: %w", err)
		}

		// Check if key file exists
		if _, err := os.Stat(c.Security.TLS.Server.KeyFile); err != nil {
			return fmt.Errorf("tls.server.key_file: %w", err)
		}

		// Validate MinVersion if specified
		if c.Security.TLS.Server.MinVersion != "" {
			if err := validateTLSVersion(c.Security.TLS.Server.MinVersion); err != nil {
				return fmt.Errorf("tls.server.min_version: %w", err)
			}
		}
	}

	// Validate Client TLS
	// Check all CA files exist
	for i, caFile := range c.Security.TLS.Client.CAFiles {
		if _, err := os.Stat(caFile); err != nil {
			return fmt.Errorf("tls.client.ca_files[%d]: %w", i, err)
		}
	}

	// Warn if InsecureSkipVerify is enabled
	if c.Security.TLS.Client.InsecureSkipVerify {
		_, _ = fmt.Fprintf(
			os.Stderr,
			"WARNING: TLS certificate verification is disabled (insecure_skip_verify=true). This should only be used in development/testing!\n",
		)
	}

	// Validate MinVersion if specified
	if c.Security.TLS.Client.MinVersion != "" {
		if err := validateTLSVersion(c.Security.TLS.Client.MinVersion); err != nil {
			return fmt.Errorf("tls.client.min_version: %w", err)
		}
	}

	return nil
}

// validateTLSVersion checks if a TLS version string is valid
func validateTLSVersion(version string) error {
	switch version {
	case "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("invalid TLS version %q (must be \"1.2\" or \"1.3\")", version)
	}
}

// Loader handles configuration loading with layers and overrides
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		layers:     []string{},
		validation: false,
		envPrefix:  "SCHEMASCOPE",
	}
}

// AddLayer adds a configuration file layer
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables configuration validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads configuration from a single file
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load loads and merges all configuration layers
func (l *Loader) Load() (*Config, error) {
	// Start with defaults
	cfg := l.getDefaults()

	// Load each layer and merge using map-based approach
	for _, path := range l.layers {
		rawConfig, err := l.loadRawJSON(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		cfg = l.mergeFromMap(cfg, rawConfig)
	}

	// Apply environment overrides
	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	// Validate if enabled
	if l.validation {
		if err := l.validate(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// getDefaults returns default configuration
func (l *Loader) getDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Source: SourceConfig{
			Timeout: 10 * time.Second,
			Retries: 3,
		},
		Layout: layout.DefaultConfig(),
		Diagram: DiagramConfig{
			IncludeScalars: false,
			FrameInterval:  33 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}

// loadRawJSON loads configuration from a JSON file as a map
func (l *Loader) loadRawJSON(path string) (map[string]any, error) {
	// Use secure file reading with validation
	data, err := safeReadFile(path)
	if err != nil {
		return nil, err
	}

	// Validate JSON depth to prevent DoS
	if err := validateJSONDepth(data); err != nil {
		return nil, fmt.Errorf("invalid JSON structure: %w", err)
	}

	// Unmarshal into map
	var rawConfig map[string]any
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		return nil, err
	}

	// Convert duration strings
	l.parseDurations(rawConfig)

	return rawConfig, nil
}

// mergeFromMap merges configuration from a raw map, only overriding fields present in the map
func (l *Loader) mergeFromMap(base *Config, override map[string]any) *Config {
	if override == nil {
		return base
	}

	// Marshal the base config to JSON then to map
	baseJSON, err := json.Marshal(base)
	if err != nil {
		return base
	}

	var baseMap map[string]any
	if err := json.Unmarshal(baseJSON, &baseMap); err != nil {
		return base
	}

	// Deep merge the maps
	mergedMap := l.deepMergeMaps(baseMap, override)

	// Convert back to Config
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

// deepMergeMaps recursively merges two maps, with override taking precedence
func (l *Loader) deepMergeMaps(base, override map[string]any) map[string]any {
	result := make(map[string]any)

	// Copy base values
	for k, v := range base {
		result[k] = v
	}

	// Override with values from override map
	for k, v := range override {
		if v == nil {
			continue
		}

		// If both base and override have maps at this key, merge them
		if baseMap, baseOk := base[k].(map[string]any); baseOk {
			if overrideMap, overrideOk := v.(map[string]any); overrideOk {
				result[k] = l.deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}

		// Otherwise, override takes precedence
		result[k] = v
	}

	return result
}

// parseDurations converts duration strings to nanoseconds for json unmarshaling
func (l *Loader) parseDurations(data map[string]any) {
	l.parseDurationKey(data, "server", "shutdown_timeout")
	l.parseDurationKey(data, "source", "timeout")
	l.parseDurationKey(data, "source", "poll_interval")
	l.parseDurationKey(data, "diagram", "frame_interval")
}

// parseDurationKey converts one duration string within a config section
func (l *Loader) parseDurationKey(data map[string]any, section, key string) {
	m, ok := data[section].(map[string]any)
	if !ok {
		return
	}
	if s, ok := m[key].(string); ok {
		if d, err := time.ParseDuration(s); err == nil {
			m[key] = d.Nanoseconds()
		}
	}
}

// mergeConfigs merges configuration layers
// This is primarily used for testing - the main Load() uses mergeFromMap
func (l *Loader) mergeConfigs(base, override *Config) *Config {
	if override == nil {
		return base
	}

	// Convert both to maps and use the map-based merge
	baseJSON, err := json.Marshal(base)
	if err != nil {
		return base
	}
	var baseMap map[string]any
	if err := json.Unmarshal(baseJSON, &baseMap); err != nil {
		return base
	}

	overrideJSON, err := json.Marshal(override)
	if err != nil {
		return base
	}
	var overrideMap map[string]any
	if err := json.Unmarshal(overrideJSON, &overrideMap); err != nil {
		return base
	}

	// Remove nil values from override map (these are zero values in Go structs)
	l.removeNilValues(overrideMap)

	// Merge and convert back
	mergedMap := l.deepMergeMaps(baseMap, overrideMap)
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

// removeNilValues recursively removes nil values from a map
func (l *Loader) removeNilValues(m map[string]any) {
	for k, v := range m {
		if v == nil {
			delete(m, k)
		} else if nested, ok := v.(map[string]any); ok {
			l.removeNilValues(nested)
		}
	}
}

// applyEnvOverrides applies environment variable overrides
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	// Server overrides
	val, err := l.envValue("SERVER_ADDR")
	if err != nil {
		return err
	}
	if val != "" {
		cfg.Server.Addr = val
	}

	val, err = l.envValue("ALLOWED_ORIGINS")
	if err != nil {
		return err
	}
	if val != "" {
		cfg.Server.AllowedOrigins = strings.Split(val, ",")
	}

	// Source overrides
	val, err = l.envValue("SOURCE_URL")
	if err != nil {
		return err
	}
	if val != "" {
		cfg.Source.URL = val
	}

	val, err = l.envValue("SOURCE_FILE")
	if err != nil {
		return err
	}
	if val != "" {
		cfg.Source.File = val
	}

	// Log overrides
	val, err = l.envValue("LOG_LEVEL")
	if err != nil {
		return err
	}
	if val != "" {
		cfg.Log.Level = val
	}

	val, err = l.envValue("LOG_FORMAT")
	if err != nil {
		return err
	}
	if val != "" {
		cfg.Log.Format = val
	}

	// Metrics overrides
	val, err = l.envValue("METRICS_PORT")
	if err != nil {
		return err
	}
	if val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s_METRICS_PORT %q: %w", l.envPrefix, val, err)
		}
		cfg.Metrics.Port = port
	}

	return nil
}

// envValue reads and validates one prefixed environment variable
func (l *Loader) envValue(name string) (string, error) {
	key := l.envPrefix + "_" + name
	val := os.Getenv(key)
	if val == "" {
		return "", nil
	}
	if err := validateEnvVar(key, val); err != nil {
		return "", err
	}
	return val, nil
}

// validate validates the configuration
func (l *Loader) validate(cfg *Config) error {
	// Use the config's own validation method
	return cfg.Validate()
}

// SaveToFile saves the configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	// Use secure file writing with validation
	return safeWriteFile(path, data)
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// durationFromJSON converts a decoded JSON value into a time.Duration.
// Accepts duration strings ("5s", "250ms") and nanosecond numbers.
// Returns ok=false when the value is absent.
func durationFromJSON(v any) (time.Duration, bool, error) {
	switch t := v.(type) {
	case string:
		d, err := time.ParseDuration(t)
		if err != nil {
			return 0, false, err
		}
		return d, true, nil
	case float64:
		return time.Duration(t), true, nil
	}
	return 0, false, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for ServerConfig
// so duration fields accept human-readable strings
func (s *ServerConfig) UnmarshalJSON(data []byte) error {
	type Alias ServerConfig
	aux := &struct {
		ShutdownTimeout any `json:"shutdown_timeout"`
		*Alias
	}{
		Alias: (*Alias)(s),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	d, ok, err := durationFromJSON(aux.ShutdownTimeout)
	if err != nil {
		return fmt.Errorf("server.shutdown_timeout: %w", err)
	}
	if ok {
		s.ShutdownTimeout = d
	}
	return nil
}

// UnmarshalJSON implements custom JSON unmarshaling for SourceConfig
func (s *SourceConfig) UnmarshalJSON(data []byte) error {
	type Alias SourceConfig
	aux := &struct {
		Timeout      any `json:"timeout"`
		PollInterval any `json:"poll_interval"`
		*Alias
	}{
		Alias: (*Alias)(s),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	d, ok, err := durationFromJSON(aux.Timeout)
	if err != nil {
		return fmt.Errorf("source.timeout: %w", err)
	}
	if ok {
		s.Timeout = d
	}

	d, ok, err = durationFromJSON(aux.PollInterval)
	if err != nil {
		return fmt.Errorf("source.poll_interval: %w", err)
	}
	if ok {
		s.PollInterval = d
	}
	return nil
}

// UnmarshalJSON implements custom JSON unmarshaling for DiagramConfig
func (d *DiagramConfig) UnmarshalJSON(data []byte) error {
	type Alias DiagramConfig
	aux := &struct {
		FrameInterval any `json:"frame_interval"`
		*Alias
	}{
		Alias: (*Alias)(d),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	iv, ok, err := durationFromJSON(aux.FrameInterval)
	if err != nil {
		return fmt.Errorf("diagram.frame_interval: %w", err)
	}
	if ok {
		d.FrameInterval = iv
	}
	return nil
}
