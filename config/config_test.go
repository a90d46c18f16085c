package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/schemascope/layout"
)

// writeConfig writes a config JSON body to a temp file and returns its path
func writeConfig(t *testing.T, body string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.json")
	err := os.WriteFile(configFile, []byte(body), 0644)
	require.NoError(t, err)
	return configFile
}

// Test basic config structure
func TestConfig_Structure(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"https://studio.example.com"},
		},
		Source: SourceConfig{
			URL:     "https://db.example.com/admin/schema",
			Timeout: 5 * time.Second,
			Retries: 3,
		},
		Layout: layout.DefaultConfig(),
		Diagram: DiagramConfig{
			IncludeScalars: true,
			FrameInterval:  33 * time.Millisecond,
		},
	}

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Contains(t, cfg.Server.AllowedOrigins, "https://studio.example.com")
	assert.Equal(t, 3, cfg.Source.Retries)
	assert.True(t, cfg.Diagram.IncludeScalars)
}

// Test loading config from JSON file
func TestLoader_LoadJSON(t *testing.T) {
	testConfig := `{
		"server": {
			"addr": ":9443",
			"shutdown_timeout": "30s",
			"allowed_origins": ["https://studio.example.com", "https://ops.example.com"]
		},
		"source": {
			"url": "https://db.example.com/admin/schema",
			"timeout": "5s",
			"retries": 5,
			"poll_interval": "30s"
		},
		"diagram": {
			"include_scalars": true,
			"frame_interval": "16ms"
		},
		"log": {
			"level": "debug",
			"format": "text"
		},
		"metrics": {
			"enabled": true,
			"port": 9191,
			"path": "/metrics"
		}
	}`

	loader := NewLoader()
	cfg, err := loader.LoadFile(writeConfig(t, testConfig))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Verify loaded values
	assert.Equal(t, ":9443", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Len(t, cfg.Server.AllowedOrigins, 2)
	assert.Equal(t, "https://db.example.com/admin/schema", cfg.Source.URL)
	assert.Equal(t, 5*time.Second, cfg.Source.Timeout)
	assert.Equal(t, 5, cfg.Source.Retries)
	assert.Equal(t, 30*time.Second, cfg.Source.PollInterval)
	assert.True(t, cfg.Diagram.IncludeScalars)
	assert.Equal(t, 16*time.Millisecond, cfg.Diagram.FrameInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 9191, cfg.Metrics.Port)
}

// Test default values
func TestLoader_Defaults(t *testing.T) {
	// Minimal config with most fields missing
	testConfig := `{
		"log": {
			"level": "debug"
		}
	}`

	loader := NewLoader()
	cfg, err := loader.LoadFile(writeConfig(t, testConfig))
	require.NoError(t, err)

	// Check defaults were applied
	assert.Equal(t, ":8080", cfg.Server.Addr)                          // default listen address
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)        // default drain window
	assert.Equal(t, 10*time.Second, cfg.Source.Timeout)                // default fetch timeout
	assert.Equal(t, 3, cfg.Source.Retries)                             // default retry budget
	assert.Equal(t, layout.DefaultSpringLength, cfg.Layout.SpringLength)
	assert.Equal(t, layout.DefaultAlphaDecay, cfg.Layout.AlphaDecay)
	assert.False(t, cfg.Diagram.IncludeScalars)                        // scalars hidden by default
	assert.Equal(t, 33*time.Millisecond, cfg.Diagram.FrameInterval)    // ~30fps
	assert.Equal(t, "debug", cfg.Log.Level)                            // from file
	assert.Equal(t, "json", cfg.Log.Format)                            // default format
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

// Test layered loading where later files override earlier ones
func TestLoader_Layering(t *testing.T) {
	base := `{
		"server": {"addr": ":8080"},
		"log": {"level": "debug", "format": "text"},
		"diagram": {"include_scalars": true}
	}`
	production := `{
		"server": {"addr": ":443", "shutdown_timeout": "30s"},
		"log": {"level": "warn"}
	}`

	tmpDir := t.TempDir()
	baseFile := filepath.Join(tmpDir, "base.json")
	prodFile := filepath.Join(tmpDir, "production.json")
	require.NoError(t, os.WriteFile(baseFile, []byte(base), 0644))
	require.NoError(t, os.WriteFile(prodFile, []byte(production), 0644))

	loader := NewLoader()
	loader.AddLayer(baseFile)
	loader.AddLayer(prodFile)
	loader.EnableValidation(true)

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, ":443", cfg.Server.Addr)                    // from production
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout) // from production
	assert.Equal(t, "warn", cfg.Log.Level)                      // from production
	assert.Equal(t, "text", cfg.Log.Format)                     // from base
	assert.True(t, cfg.Diagram.IncludeScalars)                  // from base
}

// Test environment variable overrides
func TestLoader_EnvOverrides(t *testing.T) {
	_ = os.Setenv("SCHEMASCOPE_SERVER_ADDR", ":9443")
	_ = os.Setenv("SCHEMASCOPE_SOURCE_URL", "http://localhost:7474/admin/schema")
	_ = os.Setenv("SCHEMASCOPE_LOG_LEVEL", "debug")
	_ = os.Setenv("SCHEMASCOPE_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	_ = os.Setenv("SCHEMASCOPE_METRICS_PORT", "9191")
	defer func() {
		_ = os.Unsetenv("SCHEMASCOPE_SERVER_ADDR")
		_ = os.Unsetenv("SCHEMASCOPE_SOURCE_URL")
		_ = os.Unsetenv("SCHEMASCOPE_LOG_LEVEL")
		_ = os.Unsetenv("SCHEMASCOPE_ALLOWED_ORIGINS")
		_ = os.Unsetenv("SCHEMASCOPE_METRICS_PORT")
	}()

	// Base config the env vars should win over
	testConfig := `{
		"server": {"addr": ":8080"},
		"log": {"level": "info", "format": "text"}
	}`

	loader := NewLoader()
	cfg, err := loader.LoadFile(writeConfig(t, testConfig))
	require.NoError(t, err)

	// Env vars should override JSON
	assert.Equal(t, ":9443", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:7474/admin/schema", cfg.Source.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 9191, cfg.Metrics.Port)

	// JSON value should remain when no env override
	assert.Equal(t, "text", cfg.Log.Format)
}

// Test that a malformed port override fails the load rather than being ignored
func TestLoader_EnvOverrideInvalidPort(t *testing.T) {
	_ = os.Setenv("SCHEMASCOPE_METRICS_PORT", "not-a-port")
	defer func() { _ = os.Unsetenv("SCHEMASCOPE_METRICS_PORT") }()

	loader := NewLoader()
	_, err := loader.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCHEMASCOPE_METRICS_PORT")
}

// Test validation
func TestLoader_Validation(t *testing.T) {
	tests := []struct {
		name      string
		config    string
		wantError string
	}{
		{
			name:      "empty server addr",
			config:    `{"server": {"addr": ""}}`,
			wantError: "server.addr is required",
		},
		{
			name:      "url and file both set",
			config:    `{"source": {"url": "http://localhost:7474/schema", "file": "schema.graphql"}}`,
			wantError: "mutually exclusive",
		},
		{
			name:      "unsupported source scheme",
			config:    `{"source": {"url": "ftp://example.com/schema"}}`,
			wantError: "must use http or https",
		},
		{
			name:      "negative retries",
			config:    `{"source": {"retries": -1}}`,
			wantError: "source.retries cannot be negative",
		},
		{
			name:      "poll interval without source",
			config:    `{"source": {"poll_interval": "30s"}}`,
			wantError: "requires source.url or source.file",
		},
		{
			name:      "unknown log level",
			config:    `{"log": {"level": "verbose"}}`,
			wantError: "invalid log level",
		},
		{
			name:      "unknown log format",
			config:    `{"log": {"format": "xml"}}`,
			wantError: "invalid log format",
		},
		{
			name:      "metrics port out of range",
			config:    `{"metrics": {"enabled": true, "port": 70000}}`,
			wantError: "out of range",
		},
		{
			name:      "metrics path without slash",
			config:    `{"metrics": {"path": "metrics"}}`,
			wantError: "must start with /",
		},
		{
			name:      "layout alpha out of range",
			config:    `{"layout": {"alpha": 2.0}}`,
			wantError: "layout configuration",
		},
		{
			name:      "negative frame interval",
			config:    `{"diagram": {"frame_interval": "-5ms"}}`,
			wantError: "diagram.frame_interval cannot be negative",
		},
		{
			name:      "bad client TLS version",
			config:    `{"security": {"tls": {"client": {"min_version": "1.1"}}}}`,
			wantError: "tls.client.min_version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader()
			loader.EnableValidation(true)

			_, err := loader.LoadFile(writeConfig(t, tt.config))
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

// Test merging configurations
func TestLoader_MergeConfigs(t *testing.T) {
	loader := NewLoader()

	base := &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
		},
	}

	override := &Config{
		Server: ServerConfig{
			Addr: ":443",
		},
		Source: SourceConfig{
			URL: "https://db.example.com/admin/schema",
		},
	}

	merged := loader.mergeConfigs(base, override)

	assert.Equal(t, ":443", merged.Server.Addr)                            // from override
	assert.Equal(t, 10*time.Second, merged.Server.ShutdownTimeout)         // from base
	assert.Equal(t, "debug", merged.Log.Level)                             // from base
	assert.Equal(t, "text", merged.Log.Format)                             // from base
	assert.Equal(t, "https://db.example.com/admin/schema", merged.Source.URL) // from override
}

// Test saving configuration back to file
func TestConfig_Save(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            ":9443",
			ShutdownTimeout: 20 * time.Second,
			AllowedOrigins:  []string{"https://studio.example.com"},
		},
		Source: SourceConfig{
			URL:     "https://db.example.com/admin/schema",
			Timeout: 5 * time.Second,
			Retries: 2,
		},
		Layout: layout.DefaultConfig(),
		Diagram: DiagramConfig{
			IncludeScalars: true,
			FrameInterval:  16 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
	}

	tmpDir := t.TempDir()
	saveFile := filepath.Join(tmpDir, "saved.json")

	err := cfg.SaveToFile(saveFile)
	require.NoError(t, err)

	// Load it back
	loader := NewLoader()
	loaded, err := loader.LoadFile(saveFile)
	require.NoError(t, err)

	assert.Equal(t, cfg.Server.Addr, loaded.Server.Addr)
	assert.Equal(t, cfg.Server.ShutdownTimeout, loaded.Server.ShutdownTimeout)
	assert.Equal(t, cfg.Server.AllowedOrigins, loaded.Server.AllowedOrigins)
	assert.Equal(t, cfg.Source.URL, loaded.Source.URL)
	assert.Equal(t, cfg.Source.Timeout, loaded.Source.Timeout)
	assert.Equal(t, cfg.Diagram.IncludeScalars, loaded.Diagram.IncludeScalars)
	assert.Equal(t, cfg.Diagram.FrameInterval, loaded.Diagram.FrameInterval)
	assert.Equal(t, cfg.Log.Level, loaded.Log.Level)
	assert.Equal(t, cfg.Layout.SpringLength, loaded.Layout.SpringLength)
	assert.Equal(t, cfg.Metrics.Port, loaded.Metrics.Port)
}

// Test duration fields in both string and nanosecond number form
func TestConfig_DurationFormats(t *testing.T) {
	t.Run("strings via loader", func(t *testing.T) {
		testConfig := `{
			"server": {"shutdown_timeout": "45s"},
			"source": {"timeout": "2.5s"},
			"diagram": {"frame_interval": "16ms"}
		}`

		loader := NewLoader()
		cfg, err := loader.LoadFile(writeConfig(t, testConfig))
		require.NoError(t, err)

		assert.Equal(t, 45*time.Second, cfg.Server.ShutdownTimeout)
		assert.Equal(t, 2500*time.Millisecond, cfg.Source.Timeout)
		assert.Equal(t, 16*time.Millisecond, cfg.Diagram.FrameInterval)
	})

	t.Run("string via direct unmarshal", func(t *testing.T) {
		var cfg Config
		err := json.Unmarshal([]byte(`{"server": {"addr": ":1", "shutdown_timeout": "1m"}}`), &cfg)
		require.NoError(t, err)
		assert.Equal(t, time.Minute, cfg.Server.ShutdownTimeout)
	})

	t.Run("nanosecond number via direct unmarshal", func(t *testing.T) {
		var cfg Config
		err := json.Unmarshal([]byte(`{"server": {"shutdown_timeout": 5000000000}}`), &cfg)
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	})

	t.Run("unparseable string rejected", func(t *testing.T) {
		var cfg Config
		err := json.Unmarshal([]byte(`{"server": {"shutdown_timeout": "fast"}}`), &cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.shutdown_timeout")
	})
}

// Test loading a file that does not exist
func TestLoader_MissingFile(t *testing.T) {
	tmpDir := t.TempDir()

	loader := NewLoader()
	_, err := loader.LoadFile(filepath.Join(tmpDir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot stat")
}
