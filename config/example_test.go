package config_test

import (
	"fmt"
	"log"

	"github.com/c360/schemascope/config"
)

// ExampleLoader_Load demonstrates loading configuration from multiple layers
// with validation.
func ExampleLoader_Load() {
	loader := config.NewLoader()

	// Add base configuration layer
	loader.AddLayer("testdata/base.json")

	// Add environment-specific overrides
	loader.AddLayer("testdata/production.json")

	// Enable validation to catch errors early
	loader.EnableValidation(true)

	// Load merged configuration
	cfg, err := loader.Load()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(cfg.Server.Addr)
	// Output: :443
}

// ExampleLoader_Load_environmentOverrides demonstrates using environment
// variables to override configuration values at runtime.
func ExampleLoader_Load_environmentOverrides() {
	// Set environment variables (in real usage, these would be set externally)
	// export SCHEMASCOPE_SERVER_ADDR=":9443"
	// export SCHEMASCOPE_LOG_LEVEL="debug"

	loader := config.NewLoader()
	loader.AddLayer("testdata/base.json")

	cfg, err := loader.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Listen address and log level can be overridden via environment
	fmt.Printf("Listen: %s\n", cfg.Server.Addr)
	fmt.Printf("Level: %s\n", cfg.Log.Level)
}

// ExampleSafeConfig_Get demonstrates thread-safe configuration access.
// The Get method returns a deep copy, preventing accidental mutations.
func ExampleSafeConfig_Get() {
	loader := config.NewLoader()

	// No layers added: defaults only
	cfg, err := loader.Load()
	if err != nil {
		log.Fatal(err)
	}

	safe := config.NewSafeConfig(cfg)

	// Get returns a deep copy - modifications don't affect the shared state
	copied := safe.Get()
	copied.Server.Addr = ":9999"

	fmt.Println(safe.Get().Server.Addr)
	// Output: :8080
}

// ExampleConfig_Validate demonstrates field-level validation errors.
func ExampleConfig_Validate() {
	cfg := &config.Config{}

	if err := cfg.Validate(); err != nil {
		fmt.Println(err)
	}
	// Output: server.addr is required
}
