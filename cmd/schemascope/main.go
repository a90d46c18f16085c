// Package main implements the entry point for the SchemaScope server.
// SchemaScope serves interactive relationship diagrams for GraphQL
// schemas: it parses SDL into a typed graph and streams force-directed
// layout frames to browser sessions over WebSocket.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360/schemascope/config"
	"github.com/c360/schemascope/gateway"
	"github.com/c360/schemascope/health"
	"github.com/c360/schemascope/metric"
	"github.com/c360/schemascope/service"
	"github.com/c360/schemascope/source"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "schemascope"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	// Run application with proper error handling
	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	// Parse and validate CLI flags
	cliCfg, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	// Load and validate configuration
	cfg, err := initializeConfiguration(cliCfg)
	if err != nil {
		return err
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	// Rebuild the logger now that file and flag layers are merged
	logger := configureLogging(cfg)

	// Create and register the service set
	manager, metricsServer, err := assembleServices(cfg, logger)
	if err != nil {
		return err
	}

	// Run application with signal handling
	return runWithSignalHandling(context.Background(), manager, metricsServer, cfg.Server.ShutdownTimeout)
}

// initializeCLI parses flags and sets up provisional logging. The final
// logger is configured after the config file is loaded; this one covers
// startup messages and config load failures.
func initializeCLI() (*CLIConfig, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, true, nil
	}

	if cliCfg.ShowHelp {
		printHelp()
		return nil, true, nil
	}

	level := cliCfg.LogLevel
	if level == "" {
		level = "info"
	}
	format := cliCfg.LogFormat
	if format == "" {
		format = "json"
	}
	slog.SetDefault(setupLogger(level, format))

	slog.Info("Starting SchemaScope (GraphQL schema diagrams)",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, false, nil
}

// initializeConfiguration loads configuration layers, applies flag
// overrides, and validates the result
func initializeConfiguration(cliCfg *CLIConfig) (*config.Config, error) {
	loader := config.NewLoader()
	if cliCfg.ConfigPath != "" {
		loader.AddLayer(cliCfg.ConfigPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	applyFlagOverrides(cfg, cliCfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyFlagOverrides lets explicit CLI flags win over file and
// environment layers. A schema source flag replaces the configured
// source entirely so the mutual-exclusion check stays meaningful.
func applyFlagOverrides(cfg *config.Config, cliCfg *CLIConfig) {
	if cliCfg.Addr != "" {
		cfg.Server.Addr = cliCfg.Addr
	}
	if cliCfg.SchemaURL != "" {
		cfg.Source.URL = cliCfg.SchemaURL
		cfg.Source.File = ""
	}
	if cliCfg.SchemaFile != "" {
		cfg.Source.File = cliCfg.SchemaFile
		cfg.Source.URL = ""
	}
	if cliCfg.LogLevel != "" {
		cfg.Log.Level = cliCfg.LogLevel
	}
	if cliCfg.LogFormat != "" {
		cfg.Log.Format = cliCfg.LogFormat
	}
	if cliCfg.ShutdownTimeout > 0 {
		cfg.Server.ShutdownTimeout = cliCfg.ShutdownTimeout
	}
}

// configureLogging installs the definitive logger from merged config
func configureLogging(cfg *config.Config) *slog.Logger {
	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	return logger
}

// healthNotifier is the shape shared by services whose health
// transitions feed the component monitor
type healthNotifier interface {
	service.Service
	OnHealthChange(func(bool))
}

// watchHealth mirrors a service's health transitions into the component
// monitor and the health gauge, and seeds the monitor with the current
// state so aggregation never reports an empty system.
func watchHealth(monitor *health.Monitor, metrics *metric.Metrics, svc healthNotifier) {
	svc.OnHealthChange(func(healthy bool) {
		monitor.Update(svc.Name(), svc.Health())
		metrics.RecordHealthStatus(svc.Name(), healthy)
		slog.Info("Service health changed", "service", svc.Name(), "healthy", healthy)
	})
	monitor.Update(svc.Name(), svc.Health())
}

// assembleServices builds the gateway, schema source, and metrics
// server, registers the managed services in startup order, and wires
// health reporting between them.
func assembleServices(cfg *config.Config, logger *slog.Logger) (*service.Manager, *metric.Server, error) {
	metricsRegistry := metric.NewMetricsRegistry()
	manager := service.NewManager(logger)
	monitor := health.NewMonitor()

	gw, err := gateway.NewServer(*cfg,
		gateway.WithLogger(logger),
		gateway.WithMetricsRegistry(metricsRegistry),
		gateway.WithManager(manager),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create gateway: %w", err)
	}
	if err := manager.Register(gw); err != nil {
		return nil, nil, fmt.Errorf("register gateway: %w", err)
	}
	watchHealth(monitor, metricsRegistry.CoreMetrics(), gw)

	if err := wireSchemaSource(cfg, logger, metricsRegistry, manager, monitor, gw); err != nil {
		return nil, nil, err
	}

	var metricsServer *metric.Server
	if cfg.Metrics.Enabled {
		metricsServer = metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, metricsRegistry, cfg.Security)
		metricsServer.SetHealthProvider(func() health.Status {
			for _, name := range manager.ServiceNames() {
				if svc, ok := manager.Get(name); ok {
					monitor.Update(name, svc.Health())
				}
			}
			return monitor.AggregateHealth(appName)
		})
	}

	return manager, metricsServer, nil
}

// wireSchemaSource connects the configured schema origin to the
// gateway. With a poll interval the source becomes a managed polling
// service; without one the schema is fetched once at startup. No source
// at all means sessions supply schema text over the wire.
func wireSchemaSource(
	cfg *config.Config,
	logger *slog.Logger,
	metricsRegistry *metric.MetricsRegistry,
	manager *service.Manager,
	monitor *health.Monitor,
	gw *gateway.Server,
) error {
	src, err := source.FromConfig(cfg.Source,
		source.WithLogger(logger),
		source.WithMetrics(metricsRegistry.CoreMetrics()),
	)
	if err != nil {
		return fmt.Errorf("create schema source: %w", err)
	}
	if src == nil {
		slog.Info("No schema source configured; waiting for schema over the wire")
		return nil
	}

	if cfg.Source.PollInterval <= 0 {
		// One-shot load before the listener accepts sessions. The HTTP
		// source retries internally, so a failure here is an operator
		// error worth failing fast on.
		fetchCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		sdl, err := src.Fetch(fetchCtx)
		if err != nil {
			return fmt.Errorf("fetch schema from %s: %w", src.Name(), err)
		}
		gw.UpdateSchema(sdl)
		slog.Info("Schema loaded", "source", src.Name(), "bytes", len(sdl))
		return nil
	}

	poller, err := source.NewPoller(src, cfg.Source.PollInterval, gw.UpdateSchema,
		service.WithLogger(logger),
		service.WithMetrics(metricsRegistry),
	)
	if err != nil {
		return fmt.Errorf("create schema poller: %w", err)
	}
	if err := manager.Register(poller); err != nil {
		return fmt.Errorf("register schema poller: %w", err)
	}
	watchHealth(monitor, metricsRegistry.CoreMetrics(), poller)
	return nil
}

// runWithSignalHandling starts services and handles shutdown signals.
// The metrics server runs in an errgroup beside the managed services;
// its failure tears the group down the same way a signal does.
func runWithSignalHandling(
	ctx context.Context,
	manager *service.Manager,
	metricsServer *metric.Server,
	shutdownTimeout time.Duration,
) error {
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if err := manager.StartAll(signalCtx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	g, gctx := errgroup.WithContext(signalCtx)
	if metricsServer != nil {
		g.Go(func() error {
			if err := metricsServer.Start(); err != nil {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return metricsServer.Stop()
		})
		slog.Info("Metrics server listening", "address", metricsServer.Address())
	}

	slog.Info("SchemaScope started", "services", manager.ServiceNames())

	<-gctx.Done()
	if signalCtx.Err() != nil {
		slog.Info("Received shutdown signal")
	} else {
		slog.Error("Shutting down after metrics server failure")
	}

	stopErr := manager.StopAll(shutdownTimeout)
	serveErr := g.Wait()

	if serveErr != nil {
		return serveErr
	}
	if stopErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", stopErr)
	}

	slog.Info("SchemaScope shutdown complete")
	return nil
}

// printHelp prints help information
func printHelp() {
	printDetailedHelp()
}
