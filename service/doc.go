// Package service provides service lifecycle management and orchestration
// for the SchemaScope platform.
//
// # Core Service Types
//
// BaseService: Foundation for all services with standardized lifecycle management:
//   - Lifecycle states: Stopped → Starting → Running → Stopping
//   - Health monitoring with periodic checks
//   - Metrics integration with the CoreMetrics registry
//   - Context-based cancellation and graceful shutdown
//
// Manager: Orchestration of the fixed service set:
//   - Explicit registration; registration order is startup order
//   - StartAll with quick retry for services whose dependencies are still binding
//   - StopAll in reverse registration order, collecting per-service errors
//   - Health aggregation across all services
//
// # Service Patterns
//
// Services embed BaseService and layer their own behavior on top:
//
//	type Gateway struct {
//	    *service.BaseService
//	    // service-specific fields
//	}
//
//	func NewGateway(cfg Config, opts ...service.Option) (*Gateway, error) {
//	    base := service.NewBaseService("gateway", opts...)
//	    return &Gateway{BaseService: base}, nil
//	}
//
//	func (g *Gateway) Start(ctx context.Context) error {
//	    if err := g.BaseService.Start(ctx); err != nil {
//	        return err
//	    }
//	    // Start background operations
//	    return nil
//	}
//
// # Orchestration
//
//	manager := service.NewManager(logger)
//
//	// Registration order is startup order; metrics come up before the
//	// gateway that reports into them
//	_ = manager.Register(metricsServer)
//	_ = manager.Register(schemaSource)
//	_ = manager.Register(gateway)
//
//	if err := manager.StartAll(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer manager.StopAll(10 * time.Second)
//
// # Health Monitoring
//
// BaseService runs a periodic health check (WithHealthCheck, WithHealthInterval)
// and exposes the result through Health(), which maps lifecycle states to the
// three-state model in the health package. Manager.Health() aggregates across
// services for the HTTP health endpoint; Manager.Ready() backs the readiness
// probe.
//
// # Metrics Integration
//
// Services with a metrics registry report status transitions automatically:
//   - schemascope_service_status - Current service status (gauge)
//
// Embedding services register their own metrics by overriding RegisterMetrics.
//
// # Error Handling
//
// Services follow SchemaScope error handling patterns:
//   - Configuration errors: Return during construction
//   - Runtime errors: Log and update health status
//   - Shutdown errors: Log but continue graceful shutdown
//
// Use project error wrapping for context:
//
//	if err := validateConfig(cfg); err != nil {
//	    return errors.WrapInvalid(err, "Gateway", "NewGateway", "validate config")
//	}
package service
