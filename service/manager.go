package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/c360/schemascope/errors"
	"github.com/c360/schemascope/health"
	"github.com/c360/schemascope/pkg/retry"
)

// Manager tracks a fixed set of services and drives their lifecycle.
// Services are registered explicitly and started in registration order;
// shutdown runs in reverse order so dependents stop before dependencies.
type Manager struct {
	logger   *slog.Logger
	services map[string]Service
	order    []string
	mu       sync.RWMutex
}

// NewManager creates a new service manager
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:   logger,
		services: make(map[string]Service),
	}
}

// Register adds a service to the manager. Registration order determines
// startup order.
func (m *Manager) Register(svc Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := svc.Name()
	if _, exists := m.services[name]; exists {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Manager", "Register",
			fmt.Sprintf("register service %s", name))
	}

	m.services[name] = svc
	m.order = append(m.order, name)
	return nil
}

// Get returns a registered service by name
func (m *Manager) Get(name string) (Service, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	svc, exists := m.services[name]
	return svc, exists
}

// ServiceNames returns the registered service names in startup order
func (m *Manager) ServiceNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.order))
	copy(names, m.order)
	return names
}

// Count returns the number of registered services
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.services)
}

// StartAll starts every registered service in registration order.
// Startup uses a quick retry so a service whose dependency is still
// binding its listener gets a second chance before the whole start fails.
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.RLock()
	order := make([]string, len(m.order))
	copy(order, m.order)
	services := make(map[string]Service, len(m.services))
	for name, svc := range m.services {
		services[name] = svc
	}
	m.mu.RUnlock()

	m.logger.Debug("Beginning service startup sequence", "service_count", len(order))

	for _, name := range order {
		svc := services[name]
		m.logger.Debug("Starting service", "service", name)

		startErr := retry.Do(ctx, retry.Quick(), func() error {
			if err := svc.Start(ctx); err != nil {
				m.logger.Debug("Service start attempt failed, will retry",
					"service", name,
					"error", err)
				return err
			}
			return nil
		})
		if startErr != nil {
			m.logger.Error("Failed to start service", "service", name, "error", startErr)
			return errors.Wrap(startErr, "Manager", "StartAll", fmt.Sprintf("start service %s", name))
		}

		m.logger.Debug("Service started", "service", name)
	}

	m.logger.Info("All services started", "count", len(order))
	return nil
}

// StopAll stops every registered service in reverse registration order.
// Stop errors are collected rather than aborting so every service gets a
// shutdown attempt.
func (m *Manager) StopAll(timeout time.Duration) error {
	m.mu.RLock()
	reverseOrder := make([]string, len(m.order))
	for i, name := range m.order {
		reverseOrder[len(m.order)-1-i] = name
	}
	services := make(map[string]Service, len(m.services))
	for name, svc := range m.services {
		services[name] = svc
	}
	m.mu.RUnlock()

	logger := m.logger.With("operation", "services-shutdown")
	logger.Debug("Starting service shutdown sequence",
		"count", len(reverseOrder),
		"timeout", timeout,
		"order", reverseOrder,
	)
	overallStart := time.Now()

	var stopErrors []error
	for _, name := range reverseOrder {
		svc := services[name]
		serviceStart := time.Now()
		logger.Debug("Stopping service", "service", name)

		if err := svc.Stop(timeout); err != nil {
			logger.Error("Service stop failed",
				"service", name,
				"duration_ms", time.Since(serviceStart).Milliseconds(),
				"error", err,
			)
			stopErrors = append(stopErrors, fmt.Errorf("stop service %s: %w", name, err))
		} else {
			logger.Debug("Service stopped",
				"service", name,
				"duration_ms", time.Since(serviceStart).Milliseconds(),
			)
		}
	}

	logger.Debug("Service shutdown sequence completed",
		"duration_ms", time.Since(overallStart).Milliseconds(),
		"error_count", len(stopErrors),
	)

	if len(stopErrors) > 0 {
		return fmt.Errorf("stop errors: %v", stopErrors)
	}
	return nil
}

// Health returns the aggregated health of all registered services
func (m *Manager) Health() health.Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subStatuses := make([]health.Status, 0, len(m.services))
	for _, name := range m.order {
		subStatuses = append(subStatuses, m.services[name].Health())
	}

	return health.Aggregate("schemascope", subStatuses)
}

// HealthyServices returns the names of services currently reporting healthy
func (m *Manager) HealthyServices() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var healthy []string
	for _, name := range m.order {
		if m.services[name].IsHealthy() {
			healthy = append(healthy, name)
		}
	}
	return healthy
}

// UnhealthyServices returns the names of services currently reporting unhealthy
func (m *Manager) UnhealthyServices() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var unhealthy []string
	for _, name := range m.order {
		if !m.services[name].IsHealthy() {
			unhealthy = append(unhealthy, name)
		}
	}
	return unhealthy
}

// Ready reports whether every registered service is running and healthy
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, svc := range m.services {
		if svc.Status() != StatusRunning || !svc.IsHealthy() {
			return false
		}
	}
	return true
}
