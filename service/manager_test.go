package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scopeerrors "github.com/c360/schemascope/errors"
	"github.com/c360/schemascope/health"
	"github.com/c360/schemascope/metric"
	"github.com/c360/schemascope/pkg/retry"
)

// scriptedService implements Service with controllable behavior and records
// lifecycle calls into a shared log for ordering assertions.
type scriptedService struct {
	name     string
	startErr error
	stopErr  error
	healthy  bool

	mu     sync.Mutex
	status Status
	log    *[]string
}

func newScriptedService(name string, log *[]string) *scriptedService {
	return &scriptedService{name: name, healthy: true, log: log}
}

func (s *scriptedService) Name() string { return s.name }

func (s *scriptedService) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.log != nil {
		*s.log = append(*s.log, "start:"+s.name)
	}
	if s.startErr != nil {
		return s.startErr
	}
	s.status = StatusRunning
	return nil
}

func (s *scriptedService) Stop(_ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.log != nil {
		*s.log = append(*s.log, "stop:"+s.name)
	}
	if s.stopErr != nil {
		return s.stopErr
	}
	s.status = StatusStopped
	return nil
}

func (s *scriptedService) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *scriptedService) IsHealthy() bool { return s.healthy }

func (s *scriptedService) GetStatus() Info {
	return Info{Name: s.name, Status: s.Status()}
}

func (s *scriptedService) Health() health.Status {
	if s.healthy {
		return health.NewHealthy(s.name, "ok")
	}
	return health.NewUnhealthy(s.name, "failing")
}

func (s *scriptedService) RegisterMetrics(_ metric.MetricsRegistrar) error { return nil }

func TestManager_RegisterAndGet(t *testing.T) {
	manager := NewManager(nil)

	svc := newScriptedService("gateway", nil)
	require.NoError(t, manager.Register(svc))

	got, exists := manager.Get("gateway")
	assert.True(t, exists)
	assert.Equal(t, svc, got)

	_, exists = manager.Get("unknown")
	assert.False(t, exists)

	assert.Equal(t, 1, manager.Count())
}

func TestManager_RegisterDuplicateRejected(t *testing.T) {
	manager := NewManager(nil)

	require.NoError(t, manager.Register(newScriptedService("gateway", nil)))

	err := manager.Register(newScriptedService("gateway", nil))
	require.Error(t, err)
	assert.True(t, scopeerrors.IsInvalid(err))
}

func TestManager_StartAllRunsInRegistrationOrder(t *testing.T) {
	manager := NewManager(nil)
	var log []string

	require.NoError(t, manager.Register(newScriptedService("metrics", &log)))
	require.NoError(t, manager.Register(newScriptedService("schema-source", &log)))
	require.NoError(t, manager.Register(newScriptedService("gateway", &log)))

	require.NoError(t, manager.StartAll(context.Background()))

	assert.Equal(t, []string{"start:metrics", "start:schema-source", "start:gateway"}, log)
	assert.Equal(t, []string{"metrics", "schema-source", "gateway"}, manager.ServiceNames())
}

func TestManager_StopAllRunsInReverseOrder(t *testing.T) {
	manager := NewManager(nil)
	var log []string

	require.NoError(t, manager.Register(newScriptedService("metrics", &log)))
	require.NoError(t, manager.Register(newScriptedService("schema-source", &log)))
	require.NoError(t, manager.Register(newScriptedService("gateway", &log)))

	require.NoError(t, manager.StartAll(context.Background()))
	log = log[:0]

	require.NoError(t, manager.StopAll(time.Second))

	assert.Equal(t, []string{"stop:gateway", "stop:schema-source", "stop:metrics"}, log)
}

func TestManager_StartAllStopsOnFailure(t *testing.T) {
	manager := NewManager(nil)
	var log []string

	require.NoError(t, manager.Register(newScriptedService("metrics", &log)))

	failing := newScriptedService("schema-source", &log)
	failing.startErr = retry.NonRetryable(errors.New("bind: address already in use"))
	require.NoError(t, manager.Register(failing))

	require.NoError(t, manager.Register(newScriptedService("gateway", &log)))

	err := manager.StartAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema-source")

	// The gateway behind the failing service must not have been started
	for _, entry := range log {
		assert.NotEqual(t, "start:gateway", entry)
	}
}

func TestManager_StopAllCollectsErrors(t *testing.T) {
	manager := NewManager(nil)

	failing := newScriptedService("gateway", nil)
	failing.stopErr = errors.New("sessions did not drain")
	require.NoError(t, manager.Register(failing))
	require.NoError(t, manager.Register(newScriptedService("metrics", nil)))

	require.NoError(t, manager.StartAll(context.Background()))

	err := manager.StopAll(time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway")

	// The healthy service still got its shutdown
	metricsSvc, _ := manager.Get("metrics")
	assert.Equal(t, StatusStopped, metricsSvc.Status())
}

func TestManager_HealthAggregation(t *testing.T) {
	manager := NewManager(nil)

	healthySvc := newScriptedService("gateway", nil)
	require.NoError(t, manager.Register(healthySvc))

	status := manager.Health()
	assert.Equal(t, "schemascope", status.Component)
	assert.True(t, status.IsHealthy())

	failing := newScriptedService("schema-source", nil)
	failing.healthy = false
	require.NoError(t, manager.Register(failing))

	status = manager.Health()
	assert.True(t, status.IsUnhealthy())
	assert.Len(t, status.SubStatuses, 2)

	assert.Equal(t, []string{"gateway"}, manager.HealthyServices())
	assert.Equal(t, []string{"schema-source"}, manager.UnhealthyServices())
}

func TestManager_Ready(t *testing.T) {
	manager := NewManager(nil)

	svc := newScriptedService("gateway", nil)
	require.NoError(t, manager.Register(svc))

	// Registered but not started
	assert.False(t, manager.Ready())

	require.NoError(t, manager.StartAll(context.Background()))
	assert.True(t, manager.Ready())

	svc.healthy = false
	assert.False(t, manager.Ready())
}

func TestManager_BaseServiceIntegration(t *testing.T) {
	manager := NewManager(nil)

	base := NewBaseService("gateway", WithHealthInterval(0))
	require.NoError(t, manager.Register(base))

	require.NoError(t, manager.StartAll(context.Background()))
	assert.Equal(t, StatusRunning, base.Status())

	require.NoError(t, manager.StopAll(time.Second))
	assert.Equal(t, StatusStopped, base.Status())
}
