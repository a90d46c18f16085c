package metric

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatheredNames(t *testing.T, registry *MetricsRegistry) map[string]bool {
	t.Helper()
	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	return names
}

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()

	assert.NotNil(t, registry)
	assert.NotNil(t, registry.PrometheusRegistry())
	assert.NotNil(t, registry.CoreMetrics())
}

func TestMetricsRegistry_CoreMetricsExposed(t *testing.T) {
	registry := NewMetricsRegistry()
	core := registry.CoreMetrics()

	core.RecordSessionOpened()
	core.RecordEvent("node_click")
	core.RecordFrameSent()
	core.RecordSchemaLoad(true)
	core.RecordSchemaLoad(false)
	core.RecordGraphSize(12, 30)
	core.RecordLayoutTick()
	core.RecordProcessingDuration("parse", 5*time.Millisecond)
	core.RecordSourceStatus(true)
	core.RecordSourceFetch("success")
	core.RecordError("Controller", "invalid")
	core.RecordSessionClosed()

	names := gatheredNames(t, registry)
	for _, want := range []string{
		"schemascope_sessions_total",
		"schemascope_sessions_events_total",
		"schemascope_sessions_frames_total",
		"schemascope_schema_loads_total",
		"schemascope_schema_graph_nodes",
		"schemascope_layout_ticks_total",
		"schemascope_processing_duration_seconds",
		"schemascope_source_up",
		"schemascope_errors_total",
	} {
		assert.True(t, names[want], "expected metric %s", want)
	}
}

func TestMetricsRegistry_RegisterCounter(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter",
		Help: "A test counter",
	})

	err := registry.RegisterCounter("gateway", "test_counter", counter)
	require.NoError(t, err)

	counter.Inc()
	assert.True(t, gatheredNames(t, registry)["test_counter"])
}

func TestMetricsRegistry_RegisterGaugeAndHistogram(t *testing.T) {
	registry := NewMetricsRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_gauge",
		Help: "A test gauge",
	})
	require.NoError(t, registry.RegisterGauge("gateway", "test_gauge", gauge))
	gauge.Set(42.0)

	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_histogram",
		Help:    "A test histogram",
		Buckets: prometheus.DefBuckets,
	})
	require.NoError(t, registry.RegisterHistogram("gateway", "test_histogram", histogram))
	histogram.Observe(1.5)

	names := gatheredNames(t, registry)
	assert.True(t, names["test_gauge"])
	assert.True(t, names["test_histogram"])
}

func TestMetricsRegistry_RegisterVecs(t *testing.T) {
	registry := NewMetricsRegistry()

	counterVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_counter_vec",
		Help: "A test counter vec",
	}, []string{"kind"})
	require.NoError(t, registry.RegisterCounterVec("gateway", "test_counter_vec", counterVec))
	counterVec.WithLabelValues("a").Inc()

	gaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "test_gauge_vec",
		Help: "A test gauge vec",
	}, []string{"kind"})
	require.NoError(t, registry.RegisterGaugeVec("gateway", "test_gauge_vec", gaugeVec))
	gaugeVec.WithLabelValues("a").Set(1)

	histogramVec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "test_histogram_vec",
		Help:    "A test histogram vec",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	require.NoError(t, registry.RegisterHistogramVec("gateway", "test_histogram_vec", histogramVec))
	histogramVec.WithLabelValues("a").Observe(0.5)

	names := gatheredNames(t, registry)
	assert.True(t, names["test_counter_vec"])
	assert.True(t, names["test_gauge_vec"])
	assert.True(t, names["test_histogram_vec"])
}

func TestMetricsRegistry_DuplicateRejected(t *testing.T) {
	registry := NewMetricsRegistry()

	first := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dup_counter",
		Help: "A duplicate counter",
	})
	require.NoError(t, registry.RegisterCounter("gateway", "dup_counter", first))

	second := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dup_counter",
		Help: "A duplicate counter",
	})
	err := registry.RegisterCounter("gateway", "dup_counter", second)
	assert.Error(t, err)

	// Same collector name under a different component still collides inside
	// Prometheus itself.
	err = registry.RegisterCounter("session", "dup_counter", second)
	assert.Error(t, err)
}

func TestMetricsRegistry_Unregister(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "transient_counter",
		Help: "A transient counter",
	})
	require.NoError(t, registry.RegisterCounter("gateway", "transient_counter", counter))

	assert.True(t, registry.Unregister("gateway", "transient_counter"))
	assert.False(t, registry.Unregister("gateway", "transient_counter"))
	assert.False(t, gatheredNames(t, registry)["transient_counter"])

	// Re-registration after unregister succeeds.
	require.NoError(t, registry.RegisterCounter("gateway", "transient_counter", counter))
}

func TestMetricsRegistry_ConcurrentRegistration(t *testing.T) {
	registry := NewMetricsRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			counter := prometheus.NewCounter(prometheus.CounterOpts{
				Name: fmt.Sprintf("concurrent_counter_%d", n),
				Help: "A concurrent counter",
			})
			assert.NoError(t, registry.RegisterCounter("gateway", fmt.Sprintf("concurrent_counter_%d", n), counter))
		}(i)
	}
	wg.Wait()

	names := gatheredNames(t, registry)
	for i := 0; i < 10; i++ {
		assert.True(t, names[fmt.Sprintf("concurrent_counter_%d", i)])
	}
}
