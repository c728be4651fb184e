// Package promadapters provides a Prometheus adapter for the changetracker
// metrics interface, for users who expose metrics through a Prometheus
// registry instead of OpenTelemetry.
package promadapters

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/statetrack/change-tracker-go/changetracker"
)

// MetricsCollector implements changetracker.MetricsCollector on top of
// Prometheus metric vectors. Instruments are created on demand the first time
// a metric name is recorded; the label key set of that first call becomes the
// vector's label names, so a metric must always be recorded with the same
// label keys.
//
// It is safe for concurrent use: a TrackedCollection diffs its elements
// concurrently and records metrics from those goroutines.
type MetricsCollector struct {
	registerer prometheus.Registerer
	mu         sync.Mutex // guards the instrument maps
	histograms map[string]*prometheus.HistogramVec
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
}

// NewMetricsCollector creates a new Prometheus metrics collector registering
// its instruments with the given registerer, e.g. prometheus.DefaultRegisterer.
func NewMetricsCollector(registerer prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		registerer: registerer,
		histograms: make(map[string]*prometheus.HistogramVec),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}
}

// RecordDuration observes a duration in seconds on a histogram vector.
func (m *MetricsCollector) RecordDuration(metricName string, duration time.Duration, labels map[string]string) {
	histogram := m.getOrCreateHistogram(metricName, labelNames(labels))
	if histogram == nil {
		return
	}

	histogram.With(labels).Observe(duration.Seconds())
}

// IncrementCounter increments a counter vector.
func (m *MetricsCollector) IncrementCounter(metricName string, labels map[string]string) {
	counter := m.getOrCreateCounter(metricName, labelNames(labels))
	if counter == nil {
		return
	}

	counter.With(labels).Inc()
}

// RecordValue sets a gauge vector to the given value.
func (m *MetricsCollector) RecordValue(metricName string, value float64, labels map[string]string) {
	gauge := m.getOrCreateGauge(metricName, labelNames(labels))
	if gauge == nil {
		return
	}

	gauge.With(labels).Set(value)
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// register registers the collector, tolerating a concurrent registration of
// the same instrument by returning the already registered one.
func (m *MetricsCollector) register(collector prometheus.Collector) prometheus.Collector {
	if err := m.registerer.Register(collector); err != nil {
		var alreadyRegistered prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			return alreadyRegistered.ExistingCollector
		}

		return nil
	}

	return collector
}

func (m *MetricsCollector) getOrCreateHistogram(name string, names []string) *prometheus.HistogramVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if histogram, exists := m.histograms[name]; exists {
		return histogram
	}

	registered := m.register(prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: name,
		Help: "change tracking operation duration in seconds",
	}, names))
	histogram, ok := registered.(*prometheus.HistogramVec)
	if !ok {
		return nil
	}

	m.histograms[name] = histogram

	return histogram
}

func (m *MetricsCollector) getOrCreateCounter(name string, names []string) *prometheus.CounterVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if counter, exists := m.counters[name]; exists {
		return counter
	}

	registered := m.register(prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: "change tracking operation counter",
	}, names))
	counter, ok := registered.(*prometheus.CounterVec)
	if !ok {
		return nil
	}

	m.counters[name] = counter

	return counter
}

func (m *MetricsCollector) getOrCreateGauge(name string, names []string) *prometheus.GaugeVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gauge, exists := m.gauges[name]; exists {
		return gauge
	}

	registered := m.register(prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: name,
		Help: "change tracking current value",
	}, names))
	gauge, ok := registered.(*prometheus.GaugeVec)
	if !ok {
		return nil
	}

	m.gauges[name] = gauge

	return gauge
}

// Ensure MetricsCollector implements changetracker.MetricsCollector.
var _ changetracker.MetricsCollector = (*MetricsCollector)(nil)
