package oteladapters_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/statetrack/change-tracker-go/changetracker"
	"github.com/statetrack/change-tracker-go/changetracker/oteladapters"
)

func Test_NewMetricsCollector_Construction(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	collector := oteladapters.NewMetricsCollector(provider.Meter("test"))

	assert.NotNil(t, collector, "NewMetricsCollector should return non-nil collector")
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	collector := oteladapters.NewMetricsCollector(provider.Meter("test"))

	labels := map[string]string{
		"operation": "diff",
		"status":    "success",
	}
	collector.RecordDuration("changetracker_diff_duration_seconds", 150*time.Millisecond, labels)

	var resourceMetrics metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &resourceMetrics)
	require.NoError(t, err, "Failed to collect metrics")

	histogram := findHistogramMetric(t, resourceMetrics, "changetracker_diff_duration_seconds")
	require.Len(t, histogram.DataPoints, 1, "Expected exactly one data point")

	dataPoint := histogram.DataPoints[0]
	assert.Equal(t, uint64(1), dataPoint.Count, "Histogram count should be 1")
	assert.InDelta(t, 0.15, dataPoint.Sum, 0.001, "Histogram sum should be 0.15 seconds")
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	collector := oteladapters.NewMetricsCollector(provider.Meter("test"))

	labels := map[string]string{"operation": "diff"}
	collector.IncrementCounter("changetracker_serialization_errors", labels)
	collector.IncrementCounter("changetracker_serialization_errors", labels)

	var resourceMetrics metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &resourceMetrics)
	require.NoError(t, err, "Failed to collect metrics")

	counter := findCounterMetric(t, resourceMetrics, "changetracker_serialization_errors")
	require.Len(t, counter.DataPoints, 1, "Expected exactly one data point")
	assert.Equal(t, int64(2), counter.DataPoints[0].Value, "Counter should have been incremented twice")
}

func Test_MetricsCollector_RecordValue(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	collector := oteladapters.NewMetricsCollector(provider.Meter("test"))

	collector.RecordValue("changetracker_changed_fields", 3, map[string]string{"operation": "diff"})

	var resourceMetrics metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &resourceMetrics)
	require.NoError(t, err, "Failed to collect metrics")

	gauge := findGaugeMetric(t, resourceMetrics, "changetracker_changed_fields")
	require.Len(t, gauge.DataPoints, 1, "Expected exactly one data point")
	assert.Equal(t, 3.0, gauge.DataPoints[0].Value, "Gauge should hold the recorded value")
}

func Test_MetricsCollector_ConcurrentRecording(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	collector := oteladapters.NewMetricsCollector(provider.Meter("test"))

	// All goroutines hit the same fresh metric names so instrument creation
	// itself runs concurrently.
	var wg sync.WaitGroup
	for range 64 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			labels := map[string]string{"operation": "diff", "status": "success"}
			collector.RecordDuration("changetracker_diff_duration_seconds", time.Millisecond, labels)
			collector.IncrementCounter("changetracker_serialization_errors", labels)
			collector.RecordValue("changetracker_changed_fields", 1, labels)
		}()
	}
	wg.Wait()

	var resourceMetrics metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &resourceMetrics)
	require.NoError(t, err, "Failed to collect metrics")

	histogram := findHistogramMetric(t, resourceMetrics, "changetracker_diff_duration_seconds")
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, uint64(64), histogram.DataPoints[0].Count)

	counter := findCounterMetric(t, resourceMetrics, "changetracker_serialization_errors")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(64), counter.DataPoints[0].Value)
}

func Test_MetricsCollector_SharedByConcurrentElementDiffs(t *testing.T) {
	type account struct {
		ID      int
		Balance float64
	}

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	collector := oteladapters.NewMetricsCollector(provider.Meter("test"))

	accounts := make([]*account, 0, 256)
	for i := range 256 {
		accounts = append(accounts, &account{ID: i})
	}

	collection, err := changetracker.TrackAll(&accounts, nil, changetracker.WithMetrics(collector))
	require.NoError(t, err)

	for _, tracked := range accounts {
		tracked.Balance = 99.5
	}

	// Every element diff records through this one collector from its own
	// goroutine; the first collection diff also creates the instruments.
	changed, err := collection.HasChanges()
	require.NoError(t, err)
	assert.True(t, changed)

	var resourceMetrics metricdata.ResourceMetrics
	err = reader.Collect(context.Background(), &resourceMetrics)
	require.NoError(t, err, "Failed to collect metrics")

	histogram := findHistogramMetric(t, resourceMetrics, "changetracker_diff_duration_seconds")
	var total uint64
	for _, dataPoint := range histogram.DataPoints {
		total += dataPoint.Count
	}
	assert.Equal(t, uint64(257), total, "256 element diffs plus the collection diff")
}

func findHistogramMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Histogram[float64] {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				histogram, ok := m.Data.(metricdata.Histogram[float64])
				require.True(t, ok, "metric %s should be a float64 histogram", name)
				return histogram
			}
		}
	}

	t.Fatalf("metric %s not found", name)
	return metricdata.Histogram[float64]{}
}

func findCounterMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok, "metric %s should be an int64 sum", name)
				return sum
			}
		}
	}

	t.Fatalf("metric %s not found", name)
	return metricdata.Sum[int64]{}
}

func findGaugeMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Gauge[float64] {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				gauge, ok := m.Data.(metricdata.Gauge[float64])
				require.True(t, ok, "metric %s should be a float64 gauge", name)
				return gauge
			}
		}
	}

	t.Fatalf("metric %s not found", name)
	return metricdata.Gauge[float64]{}
}
