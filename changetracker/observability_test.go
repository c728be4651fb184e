package changetracker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedMetric struct {
	name   string
	labels map[string]string
	value  float64
}

// capturingCollector records every metrics call for inspection. It locks
// around its slices because collection diffs record from multiple goroutines.
type capturingCollector struct {
	mu        sync.Mutex
	durations []recordedMetric
	counters  []recordedMetric
	values    []recordedMetric
}

func (c *capturingCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.durations = append(c.durations, recordedMetric{name: metric, labels: labels, value: duration.Seconds()})
}

func (c *capturingCollector) IncrementCounter(metric string, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters = append(c.counters, recordedMetric{name: metric, labels: labels, value: 1})
}

func (c *capturingCollector) RecordValue(metric string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = append(c.values, recordedMetric{name: metric, labels: labels, value: value})
}

func (c *capturingCollector) durationsWith(operation string, status string) []recordedMetric {
	c.mu.Lock()
	defer c.mu.Unlock()

	matching := make([]recordedMetric, 0, len(c.durations))
	for _, recorded := range c.durations {
		if recorded.name == metricDiffDuration &&
			recorded.labels[labelOperation] == operation &&
			recorded.labels[labelStatus] == status {
			matching = append(matching, recorded)
		}
	}

	return matching
}

func Test_HasChanges_EncoderFailureRecordsErrorDuration(t *testing.T) {
	collector := &capturingCollector{}

	tracked := &contact{ID: 1, LastName: "Kueter"}
	trackable, err := Track(tracked,
		WithMetrics(collector),
		WithEncoder(func(any) (string, error) { return "", errors.New("render failed") }))
	require.NoError(t, err)

	tracked.LastName = "Silly"

	_, err = trackable.HasChanges()
	require.ErrorIs(t, err, ErrEncodingChangeRecordFailed)

	assert.Len(t, collector.durationsWith(operationDiff, statusError), 1,
		"a failed diff must still leave a duration sample")
	assert.Empty(t, collector.durationsWith(operationDiff, statusSuccess))
}

func Test_HasChanges_SerializerFailureRecordsErrorDuration(t *testing.T) {
	collector := &capturingCollector{}

	calls := 0
	canonicalize := func(value any) (string, error) {
		calls++
		if calls > 1 { // succeed for the baseline capture, fail afterward
			return "", errors.New("cyclic structure")
		}
		return "baseline", nil
	}

	tracked := &order{ID: 1, Shipping: sampleAddress{City: "Springfield"}}
	trackable, err := Track(tracked, WithMetrics(collector), WithCanonicalizer(canonicalize))
	require.NoError(t, err)

	_, err = trackable.HasChanges()
	require.ErrorIs(t, err, ErrCanonicalizingFieldFailed)

	assert.Len(t, collector.durationsWith(operationDiff, statusError), 1)
}

func Test_TrackedCollection_FailedElementDiffRecordsErrorDuration(t *testing.T) {
	collector := &capturingCollector{}

	calls := 0
	canonicalize := func(value any) (string, error) {
		calls++
		if calls > 1 {
			return "", errors.New("cyclic structure")
		}
		return "baseline", nil
	}

	orders := []*order{{ID: 1}}
	collection, err := TrackAll(&orders, nil, WithMetrics(collector), WithCanonicalizer(canonicalize))
	require.NoError(t, err)

	_, err = collection.HasChanges()
	require.ErrorIs(t, err, ErrCanonicalizingFieldFailed)

	assert.Len(t, collector.durationsWith(operationCollectionDiff, statusError), 1,
		"a failed collection diff must still leave a duration sample")
}

func Test_TrackedCollection_ConcurrentDiffsShareOneCollector(t *testing.T) {
	collector := &capturingCollector{}

	contacts := make([]*contact, 0, 256)
	for i := range 256 {
		contacts = append(contacts, &contact{ID: i, LastName: "Kueter"})
	}

	collection, err := TrackAll(&contacts, contactsByID, WithMetrics(collector))
	require.NoError(t, err)

	for _, tracked := range contacts {
		tracked.LastName = "Silly"
	}

	changed, err := collection.HasChanges()
	require.NoError(t, err)
	assert.True(t, changed)

	// Every element diff records through the shared collector from its own
	// goroutine, plus one sample for the collection diff itself.
	assert.Len(t, collector.durationsWith(operationDiff, statusSuccess), 256)
	assert.Len(t, collector.durationsWith(operationCollectionDiff, statusSuccess), 1)
}
