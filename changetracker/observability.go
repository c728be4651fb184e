package changetracker

import (
	"math"
	"time"
)

// Logger interface for diff logging, warnings, and error reporting.
// Args are slog-style alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsCollector interface for collecting tracking performance and
// operational metrics. This interface is dependency-free, allowing users to
// integrate with any metrics backend (OpenTelemetry, Prometheus, ...) by
// implementing it or by using one of the supplied adapter packages.
//
// Implementations must be safe for concurrent use: a TrackedCollection diffs
// its elements concurrently and every element diff records metrics through
// the collection's shared collector.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

const (
	metricDiffDuration       = "changetracker_diff_duration_seconds"
	metricChangedFields      = "changetracker_changed_fields"
	metricSerializationError = "changetracker_serialization_errors"

	labelOperation = "operation"
	labelStatus    = "status"

	operationDiff           = "diff"
	operationCollectionDiff = "collection_diff"

	statusSuccess = "success"
	statusError   = "error"

	logMsgDiffCompleted           = "diff completed"
	logMsgDiffFailed              = "diff failed"
	logMsgCollectionDiffCompleted = "collection diff completed"
	logMsgCollectionDiffFailed    = "collection diff failed"

	logAttrTrackingID    = "tracking_id"
	logAttrChangedFields = "changed_fields"
	logAttrChangedItems  = "changed_items"
	logAttrItemsAdded    = "items_added"
	logAttrItemsRemoved  = "items_removed"
	logAttrDurationMS    = "duration_ms"
	logAttrError         = "error"
)

// observability bundles the optional logger and metrics collector shared by
// Trackable and TrackedCollection. All helpers no-op when unconfigured.
type observability struct {
	logger           Logger
	metricsCollector MetricsCollector
}

// logDebug logs diff details at debug level if the logger is configured.
func (o observability) logDebug(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Debug(msg, args...)
	}
}

// logError logs error information at the error level if the logger is configured.
func (o observability) logError(msg string, err error, args ...any) {
	if o.logger != nil {
		allArgs := []any{logAttrError, err.Error()}
		allArgs = append(allArgs, args...)
		o.logger.Error(msg, allArgs...)
	}
}

// recordDiffDuration records a diff duration metric if the metrics collector
// is configured.
func (o observability) recordDiffDuration(operation string, duration time.Duration, status string) {
	if o.metricsCollector != nil {
		o.metricsCollector.RecordDuration(metricDiffDuration, duration, map[string]string{
			labelOperation: operation,
			labelStatus:    status,
		})
	}
}

// recordChangedFields records how many fields differed if the metrics
// collector is configured.
func (o observability) recordChangedFields(operation string, count int) {
	if o.metricsCollector != nil {
		o.metricsCollector.RecordValue(metricChangedFields, float64(count), map[string]string{
			labelOperation: operation,
		})
	}
}

// recordSerializationError counts serializer/encoder failures if the metrics
// collector is configured.
func (o observability) recordSerializationError(operation string) {
	if o.metricsCollector != nil {
		o.metricsCollector.IncrementCounter(metricSerializationError, map[string]string{
			labelOperation: operation,
			labelStatus:    statusError,
		})
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (o observability) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
