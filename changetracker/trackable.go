package changetracker

import (
	"errors"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Trackable tracks a single struct value against an immutable baseline
// snapshot taken at construction. The tracked value is referenced, never
// owned: the caller mutates it freely and asks for a diff on demand.
//
// Every diff compares the current state against the original baseline, never
// against the previous diff's state, so calling HasChanges repeatedly with no
// intervening mutation yields false every time.
type Trackable[T any] struct {
	trackingID uuid.UUID
	value      *T
	fields     []fieldSpec
	baseline   Snapshot
	record     ChangeRecord
	beforeJSON string
	afterJSON  string
	cfg        config
}

// Track starts tracking value. The baseline snapshot is captured
// synchronously, so a failing serializer surfaces here already.
func Track[T any](value *T, opts ...Option) (*Trackable[T], error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return newTrackable(value, cfg)
}

func newTrackable[T any](value *T, cfg config) (*Trackable[T], error) {
	if value == nil {
		return nil, ErrNilValueSupplied
	}

	structValue := reflect.ValueOf(value).Elem()
	if structValue.Kind() != reflect.Struct {
		return nil, ErrNotAStructType
	}

	fields := selectFields(classifiedFields(structValue.Type()), cfg.fields)

	baseline, err := takeSnapshot(structValue, fields, cfg.canonicalize)
	if err != nil {
		return nil, err
	}

	return &Trackable[T]{
		trackingID: uuid.New(),
		value:      value,
		fields:     fields,
		baseline:   baseline,
		record:     newChangeRecord(),
		cfg:        cfg,
	}, nil
}

// HasChanges takes a fresh snapshot of the tracked value and diffs it against
// the baseline. It returns true iff at least one field's canonical string
// differs; the change record and its rendered before/after text are then
// available via Changes, BeforeJSON and AfterJSON.
//
// The result depends only on the baseline and the value's current state,
// never on prior calls. A serializer or encoder failure surfaces uncaught;
// the change record is left cleared in that case.
func (t *Trackable[T]) HasChanges() (bool, error) {
	started := time.Now()

	t.record = newChangeRecord()
	t.beforeJSON = ""
	t.afterJSON = ""

	latest, err := takeSnapshot(reflect.ValueOf(t.value).Elem(), t.fields, t.cfg.canonicalize)
	if err != nil {
		t.cfg.recordDiffDuration(operationDiff, time.Since(started), statusError)
		t.cfg.recordSerializationError(operationDiff)
		t.cfg.logError(logMsgDiffFailed, err, logAttrTrackingID, t.trackingID.String())

		return false, err
	}

	record := diffSnapshots(t.baseline, latest)
	if record.IsEmpty() {
		t.cfg.recordDiffDuration(operationDiff, time.Since(started), statusSuccess)

		return false, nil
	}

	beforeJSON, err := t.encodeMapping(record.Before)
	if err != nil {
		t.cfg.recordDiffDuration(operationDiff, time.Since(started), statusError)
		return false, err
	}

	afterJSON, err := t.encodeMapping(record.After)
	if err != nil {
		t.cfg.recordDiffDuration(operationDiff, time.Since(started), statusError)
		return false, err
	}

	t.record = record
	t.beforeJSON = beforeJSON
	t.afterJSON = afterJSON

	duration := time.Since(started)
	t.cfg.recordDiffDuration(operationDiff, duration, statusSuccess)
	t.cfg.recordChangedFields(operationDiff, len(record.Before))
	t.cfg.logDebug(logMsgDiffCompleted,
		logAttrTrackingID, t.trackingID.String(),
		logAttrChangedFields, len(record.Before),
		logAttrDurationMS, t.cfg.toMilliseconds(duration))

	return true, nil
}

func (t *Trackable[T]) encodeMapping(mapping map[string]string) (string, error) {
	encoded, err := t.cfg.encode(mapping)
	if err != nil {
		joinedErr := errors.Join(ErrEncodingChangeRecordFailed, err)
		t.cfg.recordSerializationError(operationDiff)
		t.cfg.logError(logMsgDiffFailed, joinedErr, logAttrTrackingID, t.trackingID.String())

		return "", joinedErr
	}

	return encoded, nil
}

// TrackingID returns the identifier assigned to this Trackable at
// construction, for correlating audit records and log lines.
func (t *Trackable[T]) TrackingID() uuid.UUID {
	return t.trackingID
}

// Value returns the tracked value reference.
func (t *Trackable[T]) Value() *T {
	return t.value
}

// FieldNames returns the tracked field names in classification order. The set
// is fixed for the lifetime of the Trackable.
func (t *Trackable[T]) FieldNames() []FieldNameString {
	names := make([]FieldNameString, 0, len(t.fields))
	for _, spec := range t.fields {
		names = append(names, spec.name)
	}

	return names
}

// Baseline returns the snapshot taken at construction. It is never
// overwritten by later diffs.
func (t *Trackable[T]) Baseline() Snapshot {
	return t.baseline
}

// Changes returns the change record computed by the most recent HasChanges
// call. It is empty before the first call and after any call that found no
// changes.
func (t *Trackable[T]) Changes() ChangeRecord {
	return t.record
}

// BeforeJSON returns the rendered text of the baseline side of the most
// recent change record, or the empty string when nothing changed.
func (t *Trackable[T]) BeforeJSON() string {
	return t.beforeJSON
}

// AfterJSON returns the rendered text of the current side of the most recent
// change record, or the empty string when nothing changed.
func (t *Trackable[T]) AfterJSON() string {
	return t.afterJSON
}
