package changetracker

import (
	"github.com/google/uuid"
)

// ChangeRecord holds the fields whose canonical string differed between the
// baseline snapshot and the latest snapshot, keyed by field name. Before
// carries the baseline values, After the latest ones; a field appears in both
// or in neither.
type ChangeRecord struct {
	Before map[string]string
	After  map[string]string
}

func newChangeRecord() ChangeRecord {
	return ChangeRecord{
		Before: make(map[string]string),
		After:  make(map[string]string),
	}
}

// IsEmpty reports whether no field differed.
func (r ChangeRecord) IsEmpty() bool {
	return len(r.Before) == 0
}

// diffSnapshots compares the latest snapshot against the baseline, field name
// by field name. The key sets are aligned by construction, so a direct lookup
// per baseline key suffices.
func diffSnapshots(baseline Snapshot, latest Snapshot) ChangeRecord {
	record := newChangeRecord()

	for _, name := range baseline.names {
		beforeValue := baseline.values[name]
		afterValue := latest.values[name]

		if beforeValue != afterValue {
			record.Before[name] = beforeValue
			record.After[name] = afterValue
		}
	}

	return record
}

// ElementChange reports one changed element of a TrackedCollection: the
// element reference for correlation by the caller, the element's tracking ID,
// and the rendered before/after text of its change record.
type ElementChange[T any] struct {
	Value      *T
	TrackingID uuid.UUID
	BeforeJSON string
	AfterJSON  string
}
