// Package changetracker snapshots the observable state of a struct value at
// the moment tracking starts, re-snapshots it on demand, and reports which
// named fields changed as a before/after change record suitable for audit
// logging.
//
// Two levels of tracking are provided:
//   - Trackable: tracks a single value against an immutable baseline snapshot
//   - TrackedCollection: tracks every element of a sequence and additionally
//     detects membership changes (items added or removed)
//
// Fields are classified once per type: built-in scalars and time.Time are
// compared by their natural string form, everything else (structs, pointers,
// slices, maps) is reduced to a canonical string by a pluggable serializer
// before comparison.
//
// Common usage pattern:
//
//	contact := &Contact{ID: 1, LastName: "Kueter"}
//	trackable, err := changetracker.Track(contact)
//	if err != nil {
//		// handle error
//	}
//
//	contact.LastName = "Silly"
//
//	changed, err := trackable.HasChanges()
//	if err != nil {
//		// handle error
//	}
//	if changed {
//		auditLog.Write(trackable.BeforeJSON(), trackable.AfterJSON())
//	}
//
// The tracked value is referenced, never copied or mutated. Mutating it
// concurrently with its own diff is a caller obligation to avoid; diffing
// distinct Trackables concurrently is safe since each owns its snapshots.
package changetracker
