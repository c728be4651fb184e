package changetracker

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
)

// Snapshot is an ordered mapping from field name to the field's canonical
// string representation at capture time. The key set is fixed at the
// Trackable's first capture; every later snapshot of the same Trackable uses
// the identical key set.
type Snapshot struct {
	names  []string
	values map[string]string
}

// Names returns the snapshot's field names in capture order.
func (s Snapshot) Names() []string {
	return slices.Clone(s.names)
}

// Value returns the canonical string captured for the named field and whether
// the field is part of the snapshot.
func (s Snapshot) Value(name FieldNameString) (string, bool) {
	value, ok := s.values[name]
	return value, ok
}

// Len returns the number of captured fields.
func (s Snapshot) Len() int {
	return len(s.names)
}

// takeSnapshot captures the canonical string form of every field in specs
// from the struct value. Output order is the order of specs.
func takeSnapshot(structValue reflect.Value, specs []fieldSpec, canonicalize CanonicalizeFunc) (Snapshot, error) {
	snapshot := Snapshot{
		names:  make([]string, 0, len(specs)),
		values: make(map[string]string, len(specs)),
	}

	for _, spec := range specs {
		canonical, err := canonicalFieldValue(structValue.Field(spec.index), spec, canonicalize)
		if err != nil {
			return Snapshot{}, errors.Join(ErrCanonicalizingFieldFailed, err)
		}

		snapshot.names = append(snapshot.names, spec.name)
		snapshot.values[spec.name] = canonical
	}

	return snapshot, nil
}

// canonicalFieldValue reduces one field value to its canonical string. Absent
// values (nil pointers, interfaces, slices, maps) use the empty-string
// sentinel; leaf values use their natural string form; structured values go
// through the serializer.
func canonicalFieldValue(fieldValue reflect.Value, spec fieldSpec, canonicalize CanonicalizeFunc) (string, error) {
	if isAbsent(fieldValue) {
		return "", nil
	}

	if !spec.structured {
		return fmt.Sprint(fieldValue.Interface()), nil
	}

	return canonicalize(fieldValue.Interface())
}

func isAbsent(fieldValue reflect.Value) bool {
	switch fieldValue.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return fieldValue.IsNil()
	default:
		return false
	}
}
