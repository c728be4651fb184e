package changetracker

import (
	"reflect"
	"slices"
	"sync"
	"time"
)

// fieldSpec describes one tracked struct field: its name, its index within
// the struct, and whether its values must be canonicalized through the
// serializer before comparison.
type fieldSpec struct {
	name       string
	index      int
	structured bool
}

// fieldSpecCache holds the classified field list per struct type. The list is
// built once per type and is stable for the process lifetime.
var fieldSpecCache sync.Map // reflect.Type -> []fieldSpec

var timeType = reflect.TypeOf(time.Time{})

// classifiedFields returns the ordered field descriptor list for a struct
// type, building and caching it on first use. Unexported fields are not
// trackable and are skipped.
func classifiedFields(structType reflect.Type) []fieldSpec {
	if cached, ok := fieldSpecCache.Load(structType); ok {
		return cached.([]fieldSpec)
	}

	numField := structType.NumField()
	specs := make([]fieldSpec, 0, numField)

	for i := 0; i < numField; i++ {
		field := structType.Field(i)
		if !field.IsExported() {
			continue
		}

		specs = append(specs, fieldSpec{
			name:       field.Name,
			index:      i,
			structured: isStructuredType(field.Type),
		})
	}

	specs = slices.Clip(specs)
	fieldSpecCache.Store(structType, specs)

	return specs
}

// isStructuredType reports whether values of this type must be reduced to a
// canonical string by the serializer before comparison. The classification is
// a closed decision over reflect.Kind: built-in scalars and time.Time are
// leaves, everything else (structs, pointers, collections, interfaces) is
// structured.
func isStructuredType(fieldType reflect.Type) bool {
	if fieldType == timeType {
		return false
	}

	switch fieldType.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return false
	default:
		return true
	}
}

// selectFields applies the inclusion filter to the classified field list.
// An empty filter selects every field. Unknown names never match a classified
// field and duplicate names have no effect beyond the first occurrence; the
// struct's declaration order is preserved.
func selectFields(specs []fieldSpec, filter []FieldNameString) []fieldSpec {
	if len(filter) == 0 {
		return specs
	}

	wanted := make(map[string]struct{}, len(filter))
	for _, name := range filter {
		wanted[name] = struct{}{}
	}

	selected := make([]fieldSpec, 0, len(specs))
	for _, spec := range specs {
		if _, ok := wanted[spec.name]; ok {
			selected = append(selected, spec)
		}
	}

	return slices.Clip(selected)
}
