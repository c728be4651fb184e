package changetracker

import (
	jsoniter "github.com/json-iterator/go"
)

// CanonicalizeFunc turns a structured field value into its canonical,
// comparable string form. Two values are considered equal exactly when their
// canonical strings are equal, so the function should be order-stable for
// value shapes whose natural encodings are not (e.g. maps); otherwise
// semantically equal values may be falsely reported as changed.
type CanonicalizeFunc func(value any) (string, error)

// EncodeFunc renders a value (a change record's before/after mapping, or a
// single added/removed element) into its exported text form.
type EncodeFunc func(value any) (string, error)

// canonicalJSON sorts map keys so canonical strings and rendered change
// records are deterministic across repeated runs with identical input.
var canonicalJSON = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
}.Froze()

// DefaultCanonicalizer returns the canonicalizer used when none is supplied:
// JSON marshaling with sorted map keys.
func DefaultCanonicalizer() CanonicalizeFunc {
	return func(value any) (string, error) {
		return canonicalJSON.MarshalToString(value)
	}
}

// DefaultEncoder returns the encoder used when none is supplied: JSON
// marshaling with sorted map keys, so key order in the rendered before/after
// text is stable per snapshot.
func DefaultEncoder() EncodeFunc {
	return func(value any) (string, error) {
		return canonicalJSON.MarshalToString(value)
	}
}
