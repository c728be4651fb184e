package changetracker

import (
	"errors"
)

var ErrNilValueSupplied = errors.New("nil value supplied for tracking")
var ErrNotAStructType = errors.New("tracked value must be a struct")
var ErrNilSequenceSupplied = errors.New("nil sequence supplied for tracking")

// ErrCanonicalizingFieldFailed is returned when the serializer fails to turn a
// structured field value into its canonical string form.
var ErrCanonicalizingFieldFailed = errors.New("canonicalizing field value failed")

// ErrEncodingChangeRecordFailed is returned when rendering a change record's
// before/after mapping to text fails.
var ErrEncodingChangeRecordFailed = errors.New("encoding change record failed")

// ErrEncodingItemFailed is returned when rendering an added/removed element to
// text fails.
var ErrEncodingItemFailed = errors.New("encoding item failed")

var ErrNilCanonicalizerSupplied = errors.New("nil canonicalizer supplied")
var ErrNilEncoderSupplied = errors.New("nil encoder supplied")

// FieldNameString is a type alias for string, representing the name of a
// tracked struct field.
type FieldNameString = string
