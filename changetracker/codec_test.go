package changetracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DefaultCanonicalizer_MapKeysAreOrderStable(t *testing.T) {
	canonicalize := DefaultCanonicalizer()

	// Go's map iteration order is randomized; the canonical form must not be.
	for range 10 {
		canonical, err := canonicalize(map[string]int{"b": 2, "a": 1, "c": 3})
		require.NoError(t, err)
		assert.Equal(t, `{"a":1,"b":2,"c":3}`, canonical)
	}
}

func Test_DefaultCanonicalizer_StructValues(t *testing.T) {
	canonicalize := DefaultCanonicalizer()

	canonical, err := canonicalize(sampleAddress{Street: "Main St 1", City: "Springfield"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Street":"Main St 1","City":"Springfield"}`, canonical)
}

func Test_DefaultCanonicalizer_UnsupportedValueShapeFails(t *testing.T) {
	canonicalize := DefaultCanonicalizer()

	_, err := canonicalize(make(chan int))
	assert.Error(t, err)
}

func Test_DefaultEncoder_RenderedMappingIsDeterministic(t *testing.T) {
	encode := DefaultEncoder()

	mapping := map[string]string{"LastName": "Kueter", "FirstName": "Ryan"}

	first, err := encode(mapping)
	require.NoError(t, err)

	for range 10 {
		next, encodeErr := encode(mapping)
		require.NoError(t, encodeErr)
		assert.Equal(t, first, next, "key order in the rendering must be stable across runs")
	}

	assert.Equal(t, `{"FirstName":"Ryan","LastName":"Kueter"}`, first)
}
