package toon_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/toon/toon"
)

type address struct {
	City string `toon:"city"`
	Zip  string `toon:"zip,omitempty"`
}

type person struct {
	address
	Name    string `json:"name"`
	Age     int    `toon:"age"`
	Hidden  string `toon:"-"`
	private string //nolint:unused
}

func TestNormalizeStructHonorsTagsAndEmbedding(t *testing.T) {
	p := person{
		address: address{City: "Reno"},
		Name:    "Ann",
		Age:     30,
		Hidden:  "should not appear",
	}

	v, err := toon.Normalize(p)
	require.NoError(t, err)

	obj, ok := v.Object()
	require.True(t, ok)

	assert.Equal(t, []string{"city", "name", "age"}, obj.Keys())

	_, hasZip := obj.Get("zip")
	assert.False(t, hasZip, "omitempty field with zero value must be dropped")

	_, hasHidden := obj.Get("Hidden")
	assert.False(t, hasHidden)
}

func TestNormalizeMapSortsKeysDeterministically(t *testing.T) {
	host := map[string]any{"z": 1, "a": 2, "m": 3}

	v, err := toon.Normalize(host)
	require.NoError(t, err)

	obj, _ := v.Object()
	assert.Equal(t, []string{"a", "m", "z"}, obj.Keys())
}

func TestNormalizeLargeIntegerBecomesQuotedString(t *testing.T) {
	const huge = int64(1) << 60

	v, err := toon.Normalize(huge)
	require.NoError(t, err)
	assert.Equal(t, toon.KindString, v.Kind())
}

func TestNormalizeSmallIntegerBecomesNumber(t *testing.T) {
	v, err := toon.Normalize(42)
	require.NoError(t, err)
	assert.Equal(t, toon.KindNumber, v.Kind())
}

func TestNormalizeCycleReturnsErrCycle(t *testing.T) {
	type node struct {
		Next *node
	}

	a := &node{}
	a.Next = a

	_, err := toon.Normalize(a)
	require.ErrorIs(t, err, toon.ErrCycle)
}

func TestNormalizeNaNAndInfiniteBecomeNull(t *testing.T) {
	tcs := map[string]float64{
		"nan":     nanValue(),
		"inf":     infValue(1),
		"neg-inf": infValue(-1),
	}

	for name, f := range tcs {
		t.Run(name, func(t *testing.T) {
			v, err := toon.Normalize(f)
			require.NoError(t, err)
			assert.True(t, v.IsNull())
		})
	}
}

func TestNormalizeTimeUsesRFC3339(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	v, err := toon.Normalize(ts)
	require.NoError(t, err)

	s, ok := v.Str()
	require.True(t, ok)
	assert.Equal(t, "2024-01-02T03:04:05Z", s)
}

func TestNormalizeSetLikeMapBecomesSortedArray(t *testing.T) {
	host := map[string]struct{}{"b": {}, "a": {}, "c": {}}

	v, err := toon.Normalize(host)
	require.NoError(t, err)

	items, ok := v.Items()
	require.True(t, ok)
	require.Len(t, items, 3)

	s0, _ := items[0].Str()
	s1, _ := items[1].Str()
	s2, _ := items[2].Str()
	assert.Equal(t, []string{"a", "b", "c"}, []string{s0, s1, s2})
}

func nanValue() float64 {
	var z float64
	return z / z
}

func infValue(sign float64) float64 {
	var z float64
	return sign / z
}
