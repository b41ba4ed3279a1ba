package toon_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/toon/toon"
)

func TestObjectSetPreservesInsertionOrder(t *testing.T) {
	obj := toon.NewObject()
	obj.Set("z", toon.Number(1))
	obj.Set("a", toon.Number(2))
	obj.Set("m", toon.Number(3))

	assert.Equal(t, []string{"z", "a", "m"}, obj.Keys())

	// Updating an existing key must not move it.
	obj.Set("a", toon.Number(99))
	assert.Equal(t, []string{"z", "a", "m"}, obj.Keys())

	v, ok := obj.Get("a")
	require.True(t, ok)
	n, _ := v.Num()
	assert.Equal(t, float64(99), n)
}

func TestObjectTrySetQuotedRejectsDuplicates(t *testing.T) {
	obj := toon.NewObject()
	assert.True(t, obj.TrySetQuoted("k", false, toon.Number(1)))
	assert.False(t, obj.TrySetQuoted("k", false, toon.Number(2)))

	v, _ := obj.Get("k")
	n, _ := v.Num()
	assert.Equal(t, float64(1), n, "rejected duplicate must not overwrite")
}

func TestValueEqual(t *testing.T) {
	tcs := map[string]struct {
		a, b toon.Value
		want bool
	}{
		"equal numbers": {toon.Number(1), toon.Number(1), true},
		"different kinds": {toon.Number(1), toon.String("1"), false},
		"equal arrays":  {toon.Array([]toon.Value{toon.Number(1)}), toon.Array([]toon.Value{toon.Number(1)}), true},
		"array order matters": {
			toon.Array([]toon.Value{toon.Number(1), toon.Number(2)}),
			toon.Array([]toon.Value{toon.Number(2), toon.Number(1)}),
			false,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Equal(tc.b))
		})
	}

	objA := toon.NewObject()
	objA.Set("x", toon.Number(1))
	objA.Set("y", toon.Number(2))

	objB := toon.NewObject()
	objB.Set("y", toon.Number(2))
	objB.Set("x", toon.Number(1))

	assert.False(t, toon.Obj(objA).Equal(toon.Obj(objB)), "key order must participate in equality")
}

func TestValueMarshalJSONPreservesOrder(t *testing.T) {
	obj := toon.NewObject()
	obj.Set("z", toon.Number(1))
	obj.Set("a", toon.String("hi"))
	obj.Set("nested", toon.Obj(func() *toon.Object {
		n := toon.NewObject()
		n.Set("q", toon.Bool(true))
		n.Set("p", toon.Null())
		return n
	}()))

	b, err := json.Marshal(toon.Obj(obj))
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"hi","nested":{"q":true,"p":null}}`, string(b))
}

func TestValueMarshalJSONArray(t *testing.T) {
	v := toon.Array([]toon.Value{toon.Number(1), toon.String("two"), toon.Null()})
	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `[1,"two",null]`, string(b))
}
