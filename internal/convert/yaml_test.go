package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/toon/internal/convert"
)

func TestFromYAMLPreservesMappingOrder(t *testing.T) {
	v, err := convert.FromYAML([]byte("z: 1\na: 2\nm: 3\n"))
	require.NoError(t, err)

	obj, ok := v.Object()
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a", "m"}, obj.Keys())
}

func TestFromYAMLNestedSequencesAndMappings(t *testing.T) {
	src := "users:\n  - id: 1\n    name: Ann\n  - id: 2\n    name: Bo\n"

	v, err := convert.FromYAML([]byte(src))
	require.NoError(t, err)

	obj, ok := v.Object()
	require.True(t, ok)

	users, ok := obj.Get("users")
	require.True(t, ok)

	items, ok := users.Items()
	require.True(t, ok)
	require.Len(t, items, 2)

	first, ok := items[0].Object()
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name"}, first.Keys())
}

func TestFromYAMLEmptyInputIsEmptyObject(t *testing.T) {
	v, err := convert.FromYAML([]byte(""))
	require.NoError(t, err)

	obj, ok := v.Object()
	require.True(t, ok)
	assert.True(t, obj.IsEmpty())
}

func TestFromYAMLScalarRoot(t *testing.T) {
	v, err := convert.FromYAML([]byte("42\n"))
	require.NoError(t, err)

	n, ok := v.Num()
	require.True(t, ok)
	assert.Equal(t, float64(42), n)
}
