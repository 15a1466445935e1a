package pathvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvindex/docdb/encoding"
	"github.com/kvindex/docdb/tagged"
)

func pathString(t *testing.T, p encoding.Path) string {
	t.Helper()
	return string(encoding.EncodePath(p))
}

func TestFlattenBareScalarYieldsEmptyPathLeaf(t *testing.T) {
	leaves, err := Flatten(float64(42))
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.Empty(t, leaves[0].Path)
	assert.Equal(t, 42.0, leaves[0].Value.Float64())
}

func TestFlattenFlatObject(t *testing.T) {
	doc := map[string]any{
		"name": "alice",
		"age":  float64(30),
	}
	leaves, err := Flatten(doc)
	require.NoError(t, err)
	require.Len(t, leaves, 2)

	byPath := map[string]tagged.Value{}
	for _, l := range leaves {
		byPath[pathString(t, l.Path)] = l.Value
	}

	namePath, err := encoding.PathOf("name")
	require.NoError(t, err)
	agePath, err := encoding.PathOf("age")
	require.NoError(t, err)

	nameVal, ok := byPath[pathString(t, namePath)]
	require.True(t, ok)
	assert.Equal(t, "alice", nameVal.Str())

	ageVal, ok := byPath[pathString(t, agePath)]
	require.True(t, ok)
	assert.Equal(t, 30.0, ageVal.Float64())
}

func TestFlattenNestedObjectsAndArrays(t *testing.T) {
	doc := map[string]any{
		"arrs": []any{
			map[string]any{
				"animals": []any{"cat", "dog"},
			},
		},
	}
	leaves, err := Flatten(doc)
	require.NoError(t, err)
	require.Len(t, leaves, 2)

	p0, err := encoding.PathOf("arrs", 0, "animals", 0)
	require.NoError(t, err)
	p1, err := encoding.PathOf("arrs", 0, "animals", 1)
	require.NoError(t, err)

	byPath := map[string]string{}
	for _, l := range leaves {
		byPath[pathString(t, l.Path)] = l.Value.Str()
	}
	assert.Equal(t, "cat", byPath[pathString(t, p0)])
	assert.Equal(t, "dog", byPath[pathString(t, p1)])
}

func TestFlattenIndependentPathSlicesAcrossSiblings(t *testing.T) {
	doc := map[string]any{
		"items": []any{
			map[string]any{"x": float64(1)},
			map[string]any{"x": float64(2)},
		},
	}
	leaves, err := Flatten(doc)
	require.NoError(t, err)
	require.Len(t, leaves, 2)

	// mutating one leaf's path must never change another leaf's path
	original := append(encoding.Path{}, leaves[0].Path...)
	leaves[0].Path[len(leaves[0].Path)-1] = tagged.MustString("clobbered")
	assert.NotEqual(t, original, leaves[0].Path)
	assert.NotEqual(t, leaves[0].Path, leaves[1].Path)
}

func TestFlattenNullLeaf(t *testing.T) {
	doc := map[string]any{"maybe": nil}
	leaves, err := Flatten(doc)
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.Equal(t, tagged.KindNull, leaves[0].Value.Kind())
}

func TestFlattenRejectsUnsupportedLeafType(t *testing.T) {
	doc := map[string]any{"bad": struct{}{}}
	_, err := Flatten(doc)
	assert.Error(t, err)
}

func TestFlattenEmptyObjectAndArrayYieldNoLeaves(t *testing.T) {
	leaves, err := Flatten(map[string]any{"empty_obj": map[string]any{}, "empty_arr": []any{}})
	require.NoError(t, err)
	assert.Len(t, leaves, 0)
}
