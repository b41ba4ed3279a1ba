package toon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/toon/stringtest"
	"go.jacobcolvin.com/toon/toon"
)

// TestScenarioA_TabularWithTabDelimiter mirrors the worked example of a
// tabular array of objects rendered with the tab delimiter.
func TestScenarioA_TabularWithTabDelimiter(t *testing.T) {
	host := map[string]any{
		"users": []any{
			map[string]any{"id": 1, "name": "Ann"},
			map[string]any{"id": 2, "name": "Bo"},
		},
	}

	got, err := toon.Encode(host, toon.WithDelimiter(toon.DelimTab))
	require.NoError(t, err)
	assert.Equal(t, stringtest.JoinLF(
		"users[2\t]{id\tname}:",
		"  1\tAnn",
		"  2\tBo",
	), got)

	back, err := toon.Decode(got)
	require.NoError(t, err)

	normalized, err := toon.Normalize(host)
	require.NoError(t, err)
	assert.True(t, normalized.Equal(back))
}

// TestScenarioB_KeyFoldingCollapsesToDottedLeaf mirrors the worked example of
// a chain of single-key objects collapsing to one dotted-key array field,
// round-tripping through WithExpandPaths.
func TestScenarioB_KeyFoldingCollapsesToDottedLeaf(t *testing.T) {
	host := map[string]any{
		"a": map[string]any{
			"b": map[string]any{
				"c": map[string]any{
					"items": []any{1, 2, 3},
				},
			},
		},
	}

	got, err := toon.Encode(host, toon.WithKeyFolding(toon.KeyFoldingSafe))
	require.NoError(t, err)
	assert.Equal(t, "a.b.c.items[3]: 1,2,3", got)

	back, err := toon.Decode(got, toon.WithExpandPaths(toon.ExpandPathsSafe))
	require.NoError(t, err)

	normalized, err := toon.Normalize(host)
	require.NoError(t, err)
	assert.True(t, normalized.Equal(back))
}

// TestScenarioC_MixedListItemsFallBackToNestedForm mirrors an array whose
// objects do not share a uniform key set, which must fall back to list form
// instead of tabular form.
func TestScenarioC_MixedListItemsFallBackToNestedForm(t *testing.T) {
	host := map[string]any{
		"items": []any{
			map[string]any{"a": 1, "b": 2},
			map[string]any{"a": 3},
		},
	}

	got, err := toon.Encode(host)
	require.NoError(t, err)
	assert.Equal(t, stringtest.JoinLF(
		"items[2]:",
		"  - a: 1",
		"    b: 2",
		"  - a: 3",
	), got)

	back, err := toon.Decode(got)
	require.NoError(t, err)

	normalized, err := toon.Normalize(host)
	require.NoError(t, err)
	assert.True(t, normalized.Equal(back))
}

// TestScenarioD_StrictModeLengthMismatchIsStructureError mirrors a declared
// array length that disagrees with the number of inline elements present.
func TestScenarioD_StrictModeLengthMismatchIsStructureError(t *testing.T) {
	_, err := toon.Decode("items[3]: 1,2")
	require.Error(t, err)

	var de *toon.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, toon.KindDeclaredLengthMismatch, de.Kind)
	assert.ErrorIs(t, err, toon.ErrStructure)
}

// TestScenarioD_NonStrictModeTruncatesInstead shows the same mismatch
// recovering under WithStrict(false) instead of failing.
func TestScenarioD_NonStrictModeTruncatesInstead(t *testing.T) {
	v, err := toon.Decode("items[3]: 1,2", toon.WithStrict(false))
	require.NoError(t, err)

	obj, _ := v.Object()
	items, _ := obj.Get("items")
	elems, _ := items.Items()
	assert.Len(t, elems, 2)
}

// TestScenarioE_QuotedStringRoundTrips mirrors a string value that itself
// contains the active delimiter and a colon, requiring quoting to stay
// unambiguous.
func TestScenarioE_QuotedStringRoundTrips(t *testing.T) {
	host := map[string]any{"k": "a,b: c"}

	got, err := toon.Encode(host)
	require.NoError(t, err)
	assert.Equal(t, `k: "a,b: c"`, got)

	back, err := toon.Decode(got)
	require.NoError(t, err)

	normalized, err := toon.Normalize(host)
	require.NoError(t, err)
	assert.True(t, normalized.Equal(back))
}

// TestScenarioF_NumericLookingStringStaysQuoted mirrors a string that looks
// like it could be misparsed as numeric (leading '+' followed by digits),
// which must stay quoted and decode back as a string, not a number.
func TestScenarioF_NumericLookingStringStaysQuoted(t *testing.T) {
	host := map[string]any{"phone": "+8613334445577"}

	got, err := toon.Encode(host)
	require.NoError(t, err)
	assert.Equal(t, `phone: "+8613334445577"`, got)

	back, err := toon.Decode(got)
	require.NoError(t, err)

	obj, _ := back.Object()
	v, ok := obj.Get("phone")
	require.True(t, ok)
	assert.Equal(t, toon.KindString, v.Kind())

	s, _ := v.Str()
	assert.Equal(t, "+8613334445577", s)
}

// TestPropertyRootEmptyObjectEncodesToEmptyString covers the root-level
// empty-object special case.
func TestPropertyRootEmptyObjectEncodesToEmptyString(t *testing.T) {
	got, err := toon.Encode(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

// TestPropertyRootEmptyArrayDeclaresZeroLength covers the root-level empty
// array, which is not subject to the same special-cased blank output.
func TestPropertyRootEmptyArrayDeclaresZeroLength(t *testing.T) {
	got, err := toon.Encode([]any{})
	require.NoError(t, err)
	assert.Equal(t, "[0]:", got)
}

// TestPropertyDeclaredLengthZeroRejectsStrayContent covers strict-mode
// rejection of inline content trailing a declared-zero array.
func TestPropertyDeclaredLengthZeroRejectsStrayContent(t *testing.T) {
	_, err := toon.Decode("items[0]: 1")
	require.Error(t, err)
	assert.ErrorIs(t, err, toon.ErrStructure)
}

// TestPropertyEncodeDecodeRoundTripsArbitraryNesting exercises a document
// combining tabular arrays, nested objects, and list-form arrays in one
// structure, verifying the decoder recovers an equal normalized value.
func TestPropertyEncodeDecodeRoundTripsArbitraryNesting(t *testing.T) {
	host := map[string]any{
		"meta": map[string]any{
			"version": 2,
			"tags":    []any{"x", "y"},
		},
		"rows": []any{
			map[string]any{"id": 1, "ok": true},
			map[string]any{"id": 2, "ok": false},
		},
		"mixed": []any{
			1,
			map[string]any{"nested": true},
			[]any{"a", "b"},
		},
	}

	text, err := toon.Encode(host)
	require.NoError(t, err)

	back, err := toon.Decode(text)
	require.NoError(t, err)

	normalized, err := toon.Normalize(host)
	require.NoError(t, err)
	assert.True(t, normalized.Equal(back), "round trip mismatch:\n%s", text)
}

// TestPropertyQuoteStringsForcesQuotingEvenWhenSafe covers WithQuoteStrings.
func TestPropertyQuoteStringsForcesQuotingEvenWhenSafe(t *testing.T) {
	got, err := toon.Encode(map[string]any{"k": "hello"}, toon.WithQuoteStrings(true))
	require.NoError(t, err)
	assert.Equal(t, `k: "hello"`, got)
}

// TestPropertyReplacerCanOmitOrTransformFields covers WithReplacer.
func TestPropertyReplacerCanOmitOrTransformFields(t *testing.T) {
	host := map[string]any{"a": 1, "secret": "hide-me", "b": 2}

	replacer := func(key string, value toon.Value, path []string) (any, bool) {
		if key == "secret" {
			return nil, false
		}

		return value, true
	}

	got, err := toon.Encode(host, toon.WithReplacer(replacer))
	require.NoError(t, err)
	assert.Equal(t, stringtest.JoinLF(
		"a: 1",
		"b: 2",
	), got)
}

// TestPropertyCustomIndentWidthIsHonoredSymmetrically covers WithIndent and
// the matching WithDecodeIndent on the decode side.
func TestPropertyCustomIndentWidthIsHonoredSymmetrically(t *testing.T) {
	host := map[string]any{"a": map[string]any{"b": 1}}

	got, err := toon.Encode(host, toon.WithIndent(4))
	require.NoError(t, err)
	assert.Equal(t, stringtest.JoinLF(
		"a:",
		"    b: 1",
	), got)

	back, err := toon.Decode(got, toon.WithDecodeIndent(4))
	require.NoError(t, err)

	normalized, err := toon.Normalize(host)
	require.NoError(t, err)
	assert.True(t, normalized.Equal(back))
}
