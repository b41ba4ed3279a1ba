package toon_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/toon/toon"
)

func TestEncodePrimitiveStringQuoting(t *testing.T) {
	tcs := map[string]struct {
		input string
		want  string
	}{
		"plain word stays bare":            {"hello", "hello"},
		"comma forces quoting":             {"a,b", `"a,b"`},
		"colon forces quoting":             {"a: b", `"a: b"`},
		"leading plus digit forces quote":  {"+8613334445577", `"+8613334445577"`},
		"leading dot forces quote":         {".5", `".5"`},
		"looks like true forces quote":     {"true", `"true"`},
		"looks like null forces quote":     {"null", `"null"`},
		"looks like number forces quote":   {"42", `"42"`},
		"empty string forces quote":        {"", `""`},
		"leading/trailing space quoted":    {" hi ", `" hi "`},
		"leading bracket forces quote":     {"[x]", `"[x]"`},
		"leading dash forces quote":        {"-x", `"-x"`},
		"embedded newline escaped":         {"a\nb", `"a\nb"`},
		"embedded quote escaped":           {`a"b`, `"a\"b"`},
		"embedded backslash escaped":       {`a\b`, `"a\\b"`},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			got, err := toon.Encode(toon.String(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNumberFormatting(t *testing.T) {
	tcs := map[string]struct {
		in   float64
		want string
	}{
		"integer has no decimal point": {3, "3"},
		"negative":                     {-3, "-3"},
		"fraction":                     {1.5, "1.5"},
		"negative zero canonicalizes":  {math.Copysign(0, -1), "0"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			v := toon.Number(tc.in)
			got, err := toon.Encode(v)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodePrimitiveTokenRoundTrip(t *testing.T) {
	tcs := map[string]struct {
		text string
		kind toon.Kind
	}{
		"true":        {"true", toon.KindBool},
		"false":       {"false", toon.KindBool},
		"null":        {"null", toon.KindNull},
		"integer":     {"42", toon.KindNumber},
		"negative":    {"-1.5", toon.KindNumber},
		"bare string": {"hello", toon.KindString},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			v, err := toon.Decode(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, v.Kind())
		})
	}
}

func TestDecodeNumericLeadingZeroStrict(t *testing.T) {
	_, err := toon.Decode("01")
	require.Error(t, err)

	var de *toon.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, toon.KindNumericLeadingZero, de.Kind)
}

func TestDecodeNumericLeadingZeroNonStrict(t *testing.T) {
	v, err := toon.Decode("01", toon.WithStrict(false))
	require.NoError(t, err)
	assert.Equal(t, toon.KindString, v.Kind())
}
