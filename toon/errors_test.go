package toon_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/toon/internal/toonlog"
	"go.jacobcolvin.com/toon/toon"
)

func TestDecodeErrorKindsMapToSentinels(t *testing.T) {
	tcs := map[string]struct {
		text    string
		opts    []toon.DecodeOption
		wantErr error
		wantKind toon.ErrorKind
	}{
		"tab in indent": {
			text:     "a:\n\tb: 1",
			wantErr:  toon.ErrIndentation,
			wantKind: toon.KindTabInIndent,
		},
		"declared length mismatch": {
			text:     "items[3]: 1,2",
			wantErr:  toon.ErrStructure,
			wantKind: toon.KindDeclaredLengthMismatch,
		},
		"duplicate key": {
			text:     "a: 1\na: 2",
			wantErr:  toon.ErrStructure,
			wantKind: toon.KindDuplicateKey,
		},
		"malformed header": {
			text:     "a[x]: 1",
			wantErr:  toon.ErrSyntax,
			wantKind: toon.KindMalformedHeader,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			_, err := toon.Decode(tc.text, tc.opts...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr))

			var de *toon.DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tc.wantKind, de.Kind)
			assert.NotEmpty(t, de.Error())
		})
	}
}

func TestPathConflictError(t *testing.T) {
	text := "a.b: 1\na:\n  b: 2"

	_, err := toon.Decode(text, toon.WithExpandPaths(toon.ExpandPathsSafe))
	require.Error(t, err)
	assert.True(t, errors.Is(err, toon.ErrPathConflict))
}

func TestNonStrictDecodeLogsDowngradedErrors(t *testing.T) {
	var buf bytes.Buffer

	handler, err := toonlog.CreateHandlerWithStrings(&buf, "debug", "json")
	require.NoError(t, err)

	prev := slog.Default()
	slog.SetDefault(slog.New(handler))

	defer slog.SetDefault(prev)

	v, err := toon.Decode("items[3]: 1,2", toon.WithStrict(false))
	require.NoError(t, err)

	obj, _ := v.Object()
	items, _ := obj.Get("items")
	elems, _ := items.Items()
	assert.Len(t, elems, 2)

	assert.Contains(t, buf.String(), "downgraded decode error")
	assert.Contains(t, buf.String(), "declared-length-mismatch")
}

func TestConfigErrorWraps(t *testing.T) {
	_, err := toon.ParseDelimiter("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, toon.ErrConfig))

	var ce *toon.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "delimiter", ce.Option)
}
