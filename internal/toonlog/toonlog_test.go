package toonlog_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/toon/internal/toonlog"
)

func TestParseLevel(t *testing.T) {
	tcs := map[string]struct {
		input string
		want  slog.Level
	}{
		"error":        {"error", slog.LevelError},
		"warn":         {"warn", slog.LevelWarn},
		"warning alias": {"warning", slog.LevelWarn},
		"info default": {"", slog.LevelInfo},
		"debug":        {"DEBUG", slog.LevelDebug},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			got, err := toonlog.ParseLevel(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := toonlog.ParseLevel("bogus")
	require.Error(t, err)
	assert.True(t, errors.Is(err, toonlog.ErrUnknownLevel))
}

func TestParseFormat(t *testing.T) {
	f, err := toonlog.ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, toonlog.FormatJSON, f)

	_, err = toonlog.ParseFormat("xml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, toonlog.ErrUnknownFormat))
}

func TestCreateHandlerWithStringsWritesJSON(t *testing.T) {
	var buf bytes.Buffer

	handler, err := toonlog.CreateHandlerWithStrings(&buf, "info", "json")
	require.NoError(t, err)

	logger := slog.New(handler)
	logger.Info("hello", slog.String("k", "v"))

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestCreateHandlerWithStringsWritesLogfmt(t *testing.T) {
	var buf bytes.Buffer

	handler, err := toonlog.CreateHandlerWithStrings(&buf, "info", "logfmt")
	require.NoError(t, err)

	logger := slog.New(handler)
	logger.Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
}

func TestCreateHandlerWithStringsRejectsUnknownLevel(t *testing.T) {
	_, err := toonlog.CreateHandlerWithStrings(&bytes.Buffer{}, "bogus", "json")
	require.Error(t, err)
}

func TestLevelsAndFormatsListings(t *testing.T) {
	assert.Equal(t, []string{"error", "warn", "info", "debug"}, toonlog.Levels())
	assert.Equal(t, []string{"json", "logfmt"}, toonlog.Formats())
}
