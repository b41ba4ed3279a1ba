package toon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/toon/toon"
)

func drainEvents(t *testing.T, it *toon.EventIter) []toon.Event {
	t.Helper()

	var events []toon.Event

	for {
		ev, ok, err := it.Next()
		require.NoError(t, err)

		if !ok {
			return events
		}

		events = append(events, ev)
	}
}

func TestDecodeStreamTabularArray(t *testing.T) {
	lines := []string{
		"users[2]{id,name}:",
		"  1,Ann",
		"  2,Bo",
	}

	it, err := toon.DecodeStream(toon.SliceLineSource(lines))
	require.NoError(t, err)

	events := drainEvents(t, it)

	kinds := make([]toon.EventKind, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind
	}

	assert.Equal(t, []toon.EventKind{
		toon.EventStartObject,
		toon.EventKey,
		toon.EventStartArray,
		toon.EventStartObject,
		toon.EventKey, toon.EventPrimitive,
		toon.EventKey, toon.EventPrimitive,
		toon.EventEndObject,
		toon.EventStartObject,
		toon.EventKey, toon.EventPrimitive,
		toon.EventKey, toon.EventPrimitive,
		toon.EventEndObject,
		toon.EventEndArray,
		toon.EventEndObject,
	}, kinds)

	require.Equal(t, "users", events[1].Key)
	require.Equal(t, 2, events[2].Length)

	n0, _ := events[5].Value.Num()
	assert.Equal(t, float64(1), n0)

	s0, _ := events[7].Value.Str()
	assert.Equal(t, "Ann", s0)
}

func TestDecodeStreamRootScalar(t *testing.T) {
	it, err := toon.DecodeStream(toon.SliceLineSource([]string{"42"}))
	require.NoError(t, err)

	ev, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, toon.EventPrimitive, ev.Kind)

	n, _ := ev.Value.Num()
	assert.Equal(t, float64(42), n)

	_, ok, err = it.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecodeStreamRejectsExpandPaths(t *testing.T) {
	_, err := toon.DecodeStream(toon.SliceLineSource([]string{"a: 1"}), toon.WithExpandPaths(toon.ExpandPathsSafe))
	require.Error(t, err)

	var ce *toon.ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestDecodeStreamListFormArray(t *testing.T) {
	lines := []string{
		"items[2]:",
		"  - a: 1",
		"    b: 2",
		"  - a: 3",
	}

	it, err := toon.DecodeStream(toon.SliceLineSource(lines))
	require.NoError(t, err)

	events := drainEvents(t, it)

	var keys []string
	for _, ev := range events {
		if ev.Kind == toon.EventKey {
			keys = append(keys, ev.Key)
		}
	}

	assert.Equal(t, []string{"items", "a", "b", "a"}, keys)
}

func TestEncodeLinesFeedsDecodeStreamDirectly(t *testing.T) {
	host := map[string]any{"a": 1, "b": []any{1, 2, 3}}

	lineIter, err := toon.EncodeLines(host)
	require.NoError(t, err)

	it, err := toon.DecodeStream(toon.LineIterSource(lineIter))
	require.NoError(t, err)

	events := drainEvents(t, it)
	require.NotEmpty(t, events)
	assert.Equal(t, toon.EventStartObject, events[0].Kind)
	assert.Equal(t, toon.EventEndObject, events[len(events)-1].Kind)
}
