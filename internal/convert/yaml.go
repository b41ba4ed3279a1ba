// Package convert adapts non-TOON input formats into
// [go.jacobcolvin.com/toon/toon.Value] trees, for use by the CLI's --from
// flag.
package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"go.jacobcolvin.com/toon/toon"
)

// FromYAML decodes YAML bytes into a [toon.Value], preserving mapping key
// order from the source document.
//
// Decoding uses [yaml.UseOrderedMap], which makes every mapping in the
// document decode as a [yaml.MapSlice] instead of an unordered
// map[string]any; without it, object field order in the TOON output would
// depend on Go's randomized map iteration rather than the YAML source.
func FromYAML(data []byte) (toon.Value, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data), yaml.UseOrderedMap())

	var host any

	if err := dec.Decode(&host); err != nil {
		if errors.Is(err, io.EOF) {
			return toon.Obj(toon.NewObject()), nil
		}

		return toon.Value{}, fmt.Errorf("convert: decode yaml: %w", err)
	}

	return fromHost(host)
}

// fromHost converts a value produced by an ordered-map YAML decode into a
// [toon.Value]. Mapping and sequence nodes are walked directly to keep
// source order; scalar leaves fall through to [toon.Normalize].
func fromHost(v any) (toon.Value, error) {
	switch vv := v.(type) {
	case yaml.MapSlice:
		obj := toon.NewObject()

		for _, item := range vv {
			key, ok := item.Key.(string)
			if !ok {
				key = fmt.Sprint(item.Key)
			}

			val, err := fromHost(item.Value)
			if err != nil {
				return toon.Value{}, err
			}

			obj.Set(key, val)
		}

		return toon.Obj(obj), nil

	case []any:
		items := make([]toon.Value, len(vv))

		for i, e := range vv {
			ev, err := fromHost(e)
			if err != nil {
				return toon.Value{}, err
			}

			items[i] = ev
		}

		return toon.Array(items), nil

	default:
		return toon.Normalize(vv)
	}
}
