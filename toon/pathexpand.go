package toon

import "strings"

// expandPaths is the decoder inverse of key folding (spec section 4.9): for
// every object, every key containing '.' whose every dot-segment is a
// valid unquoted identifier and which was not itself quoted in the source
// is rewritten into a nested object. Collisions between an expanded path
// and an existing literal key, or between two expansions that disagree on
// intermediate types, are errors in strict mode and last-writer-wins
// otherwise; collisions where both sides are objects are deep-merged.
func expandPaths(v Value, strict bool) (Value, error) {
	switch v.Kind() {
	case KindObject:
		obj, _ := v.Object()
		return expandObject(obj, strict)
	case KindArray:
		items, _ := v.Items()
		out := make([]Value, len(items))

		for i, item := range items {
			ev, err := expandPaths(item, strict)
			if err != nil {
				return Value{}, err
			}

			out[i] = ev
		}

		return Array(out), nil
	default:
		return v, nil
	}
}

func expandObject(obj *Object, strict bool) (Value, error) {
	result := NewObject()

	for _, f := range obj.Fields() {
		ev, err := expandPaths(f.Value, strict)
		if err != nil {
			return Value{}, err
		}

		if !f.Quoted && isExpandableKey(f.Key) {
			segs := strings.Split(f.Key, ".")
			nested := nestedFrom(segs[1:], ev)

			if err := mergeFieldInto(result, segs[0], false, nested, strict); err != nil {
				return Value{}, err
			}

			continue
		}

		if err := mergeFieldInto(result, f.Key, f.Quoted, ev, strict); err != nil {
			return Value{}, err
		}
	}

	return Obj(result), nil
}

// isExpandableKey reports whether key is a dotted chain of valid
// identifier segments eligible for path expansion.
func isExpandableKey(key string) bool {
	if !strings.Contains(key, ".") {
		return false
	}

	for _, seg := range strings.Split(key, ".") {
		if !isIdentifierSegment(seg) {
			return false
		}
	}

	return true
}

// nestedFrom wraps leaf in nested single-key objects named by segs, from
// the last segment inward. An empty segs returns leaf unchanged.
func nestedFrom(segs []string, leaf Value) Value {
	v := leaf
	for i := len(segs) - 1; i >= 0; i-- {
		obj := NewObject()
		obj.Set(segs[i], v)
		v = Obj(obj)
	}

	return v
}

// mergeFieldInto sets key/value into dst, deep-merging when both the
// existing and incoming values are objects, and otherwise resolving a
// collision per strict/non-strict policy.
func mergeFieldInto(dst *Object, key string, quoted bool, value Value, strict bool) error {
	existing, has := dst.Get(key)
	if !has {
		dst.SetQuoted(key, quoted, value)
		return nil
	}

	if existing.Kind() == KindObject && value.Kind() == KindObject {
		existingObj, _ := existing.Object()
		incomingObj, _ := value.Object()
		merged := existingObj.Clone()

		for _, f := range incomingObj.Fields() {
			if err := mergeFieldInto(merged, f.Key, f.Quoted, f.Value, strict); err != nil {
				return err
			}
		}

		dst.SetQuoted(key, quoted, Obj(merged))

		return nil
	}

	if strict {
		return newDecodeError(KindPathConflict, 0, 0, "path expansion collision at key %q", key)
	}

	dst.SetQuoted(key, quoted, value)

	return nil
}
