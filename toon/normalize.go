package toon

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"
)

// Marshaler is implemented by host types that know how to serialize
// themselves to a value the normalizer can re-process (typically a map,
// slice, or primitive). [Normalize] calls MarshalTOON in place of its
// built-in reflection and re-normalizes the result, so MarshalTOON may
// itself return another Marshaler.
type Marshaler interface {
	MarshalTOON() (any, error)
}

// safeIntBits is the number of mantissa bits in an IEEE-754 double; integers
// whose magnitude exceeds 2^safeIntBits cannot be represented exactly and
// are normalized to a quoted decimal string instead of a Number.
const safeIntBits = 53

var maxSafeInt = int64(1) << safeIntBits

// Normalize maps an arbitrary host value to the canonical normalized
// [Value] described by the data model: null, boolean, finite number,
// string, array, or object, with insertion-order-preserving objects.
//
// Normalization fails only for cyclic input, which returns [ErrCycle]
// rather than recursing forever (spec section 9), and when a [Marshaler]'s
// MarshalTOON returns an error, which is returned wrapped. Every other
// unsupported or unrecognized shape normalizes to [Null] silently; this is
// the system's only silent coercion.
func Normalize(host any) (Value, error) {
	n := &normalizer{visiting: make(map[uintptr]bool)}
	return n.normalize(host)
}

type normalizer struct {
	visiting map[uintptr]bool
}

func (n *normalizer) normalize(host any) (Value, error) {
	if host == nil {
		return Null(), nil
	}

	if v, ok := host.(Value); ok {
		return v, nil
	}

	if m, ok := host.(Marshaler); ok {
		out, err := m.MarshalTOON()
		if err != nil {
			return Value{}, fmt.Errorf("toon: marshaling %T: %w", host, err)
		}

		return n.normalize(out)
	}

	if t, ok := host.(time.Time); ok {
		return String(t.UTC().Format(time.RFC3339Nano)), nil
	}

	rv := reflect.ValueOf(host)

	return n.normalizeReflect(rv)
}

func (n *normalizer) normalizeReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return Null(), nil

	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}

		return n.withCycleGuard(rv, func() (Value, error) {
			return n.normalize(rv.Elem().Interface())
		})

	case reflect.Bool:
		return Bool(rv.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return normalizeInt(rv.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return normalizeUint(rv.Uint()), nil

	case reflect.Float32, reflect.Float64:
		return normalizeFloat(rv.Float()), nil

	case reflect.String:
		return String(rv.String()), nil

	case reflect.Slice, reflect.Array:
		return n.normalizeSequence(rv)

	case reflect.Map:
		return n.normalizeMap(rv)

	case reflect.Struct:
		return n.normalizeStruct(rv)

	default:
		// Channels, funcs, unsafe pointers, complex numbers: no JSON
		// projection. Silent coercion per the normalizer's contract.
		return Null(), nil
	}
}

// withCycleGuard tracks the pointer behind ptr/iface-kind values while f
// runs, returning ErrCycle if the same pointer is already being visited.
func (n *normalizer) withCycleGuard(rv reflect.Value, f func() (Value, error)) (Value, error) {
	if rv.Kind() != reflect.Ptr || rv.Pointer() == 0 {
		return f()
	}

	ptr := rv.Pointer()
	if n.visiting[ptr] {
		return Value{}, ErrCycle
	}

	n.visiting[ptr] = true
	defer delete(n.visiting, ptr)

	return f()
}

func normalizeInt(i int64) Value {
	if i > maxSafeInt || i < -maxSafeInt {
		return String(strconv.FormatInt(i, 10))
	}

	return Number(float64(i))
}

func normalizeUint(u uint64) Value {
	if u > uint64(maxSafeInt) {
		return String(strconv.FormatUint(u, 10))
	}

	return Number(float64(u))
}

func normalizeFloat(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}

	return Number(f)
}

func (n *normalizer) normalizeSequence(rv reflect.Value) (Value, error) {
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return Array(nil), nil
	}

	length := rv.Len()
	out := make([]Value, length)

	for i := 0; i < length; i++ {
		v, err := n.normalize(rv.Index(i).Interface())
		if err != nil {
			return Value{}, err
		}

		out[i] = v
	}

	return Array(out), nil
}

// normalizeMap handles both genuine map-like values (map[K]V with V != bool
// or V != struct{}) and set-like values (map[K]bool / map[K]struct{}, which
// carry no meaningful value and normalize to a sorted array of keys).
func (n *normalizer) normalizeMap(rv reflect.Value) (Value, error) {
	if rv.IsNil() {
		return Obj(NewObject()), nil
	}

	if isSetLike(rv.Type()) {
		return n.normalizeSetLike(rv)
	}

	keys := rv.MapKeys()
	type pair struct {
		key string
		val reflect.Value
	}

	pairs := make([]pair, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, pair{key: stringifyMapKey(k), val: rv.MapIndex(k)})
	}

	// Host map iteration order is unspecified; sort keys so Normalize is
	// deterministic. Spec section 9's open question on host languages
	// without ordered maps applies here: callers that need stable
	// application-defined order should pass an ordered representation
	// (e.g. a struct, or a slice of key/value pairs) instead of a map.
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	obj := NewObject()

	for _, p := range pairs {
		v, err := n.normalize(p.val.Interface())
		if err != nil {
			return Value{}, err
		}

		obj.Set(p.key, v)
	}

	return Obj(obj), nil
}

func isSetLike(t reflect.Type) bool {
	elem := t.Elem()

	return elem.Kind() == reflect.Bool || (elem.Kind() == reflect.Struct && elem.NumField() == 0)
}

func (n *normalizer) normalizeSetLike(rv reflect.Value) (Value, error) {
	keys := rv.MapKeys()
	strs := make([]string, len(keys))

	for i, k := range keys {
		strs[i] = stringifyMapKey(k)
	}

	sort.Strings(strs)

	out := make([]Value, len(strs))
	for i, s := range strs {
		out[i] = String(s)
	}

	return Array(out), nil
}

func stringifyMapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}

	return fmt.Sprintf("%v", k.Interface())
}

// normalizeStruct walks exported fields in declaration order, honoring a
// `toon:"name,omitempty"` tag analogous to encoding/json. A tag of "-"
// excludes the field. Embedded anonymous structs are inlined.
func (n *normalizer) normalizeStruct(rv reflect.Value) (Value, error) {
	obj := NewObject()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.PkgPath != "" && !sf.Anonymous {
			continue // unexported
		}

		name, omitempty, skip := parseStructTag(sf)
		if skip {
			continue
		}

		fv := rv.Field(i)

		// parseStructTag falls back to the Go field name, so look at the
		// tag itself: only an embedded field without an explicit name is
		// inlined.
		tagName := ""
		if tag, ok := sf.Tag.Lookup("toon"); ok {
			tagName = splitTag(tag)[0]
		} else if tag, ok := sf.Tag.Lookup("json"); ok {
			tagName = splitTag(tag)[0]
		}

		if sf.Anonymous && tagName == "" {
			embedded, err := n.normalizeEmbedded(fv)
			if err != nil {
				return Value{}, err
			}

			if embedded != nil {
				for _, f := range embedded.Fields() {
					obj.Set(f.Key, f.Value)
				}
			}

			continue
		}

		if omitempty && isEmptyValue(fv) {
			continue
		}

		v, err := n.normalize(fv.Interface())
		if err != nil {
			return Value{}, err
		}

		obj.Set(name, v)
	}

	return Obj(obj), nil
}

func (n *normalizer) normalizeEmbedded(fv reflect.Value) (*Object, error) {
	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			return nil, nil
		}

		fv = fv.Elem()
	}

	if fv.Kind() != reflect.Struct {
		return nil, nil
	}

	v, err := n.normalizeStruct(fv)
	if err != nil {
		return nil, err
	}

	obj, _ := v.Object()

	return obj, nil
}

func parseStructTag(sf reflect.StructField) (name string, omitempty bool, skip bool) {
	tag, ok := sf.Tag.Lookup("toon")
	if !ok {
		tag, ok = sf.Tag.Lookup("json")
	}

	if !ok || tag == "" {
		return sf.Name, false, false
	}

	if tag == "-" {
		return "", false, true
	}

	parts := splitTag(tag)
	name = parts[0]

	if name == "" {
		name = sf.Name
	}

	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitempty = true
		}
	}

	return name, omitempty, false
}

func splitTag(tag string) []string {
	var parts []string

	start := 0

	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			parts = append(parts, tag[start:i])
			start = i + 1
		}
	}

	parts = append(parts, tag[start:])

	return parts
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	default:
		return false
	}
}
