package toon

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind identifies the variant of a normalized [Value].
type Kind int

// Possible Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a normalized TOON value: the JSON data model (null, boolean,
// finite number, string, array, object) with insertion-order-preserving
// objects. Values are immutable after construction; build new ones rather
// than mutating a Value in place.
type Value struct {
	kind Kind
	b    bool
	num  float64
	str  string
	arr  []Value
	obj  *Object
}

// Null returns the normalized null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a normalized boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a normalized number value. Negative zero is canonicalized
// to positive zero, per the codec's round-trip invariant.
func Number(f float64) Value {
	if f == 0 {
		f = 0
	}

	return Value{kind: KindNumber, num: f}
}

// String returns a normalized string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Array returns a normalized array value. The slice is not copied; treat it
// as owned by the returned Value.
func Array(vs []Value) Value { return Value{kind: KindArray, arr: vs} }

// Obj returns a normalized object value wrapping o.
func Obj(o *Object) Value {
	if o == nil {
		o = NewObject()
	}

	return Value{kind: KindObject, obj: o}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns v's boolean and whether v is a boolean.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Num returns v's number and whether v is a number.
func (v Value) Num() (float64, bool) { return v.num, v.kind == KindNumber }

// Str returns v's string and whether v is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Items returns v's array elements and whether v is an array.
func (v Value) Items() ([]Value, bool) { return v.arr, v.kind == KindArray }

// Object returns v's object and whether v is an object.
func (v Value) Object() (*Object, bool) { return v.obj, v.kind == KindObject }

// IsPrimitive reports whether v is null, boolean, number, or string.
func (v Value) IsPrimitive() bool {
	switch v.kind {
	case KindNull, KindBool, KindNumber, KindString:
		return true
	default:
		return false
	}
}

// GoString renders a debug form, primarily for test failure messages.
func (v Value) GoString() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%v", v.b)
	case KindNumber:
		return fmt.Sprintf("%v", v.num)
	case KindString:
		return fmt.Sprintf("%q", v.str)
	case KindArray:
		return fmt.Sprintf("array(%d)", len(v.arr))
	case KindObject:
		return fmt.Sprintf("object(%d)", v.obj.Len())
	default:
		return "<invalid>"
	}
}

// Equal reports deep structural equality between v and other: same kind,
// same primitive payload, recursively equal arrays/objects. Object
// comparison ignores the Quoted bookkeeping bit (it is a decode-time
// diagnostic, not part of the data model) but requires identical key order.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.num == other.num
	case KindString:
		return v.str == other.str
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}

		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}

		return true
	case KindObject:
		return v.obj.Equal(other.obj)
	default:
		return false
	}
}

// MarshalJSON implements [json.Marshaler], preserving object field order
// (encoding/json's map[string]any support does not). This lets a decoded
// [Value] round-trip through the standard library's JSON encoder without
// losing the order a TOON document declared.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool, KindNumber, KindString:
		return json.Marshal(v.asGo())
	case KindArray:
		var buf bytes.Buffer

		buf.WriteByte('[')

		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}

			b, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}

			buf.Write(b)
		}

		buf.WriteByte(']')

		return buf.Bytes(), nil
	case KindObject:
		var buf bytes.Buffer

		buf.WriteByte('{')

		for i, f := range v.obj.fields {
			if i > 0 {
				buf.WriteByte(',')
			}

			key, err := json.Marshal(f.Key)
			if err != nil {
				return nil, err
			}

			buf.Write(key)
			buf.WriteByte(':')

			val, err := f.Value.MarshalJSON()
			if err != nil {
				return nil, err
			}

			buf.Write(val)
		}

		buf.WriteByte('}')

		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}

// asGo returns v's primitive payload as a plain Go value, for handoff to
// [json.Marshal].
func (v Value) asGo() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	default:
		return nil
	}
}

// Field is one key/value pair of an [Object], in insertion order.
type Field struct {
	Key    string
	Value  Value
	Quoted bool // true if the key token was quoted when decoded from text
}

// Object is an ordered mapping from unique string keys to [Value]s.
// Insertion order is significant and preserved across Set calls; setting an
// existing key updates its value in place without moving it. The zero
// Object is not usable; create instances with [NewObject].
type Object struct {
	fields []Field
	index  map[string]int
}

// NewObject returns an empty, ready-to-use Object.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

// Len returns the number of fields in o.
func (o *Object) Len() int { return len(o.fields) }

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	i, ok := o.index[key]
	if !ok {
		return Value{}, false
	}

	return o.fields[i].Value, true
}

// Set inserts key with value v, or updates it in place if already present,
// preserving insertion order either way.
func (o *Object) Set(key string, v Value) {
	o.SetQuoted(key, false, v)
}

// SetQuoted is [Object.Set] with an explicit Quoted bit, used by the decoder
// to record whether the source key token was quoted (relevant to path
// expansion, see [WithExpandPaths]).
func (o *Object) SetQuoted(key string, quoted bool, v Value) {
	if i, ok := o.index[key]; ok {
		o.fields[i].Value = v
		o.fields[i].Quoted = quoted

		return
	}

	o.index[key] = len(o.fields)
	o.fields = append(o.fields, Field{Key: key, Value: v, Quoted: quoted})
}

// TrySetQuoted inserts key with value v and reports true, or reports false
// without modifying o if key is already present. Used for strict-mode
// duplicate-key detection during decode.
func (o *Object) TrySetQuoted(key string, quoted bool, v Value) bool {
	if _, ok := o.index[key]; ok {
		return false
	}

	o.SetQuoted(key, quoted, v)

	return true
}

// Fields returns o's fields in insertion order. The returned slice must not
// be mutated.
func (o *Object) Fields() []Field { return o.fields }

// Keys returns o's keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.fields))
	for i, f := range o.fields {
		keys[i] = f.Key
	}

	return keys
}

// IsEmpty reports whether o has zero fields.
func (o *Object) IsEmpty() bool { return len(o.fields) == 0 }

// Equal reports deep structural equality, including key order.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}

	if len(o.fields) != len(other.fields) {
		return false
	}

	for i, f := range o.fields {
		g := other.fields[i]
		if f.Key != g.Key || !f.Value.Equal(g.Value) {
			return false
		}
	}

	return true
}

// Clone returns a shallow copy of o's field list (values are not deep
// copied, but Values are immutable so this is safe).
func (o *Object) Clone() *Object {
	clone := NewObject()
	for _, f := range o.fields {
		clone.SetQuoted(f.Key, f.Quoted, f.Value)
	}

	return clone
}
