package toon

import (
	"strconv"
	"strings"
)

// Encode normalizes host and renders it as TOON text, per spec section 4.5.
func Encode(host any, opts ...Option) (string, error) {
	o, err := resolveEncoderOptions(opts...)
	if err != nil {
		return "", err
	}

	normalized, err := Normalize(host)
	if err != nil {
		return "", err
	}

	e := &encoder{opts: o, w: newLineWriter()}

	if err := e.encodeRoot(normalized); err != nil {
		return "", err
	}

	return e.w.String(), nil
}

// LineIter is a pull-based iterator over the lines produced by
// [EncodeLines]. Call Next until it reports false; lines carry no trailing
// LF. The iterator holds its lines precomputed (spec section 9's writer
// buffers a vector of strings); Next merely advances a cursor over it, so
// the encode cost is paid once, up front, inside [EncodeLines] itself.
type LineIter struct {
	lines []string
	pos   int
}

// Next advances the iterator and returns the next line and true, or ""
// and false once exhausted.
func (it *LineIter) Next() (string, bool) {
	if it.pos >= len(it.lines) {
		return "", false
	}

	line := it.lines[it.pos]
	it.pos++

	return line, true
}

// EncodeLines is [Encode] exposed as a line iterator instead of a joined
// string, matching spec section 6.1's encodeLines operation.
func EncodeLines(host any, opts ...Option) (*LineIter, error) {
	o, err := resolveEncoderOptions(opts...)
	if err != nil {
		return nil, err
	}

	normalized, err := Normalize(host)
	if err != nil {
		return nil, err
	}

	e := &encoder{opts: o, w: newLineWriter()}

	if err := e.encodeRoot(normalized); err != nil {
		return nil, err
	}

	return &LineIter{lines: e.w.Lines()}, nil
}

type encoder struct {
	opts encoderOptions
	w    *lineWriter
}

func (e *encoder) indent(depth int) string {
	if depth <= 0 {
		return ""
	}

	return strings.Repeat(" ", depth*e.opts.indent)
}

// applyReplace runs the configured replacer (if any) over v at key/path and
// re-normalizes its result. Callers must honor keep=false by omitting the
// field or item; the root value is handled by encodeRoot instead, which
// ignores keep.
func (e *encoder) applyReplace(key string, v Value, path []string) (Value, bool, error) {
	if e.opts.replacer == nil {
		return v, true, nil
	}

	replacement, keep := e.opts.replacer(key, v, path)
	if !keep {
		return Value{}, false, nil
	}

	nv, err := Normalize(replacement)
	if err != nil {
		return Value{}, false, err
	}

	return nv, true, nil
}

func (e *encoder) encodeRoot(v Value) error {
	root := v
	if e.opts.replacer != nil {
		// The root cannot be omitted: keep is ignored and the returned
		// value is used either way.
		replacement, _ := e.opts.replacer("", v, nil)

		nv, err := Normalize(replacement)
		if err != nil {
			return err
		}

		root = nv
	}

	switch root.Kind() {
	case KindArray:
		items, _ := root.Items()
		return e.encodeArray("", items, 0, true, nil)
	case KindObject:
		obj, _ := root.Object()
		return e.encodeObjectFields(obj, 0, nil)
	default:
		e.w.writeLine(encodePrimitive(root, e.opts.delimiter.rune(), e.opts.quoteStrings))
		return nil
	}
}

// encodeObjectFields emits obj's fields at depth, applying key folding when
// configured. Root-depth empty objects emit nothing (spec section 8: "Empty
// object {} encodes to the empty string when root").
func (e *encoder) encodeObjectFields(obj *Object, depth int, path []string) error {
	if depth == 0 && obj.IsEmpty() {
		return nil
	}

	indent := e.indent(depth)

	literalKeys := make(map[string]bool, obj.Len())
	for _, f := range obj.Fields() {
		literalKeys[f.Key] = true
	}

	chosenDotted := make(map[string]bool)

	for _, f := range obj.Fields() {
		childPath := append(append([]string{}, path...), f.Key)

		v, keep, err := e.applyReplace(f.Key, f.Value, childPath)
		if err != nil {
			return err
		}

		if !keep {
			continue
		}

		if err := e.encodeField(f.Key, v, depth, indent, literalKeys, chosenDotted, childPath); err != nil {
			return err
		}
	}

	return nil
}

func (e *encoder) encodeField(
	key string, v Value, depth int, indent string,
	literalKeys, chosenDotted map[string]bool, path []string,
) error {
	if e.opts.keyFolding == KeyFoldingSafe {
		collides := func(dotted string) bool { return literalKeys[dotted] || chosenDotted[dotted] }

		plan := planKeyFold(key, v, e.opts.flattenDepth, collides)
		if plan.folded {
			chosenDotted[plan.key] = true
			return e.encodeResolvedField(plan.key, plan, depth, indent, path)
		}
	}

	return e.encodePlainField(key, v, depth, indent, path)
}

// encodeResolvedField emits a folded field: either an inline leaf under the
// dotted key, or a ":" header whose children are the continuation object,
// itself subject to key folding at depth+1.
func (e *encoder) encodeResolvedField(dotted string, plan foldPlan, depth int, indent string, path []string) error {
	if plan.hasLeaf {
		return e.encodeLeaf(dotted, plan.leaf, depth, indent, path)
	}

	if plan.continuation.IsEmpty() {
		e.w.writeLine(indent + encodeKeyToken(dotted) + ":")
		return nil
	}

	e.w.writeLine(indent + encodeKeyToken(dotted) + ":")

	return e.encodeObjectFields(plan.continuation, depth+1, path)
}

// encodePlainField emits key/value with no folding applied.
func (e *encoder) encodePlainField(key string, v Value, depth int, indent string, path []string) error {
	return e.encodeLeaf(key, v, depth, indent, path)
}

// encodeLeaf emits one key paired with a primitive, object, or array value.
// Used both for unfolded fields and for the inline leaf of a fully folded
// chain, since both shapes are identical once the key to print is decided.
func (e *encoder) encodeLeaf(key string, v Value, depth int, indent string, path []string) error {
	keyLiteral := encodeKeyToken(key)

	switch v.Kind() {
	case KindArray:
		items, _ := v.Items()
		return e.encodeArray(keyLiteral, items, depth, false, path)
	case KindObject:
		obj, _ := v.Object()
		if obj.IsEmpty() {
			e.w.writeLine(indent + keyLiteral + ":")
			return nil
		}

		e.w.writeLine(indent + keyLiteral + ":")

		return e.encodeObjectFields(obj, depth+1, path)
	default:
		token := encodePrimitive(v, e.opts.delimiter.rune(), e.opts.quoteStrings)
		e.w.writeLine(indent + keyLiteral + ": " + token)

		return nil
	}
}

// encodeArray emits an array field (or the array root, when root is true
// and keyLiteral is ""), choosing inline, tabular, or list form per spec
// section 4.5.
func (e *encoder) encodeArray(keyLiteral string, items []Value, depth int, root bool, path []string) error {
	indent := e.indent(depth)
	delim := e.opts.delimiter

	if allPrimitives(items) {
		header := renderHeader(keyLiteral, len(items), delim, nil)
		line := indent + header

		if len(items) > 0 {
			tokens := make([]string, len(items))
			for i, v := range items {
				tokens[i] = encodePrimitive(v, delim.rune(), e.opts.quoteStrings)
			}

			line += " " + strings.Join(tokens, string(delim.rune()))
		}

		e.w.writeLine(line)

		return nil
	}

	if fields, ok := detectTabular(items); ok {
		header := renderHeader(keyLiteral, len(items), delim, fields)
		e.w.writeLine(indent + header)

		for _, item := range items {
			obj, _ := item.Object()
			row := make([]string, len(fields))

			for i, name := range fields {
				v, _ := obj.Get(name)
				row[i] = encodePrimitive(v, delim.rune(), e.opts.quoteStrings)
			}

			e.w.writeLine(e.indent(depth+1) + strings.Join(row, string(delim.rune())))
		}

		return nil
	}

	header := renderHeader(keyLiteral, len(items), delim, nil)
	e.w.writeLine(indent + header)

	for i, item := range items {
		itemPath := append(append([]string{}, path...), strconv.Itoa(i))
		if err := e.encodeListItem(item, depth+1, itemPath); err != nil {
			return err
		}
	}

	return nil
}

// encodeListItem emits one element of a list-form array at depth.
func (e *encoder) encodeListItem(item Value, depth int, path []string) error {
	indent := e.indent(depth)

	switch item.Kind() {
	case KindObject:
		obj, _ := item.Object()
		return e.encodeObjectListItem(obj, depth, path)
	case KindArray:
		items, _ := item.Items()
		return e.encodeArrayForListItem("", items, depth, path)
	default:
		token := encodePrimitive(item, e.opts.delimiter.rune(), e.opts.quoteStrings)
		e.w.writeLine(indent + "- " + token)

		return nil
	}
}

// encodeObjectListItem emits a list item whose value is an object: the
// first field rides on the "- " line, remaining fields follow at depth+1,
// per spec section 4.5's "List item object" shape.
func (e *encoder) encodeObjectListItem(obj *Object, depth int, path []string) error {
	indent := e.indent(depth)

	if obj.IsEmpty() {
		e.w.writeLine(indent + "- {}")
		return nil
	}

	first := obj.Fields()[0]

	switch {
	case first.Value.IsPrimitive():
		keyLiteral := encodeKeyToken(first.Key)
		token := encodePrimitive(first.Value, e.opts.delimiter.rune(), e.opts.quoteStrings)
		e.w.writeLine(indent + "- " + keyLiteral + ": " + token)

		if obj.Len() > 1 {
			return e.encodeObjectFields(sliceObjectFrom(obj, 1), depth+1, path)
		}

		return nil

	case first.Value.Kind() == KindArray:
		keyLiteral := encodeKeyToken(first.Key)
		items, _ := first.Value.Items()

		if err := e.encodeArrayForListItem(keyLiteral, items, depth, path); err != nil {
			return err
		}

		if obj.Len() > 1 {
			return e.encodeObjectFields(sliceObjectFrom(obj, 1), depth+1, path)
		}

		return nil

	default:
		// First field is itself an object: no in-place shorthand, the
		// whole item (including the first field) moves to depth+1.
		e.w.writeLine(indent + "-")

		return e.encodeObjectFields(obj, depth+1, path)
	}
}

// encodeArrayForListItem renders an array that is itself the leading
// field of an object list item (or a bare nested array list item, when
// keyLiteral is ""), placing its header on the same "- " line.
func (e *encoder) encodeArrayForListItem(keyLiteral string, items []Value, depth int, path []string) error {
	indent := e.indent(depth)
	delim := e.opts.delimiter

	if fields, ok := detectTabular(items); ok {
		header := renderHeader(keyLiteral, len(items), delim, fields)
		e.w.writeLine(indent + "- " + header)

		for _, item := range items {
			obj, _ := item.Object()
			row := make([]string, len(fields))

			for i, name := range fields {
				v, _ := obj.Get(name)
				row[i] = encodePrimitive(v, delim.rune(), e.opts.quoteStrings)
			}

			e.w.writeLine(e.indent(depth+1) + strings.Join(row, string(delim.rune())))
		}

		return nil
	}

	if allPrimitives(items) {
		header := renderHeader(keyLiteral, len(items), delim, nil)
		line := indent + "- " + header

		if len(items) > 0 {
			tokens := make([]string, len(items))
			for i, v := range items {
				tokens[i] = encodePrimitive(v, delim.rune(), e.opts.quoteStrings)
			}

			line += " " + strings.Join(tokens, string(delim.rune()))
		}

		e.w.writeLine(line)

		return nil
	}

	header := renderHeader(keyLiteral, len(items), delim, nil)
	e.w.writeLine(indent + "- " + header)

	for i, item := range items {
		itemPath := append(append([]string{}, path...), strconv.Itoa(i))
		if err := e.encodeListItem(item, depth+1, itemPath); err != nil {
			return err
		}
	}

	return nil
}

func allPrimitives(items []Value) bool {
	for _, v := range items {
		if !v.IsPrimitive() {
			return false
		}
	}

	return true
}

// sliceObjectFrom returns a new Object containing obj's fields from index i
// onward, preserving order and quoted bits.
func sliceObjectFrom(obj *Object, i int) *Object {
	out := NewObject()
	for _, f := range obj.Fields()[i:] {
		out.SetQuoted(f.Key, f.Quoted, f.Value)
	}

	return out
}

// encodeKeyToken renders a key as it appears before ':' in a header or
// plain field line: bare when it is a valid unquoted identifier or a dotted
// chain of identifier segments (as key folding produces), quoted otherwise.
func encodeKeyToken(key string) string {
	if isIdentifierSegment(key) || isExpandableKey(key) {
		return key
	}

	return quoteString(key)
}

// renderHeader builds the "key?[N<delim?>]{fields}?:" header line content
// (without leading indentation), per spec section 4.7.
func renderHeader(keyLiteral string, length int, delim Delimiter, fields []string) string {
	var b strings.Builder

	b.WriteString(keyLiteral)
	b.WriteByte('[')
	b.WriteString(strconv.Itoa(length))

	if delim != DelimComma {
		b.WriteRune(delim.rune())
	}

	b.WriteByte(']')

	if len(fields) > 0 {
		b.WriteByte('{')

		for i, f := range fields {
			if i > 0 {
				b.WriteRune(delim.rune())
			}

			b.WriteString(encodeKeyToken(f))
		}

		b.WriteByte('}')
	}

	b.WriteByte(':')

	return b.String()
}
