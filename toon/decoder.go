package toon

import (
	"fmt"
	"log/slog"
	"strings"
)

// logDowngrade records, at Debug level, a structural or indentation problem
// that non-strict decoding absorbed instead of failing on.
func logDowngrade(kind ErrorKind, line, col int, format string, args ...any) {
	slog.Debug("toon: downgraded decode error",
		slog.String("kind", string(kind)),
		slog.Int("line", line),
		slog.Int("column", col),
		slog.String("detail", fmt.Sprintf(format, args...)),
	)
}

// Decode parses TOON text into a normalized [Value], per spec section 4.8.
func Decode(text string, opts ...DecodeOption) (Value, error) {
	o, err := resolveDecoderOptions(opts...)
	if err != nil {
		return Value{}, err
	}

	lines, err := scanLines(text, o.indent, o.strict)
	if err != nil {
		return Value{}, err
	}

	d := &decoder{lines: lines, opts: o}

	v, err := d.decodeDocument()
	if err != nil {
		return Value{}, err
	}

	if o.expandPaths == ExpandPathsSafe {
		return expandPaths(v, o.strict)
	}

	return v, nil
}

type decoder struct {
	lines []scannedLine
	pos   int
	opts  decoderOptions
}

func (d *decoder) peek() (*scannedLine, bool) {
	if d.pos >= len(d.lines) {
		return nil, false
	}

	return &d.lines[d.pos], true
}

func (d *decoder) next() (*scannedLine, bool) {
	line, ok := d.peek()
	if ok {
		d.pos++
	}

	return line, ok
}

func isListItemLine(content string) bool {
	return content == "-" || strings.HasPrefix(content, "- ")
}

func listItemBody(content string) string {
	if content == "-" {
		return ""
	}

	return content[2:]
}

func (d *decoder) decodeDocument() (Value, error) {
	first, ok := d.peek()
	if !ok {
		return Obj(NewObject()), nil
	}

	colonIdx := findTopLevelColon(first.content)
	if colonIdx == -1 {
		d.next()
		return decodeScalarToken(first.content, first.lineNo, 1, d.opts.strict)
	}

	head := first.content[:colonIdx]

	hdr, err := parseHeader(head, first.lineNo)
	if err != nil {
		return Value{}, err
	}

	if hdr != nil && !hdr.HasKey {
		d.next()
		rest := trimOneLeadingSpace(first.content[colonIdx+1:])

		return d.decodeArrayFromHeader(hdr, 0, first.lineNo, rest)
	}

	obj, err := d.decodeObjectBody(0)
	if err != nil {
		return Value{}, err
	}

	return Obj(obj), nil
}

// trimOneLeadingSpace removes exactly one leading space, matching the
// encoder's "key[N]: " single-space separator (spec section 4.7: "Any
// characters after ':' (after trimming)").
func trimOneLeadingSpace(s string) string {
	return strings.TrimPrefix(s, " ")
}

// decodeObjectBody decodes consecutive field lines at exactly depth,
// stopping at the first line whose depth is less than depth (end of this
// object's scope) or that is a list item (a structural mismatch: a field
// was expected).
func (d *decoder) decodeObjectBody(depth int) (*Object, error) {
	obj := NewObject()

	for {
		line, ok := d.peek()
		if !ok || line.depth < depth {
			break
		}

		if line.depth > depth {
			if d.opts.strict {
				return nil, newDecodeError(KindUnexpectedDedent, line.lineNo, line.indent+1,
					"unexpected indentation increase")
			}

			logDowngrade(KindUnexpectedDedent, line.lineNo, line.indent+1,
				"unexpected indentation increase, ending object early")

			break
		}

		if isListItemLine(line.content) {
			if d.opts.strict {
				return nil, newDecodeError(KindUnexpectedHeader, line.lineNo, line.indent+1,
					"expected a field, found a list item")
			}

			logDowngrade(KindUnexpectedHeader, line.lineNo, line.indent+1,
				"expected a field, found a list item, ending object early")

			break
		}

		d.next()

		if err := d.decodeField(obj, line, depth); err != nil {
			return nil, err
		}
	}

	return obj, nil
}

func (d *decoder) decodeField(obj *Object, line *scannedLine, depth int) error {
	colonIdx := findTopLevelColon(line.content)
	if colonIdx == -1 {
		return newDecodeError(KindMissingColon, line.lineNo, line.indent+1,
			"expected a field or header, found a bare value")
	}

	head := line.content[:colonIdx]
	rest := trimOneLeadingSpace(line.content[colonIdx+1:])

	hdr, err := parseHeader(head, line.lineNo)
	if err != nil {
		return err
	}

	if hdr != nil {
		val, err := d.decodeArrayFromHeader(hdr, depth, line.lineNo, rest)
		if err != nil {
			return err
		}

		return d.setField(obj, hdr.Key, hdr.KeyQuoted, val, line)
	}

	key, quotedKey, err := decodeKeyToken(head)
	if err != nil {
		return withPosition(err, line.lineNo, 1)
	}

	if rest != "" {
		v, err := decodeScalarToken(rest, line.lineNo, colonIdx+2, d.opts.strict)
		if err != nil {
			return err
		}

		return d.setField(obj, key, quotedKey, v, line)
	}

	next, has := d.peek()
	if has && next.depth == depth+1 && !isListItemLine(next.content) {
		child, err := d.decodeObjectBody(depth + 1)
		if err != nil {
			return err
		}

		return d.setField(obj, key, quotedKey, Obj(child), line)
	}

	return d.setField(obj, key, quotedKey, Obj(NewObject()), line)
}

func (d *decoder) setField(obj *Object, key string, quoted bool, v Value, line *scannedLine) error {
	if obj.TrySetQuoted(key, quoted, v) {
		return nil
	}

	if d.opts.strict {
		return newDecodeError(KindDuplicateKey, line.lineNo, line.indent+1, "duplicate key %q", key)
	}

	logDowngrade(KindDuplicateKey, line.lineNo, line.indent+1, "duplicate key %q, overwriting previous value", key)

	obj.SetQuoted(key, quoted, v)

	return nil
}

func decodeKeyToken(head string) (string, bool, error) {
	if len(head) >= 2 && head[0] == '"' && head[len(head)-1] == '"' {
		s, err := unquoteString(head[1 : len(head)-1])
		return s, true, err
	}

	return head, false, nil
}

// decodeArrayFromHeader consumes the body of an array introduced by hdr,
// which was found on a line at depth (the header line itself sits at
// depth; elements sit at depth+1), per spec section 4.8 step 3.
func (d *decoder) decodeArrayFromHeader(hdr *headerInfo, depth int, lineNo int, inline string) (Value, error) {
	switch {
	case hdr.HasFields:
		return d.decodeTabularRows(hdr, depth, lineNo)
	case hdr.Length == 0:
		if inline != "" {
			if d.opts.strict {
				return Value{}, newDecodeError(KindDeclaredLengthMismatch, lineNo, 0,
					"array declared length 0 but inline content follows")
			}

			logDowngrade(KindDeclaredLengthMismatch, lineNo, 0,
				"array declared length 0 but inline content follows, ignoring it")
		}

		return Array(nil), nil
	case inline != "":
		return d.decodeInlineArray(hdr, inline, lineNo)
	default:
		return d.decodeListArray(hdr, depth, lineNo)
	}
}

func (d *decoder) decodeInlineArray(hdr *headerInfo, inline string, lineNo int) (Value, error) {
	tokens, err := splitDelimited(inline, hdr.Delim.rune())
	if err != nil {
		return Value{}, withPosition(err, lineNo, 0)
	}

	if len(tokens) != hdr.Length {
		if d.opts.strict {
			return Value{}, newDecodeError(KindDeclaredLengthMismatch, lineNo, 0,
				"array declared length %d but found %d elements", hdr.Length, len(tokens))
		}

		logDowngrade(KindDeclaredLengthMismatch, lineNo, 0,
			"array declared length %d but found %d elements, using %d", hdr.Length, len(tokens), len(tokens))
	}

	n := hdr.Length
	if !d.opts.strict {
		n = len(tokens)
	}

	items := make([]Value, 0, n)

	for i := 0; i < n && i < len(tokens); i++ {
		v, err := decodeScalarToken(tokens[i], lineNo, 0, d.opts.strict)
		if err != nil {
			return Value{}, err
		}

		items = append(items, v)
	}

	return Array(items), nil
}

func (d *decoder) decodeTabularRows(hdr *headerInfo, depth int, lineNo int) (Value, error) {
	rows := make([]Value, 0, hdr.Length)

	for i := 0; i < hdr.Length; i++ {
		line, ok := d.peek()
		if !ok || line.depth != depth+1 || isListItemLine(line.content) {
			if d.opts.strict {
				return Value{}, newDecodeError(KindDeclaredLengthMismatch, lineNo, 0,
					"array declared length %d but only %d rows present", hdr.Length, i)
			}

			logDowngrade(KindDeclaredLengthMismatch, lineNo, 0,
				"array declared length %d but only %d rows present", hdr.Length, i)

			break
		}

		d.next()

		tokens, err := splitDelimited(line.content, hdr.Delim.rune())
		if err != nil {
			return Value{}, withPosition(err, line.lineNo, 0)
		}

		if len(tokens) != len(hdr.Fields) {
			kind := KindMissingField
			if len(tokens) > len(hdr.Fields) {
				kind = KindExtraField
			}

			if d.opts.strict {
				return Value{}, newDecodeError(kind, line.lineNo, line.indent+1,
					"row has %d fields, header declares %d", len(tokens), len(hdr.Fields))
			}

			logDowngrade(kind, line.lineNo, line.indent+1,
				"row has %d fields, header declares %d, padding or truncating", len(tokens), len(hdr.Fields))
		}

		obj := NewObject()

		for idx, name := range hdr.Fields {
			if idx >= len(tokens) {
				obj.Set(name, Null())
				continue
			}

			v, err := decodeScalarToken(tokens[idx], line.lineNo, 0, d.opts.strict)
			if err != nil {
				return Value{}, err
			}

			obj.Set(name, v)
		}

		rows = append(rows, Obj(obj))
	}

	if next, ok := d.peek(); ok && next.depth == depth+1 && !isListItemLine(next.content) {
		if d.opts.strict {
			return Value{}, newDecodeError(KindDeclaredLengthMismatch, lineNo, 0,
				"array declared length %d but more rows follow", hdr.Length)
		}

		logDowngrade(KindDeclaredLengthMismatch, lineNo, 0,
			"array declared length %d but more rows follow, ignoring extras", hdr.Length)
	}

	return Array(rows), nil
}

func (d *decoder) decodeListArray(hdr *headerInfo, depth int, lineNo int) (Value, error) {
	items := make([]Value, 0, hdr.Length)

	for i := 0; i < hdr.Length; i++ {
		line, ok := d.peek()
		if !ok || line.depth != depth+1 || !isListItemLine(line.content) {
			if d.opts.strict {
				return Value{}, newDecodeError(KindDeclaredLengthMismatch, lineNo, 0,
					"array declared length %d but only %d items present", hdr.Length, i)
			}

			logDowngrade(KindDeclaredLengthMismatch, lineNo, 0,
				"array declared length %d but only %d items present", hdr.Length, i)

			break
		}

		v, err := d.decodeListItem(depth + 1)
		if err != nil {
			return Value{}, err
		}

		items = append(items, v)
	}

	if next, ok := d.peek(); ok && next.depth == depth+1 && isListItemLine(next.content) {
		if d.opts.strict {
			return Value{}, newDecodeError(KindDeclaredLengthMismatch, lineNo, 0,
				"array declared length %d but more items follow", hdr.Length)
		}

		logDowngrade(KindDeclaredLengthMismatch, lineNo, 0,
			"array declared length %d but more items follow, ignoring extras", hdr.Length)
	}

	return Array(items), nil
}

// decodeListItem decodes one "- ..." element at depth, per spec section
// 4.8 step 5 and the object-list-item continuation rule.
func (d *decoder) decodeListItem(depth int) (Value, error) {
	line, ok := d.peek()
	if !ok || line.depth != depth || !isListItemLine(line.content) {
		return Value{}, newDecodeError(KindUnexpectedHeader, 0, 0, "expected a list item")
	}

	d.next()

	body := listItemBody(line.content)

	if body == "" {
		child, err := d.decodeObjectBody(depth + 1)
		if err != nil {
			return Value{}, err
		}

		return Obj(child), nil
	}

	if body == "{}" {
		return Obj(NewObject()), nil
	}

	colonIdx := findTopLevelColon(body)
	if colonIdx == -1 {
		return decodeScalarToken(body, line.lineNo, 3, d.opts.strict)
	}

	head := body[:colonIdx]
	rest := trimOneLeadingSpace(body[colonIdx+1:])

	hdr, err := parseHeader(head, line.lineNo)
	if err != nil {
		return Value{}, err
	}

	if hdr != nil {
		return d.decodeListItemHeader(hdr, depth, line, rest)
	}

	return d.decodeListItemField(head, rest, depth, line)
}

func (d *decoder) decodeListItemHeader(hdr *headerInfo, depth int, line *scannedLine, rest string) (Value, error) {
	arrVal, err := d.decodeArrayFromHeader(hdr, depth, line.lineNo, rest)
	if err != nil {
		return Value{}, err
	}

	if !hdr.HasKey {
		return arrVal, nil
	}

	obj := NewObject()
	obj.SetQuoted(hdr.Key, hdr.KeyQuoted, arrVal)

	next, has := d.peek()
	if has && next.depth == depth+1 && !isListItemLine(next.content) {
		cont, err := d.decodeObjectBody(depth + 1)
		if err != nil {
			return Value{}, err
		}

		if err := d.mergeInto(obj, cont, line); err != nil {
			return Value{}, err
		}
	}

	return Obj(obj), nil
}

func (d *decoder) decodeListItemField(head, rest string, depth int, line *scannedLine) (Value, error) {
	key, quotedKey, err := decodeKeyToken(head)
	if err != nil {
		return Value{}, withPosition(err, line.lineNo, 3)
	}

	obj := NewObject()

	if rest == "" {
		// The first field's value is itself an object or empty object.
		// This line's own indentation rules the whole item's body: there
		// is no syntax to distinguish further sibling fields of the list
		// item from the nested object's own fields, so (matching what
		// this package's own encoder ever produces) they are treated as
		// one and the same scope.
		child, err := d.decodeObjectBody(depth + 1)
		if err != nil {
			return Value{}, err
		}

		obj.SetQuoted(key, quotedKey, Obj(child))

		return Obj(obj), nil
	}

	v, err := decodeScalarToken(rest, line.lineNo, 0, d.opts.strict)
	if err != nil {
		return Value{}, err
	}

	obj.SetQuoted(key, quotedKey, v)

	next, has := d.peek()
	if has && next.depth == depth+1 && !isListItemLine(next.content) {
		cont, err := d.decodeObjectBody(depth + 1)
		if err != nil {
			return Value{}, err
		}

		if err := d.mergeInto(obj, cont, line); err != nil {
			return Value{}, err
		}
	}

	return Obj(obj), nil
}

func (d *decoder) mergeInto(dst, src *Object, line *scannedLine) error {
	for _, f := range src.Fields() {
		if err := d.setField(dst, f.Key, f.Quoted, f.Value, line); err != nil {
			return err
		}
	}

	return nil
}

// decodeScalarToken decodes one primitive token (quoted or bare) found at
// lineNo/col, applying strict-mode numeric-leading-zero and
// unterminated-string checks.
func decodeScalarToken(tok string, lineNo, col int, strict bool) (Value, error) {
	if len(tok) > 0 && tok[0] == '"' {
		if len(tok) < 2 || tok[len(tok)-1] != '"' {
			return Value{}, newDecodeError(KindUnterminatedString, lineNo, col, "unterminated quoted string")
		}

		s, err := unquoteString(tok[1 : len(tok)-1])
		if err != nil {
			return Value{}, withPosition(err, lineNo, col)
		}

		return String(s), nil
	}

	if strict && hasNumericLeadingZero(tok) {
		return Value{}, newDecodeError(KindNumericLeadingZero, lineNo, col,
			"numeric literal %q has a disallowed leading zero", tok)
	}

	return decodePrimitiveToken(tok), nil
}
