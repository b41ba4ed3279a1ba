package toon

import "strings"

// EventKind identifies the shape of one streaming decode [Event].
type EventKind int

// Event kinds, per spec section 4.10.
const (
	EventStartObject EventKind = iota
	EventEndObject
	EventStartArray
	EventEndArray
	EventKey
	EventPrimitive
)

func (k EventKind) String() string {
	switch k {
	case EventStartObject:
		return "startObject"
	case EventEndObject:
		return "endObject"
	case EventStartArray:
		return "startArray"
	case EventEndArray:
		return "endArray"
	case EventKey:
		return "key"
	case EventPrimitive:
		return "primitive"
	default:
		return "unknown"
	}
}

// Event is one tagged record of the streaming decoder's output, in strict
// document order (depth-first, left-to-right). Only the fields relevant to
// Kind are populated: Key/KeyQuoted for [EventKey], Value for
// [EventPrimitive], Length for [EventStartArray].
type Event struct {
	Kind      EventKind
	Key       string
	KeyQuoted bool
	Value     Value
	Length    int
}

// LineSource is a pull-based source of text lines, consumed by
// [DecodeStream]. Each call returns the next line (without its trailing
// LF) and true, or "" and false once exhausted.
type LineSource func() (string, bool)

// SliceLineSource adapts a pre-split slice of lines into a [LineSource].
func SliceLineSource(lines []string) LineSource {
	i := 0

	return func() (string, bool) {
		if i >= len(lines) {
			return "", false
		}

		line := lines[i]
		i++

		return line, true
	}
}

// LineIterSource adapts a [LineIter] (as produced by [EncodeLines]) into a
// [LineSource], letting a caller pipe an encoded document directly into
// [DecodeStream] without calling [LineIter.Next] by hand. DecodeStream
// still joins the lines it reads into one text before scanning it.
func LineIterSource(it *LineIter) LineSource {
	return it.Next
}

// EventIter is a pull-based iterator over the events produced by
// [DecodeStream]. Call Next until it reports false.
type EventIter struct {
	sd *streamDecoder
}

// Next advances the iterator. It returns the next event and true,
// (Event{}, false, nil) once the document is fully consumed, or a non-nil
// error if the input is malformed.
func (it *EventIter) Next() (Event, bool, error) {
	return it.sd.next()
}

// DecodeStream parses lines into a stream of JSON-model events instead of
// building a value tree, per spec section 4.10. expandPaths is not
// available in streaming mode, since path expansion requires a full pass
// over the decoded object; supplying anything but [ExpandPathsOff] returns
// a [ConfigError]. DecodeStream reads every line from src and scans the
// whole text before it returns, so scan errors are reported here rather
// than from [EventIter.Next].
func DecodeStream(src LineSource, opts ...DecodeOption) (*EventIter, error) {
	o, err := resolveDecoderOptions(opts...)
	if err != nil {
		return nil, err
	}

	if o.expandPaths != ExpandPathsOff {
		return nil, newConfigError("expandPaths", "path expansion is not available for streaming decode")
	}

	var b strings.Builder

	for first := true; ; first = false {
		line, ok := src()
		if !ok {
			break
		}

		if !first {
			b.WriteByte('\n')
		}

		b.WriteString(line)
	}

	lines, err := scanLines(b.String(), o.indent, o.strict)
	if err != nil {
		return nil, err
	}

	return &EventIter{sd: &streamDecoder{lines: lines, strict: o.strict}}, nil
}

// frameKind identifies what kind of open container a stack frame tracks.
type frameKind int

const (
	frameObject frameKind = iota
	frameArrayInline
	frameArrayTabular
	frameArrayList
)

// seedField carries a field already parsed from its source line (an
// ordinary "key: value"/"key:"/"key[N]:" line, or the first field riding on
// a list item's "- " line) whose Key event has not yet been emitted.
type seedField struct {
	key       string
	quoted    bool
	hdr       *headerInfo // non-nil when the field's value is an array
	rest      string
	lineNo    int
	primitive bool
	primVal   Value
}

// frame is one entry of the streaming decoder's explicit stack, replacing
// recursion. The stack grows with nesting depth; the scanned lines of the
// whole document are held in full alongside it.
type frame struct {
	kind  frameKind
	depth int // depth of this container's content (fields, or elements)

	// frameObject
	seed      *seedField
	seedState int // 0 idle, 1 emit key next, 2 emit value next

	// frameArrayInline
	tokens    []string
	tokenIdx  int
	remaining int
	lineNo    int

	// frameArrayTabular
	fields        []string
	delim         rune
	inRow         bool
	rowKeyEmitted bool
	rowFieldIdx   int
	rowTokens     []string
}

type streamDecoder struct {
	lines   []scannedLine
	pos     int
	strict  bool
	stack   []frame
	started bool
	done    bool
}

func (sd *streamDecoder) next() (Event, bool, error) {
	if sd.done {
		return Event{}, false, nil
	}

	var (
		ev  Event
		ok  bool
		err error
	)

	if !sd.started {
		sd.started = true
		ev, ok, err = sd.start()
	} else if len(sd.stack) == 0 {
		sd.done = true
		return Event{}, false, nil
	} else {
		ev, ok, err = sd.step(&sd.stack[len(sd.stack)-1])
	}

	if err != nil {
		sd.done = true
		return Event{}, false, err
	}

	return ev, ok, nil
}

func (sd *streamDecoder) start() (Event, bool, error) {
	if sd.pos >= len(sd.lines) {
		sd.stack = append(sd.stack, frame{kind: frameObject, depth: 0})
		return Event{Kind: EventStartObject}, true, nil
	}

	first := &sd.lines[sd.pos]

	colonIdx := findTopLevelColon(first.content)
	if colonIdx == -1 {
		sd.pos++

		v, err := decodeScalarToken(first.content, first.lineNo, 1, sd.strict)
		if err != nil {
			return Event{}, false, err
		}

		sd.done = true

		return Event{Kind: EventPrimitive, Value: v}, true, nil
	}

	head := first.content[:colonIdx]

	hdr, err := parseHeader(head, first.lineNo)
	if err != nil {
		return Event{}, false, err
	}

	if hdr != nil && !hdr.HasKey {
		sd.pos++
		rest := trimOneLeadingSpace(first.content[colonIdx+1:])

		return sd.pushArrayFrame(hdr, 0, first.lineNo, rest)
	}

	sd.stack = append(sd.stack, frame{kind: frameObject, depth: 0})

	return Event{Kind: EventStartObject}, true, nil
}

func (sd *streamDecoder) step(f *frame) (Event, bool, error) {
	switch f.kind {
	case frameObject:
		return sd.stepObject(f)
	case frameArrayInline:
		return sd.stepArrayInline(f)
	case frameArrayTabular:
		return sd.stepArrayTabular(f)
	default:
		return sd.stepArrayList(f)
	}
}

func (sd *streamDecoder) closeFrame(end Event) (Event, bool, error) {
	sd.stack = sd.stack[:len(sd.stack)-1]
	if len(sd.stack) == 0 {
		sd.done = true
	}

	return end, true, nil
}

func (sd *streamDecoder) stepObject(f *frame) (Event, bool, error) {
	if f.seed != nil {
		if f.seedState == 1 {
			f.seedState = 2
			return Event{Kind: EventKey, Key: f.seed.key, KeyQuoted: f.seed.quoted}, true, nil
		}

		seed := f.seed
		f.seed = nil
		f.seedState = 0

		if seed.primitive {
			return Event{Kind: EventPrimitive, Value: seed.primVal}, true, nil
		}

		if seed.hdr != nil {
			return sd.pushArrayFrame(seed.hdr, f.depth, seed.lineNo, seed.rest)
		}

		sd.stack = append(sd.stack, frame{kind: frameObject, depth: f.depth + 1})

		return Event{Kind: EventStartObject}, true, nil
	}

	if sd.pos >= len(sd.lines) {
		return sd.closeFrame(Event{Kind: EventEndObject})
	}

	line := &sd.lines[sd.pos]

	if line.depth < f.depth {
		return sd.closeFrame(Event{Kind: EventEndObject})
	}

	if line.depth > f.depth {
		if sd.strict {
			return Event{}, false, newDecodeError(KindUnexpectedDedent, line.lineNo, line.indent+1,
				"unexpected indentation increase")
		}

		return sd.closeFrame(Event{Kind: EventEndObject})
	}

	if isListItemLine(line.content) {
		if sd.strict {
			return Event{}, false, newDecodeError(KindUnexpectedHeader, line.lineNo, line.indent+1,
				"expected a field, found a list item")
		}

		return sd.closeFrame(Event{Kind: EventEndObject})
	}

	sd.pos++

	colonIdx := findTopLevelColon(line.content)
	if colonIdx == -1 {
		return Event{}, false, newDecodeError(KindMissingColon, line.lineNo, line.indent+1,
			"expected a field or header, found a bare value")
	}

	head := line.content[:colonIdx]
	rest := trimOneLeadingSpace(line.content[colonIdx+1:])

	hdr, err := parseHeader(head, line.lineNo)
	if err != nil {
		return Event{}, false, err
	}

	if hdr != nil {
		f.seed = &seedField{key: hdr.Key, quoted: hdr.KeyQuoted, hdr: hdr, rest: rest, lineNo: line.lineNo}
		f.seedState = 1

		return sd.stepObject(f)
	}

	key, quotedKey, err := decodeKeyToken(head)
	if err != nil {
		return Event{}, false, withPosition(err, line.lineNo, 1)
	}

	if rest != "" {
		v, err := decodeScalarToken(rest, line.lineNo, colonIdx+2, sd.strict)
		if err != nil {
			return Event{}, false, err
		}

		f.seed = &seedField{key: key, quoted: quotedKey, primitive: true, primVal: v, lineNo: line.lineNo}
	} else {
		f.seed = &seedField{key: key, quoted: quotedKey, lineNo: line.lineNo}
	}

	f.seedState = 1

	return sd.stepObject(f)
}

// pushArrayFrame opens an array found in a header at depth (the header
// line's own depth; elements live at depth+1) and returns its StartArray
// event.
func (sd *streamDecoder) pushArrayFrame(hdr *headerInfo, depth, lineNo int, rest string) (Event, bool, error) {
	switch {
	case hdr.HasFields:
		sd.stack = append(sd.stack, frame{
			kind: frameArrayTabular, depth: depth + 1,
			fields: hdr.Fields, delim: hdr.Delim.rune(), remaining: hdr.Length, lineNo: lineNo,
		})
	case hdr.Length == 0:
		sd.stack = append(sd.stack, frame{kind: frameArrayList, depth: depth + 1, remaining: 0, lineNo: lineNo})
	case rest != "":
		tokens, err := splitDelimited(rest, hdr.Delim.rune())
		if err != nil {
			return Event{}, false, withPosition(err, lineNo, 0)
		}

		n := hdr.Length
		if !sd.strict {
			n = len(tokens)
		}

		sd.stack = append(sd.stack, frame{kind: frameArrayInline, tokens: tokens, remaining: n, lineNo: lineNo})
	default:
		sd.stack = append(sd.stack, frame{kind: frameArrayList, depth: depth + 1, remaining: hdr.Length, lineNo: lineNo})
	}

	return Event{Kind: EventStartArray, Length: hdr.Length}, true, nil
}

func (sd *streamDecoder) stepArrayInline(f *frame) (Event, bool, error) {
	if f.tokenIdx >= f.remaining || f.tokenIdx >= len(f.tokens) {
		return sd.closeFrame(Event{Kind: EventEndArray})
	}

	tok := f.tokens[f.tokenIdx]
	f.tokenIdx++

	v, err := decodeScalarToken(tok, f.lineNo, 0, sd.strict)
	if err != nil {
		return Event{}, false, err
	}

	return Event{Kind: EventPrimitive, Value: v}, true, nil
}

func (sd *streamDecoder) stepArrayTabular(f *frame) (Event, bool, error) {
	if !f.inRow {
		if f.remaining == 0 {
			return sd.closeFrame(Event{Kind: EventEndArray})
		}

		if sd.pos >= len(sd.lines) || sd.lines[sd.pos].depth != f.depth || isListItemLine(sd.lines[sd.pos].content) {
			if sd.strict {
				return Event{}, false, newDecodeError(KindDeclaredLengthMismatch, f.lineNo, 0,
					"array declared more rows than are present")
			}

			return sd.closeFrame(Event{Kind: EventEndArray})
		}

		line := &sd.lines[sd.pos]
		sd.pos++

		tokens, err := splitDelimited(line.content, f.delim)
		if err != nil {
			return Event{}, false, withPosition(err, line.lineNo, 0)
		}

		if sd.strict && len(tokens) != len(f.fields) {
			kind := KindMissingField
			if len(tokens) > len(f.fields) {
				kind = KindExtraField
			}

			return Event{}, false, newDecodeError(kind, line.lineNo, line.indent+1,
				"row has %d fields, header declares %d", len(tokens), len(f.fields))
		}

		f.rowTokens = tokens
		f.rowFieldIdx = 0
		f.rowKeyEmitted = false
		f.inRow = true
		f.remaining--
		f.lineNo = line.lineNo

		return Event{Kind: EventStartObject}, true, nil
	}

	if f.rowFieldIdx >= len(f.fields) {
		f.inRow = false
		return Event{Kind: EventEndObject}, true, nil
	}

	if !f.rowKeyEmitted {
		f.rowKeyEmitted = true
		return Event{Kind: EventKey, Key: f.fields[f.rowFieldIdx]}, true, nil
	}

	tok := ""
	if f.rowFieldIdx < len(f.rowTokens) {
		tok = f.rowTokens[f.rowFieldIdx]
	}

	v, err := decodeScalarToken(tok, f.lineNo, 0, sd.strict)
	if err != nil {
		return Event{}, false, err
	}

	f.rowFieldIdx++
	f.rowKeyEmitted = false

	return Event{Kind: EventPrimitive, Value: v}, true, nil
}

func (sd *streamDecoder) stepArrayList(f *frame) (Event, bool, error) {
	if f.remaining <= 0 {
		if sd.strict {
			if sd.pos < len(sd.lines) && sd.lines[sd.pos].depth == f.depth && isListItemLine(sd.lines[sd.pos].content) {
				return Event{}, false, newDecodeError(KindDeclaredLengthMismatch, f.lineNo, 0,
					"array declared fewer items than are present")
			}
		}

		return sd.closeFrame(Event{Kind: EventEndArray})
	}

	if sd.pos >= len(sd.lines) || sd.lines[sd.pos].depth != f.depth || !isListItemLine(sd.lines[sd.pos].content) {
		if sd.strict {
			return Event{}, false, newDecodeError(KindDeclaredLengthMismatch, f.lineNo, 0,
				"array declared more items than are present")
		}

		return sd.closeFrame(Event{Kind: EventEndArray})
	}

	line := &sd.lines[sd.pos]
	sd.pos++
	f.remaining--

	body := listItemBody(line.content)

	if body == "" || body == "{}" {
		sd.stack = append(sd.stack, frame{kind: frameObject, depth: f.depth + 1})
		return Event{Kind: EventStartObject}, true, nil
	}

	colonIdx := findTopLevelColon(body)
	if colonIdx == -1 {
		v, err := decodeScalarToken(body, line.lineNo, 3, sd.strict)
		if err != nil {
			return Event{}, false, err
		}

		return Event{Kind: EventPrimitive, Value: v}, true, nil
	}

	head := body[:colonIdx]
	rest := trimOneLeadingSpace(body[colonIdx+1:])

	hdr, err := parseHeader(head, line.lineNo)
	if err != nil {
		return Event{}, false, err
	}

	if hdr != nil {
		if !hdr.HasKey {
			return sd.pushArrayFrame(hdr, f.depth, line.lineNo, rest)
		}

		seed := &seedField{key: hdr.Key, quoted: hdr.KeyQuoted, hdr: hdr, rest: rest, lineNo: line.lineNo}
		sd.stack = append(sd.stack, frame{kind: frameObject, depth: f.depth + 1, seed: seed, seedState: 1})

		return Event{Kind: EventStartObject}, true, nil
	}

	key, quotedKey, err := decodeKeyToken(head)
	if err != nil {
		return Event{}, false, withPosition(err, line.lineNo, 3)
	}

	var seed *seedField

	if rest != "" {
		v, err := decodeScalarToken(rest, line.lineNo, 0, sd.strict)
		if err != nil {
			return Event{}, false, err
		}

		seed = &seedField{key: key, quoted: quotedKey, primitive: true, primVal: v, lineNo: line.lineNo}
	} else {
		seed = &seedField{key: key, quoted: quotedKey, lineNo: line.lineNo}
	}

	sd.stack = append(sd.stack, frame{kind: frameObject, depth: f.depth + 1, seed: seed, seedState: 1})

	return Event{Kind: EventStartObject}, true, nil
}
