package toon

import "strconv"

// headerInfo is the parsed form of a "key?[N<delim?>]{fields}?:" header
// line, per spec section 4.7.
type headerInfo struct {
	Key       string
	KeyQuoted bool
	HasKey    bool
	Length    int
	Delim     Delimiter
	Fields    []string
	HasFields bool
}

// findTopLevelColon scans s for the first ':' that is neither inside a
// double-quoted run nor inside a '[...]'/'{...}' bracket segment. It
// returns -1 when no such colon exists, which the decoder takes to mean
// the line is a bare primitive rather than a field or header line. This is
// the single technique that lets a quoted string primitive containing a
// literal colon (e.g. "a,b: c") coexist with "key: value" syntax.
func findTopLevelColon(s string) int {
	depth := 0
	inQuote := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inQuote {
			if c == '\\' {
				i++
				continue
			}

			if c == '"' {
				inQuote = false
			}

			continue
		}

		switch c {
		case '"':
			inQuote = true
		case '[', '{':
			depth++
		case ']', '}':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

// findClosingQuote returns the index of the unescaped '"' that closes the
// quoted string starting at s[open] (s[open] must be '"'), or -1 if
// unterminated.
func findClosingQuote(s string, open int) int {
	for i := open + 1; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}

		if s[i] == '"' {
			return i
		}
	}

	return -1
}

// parseHeader attempts to parse head (the content before a line's top-level
// colon) as an array header. It returns (nil, nil) when head contains no
// top-level '[' at all, meaning the caller should treat the line as a
// plain key instead. A malformed bracket/brace/quote structure is a
// *DecodeError.
func parseHeader(head string, lineNo int) (*headerInfo, error) {
	i := 0

	var key string

	quoted := false
	hasKey := false

	if i < len(head) && head[i] == '"' {
		end := findClosingQuote(head, i)
		if end < 0 {
			return nil, newDecodeError(KindUnterminatedString, lineNo, i+1, "unterminated quoted key")
		}

		unescaped, err := unquoteString(head[i+1 : end])
		if err != nil {
			return nil, withPosition(err, lineNo, i+1)
		}

		key = unescaped
		quoted = true
		hasKey = true
		i = end + 1
	} else {
		start := i
		for i < len(head) && head[i] != '[' {
			i++
		}

		if i > start {
			key = head[start:i]
			hasKey = true
		}
	}

	if i >= len(head) || head[i] != '[' {
		if i != len(head) {
			return nil, newDecodeError(KindMalformedHeader, lineNo, i+1, "unexpected character before '['")
		}

		return nil, nil
	}

	i++ // consume '['

	bracketStart := i
	for i < len(head) && head[i] != ']' {
		i++
	}

	if i >= len(head) {
		return nil, newDecodeError(KindMalformedHeader, lineNo, bracketStart, "missing closing ']'")
	}

	length, delim, err := parseLengthAndDelim(head[bracketStart:i], lineNo, bracketStart)
	if err != nil {
		return nil, err
	}

	i++ // consume ']'

	info := &headerInfo{Key: key, KeyQuoted: quoted, HasKey: hasKey, Length: length, Delim: delim}

	if i < len(head) && head[i] == '{' {
		i++

		braceStart := i

		closeIdx, err := findMatchingBrace(head, i)
		if err != nil {
			return nil, withPosition(err, lineNo, braceStart)
		}

		fields, err := splitDelimited(head[braceStart:closeIdx], delim.rune())
		if err != nil {
			return nil, withPosition(err, lineNo, braceStart)
		}

		decoded := make([]string, len(fields))

		for idx, f := range fields {
			df, err := decodeFieldToken(f)
			if err != nil {
				return nil, withPosition(err, lineNo, braceStart)
			}

			decoded[idx] = df
		}

		info.Fields = decoded
		info.HasFields = true
		i = closeIdx + 1
	}

	if i != len(head) {
		return nil, newDecodeError(KindMalformedHeader, lineNo, i+1, "unexpected trailing characters in header")
	}

	return info, nil
}

func parseLengthAndDelim(s string, lineNo, col int) (int, Delimiter, error) {
	delim := DelimComma
	digits := s

	if len(s) > 0 {
		switch s[len(s)-1] {
		case '\t':
			delim = DelimTab
			digits = s[:len(s)-1]
		case '|':
			delim = DelimPipe
			digits = s[:len(s)-1]
		}
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, 0, newDecodeError(KindMalformedHeader, lineNo, col, "invalid array length %q", s)
	}

	return n, delim, nil
}

// findMatchingBrace returns the index of the '}' matching the '{' already
// consumed at open (open points just past it), honoring quoted runs.
func findMatchingBrace(s string, open int) (int, error) {
	for i := open; i < len(s); i++ {
		c := s[i]

		switch c {
		case '"':
			end := findClosingQuote(s, i)
			if end < 0 {
				return 0, newDecodeError(KindUnterminatedString, 0, 0, "unterminated quoted field name")
			}

			i = end
		case '}':
			return i, nil
		}
	}

	return 0, newDecodeError(KindMalformedHeader, 0, 0, "missing closing '}'")
}

// splitDelimited splits s on delim, treating double-quoted runs as opaque.
func splitDelimited(s string, delim rune) ([]string, error) {
	if s == "" {
		return nil, nil
	}

	var (
		out []string
		cur []byte
	)

	for i := 0; i < len(s); i++ {
		c := s[i]

		if c == '"' {
			end := findClosingQuote(s, i)
			if end < 0 {
				return nil, newDecodeError(KindUnterminatedString, 0, 0, "unterminated quoted field name")
			}

			cur = append(cur, s[i:end+1]...)
			i = end

			continue
		}

		if rune(c) == delim {
			out = append(out, string(cur))
			cur = nil

			continue
		}

		cur = append(cur, c)
	}

	out = append(out, string(cur))

	return out, nil
}

// decodeFieldToken decodes one header field-name token: quoted fields are
// unescaped, bare fields are taken literally.
func decodeFieldToken(tok string) (string, error) {
	if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
		return unquoteString(tok[1 : len(tok)-1])
	}

	return tok, nil
}

// withPosition rewrites a *DecodeError's line/column when it was built
// without position context (line 0), e.g. by primitive.go's shared
// errMalformedEscape sentinel.
func withPosition(err error, lineNo, col int) error {
	de, ok := err.(*DecodeError)
	if !ok {
		return err
	}

	if de.Line != 0 {
		return de
	}

	return &DecodeError{Kind: de.Kind, Line: lineNo, Column: col, Message: de.Message}
}
