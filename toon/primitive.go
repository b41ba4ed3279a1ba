package toon

import (
	"regexp"
	"strconv"
	"strings"
)

// numericLiteralRE matches the exact numeric literal grammar of spec section
// 4.2.1: an optional minus, an integer part with no leading zeros (unless
// it is exactly "0"), and an optional fractional part. No exponent form is
// recognized; anything else decodes as a string.
var numericLiteralRE = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?$`)

// isNumericLiteral reports whether s matches the numeric literal grammar.
func isNumericLiteral(s string) bool {
	return numericLiteralRE.MatchString(s)
}

// formatNumber renders f as the shortest non-exponential decimal
// representation of its canonical double value: integers have no decimal
// point, and no exponent form is ever produced.
func formatNumber(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)

	// strconv with 'f' and prec -1 never emits an exponent, but guard
	// against "-0" surfacing from a value that slipped past Number's own
	// canonicalization (e.g. constructed via the zero Value).
	if s == "-0" {
		return "0"
	}

	return s
}

// isBooleanOrNullLiteral reports whether s is exactly "true", "false", or
// "null" — the literals a safe unquoted string must not collide with.
func isBooleanOrNullLiteral(s string) bool {
	switch s {
	case "true", "false", "null":
		return true
	default:
		return false
	}
}

// looksNumericAmbiguous reports whether s, though not itself a numeric
// literal, begins in a way that a numeric-literal-first reader could
// misparse: a leading '.' or a leading '+' followed by digits.
func looksNumericAmbiguous(s string) bool {
	if s == "" {
		return false
	}

	if s[0] == '.' {
		return true
	}

	if s[0] == '+' && len(s) > 1 && isASCIIDigit(s[1]) {
		return true
	}

	return false
}

func isASCIIDigit(b byte) bool { return b >= '0' && b <= '9' }

// isStructuralLeadChar reports whether r, as the first rune of a string,
// would make the string look like a structural token when unquoted.
func isStructuralLeadChar(r rune) bool {
	switch r {
	case '[', ']', '{', '}', '-':
		return true
	default:
		return false
	}
}

// isSafeUnquoted reports whether s may be emitted without quotes given the
// active delimiter, per spec section 4.2.
func isSafeUnquoted(s string, delim rune) bool {
	if s == "" {
		return false
	}

	if strings.TrimSpace(s) != s {
		return false
	}

	if isBooleanOrNullLiteral(s) || isNumericLiteral(s) || looksNumericAmbiguous(s) {
		return false
	}

	first := rune(s[0])
	if isStructuralLeadChar(first) {
		return false
	}

	for _, r := range s {
		switch r {
		case delim, ':', '"', '\\', '\n', '\r', '#':
			return false
		}

		if r < 0x20 {
			return false
		}
	}

	return true
}

// quoteString renders s as a double-quoted TOON string literal, escaping
// only the recognized escape alphabet: backslash, double quote, newline,
// carriage return, and tab.
func quoteString(s string) string {
	var b strings.Builder

	b.Grow(len(s) + 2)
	b.WriteByte('"')

	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}

	b.WriteByte('"')

	return b.String()
}

// encodePrimitive renders v as its TOON token: the bare literal for null,
// booleans, and numbers, and either a bare or quoted string for
// KindString depending on quoteStrings and safety under delim.
func encodePrimitive(v Value, delim rune, quoteStrings bool) string {
	switch v.Kind() {
	case KindNull:
		return "null"
	case KindBool:
		b, _ := v.Bool()
		if b {
			return "true"
		}

		return "false"
	case KindNumber:
		n, _ := v.Num()
		return formatNumber(n)
	case KindString:
		s, _ := v.Str()
		if !quoteStrings && isSafeUnquoted(s, delim) {
			return s
		}

		return quoteString(s)
	default:
		return ""
	}
}

// unquoteString unescapes the interior of a double-quoted token (quoted
// must not include the surrounding quotes). It accepts only the recognized
// escape alphabet; any other backslash sequence is a malformed escape, and
// an escape truncated at end of string is likewise rejected.
func unquoteString(quoted string) (string, error) {
	var b strings.Builder

	b.Grow(len(quoted))

	i := 0
	for i < len(quoted) {
		c := quoted[i]
		if c != '\\' {
			b.WriteByte(c)
			i++

			continue
		}

		if i+1 >= len(quoted) {
			return "", errMalformedEscape
		}

		switch quoted[i+1] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			return "", errMalformedEscape
		}

		i += 2
	}

	return b.String(), nil
}

// errMalformedEscape is a package-local sentinel wrapped into a
// *DecodeError with position information by callers that know the line and
// column of the offending token.
var errMalformedEscape = newDecodeError(KindMalformedEscape, 0, 0, "unrecognized escape sequence")

// decodePrimitiveToken decodes one bare (unquoted) token per spec section
// 4.2: the literals true/false/null, a value matching the numeric literal
// grammar, or else a bare string.
func decodePrimitiveToken(tok string) Value {
	switch tok {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	case "null":
		return Null()
	}

	if isNumericLiteral(tok) {
		f, err := strconv.ParseFloat(tok, 64)
		if err == nil {
			return Number(f)
		}
	}

	return String(tok)
}

// leadingZeroRE matches a token that is a numeric literal in every respect
// except a leading zero followed by more digits, e.g. "01" or "-00.5".
var leadingZeroRE = regexp.MustCompile(`^-?0[0-9]+(\.[0-9]+)?$`)

// hasNumericLeadingZero reports whether tok looks like an attempted
// numeric literal with a disallowed leading zero, e.g. "01" or "-00.5",
// used by the decoder to raise KindNumericLeadingZero instead of silently
// treating the token as a string. Tokens that merely start with such digits,
// like "007bond", are not numeric-like and do not match.
func hasNumericLeadingZero(tok string) bool {
	return leadingZeroRE.MatchString(tok)
}
