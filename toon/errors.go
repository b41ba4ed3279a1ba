package toon

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the codec. Use [errors.Is] to test for a
// particular kind; use [errors.As] against [*DecodeError] or [*ConfigError]
// to retrieve structured diagnostics.
var (
	// ErrConfig indicates an invalid option value was supplied to Encode,
	// Decode, or one of their iterator variants.
	ErrConfig = errors.New("toon: invalid configuration")

	// ErrSyntax indicates the scanner or header parser found a malformed
	// token: an unterminated quoted string, an invalid escape, a malformed
	// header, a missing colon, or a bad bracket segment.
	ErrSyntax = errors.New("toon: syntax error")

	// ErrIndentation indicates tabs in indentation, a non-multiple indent,
	// or an unexpected dedent mid-element.
	ErrIndentation = errors.New("toon: indentation error")

	// ErrStructure indicates a declared array length mismatch, a
	// missing/extra tabular field, a list item where a field was expected,
	// or a duplicate key within one object.
	ErrStructure = errors.New("toon: structure error")

	// ErrPathConflict indicates a strict-mode path-expansion collision.
	ErrPathConflict = errors.New("toon: path expansion conflict")
)

// ErrorKind classifies a [*DecodeError] by which sentinel it wraps, for
// callers that want to branch without repeated errors.Is calls.
type ErrorKind string

// Decoder error kinds, matching the taxonomy of spec section 7.
const (
	KindDeclaredLengthMismatch ErrorKind = "declared-length-mismatch"
	KindMissingField           ErrorKind = "missing-field"
	KindExtraField             ErrorKind = "extra-field"
	KindBadIndentation         ErrorKind = "bad-indentation"
	KindTabInIndent            ErrorKind = "tab-in-indent"
	KindUnexpectedDedent       ErrorKind = "unexpected-dedent"
	KindUnexpectedHeader       ErrorKind = "unexpected-header"
	KindDuplicateKey           ErrorKind = "duplicate-key"
	KindMalformedEscape        ErrorKind = "malformed-escape"
	KindUnterminatedString     ErrorKind = "unterminated-string"
	KindTrailingWhitespace     ErrorKind = "trailing-whitespace"
	KindExtraTrailingNewline   ErrorKind = "extra-trailing-newline"
	KindNumericLeadingZero     ErrorKind = "numeric-leading-zero"
	KindMalformedHeader        ErrorKind = "malformed-header"
	KindMissingColon           ErrorKind = "missing-colon"
	KindPathConflict           ErrorKind = "path-conflict"
)

// sentinel maps an ErrorKind to the broad category sentinel it wraps.
func (k ErrorKind) sentinel() error {
	switch k {
	case KindBadIndentation, KindTabInIndent, KindUnexpectedDedent:
		return ErrIndentation
	case KindDeclaredLengthMismatch, KindMissingField, KindExtraField,
		KindDuplicateKey, KindUnexpectedHeader:
		return ErrStructure
	case KindPathConflict:
		return ErrPathConflict
	default:
		return ErrSyntax
	}
}

// DecodeError is returned by [Decode], [DecodeStream], and [EventIter.Next]
// when the input text fails to parse. It reports the location
// and category of the first failure encountered; the decoder fails fast and
// does not attempt to collect further errors.
type DecodeError struct {
	Kind    ErrorKind
	Line    int // 1-based line number, 0 if not applicable
	Column  int // 1-based column, best-effort, 0 if unknown
	Message string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Line > 0 {
		if e.Column > 0 {
			return fmt.Sprintf("toon: line %d, column %d: %s: %s", e.Line, e.Column, e.Kind, e.Message)
		}

		return fmt.Sprintf("toon: line %d: %s: %s", e.Line, e.Kind, e.Message)
	}

	return fmt.Sprintf("toon: %s: %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is(err, ErrSyntax / ErrStructure / ErrIndentation /
// ErrPathConflict) to succeed against a *DecodeError.
func (e *DecodeError) Unwrap() error { return e.Kind.sentinel() }

func newDecodeError(kind ErrorKind, line, col int, format string, args ...any) *DecodeError {
	return &DecodeError{
		Kind:    kind,
		Line:    line,
		Column:  col,
		Message: fmt.Sprintf(format, args...),
	}
}

// ConfigError reports an invalid encoder or decoder option.
type ConfigError struct {
	Option  string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("toon: invalid option %s: %s", e.Option, e.Message)
}

// Unwrap allows errors.Is(err, ErrConfig) to succeed.
func (e *ConfigError) Unwrap() error { return ErrConfig }

func newConfigError(option, format string, args ...any) *ConfigError {
	return &ConfigError{Option: option, Message: fmt.Sprintf(format, args...)}
}

// ErrCycle is returned by [Normalize] when a host value graph contains a
// cycle. Normalization assumes a tree; cyclic structures are out of
// contract (spec section 9) and are reported rather than looped over.
var ErrCycle = errors.New("toon: cyclic value")
