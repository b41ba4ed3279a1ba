// Package toon implements Token-Oriented Object Notation, a line-oriented,
// indentation-based serialization format for the JSON data model designed
// to use fewer LLM tokens than JSON while remaining lossless.
//
// TOON has no surprises for anyone who has read JSON and YAML: scalars are
// written YAML-style without redundant braces and quotes, uniform arrays of
// objects are written as a single header plus one delimited row per
// element (dropping the per-element key repetition JSON pays for), and
// every array declares its own length so a decoder can validate structure
// without buffering the whole document.
//
// # Design Principles
//
//  1. Token economy over round-trip fidelity. The encoder is allowed to
//     reshape structure (collapsing single-key object chains into dotted
//     keys, detecting tabular runs) as long as a decoder configured with
//     the matching options can recover an object with the same data,
//     not necessarily the same syntax tree.
//
//  2. Declared lengths, not delimiters, bound collections. Every array
//     states its element count in its header; the decoder treats a
//     mismatch as a structural error in strict mode rather than silently
//     truncating or padding.
//
//  3. Strict by default, permissive by request. [Decode] defaults to
//     strict-mode validation (tabs in indentation, declared-length
//     mismatches, duplicate keys, and the rest of the taxonomy in
//     [DecodeError] all fail fast). [WithStrict](false) trades that for
//     best-effort recovery.
//
//  4. Streaming reads the same line format as the tree decoder.
//     [DecodeStream] emits [Event] values instead of building a [Value]
//     tree, using an explicit stack rather than recursion. It reads and
//     scans every input line before the first event, so memory grows with
//     document size; only the container stack is bounded by nesting depth.
//
// # Pipeline
//
// [Encode] and [EncodeLines] normalize a host value and render it through
// four stages:
//
//  1. Normalize: [Normalize] reduces an arbitrary Go value (struct, map,
//     slice, pointer, or a type implementing [Marshaler]) to the JSON data
//     model. Struct fields honor a "toon" tag, falling back to "json" for
//     drop-in compatibility with [encoding/json]-tagged types. NaN and
//     infinite floats become null; integers outside the 53-bit safe
//     range are emitted as quoted strings so a JSON-based
//     consumer never silently loses precision.
//
//  2. Key fold: when [WithKeyFolding] is [KeyFoldingSafe], chains of
//     single-key objects are collapsed into a single dotted key, bounded
//     by [WithFlattenDepth] and skipped wherever it would collide with a
//     literal sibling key.
//
//  3. Tabular detection: an array whose elements are all objects sharing
//     exactly the same key set, with every value primitive, is rendered
//     as a header naming the shared fields followed by one delimited row
//     per element, instead of one nested object per element.
//
//  4. Render: the result is written as indented lines, using [WithIndent]
//     spaces per depth level and [WithDelimiter] as the default row/array
//     separator.
//
// [Decode] and [DecodeStream] invert this: scan lines, parse headers,
// rebuild arrays and objects, and, when [WithExpandPaths] is
// [ExpandPathsSafe], re-expand dotted keys back into nested objects
// (unavailable in streaming mode, since it requires a full object in
// hand to merge into).
//
// # Errors
//
// [Decode] and [DecodeStream] report the first failure as a [*DecodeError],
// which carries a line, column, and [ErrorKind] drawn from the taxonomy in
// spec section 7 (declared-length mismatches, bad indentation, duplicate
// keys, malformed escapes, and so on). Use [errors.Is] against [ErrSyntax],
// [ErrIndentation], [ErrStructure], or [ErrPathConflict] to branch by
// category, or [errors.As] against [*DecodeError] for the full detail.
// Invalid option values (to either codec direction) report a
// [*ConfigError] wrapping [ErrConfig]. [Normalize] reports [ErrCycle] when
// a host value graph is cyclic, since normalization assumes a tree.
//
// # Basic Usage
//
//	text, err := toon.Encode(value)
//
//	v, err := toon.Decode(text)
//
// # With Options
//
//	text, err := toon.Encode(value,
//	    toon.WithKeyFolding(toon.KeyFoldingSafe),
//	    toon.WithDelimiter(toon.DelimPipe),
//	)
//
//	v, err := toon.Decode(text,
//	    toon.WithStrict(false),
//	    toon.WithExpandPaths(toon.ExpandPathsSafe),
//	)
//
// # Config-Based Usage
//
//	cfg := toon.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	_ = cfg.RegisterCompletions(rootCmd)
//
//	opts, err := cfg.EncodeOptions()
//	text, err := toon.Encode(value, opts...)
//
// # Streaming
//
//	it, err := toon.DecodeStream(toon.SliceLineSource(lines))
//	for {
//	    ev, ok, err := it.Next()
//	    if err != nil {
//	        // handle error
//	    }
//	    if !ok {
//	        break
//	    }
//	    // consume ev
//	}
package toon
