package toon

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Delimiter identifies the row/inline-array separator TOON supports.
type Delimiter int

// Supported delimiters.
const (
	DelimComma Delimiter = iota
	DelimTab
	DelimPipe
)

// String returns the delimiter's configuration name.
func (d Delimiter) String() string {
	switch d {
	case DelimComma:
		return "comma"
	case DelimTab:
		return "tab"
	case DelimPipe:
		return "pipe"
	default:
		return "unknown"
	}
}

// rune returns the literal byte TOON uses for this delimiter on the wire.
func (d Delimiter) rune() rune {
	switch d {
	case DelimTab:
		return '\t'
	case DelimPipe:
		return '|'
	default:
		return ','
	}
}

// ParseDelimiter parses a configuration string ("comma", "tab", "pipe", or
// the literal characters ",", "\t", "|") into a Delimiter.
func ParseDelimiter(s string) (Delimiter, error) {
	switch s {
	case "comma", ",", "":
		return DelimComma, nil
	case "tab", "\t":
		return DelimTab, nil
	case "pipe", "|":
		return DelimPipe, nil
	default:
		return 0, newConfigError("delimiter", "unknown delimiter %q", s)
	}
}

// KeyFolding controls whether the encoder collapses single-key object
// chains into dotted keys (spec section 4.3).
type KeyFolding int

// Supported key-folding modes.
const (
	KeyFoldingOff KeyFolding = iota
	KeyFoldingSafe
)

// String returns the key-folding mode's configuration name.
func (k KeyFolding) String() string {
	if k == KeyFoldingSafe {
		return "safe"
	}

	return "off"
}

// ParseKeyFolding parses "off" or "safe" into a KeyFolding.
func ParseKeyFolding(s string) (KeyFolding, error) {
	switch s {
	case "off", "":
		return KeyFoldingOff, nil
	case "safe":
		return KeyFoldingSafe, nil
	default:
		return 0, newConfigError("keyFolding", "unknown mode %q, want off or safe", s)
	}
}

// ExpandPaths controls whether the decoder reconstructs dotted keys into
// nested objects (spec section 4.9, the inverse of key folding).
type ExpandPaths int

// Supported path-expansion modes.
const (
	ExpandPathsOff ExpandPaths = iota
	ExpandPathsSafe
)

// String returns the path-expansion mode's configuration name.
func (e ExpandPaths) String() string {
	if e == ExpandPathsSafe {
		return "safe"
	}

	return "off"
}

// ParseExpandPaths parses "off" or "safe" into an ExpandPaths.
func ParseExpandPaths(s string) (ExpandPaths, error) {
	switch s {
	case "off", "":
		return ExpandPathsOff, nil
	case "safe":
		return ExpandPathsSafe, nil
	default:
		return 0, newConfigError("expandPaths", "unknown mode %q, want off or safe", s)
	}
}

const defaultIndent = 2

// Replacer transforms or omits a value during the encoder walk. It is
// called for the root with key "" and an empty path, then recursively for
// each descendant with its key (the string index, for array elements) and
// full path from the root. Returning keep=false omits the entry, except at
// the root where the omission is ignored and the returned value is kept
// regardless. The returned value is re-normalized via [Normalize] before
// emission, so a Replacer may return any host value, not just a [Value].
type Replacer func(key string, value Value, path []string) (replacement any, keep bool)

// encoderOptions holds resolved, defaulted encoder configuration.
type encoderOptions struct {
	indent       int
	delimiter    Delimiter
	keyFolding   KeyFolding
	flattenDepth int // <= 0 means unbounded
	quoteStrings bool
	replacer     Replacer
}

func defaultEncoderOptions() encoderOptions {
	return encoderOptions{
		indent:       defaultIndent,
		delimiter:    DelimComma,
		keyFolding:   KeyFoldingOff,
		flattenDepth: 0,
		quoteStrings: false,
	}
}

func (o encoderOptions) validate() error {
	if o.indent <= 0 {
		return newConfigError("indent", "must be a positive integer, got %d", o.indent)
	}

	return nil
}

// Option configures an encoder operation ([Encode] or [EncodeLines]).
type Option func(*encoderOptions)

// WithIndent sets the number of spaces per depth level. Default 2.
func WithIndent(n int) Option {
	return func(o *encoderOptions) { o.indent = n }
}

// WithDelimiter sets the default row delimiter for arrays whose header does
// not declare an override. Default [DelimComma].
func WithDelimiter(d Delimiter) Option {
	return func(o *encoderOptions) { o.delimiter = d }
}

// WithKeyFolding enables or disables dotted-key folding. Default
// [KeyFoldingOff].
func WithKeyFolding(k KeyFolding) Option {
	return func(o *encoderOptions) { o.keyFolding = k }
}

// WithFlattenDepth caps the number of segments a folded chain may collapse.
// n <= 0 means unbounded, the default.
func WithFlattenDepth(n int) Option {
	return func(o *encoderOptions) { o.flattenDepth = n }
}

// WithQuoteStrings forces every string primitive to be quoted, even when it
// would otherwise be safe unquoted. Default false.
func WithQuoteStrings(b bool) Option {
	return func(o *encoderOptions) { o.quoteStrings = b }
}

// WithReplacer installs a [Replacer] invoked for every node during the
// encoder walk.
func WithReplacer(r Replacer) Option {
	return func(o *encoderOptions) { o.replacer = r }
}

func resolveEncoderOptions(opts ...Option) (encoderOptions, error) {
	o := defaultEncoderOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := o.validate(); err != nil {
		return o, err
	}

	return o, nil
}

// decoderOptions holds resolved, defaulted decoder configuration.
type decoderOptions struct {
	indent      int
	strict      bool
	expandPaths ExpandPaths
}

func defaultDecoderOptions() decoderOptions {
	return decoderOptions{
		indent:      defaultIndent,
		strict:      true,
		expandPaths: ExpandPathsOff,
	}
}

func (o decoderOptions) validate() error {
	if o.indent <= 0 {
		return newConfigError("indent", "must be a positive integer, got %d", o.indent)
	}

	return nil
}

// DecodeOption configures a decoder operation ([Decode] or [DecodeStream]).
type DecodeOption func(*decoderOptions)

// WithDecodeIndent sets the expected number of spaces per depth level. Must
// match the indent used to produce the source text. Default 2.
func WithDecodeIndent(n int) DecodeOption {
	return func(o *decoderOptions) { o.indent = n }
}

// WithStrict toggles strict-mode validation (spec section 7). Default true.
func WithStrict(b bool) DecodeOption {
	return func(o *decoderOptions) { o.strict = b }
}

// WithExpandPaths enables dotted-key path expansion after decode. Not
// available for [DecodeStream]; using it there returns a [ConfigError].
// Default [ExpandPathsOff].
func WithExpandPaths(e ExpandPaths) DecodeOption {
	return func(o *decoderOptions) { o.expandPaths = e }
}

func resolveDecoderOptions(opts ...DecodeOption) (decoderOptions, error) {
	o := defaultDecoderOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := o.validate(); err != nil {
		return o, err
	}

	return o, nil
}

// Flags holds CLI flag names for codec configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	Indent       string
	Delimiter    string
	KeyFolding   string
	FlattenDepth string
	QuoteStrings string
	Strict       string
	ExpandPaths  string
}

// Config holds CLI flag values bridging cobra/pflag to [Option] and
// [DecodeOption] values.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.EncodeOptions] and
// [Config.DecodeOptions] to build the option slices for [Encode] and
// [Decode].
type Config struct {
	Flags Flags

	Indent       int
	Delimiter    string
	KeyFolding   string
	FlattenDepth int
	QuoteStrings bool
	Strict       bool
	ExpandPaths  string
}

// NewConfig returns a new [Config] with default flag names and values
// matching the codec's own defaults.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			Indent:       "indent",
			Delimiter:    "delimiter",
			KeyFolding:   "key-folding",
			FlattenDepth: "flatten-depth",
			QuoteStrings: "quote-strings",
			Strict:       "strict",
			ExpandPaths:  "expand-paths",
		},
		Indent: defaultIndent,
		Strict: true,
	}
}

// RegisterFlags adds codec flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.IntVar(&c.Indent, c.Flags.Indent, defaultIndent,
		"spaces per indent level")
	flags.StringVar(&c.Delimiter, c.Flags.Delimiter, "comma",
		"array delimiter: comma, tab, or pipe")
	flags.StringVar(&c.KeyFolding, c.Flags.KeyFolding, "off",
		"encoder key folding: off or safe")
	flags.IntVar(&c.FlattenDepth, c.Flags.FlattenDepth, 0,
		"max folded key segments (0 = unbounded)")
	flags.BoolVar(&c.QuoteStrings, c.Flags.QuoteStrings, false,
		"always quote string primitives")
	flags.BoolVar(&c.Strict, c.Flags.Strict, true,
		"enforce strict-mode decode validation")
	flags.StringVar(&c.ExpandPaths, c.Flags.ExpandPaths, "off",
		"decoder dotted-key expansion: off or safe")
}

// RegisterCompletions registers shell completions for codec flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Delimiter,
		cobra.FixedCompletions([]string{"comma", "tab", "pipe"}, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Delimiter, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.KeyFolding,
		cobra.FixedCompletions([]string{"off", "safe"}, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.KeyFolding, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.ExpandPaths,
		cobra.FixedCompletions([]string{"off", "safe"}, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.ExpandPaths, err)
	}

	return nil
}

// EncodeOptions builds the [Option] slice described by this Config.
func (c *Config) EncodeOptions() ([]Option, error) {
	delim, err := ParseDelimiter(c.Delimiter)
	if err != nil {
		return nil, err
	}

	folding, err := ParseKeyFolding(c.KeyFolding)
	if err != nil {
		return nil, err
	}

	return []Option{
		WithIndent(c.Indent),
		WithDelimiter(delim),
		WithKeyFolding(folding),
		WithFlattenDepth(c.FlattenDepth),
		WithQuoteStrings(c.QuoteStrings),
	}, nil
}

// DecodeOptions builds the [DecodeOption] slice described by this Config.
func (c *Config) DecodeOptions() ([]DecodeOption, error) {
	expand, err := ParseExpandPaths(c.ExpandPaths)
	if err != nil {
		return nil, err
	}

	return []DecodeOption{
		WithDecodeIndent(c.Indent),
		WithStrict(c.Strict),
		WithExpandPaths(expand),
	}, nil
}
