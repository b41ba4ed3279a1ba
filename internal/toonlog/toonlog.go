// Package toonlog provides structured logging handler construction for the
// toon CLI, built on [log/slog].
package toonlog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
)

// Format is the log output encoding.
type Format string

// Supported log formats.
const (
	FormatJSON   Format = "json"
	FormatLogfmt Format = "logfmt"
)

var (
	// ErrUnknownLevel indicates an unrecognized log level string.
	ErrUnknownLevel = errors.New("toonlog: unknown log level")
	// ErrUnknownFormat indicates an unrecognized log format string.
	ErrUnknownFormat = errors.New("toonlog: unknown log format")
)

// CreateHandler builds a [slog.Handler] writing to w at level lvl in format
// f. Source locations are attached only at [slog.LevelDebug] and below,
// since the decoder's own diagnostics already carry line/column context.
func CreateHandler(w io.Writer, lvl slog.Level, f Format) slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource: lvl <= slog.LevelDebug,
		Level:     lvl,
	}

	switch f {
	case FormatLogfmt:
		return slog.NewTextHandler(w, opts)
	default:
		return slog.NewJSONHandler(w, opts)
	}
}

// CreateHandlerWithStrings resolves level and format by name before
// delegating to [CreateHandler].
func CreateHandlerWithStrings(w io.Writer, level, format string) (slog.Handler, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	return CreateHandler(w, lvl, f), nil
}

// ParseLevel parses a case-insensitive level name into a [slog.Level].
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}
}

// ParseFormat parses a case-insensitive format name into a [Format].
func ParseFormat(format string) (Format, error) {
	f := Format(strings.ToLower(format))
	if slices.Contains([]Format{FormatJSON, FormatLogfmt}, f) {
		return f, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Levels lists the accepted level names, for flag help text and completions.
func Levels() []string { return []string{"error", "warn", "info", "debug"} }

// Formats lists the accepted format names, for flag help text and
// completions.
func Formats() []string { return []string{string(FormatJSON), string(FormatLogfmt)} }
