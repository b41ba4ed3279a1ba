// Package main provides the CLI entry point for toon, a codec for
// Token-Oriented Object Notation.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"go.jacobcolvin.com/toon/internal/convert"
	"go.jacobcolvin.com/toon/internal/toonlog"
	"go.jacobcolvin.com/toon/profiler"
	"go.jacobcolvin.com/toon/toon"
	"go.jacobcolvin.com/toon/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	codecCfg := toon.NewConfig()
	logCfg := toonlog.NewConfig()
	prof := profiler.New()

	var fromFormat string

	rootCmd := &cobra.Command{
		Use:           "toon",
		Short:         "Encode and decode Token-Oriented Object Notation",
		Version:       version.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	encodeCmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Encode JSON or YAML input into TOON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd, args, codecCfg, logCfg, &prof, fromFormat, stdin, stdout)
		},
	}
	encodeCmd.Flags().StringVar(&fromFormat, "from", "json", "input format: json or yaml")
	codecCfg.RegisterFlags(encodeCmd.Flags())
	logCfg.RegisterFlags(encodeCmd.Flags())
	prof.RegisterFlags(encodeCmd.Flags())

	decodeCmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode TOON input into JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, args, codecCfg, logCfg, &prof, stdin, stdout)
		},
	}
	codecCfg.RegisterFlags(decodeCmd.Flags())
	logCfg.RegisterFlags(decodeCmd.Flags())
	prof.RegisterFlags(decodeCmd.Flags())

	rootCmd.AddCommand(encodeCmd, decodeCmd)

	for _, cmd := range []*cobra.Command{encodeCmd, decodeCmd} {
		if err := codecCfg.RegisterCompletions(cmd); err != nil {
			return fmt.Errorf("register completions: %w", err)
		}

		if err := logCfg.RegisterCompletions(cmd); err != nil {
			return fmt.Errorf("register completions: %w", err)
		}
	}

	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	return rootCmd.Execute()
}

func setupLogging(cmd *cobra.Command, logCfg *toonlog.Config) error {
	handler, err := logCfg.NewHandler(cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	slog.SetDefault(slog.New(handler))

	return nil
}

func runEncode(
	cmd *cobra.Command,
	args []string,
	codecCfg *toon.Config,
	logCfg *toonlog.Config,
	prof *profiler.Profiler,
	fromFormat string,
	stdin io.Reader,
	stdout io.Writer,
) error {
	if err := setupLogging(cmd, logCfg); err != nil {
		return err
	}

	if err := prof.Start(); err != nil {
		return fmt.Errorf("start profiling: %w", err)
	}

	defer func() {
		if err := prof.Stop(); err != nil {
			slog.Error("stop profiling", slog.Any("error", err))
		}
	}()

	data, err := readInput(args, stdin)
	if err != nil {
		return err
	}

	value, err := decodeInput(data, fromFormat)
	if err != nil {
		return err
	}

	opts, err := codecCfg.EncodeOptions()
	if err != nil {
		return err
	}

	out, err := toon.Encode(value, opts...)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	if err := writeOutput(stdout, out); err != nil {
		return err
	}

	if isTerminal(stdout) {
		lines := strings.Count(out, "\n") + 1
		fmt.Fprintf(cmd.ErrOrStderr(), "# %d lines\n", lines)
	}

	return nil
}

func runDecode(
	cmd *cobra.Command,
	args []string,
	codecCfg *toon.Config,
	logCfg *toonlog.Config,
	prof *profiler.Profiler,
	stdin io.Reader,
	stdout io.Writer,
) error {
	if err := setupLogging(cmd, logCfg); err != nil {
		return err
	}

	if err := prof.Start(); err != nil {
		return fmt.Errorf("start profiling: %w", err)
	}

	defer func() {
		if err := prof.Stop(); err != nil {
			slog.Error("stop profiling", slog.Any("error", err))
		}
	}()

	data, err := readInput(args, stdin)
	if err != nil {
		return err
	}

	opts, err := codecCfg.DecodeOptions()
	if err != nil {
		return err
	}

	value, err := toon.Decode(string(data), opts...)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	out = append(out, '\n')

	_, err = stdout.Write(out)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}

// decodeInput converts raw input bytes of the named format into a host
// value suitable for [toon.Encode].
func decodeInput(data []byte, format string) (any, error) {
	switch format {
	case "json", "":
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}

		return v, nil

	case "yaml":
		v, err := convert.FromYAML(data)
		if err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}

		return v, nil

	default:
		return nil, fmt.Errorf("unknown input format %q, want json or yaml", format)
	}
}

func readInput(args []string, stdin io.Reader) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(bufio.NewReader(stdin))
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}

	return data, nil
}

func writeOutput(w io.Writer, text string) error {
	if _, err := io.WriteString(w, text); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if len(text) == 0 || text[len(text)-1] != '\n' {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	return nil
}

// isTerminal reports whether w is an interactive terminal, used to decide
// whether a trailing summary line belongs on stderr.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
