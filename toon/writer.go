package toon

import "strings"

// lineWriter buffers emitted lines in order. Lines never carry their own
// trailing newline; [lineWriter.String] joins them with LF, matching spec
// section 9's guidance to buffer a vector of strings and join on output.
type lineWriter struct {
	lines []string
}

func newLineWriter() *lineWriter {
	return &lineWriter{}
}

// writeLine appends one already-rendered line as is. Callers include the
// indentation prefix (e.g. "  " x depth, or "  - ") themselves.
func (w *lineWriter) writeLine(s string) {
	w.lines = append(w.lines, s)
}

// Lines returns the buffered lines, one per emitted record, with no
// trailing LF on any entry.
func (w *lineWriter) Lines() []string { return w.lines }

// String joins the buffered lines with LF. The result never ends in a
// trailing newline, matching spec section 6.2 ("no trailing LF required by
// the grammar").
func (w *lineWriter) String() string {
	return strings.Join(w.lines, "\n")
}
