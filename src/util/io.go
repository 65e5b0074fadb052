package util

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Writer buffers generated assembly in a strings.Builder. Nothing reaches the destination until Flush is called,
// so a failed compilation leaves no partial output behind.
type Writer struct {
	sb strings.Builder
}

// ---------------------
// ----- Functions -----
// ---------------------

// Write writes a format string to the Writer's buffer.
func (w *Writer) Write(format string, args ...interface{}) {
	w.sb.WriteString(fmt.Sprintf(format, args...))
}

// Ins0 writes a one-line instruction without operands.
func (w *Writer) Ins0(op string) {
	w.sb.WriteString(fmt.Sprintf("  %s\n", op))
}

// Ins1 writes a one-line instruction using the operator and single operand.
func (w *Writer) Ins1(op, operand string) {
	w.sb.WriteString(fmt.Sprintf("  %s %s\n", op, operand))
}

// Directive writes a one-line directive indented like an instruction.
func (w *Writer) Directive(format string, args ...interface{}) {
	w.sb.WriteString("  ")
	w.sb.WriteString(fmt.Sprintf(format, args...))
	w.sb.WriteRune('\n')
}

// Label writes a one-line label with the given name.
func (w *Writer) Label(name string) {
	w.sb.WriteString(fmt.Sprintf("%s:\n", name))
}

// String returns the buffered output.
func (w *Writer) String() string {
	return w.sb.String()
}

// Len returns the number of buffered bytes.
func (w *Writer) Len() int {
	return w.sb.Len()
}

// Flush writes the buffered output to out and empties the Writer's buffer.
func (w *Writer) Flush(out io.Writer) error {
	_, err := io.WriteString(out, w.sb.String())
	w.sb = strings.Builder{}
	return err
}

// ReadSource reads source code from file or stdin.
// If the Options structure holds a path other than "-" the file will be opened and read. Otherwise the source is
// read from stdin until end of file.
func ReadSource(opt Options) (string, error) {
	if len(opt.Src) > 0 && opt.Src != "-" {
		b, err := os.ReadFile(opt.Src)
		return string(b), err
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", fmt.Errorf("expected input from stdin, got none")
	}
	return string(b), nil
}

// OpenOutput returns the destination described by opt and a function closing it. Output goes to stdout if no
// output file is set.
func OpenOutput(opt Options) (io.Writer, func() error, error) {
	if len(opt.Out) < 1 || opt.Out == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.OpenFile(opt.Out, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
