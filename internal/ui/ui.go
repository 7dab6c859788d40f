// Package ui renders user-facing CLI output: status tags, warnings and tables.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	stdoutColor = detectColor(os.Stdout)
	stderrColor = detectColor(os.Stderr)
)

// SetOutput replaces the stdout and stderr writers. Used by tests and by
// cobra commands that redirect output.
func SetOutput(out, errOut io.Writer) {
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

// Stdout returns the current stdout writer.
func Stdout() io.Writer { return stdout }

func detectColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetColorEnabled overrides terminal detection.
func SetColorEnabled(enabled bool) {
	stdoutColor = enabled
	stderrColor = enabled
}

func paint(enabled bool, code, s string) string {
	if !enabled {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// Bold wraps s in bold for stdout.
func Bold(s string) string { return paint(stdoutColor, "1", s) }

// Dim wraps s in dim for stdout.
func Dim(s string) string { return paint(stdoutColor, "2", s) }

func Green(s string) string { return paint(stdoutColor, "32", s) }
func Red(s string) string { return paint(stdoutColor, "31", s) }

// OKTag marks a passing check.
func OKTag() string { return Green("✓") }

// FailTag marks a failing check.
func FailTag() string { return Red("✗") }

// Section prints a bold heading with an underline.
func Section(title string) {
	fmt.Fprintln(stdout, Bold(title))
	fmt.Fprintln(stdout, Dim(strings.Repeat("─", len([]rune(title)))))
}

// KeyValues prints aligned "key: value" pairs in the given order.
func KeyValues(pairs [][2]string) {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, kv := range pairs {
		fmt.Fprintf(tw, "%s:\t%s\n", kv[0], kv[1])
	}
	tw.Flush()
}

// Table prints rows under a header with columns aligned.
func Table(header []string, rows [][]string) {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, Bold(strings.Join(header, "\t")))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// Warn prints a warning to stderr.
func Warn(msg string) {
	fmt.Fprintf(stderr, "%s %s\n", paint(stderrColor, "33", "Warning:"), msg)
}

// Warnf is Warn with formatting.
func Warnf(format string, args ...any) {
	Warn(fmt.Sprintf(format, args...))
}

// Error prints an error to stderr.
func Error(msg string) {
	fmt.Fprintf(stderr, "%s %s\n", paint(stderrColor, "31", "Error:"), msg)
}

// Errorf is Error with formatting.
func Errorf(format string, args ...any) {
	Error(fmt.Sprintf(format, args...))
}

// Infof prints an unprefixed line to stderr.
func Infof(format string, args ...any) {
	fmt.Fprintf(stderr, format+"\n", args...)
}
