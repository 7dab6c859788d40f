// Package prompt reads interactive input for cbc commands.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads answers from a terminal or, when input is piped, from a
// line-oriented reader.
type Prompter struct {
	in  io.Reader
	out io.Writer

	reader *bufio.Reader
}

// New returns a Prompter reading from in and writing prompts to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out, reader: bufio.NewReader(in)}
}

// Stdio returns a Prompter bound to the process stdin and stderr.
func Stdio() *Prompter {
	return New(os.Stdin, os.Stderr)
}

func (p *Prompter) terminalFd() (int, bool) {
	f, ok := p.in.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

// Secret prompts for a value without echoing it.
func (p *Prompter) Secret(label string) (string, error) {
	fmt.Fprint(p.out, label+": ")

	if fd, ok := p.terminalFd(); ok {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	return p.line(label)
}

// Line prompts for a visible value. def is returned for an empty answer.
func (p *Prompter) Line(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprint(p.out, label+": ")
	}
	v, err := p.line(label)
	if err != nil {
		return "", err
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}

// Confirm asks a yes/no question. The default answer is no.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprint(p.out, question+" [y/N]: ")
	v, err := p.line("confirmation")
	if err != nil {
		return false, err
	}
	v = strings.ToLower(v)
	return v == "y" || v == "yes", nil
}

func (p *Prompter) line(label string) (string, error) {
	s, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(s), nil
}
