package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads answers from a terminal or a piped input
type Prompter struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
}

// NewPrompter creates a Prompter reading from in and writing prompts to out
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out, reader: bufio.NewReader(in)}
}

// DefaultPrompter prompts on stdin/stderr so stdout stays clean for output
func DefaultPrompter() *Prompter {
	return NewPrompter(os.Stdin, os.Stderr)
}

// IsInteractive reports whether input comes from a terminal
func (p *Prompter) IsInteractive() bool {
	f, ok := p.in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ReadLine prints prompt and returns the trimmed answer
func (p *Prompter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	input, err := p.reader.ReadString('\n')
	if err != nil && !(err == io.EOF && input != "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// ReadSecret reads without echo when attached to a terminal
func (p *Prompter) ReadSecret(prompt string) (string, error) {
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.out, prompt)
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(secret)), nil
	}
	return p.ReadLine(prompt)
}

// Confirm asks a yes/no question, defaulting to no
func (p *Prompter) Confirm(question string) (bool, error) {
	input, err := p.ReadLine(question + " (y/N): ")
	if err != nil {
		return false, err
	}
	input = strings.ToLower(input)
	return input == "y" || input == "yes", nil
}
