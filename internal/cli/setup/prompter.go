package setup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// Prompter asks the operator a single question and returns the trimmed answer.
// io.EOF means no answer is coming.
type Prompter interface {
	Prompt(label string) (string, error)
	Close() error
}

// NewPrompter picks line editing when in is a terminal and a plain line
// reader otherwise (pipes, redirected input).
func NewPrompter(in *os.File, out io.Writer) (Prompter, error) {
	if term.IsTerminal(int(in.Fd())) {
		return NewReadlinePrompter(in, out)
	}
	return NewLinePrompter(in, out), nil
}

// LinePrompter reads answers line by line.
type LinePrompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{reader: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) Prompt(label string) (string, error) {
	_, _ = fmt.Fprint(p.out, label)
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", fmt.Errorf("read input failed: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *LinePrompter) Close() error { return nil }

// ReadlinePrompter offers line editing on an interactive terminal.
type ReadlinePrompter struct {
	rl *readline.Instance
}

func NewReadlinePrompter(in io.ReadCloser, out io.Writer) (*ReadlinePrompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		Stdin:                  in,
		Stdout:                 out,
		HistoryLimit:           -1,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		return nil, fmt.Errorf("init line editor failed: %w", err)
	}
	return &ReadlinePrompter{rl: rl}, nil
}

func (p *ReadlinePrompter) Prompt(label string) (string, error) {
	p.rl.SetPrompt(label)
	line, err := p.rl.Readline()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if errors.Is(err, readline.ErrInterrupt) {
			return "", errors.New("setup interrupted")
		}
		return "", fmt.Errorf("read input failed: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *ReadlinePrompter) Close() error {
	return p.rl.Close()
}
