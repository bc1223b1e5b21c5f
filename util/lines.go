package util

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// LineReader yields input lines without their terminators.  Readline
// returns io.EOF when the input is exhausted.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

// scanLines adapts a bufio.Scanner to LineReader.
type scanLines struct {
	sc *bufio.Scanner
	c  io.Closer
}

// NewScanLines reads lines from r.  If r is an io.Closer it is closed
// by Close.
func NewScanLines(r io.Reader) LineReader {
	s := &scanLines{sc: bufio.NewScanner(r)}
	if c, ok := r.(io.Closer); ok {
		s.c = c
	}
	return s
}

func (s *scanLines) Readline() (string, error) {
	if s.sc.Scan() {
		return s.sc.Text(), nil
	}
	if err := s.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (s *scanLines) Close() error {
	if s.c != nil {
		return s.c.Close()
	}
	return nil
}

// promptLines wraps a readline instance; ^C on an empty line ends input
// like ^D does.
type promptLines struct {
	rl *readline.Instance
}

func (p *promptLines) Readline() (string, error) {
	line, err := p.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	return line, err
}

func (p *promptLines) Close() error { return p.rl.Close() }

// StdinLines returns an interactive line editor when stdin is a
// terminal and a plain line scanner otherwise.
func StdinLines(prompt string) (LineReader, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return NewScanLines(os.Stdin), nil
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryLimit:    500,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	return &promptLines{rl: rl}, nil
}
