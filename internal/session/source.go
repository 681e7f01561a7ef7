package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

var ErrNoInput = errors.New("no more input")

// UtteranceSource yields caller utterances. Next blocks until one arrives or
// ctx is done.
type UtteranceSource interface {
	Next(ctx context.Context) (string, error)
}

// ScriptedSource replays a fixed list of utterances.
type ScriptedSource struct {
	utterances []string
	pos        int
}

func NewScriptedSource(utterances ...string) *ScriptedSource {
	return &ScriptedSource{utterances: utterances}
}

func (s *ScriptedSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.pos >= len(s.utterances) {
		return "", ErrNoInput
	}
	u := s.utterances[s.pos]
	s.pos++
	return u, nil
}

// Remaining reports how many utterances were not consumed.
func (s *ScriptedSource) Remaining() int {
	return len(s.utterances) - s.pos
}

type line struct {
	text string
	err  error
}

// ConsoleSource reads one line per utterance, printing a "HUMAN: " prompt.
// A single reader goroutine owns the input so a timed out Next does not
// lose the line that arrives later.
type ConsoleSource struct {
	in     io.Reader
	prompt io.Writer
	once   sync.Once
	lines  chan line
}

func NewConsoleSource(in io.Reader, prompt io.Writer) *ConsoleSource {
	return &ConsoleSource{in: in, prompt: prompt, lines: make(chan line)}
}

// maxLineSize caps one console utterance.
const maxLineSize = 1 << 20

func (s *ConsoleSource) start() {
	go func() {
		defer close(s.lines)
		sc := bufio.NewScanner(s.in)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for sc.Scan() {
			s.lines <- line{text: sc.Text()}
		}
		if err := sc.Err(); err != nil {
			s.lines <- line{err: fmt.Errorf("read console: %w", err)}
		}
	}()
}

func (s *ConsoleSource) Next(ctx context.Context) (string, error) {
	s.once.Do(s.start)
	if s.prompt != nil {
		fmt.Fprint(s.prompt, "HUMAN: ")
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}
