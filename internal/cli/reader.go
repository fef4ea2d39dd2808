package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when ctx ends before a line arrives.
var ErrInputCancelled = errors.New("input canceled")

type line struct {
	err  error
	text string
}

// NonBlockingReader reads lines from a terminal without ignoring ctx. One
// goroutine owns the underlying reader, so a line typed after a canceled
// read is kept for the next call instead of being lost.
type NonBlockingReader struct {
	src   *bufio.Reader
	lines chan line
	start sync.Once
}

// NewNonBlockingReader wraps r.
func NewNonBlockingReader(r io.Reader) *NonBlockingReader {
	if r == nil {
		panic("reader cannot be nil")
	}
	return &NonBlockingReader{
		src:   bufio.NewReader(r),
		lines: make(chan line, 1),
	}
}

func (r *NonBlockingReader) pump() {
	for {
		text, err := r.src.ReadString('\n')
		r.lines <- line{text: text, err: err}
		if err != nil {
			close(r.lines)
			return
		}
	}
}

// ReadLine returns the next line with surrounding space trimmed. A final
// line without a newline is returned together with io.EOF.
func (r *NonBlockingReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}
	r.start.Do(func() { go r.pump() })

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case l, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(l.text), l.err
	}
}

// Confirm asks a yes/no question on w. Anything other than y or yes,
// including end of input, is a no.
func (r *NonBlockingReader) Confirm(ctx context.Context, w io.Writer, question string) (bool, error) {
	if _, err := fmt.Fprint(w, FormatPrompt(question+" [y/N] ")); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}

	answer, err := r.ReadLine(ctx)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
