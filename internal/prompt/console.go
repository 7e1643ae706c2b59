package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/agentx-labs/stencil/internal/template"
)

// Console asks each question on a line-based stream, typically stdin and
// stdout. Reads happen on a background goroutine so that a cancelled
// context interrupts a pending prompt.
type Console struct {
	reader *bufio.Reader
	out    io.Writer

	once  sync.Once
	lines chan readResult
}

type readResult struct {
	text string
	err  error
}

// NewConsole returns a Console reading answers from in and writing prompts
// to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{reader: bufio.NewReader(in), out: out}
}

// Answer prompts for item. For multiple choice an out-of-range selection is
// reported and leaves the item unanswered without an error; the question is
// not asked again.
func (c *Console) Answer(ctx context.Context, item *template.PlaceholderItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch item.Kind {
	case template.MultipleChoice:
		return c.multiple(ctx, item)
	default:
		return c.single(ctx, item)
	}
}

func (c *Console) single(ctx context.Context, item *template.PlaceholderItem) error {
	fmt.Fprintf(c.out, "%s (%s): ", item.Label(), item.Default)

	line, err := c.readLine(ctx)
	if err != nil {
		return err
	}

	if line == "" {
		item.SetAnswer(item.Default)
		return nil
	}
	item.SetAnswer(line)
	return nil
}

func (c *Console) multiple(ctx context.Context, item *template.PlaceholderItem) error {
	fmt.Fprintf(c.out, "%s:\n", item.Label())
	for i, option := range item.Options {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, option)
	}
	fmt.Fprintf(c.out, "Enter number [1-%d]: ", len(item.Options))

	line, err := c.readLine(ctx)
	if err != nil {
		return err
	}

	input := strings.TrimSpace(line)
	n, err := strconv.Atoi(input)
	if err != nil {
		return &InputError{Key: item.Key, Input: input, Err: ErrNotANumber}
	}

	option, ok := selectOption(item.Options, n)
	if !ok {
		fmt.Fprintf(c.out, "Selection %d is out of range [1-%d]; %s left unanswered.\n", n, len(item.Options), item.Key)
		return nil
	}
	item.SetAnswer(option)
	return nil
}

// readLine returns the next line without its line ending. EOF with no
// pending input reads as an empty line. A cancelled ctx returns
// ErrInterrupted; the pending line is kept for the next call.
func (c *Console) readLine(ctx context.Context) (string, error) {
	c.once.Do(c.startReader)

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return "", fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	case r, ok := <-c.lines:
		if !ok {
			return "", nil
		}
		if r.err != nil && !errors.Is(r.err, io.EOF) {
			return "", fmt.Errorf("reading answer: %w", r.err)
		}
		return strings.TrimRight(r.text, "\r\n"), nil
	}
}

// startReader feeds c.lines until the reader fails, then closes it.
func (c *Console) startReader() {
	c.lines = make(chan readResult)
	go func() {
		defer close(c.lines)
		for {
			text, err := c.reader.ReadString('\n')
			c.lines <- readResult{text: text, err: err}
			if err != nil {
				return
			}
		}
	}()
}
