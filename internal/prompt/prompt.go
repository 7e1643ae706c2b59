package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/agentx-labs/stencil/internal/template"
)

// Prompt resolves a single placeholder, writing its answer in place. A
// returned error is fatal for the generation.
type Prompt interface {
	Answer(ctx context.Context, item *template.PlaceholderItem) error
}

var (
	// ErrNotANumber is wrapped by InputError when a selection is not numeric.
	ErrNotANumber = errors.New("selection is not a number")
	// ErrUnknownOption is wrapped by InputError when a preset value matches
	// no option.
	ErrUnknownOption = errors.New("value is not one of the options")
	// ErrNoAnswer is wrapped by InputError when no source can answer.
	ErrNoAnswer = errors.New("no answer available")
	// ErrInterrupted is returned when the user aborts an interactive prompt.
	ErrInterrupted = errors.New("prompt interrupted")
)

// InputError reports an answer that could not be used for a placeholder.
type InputError struct {
	Key   string
	Input string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("answer %q for %s: %v", e.Input, e.Key, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// selectOption maps a 1-based selection to its option.
func selectOption(options []string, n int) (string, bool) {
	if n < 1 || n > len(options) {
		return "", false
	}
	return options[n-1], true
}

// Skip leaves every item unanswered. It is used as a Preset fallback when
// re-rendering with a known answer set.
type Skip struct{}

// Answer does nothing beyond honouring cancellation.
func (Skip) Answer(ctx context.Context, _ *template.PlaceholderItem) error {
	return ctx.Err()
}
