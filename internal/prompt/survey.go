package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/agentx-labs/stencil/internal/template"
)

// AskFunc matches survey.AskOne so tests can replace the terminal.
type AskFunc func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error

// Survey asks questions with an interactive terminal UI. Multiple choice is
// a select list, so a selection is always in range.
type Survey struct {
	Ask AskFunc
}

// NewSurvey returns a Survey bound to the process terminal.
func NewSurvey() *Survey {
	return &Survey{Ask: survey.AskOne}
}

// Answer prompts for item.
func (s *Survey) Answer(ctx context.Context, item *template.PlaceholderItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ask := s.Ask
	if ask == nil {
		ask = survey.AskOne
	}

	var (
		out string
		p   survey.Prompt
	)
	switch item.Kind {
	case template.MultipleChoice:
		sel := &survey.Select{Message: item.Label(), Options: item.Options}
		if len(item.Options) > 0 {
			sel.Default = item.Options[0]
		}
		p = sel
	default:
		p = &survey.Input{Message: item.Label(), Default: item.Default}
	}

	if err := ask(p, &out); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return ErrInterrupted
		}
		return fmt.Errorf("asking %s: %w", item.Key, err)
	}

	if item.Kind == template.SingleChoice && out == "" {
		out = item.Default
	}
	item.SetAnswer(out)
	return nil
}
