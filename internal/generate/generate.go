package generate

import (
	"context"
	"fmt"

	"github.com/agentx-labs/stencil/internal/engine"
	"github.com/agentx-labs/stencil/internal/prompt"
	"github.com/agentx-labs/stencil/internal/template"
	"github.com/sirupsen/logrus"
)

// Stage names a step of the generation state machine.
type Stage string

const (
	StageLoaded   Stage = "loaded"
	StageAnswered Stage = "answered"
	StageRendered Stage = "rendered"
	StageDone     Stage = "done"
)

// StageError wraps the first failure with the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ConfigurationLoader loads a template configuration.
type ConfigurationLoader interface {
	LoadConfiguration(ctx context.Context) (*template.Configuration, error)
}

// Renderer writes a resolved configuration to a destination.
type Renderer interface {
	RenderAndPush(ctx context.Context, req template.RenderRequest) (*engine.Result, error)
}

// Input parameterizes one generation.
type Input struct {
	Destination string
	Force       bool
}

// Result reports how far a generation got.
type Result struct {
	Stage      Stage
	Files      []string
	Unanswered []string
	Answers    map[string]string
}

// Service runs generations.
type Service struct {
	Specs  ConfigurationLoader
	Prompt prompt.Prompt
	Engine Renderer
	Log    logrus.FieldLogger
}

// New returns a Service wired to its collaborators.
func New(specs ConfigurationLoader, p prompt.Prompt, r Renderer, log logrus.FieldLogger) *Service {
	return &Service{Specs: specs, Prompt: p, Engine: r, Log: log}
}

// GenerateProject loads the template, asks every placeholder in declaration
// order, and renders the result. Stages run strictly in sequence; the first
// error stops the run and is returned as a *StageError alongside the
// partial Result.
func (s *Service) GenerateProject(ctx context.Context, in Input) (*Result, error) {
	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	res := &Result{}

	cfg, err := s.Specs.LoadConfiguration(ctx)
	if err != nil {
		return res, &StageError{Stage: StageLoaded, Err: err}
	}
	res.Stage = StageLoaded
	log.WithFields(logrus.Fields{
		"stage":        StageLoaded,
		"files":        cfg.Tree.Len(),
		"placeholders": len(cfg.Specification.Placeholders),
	}).Debug("template loaded")

	for _, item := range cfg.Specification.Placeholders {
		if err := s.Prompt.Answer(ctx, item); err != nil {
			return res, &StageError{Stage: StageAnswered, Err: err}
		}
	}
	if err := ctx.Err(); err != nil {
		return res, &StageError{Stage: StageAnswered, Err: err}
	}
	res.Stage = StageAnswered
	res.Unanswered = cfg.Specification.Unresolved()
	res.Answers = cfg.Specification.Answers()
	log.WithFields(logrus.Fields{
		"stage":      StageAnswered,
		"answered":   len(res.Answers),
		"unanswered": len(res.Unanswered),
	}).Debug("placeholders resolved")
	for _, key := range res.Unanswered {
		log.WithField("placeholder", key).Warn("placeholder left unanswered; its tokens are kept as-is")
	}

	out, err := s.Engine.RenderAndPush(ctx, template.RenderRequest{
		Destination:   in.Destination,
		Configuration: cfg,
		Force:         in.Force,
	})
	if out != nil {
		res.Files = out.Written
	}
	if err != nil {
		return res, &StageError{Stage: StageRendered, Err: err}
	}
	res.Stage = StageRendered
	log.WithFields(logrus.Fields{
		"stage": StageRendered,
		"files": len(res.Files),
	}).Debug("template rendered")

	res.Stage = StageDone
	log.WithFields(logrus.Fields{
		"destination": in.Destination,
		"files":       len(res.Files),
	}).Info("project generated")
	return res, nil
}
