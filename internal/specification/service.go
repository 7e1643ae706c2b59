package specification

import (
	"context"
	"fmt"

	"github.com/agentx-labs/stencil/internal/branding"
	"github.com/agentx-labs/stencil/internal/origin"
	"github.com/agentx-labs/stencil/internal/template"
)

// FileName is the well-known location of the specification document,
// relative to the template root.
var FileName = branding.SpecFile()

// Service loads template configurations.
type Service struct {
	Loader  origin.Loader
	Version string // running generator version, checked against requires
}

// NewService returns a Service reading through loader.
func NewService(loader origin.Loader, version string) *Service {
	return &Service{Loader: loader, Version: version}
}

// LoadConfiguration loads the template tree and parses its specification
// document. A template without a document has no placeholders. The
// document itself is not part of the returned tree.
func (s *Service) LoadConfiguration(ctx context.Context) (*template.Configuration, error) {
	tree, err := s.Loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}

	entry, ok := tree.Lookup(FileName)
	if !ok {
		return &template.Configuration{Tree: tree, Specification: &template.Specification{}}, nil
	}

	spec, err := Parse(entry.Content, FileName)
	if err != nil {
		return nil, err
	}

	if err := CheckRequires(spec.Requires, s.Version); err != nil {
		return nil, err
	}

	return &template.Configuration{
		Tree:          tree.Without(FileName),
		Specification: spec,
	}, nil
}
