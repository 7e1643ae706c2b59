package specification

import (
	"fmt"
	"strings"
)

// Issue is a single problem found in a specification document.
type Issue struct {
	Path    string // instance location, e.g. "/placeholders/0/key"
	Message string
	Keyword string // schema keyword that failed, empty for parser-level issues
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ParseError reports a specification document that is not valid YAML or
// does not match the document schema.
type ParseError struct {
	Path   string
	Issues []Issue
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parsing specification %s", e.Path)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	for i, issue := range e.Issues {
		if i == 0 && e.Err == nil {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(issue.String())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// DuplicateKeyError reports two placeholders declaring the same key.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate placeholder key %q", e.Key)
}

// VersionError reports a template that requires a different generator
// version than the one running.
type VersionError struct {
	Requires string
	Version  string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("template requires version %s, running %s", e.Requires, e.Version)
}
