package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrDestinationConflict is matched by ConflictError.
	ErrDestinationConflict = errors.New("destination file already exists")
	// ErrPathEscape is wrapped when a rendered path leaves the destination.
	ErrPathEscape = errors.New("rendered path escapes destination")
	// ErrPathCollision is wrapped when two entries render to the same path.
	ErrPathCollision = errors.New("rendered paths collide")
)

// WriteError reports a rendered file that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ConflictError reports a rendered file that already exists at the
// destination.
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %v (use --force to overwrite)", e.Path, ErrDestinationConflict)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrDestinationConflict
}
