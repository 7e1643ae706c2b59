package origin

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a local origin does not exist or is not a
// directory.
var ErrNotFound = errors.New("origin not found")

// ReadError reports the file that stopped a local load.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// RemoteError reports a failed fetch or checkout of a remote origin.
type RemoteError struct {
	URL    string
	Branch string
	Err    error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("fetching %s@%s: %v", e.URL, e.Branch, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }
