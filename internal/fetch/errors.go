package fetch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRevisionNotFound is wrapped by Cloner.CloneRef when the remote has no
// branch or tag named by the revision.
var ErrRevisionNotFound = errors.New("revision is not a branch or tag on the remote")

// FetchError reports a clone or checkout failure that the fallback did not
// recover from.
type FetchError struct {
	URL string
	Rev string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s at %s: %v", e.URL, e.Rev, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractError reports an I/O failure while materialising files.
type ExtractError struct {
	Path string
	Err  error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.Path, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// NoMatchError is returned when a non-empty pattern set selected no files.
type NoMatchError struct {
	Patterns []string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no files matched the provided patterns: [%s]", strings.Join(e.Patterns, ", "))
}
