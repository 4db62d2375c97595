package git

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrGitNotFound is returned when the git binary is not on PATH.
	ErrGitNotFound = errors.New("git executable not found")
	// ErrNotWorkTree is wrapped by WorkspaceStateError when a path exists
	// but lies outside any git work tree.
	ErrNotWorkTree = errors.New("not inside a git work tree")
)

// CommandError describes a git invocation that exited non-zero.
type CommandError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(e.Stdout)
	}
	return fmt.Sprintf("git %s: exit status %d: %s", strings.Join(redactArgs(e.Args), " "), e.ExitCode, msg)
}

// WorkspaceStateError reports that the state of a workspace could not be
// assessed: the path is missing, git is unavailable, or the path is not
// under version control.
type WorkspaceStateError struct {
	Path string
	Err  error
}

func (e *WorkspaceStateError) Error() string {
	return fmt.Sprintf("workspace %s: %v", e.Path, e.Err)
}

func (e *WorkspaceStateError) Unwrap() error { return e.Err }

// IsMissingRef reports whether err is a clone failure caused by the remote
// having no branch or tag with the requested name. It is the only trigger
// for falling back to a full clone.
func IsMissingRef(err error) bool {
	var ce *CommandError
	if !errors.As(err, &ce) {
		return false
	}
	return strings.Contains(ce.Stderr, "Remote branch") && strings.Contains(ce.Stderr, "not found")
}

// IsNothingToCommit reports whether err is git commit declining to create
// an empty commit.
func IsNothingToCommit(err error) bool {
	var ce *CommandError
	if !errors.As(err, &ce) {
		return false
	}
	return strings.Contains(ce.Stdout, "nothing to commit") || strings.Contains(ce.Stderr, "nothing to commit")
}
