package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wrale/acdm/internal/git"
)

// ErrCanceled is returned when the confirmation callback declines.
var ErrCanceled = errors.New("update canceled")

// Step names the stage of a dependency update.
type Step string

const (
	StepScratch Step = "scratch"
	StepFetch   Step = "fetch"
	StepPrepare Step = "prepare"
	StepExtract Step = "extract"
	StepRelease Step = "release"
)

// DependencyError attributes a failure to a dependency and step.
type DependencyError struct {
	Name string
	Step Step
	Err  error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency %q: %s: %v", e.Name, e.Step, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// UncleanWorkspaceError is returned when the workspace has uncommitted
// changes and the precondition was not overridden.
type UncleanWorkspaceError struct {
	Root   string
	State  git.WorkspaceState
	Status string // git status --short, may be empty
}

func (e *UncleanWorkspaceError) Error() string {
	msg := fmt.Sprintf("workspace %s has uncommitted changes (%s)", e.Root, e.State)
	if s := strings.TrimRight(e.Status, "\n"); s != "" {
		msg += ":\n" + s
	}
	return msg
}
