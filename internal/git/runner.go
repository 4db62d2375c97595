package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Result is the outcome of a git process that ran to completion.
type Result struct {
	ExitOK   bool
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes git with args in dir. extraEnv is appended to the process
// environment. A non-zero exit is reported through Result, not as an error;
// the error is reserved for processes that could not be run at all.
type Runner interface {
	Run(ctx context.Context, dir string, extraEnv []string, args ...string) (Result, error)
}

// ExecRunner runs the git binary found on PATH.
type ExecRunner struct {
	Path   string // defaults to "git"
	Logger *slog.Logger
}

// NewExecRunner returns a runner that logs each invocation at debug level.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	return &ExecRunner{Path: "git", Logger: logger}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, dir string, extraEnv []string, args ...string) (Result, error) {
	bin := r.Path
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, args...) //nolint:gosec // args are built by Client
	cmd.Dir = dir
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if r.Logger != nil {
		r.Logger.Debug("running git", "args", redactArgs(args), "dir", dir)
	}

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		res.ExitOK = true
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		res.ExitCode = exitErr.ExitCode()
		if r.Logger != nil {
			r.Logger.Debug("git exited non-zero", "args", redactArgs(args), "code", res.ExitCode)
		}
		return res, nil
	}
	if errors.Is(err, exec.ErrNotFound) {
		return res, ErrGitNotFound
	}
	if ctx.Err() != nil {
		return res, fmt.Errorf("git %s: %w", strings.Join(redactArgs(args), " "), ctx.Err())
	}
	return res, fmt.Errorf("git %s: %w", strings.Join(redactArgs(args), " "), err)
}

// IsGitInstalled returns true if git is available on the system PATH.
func IsGitInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// redactArgs hides the inline credential helper so it never reaches logs.
func redactArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if strings.HasPrefix(a, "credential.helper=!") {
			a = "credential.helper=<redacted>"
		}
		out[i] = a
	}
	return out
}
