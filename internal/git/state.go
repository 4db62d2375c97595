package git

import (
	"context"
	"fmt"
	"strings"
)

// WorkspaceState summarises the uncommitted changes in a work tree.
type WorkspaceState struct {
	Staged    bool
	Unstaged  bool
	Untracked bool
}

// IsClean reports whether there are no staged, unstaged or untracked changes.
func (s WorkspaceState) IsClean() bool {
	return !s.Staged && !s.Unstaged && !s.Untracked
}

func (s WorkspaceState) String() string {
	if s.IsClean() {
		return "clean"
	}
	var parts []string
	if s.Staged {
		parts = append(parts, "staged changes")
	}
	if s.Unstaged {
		parts = append(parts, "unstaged changes")
	}
	if s.Untracked {
		parts = append(parts, "untracked files")
	}
	return strings.Join(parts, ", ")
}

// State computes the state of the whole repository containing dir with
// three independent checks.
func (c *Client) State(ctx context.Context, dir string) (WorkspaceState, error) {
	var s WorkspaceState
	var err error

	if s.Staged, err = c.differs(ctx, dir, "diff", "--cached", "--quiet"); err != nil {
		return s, fmt.Errorf("checking staged changes: %w", err)
	}
	if s.Unstaged, err = c.differs(ctx, dir, "diff", "--quiet"); err != nil {
		return s, fmt.Errorf("checking unstaged changes: %w", err)
	}

	res, err := c.run(ctx, dir, nil, "ls-files", "--others", "--exclude-standard", "--directory", "--no-empty-directory", "--", ":/")
	if err != nil {
		return s, fmt.Errorf("checking untracked files: %w", err)
	}
	s.Untracked = strings.TrimSpace(res.Stdout) != ""
	return s, nil
}

// differs runs a --quiet diff, where exit 1 means differences were found
// and any other non-zero exit is a failure.
func (c *Client) differs(ctx context.Context, dir string, args ...string) (bool, error) {
	res, err := c.runner.Run(ctx, dir, baseEnv(), args...)
	if err != nil {
		return false, err
	}
	switch {
	case res.ExitOK:
		return false, nil
	case res.ExitCode == 1:
		return true, nil
	default:
		return false, &CommandError{Args: args, ExitCode: res.ExitCode, Stdout: res.Stdout, Stderr: res.Stderr}
	}
}
