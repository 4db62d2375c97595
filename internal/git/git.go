package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wrale/acdm/internal/auth"
)

// Identity used for commits when the repository has none configured.
const (
	fallbackName  = "acdm"
	fallbackEmail = "acdm@localhost"
)

// CloneOpts configures a git clone operation.
type CloneOpts struct {
	Depth      int    // 0 means full history
	Branch     string // branch or tag to check out
	NoCheckout bool
	Auth       *auth.Descriptor
}

// Client issues git commands through a Runner.
type Client struct {
	runner Runner
}

// New returns a Client that runs git through r.
func New(r Runner) *Client {
	return &Client{runner: r}
}

// Clone clones url into dest with the given options.
func (c *Client) Clone(ctx context.Context, url, dest string, opts CloneOpts) error {
	args := []string{"clone", "--quiet"}
	if opts.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(opts.Depth))
	}
	if opts.Branch != "" {
		args = append(args, "--branch", opts.Branch)
	}
	if opts.NoCheckout {
		args = append(args, "--no-checkout")
	}
	args = append(args, "--", url, dest)

	if _, err := c.run(ctx, "", opts.Auth, args...); err != nil {
		return fmt.Errorf("cloning %s: %w", url, err)
	}
	return nil
}

// Checkout checks out rev, which may be any commit-ish.
func (c *Client) Checkout(ctx context.Context, repoDir, rev string) error {
	if _, err := c.run(ctx, repoDir, nil, "checkout", "--quiet", rev); err != nil {
		return fmt.Errorf("checking out %s: %w", rev, err)
	}
	return nil
}

// HeadCommit returns the full SHA of HEAD.
func (c *Client) HeadCommit(ctx context.Context, repoDir string) (string, error) {
	res, err := c.run(ctx, repoDir, nil, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// IsWorkTree reports whether path lies inside a git work tree. It fails
// only when path does not exist or git cannot be run.
func (c *Client) IsWorkTree(ctx context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, &WorkspaceStateError{Path: path, Err: err}
	}
	if !info.IsDir() {
		return false, &WorkspaceStateError{Path: path, Err: errors.New("not a directory")}
	}

	res, err := c.runner.Run(ctx, path, baseEnv(), "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false, &WorkspaceStateError{Path: path, Err: err}
	}
	if !res.ExitOK {
		return false, nil
	}
	return strings.TrimSpace(res.Stdout) == "true", nil
}

// ShortStatus returns the output of git status --short.
func (c *Client) ShortStatus(ctx context.Context, dir string) (string, error) {
	res, err := c.run(ctx, dir, nil, "status", "--short")
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// StageAll stages every change under dir, including deletions. Changes
// elsewhere in the repository are left unstaged.
func (c *Client) StageAll(ctx context.Context, dir string) error {
	_, err := c.run(ctx, dir, nil, "add", "--all", "--", ".")
	return err
}

// Add stages the given paths in the repository.
func (c *Client) Add(ctx context.Context, dir string, paths ...string) error {
	args := append([]string{"add", "--"}, paths...)
	_, err := c.run(ctx, dir, nil, args...)
	return err
}

// Commit records staged changes with message. An empty index is not an
// error. If user.name or user.email is unset, a fallback identity is passed
// for this commit only; the repository's config is left untouched.
func (c *Client) Commit(ctx context.Context, dir, message string) error {
	env := c.commitIdentity(ctx, dir)
	_, err := c.runEnv(ctx, dir, env, "commit", "--quiet", "-m", message)
	if err != nil {
		if IsNothingToCommit(err) {
			return nil
		}
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// CommitPaths commits only the given paths, leaving other staged changes
// out of the commit.
func (c *Client) CommitPaths(ctx context.Context, dir, message string, paths ...string) error {
	if err := c.Add(ctx, dir, paths...); err != nil {
		return err
	}
	env := c.commitIdentity(ctx, dir)
	args := append([]string{"commit", "--quiet", "-m", message, "--"}, paths...)
	if _, err := c.runEnv(ctx, dir, env, args...); err != nil {
		if IsNothingToCommit(err) {
			return nil
		}
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// Init runs git init in the given directory.
func (c *Client) Init(ctx context.Context, dir string) error {
	_, err := c.run(ctx, dir, nil, "init", "--quiet")
	return err
}

// LsRemote checks that url is reachable with the given credentials.
func (c *Client) LsRemote(ctx context.Context, url string, d *auth.Descriptor) error {
	_, err := c.run(ctx, "", d, "ls-remote", "--exit-code", "--quiet", "--", url, "HEAD")
	return err
}

// Version returns the output of git version.
func (c *Client) Version(ctx context.Context) (string, error) {
	res, err := c.run(ctx, "", nil, "version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// commitIdentity returns author and committer env vars when the repository
// lacks an identity.
func (c *Client) commitIdentity(ctx context.Context, dir string) []string {
	var env []string
	if res, err := c.runner.Run(ctx, dir, baseEnv(), "config", "user.name"); err != nil || !res.ExitOK {
		env = append(env, "GIT_AUTHOR_NAME="+fallbackName, "GIT_COMMITTER_NAME="+fallbackName)
	}
	if res, err := c.runner.Run(ctx, dir, baseEnv(), "config", "user.email"); err != nil || !res.ExitOK {
		env = append(env, "GIT_AUTHOR_EMAIL="+fallbackEmail, "GIT_COMMITTER_EMAIL="+fallbackEmail)
	}
	return env
}

// run executes git with d applied and converts a non-zero exit into a
// *CommandError.
func (c *Client) run(ctx context.Context, dir string, d *auth.Descriptor, args ...string) (Result, error) {
	env, flags := authArgs(d)
	return c.runEnv(ctx, dir, env, insertGitFlags(args, flags...)...)
}

func (c *Client) runEnv(ctx context.Context, dir string, env []string, args ...string) (Result, error) {
	res, err := c.runner.Run(ctx, dir, append(baseEnv(), env...), args...)
	if err != nil {
		return res, err
	}
	if !res.ExitOK {
		return res, &CommandError{Args: args, ExitCode: res.ExitCode, Stdout: res.Stdout, Stderr: res.Stderr}
	}
	return res, nil
}

// baseEnv pins git's messages to English so the classifiers can rely on them.
func baseEnv() []string {
	return []string{"LC_ALL=C"}
}
