package fetch

import (
	"context"
	"fmt"

	"github.com/wrale/acdm/internal/auth"
	"github.com/wrale/acdm/internal/git"
)

// Backend names accepted by NewCloner.
const (
	BackendGit   = "git"
	BackendGoGit = "go-git"
)

// Cloner is the version-control capability used by Source.
type Cloner interface {
	// CloneRef makes a shallow clone of rev as a branch or tag. When the
	// remote has no such ref the error wraps ErrRevisionNotFound.
	CloneRef(ctx context.Context, url, rev, dest string, a *auth.Descriptor) error
	// CloneFull clones all history without checking out a work tree.
	CloneFull(ctx context.Context, url, dest string, a *auth.Descriptor) error
	// Checkout checks out rev as any commit-ish.
	Checkout(ctx context.Context, dir, rev string) error
	// HeadCommit returns the full SHA checked out in dir.
	HeadCommit(ctx context.Context, dir string) (string, error)
}

// NewCloner returns the Cloner for backend. The CLI backend runs git
// through client; the go-git backend needs no external binary.
func NewCloner(backend string, client *git.Client) (Cloner, error) {
	switch backend {
	case "", BackendGit:
		return &CLICloner{git: client}, nil
	case BackendGoGit:
		return &GoGitCloner{}, nil
	default:
		return nil, fmt.Errorf("unknown fetch backend %q (must be %s or %s)", backend, BackendGit, BackendGoGit)
	}
}

// CLICloner implements Cloner with the git command line.
type CLICloner struct {
	git *git.Client
}

// NewCLICloner returns a Cloner backed by client.
func NewCLICloner(client *git.Client) *CLICloner {
	return &CLICloner{git: client}
}

// CloneRef implements Cloner.
func (c *CLICloner) CloneRef(ctx context.Context, url, rev, dest string, a *auth.Descriptor) error {
	err := c.git.Clone(ctx, url, dest, git.CloneOpts{Depth: 1, Branch: rev, Auth: a})
	if git.IsMissingRef(err) {
		return fmt.Errorf("%w: %w", ErrRevisionNotFound, err)
	}
	return err
}

// CloneFull implements Cloner.
func (c *CLICloner) CloneFull(ctx context.Context, url, dest string, a *auth.Descriptor) error {
	return c.git.Clone(ctx, url, dest, git.CloneOpts{NoCheckout: true, Auth: a})
}

// Checkout implements Cloner.
func (c *CLICloner) Checkout(ctx context.Context, dir, rev string) error {
	return c.git.Checkout(ctx, dir, rev)
}

// HeadCommit implements Cloner.
func (c *CLICloner) HeadCommit(ctx context.Context, dir string) (string, error) {
	return c.git.HeadCommit(ctx, dir)
}
