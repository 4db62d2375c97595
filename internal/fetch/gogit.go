package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/wrale/acdm/internal/auth"
	"github.com/wrale/acdm/internal/fstree"
)

// GoGitCloner implements Cloner in process with go-git.
type GoGitCloner struct{}

// CloneRef implements Cloner. rev is tried as a branch, then as a tag.
func (g *GoGitCloner) CloneRef(ctx context.Context, url, rev, dest string, a *auth.Descriptor) error {
	am, err := goGitAuth(url, a)
	if err != nil {
		return err
	}
	opts := &gogit.CloneOptions{
		URL:          url,
		Auth:         am,
		SingleBranch: true,
		Tags:         gogit.NoTags,
	}
	// Local remotes are cloned in full, as git itself does.
	if !isLocal(url) {
		opts.Depth = 1
	}

	for _, ref := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(rev),
		plumbing.NewTagReferenceName(rev),
	} {
		opts.ReferenceName = ref
		_, err = gogit.PlainCloneContext(ctx, dest, false, opts)
		if err == nil {
			return nil
		}
		if !isRefNotFound(err) {
			return fmt.Errorf("cloning %s: %w", url, err)
		}
		if cerr := fstree.Clean(dest); cerr != nil {
			return cerr
		}
	}
	return fmt.Errorf("cloning %s: %w: %s", url, ErrRevisionNotFound, rev)
}

// CloneFull implements Cloner.
func (g *GoGitCloner) CloneFull(ctx context.Context, url, dest string, a *auth.Descriptor) error {
	am, err := goGitAuth(url, a)
	if err != nil {
		return err
	}
	_, err = gogit.PlainCloneContext(ctx, dest, false, &gogit.CloneOptions{
		URL:        url,
		Auth:       am,
		NoCheckout: true,
		Tags:       gogit.AllTags,
	})
	if err != nil {
		return fmt.Errorf("cloning %s: %w", url, err)
	}
	return nil
}

// Checkout implements Cloner.
func (g *GoGitCloner) Checkout(_ context.Context, dir, rev string) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dir, err)
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return fmt.Errorf("resolving %s: %w", rev, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}
	if err := wt.Checkout(&gogit.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return fmt.Errorf("checking out %s: %w", rev, err)
	}
	return nil
}

// HeadCommit implements Cloner.
func (g *GoGitCloner) HeadCommit(_ context.Context, dir string) (string, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", dir, err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("reading HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

func isRefNotFound(err error) bool {
	return errors.Is(err, plumbing.ErrReferenceNotFound) ||
		errors.Is(err, gogit.NoMatchingRefSpecError{})
}

// goGitAuth converts a descriptor into a go-git transport.AuthMethod.
func goGitAuth(url string, a *auth.Descriptor) (transport.AuthMethod, error) {
	if a == nil {
		return nil, nil
	}
	switch a.Kind {
	case auth.KindSSH:
		user := sshUser(url)
		if a.KeyFile != "" {
			keys, err := gitssh.NewPublicKeysFromFile(user, a.KeyFile, "")
			if err != nil {
				return nil, fmt.Errorf("loading SSH key %s: %w", a.KeyFile, err)
			}
			return keys, nil
		}
		agent, err := gitssh.NewSSHAgentAuth(user)
		if err != nil {
			return nil, fmt.Errorf("connecting to SSH agent: %w", err)
		}
		return agent, nil
	case auth.KindHTTPSToken, auth.KindHTTPSBasic:
		return &githttp.BasicAuth{Username: a.Username, Password: a.Secret}, nil
	}
	return nil, nil
}

// sshUser extracts the login from git@host:path or ssh://user@host/path.
func sshUser(url string) string {
	rest := strings.TrimPrefix(url, "ssh://")
	if at := strings.Index(rest, "@"); at > 0 {
		if slash := strings.IndexAny(rest, "/:"); slash == -1 || slash > at {
			return rest[:at]
		}
	}
	return "git"
}

func isLocal(url string) bool {
	return strings.HasPrefix(url, "file://") || strings.HasPrefix(url, "/") || strings.HasPrefix(url, ".")
}
