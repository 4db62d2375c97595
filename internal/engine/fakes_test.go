package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/wrale/acdm/internal/auth"
	"github.com/wrale/acdm/internal/fetch"
	"github.com/wrale/acdm/internal/fstree"
	"github.com/wrale/acdm/internal/git"
)

// fakeFetcher serves in-memory repositories keyed by URL and extracts with
// the real fetch.Source so selection behaves exactly as in production.
type fakeFetcher struct {
	repos   map[string]map[string]string
	fail    map[string]error
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url, _, dest string, _ *auth.Descriptor) (string, error) {
	f.fetched = append(f.fetched, url)
	if err := f.fail[url]; err != nil {
		return "", err
	}
	files, ok := f.repos[url]
	if !ok {
		return "", fetch.ErrRevisionNotFound
	}
	for rel, content := range files {
		p := filepath.Join(dest, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return "", err
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			return "", err
		}
	}
	return "commit-" + url, nil
}

func (f *fakeFetcher) Extract(src string, patterns []string, target string) (int, error) {
	return fetch.NewSource(nil, nil).Extract(src, patterns, target)
}

// fakeGuard records the calls the Manager makes against the workspace.
type fakeGuard struct {
	versioned   bool
	worktreeErr error
	state       git.WorkspaceState
	status      string
	commitErr   error

	staged  int
	commits []string
}

func (g *fakeGuard) IsWorkTree(context.Context, string) (bool, error) {
	return g.versioned, g.worktreeErr
}

func (g *fakeGuard) State(context.Context, string) (git.WorkspaceState, error) {
	return g.state, nil
}

func (g *fakeGuard) ShortStatus(context.Context, string) (string, error) {
	return g.status, nil
}

func (g *fakeGuard) StageAll(context.Context, string) error {
	g.staged++
	return nil
}

func (g *fakeGuard) Commit(_ context.Context, _, message string) error {
	if g.commitErr != nil {
		return g.commitErr
	}
	g.commits = append(g.commits, message)
	return nil
}

// releaseFailingScratch behaves like fstree.Scratch but reports err from
// every Release.
type releaseFailingScratch struct {
	*fstree.Scratch
	err error
}

func (s *releaseFailingScratch) Release(path string) error {
	_ = s.Scratch.Release(path)
	return s.err
}

type recorderFunc func([]Result) error

func (f recorderFunc) Record(r []Result) error { return f(r) }

// trackingFS wraps OSFileSystem and remembers which targets were cleaned.
type trackingFS struct {
	OSFileSystem
	mu      sync.Mutex
	cleaned []string
}

func (fs *trackingFS) Clean(path string) error {
	fs.mu.Lock()
	fs.cleaned = append(fs.cleaned, path)
	fs.mu.Unlock()
	return fs.OSFileSystem.Clean(path)
}
