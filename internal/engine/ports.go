package engine

import (
	"context"

	"github.com/wrale/acdm/internal/auth"
	"github.com/wrale/acdm/internal/fstree"
	"github.com/wrale/acdm/internal/git"
)

// Fetcher retrieves sources and extracts selected paths from them.
type Fetcher interface {
	Fetch(ctx context.Context, url, rev, dest string, a *auth.Descriptor) (commit string, err error)
	Extract(src string, patterns []string, target string) (files int, err error)
}

// FileSystem prepares target directories.
type FileSystem interface {
	EnsureDir(path string) error
	Clean(path string) error
}

// ScratchSpace allocates and releases scratch directories.
// *fstree.Scratch satisfies it.
type ScratchSpace interface {
	Create() (string, error)
	Release(path string) error
	ReleaseAll() error
}

// Guard inspects and commits the enclosing workspace.
// *git.Client satisfies it.
type Guard interface {
	IsWorkTree(ctx context.Context, path string) (bool, error)
	State(ctx context.Context, path string) (git.WorkspaceState, error)
	ShortStatus(ctx context.Context, path string) (string, error)
	StageAll(ctx context.Context, path string) error
	Commit(ctx context.Context, path, message string) error
}

// AuthResolver picks credentials for a source URL.
// *auth.Resolver satisfies it.
type AuthResolver interface {
	Resolve(url string) (*auth.Descriptor, error)
}

// Recorder persists the outcome of a successful run.
type Recorder interface {
	Record(results []Result) error
}

// OSFileSystem implements FileSystem on the local disk.
type OSFileSystem struct{}

// EnsureDir implements FileSystem.
func (OSFileSystem) EnsureDir(path string) error { return fstree.EnsureDir(path) }

// Clean implements FileSystem.
func (OSFileSystem) Clean(path string) error { return fstree.Clean(path) }

// NewScratch returns a fresh scratch manager in the system temp directory.
func NewScratch() ScratchSpace { return fstree.NewScratch("", "acdm-") }
