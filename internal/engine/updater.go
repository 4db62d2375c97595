package engine

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/wrale/acdm/internal/auth"
	"github.com/wrale/acdm/internal/manifest"
)

// Result describes one successfully updated dependency.
type Result struct {
	Name   string
	URL    string
	Rev    string
	Commit string
	Target string // relative to the workspace root
	Files  int
}

// Updater synchronizes a single dependency.
type Updater struct {
	fetcher Fetcher
	fs      FileSystem
	auth    AuthResolver
	logger  *slog.Logger
}

// NewUpdater wires an Updater. auth may be nil for anonymous fetches.
func NewUpdater(f Fetcher, fs FileSystem, a AuthResolver, logger *slog.Logger) *Updater {
	if fs == nil {
		fs = OSFileSystem{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Updater{fetcher: f, fs: fs, auth: a, logger: logger}
}

// Update fetches dep into a scratch directory from scratch, replaces its
// target under root with the selected content, and releases the scratch
// directory. The target is only cleaned after a successful fetch.
func (u *Updater) Update(ctx context.Context, scratch ScratchSpace, dep manifest.Dependency, root string) (res Result, err error) {
	log := u.logger.With("dependency", dep.Name)

	dir, err := scratch.Create()
	if err != nil {
		return res, &DependencyError{Name: dep.Name, Step: StepScratch, Err: err}
	}
	log.Debug("allocated scratch directory", "path", dir)

	defer func() {
		rerr := scratch.Release(dir)
		if rerr == nil {
			return
		}
		if err == nil {
			err = &DependencyError{Name: dep.Name, Step: StepRelease, Err: rerr}
			return
		}
		log.Warn("failed to release scratch directory", "path", dir, "error", rerr)
	}()

	a, err := u.resolve(dep.Repo)
	if err != nil {
		return res, &DependencyError{Name: dep.Name, Step: StepFetch, Err: err}
	}

	log.Info("fetching", "url", dep.Repo, "rev", dep.EffectiveRev(), "auth", a.Describe())
	commit, err := u.fetcher.Fetch(ctx, dep.Repo, dep.EffectiveRev(), dir, a)
	if err != nil {
		return res, &DependencyError{Name: dep.Name, Step: StepFetch, Err: err}
	}

	target := filepath.Join(root, dep.Target)
	if err := u.fs.EnsureDir(target); err != nil {
		return res, &DependencyError{Name: dep.Name, Step: StepPrepare, Err: err}
	}
	if err := u.fs.Clean(target); err != nil {
		return res, &DependencyError{Name: dep.Name, Step: StepPrepare, Err: err}
	}

	files, err := u.fetcher.Extract(dir, dep.SparsePaths, target)
	if err != nil {
		return res, &DependencyError{Name: dep.Name, Step: StepExtract, Err: err}
	}

	log.Info("updated", "commit", commit, "files", files, "target", dep.Target)
	return Result{
		Name:   dep.Name,
		URL:    dep.Repo,
		Rev:    dep.EffectiveRev(),
		Commit: commit,
		Target: dep.Target,
		Files:  files,
	}, nil
}

func (u *Updater) resolve(url string) (*auth.Descriptor, error) {
	if u.auth == nil {
		return nil, nil
	}
	return u.auth.Resolve(url)
}
