package fetch

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/wrale/acdm/internal/auth"
	"github.com/wrale/acdm/internal/fstree"
	"github.com/wrale/acdm/internal/selector"
)

const gitDir = ".git"

// Source fetches revisions through a Cloner and extracts selected paths.
type Source struct {
	cloner Cloner
	logger *slog.Logger
}

// NewSource returns a Source that clones with c.
func NewSource(c Cloner, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Source{cloner: c, logger: logger}
}

// Fetch retrieves rev of url into dest, which must be empty or absent, and
// returns the commit that was checked out.
func (s *Source) Fetch(ctx context.Context, url, rev, dest string, a *auth.Descriptor) (string, error) {
	err := s.cloner.CloneRef(ctx, url, rev, dest, a)
	if err != nil {
		if !errors.Is(err, ErrRevisionNotFound) {
			return "", &FetchError{URL: url, Rev: rev, Err: err}
		}

		s.logger.Info("revision is not a branch or tag, falling back to full clone", "url", url, "rev", rev)
		if err := fstree.Clean(dest); err != nil {
			return "", &FetchError{URL: url, Rev: rev, Err: err}
		}
		if err := s.cloner.CloneFull(ctx, url, dest, a); err != nil {
			return "", &FetchError{URL: url, Rev: rev, Err: err}
		}
		if err := s.cloner.Checkout(ctx, dest, rev); err != nil {
			return "", &FetchError{URL: url, Rev: rev, Err: err}
		}
	}

	commit, err := s.cloner.HeadCommit(ctx, dest)
	if err != nil {
		return "", &FetchError{URL: url, Rev: rev, Err: err}
	}
	s.logger.Debug("fetched source", "url", url, "rev", rev, "commit", commit)
	return commit, nil
}

// Extract materialises the files of src selected by patterns into target
// and returns how many files were written. An empty pattern list copies the
// whole tree. The .git directory of src is never copied.
func (s *Source) Extract(src string, patterns []string, target string) (int, error) {
	if len(patterns) == 0 {
		n, err := fstree.CopyAll(src, target, fstree.SkipNames(gitDir))
		if err != nil {
			return n, &ExtractError{Path: src, Err: err}
		}
		return n, nil
	}

	sel, err := selector.Compile(patterns)
	if err != nil {
		return 0, err
	}
	if err := fstree.EnsureDir(target); err != nil {
		return 0, &ExtractError{Path: target, Err: err}
	}

	files := 0
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == src {
			return nil
		}
		if d.IsDir() && d.Name() == gitDir {
			return filepath.SkipDir
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if !sel.Matches(rel) {
			return nil
		}

		dst := filepath.Join(target, rel)
		switch {
		case d.IsDir():
			return fstree.EnsureDir(dst)
		case d.Type()&fs.ModeSymlink != 0:
			if err := fstree.CopySymlink(p, dst); err != nil {
				return err
			}
		default:
			if err := fstree.CopyFile(p, dst); err != nil {
				return err
			}
		}
		files++
		return nil
	})
	if err != nil {
		return files, &ExtractError{Path: src, Err: err}
	}

	unmatched := sel.Unmatched()
	if files == 0 {
		if len(unmatched) == 0 {
			unmatched = sel.Patterns()
		}
		return 0, &NoMatchError{Patterns: unmatched}
	}
	for _, p := range unmatched {
		s.logger.Warn("pattern matched nothing", "pattern", p)
	}
	return files, nil
}
