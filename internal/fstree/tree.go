package fstree

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyOption configures CopyAll.
type CopyOption func(*copyConfig)

type copyConfig struct {
	skip map[string]bool
}

// SkipNames excludes entries whose base name is one of names. A skipped
// directory is not descended into.
func SkipNames(names ...string) CopyOption {
	return func(c *copyConfig) {
		for _, n := range names {
			c.skip[n] = true
		}
	}
}

// Clean removes every direct child of path, leaving path itself in place.
// A missing path is not an error.
func Clean(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &FileSystemError{Op: "stat", Path: path, Err: err}
	}
	if !info.IsDir() {
		return &NotADirectoryError{Path: path}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return &FileSystemError{Op: "read dir", Path: path, Err: err}
	}
	for _, e := range entries {
		child := filepath.Join(path, e.Name())
		if err := os.RemoveAll(child); err != nil {
			return &FileSystemError{Op: "remove", Path: child, Err: err}
		}
	}
	return nil
}

// EnsureDir creates path and any missing parents.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil { //nolint:gosec // vendored directories need to be readable
		return &FileSystemError{Op: "mkdir", Path: path, Err: err}
	}
	return nil
}

// CopyAll mirrors every file, directory and symlink under src into dst,
// creating dst if needed. Existing entries in dst that have no counterpart
// in src are left alone. It returns the number of files copied.
func CopyAll(src, dst string, opts ...CopyOption) (int, error) {
	cfg := copyConfig{skip: map[string]bool{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	info, err := os.Stat(src)
	if err != nil {
		return 0, &FileSystemError{Op: "stat", Path: src, Err: err}
	}
	if !info.IsDir() {
		return 0, &NotADirectoryError{Path: src}
	}
	if err := EnsureDir(dst); err != nil {
		return 0, err
	}

	files := 0
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &FileSystemError{Op: "walk", Path: p, Err: walkErr}
		}
		if p == src {
			return nil
		}
		if cfg.skip[d.Name()] {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return &FileSystemError{Op: "rel", Path: p, Err: err}
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return EnsureDir(target)
		case d.Type()&fs.ModeSymlink != 0:
			if err := CopySymlink(p, target); err != nil {
				return err
			}
			files++
			return nil
		default:
			if err := CopyFile(p, target); err != nil {
				return err
			}
			files++
			return nil
		}
	})
	return files, err
}

// CopyFile copies src to dst through a temporary file in dst's directory and
// renames it into place, so readers never observe a partial file. The
// source's permission bits are preserved.
func CopyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // src is inside a scratch clone
	if err != nil {
		return &FileSystemError{Op: "open", Path: src, Err: err}
	}
	defer func() { _ = in.Close() }()

	srcInfo, err := in.Stat()
	if err != nil {
		return &FileSystemError{Op: "stat", Path: src, Err: err}
	}

	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".acdm-tmp-*")
	if err != nil {
		return &FileSystemError{Op: "create temp", Path: dst, Err: err}
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return &FileSystemError{Op: "copy", Path: dst, Err: err}
	}
	if err := tmp.Chmod(srcInfo.Mode().Perm()); err != nil {
		_ = tmp.Close()
		return &FileSystemError{Op: "chmod", Path: dst, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &FileSystemError{Op: "close", Path: dst, Err: err}
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return &FileSystemError{Op: "rename", Path: dst, Err: err}
	}
	return nil
}

// CopySymlink recreates the symlink at src as dst, replacing any existing
// entry at dst. The link target is copied verbatim.
func CopySymlink(src, dst string) error {
	link, err := os.Readlink(src)
	if err != nil {
		return &FileSystemError{Op: "readlink", Path: src, Err: err}
	}
	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &FileSystemError{Op: "remove", Path: dst, Err: err}
	}
	if err := os.Symlink(link, dst); err != nil {
		return &FileSystemError{Op: "symlink", Path: dst, Err: err}
	}
	return nil
}
