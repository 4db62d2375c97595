package fstree

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"sync"
)

// Scratch tracks ephemeral directories created to hold fetched sources.
// One Scratch is owned by a single update run; it is safe for concurrent use.
type Scratch struct {
	base   string
	prefix string

	mu   sync.Mutex
	dirs map[string]struct{}
}

// NewScratch returns a manager that creates directories under base (the
// system temp directory when empty) named with prefix.
func NewScratch(base, prefix string) *Scratch {
	if prefix == "" {
		prefix = "acdm-"
	}
	return &Scratch{
		base:   base,
		prefix: prefix,
		dirs:   make(map[string]struct{}),
	}
}

// Create allocates and registers a new scratch directory.
func (s *Scratch) Create() (string, error) {
	dir, err := os.MkdirTemp(s.base, s.prefix+"*")
	if err != nil {
		return "", &FileSystemError{Op: "create scratch", Path: s.base, Err: err}
	}
	s.mu.Lock()
	s.dirs[dir] = struct{}{}
	s.mu.Unlock()
	return dir, nil
}

// Release deletes path and forgets it. Paths not created by this manager are
// deleted as well; a path that no longer exists is not an error.
func (s *Scratch) Release(path string) error {
	s.mu.Lock()
	delete(s.dirs, path)
	s.mu.Unlock()

	if err := os.RemoveAll(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &FileSystemError{Op: "release scratch", Path: path, Err: err}
	}
	return nil
}

// ReleaseAll deletes every directory still registered and returns the
// first error encountered.
func (s *Scratch) ReleaseAll() error {
	var first error
	for _, dir := range s.Active() {
		if err := s.Release(dir); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Active returns the registered directories in sorted order.
func (s *Scratch) Active() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.dirs))
	for d := range s.dirs {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
