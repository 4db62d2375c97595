package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/wrale/acdm/internal/auth"
	"github.com/wrale/acdm/internal/lock"
	"github.com/wrale/acdm/internal/manifest"
)

var (
	// ErrNoDependencies is returned by Select when none are configured.
	ErrNoDependencies = errors.New("no dependencies found to update")
	// ErrNoMatch is returned by Select when no name matched.
	ErrNoMatch = errors.New("no matching dependencies found to update")
)

// Context holds the resolved paths and loaded config for a workspace.
type Context struct {
	Root       string
	ConfigPath string
	LockPath   string
	Config     *manifest.Config
	Lock       *lock.File // may be nil
}

// Load resolves workspace paths from the config file path and loads the
// config (and lock if present). The workspace root is the config's directory.
func Load(configPath string) (*Context, error) {
	configPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	root := filepath.Dir(configPath)
	lockPath := filepath.Join(root, lock.DefaultFile)

	cfg, err := manifest.Load(configPath)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		Root:       root,
		ConfigPath: configPath,
		LockPath:   lockPath,
		Config:     cfg,
	}

	if _, statErr := os.Stat(lockPath); statErr == nil {
		lf, err := lock.Load(lockPath)
		if err != nil {
			return nil, err
		}
		ctx.Lock = lf
	}

	return ctx, nil
}

// Save writes the config back to ConfigPath.
func (c *Context) Save() error {
	return manifest.Save(c.ConfigPath, c.Config)
}

// TargetDir returns the absolute path for a dependency's target.
func (c *Context) TargetDir(d manifest.Dependency) string {
	return filepath.Join(c.Root, d.Target)
}

// Select returns the configured dependencies named in names, or all of them
// when names is empty.
func (c *Context) Select(names []string) ([]manifest.Dependency, error) {
	if len(c.Config.Sources) == 0 {
		return nil, ErrNoDependencies
	}
	deps := manifest.FilterByNames(c.Config.Sources, names)
	if len(deps) == 0 {
		return nil, ErrNoMatch
	}
	return deps, nil
}

// Resolver returns the auth resolver configured for this workspace.
// Relative credential paths are resolved against Root.
func (c *Context) Resolver() *auth.Resolver {
	return auth.NewResolver(c.abs(c.Config.Auth.SSHKeyFile), c.abs(c.Config.Auth.HTTPSTokenFile))
}

// Locked returns the lock entry for name, or nil.
func (c *Context) Locked(name string) *lock.Source {
	if c.Lock == nil {
		return nil
	}
	return c.Lock.Sources[name]
}

func (c *Context) abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// DependencyStatus describes the vendored state of one dependency.
type DependencyStatus struct {
	Name     string   `json:"name"`
	Repo     string   `json:"repository"`
	Rev      string   `json:"revision"`
	Target   string   `json:"target"`
	Patterns []string `json:"sparse_paths"`
	Fetched  bool     `json:"fetched"`
	Files    int      `json:"files"`
	Bytes    int64    `json:"bytes"`
	Commit   string   `json:"commit,omitempty"`
}

// Inspect reports whether d's target exists and, if so, how many files and
// bytes it holds.
func (c *Context) Inspect(d manifest.Dependency) (DependencyStatus, error) {
	s := DependencyStatus{
		Name:     d.Name,
		Repo:     d.Repo,
		Rev:      d.EffectiveRev(),
		Target:   d.Target,
		Patterns: d.SparsePaths,
	}
	if s.Patterns == nil {
		s.Patterns = []string{}
	}
	if l := c.Locked(d.Name); l != nil {
		s.Commit = l.Commit
	}

	dir := c.TargetDir(d)
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("inspecting %s: %w", d.Target, err)
	}
	if !info.IsDir() {
		return s, fmt.Errorf("inspecting %s: not a directory", d.Target)
	}
	s.Fetched = true

	err = filepath.WalkDir(dir, func(_ string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			return nil
		}
		fi, err := e.Info()
		if err != nil {
			return err
		}
		s.Files++
		s.Bytes += fi.Size()
		return nil
	})
	if err != nil {
		return s, fmt.Errorf("inspecting %s: %w", d.Target, err)
	}
	return s, nil
}
