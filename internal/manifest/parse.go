package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/wrale/acdm/internal/selector"
)

var backends = map[string]bool{"": true, "git": true, "go-git": true}

// Validate checks the configuration for errors.
func Validate(c *Config) error {
	if err := validate(c); err != nil {
		return &ConfigurationError{Err: err}
	}
	return nil
}

// Save validates and writes the configuration to disk.
func Save(path string, c *Config) error {
	if err := validate(c); err != nil {
		return &ConfigurationError{Path: path, Err: err}
	}
	data, err := Marshal(c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // config file needs to be readable
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Marshal encodes the configuration as TOML.
func Marshal(c *Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

// Load reads and validates an acdm.toml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-selected config path
	if err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	c, err := Parse(data)
	if err != nil {
		var ce *ConfigurationError
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return nil, err
	}
	return c, nil
}

// Parse parses and validates acdm.toml content. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, &ConfigurationError{Err: fmt.Errorf("parsing TOML: %w", err)}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, &ConfigurationError{Err: fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))}
	}
	if err := validate(&c); err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	return &c, nil
}

// Init writes an empty configuration at path. An existing file is kept
// unless force is set.
func Init(path, location string, force bool) (*Config, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return nil, &ConfigurationError{Path: path, Err: ErrExists}
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	c := &Config{Location: location}
	if err := Save(path, c); err != nil {
		return nil, err
	}
	return c, nil
}

func validate(c *Config) error {
	if c.Location != "" {
		if err := validatePath(c.Location, "location"); err != nil {
			return err
		}
	}
	if !backends[c.Backend] {
		return fmt.Errorf("backend must be git or go-git: %q", c.Backend)
	}

	seen := make(map[string]bool, len(c.Sources))
	targets := make(map[string]string, len(c.Sources))
	for i, d := range c.Sources {
		if err := validateDependency(i, d, seen); err != nil {
			return err
		}
		seen[d.Name] = true
		t := filepath.Clean(d.Target)
		if other, ok := targets[t]; ok {
			return fmt.Errorf("dependencies %q and %q share target %s", other, d.Name, t)
		}
		targets[t] = d.Name
	}
	return validateTargets(targets)
}

func validateDependency(i int, d Dependency, seen map[string]bool) error {
	if d.Name == "" {
		return fmt.Errorf("sources[%d].name is required", i)
	}
	if seen[d.Name] {
		return fmt.Errorf("duplicate dependency name %q", d.Name)
	}
	if d.Repo == "" {
		return fmt.Errorf("sources[%d] (%s).repo is required", i, d.Name)
	}
	if t := d.EffectiveType(); t != TypeGit {
		return fmt.Errorf("sources[%d] (%s).type: unsupported repository type %q", i, d.Name, t)
	}
	if d.Target == "" {
		return fmt.Errorf("sources[%d] (%s).target is required", i, d.Name)
	}
	label := fmt.Sprintf("sources[%d] (%s).target", i, d.Name)
	if err := validatePath(d.Target, label); err != nil {
		return err
	}
	cleaned := filepath.Clean(d.Target)
	if cleaned == "." {
		return fmt.Errorf("%s: target must not be the workspace root", label)
	}
	if first := strings.Split(filepath.ToSlash(cleaned), "/")[0]; first == ".git" {
		return fmt.Errorf("%s: target must not be inside .git", label)
	}
	if err := selector.Validate(d.SparsePaths); err != nil {
		return fmt.Errorf("sources[%d] (%s).sparse_paths: %w", i, d.Name, err)
	}
	return nil
}

// validateTargets rejects targets that contain one another, since cleaning
// the outer one would destroy the inner.
func validateTargets(targets map[string]string) error {
	paths := make([]string, 0, len(targets))
	for p := range targets {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for i := 1; i < len(paths); i++ {
		for j := 0; j < i; j++ {
			if isWithin(paths[i], paths[j]) {
				return fmt.Errorf("target of %q (%s) is inside target of %q (%s)",
					targets[paths[i]], paths[i], targets[paths[j]], paths[j])
			}
		}
	}
	return nil
}

func isWithin(p, dir string) bool {
	return strings.HasPrefix(p, dir+string(filepath.Separator))
}

// validatePath ensures a path is relative and does not escape the workspace.
func validatePath(p, label string) error {
	if filepath.IsAbs(p) {
		return fmt.Errorf("%s: absolute path is not allowed: %s", label, p)
	}
	cleaned := filepath.Clean(p)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%s: path must not escape workspace (contains ..): %s", label, p)
	}
	return nil
}
