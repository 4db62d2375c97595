package manifest

import (
	"fmt"
	"path"

	"github.com/wrale/acdm/internal/selector"
)

// AddDependency appends d after validating the resulting configuration.
// The configuration is left unchanged on error.
func (c *Config) AddDependency(d Dependency) error {
	if d.Type == "" {
		d.Type = TypeGit
	}
	if d.Rev == "" {
		d.Rev = DefaultRev
	}
	if d.SparsePaths == nil {
		d.SparsePaths = []string{}
	}
	next := *c
	next.Sources = append(append([]Dependency(nil), c.Sources...), d)
	if err := Validate(&next); err != nil {
		return err
	}
	c.Sources = next.Sources
	return nil
}

// IncludePaths appends the patterns not already present to the named
// dependency and returns the ones that were added. Patterns are compared
// and stored in normalized form, so "./docs/" duplicates "docs".
func (c *Config) IncludePaths(name string, patterns []string) ([]string, error) {
	d := c.Find(name)
	if d == nil {
		return nil, &ConfigurationError{Err: fmt.Errorf("dependency %q not found", name)}
	}
	sel, err := selector.Compile(patterns)
	if err != nil {
		return nil, &ConfigurationError{Err: fmt.Errorf("sparse_paths: %w", err)}
	}
	have := toSet(d.SparsePaths)
	if cur, err := selector.Compile(d.SparsePaths); err == nil {
		have = toSet(cur.Patterns())
	}
	var added []string
	for _, p := range sel.Patterns() {
		if have[p] {
			continue
		}
		have[p] = true
		added = append(added, p)
	}
	if len(added) == 0 {
		return nil, nil
	}

	prev := d.SparsePaths
	d.SparsePaths = append(append([]string(nil), prev...), added...)
	if err := Validate(c); err != nil {
		d.SparsePaths = prev
		return nil, err
	}
	return added, nil
}

// DefaultTarget is the target used for a new dependency named name.
func (c *Config) DefaultTarget(name string) string {
	if c.Location == "" {
		return name
	}
	return path.Join(c.Location, name)
}

// FilterByNames returns the dependencies whose names are in names, in
// declaration order. An empty names list selects every dependency.
func FilterByNames(deps []Dependency, names []string) []Dependency {
	if len(names) == 0 {
		return deps
	}
	want := toSet(names)
	var result []Dependency
	for _, d := range deps {
		if want[d.Name] {
			result = append(result, d)
		}
	}
	return result
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}
