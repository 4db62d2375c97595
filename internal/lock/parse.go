package lock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads an acdm.lock.yaml file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is workspace lock file path
	if err != nil {
		return nil, fmt.Errorf("reading lock file: %w", err)
	}
	return Parse(data)
}

// Parse parses acdm.lock.yaml content.
func Parse(data []byte) (*File, error) {
	var lf File
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing lock YAML: %w", err)
	}
	if lf.Sources == nil {
		lf.Sources = map[string]*Source{}
	}
	return &lf, nil
}

// Save writes the lock file to disk.
func Save(path string, lf *File) error {
	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // lock file needs to be readable
		return fmt.Errorf("writing lock file: %w", err)
	}
	return nil
}

// Update merges entries into the lock file at path, drops entries whose
// names are not in configured, and writes the file only if something
// changed. It reports whether the file was written.
func Update(path string, entries map[string]Source, configured []string, toolVersion string, now time.Time) (bool, error) {
	lf, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		lf = &File{Version: 1, Sources: map[string]*Source{}}
	} else if err != nil {
		return false, err
	}

	changed := false
	for name, e := range entries {
		if cur, ok := lf.Sources[name]; ok && *cur == e {
			continue
		}
		lf.Sources[name] = &e
		changed = true
	}

	keep := make(map[string]bool, len(configured))
	for _, n := range configured {
		keep[n] = true
	}
	for name := range lf.Sources {
		if !keep[name] {
			delete(lf.Sources, name)
			changed = true
		}
	}

	if !changed {
		return false, nil
	}
	lf.Version = 1
	lf.GeneratedAt = now.UTC().Format(time.RFC3339)
	lf.ToolVersion = toolVersion
	if err := Save(path, lf); err != nil {
		return false, err
	}
	return true, nil
}
