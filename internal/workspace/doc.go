// Package workspace integrates config and lock loading with path resolution.
// It provides the Context type that holds the workspace root (the directory
// containing acdm.toml), the loaded configuration and lock file, and reports
// the vendored state of each dependency.
package workspace
