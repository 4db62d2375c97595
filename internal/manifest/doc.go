// Package manifest loads, validates and edits acdm.toml, the configuration
// that declares each vendored dependency.
package manifest
