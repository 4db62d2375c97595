package manifest

import (
	"errors"
	"fmt"
)

// ErrExists is returned by Init when the file is already present.
var ErrExists = errors.New("configuration file already exists")

// ConfigurationError reports a malformed, missing or invalid configuration.
type ConfigurationError struct {
	Path string // empty when parsing in-memory data
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
