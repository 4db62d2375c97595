package selector

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var errEmptyPattern = errors.New("pattern is empty")

// Selector is a compiled set of patterns. A path is selected when it matches
// any of them. A Selector is not safe for concurrent use.
type Selector struct {
	patterns []string
	hits     map[string]bool
}

// Compile validates every pattern and returns a Selector over them.
// Leading "./" and trailing "/" are stripped so "./docs/" selects "docs".
func Compile(patterns []string) (*Selector, error) {
	s := &Selector{
		patterns: make([]string, 0, len(patterns)),
		hits:     make(map[string]bool, len(patterns)),
	}
	for _, p := range patterns {
		norm := normalize(p)
		if norm == "" {
			return nil, &PatternError{Pattern: p, Err: errEmptyPattern}
		}
		if !doublestar.ValidatePattern(norm) {
			return nil, &PatternError{Pattern: p, Err: doublestar.ErrBadPattern}
		}
		s.patterns = append(s.patterns, norm)
	}
	return s, nil
}

// Validate reports the first invalid pattern, if any.
func Validate(patterns []string) error {
	_, err := Compile(patterns)
	return err
}

// Patterns returns the normalized patterns in their original order.
func (s *Selector) Patterns() []string {
	out := make([]string, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// Matches reports whether rel is selected by any pattern.
// rel may use the OS separator; it is converted before matching.
func (s *Selector) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	matched := false
	for _, p := range s.patterns {
		// Patterns were validated in Compile.
		if ok, _ := doublestar.Match(p, rel); ok {
			s.hits[p] = true
			matched = true
		}
	}
	return matched
}

// Unmatched returns the patterns that have not matched any path passed to
// Matches so far.
func (s *Selector) Unmatched() []string {
	var out []string
	for _, p := range s.patterns {
		if !s.hits[p] {
			out = append(out, p)
		}
	}
	return out
}

func normalize(p string) string {
	p = filepath.ToSlash(strings.TrimSpace(p))
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}
