// Package selector compiles shell-glob path patterns and decides whether a
// path relative to a fetched source root is selected for vendoring.
//
// Matching follows doublestar semantics: "*" stays within one path segment,
// "**" spans any number of segments, and "?", character classes and {a,b}
// alternatives behave as in a POSIX shell.
package selector
