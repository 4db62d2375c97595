// Package git wraps the git CLI for the operations acdm needs: cloning a
// source at a revision, checking out commits, and guarding the enclosing
// workspace (work tree detection, cleanliness, staging and committing).
//
// Every invocation goes through a Runner so callers can substitute a
// scripted runner in tests. Non-zero exits surface as *CommandError, and
// the few outcomes that must be recognised from git's diagnostics are
// classified by IsMissingRef and IsNothingToCommit.
package git
