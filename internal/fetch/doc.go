// Package fetch retrieves a revision of a remote source into a scratch
// directory and materialises the selected subset of it into a target
// directory.
//
// Retrieval is two-tier. A shallow clone of the revision as a branch or tag
// is tried first; only when the remote reports that no such ref exists does
// Fetch fall back to a full clone followed by a checkout of the revision as
// an arbitrary commit-ish. Any other failure is returned as a *FetchError.
package fetch
