// Package lock handles parsing and writing of acdm.lock.yaml files.
// Lock files record the exact commit vendored for each dependency,
// so a revision such as a branch name can be traced to what was fetched.
package lock
