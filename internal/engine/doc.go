// Package engine orchestrates dependency synchronization.
//
// An Updater takes one dependency from fetch to materialised target,
// releasing its scratch directory whatever the outcome. A Manager runs the
// Updater over an ordered list after asserting that the workspace is clean,
// stops at the first failure, and on full success records the fetched
// commits and optionally commits the result.
//
// Collaborators are consumed through the small interfaces in ports.go so
// the engine can be driven by fakes in tests.
package engine
