// Package fstree implements the file tree operations used while vendoring:
// cleaning a directory in place, mirroring one tree into another, and the
// lifecycle of scratch directories that hold fetched sources.
package fstree
