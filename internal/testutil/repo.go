// Package testutil builds throwaway git repositories for tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Source is a bare repository together with the work tree it was pushed
// from, so tests can add commits and tags after creation.
type Source struct {
	Bare string
	Work string
}

// CreateBareRepo creates a bare git repository with an initial commit in a temp directory.
// Returns the path to the bare repo.
func CreateBareRepo(t *testing.T) string {
	t.Helper()
	return CreateSource(t, map[string]string{"README.md": "# test\n"}).Bare
}

// CreateSource creates a bare repository on branch main whose first commit
// contains files (relative path -> content).
func CreateSource(t *testing.T, files map[string]string) *Source {
	t.Helper()
	dir := t.TempDir()
	s := &Source{
		Bare: filepath.Join(dir, "repo.git"),
		Work: filepath.Join(dir, "work"),
	}

	Git(t, dir, "init", "-b", "main", s.Work)
	configure(t, s.Work)
	WriteFiles(t, s.Work, files)
	Git(t, s.Work, "add", "--all")
	Git(t, s.Work, "commit", "-m", "initial commit")

	Git(t, dir, "init", "--bare", "-b", "main", s.Bare)
	Git(t, s.Work, "remote", "add", "origin", s.Bare)
	Git(t, s.Work, "push", "--quiet", "origin", "main")
	return s
}

// Commit writes files, commits them on the current branch, pushes, and
// returns the new commit SHA.
func (s *Source) Commit(t *testing.T, message string, files map[string]string) string {
	t.Helper()
	WriteFiles(t, s.Work, files)
	Git(t, s.Work, "add", "--all")
	Git(t, s.Work, "commit", "-m", message)
	Git(t, s.Work, "push", "--quiet", "origin", "HEAD")
	return s.Head(t)
}

// Tag creates a lightweight tag at HEAD and pushes it.
func (s *Source) Tag(t *testing.T, name string) {
	t.Helper()
	Git(t, s.Work, "tag", name)
	Git(t, s.Work, "push", "--quiet", "origin", name)
}

// Branch creates and pushes a branch at HEAD without switching to it.
func (s *Source) Branch(t *testing.T, name string) {
	t.Helper()
	Git(t, s.Work, "branch", name)
	Git(t, s.Work, "push", "--quiet", "origin", name)
}

// Head returns the full SHA of the work tree's HEAD.
func (s *Source) Head(t *testing.T) string {
	t.Helper()
	return strings.TrimSpace(Output(t, s.Work, "rev-parse", "HEAD"))
}

// CreateWorkspace initialises a git work tree with one commit containing
// files and returns its path.
func CreateWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "project")
	Git(t, filepath.Dir(dir), "init", "-b", "main", dir)
	configure(t, dir)
	if len(files) == 0 {
		files = map[string]string{".gitkeep": ""}
	}
	WriteFiles(t, dir, files)
	Git(t, dir, "add", "--all")
	Git(t, dir, "commit", "-m", "initial commit")
	return dir
}

// WriteFiles writes each file under root, creating parent directories.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil { //nolint:gosec // test dir
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil { //nolint:gosec // test file
			t.Fatal(err)
		}
	}
}

// ReadTree returns slash-separated relative path -> content for every
// regular file under root, skipping .git.
func ReadTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p) //nolint:gosec // test file
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

// Paths returns the sorted keys of a tree returned by ReadTree.
func Paths(tree map[string]string) []string {
	out := make([]string, 0, len(tree))
	for k := range tree {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Git runs git in dir and fails the test on error.
func Git(t *testing.T, dir string, args ...string) {
	t.Helper()
	run(t, dir, "git", args...)
}

// Output runs git in dir and returns its stdout.
func Output(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("command git %v failed: %v", args, err)
	}
	return string(out)
}

func configure(t *testing.T, dir string) {
	t.Helper()
	Git(t, dir, "config", "user.email", "test@example.com")
	Git(t, dir, "config", "user.name", "Test")
	Git(t, dir, "config", "commit.gpgsign", "false")
}

func run(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("command %s %v failed: %v", name, args, err)
	}
}
