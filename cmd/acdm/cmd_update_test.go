package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wrale/acdm/internal/engine"
	"github.com/wrale/acdm/internal/fetch"
	"github.com/wrale/acdm/internal/lock"
	"github.com/wrale/acdm/internal/testutil"
)

func TestRunUpdate(t *testing.T) {
	src := testutil.CreateSource(t, upstreamFiles)
	root := setupProject(t, src)
	if _, err := execute(t, root, "include-paths", "dep0", "docs/**"); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, root, "update")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !strings.Contains(out, "[1/1] dep0") {
		t.Errorf("missing progress line: %q", out)
	}

	want := map[string]string{
		"docs/intro.md":     "intro\n",
		"docs/api/index.md": "api\n",
	}
	if diff := cmp.Diff(want, testutil.ReadTree(t, filepath.Join(root, "vendor", "dep0"))); diff != "" {
		t.Errorf("vendored tree mismatch (-want +got):\n%s", diff)
	}

	lf, err := lock.Load(filepath.Join(root, lock.DefaultFile))
	if err != nil {
		t.Fatalf("lock file: %v", err)
	}
	if e := lf.Sources["dep0"]; e == nil || e.Commit != src.Head(t) {
		t.Errorf("lock entry = %+v, want commit %s", e, src.Head(t))
	}
	if got := lastCommitSubject(t, root); got != defaultUpdateMessage {
		t.Errorf("last commit = %q", got)
	}
	if status := testutil.Output(t, root, "status", "--porcelain"); status != "" {
		t.Errorf("workspace should be clean, got:\n%s", status)
	}
}

func TestRunUpdate_idempotent(t *testing.T) {
	src := testutil.CreateSource(t, upstreamFiles)
	root := setupProject(t, src)

	if _, err := execute(t, root, "update", "-m", "Vendor"); err != nil {
		t.Fatal(err)
	}
	head := testutil.Output(t, root, "rev-parse", "HEAD")
	lockBefore, err := os.ReadFile(filepath.Join(root, lock.DefaultFile)) //nolint:gosec // test file
	if err != nil {
		t.Fatal(err)
	}
	tree := testutil.ReadTree(t, root)

	if _, err := execute(t, root, "update", "-m", "Vendor"); err != nil {
		t.Fatal(err)
	}
	if got := testutil.Output(t, root, "rev-parse", "HEAD"); got != head {
		t.Error("second update should not create a commit")
	}
	lockAfter, _ := os.ReadFile(filepath.Join(root, lock.DefaultFile)) //nolint:gosec // test file
	if string(lockAfter) != string(lockBefore) {
		t.Error("lock file should be byte-identical after a no-op update")
	}
	if diff := cmp.Diff(tree, testutil.ReadTree(t, root)); diff != "" {
		t.Errorf("tree changed (-first +second):\n%s", diff)
	}
}

func TestRunUpdate_followsNewCommits(t *testing.T) {
	src := testutil.CreateSource(t, upstreamFiles)
	root := setupProject(t, src)
	if _, err := execute(t, root, "update"); err != nil {
		t.Fatal(err)
	}

	src.Commit(t, "rewrite intro", map[string]string{"docs/intro.md": "new intro\n"})
	if err := os.Remove(filepath.Join(src.Work, "README.md")); err != nil {
		t.Fatal(err)
	}
	src.Commit(t, "drop readme", nil)

	if _, err := execute(t, root, "update"); err != nil {
		t.Fatal(err)
	}
	tree := testutil.ReadTree(t, filepath.Join(root, "vendor", "dep0"))
	if tree["docs/intro.md"] != "new intro\n" {
		t.Errorf("intro = %q", tree["docs/intro.md"])
	}
	if _, ok := tree["README.md"]; ok {
		t.Error("files removed upstream should be removed from the target")
	}
}

func TestRunUpdate_selectedNames(t *testing.T) {
	a := testutil.CreateSource(t, upstreamFiles)
	b := testutil.CreateSource(t, upstreamFiles)
	root := setupProject(t, a, b)

	if _, err := execute(t, root, "update", "dep1", "--skip-commit"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "vendor", "dep0")); !os.IsNotExist(err) {
		t.Error("dep0 should not be fetched")
	}
	if _, err := os.Stat(filepath.Join(root, "vendor", "dep1", "README.md")); err != nil {
		t.Errorf("dep1 should be fetched: %v", err)
	}
	if got := lastCommitSubject(t, root); got == defaultUpdateMessage {
		t.Error("--skip-commit should leave changes uncommitted")
	}
}

func TestRunUpdate_noDependencies(t *testing.T) {
	root := setupProject(t)
	_, err := execute(t, root, "update")
	if err == nil || err.Error() != "no dependencies found to update" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunUpdate_noMatchingDependencies(t *testing.T) {
	src := testutil.CreateSource(t, upstreamFiles)
	root := setupProject(t, src)
	_, err := execute(t, root, "update", "nope")
	if err == nil || err.Error() != "no matching dependencies found to update" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunUpdate_stopsAtFirstFailure(t *testing.T) {
	a := testutil.CreateSource(t, upstreamFiles)
	b := testutil.CreateSource(t, upstreamFiles)
	c := testutil.CreateSource(t, upstreamFiles)
	root := setupProject(t, a, b, c)
	if _, err := execute(t, root, "include-paths", "dep1", "nothing/**"); err != nil {
		t.Fatal(err)
	}
	head := testutil.Output(t, root, "rev-parse", "HEAD")

	out, err := execute(t, root, "update")
	var de *engine.DependencyError
	if !errors.As(err, &de) || de.Name != "dep1" {
		t.Fatalf("expected failure on dep1, got %v", err)
	}
	var nm *fetch.NoMatchError
	if !errors.As(err, &nm) {
		t.Errorf("expected NoMatchError, got %v", err)
	}
	if !strings.Contains(out, "1 of 3 dependencies were updated") {
		t.Errorf("unexpected output: %q", out)
	}
	if _, err := os.Stat(filepath.Join(root, "vendor", "dep0", "README.md")); err != nil {
		t.Error("dep0 should keep its new content")
	}
	if _, err := os.Stat(filepath.Join(root, "vendor", "dep2")); !os.IsNotExist(err) {
		t.Error("dep2 should not be attempted")
	}
	if _, err := os.Stat(filepath.Join(root, lock.DefaultFile)); !os.IsNotExist(err) {
		t.Error("lock file should not be written after a failure")
	}
	if got := testutil.Output(t, root, "rev-parse", "HEAD"); got != head {
		t.Error("a failed run must not commit")
	}
}

func TestRunUpdate_uncleanWorkspace(t *testing.T) {
	src := testutil.CreateSource(t, upstreamFiles)
	root := setupProject(t, src)
	cfgPath := filepath.Join(root, "acdm.toml")
	data, err := os.ReadFile(cfgPath) //nolint:gosec // test file
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfgPath, append(data, "# edited\n"...), 0o644); err != nil { //nolint:gosec // test file
		t.Fatal(err)
	}

	_, err = execute(t, root, "update")
	var ue *engine.UncleanWorkspaceError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UncleanWorkspaceError, got %v", err)
	}
	if !ue.State.Unstaged {
		t.Errorf("state = %s, want unstaged changes", ue.State)
	}
	if _, err := os.Stat(filepath.Join(root, "vendor")); !os.IsNotExist(err) {
		t.Error("nothing should be fetched when the workspace is unclean")
	}
}

func TestRunUpdate_goGitBackend(t *testing.T) {
	src := testutil.CreateSource(t, upstreamFiles)
	src.Tag(t, "v1.0.0")
	root := setupProject(t, src)

	if _, err := execute(t, root, "update", "--backend", "go-git"); err != nil {
		t.Fatalf("update with go-git failed: %v", err)
	}
	if diff := cmp.Diff(upstreamFiles, testutil.ReadTree(t, filepath.Join(root, "vendor", "dep0"))); diff != "" {
		t.Errorf("vendored tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRunUpdate_unknownBackend(t *testing.T) {
	src := testutil.CreateSource(t, upstreamFiles)
	root := setupProject(t, src)
	if _, err := execute(t, root, "update", "--backend", "svn"); err == nil {
		t.Fatal("expected unknown backend error")
	}
}

func TestLockRecorder_prunesRemovedDependencies(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, lock.DefaultFile)
	if err := lock.Save(path, &lock.File{Version: 1, Sources: map[string]*lock.Source{
		"gone": {Commit: "old"},
	}}); err != nil {
		t.Fatal(err)
	}

	r := &lockRecorder{path: path, configured: []string{"docs"}, now: testNow}
	if err := r.Record([]engine.Result{{Name: "docs", URL: "u", Rev: "main", Commit: "abc", Target: "vendor/docs"}}); err != nil {
		t.Fatal(err)
	}

	lf, err := lock.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]*lock.Source{"docs": {URL: "u", Rev: "main", Commit: "abc", Target: "vendor/docs"}}
	if diff := cmp.Diff(want, lf.Sources); diff != "" {
		t.Errorf("lock sources (-want +got):\n%s", diff)
	}
}
