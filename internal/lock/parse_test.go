package lock

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParse_valid(t *testing.T) {
	data := []byte(`
version: 1
generated_at: "2026-02-15T12:34:56Z"
tool_version: "0.1.0"
sources:
  docs:
    url: https://github.com/org/project.git
    rev: main
    commit: "a1b2c3d4e5f6"
    target: vendor/docs
  schemas:
    url: git@github.com:org/schemas.git
    rev: v2
    commit: "deadbeef1234"
    target: vendor/schemas
`)
	lf, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lf.Version != 1 {
		t.Errorf("version = %d, want 1", lf.Version)
	}
	if len(lf.Sources) != 2 {
		t.Errorf("sources count = %d, want 2", len(lf.Sources))
	}
	docs := lf.Sources["docs"]
	if docs == nil {
		t.Fatal("docs source not found")
	}
	if docs.Commit != "a1b2c3d4e5f6" {
		t.Errorf("commit = %q", docs.Commit)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)

	lf := &File{
		Version:     1,
		GeneratedAt: "2026-01-01T00:00:00Z",
		ToolVersion: "dev",
		Sources: map[string]*Source{
			"svc": {URL: "git@github.com:org/svc.git", Rev: "main", Commit: "abc123", Target: "vendor/svc"},
		},
	}

	if err := Save(path, lf); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Sources["svc"].Commit != "abc123" {
		t.Errorf("commit = %q, want %q", loaded.Sources["svc"].Commit, "abc123")
	}
}

func TestUpdate_idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	entries := map[string]Source{
		"docs": {URL: "u", Rev: "main", Commit: "c1", Target: "vendor/docs"},
	}
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	wrote, err := Update(path, entries, []string{"docs"}, "dev", t0)
	if err != nil || !wrote {
		t.Fatalf("first update: wrote=%v err=%v", wrote, err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	wrote, err = Update(path, entries, []string{"docs"}, "dev", t0.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if wrote {
		t.Error("unchanged entries should not rewrite the lock file")
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("lock file content changed on a no-op update")
	}
}

func TestUpdate_mergesAndPrunes(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	now := time.Now()
	if _, err := Update(path, map[string]Source{
		"a": {Commit: "1"},
		"b": {Commit: "2"},
	}, []string{"a", "b"}, "dev", now); err != nil {
		t.Fatal(err)
	}

	// Only a was updated this run; b was removed from the config.
	if _, err := Update(path, map[string]Source{"a": {Commit: "3"}}, []string{"a"}, "dev", now); err != nil {
		t.Fatal(err)
	}
	lf, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(lf.Sources) != 1 || lf.Sources["a"].Commit != "3" {
		t.Errorf("sources = %+v", lf.Sources)
	}
}

func TestUpdate_keepsEntriesNotInRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	now := time.Now()
	if _, err := Update(path, map[string]Source{"a": {Commit: "1"}, "b": {Commit: "2"}}, []string{"a", "b"}, "dev", now); err != nil {
		t.Fatal(err)
	}
	if _, err := Update(path, map[string]Source{"a": {Commit: "9"}}, []string{"a", "b"}, "dev", now); err != nil {
		t.Fatal(err)
	}
	lf, _ := Load(path)
	if lf.Sources["b"] == nil || lf.Sources["b"].Commit != "2" {
		t.Errorf("b should be kept: %+v", lf.Sources)
	}
}
