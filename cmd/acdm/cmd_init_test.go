package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wrale/acdm/internal/manifest"
	"github.com/wrale/acdm/internal/testutil"
)

func TestRunInit(t *testing.T) {
	root := testutil.CreateWorkspace(t, nil)

	out, err := execute(t, root, "init", "--location", "third_party")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, "Created") {
		t.Errorf("unexpected output: %q", out)
	}

	cfg, err := manifest.Load(filepath.Join(root, "acdm.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Location != "third_party" {
		t.Errorf("location = %q, want third_party", cfg.Location)
	}
	if got := lastCommitSubject(t, root); got != "Initialize acdm" {
		t.Errorf("last commit = %q, want %q", got, "Initialize acdm")
	}
}

func TestRunInit_existing(t *testing.T) {
	root := testutil.CreateWorkspace(t, nil)
	if _, err := execute(t, root, "init", "--skip-commit"); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, root, "init")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already exists error, got %v", err)
	}

	if _, err := execute(t, root, "--force", "init", "--skip-commit", "--location", "vendor"); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}
	cfg, err := manifest.Load(filepath.Join(root, "acdm.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Location != "vendor" {
		t.Errorf("location = %q, want vendor", cfg.Location)
	}
}

func TestRunInit_notVersioned(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, dir, "init"); err != nil {
		t.Fatalf("init outside a repository should succeed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "acdm.toml")); err != nil {
		t.Fatal(err)
	}
}
