package manifest

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/wrale/acdm/internal/selector"
)

func TestParse_valid(t *testing.T) {
	data := []byte(`
location = "vendor"
backend = "go-git"

[auth]
ssh_key_file = "/home/me/.ssh/id_ed25519"

[[sources]]
name = "docs"
repo = "https://github.com/org/project.git"
rev = "v1.2.0"
type = "git"
sparse_paths = ["docs/**", "*.md"]
target = "vendor/docs"

[[sources]]
name = "schemas"
repo = "git@github.com:org/schemas.git"
target = "vendor/schemas"
`)
	c, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Location != "vendor" {
		t.Errorf("location = %q, want %q", c.Location, "vendor")
	}
	if c.Backend != "go-git" {
		t.Errorf("backend = %q", c.Backend)
	}
	if c.Auth.SSHKeyFile != "/home/me/.ssh/id_ed25519" {
		t.Errorf("ssh_key_file = %q", c.Auth.SSHKeyFile)
	}
	if len(c.Sources) != 2 {
		t.Fatalf("sources count = %d, want 2", len(c.Sources))
	}
	if diff := cmp.Diff([]string{"docs/**", "*.md"}, c.Sources[0].SparsePaths); diff != "" {
		t.Errorf("sparse_paths mismatch (-want +got):\n%s", diff)
	}
	s := c.Sources[1]
	if s.EffectiveRev() != "main" {
		t.Errorf("default rev = %q, want main", s.EffectiveRev())
	}
	if s.EffectiveType() != "git" {
		t.Errorf("default type = %q, want git", s.EffectiveType())
	}
}

func TestParse_empty(t *testing.T) {
	c, err := Parse(nil)
	if err != nil {
		t.Fatalf("empty config should parse: %v", err)
	}
	if len(c.Sources) != 0 {
		t.Errorf("sources = %d, want 0", len(c.Sources))
	}
}

func TestParse_invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"syntax", `[[sources]`, "parsing TOML"},
		{"unknown key", "colour = \"red\"\n", "unknown keys: colour"},
		{"missing name", "[[sources]]\nrepo = \"r\"\ntarget = \"t\"\n", "name is required"},
		{"missing repo", "[[sources]]\nname = \"a\"\ntarget = \"t\"\n", "repo is required"},
		{"missing target", "[[sources]]\nname = \"a\"\nrepo = \"r\"\n", "target is required"},
		{"unsupported type", "[[sources]]\nname = \"a\"\nrepo = \"r\"\ntype = \"svn\"\ntarget = \"t\"\n", "unsupported repository type"},
		{"absolute target", "[[sources]]\nname = \"a\"\nrepo = \"r\"\ntarget = \"/etc\"\n", "absolute path"},
		{"escaping target", "[[sources]]\nname = \"a\"\nrepo = \"r\"\ntarget = \"../x\"\n", "must not escape"},
		{"root target", "[[sources]]\nname = \"a\"\nrepo = \"r\"\ntarget = \"./\"\n", "workspace root"},
		{"git target", "[[sources]]\nname = \"a\"\nrepo = \"r\"\ntarget = \".git/x\"\n", "inside .git"},
		{"bad backend", "backend = \"hg\"\n", "backend must be"},
		{
			"duplicate name",
			"[[sources]]\nname = \"a\"\nrepo = \"r\"\ntarget = \"x\"\n[[sources]]\nname = \"a\"\nrepo = \"r\"\ntarget = \"y\"\n",
			"duplicate dependency name",
		},
		{
			"shared target",
			"[[sources]]\nname = \"a\"\nrepo = \"r\"\ntarget = \"x\"\n[[sources]]\nname = \"b\"\nrepo = \"r\"\ntarget = \"x/\"\n",
			"share target",
		},
		{
			"nested target",
			"[[sources]]\nname = \"a\"\nrepo = \"r\"\ntarget = \"vendor\"\n[[sources]]\nname = \"b\"\nrepo = \"r\"\ntarget = \"vendor/b\"\n",
			"is inside target",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Errorf("expected ConfigurationError, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err, tt.want)
			}
		})
	}
}

func TestParse_invalidPattern(t *testing.T) {
	_, err := Parse([]byte("[[sources]]\nname = \"a\"\nrepo = \"r\"\ntarget = \"t\"\nsparse_paths = [\"[oops\"]\n"))
	var pe *selector.PatternError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PatternError in chain, got %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	c := &Config{Location: "vendor"}
	if err := c.AddDependency(Dependency{Name: "docs", Repo: "https://host/org/docs.git", Target: "vendor/docs"}); err != nil {
		t.Fatal(err)
	}
	if err := Save(path, c); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(c, loaded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	_, err := Load(path)
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if ce.Path != path {
		t.Errorf("path = %q, want %q", ce.Path, path)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("expected fs.ErrNotExist in chain")
	}
}

func TestLoad_invalidReportsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte("nope = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), path) {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	if _, err := Init(path, "vendor", false); err != nil {
		t.Fatalf("init: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Location != "vendor" {
		t.Errorf("location = %q", c.Location)
	}

	if _, err := Init(path, "", false); !errors.Is(err, ErrExists) {
		t.Errorf("second init should fail with ErrExists, got %v", err)
	}
	if _, err := Init(path, "third_party", true); err != nil {
		t.Errorf("forced init: %v", err)
	}
}
