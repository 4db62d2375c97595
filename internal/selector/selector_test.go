package selector

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"*.md", "README.md", true},
		{"*.md", "docs/a.md", false},
		{"docs/*", "docs/a.md", true},
		{"docs/*", "docs/sub/b.md", false},
		{"docs/**", "docs/a.md", true},
		{"docs/**", "docs/sub/deep/b.md", true},
		{"docs/**", "src/b.rs", false},
		{"**/*.go", "main.go", true},
		{"**/*.go", "cmd/acdm/main.go", true},
		{"src/?.rs", "src/b.rs", true},
		{"src/?.rs", "src/bb.rs", false},
		{"[ab].txt", "a.txt", true},
		{"[ab].txt", "c.txt", false},
		{"{docs,api}/*.md", "api/x.md", true},
		{"./docs/", "docs", true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"|"+tt.path, func(t *testing.T) {
			s, err := Compile([]string{tt.pattern})
			if err != nil {
				t.Fatalf("Compile(%q): %v", tt.pattern, err)
			}
			if got := s.Matches(tt.path); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

func TestMatches_anyPattern(t *testing.T) {
	s, err := Compile([]string{"docs/**", "schemas/*.json"})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{"docs/a.md", "schemas/user.json"} {
		if !s.Matches(p) {
			t.Errorf("expected %q to match", p)
		}
	}
	if s.Matches("src/main.rs") {
		t.Error("src/main.rs should not match")
	}
}

func TestMatches_osSeparator(t *testing.T) {
	s, err := Compile([]string{"docs/**"})
	if err != nil {
		t.Fatal(err)
	}
	if !s.Matches(filepath.Join("docs", "guide", "intro.md")) {
		t.Error("expected OS-separated path to match")
	}
}

func TestCompile_invalid(t *testing.T) {
	for _, p := range []string{"[abc", "docs/[", "", "   "} {
		_, err := Compile([]string{"docs/**", p})
		if err == nil {
			t.Errorf("Compile(%q) should fail", p)
			continue
		}
		var pe *PatternError
		if !errors.As(err, &pe) {
			t.Errorf("error should be *PatternError, got %T", err)
			continue
		}
		if pe.Pattern != p {
			t.Errorf("PatternError.Pattern = %q, want %q", pe.Pattern, p)
		}
	}
}

func TestUnmatched(t *testing.T) {
	s, err := Compile([]string{"docs/**", "nonexistent/**"})
	if err != nil {
		t.Fatal(err)
	}
	s.Matches("docs/a.md")
	s.Matches("src/b.rs")

	got := s.Unmatched()
	if len(got) != 1 || got[0] != "nonexistent/**" {
		t.Errorf("Unmatched() = %v, want [nonexistent/**]", got)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate([]string{"docs/**", "*.md"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Validate([]string{"[oops"}); err == nil {
		t.Error("expected error for unterminated class")
	}
}
