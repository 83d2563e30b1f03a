package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCoversDir(t *testing.T) {
	tests := []struct {
		line    string
		matches bool
	}{
		{".xl", true},
		{".xl/", true},
		{".xl/*", true},
		{".xl/**", true},
		{".xl/**/*", true},
		{"/.xl/", true},

		{"", false},
		{".xl2", false},
		{"xl/", false},
		{".xl-backup", false},
		{"*.xl", false},
		{".xl/state.json", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := coversDir(tt.line, DirName); got != tt.matches {
				t.Errorf("coversDir(%q) = %v, want %v", tt.line, got, tt.matches)
			}
		})
	}
}

func TestEnsureIgnoredCreatesFile(t *testing.T) {
	dir := t.TempDir()
	if err := EnsureIgnored(dir); err != nil {
		t.Fatalf("EnsureIgnored failed: %v", err)
	}
	content, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), ".xl/\n") {
		t.Errorf("expected .xl/ entry, got %q", content)
	}
	if strings.HasPrefix(string(content), "\n") {
		t.Error("new file should not start with a blank line")
	}
}

func TestEnsureIgnoredAppendsOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitignore")
	if err := os.WriteFile(path, []byte("node_modules/"), 0o644); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := EnsureIgnored(dir); err != nil {
			t.Fatalf("EnsureIgnored failed: %v", err)
		}
	}

	content, _ := os.ReadFile(path)
	if n := strings.Count(string(content), ".xl/"); n != 1 {
		t.Errorf("expected exactly one .xl/ entry, got %d in %q", n, content)
	}
	if !strings.HasPrefix(string(content), "node_modules/\n\n# xl") {
		t.Errorf("expected existing content preserved and separated, got %q", content)
	}
}
