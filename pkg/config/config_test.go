package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/xlist/pkg/search"
)

func writeConfig(t *testing.T, root, content string) string {
	t.Helper()
	path := filepath.Join(root, DirName, FileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Watch.Debounce != DefaultDebounce {
		t.Errorf("expected default debounce, got %v", cfg.Watch.Debounce)
	}
	if !cfg.Preserve() || !cfg.WatchEnabled() {
		t.Error("expected preservation and watching on by default")
	}
	if cfg.Search.Key != "name" {
		t.Errorf("expected search key name, got %q", cfg.Search.Key)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadAppliesDefaultsAndRoot(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, `
data: recipes.yaml
preserve_expansion: false
watch:
  debounce: 500ms
search:
  key: description
  order: desc
  contains: false
  case_sensitive: true
  fuzzy: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Root != root {
		t.Errorf("expected root %q, got %q", root, cfg.Root)
	}
	if cfg.DataPath() != filepath.Join(root, "recipes.yaml") {
		t.Errorf("unexpected data path %q", cfg.DataPath())
	}
	if !strings.HasSuffix(cfg.StatePath(), filepath.Join(DirName, "expansion-state.json")) {
		t.Errorf("unexpected state path %q", cfg.StatePath())
	}
	if cfg.Preserve() {
		t.Error("expected preserve_expansion false")
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("expected 500ms debounce, got %v", cfg.Watch.Debounce)
	}

	opts := cfg.SearchOptions()
	if opts.Key != "description" || opts.UseContains || opts.Casing != search.Sensitive ||
		opts.Order != search.Descending || !opts.Fuzzy {
		t.Errorf("unexpected search options %+v", opts)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad order", "search:\n  order: sideways\n"},
		{"negative debounce", "watch:\n  debounce: -1s\n"},
		{"malformed", "data: [unterminated\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "data: r.json\n")
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	path, err := Find(sub)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if path != filepath.Join(root, DirName, FileName) {
		t.Errorf("expected config in root, got %q", path)
	}

	cfg, err := LoadOrDefault(sub)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Data != "r.json" {
		t.Errorf("expected discovered config, got data %q", cfg.Data)
	}
}

func TestSaveAndLoad(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, DirName, FileName)
	cfg := DefaultConfig()
	cfg.Data = "recipes.db"
	if err := Save(path, &cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Data != "recipes.db" || loaded.Watch.Debounce != DefaultDebounce {
		t.Errorf("unexpected round trip %+v", loaded)
	}
}

func TestResolveKeepsAbsolutePaths(t *testing.T) {
	cfg := Config{Root: "/project"}
	abs := filepath.Join(string(filepath.Separator), "tmp", "x.json")
	if got := cfg.Resolve(abs); got != abs {
		t.Errorf("expected %q, got %q", abs, got)
	}
	if got := cfg.Resolve(""); got != "" {
		t.Errorf("expected empty path to stay empty, got %q", got)
	}
}
