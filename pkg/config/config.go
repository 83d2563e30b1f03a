// Package config loads the xl configuration from .xl/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/xlist/pkg/flatlist"
	"github.com/vanderheijden86/xlist/pkg/search"
)

// DirName is the per-project directory holding config and state.
const DirName = ".xl"

// FileName is the config file inside DirName.
const FileName = "config.yaml"

// Config is the xl configuration.
type Config struct {
	// Data is the recipe file (.json, .yaml or .db).
	Data string `yaml:"data"`
	// State is the expansion state file. Defaults to .xl/expansion-state.json.
	State string `yaml:"state,omitempty"`
	// PreserveExpansion keeps expansion across reloads. Default true.
	PreserveExpansion *bool        `yaml:"preserve_expansion,omitempty"`
	Watch             WatchConfig  `yaml:"watch,omitempty"`
	Search            SearchConfig `yaml:"search,omitempty"`

	// Root is the directory containing .xl, or the working directory when
	// no config file was found. Relative paths are resolved against it.
	Root string `yaml:"-"`
}

// WatchConfig controls reloading when the data file changes.
type WatchConfig struct {
	Enabled  *bool         `yaml:"enabled,omitempty"`
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// SearchConfig maps onto search.Options.
type SearchConfig struct {
	Key           string `yaml:"key,omitempty"`
	Contains      *bool  `yaml:"contains,omitempty"`
	CaseSensitive bool   `yaml:"case_sensitive,omitempty"`
	SortKey       string `yaml:"sort_key,omitempty"`
	Order         string `yaml:"order,omitempty"` // asc, desc
	Base          string `yaml:"base,omitempty"`
	Fuzzy         bool   `yaml:"fuzzy,omitempty"`
}

// DefaultDebounce is the watcher debounce when none is configured.
const DefaultDebounce = 200 * time.Millisecond

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.State == "" {
		c.State = filepath.Join(DirName, flatlist.DefaultStateFileName)
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = DefaultDebounce
	}
	if c.Search.Key == "" {
		c.Search.Key = "name"
	}
	if c.Search.Order == "" {
		c.Search.Order = "asc"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce cannot be negative")
	}
	if strings.TrimSpace(c.Search.Key) == "" {
		return fmt.Errorf("search.key is required")
	}
	switch c.Search.Order {
	case "asc", "desc":
	default:
		return fmt.Errorf("search.order must be asc or desc, got %q", c.Search.Order)
	}
	return nil
}

// Load reads the configuration at path, applies defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.Root = filepath.Dir(filepath.Dir(path))
	return &cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadOrDefault loads the config discovered from dir, or returns the
// default config rooted at dir when none exists.
func LoadOrDefault(dir string) (*Config, error) {
	path, err := Find(dir)
	if err != nil {
		cfg := DefaultConfig()
		cfg.Root = dir
		return &cfg, nil
	}
	return Load(path)
}

// Find searches for .xl/config.yaml starting from dir and walking up. It
// stops at the user's home directory.
func Find(dir string) (string, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	root, ok := findRoot(dir)
	if !ok {
		return "", os.ErrNotExist
	}
	return filepath.Join(root, DirName, FileName), nil
}

// findRoot walks up from dir looking for a directory containing
// .xl/config.yaml.
func findRoot(dir string) (string, bool) {
	home, _ := os.UserHomeDir()

	for {
		candidate := filepath.Join(dir, DirName, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		// Don't go above home directory
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}

// Resolve returns p relative to the config root unless it is absolute.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Root == "" {
		return p
	}
	return filepath.Join(c.Root, p)
}

// DataPath returns the resolved data file path.
func (c *Config) DataPath() string { return c.Resolve(c.Data) }

// StatePath returns the resolved expansion state path.
func (c *Config) StatePath() string { return c.Resolve(c.State) }

// Preserve reports whether expansion survives reloads.
func (c *Config) Preserve() bool {
	return c.PreserveExpansion == nil || *c.PreserveExpansion
}

// WatchEnabled reports whether the data file should be watched.
func (c *Config) WatchEnabled() bool {
	return c.Watch.Enabled == nil || *c.Watch.Enabled
}

// SearchOptions converts the search section to search.Options.
func (c *Config) SearchOptions() search.Options {
	opts := search.Options{
		Key:           c.Search.Key,
		UseContains:   c.Search.Contains == nil || *c.Search.Contains,
		SortKey:       c.Search.SortKey,
		BasePredicate: c.Search.Base,
		Fuzzy:         c.Search.Fuzzy,
	}
	if c.Search.CaseSensitive {
		opts.Casing = search.Sensitive
	}
	if c.Search.Order == "desc" {
		opts.Order = search.Descending
	}
	return opts
}
