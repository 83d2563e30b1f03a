package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/vanderheijden86/xlist/pkg/config"
	"github.com/vanderheijden86/xlist/pkg/flatlist"
	"github.com/vanderheijden86/xlist/pkg/loader"
	"github.com/vanderheijden86/xlist/pkg/model"
	"github.com/vanderheijden86/xlist/pkg/observable"
	"github.com/vanderheijden86/xlist/pkg/search"
	"github.com/vanderheijden86/xlist/pkg/ui"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	dataPath   string
	statePath  string
	filter     string
	dump       bool
	noWatch    bool
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("xl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	help := fs.Bool("help", false, "Show help")
	versionFlag := fs.Bool("version", false, "Show version")
	var opts options
	fs.StringVar(&opts.configPath, "config", "", "Config file (default: discovered .xl/config.yaml)")
	fs.StringVar(&opts.dataPath, "data", "", "Recipe file (.json, .yaml or .db), overrides the config")
	fs.StringVar(&opts.statePath, "state", "", "Expansion state file, overrides the config")
	fs.StringVar(&opts.filter, "filter", "", "Initial filter query")
	fs.BoolVar(&opts.dump, "dump", false, "Print the flat list and exit")
	fs.BoolVar(&opts.noWatch, "no-watch", false, "Do not reload when the data file changes")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *help {
		fmt.Fprintln(stdout, "Usage: xl [options]")
		fmt.Fprintln(stdout, "\nAn expandable recipe list.")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return 0
	}
	if *versionFlag {
		fmt.Fprintf(stdout, "xl %s\n", version)
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	if cfg.Data == "" {
		fmt.Fprintln(stderr, "Error: no data file; pass -data or set data in .xl/config.yaml")
		return 1
	}

	recipes, state, err := loadAll(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading recipes: %v\n", err)
		return 1
	}

	origin := observable.NewSlice(model.Parents(recipes)...)
	adapter := flatlist.New(origin, flatlist.WithPreserveExpansion(cfg.Preserve()))
	filter, err := search.New(origin, adapter, cfg.SearchOptions())
	if err != nil {
		fmt.Fprintf(stderr, "Error configuring search: %v\n", err)
		return 1
	}
	defer filter.Close()
	defer adapter.Close()

	adapter.RestoreExpansion(state)
	if opts.filter != "" {
		filter.Apply(opts.filter)
	}

	if opts.dump || !isTerminal(stdout) {
		dump(stdout, adapter, ui.RecipeBinder{})
		return 0
	}

	watch := cfg.WatchEnabled() && !opts.noWatch
	if err := runTUI(cfg, adapter, origin, filter, recipes, watch); err != nil {
		fmt.Fprintf(stderr, "Error running xl: %v\n", err)
		return 1
	}

	if err := saveState(cfg, adapter); err != nil {
		log.Printf("warning: %v", err)
	}
	return 0
}

// loadConfig resolves the config file and applies flag overrides. Paths
// given as flags are relative to the working directory.
func loadConfig(opts options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		cwd, werr := os.Getwd()
		if werr != nil {
			return nil, werr
		}
		cfg, err = config.LoadOrDefault(cwd)
	}
	if err != nil {
		return nil, err
	}

	if opts.dataPath != "" {
		if cfg.Data, err = filepath.Abs(opts.dataPath); err != nil {
			return nil, err
		}
	}
	if opts.statePath != "" {
		if cfg.State, err = filepath.Abs(opts.statePath); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// loadAll reads the data file and the saved expansion state concurrently.
func loadAll(ctx context.Context, cfg *config.Config) ([]*model.Recipe, *flatlist.ExpansionState, error) {
	var recipes []*model.Recipe
	var state *flatlist.ExpansionState

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recipes, err = loader.LoadFile(gctx, cfg.DataPath())
		return err
	})
	g.Go(func() error {
		state = flatlist.LoadState(cfg.StatePath())
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return recipes, state, nil
}

func runTUI(cfg *config.Config, adapter *flatlist.Adapter, origin *observable.Slice[model.Parent],
	filter *search.Filter, recipes []*model.Recipe, watch bool) error {
	// Detect the background before the program owns the terminal.
	style := "light"
	if lipgloss.HasDarkBackground() {
		style = "dark"
	}
	m := ui.NewListModel(adapter, origin, ui.WithFilter(filter), ui.WithMarkdownStyle(style))
	p := tea.NewProgram(m, tea.WithAltScreen())

	if watch {
		worker, err := ui.NewReloadWorker(ui.WorkerConfig{
			DataPath:      cfg.DataPath(),
			DebounceDelay: cfg.Watch.Debounce,
			Program:       p,
		})
		if err != nil {
			return err
		}
		worker.SetBaseline(recipes)
		if err := worker.Start(); err != nil {
			log.Printf("warning: live reload disabled: %v", err)
		}
		defer worker.Stop()
	}

	_, err := p.Run()
	return err
}

// saveState writes the expansion state and, when it lives in the project's
// .xl directory, keeps that directory out of git.
func saveState(cfg *config.Config, adapter *flatlist.Adapter) error {
	path := cfg.StatePath()
	if err := flatlist.SaveState(path, adapter.ExpansionSnapshot()); err != nil {
		return err
	}
	local := filepath.Join(cfg.Root, config.DirName) + string(filepath.Separator)
	if cfg.Root != "" && strings.HasPrefix(path, local) {
		if err := config.EnsureIgnored(cfg.Root); err != nil {
			return fmt.Errorf("update .gitignore: %w", err)
		}
	}
	return nil
}

// dump prints the flat list, one row per line.
func dump(w io.Writer, adapter *flatlist.Adapter, b ui.Binder) {
	for i := 0; i < adapter.ItemCount(); i++ {
		row, _ := adapter.ItemAt(i)
		pi := adapter.ParentIndexFor(i)
		if row.IsParent() {
			fmt.Fprintln(w, b.BindParent(row.Parent(), pi, row.IsExpanded()))
			continue
		}
		fmt.Fprintln(w, b.BindChild(row.Child(), pi, adapter.ChildIndexFor(i)))
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
