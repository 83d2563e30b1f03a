package flatlist

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// ExpansionState is the persistent expansion state of a flat list, saved so
// expand/collapse choices survive restarts.
//
// File format (JSON):
//
//	{
//	  "version": 1,
//	  "expanded": {
//	    "soup": true,    // explicitly expanded
//	    "salad": false   // explicitly collapsed
//	  }
//	}
//
// Only parents whose state differs from InitiallyExpanded are stored; keys
// that no longer exist are ignored on restore.
type ExpansionState struct {
	Version  int             `json:"version"`
	Expanded map[string]bool `json:"expanded"`
}

// ExpansionStateVersion is the current schema version.
const ExpansionStateVersion = 1

// DefaultStateFileName is the conventional file name for saved state.
const DefaultStateFileName = "expansion-state.json"

// DefaultExpansionState returns an empty state.
func DefaultExpansionState() *ExpansionState {
	return &ExpansionState{
		Version:  ExpansionStateVersion,
		Expanded: make(map[string]bool),
	}
}

// ExpansionSnapshot captures the current expansion state.
func (a *Adapter) ExpansionSnapshot() *ExpansionState {
	state := DefaultExpansionState()
	if !a.valid() {
		return state
	}
	for _, w := range a.flat {
		if w.IsParent() && w.expanded != w.parent.InitiallyExpanded() {
			state.Expanded[w.parent.Key()] = w.expanded
		}
	}
	return state
}

// RestoreExpansion rebuilds the flat list applying state over each parent's
// InitiallyExpanded flag, then emits FullChanged.
func (a *Adapter) RestoreExpansion(state *ExpansionState) {
	a.begin("RestoreExpansion")
	defer a.end()
	if state == nil || len(state.Expanded) == 0 {
		a.rebuild(InitialExpansion)
		return
	}
	a.rebuild(PreservedExpansion(state.Expanded))
}

// SaveState writes state to path, creating the directory if needed.
func SaveState(path string, state *ExpansionState) error {
	if state == nil {
		state = DefaultExpansionState()
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal expansion state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write expansion state to %s: %w", path, err)
	}
	return nil
}

// LoadState reads state from path. A missing file yields the default state
// silently; an unreadable or corrupted one is logged and also yields the
// default state.
func LoadState(path string) *ExpansionState {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("warning: failed to read expansion state %s: %v", path, err)
		}
		return DefaultExpansionState()
	}

	var state ExpansionState
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("warning: invalid expansion state file, using defaults: %v", err)
		return DefaultExpansionState()
	}
	if state.Version > ExpansionStateVersion {
		log.Printf("warning: expansion state version %d is newer than supported %d, using defaults",
			state.Version, ExpansionStateVersion)
		return DefaultExpansionState()
	}
	if state.Expanded == nil {
		state.Expanded = make(map[string]bool)
	}
	return &state
}
