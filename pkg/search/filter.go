// Package search narrows the parents shown by a flatlist.Adapter to those
// matching a query, re-evaluating whenever the unfiltered origin changes.
//
// A new query swaps the adapter's source. An origin change is reported to the
// current results as a change set, so the adapter updates incrementally.
package search

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/vanderheijden86/xlist/pkg/flatlist"
	"github.com/vanderheijden86/xlist/pkg/model"
	"github.com/vanderheijden86/xlist/pkg/observable"
)

// Casing selects case-sensitive or case-insensitive matching.
type Casing int

const (
	Insensitive Casing = iota
	Sensitive
)

// Order is the sort direction of the results.
type Order int

const (
	Ascending Order = iota
	Descending
)

// Options configure a Filter. The zero value is not usable: Key is required.
type Options struct {
	// Key names the field queries are matched against.
	Key string
	// UseContains selects substring matching; otherwise the field must start
	// with the query.
	UseContains bool
	Casing      Casing
	// SortKey names the field results are sorted by. Empty keeps origin
	// order, or score order when Fuzzy is set. Fuzzy results also keep score
	// order when SortKey equals Key.
	SortKey string
	Order   Order
	// BasePredicate is matched instead of the query when the query is empty.
	// Empty means an empty query matches everything.
	BasePredicate string
	// Fuzzy ranks by fuzzy match score instead of substring/prefix matching.
	// Fuzzy matching ignores Casing.
	Fuzzy bool
}

// DefaultOptions filters by key with case-insensitive substring matching,
// sorted ascending by the same key.
func DefaultOptions(key string) Options {
	return Options{Key: key, UseContains: true, Casing: Insensitive, SortKey: key, Order: Ascending}
}

// Filter feeds a flatlist.Adapter the subset of origin matching the current
// query. Expansion state of parents that stay visible is preserved.
type Filter struct {
	origin observable.List[model.Parent]
	sub    observable.Subscription
	target *flatlist.Adapter
	opts   Options
	query  string

	results *observable.Slice[model.Parent]
}

// New creates a filter over origin and shows the unfiltered (or
// base-predicate) view in target.
func New(origin observable.List[model.Parent], target *flatlist.Adapter, opts Options) (*Filter, error) {
	if strings.TrimSpace(opts.Key) == "" {
		return nil, fmt.Errorf("search: filter key cannot be empty")
	}
	f := &Filter{origin: origin, target: target, opts: opts}
	f.sub = origin.Subscribe(f.follow)
	f.Apply("")
	return f, nil
}

// Apply evaluates input against the origin and installs the result in the
// target adapter.
func (f *Filter) Apply(input string) {
	f.query = input
	matched := f.evaluate(input)

	next := observable.NewSlice(matched...)
	f.target.SetParents(next, true)
	if f.results != nil {
		f.results.Close()
	}
	f.results = next
}

// follow re-evaluates the current query after an origin change and reports
// the difference to the results list.
func (f *Filter) follow(cs *observable.ChangeSet) {
	if f.results == nil || !f.results.IsValid() {
		f.Apply(f.query)
		return
	}
	matched := f.evaluate(f.query)
	f.results.Reset(matched, diffByKey(f.results.Items(), matched, f.changedIn(cs)))
}

// changedIn returns a predicate reporting whether a parent was rewritten by
// cs. After a full refresh every parent counts as rewritten.
func (f *Filter) changedIn(cs *observable.ChangeSet) func(model.Parent) bool {
	if cs == nil {
		return func(model.Parent) bool { return true }
	}
	keys := make(map[string]bool)
	for _, r := range cs.Changes {
		for i := r.Start; i < r.End(); i++ {
			keys[f.origin.At(i).Key()] = true
		}
	}
	return func(p model.Parent) bool { return keys[p.Key()] }
}

// diffByKey describes the change from old to next, matching parents by key.
// Parents present in both for which changed reports true are listed as
// changes. It returns nil, a full refresh, when surviving parents were
// reordered or a key repeats.
func diffByKey(old, next []model.Parent, changed func(model.Parent) bool) *observable.ChangeSet {
	oldAt := make(map[string]int, len(old))
	for i, p := range old {
		if _, dup := oldAt[p.Key()]; dup {
			return nil
		}
		oldAt[p.Key()] = i
	}
	inNext := make(map[string]bool, len(next))
	for _, p := range next {
		if inNext[p.Key()] {
			return nil
		}
		inNext[p.Key()] = true
	}

	cs := &observable.ChangeSet{}
	for i, p := range old {
		if !inNext[p.Key()] {
			cs.Deletions = appendIndex(cs.Deletions, i)
		}
	}
	last := -1
	for j, p := range next {
		i, ok := oldAt[p.Key()]
		if !ok {
			cs.Insertions = appendIndex(cs.Insertions, j)
			continue
		}
		if i < last {
			return nil
		}
		last = i
		if changed(p) {
			cs.Changes = appendIndex(cs.Changes, j)
		}
	}
	return cs
}

func appendIndex(ranges []observable.Range, i int) []observable.Range {
	if n := len(ranges); n > 0 && ranges[n-1].End() == i {
		ranges[n-1].Length++
		return ranges
	}
	return append(ranges, observable.Range{Start: i, Length: 1})
}

// Query returns the input of the last Apply.
func (f *Filter) Query() string { return f.query }

// Results returns the list currently shown by the target.
func (f *Filter) Results() observable.List[model.Parent] { return f.results }

// Options returns the active options.
func (f *Filter) Options() Options { return f.opts }

// SetKey changes the filter key. It does not re-apply the query.
func (f *Filter) SetKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("search: filter key cannot be empty")
	}
	f.opts.Key = key
	return nil
}

func (f *Filter) SetUseContains(useContains bool) { f.opts.UseContains = useContains }
func (f *Filter) SetCasing(c Casing) { f.opts.Casing = c }
func (f *Filter) SetSortKey(key string) { f.opts.SortKey = key }
func (f *Filter) SetOrder(o Order) { f.opts.Order = o }
func (f *Filter) SetBasePredicate(p string) { f.opts.BasePredicate = p }
func (f *Filter) SetFuzzy(on bool) { f.opts.Fuzzy = on }

// Close stops following the origin. The target keeps its last result.
func (f *Filter) Close() {
	if f.sub != nil {
		f.sub.Cancel()
		f.sub = nil
	}
}

func (f *Filter) evaluate(input string) []model.Parent {
	if !f.origin.IsValid() {
		return nil
	}
	all := make([]model.Parent, f.origin.Len())
	for i := range all {
		all[i] = f.origin.At(i)
	}

	query := input
	if query == "" {
		query = f.opts.BasePredicate
	}

	var matched []model.Parent
	scored := false
	switch {
	case query == "":
		matched = all
	case f.opts.Fuzzy:
		matches := fuzzy.FindFrom(query, fieldSource{parents: all, key: f.opts.Key})
		matched = make([]model.Parent, 0, len(matches))
		for _, m := range matches {
			matched = append(matched, all[m.Index])
		}
		scored = true
	default:
		for _, p := range all {
			if f.matches(FieldValue(p, f.opts.Key), query) {
				matched = append(matched, p)
			}
		}
	}

	if f.opts.SortKey != "" && !(scored && f.opts.SortKey == f.opts.Key) {
		f.sort(matched)
	}
	return matched
}

func (f *Filter) matches(value, query string) bool {
	if f.opts.Casing == Insensitive {
		value, query = strings.ToLower(value), strings.ToLower(query)
	}
	if f.opts.UseContains {
		return strings.Contains(value, query)
	}
	return strings.HasPrefix(value, query)
}

func (f *Filter) sort(parents []model.Parent) {
	key := f.opts.SortKey
	slices.SortStableFunc(parents, func(a, b model.Parent) int {
		c := strings.Compare(FieldValue(a, key), FieldValue(b, key))
		if f.opts.Order == Descending {
			return -c
		}
		return c
	})
}

// FieldValue returns the named field of p. Parents that do not implement
// model.Fielder expose only "key".
func FieldValue(p model.Parent, name string) string {
	if fp, ok := p.(model.Fielder); ok {
		if v, ok := fp.Field(name); ok {
			return v
		}
	}
	if name == "key" {
		return p.Key()
	}
	return ""
}

// fieldSource adapts parents to fuzzy.Source.
type fieldSource struct {
	parents []model.Parent
	key     string
}

func (s fieldSource) String(i int) string { return FieldValue(s.parents[i], s.key) }
func (s fieldSource) Len() int { return len(s.parents) }
