package search

import (
	"testing"

	"github.com/vanderheijden86/xlist/pkg/flatlist"
	"github.com/vanderheijden86/xlist/pkg/model"
	"github.com/vanderheijden86/xlist/pkg/observable"
)

func sampleOrigin() *observable.Slice[model.Parent] {
	return observable.NewSlice(model.Parents(sampleRecipes())...)
}

func sampleRecipes() []*model.Recipe {
	return []*model.Recipe{
		model.NewRecipe("r1", "Tomato Soup", false,
			&model.Ingredient{ID: "i1", Name: "Tomato", Vegetarian: true}),
		model.NewRecipe("r2", "Beef Stew", true,
			&model.Ingredient{ID: "i2", Name: "Beef"},
			&model.Ingredient{ID: "i3", Name: "Carrot", Vegetarian: true}),
		model.NewRecipe("r3", "Salad", false),
		model.NewRecipe("r4", "soup of the day", false),
	}
}

func keys(l observable.List[model.Parent]) []string {
	out := make([]string, l.Len())
	for i := range out {
		out[i] = l.At(i).Key()
	}
	return out
}

func expectKeys(t *testing.T, l observable.List[model.Parent], want ...string) {
	t.Helper()
	got := keys(l)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestNewRejectsEmptyKey(t *testing.T) {
	origin := sampleOrigin()
	if _, err := New(origin, flatlist.New(origin), Options{}); err == nil {
		t.Error("expected error for empty filter key")
	}
}

func TestFilterContainsInsensitive(t *testing.T) {
	origin := sampleOrigin()
	a := flatlist.New(origin)
	f, err := New(origin, a, DefaultOptions("name"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Empty query shows everything sorted by name.
	expectKeys(t, f.Results(), "r2", "r3", "r1", "r4")

	f.Apply("SOUP")
	expectKeys(t, f.Results(), "r1", "r4")
	if f.Query() != "SOUP" {
		t.Errorf("expected query SOUP, got %q", f.Query())
	}
	if a.ItemCount() != 2 {
		t.Errorf("expected 2 rows, got %d", a.ItemCount())
	}
}

func TestFilterPrefixSensitive(t *testing.T) {
	origin := sampleOrigin()
	a := flatlist.New(origin)
	f, _ := New(origin, a, Options{Key: "name", Casing: Sensitive})

	f.Apply("soup")
	expectKeys(t, f.Results(), "r4")

	f.Apply("Soup")
	expectKeys(t, f.Results())
}

func TestFilterSortDescending(t *testing.T) {
	origin := sampleOrigin()
	a := flatlist.New(origin)
	f, _ := New(origin, a, Options{Key: "name", UseContains: true, SortKey: "id", Order: Descending})

	f.Apply("s")
	expectKeys(t, f.Results(), "r4", "r3", "r2", "r1")
}

func TestFilterBasePredicate(t *testing.T) {
	origin := sampleOrigin()
	a := flatlist.New(origin)
	opts := DefaultOptions("name")
	opts.BasePredicate = "stew"
	f, _ := New(origin, a, opts)

	expectKeys(t, f.Results(), "r2")

	f.Apply("salad")
	expectKeys(t, f.Results(), "r3")

	f.Apply("")
	expectKeys(t, f.Results(), "r2")
}

func TestFilterFuzzy(t *testing.T) {
	origin := sampleOrigin()
	a := flatlist.New(origin)
	opts := DefaultOptions("name")
	opts.Fuzzy = true
	f, _ := New(origin, a, opts)

	f.Apply("tsp")
	got := keys(f.Results())
	if len(got) == 0 || got[0] != "r1" {
		t.Errorf("expected Tomato Soup first, got %v", got)
	}
	for _, k := range got {
		if k == "r3" {
			t.Errorf("expected Salad to be filtered out, got %v", got)
		}
	}
}

func TestFilterPreservesExpansion(t *testing.T) {
	origin := sampleOrigin()
	a := flatlist.New(origin)
	f, _ := New(origin, a, DefaultOptions("name"))

	// r2 (Beef Stew) starts expanded; collapse it, then narrow.
	a.CollapseParentByKey("r2")
	a.ExpandParentByKey("r1")
	f.Apply("e")

	expectKeys(t, f.Results(), "r2", "r4")
	if a.IsExpanded(0) {
		t.Error("expected r2 to stay collapsed across filtering")
	}

	f.Apply("")
	for i := 0; i < a.ItemCount(); i++ {
		w, _ := a.ItemAt(i)
		if !w.IsParent() {
			continue
		}
		switch w.Key() {
		case "r1":
			// Hidden parents fall back to their initial state.
			if w.IsExpanded() {
				t.Error("expected r1 to reappear collapsed")
			}
		case "r2":
			if w.IsExpanded() {
				t.Error("expected r2 to stay collapsed")
			}
		}
	}
}

func TestFilterFollowsOrigin(t *testing.T) {
	origin := sampleOrigin()
	a := flatlist.New(origin)
	f, _ := New(origin, a, DefaultOptions("name"))
	f.Apply("soup")

	origin.Append(model.NewRecipe("r5", "Miso Soup", false))
	expectKeys(t, f.Results(), "r5", "r1", "r4")

	f.Close()
	origin.Append(model.NewRecipe("r6", "Pea Soup", false))
	expectKeys(t, f.Results(), "r5", "r1", "r4")
}

func recordNotifications(a *flatlist.Adapter) *[]flatlist.Notification {
	var got []flatlist.Notification
	a.AddObserver(flatlist.ObserverFunc(func(n flatlist.Notification) {
		got = append(got, n)
	}))
	return &got
}

func expectNotes(t *testing.T, got *[]flatlist.Notification, want ...flatlist.Notification) {
	t.Helper()
	if len(*got) != len(want) {
		t.Fatalf("expected %v, got %v", want, *got)
	}
	for i := range want {
		if (*got)[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, *got)
		}
	}
	*got = nil
}

func TestFilterForwardsOriginChangesIncrementally(t *testing.T) {
	origin := sampleOrigin()
	a := flatlist.New(origin)
	f, _ := New(origin, a, DefaultOptions("name"))
	got := recordNotifications(a)

	// Beef Stew (expanded, 2 rows), Salad, Tomato Soup, soup of the day.
	if a.ItemCount() != 6 {
		t.Fatalf("expected 6 rows, got %d", a.ItemCount())
	}

	origin.Remove(2, 1)
	expectKeys(t, f.Results(), "r2", "r1", "r4")
	expectNotes(t, got, flatlist.Notification{Kind: flatlist.RangeRemoved, Start: 3, Count: 1})

	origin.Append(model.NewRecipe("r5", "Apple Pie", false))
	expectKeys(t, f.Results(), "r5", "r2", "r1", "r4")
	expectNotes(t, got, flatlist.Notification{Kind: flatlist.RangeInserted, Start: 0, Count: 1})
}

func TestFilterRebindsParentsAfterOriginReplace(t *testing.T) {
	origin := sampleOrigin()
	a := flatlist.New(origin)
	f, _ := New(origin, a, DefaultOptions("name"))
	got := recordNotifications(a)

	fresh := sampleRecipes()
	origin.Replace(model.Parents([]*model.Recipe{fresh[0], fresh[1], fresh[3]}))

	// Salad goes; the survivors are rebound: Beef Stew at 0, the soups at 3-4.
	expectKeys(t, f.Results(), "r2", "r1", "r4")
	expectNotes(t, got,
		flatlist.Notification{Kind: flatlist.RangeRemoved, Start: 3, Count: 1},
		flatlist.Notification{Kind: flatlist.RangeChanged, Start: 0, Count: 1},
		flatlist.Notification{Kind: flatlist.RangeChanged, Start: 3, Count: 2},
	)
	if !a.IsExpanded(0) || a.SubscriptionCount() != 1 {
		t.Fatalf("expected Beef Stew to stay expanded with one subscription")
	}

	// The subscription follows the rebound parent's ingredients.
	fresh[1].Ingredients().Append(&model.Ingredient{ID: "i9", Name: "Onion", Vegetarian: true})
	expectNotes(t, got, flatlist.Notification{Kind: flatlist.RangeInserted, Start: 3, Count: 1})
}

func TestFilterFallsBackToFullRefreshOnReorder(t *testing.T) {
	origin := sampleOrigin()
	a := flatlist.New(origin)
	f, _ := New(origin, a, DefaultOptions("name"))
	got := recordNotifications(a)

	renamed := sampleRecipes()
	renamed[0].Name = "Apple Soup"
	origin.Replace(model.Parents(renamed))

	expectKeys(t, f.Results(), "r1", "r2", "r3", "r4")
	expectNotes(t, got, flatlist.Notification{Kind: flatlist.FullChanged})
}

func TestDiffByKey(t *testing.T) {
	mk := func(keys ...string) []model.Parent {
		out := make([]model.Parent, len(keys))
		for i, k := range keys {
			out[i] = model.NewRecipe(k, k, false)
		}
		return out
	}
	never := func(model.Parent) bool { return false }

	cs := diffByKey(mk("a", "b", "c", "d"), mk("x", "a", "d", "y"), never)
	if cs == nil {
		t.Fatal("expected a change set")
	}
	wantDel := []observable.Range{{Start: 1, Length: 2}}
	wantIns := []observable.Range{{Start: 0, Length: 1}, {Start: 3, Length: 1}}
	if len(cs.Deletions) != 1 || cs.Deletions[0] != wantDel[0] {
		t.Errorf("expected deletions %v, got %v", wantDel, cs.Deletions)
	}
	if len(cs.Insertions) != 2 || cs.Insertions[0] != wantIns[0] || cs.Insertions[1] != wantIns[1] {
		t.Errorf("expected insertions %v, got %v", wantIns, cs.Insertions)
	}
	if len(cs.Changes) != 0 {
		t.Errorf("expected no changes, got %v", cs.Changes)
	}

	if cs := diffByKey(mk("a", "b"), mk("b", "a"), never); cs != nil {
		t.Errorf("expected nil for a reorder, got %+v", cs)
	}
	if cs := diffByKey(mk("a", "a"), mk("a"), never); cs != nil {
		t.Errorf("expected nil for repeated keys, got %+v", cs)
	}
	if cs := diffByKey(mk("a", "b"), mk("a", "b"), never); !cs.IsEmpty() {
		t.Errorf("expected an empty change set, got %+v", cs)
	}
}

func TestSetKeyValidation(t *testing.T) {
	origin := sampleOrigin()
	f, _ := New(origin, flatlist.New(origin), DefaultOptions("name"))
	if err := f.SetKey(" "); err == nil {
		t.Error("expected error for blank key")
	}
	if err := f.SetKey("description"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if f.Options().Key != "description" {
		t.Errorf("expected key description, got %q", f.Options().Key)
	}
}

func TestFieldValueFallsBackToKey(t *testing.T) {
	r := model.NewRecipe("r1", "Soup", false)
	if got := FieldValue(r, "key"); got != "r1" {
		t.Errorf("expected r1, got %q", got)
	}
	if got := FieldValue(r, "missing"); got != "" {
		t.Errorf("expected empty value, got %q", got)
	}
}
