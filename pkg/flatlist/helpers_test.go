package flatlist

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/vanderheijden86/xlist/pkg/model"
	"github.com/vanderheijden86/xlist/pkg/observable"
)

type testChild struct{ key string }

func (c *testChild) Key() string { return c.key }

type testParent struct {
	key       string
	initially bool
	children  observable.List[model.Child]
}

func (p *testParent) Key() string { return p.key }
func (p *testParent) Children() observable.List[model.Child] { return p.children }
func (p *testParent) InitiallyExpanded() bool { return p.initially }

// manualList is a List that only notifies when told to, mirroring a source
// that is mutated first and reported afterwards through Notify* calls.
type manualList[T any] struct {
	items     []T
	listeners map[int]observable.Listener
	next      int
	closed    bool
}

func newManualList[T any](items ...T) *manualList[T] {
	return &manualList[T]{items: append([]T(nil), items...), listeners: make(map[int]observable.Listener)}
}

func (l *manualList[T]) Len() int {
	if l.closed {
		return 0
	}
	return len(l.items)
}

func (l *manualList[T]) At(i int) T { return l.items[i] }
func (l *manualList[T]) IsValid() bool { return !l.closed }

func (l *manualList[T]) Subscribe(fn observable.Listener) observable.Subscription {
	l.next++
	id := l.next
	l.listeners[id] = fn
	return cancelFunc(func() { delete(l.listeners, id) })
}

func (l *manualList[T]) fire(cs *observable.ChangeSet) {
	for _, fn := range l.listeners {
		fn(cs)
	}
}

func (l *manualList[T]) insert(i int, v T) {
	l.items = append(l.items[:i], append([]T{v}, l.items[i:]...)...)
}

func (l *manualList[T]) add(v T) { l.items = append(l.items, v) }

func (l *manualList[T]) remove(i int) T {
	v := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	return v
}

func (l *manualList[T]) set(i int, v T) { l.items[i] = v }

type cancelFunc func()

func (f cancelFunc) Cancel() { f() }

type recorder struct {
	got []Notification
}

func (r *recorder) Notify(n Notification) { r.got = append(r.got, n) }

func (r *recorder) reset() { r.got = nil }

var parentSeq int

// generateParent returns a parent with childCount children held in an
// observable.Slice, so child mutations notify automatically.
func generateParent(initially bool, childCount int) *testParent {
	parentSeq++
	key := fmt.Sprintf("p%d", parentSeq)
	children := make([]model.Child, childCount)
	for i := range children {
		children[i] = &testChild{key: fmt.Sprintf("%s-c%d", key, i)}
	}
	return &testParent{key: key, initially: initially, children: observable.NewSlice(children...)}
}

// setupTen builds the canonical fixture: ten parents with three children
// each, even indices initially expanded.
func setupTen(t *testing.T) (*Adapter, *manualList[model.Parent], *recorder) {
	t.Helper()
	list := newManualList[model.Parent]()
	for i := 0; i < 10; i++ {
		list.add(generateParent(i%2 == 0, 3))
	}
	rec := &recorder{}
	a := New(list, WithObserver(rec))
	return a, list, rec
}

// verifyParentItemsMatch checks that parent p sits at flat with the given
// expansion, followed by its children when expanded.
func verifyParentItemsMatch(t *testing.T, a *Adapter, p model.Parent, expanded bool, flat int) {
	t.Helper()
	w, ok := a.ItemAt(flat)
	if !ok {
		t.Fatalf("no item at %d", flat)
	}
	if !w.IsParent() || w.Parent() != p {
		t.Fatalf("expected parent %s at %d, got %q", p.Key(), flat, w.Key())
	}
	if w.IsExpanded() != expanded {
		t.Fatalf("expected parent %s expanded=%v, got %v", p.Key(), expanded, w.IsExpanded())
	}
	if !expanded {
		return
	}
	children := p.Children()
	for i := 0; i < children.Len(); i++ {
		cw, _ := a.ItemAt(flat + 1 + i)
		if cw.IsParent() || cw.Child() != children.At(i) {
			t.Fatalf("expected child %s at %d, got %q", children.At(i).Key(), flat+1+i, cw.Key())
		}
	}
}

func expectNotifications(t *testing.T, rec *recorder, want ...Notification) {
	t.Helper()
	if diff := cmp.Diff(want, rec.got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
}

// layout renders a flat list as "P:key" and "C:key" rows for diffing.
func layout(s Sequence) []string {
	out := make([]string, len(s))
	for i, w := range s {
		kind := "C:"
		if w.IsParent() {
			kind = "P:"
		}
		out[i] = kind + w.Key()
	}
	return out
}

func expectContractPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatal("expected a contract violation panic")
		}
		err, ok := r.(error)
		var ce *ContractError
		if !ok || !errors.As(err, &ce) {
			t.Fatalf("expected *ContractError, got %T: %v", r, r)
		}
	}()
	fn()
}

// expectedCount is parent count plus the children of every expanded parent.
func expectedCount(a *Adapter) int {
	n := 0
	for i := 0; i < a.parents.Len(); i++ {
		n++
		if a.IsExpanded(i) {
			n += a.parents.At(i).Children().Len()
		}
	}
	return n
}

func inserted(start, count int) Notification {
	return Notification{Kind: RangeInserted, Start: start, Count: count}
}

func removed(start, count int) Notification {
	return Notification{Kind: RangeRemoved, Start: start, Count: count}
}

func changed(start, count int) Notification {
	return Notification{Kind: RangeChanged, Start: start, Count: count}
}

func fullChanged() Notification {
	return Notification{Kind: FullChanged}
}
