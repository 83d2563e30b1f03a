// Package flatlist maintains a flat, ordered view over a two-level hierarchy
// of parents and children in which any parent may be expanded or collapsed.
//
// The Adapter owns the flat list, keeps it consistent with an observable
// parent source and with each expanded parent's child list, and reports
// every change as fine-grained range notifications so a rendering widget can
// update without a full relayout.
//
// All methods must be called from one owner goroutine. Source change sets
// are expected on that same goroutine.
package flatlist

import (
	"github.com/vanderheijden86/xlist/pkg/model"
	"github.com/vanderheijden86/xlist/pkg/observable"
)

// Adapter is the flattening engine.
type Adapter struct {
	parents   observable.List[model.Parent]
	parentSub observable.Subscription
	flat      Sequence
	subs      *subscriptionManager

	observers []Observer
	listener  ExpandCollapseListener
	preserve  bool // expansion preservation for source-driven full refreshes

	busy   bool
	closed bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithObserver registers an observer before the first build.
func WithObserver(o Observer) Option {
	return func(a *Adapter) { a.observers = append(a.observers, o) }
}

// WithExpandCollapseListener sets the gesture listener.
func WithExpandCollapseListener(l ExpandCollapseListener) Option {
	return func(a *Adapter) { a.listener = l }
}

// WithPreserveExpansion controls whether a full refresh reported by the
// parent source keeps the current expansion state. Default true.
func WithPreserveExpansion(preserve bool) Option {
	return func(a *Adapter) { a.preserve = preserve }
}

// New builds the flat list from parents, seeding expansion from each
// parent's InitiallyExpanded flag, and subscribes to the source and to every
// expanded parent's children.
func New(parents observable.List[model.Parent], opts ...Option) *Adapter {
	a := &Adapter{
		subs:     newSubscriptionManager(),
		preserve: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.attach(parents)
	a.flat, _ = Build(parents, InitialExpansion)
	a.subs.fill(a.flat, a.childListener)
	return a
}

// AddObserver registers o for future notifications.
func (a *Adapter) AddObserver(o Observer) {
	a.observers = append(a.observers, o)
}

// SetExpandCollapseListener replaces the gesture listener; nil disables it.
func (a *Adapter) SetExpandCollapseListener(l ExpandCollapseListener) {
	a.listener = l
}

// Parents returns the attached parent source.
func (a *Adapter) Parents() observable.List[model.Parent] {
	return a.parents
}

// SetParents attaches a different parent source and rebuilds the flat list.
// With preserve set, parents already shown keep their expansion state.
func (a *Adapter) SetParents(parents observable.List[model.Parent], preserve bool) {
	a.begin("SetParents")
	defer a.end()
	prior := a.expansionByKey()
	a.detach()
	a.attach(parents)
	if preserve {
		a.rebuild(PreservedExpansion(prior))
	} else {
		a.rebuild(InitialExpansion)
	}
}

// Close releases every subscription. The adapter reports no rows afterwards.
func (a *Adapter) Close() {
	if a.closed {
		return
	}
	a.detach()
	a.flat = nil
	a.closed = true
}

func (a *Adapter) attach(parents observable.List[model.Parent]) {
	a.parents = parents
	if parents != nil {
		a.parentSub = parents.Subscribe(a.onParentsChanged)
	}
}

func (a *Adapter) detach() {
	if a.parentSub != nil {
		a.parentSub.Cancel()
		a.parentSub = nil
	}
	a.subs.unsubscribeAll()
}

func (a *Adapter) valid() bool {
	return !a.closed && a.parents != nil && a.parents.IsValid()
}

// ItemCount returns the number of rows, or 0 if the source is no longer
// valid.
func (a *Adapter) ItemCount() int {
	if !a.valid() {
		return 0
	}
	return len(a.flat)
}

// ItemAt returns the row at flat. It reports false when the source is no
// longer valid and panics when flat is out of range.
func (a *Adapter) ItemAt(flat int) (*Wrapper, bool) {
	if !a.valid() {
		return nil, false
	}
	a.flat.checkBounds("ItemAt", flat)
	return a.flat[flat], true
}

// IsParentAt reports whether the row at flat is a parent row.
func (a *Adapter) IsParentAt(flat int) bool {
	w, ok := a.ItemAt(flat)
	return ok && w.IsParent()
}

// ParentIndexFor returns the parent index owning the row at flat, or -1 when
// the source is no longer valid.
func (a *Adapter) ParentIndexFor(flat int) int {
	if !a.valid() {
		return -1
	}
	return a.flat.NearestParentPosition(flat)
}

// ChildIndexFor returns the child index of the row at flat within its
// parent, or -1 for parent rows and when the source is no longer valid.
func (a *Adapter) ChildIndexFor(flat int) int {
	if !a.valid() {
		return -1
	}
	return a.flat.ChildPosition(flat)
}

// FlatPositionOfParent returns the flat position of the parent with the given
// index, or NotFound.
func (a *Adapter) FlatPositionOfParent(parentIndex int) int {
	if !a.valid() {
		return NotFound
	}
	return a.flat.FlatParentPosition(parentIndex)
}

// Parent returns the parent shown as the index-th parent row, or false when
// the source is no longer valid. It reads the flat list, so it agrees with
// ParentIndexFor even while a multi-range change set is being applied.
func (a *Adapter) Parent(index int) (model.Parent, bool) {
	if !a.valid() {
		return nil, false
	}
	return a.parentWrapper("Parent", index).parent, true
}

// IsExpanded reports whether the parent with the given index is expanded.
func (a *Adapter) IsExpanded(parentIndex int) bool {
	if !a.valid() {
		return false
	}
	return a.parentWrapper("IsExpanded", parentIndex).expanded
}

// Items returns a copy of the flat list.
func (a *Adapter) Items() Sequence {
	if !a.valid() {
		return nil
	}
	return append(Sequence(nil), a.flat...)
}

// SubscriptionCount returns the number of live child subscriptions. It equals
// the number of expanded parents.
func (a *Adapter) SubscriptionCount() int {
	return a.subs.count()
}

// NotifyDataSetChanged rebuilds the flat list from the source and emits
// FullChanged. With preserve set, each parent keeps the expansion state it
// had, looked up by key; unknown parents fall back to InitiallyExpanded.
func (a *Adapter) NotifyDataSetChanged(preserve bool) {
	a.begin("NotifyDataSetChanged")
	defer a.end()
	a.refresh(preserve)
}

func (a *Adapter) refresh(preserve bool) {
	if preserve {
		a.rebuild(PreservedExpansion(a.expansionByKey()))
		return
	}
	a.rebuild(InitialExpansion)
}

// rebuild replaces the flat list wholesale. Stale subscriptions are dropped
// before the new list is installed and the new ones added after.
func (a *Adapter) rebuild(expansionOf ExpansionFunc) {
	flat, _ := Build(a.parents, expansionOf)
	a.subs.prune(flat)
	a.flat = flat
	a.subs.fill(a.flat, a.childListener)
	a.emit(FullChanged, 0, 0)
}

func (a *Adapter) expansionByKey() map[string]bool {
	prior := make(map[string]bool)
	for _, w := range a.flat {
		if w.IsParent() {
			prior[w.parent.Key()] = w.expanded
		}
	}
	return prior
}

// parentWrapper returns the row of the parent with the given index and
// panics if there is none.
func (a *Adapter) parentWrapper(op string, parentIndex int) *Wrapper {
	fp := a.flat.FlatParentPosition(parentIndex)
	if fp == NotFound {
		outOfRange(op, parentIndex, a.flat.ParentCount(), "no such parent")
	}
	return a.flat[fp]
}

func (a *Adapter) emit(kind NotificationKind, start, count int) {
	if kind != FullChanged && count == 0 {
		return
	}
	n := Notification{Kind: kind, Start: start, Count: count}
	for _, o := range a.observers {
		o.Notify(n)
	}
}

// begin marks the start of a mutation. Mutations are not reentrant: an
// observer or listener that mutates the adapter while a mutation is being
// applied is a contract violation.
func (a *Adapter) begin(op string) {
	if a.closed {
		violation(op, "adapter is closed")
	}
	if a.busy {
		violation(op, "reentrant mutation")
	}
	a.busy = true
}

func (a *Adapter) end() {
	a.busy = false
}
