package flatlist

import (
	"fmt"

	"github.com/vanderheijden86/xlist/pkg/observable"
)

// Level says whether a Mutation targets the parent list or one parent's
// children.
type Level int

const (
	ParentLevel Level = iota
	ChildLevel
)

// Kind is the shape of a Mutation.
type Kind int

const (
	Inserted Kind = iota
	Removed
	Changed
	Moved
)

func (k Kind) String() string {
	switch k {
	case Inserted:
		return "Inserted"
	case Removed:
		return "Removed"
	case Changed:
		return "Changed"
	case Moved:
		return "Moved"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Mutation describes a change that has already been applied to the
// hierarchical source. Positions are source indices: parent indices for
// ParentLevel, child indices within parent Parent for ChildLevel.
type Mutation struct {
	Level  Level
	Parent int // parent index, ChildLevel only
	Kind   Kind
	At     int
	Count  int
	From   int // Moved only
	To     int // Moved only
}

// Apply projects m onto the flat list and emits the matching notifications.
func (a *Adapter) Apply(m Mutation) {
	a.begin("Apply")
	defer a.end()
	a.apply(m)
}

func (a *Adapter) apply(m Mutation) {
	switch m.Level {
	case ParentLevel:
		switch m.Kind {
		case Inserted:
			a.insertParents(m.At, m.Count)
		case Removed:
			a.removeParents(m.At, m.Count)
		case Changed:
			a.changeParents(m.At, m.Count)
		case Moved:
			a.moveParent(m.From, m.To)
		default:
			violation("Apply", "unknown mutation kind "+m.Kind.String())
		}
	case ChildLevel:
		w := a.parentWrapper("Apply", m.Parent)
		if !w.expanded {
			// Children of a collapsed parent are not materialised.
			return
		}
		fp := a.flat.indexOf(w)
		switch m.Kind {
		case Inserted:
			a.insertChildren(fp, m.At, m.Count)
		case Removed:
			a.removeChildren(fp, m.At, m.Count)
		case Changed:
			a.changeChildren(fp, m.At, m.Count)
		default:
			violation("Apply", "children cannot be "+m.Kind.String())
		}
	default:
		violation("Apply", fmt.Sprintf("unknown mutation level %d", m.Level))
	}
}

// NotifyParentInserted reports that a parent was inserted at parentIndex.
func (a *Adapter) NotifyParentInserted(parentIndex int) {
	a.NotifyParentRangeInserted(parentIndex, 1)
}

// NotifyParentRangeInserted reports that count parents were inserted at
// start.
func (a *Adapter) NotifyParentRangeInserted(start, count int) {
	a.Apply(Mutation{Level: ParentLevel, Kind: Inserted, At: start, Count: count})
}

// NotifyParentRemoved reports that the parent at parentIndex was removed.
func (a *Adapter) NotifyParentRemoved(parentIndex int) {
	a.NotifyParentRangeRemoved(parentIndex, 1)
}

// NotifyParentRangeRemoved reports that count parents starting at start were
// removed.
func (a *Adapter) NotifyParentRangeRemoved(start, count int) {
	a.Apply(Mutation{Level: ParentLevel, Kind: Removed, At: start, Count: count})
}

// NotifyParentChanged reports that the parent at parentIndex changed.
func (a *Adapter) NotifyParentChanged(parentIndex int) {
	a.NotifyParentRangeChanged(parentIndex, 1)
}

// NotifyParentRangeChanged reports that count parents starting at start
// changed.
func (a *Adapter) NotifyParentRangeChanged(start, count int) {
	a.Apply(Mutation{Level: ParentLevel, Kind: Changed, At: start, Count: count})
}

// NotifyParentMoved reports that the parent at from now sits at to. The flat
// list is updated but no notification is emitted; consumers re-derive
// positions on their next read.
func (a *Adapter) NotifyParentMoved(from, to int) {
	a.Apply(Mutation{Level: ParentLevel, Kind: Moved, From: from, To: to})
}

// NotifyChildInserted reports that a child was inserted into a parent.
func (a *Adapter) NotifyChildInserted(parentIndex, childIndex int) {
	a.NotifyChildRangeInserted(parentIndex, childIndex, 1)
}

// NotifyChildRangeInserted reports that count children were inserted into a
// parent at start.
func (a *Adapter) NotifyChildRangeInserted(parentIndex, start, count int) {
	a.Apply(Mutation{Level: ChildLevel, Parent: parentIndex, Kind: Inserted, At: start, Count: count})
}

// NotifyChildRemoved reports that a child was removed from a parent.
func (a *Adapter) NotifyChildRemoved(parentIndex, childIndex int) {
	a.NotifyChildRangeRemoved(parentIndex, childIndex, 1)
}

// NotifyChildRangeRemoved reports that count children starting at start were
// removed from a parent.
func (a *Adapter) NotifyChildRangeRemoved(parentIndex, start, count int) {
	a.Apply(Mutation{Level: ChildLevel, Parent: parentIndex, Kind: Removed, At: start, Count: count})
}

// NotifyChildChanged reports that a child of a parent changed.
func (a *Adapter) NotifyChildChanged(parentIndex, childIndex int) {
	a.NotifyChildRangeChanged(parentIndex, childIndex, 1)
}

// NotifyChildRangeChanged reports that count children starting at start
// changed.
func (a *Adapter) NotifyChildRangeChanged(parentIndex, start, count int) {
	a.Apply(Mutation{Level: ChildLevel, Parent: parentIndex, Kind: Changed, At: start, Count: count})
}

// onParentsChanged is the parent source listener.
func (a *Adapter) onParentsChanged(cs *observable.ChangeSet) {
	a.begin("parent change")
	defer a.end()
	if cs == nil {
		a.refresh(a.preserve)
		return
	}
	for i := len(cs.Deletions) - 1; i >= 0; i-- {
		a.removeParents(cs.Deletions[i].Start, cs.Deletions[i].Length)
	}
	for _, r := range cs.Insertions {
		a.insertParents(r.Start, r.Length)
	}
	for _, r := range cs.Changes {
		a.changeParents(r.Start, r.Length)
	}
}

// childListener returns the listener for the child list of the parent row w.
func (a *Adapter) childListener(w *Wrapper) observable.Listener {
	return func(cs *observable.ChangeSet) {
		a.begin("child change")
		defer a.end()
		if !w.expanded {
			return
		}
		fp := a.flat.indexOf(w)
		if fp == NotFound {
			violation("child change", "subscription outlived parent "+w.Key())
		}
		if cs == nil {
			if n, inPlace := a.resyncChildren(fp, w, false); inPlace {
				a.emit(RangeChanged, fp+1, n)
			}
			return
		}
		for i := len(cs.Deletions) - 1; i >= 0; i-- {
			a.removeChildren(fp, cs.Deletions[i].Start, cs.Deletions[i].Length)
		}
		for _, r := range cs.Insertions {
			a.insertChildren(fp, r.Start, r.Length)
		}
		for _, r := range cs.Changes {
			a.changeChildren(fp, r.Start, r.Length)
		}
	}
}

// insertParents materialises the count source parents at start. Parents
// flagged InitiallyExpanded arrive expanded with their children.
func (a *Adapter) insertParents(start, count int) {
	if count <= 0 {
		return
	}
	if n := a.flat.ParentCount(); start < 0 || start > n {
		outOfRange("insert parents", start, n+1, "")
	}
	if start+count > a.parents.Len() {
		outOfRange("insert parents", start+count-1, a.parents.Len(), "source is shorter than the insertion")
	}

	first := a.flat.insertionPoint(start)
	pos := first
	var expanded []*Wrapper
	for i := 0; i < count; i++ {
		p := a.parents.At(start + i)
		w := newParentWrapper(p)
		block := Sequence{w}
		if p.InitiallyExpanded() {
			w.expanded = true
			block = append(block, w.wrapChildren()...)
			expanded = append(expanded, w)
		}
		a.flat.insertAt(pos, block...)
		pos += len(block)
	}
	for _, w := range expanded {
		a.subs.subscribe(w, a.childListener(w))
	}
	a.emit(RangeInserted, first, pos-first)
}

// removeParents drops the count parents at start together with their child
// rows. Highest index first, so pending lookups stay valid.
func (a *Adapter) removeParents(start, count int) {
	if count <= 0 {
		return
	}
	if n := a.flat.ParentCount(); start < 0 || start+count > n {
		outOfRange("remove parents", start+count-1, n, "")
	}

	width, first := 0, 0
	for i := start + count - 1; i >= start; i-- {
		fp := a.flat.FlatParentPosition(i)
		w := a.flat[fp]
		span := 1 + a.flat.childSpan(fp)
		if w.expanded {
			a.subs.unsubscribe(w)
		}
		a.flat.removeRange(fp, span)
		width += span
		first = fp
	}
	a.emit(RangeRemoved, first, width)
}

// changeParents rebinds the count parent rows at start to the current source
// parents. Expansion is kept; an expanded parent whose child list now differs
// is resynchronised. RangeChanged covers parent rows only, one notification
// per contiguous run.
func (a *Adapter) changeParents(start, count int) {
	if count <= 0 {
		return
	}
	if n := a.flat.ParentCount(); start < 0 || start+count > n {
		outOfRange("change parents", start+count-1, n, "")
	}
	if start+count > a.parents.Len() {
		outOfRange("change parents", start+count-1, a.parents.Len(), "source is shorter than the change")
	}

	for i := start; i < start+count; i++ {
		fp := a.flat.FlatParentPosition(i)
		w := a.flat[fp]
		w.parent = a.parents.At(i)
		if w.expanded {
			a.resyncChildren(fp, w, true)
		}
	}

	runStart, runLen := -1, 0
	for i := start; i < start+count; i++ {
		fp := a.flat.FlatParentPosition(i)
		if runLen > 0 && fp == runStart+runLen {
			runLen++
			continue
		}
		a.emit(RangeChanged, runStart, runLen)
		runStart, runLen = fp, 1
	}
	a.emit(RangeChanged, runStart, runLen)
}

// moveParent relocates the parent row at from, with its child rows, so that
// it becomes parent to. No notification is emitted.
func (a *Adapter) moveParent(from, to int) {
	n := a.flat.ParentCount()
	if from < 0 || from >= n {
		outOfRange("move parent", from, n, "")
	}
	if to < 0 || to >= n {
		outOfRange("move parent", to, n, "")
	}
	if from == to {
		return
	}
	fp := a.flat.FlatParentPosition(from)
	span := 1 + a.flat.childSpan(fp)
	block := append(Sequence(nil), a.flat[fp:fp+span]...)
	a.flat.removeRange(fp, span)
	a.flat.insertAt(a.flat.insertionPoint(to), block...)
}

// resyncChildren replaces the child rows of the expanded parent at fp with
// its current children. When the count is unchanged the rows are swapped in
// place silently and inPlace is true; otherwise the old span is removed and
// the new one inserted, each with its own notification. With rewire set the
// child subscription is moved to the parent's current child list.
func (a *Adapter) resyncChildren(fp int, w *Wrapper, rewire bool) (n int, inPlace bool) {
	if rewire {
		a.subs.unsubscribe(w)
	}
	old := a.flat.childSpan(fp)
	fresh := w.wrapChildren()
	if len(fresh) == old {
		copy(a.flat[fp+1:], fresh)
	} else {
		a.flat.removeRange(fp+1, old)
		a.emit(RangeRemoved, fp+1, old)
		a.flat.insertAt(fp+1, fresh...)
		a.emit(RangeInserted, fp+1, len(fresh))
	}
	if rewire {
		a.subs.subscribe(w, a.childListener(w))
	}
	return len(fresh), len(fresh) == old
}

func (a *Adapter) checkChildRange(op string, fp, start, count, limit int) {
	if start < 0 || count < 0 || start+count > limit {
		outOfRange(op, start+count, limit, "parent "+a.flat[fp].Key())
	}
}

func (a *Adapter) insertChildren(fp, start, count int) {
	if count <= 0 {
		return
	}
	w := a.flat[fp]
	span := a.flat.childSpan(fp)
	if start < 0 || start > span {
		outOfRange("insert children", start, span+1, "parent "+w.Key())
	}
	list := w.parent.Children()
	a.checkChildRange("insert children", fp, start, count, list.Len())

	a.flat.insertAt(fp+1+start, wrapChildRange(list, start, count)...)
	a.emit(RangeInserted, fp+1+start, count)
}

func (a *Adapter) removeChildren(fp, start, count int) {
	if count <= 0 {
		return
	}
	a.checkChildRange("remove children", fp, start, count, a.flat.childSpan(fp))
	for i := start + count - 1; i >= start; i-- {
		a.flat.removeRange(fp+1+i, 1)
	}
	a.emit(RangeRemoved, fp+1+start, count)
}

func (a *Adapter) changeChildren(fp, start, count int) {
	if count <= 0 {
		return
	}
	list := a.flat[fp].parent.Children()
	a.checkChildRange("change children", fp, start, count, a.flat.childSpan(fp))
	a.checkChildRange("change children", fp, start, count, list.Len())

	copy(a.flat[fp+1+start:], wrapChildRange(list, start, count))
	a.emit(RangeChanged, fp+1+start, count)
}
