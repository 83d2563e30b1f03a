package flatlist

// RequestExpand expands the parent row at flat on behalf of a user gesture.
// The ExpandCollapseListener, if any, is told the parent index.
func (a *Adapter) RequestExpand(flat int) {
	a.begin("RequestExpand")
	defer a.end()
	a.expand("RequestExpand", flat, true)
}

// RequestCollapse collapses the parent row at flat on behalf of a user
// gesture.
func (a *Adapter) RequestCollapse(flat int) {
	a.begin("RequestCollapse")
	defer a.end()
	a.collapse("RequestCollapse", flat, true)
}

// ExpandParent expands the parent with the given index.
func (a *Adapter) ExpandParent(parentIndex int) {
	a.begin("ExpandParent")
	defer a.end()
	fp := a.flat.FlatParentPosition(parentIndex)
	if fp == NotFound {
		outOfRange("ExpandParent", parentIndex, a.flat.ParentCount(), "no such parent")
	}
	a.expand("ExpandParent", fp, false)
}

// CollapseParent collapses the parent with the given index.
func (a *Adapter) CollapseParent(parentIndex int) {
	a.begin("CollapseParent")
	defer a.end()
	fp := a.flat.FlatParentPosition(parentIndex)
	if fp == NotFound {
		outOfRange("CollapseParent", parentIndex, a.flat.ParentCount(), "no such parent")
	}
	a.collapse("CollapseParent", fp, false)
}

// ExpandParentByKey expands the first parent row whose key matches. It
// reports whether such a parent exists.
func (a *Adapter) ExpandParentByKey(key string) bool {
	a.begin("ExpandParentByKey")
	defer a.end()
	fp := a.flatPositionOfKey(key)
	if fp == NotFound {
		return false
	}
	a.expand("ExpandParentByKey", fp, false)
	return true
}

// CollapseParentByKey collapses the first parent row whose key matches.
func (a *Adapter) CollapseParentByKey(key string) bool {
	a.begin("CollapseParentByKey")
	defer a.end()
	fp := a.flatPositionOfKey(key)
	if fp == NotFound {
		return false
	}
	a.collapse("CollapseParentByKey", fp, false)
	return true
}

// ExpandAll expands every collapsed parent, one notification per parent.
func (a *Adapter) ExpandAll() {
	a.begin("ExpandAll")
	defer a.end()
	// Walk backwards: expanding at i never shifts rows before i.
	for i := len(a.flat) - 1; i >= 0; i-- {
		if w := a.flat[i]; w.IsParent() && !w.expanded {
			a.expand("ExpandAll", i, false)
		}
	}
}

// CollapseAll collapses every expanded parent, one notification per parent.
func (a *Adapter) CollapseAll() {
	a.begin("CollapseAll")
	defer a.end()
	for i := len(a.flat) - 1; i >= 0; i-- {
		if w := a.flat[i]; w.IsParent() && w.expanded {
			a.collapse("CollapseAll", i, false)
		}
	}
}

func (a *Adapter) flatPositionOfKey(key string) int {
	for i, w := range a.flat {
		if w.IsParent() && w.parent.Key() == key {
			return i
		}
	}
	return NotFound
}

func (a *Adapter) parentRowAt(op string, flat int) *Wrapper {
	a.flat.checkBounds(op, flat)
	w := a.flat[flat]
	if !w.IsParent() {
		outOfRange(op, flat, len(a.flat), "not a parent row")
	}
	return w
}

// expand inserts the children of the parent row at flat. The child
// subscription is registered only after the rows are in place.
func (a *Adapter) expand(op string, flat int, gesture bool) {
	w := a.parentRowAt(op, flat)
	if w.expanded {
		return
	}
	w.expanded = true

	children := w.wrapChildren()
	a.flat.insertAt(flat+1, children...)
	a.subs.subscribe(w, a.childListener(w))
	a.emit(RangeInserted, flat+1, len(children))

	if gesture && a.listener != nil {
		a.listener.OnParentExpanded(a.flat.NearestParentPosition(flat))
	}
}

// collapse removes the children of the parent row at flat. The child
// subscription is dropped before the rows are removed.
func (a *Adapter) collapse(op string, flat int, gesture bool) {
	w := a.parentRowAt(op, flat)
	if !w.expanded {
		return
	}
	w.expanded = false
	a.subs.unsubscribe(w)

	n := a.flat.childSpan(flat)
	a.flat.removeRange(flat+1, n)
	a.emit(RangeRemoved, flat+1, n)

	if gesture && a.listener != nil {
		a.listener.OnParentCollapsed(a.flat.NearestParentPosition(flat))
	}
}
