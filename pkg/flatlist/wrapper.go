package flatlist

import (
	"github.com/vanderheijden86/xlist/pkg/model"
	"github.com/vanderheijden86/xlist/pkg/observable"
)

// Wrapper is one row of the flat list: either a parent with its cached
// expansion flag, or a child.
type Wrapper struct {
	parent   model.Parent
	child    model.Child
	expanded bool
}

func newParentWrapper(p model.Parent) *Wrapper {
	return &Wrapper{parent: p}
}

func newChildWrapper(c model.Child) *Wrapper {
	return &Wrapper{child: c}
}

// IsParent reports whether the row is a parent row.
func (w *Wrapper) IsParent() bool { return w.parent != nil }

// Parent returns the wrapped parent, or nil for child rows.
func (w *Wrapper) Parent() model.Parent { return w.parent }

// Child returns the wrapped child, or nil for parent rows.
func (w *Wrapper) Child() model.Child { return w.child }

// IsExpanded returns the cached expansion flag. Always false for child rows.
func (w *Wrapper) IsExpanded() bool { return w.expanded }

// Key returns the identity of the wrapped item.
func (w *Wrapper) Key() string {
	if w.parent != nil {
		return w.parent.Key()
	}
	if w.child != nil {
		return w.child.Key()
	}
	return ""
}

// wrapChildren wraps the parent's current children in order. An invalid or
// missing child list yields no rows.
func (w *Wrapper) wrapChildren() []*Wrapper {
	return wrapChildRange(w.parent.Children(), 0, -1)
}

// wrapChildRange wraps count children starting at from; count < 0 means
// "to the end".
func wrapChildRange(list observable.List[model.Child], from, count int) []*Wrapper {
	if list == nil || !list.IsValid() {
		return nil
	}
	if count < 0 {
		count = list.Len() - from
	}
	out := make([]*Wrapper, 0, count)
	for i := from; i < from+count; i++ {
		out = append(out, newChildWrapper(list.At(i)))
	}
	return out
}
