package flatlist

import (
	"github.com/vanderheijden86/xlist/pkg/model"
	"github.com/vanderheijden86/xlist/pkg/observable"
)

// ExpansionFunc decides whether the parent at source index i starts expanded.
type ExpansionFunc func(i int, p model.Parent) bool

// InitialExpansion expands exactly the parents whose InitiallyExpanded flag
// is set.
func InitialExpansion(_ int, p model.Parent) bool {
	return p.InitiallyExpanded()
}

// PreservedExpansion looks parents up by key in prior and falls back to
// InitiallyExpanded for parents it has not seen.
func PreservedExpansion(prior map[string]bool) ExpansionFunc {
	return func(_ int, p model.Parent) bool {
		if expanded, ok := prior[p.Key()]; ok {
			return expanded
		}
		return p.InitiallyExpanded()
	}
}

// Build flattens parents in source order. It returns the flat list and the
// source positions of the expanded parents, each of which needs a child
// subscription. An invalid source yields an empty list.
func Build(parents observable.List[model.Parent], expansionOf ExpansionFunc) (Sequence, []int) {
	if parents == nil || !parents.IsValid() {
		return Sequence{}, nil
	}
	if expansionOf == nil {
		expansionOf = InitialExpansion
	}

	n := parents.Len()
	flat := make(Sequence, 0, n)
	var expanded []int
	for i := 0; i < n; i++ {
		p := parents.At(i)
		w := newParentWrapper(p)
		flat = append(flat, w)
		if expansionOf(i, p) {
			w.expanded = true
			flat = append(flat, w.wrapChildren()...)
			expanded = append(expanded, i)
		}
	}
	return flat, expanded
}
