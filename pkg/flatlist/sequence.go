package flatlist

// NotFound is returned by FlatParentPosition when there is no parent with the
// requested index.
const NotFound = -1

// Sequence is the flat list: every parent in source order, each immediately
// followed by its children when expanded.
//
// The translators scan from the start and are O(n). They run once per
// notification or gesture, not per frame.
type Sequence []*Wrapper

func (s Sequence) checkBounds(op string, flat int) {
	if flat < 0 || flat >= len(s) {
		outOfRange(op, flat, len(s), "")
	}
}

// NearestParentPosition returns the parent index owning the row at flat: the
// row's own index for a parent row, its parent's index for a child row.
func (s Sequence) NearestParentPosition(flat int) int {
	s.checkBounds("NearestParentPosition", flat)
	if flat == 0 {
		return 0
	}
	parents := -1
	for i := 0; i <= flat; i++ {
		if s[i].IsParent() {
			parents++
		}
	}
	return parents
}

// ChildPosition returns the index of the child row at flat within its
// parent's child list, or -1 if flat is a parent row.
func (s Sequence) ChildPosition(flat int) int {
	s.checkBounds("ChildPosition", flat)
	if s[flat].IsParent() {
		return -1
	}
	pos := 0
	for i := 0; i < flat; i++ {
		if s[i].IsParent() {
			pos = 0
		} else {
			pos++
		}
	}
	return pos
}

// FlatParentPosition returns the flat position of the parentIndex-th parent
// row, or NotFound if there are not that many parents.
func (s Sequence) FlatParentPosition(parentIndex int) int {
	if parentIndex < 0 {
		outOfRange("FlatParentPosition", parentIndex, s.ParentCount(), "negative parent index")
	}
	parents := -1
	for i, w := range s {
		if w.IsParent() {
			parents++
			if parents == parentIndex {
				return i
			}
		}
	}
	return NotFound
}

// ParentCount returns the number of parent rows.
func (s Sequence) ParentCount() int {
	n := 0
	for _, w := range s {
		if w.IsParent() {
			n++
		}
	}
	return n
}

// childSpan returns the number of child rows directly after the parent row at
// flat.
func (s Sequence) childSpan(flat int) int {
	n := 0
	for i := flat + 1; i < len(s) && !s[i].IsParent(); i++ {
		n++
	}
	return n
}

// insertionPoint is FlatParentPosition, except that one past the last
// parent maps to the end of the list.
func (s Sequence) insertionPoint(parentIndex int) int {
	if fp := s.FlatParentPosition(parentIndex); fp != NotFound {
		return fp
	}
	return len(s)
}

func (s Sequence) indexOf(w *Wrapper) int {
	for i, v := range s {
		if v == w {
			return i
		}
	}
	return NotFound
}

func (s *Sequence) insertAt(at int, ws ...*Wrapper) {
	if len(ws) == 0 {
		return
	}
	tail := append(append(Sequence(nil), ws...), (*s)[at:]...)
	*s = append((*s)[:at], tail...)
}

func (s *Sequence) removeRange(at, n int) {
	if n == 0 {
		return
	}
	old := *s
	*s = append(old[:at], old[at+n:]...)
	// Clear the vacated tail so removed wrappers can be collected.
	for i := len(*s); i < len(old); i++ {
		old[i] = nil
	}
}
