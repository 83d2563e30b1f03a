package observable

import "fmt"

// Slice is an in-memory List. Every mutator notifies subscribers with one
// change set before returning.
//
// Slice is not safe for concurrent use; it belongs to one owner thread like
// the engine that observes it.
type Slice[T any] struct {
	items     []T
	closed    bool
	listeners map[uint64]Listener
	order     []uint64 // subscription ids in registration order
	nextID    uint64
}

// NewSlice returns a Slice holding a copy of items.
func NewSlice[T any](items ...T) *Slice[T] {
	s := &Slice[T]{listeners: make(map[uint64]Listener)}
	s.items = append(s.items, items...)
	return s
}

// Len implements List.
func (s *Slice[T]) Len() int {
	if s.closed {
		return 0
	}
	return len(s.items)
}

// At implements List.
func (s *Slice[T]) At(i int) T {
	if s.closed {
		panic("observable: read from closed slice")
	}
	if i < 0 || i >= len(s.items) {
		panic(fmt.Sprintf("observable: index %d out of range [0,%d)", i, len(s.items)))
	}
	return s.items[i]
}

// Items returns a copy of the current elements.
func (s *Slice[T]) Items() []T {
	if s.closed {
		return nil
	}
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// IsValid implements List. A Slice becomes invalid once Close is called.
func (s *Slice[T]) IsValid() bool {
	return !s.closed
}

// Subscribe implements List.
func (s *Slice[T]) Subscribe(l Listener) Subscription {
	if l == nil {
		panic("observable: nil listener")
	}
	s.nextID++
	id := s.nextID
	s.listeners[id] = l
	s.order = append(s.order, id)
	return &sliceSubscription[T]{s: s, id: id}
}

// Listeners returns the number of live subscriptions.
func (s *Slice[T]) Listeners() int {
	return len(s.listeners)
}

// Insert places items at index at, shifting later elements up.
func (s *Slice[T]) Insert(at int, items ...T) {
	s.checkOpen()
	if at < 0 || at > len(s.items) {
		panic(fmt.Sprintf("observable: insert position %d out of range [0,%d]", at, len(s.items)))
	}
	if len(items) == 0 {
		return
	}
	s.items = append(s.items[:at], append(append([]T(nil), items...), s.items[at:]...)...)
	s.notify(&ChangeSet{Insertions: []Range{{Start: at, Length: len(items)}}})
}

// Append adds items at the end.
func (s *Slice[T]) Append(items ...T) {
	s.Insert(len(s.items), items...)
}

// Remove deletes count elements starting at at.
func (s *Slice[T]) Remove(at, count int) {
	s.checkOpen()
	if at < 0 || count < 0 || at+count > len(s.items) {
		panic(fmt.Sprintf("observable: remove [%d,+%d) out of range [0,%d)", at, count, len(s.items)))
	}
	if count == 0 {
		return
	}
	s.items = append(s.items[:at], s.items[at+count:]...)
	s.notify(&ChangeSet{Deletions: []Range{{Start: at, Length: count}}})
}

// RemoveFunc deletes every element for which drop reports true and returns
// the number removed. All deletions are reported in one change set, one
// range per contiguous run.
func (s *Slice[T]) RemoveFunc(drop func(T) bool) int {
	s.checkOpen()
	var deletions []Range
	kept := s.items[:0:0]
	for i, v := range s.items {
		if !drop(v) {
			kept = append(kept, v)
			continue
		}
		if n := len(deletions); n > 0 && deletions[n-1].End() == i {
			deletions[n-1].Length++
		} else {
			deletions = append(deletions, Range{Start: i, Length: 1})
		}
	}
	if len(deletions) == 0 {
		return 0
	}
	removed := len(s.items) - len(kept)
	s.items = kept
	s.notify(&ChangeSet{Deletions: deletions})
	return removed
}

// Set replaces the element at index at.
func (s *Slice[T]) Set(at int, v T) {
	s.checkOpen()
	if at < 0 || at >= len(s.items) {
		panic(fmt.Sprintf("observable: set position %d out of range [0,%d)", at, len(s.items)))
	}
	s.items[at] = v
	s.notify(&ChangeSet{Changes: []Range{{Start: at, Length: 1}}})
}

// Move relocates the element at from so that it ends up at index to. The
// change is reported as a deletion followed by an insertion.
func (s *Slice[T]) Move(from, to int) {
	s.checkOpen()
	n := len(s.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		panic(fmt.Sprintf("observable: move %d->%d out of range [0,%d)", from, to, n))
	}
	if from == to {
		return
	}
	v := s.items[from]
	s.items = append(s.items[:from], s.items[from+1:]...)
	s.items = append(s.items[:to], append([]T{v}, s.items[to:]...)...)
	s.notify(&ChangeSet{
		Deletions:  []Range{{Start: from, Length: 1}},
		Insertions: []Range{{Start: to, Length: 1}},
	})
}

// Replace swaps the whole content and notifies a full refresh.
func (s *Slice[T]) Replace(items []T) {
	s.checkOpen()
	s.items = append([]T(nil), items...)
	s.notify(nil)
}

// Reset swaps the whole content and notifies cs, which must describe the
// change from the old content to items. A nil cs reports a full refresh; an
// empty one reports nothing.
func (s *Slice[T]) Reset(items []T, cs *ChangeSet) {
	s.checkOpen()
	s.items = append([]T(nil), items...)
	if cs.IsEmpty() {
		return
	}
	s.notify(cs)
}

// Close invalidates the slice. Subsequent reads report no elements and
// subscribers are not notified.
func (s *Slice[T]) Close() {
	s.closed = true
}

func (s *Slice[T]) checkOpen() {
	if s.closed {
		panic("observable: mutation of closed slice")
	}
}

func (s *Slice[T]) notify(cs *ChangeSet) {
	// A listener may cancel other subscriptions while we dispatch; those are
	// skipped. Subscriptions added during dispatch see the next change only.
	ids := append([]uint64(nil), s.order...)
	for _, id := range ids {
		if l, ok := s.listeners[id]; ok {
			l(cs)
		}
	}
}

func (s *Slice[T]) unsubscribe(id uint64) {
	if _, ok := s.listeners[id]; !ok {
		return
	}
	delete(s.listeners, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

type sliceSubscription[T any] struct {
	s  *Slice[T]
	id uint64
}

func (sub *sliceSubscription[T]) Cancel() {
	sub.s.unsubscribe(sub.id)
}
