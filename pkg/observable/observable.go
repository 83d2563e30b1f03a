// Package observable defines the ordered-collection capability the flat list
// engine consumes: a list that can be read by index and that reports
// fine-grained change sets to its subscribers.
package observable

import "fmt"

// Range is a contiguous run of indices [Start, Start+Length).
type Range struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// End returns the first index past the range.
func (r Range) End() int {
	return r.Start + r.Length
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,+%d)", r.Start, r.Length)
}

// ChangeSet describes one batch of changes to an ordered collection.
//
// Ranges within each slice are ascending and non-overlapping. Deletions are
// expressed in the coordinates of the collection before the batch, insertions
// and changes in the coordinates after it. Consumers apply deletions in
// reverse order, then insertions, then changes.
//
// A nil *ChangeSet means "full refresh": the collection changed in a way it
// cannot describe and consumers must re-derive everything.
type ChangeSet struct {
	Deletions  []Range `json:"deletions,omitempty"`
	Insertions []Range `json:"insertions,omitempty"`
	Changes    []Range `json:"changes,omitempty"`
}

// IsEmpty reports whether the change set carries no ranges.
func (cs *ChangeSet) IsEmpty() bool {
	return cs != nil && len(cs.Deletions) == 0 && len(cs.Insertions) == 0 && len(cs.Changes) == 0
}

// Listener receives change sets. It is invoked synchronously on the thread
// that mutated the collection.
type Listener func(cs *ChangeSet)

// Subscription is the handle returned by Subscribe. Cancel is idempotent.
type Subscription interface {
	Cancel()
}

// List is an ordered collection exposing structured change notifications.
type List[T any] interface {
	// Len returns the number of elements, or 0 if the list is no longer valid.
	Len() int
	// At returns the element at index i. It panics if i is out of range.
	At(i int) T
	// IsValid reports whether the backing storage is still usable.
	IsValid() bool
	// Subscribe registers l for change notifications.
	Subscribe(l Listener) Subscription
}

type noopSubscription struct{}

func (noopSubscription) Cancel() {}

// NoopSubscription returns a Subscription whose Cancel does nothing.
func NoopSubscription() Subscription {
	return noopSubscription{}
}
