package flatlist

import "fmt"

// NotificationKind identifies an outbound change notification.
type NotificationKind int

const (
	// RangeInserted means Count rows were inserted at Start.
	RangeInserted NotificationKind = iota
	// RangeRemoved means Count rows were removed at Start.
	RangeRemoved
	// RangeChanged means the Count rows at Start changed content.
	RangeChanged
	// FullChanged means every cached row assumption is void.
	FullChanged
)

func (k NotificationKind) String() string {
	switch k {
	case RangeInserted:
		return "RangeInserted"
	case RangeRemoved:
		return "RangeRemoved"
	case RangeChanged:
		return "RangeChanged"
	case FullChanged:
		return "FullChanged"
	default:
		return fmt.Sprintf("NotificationKind(%d)", int(k))
	}
}

// Notification is one change to the flat list. Start and Count are zero for
// FullChanged.
type Notification struct {
	Kind  NotificationKind
	Start int
	Count int
}

func (n Notification) String() string {
	if n.Kind == FullChanged {
		return n.Kind.String() + "()"
	}
	return fmt.Sprintf("%s(%d, %d)", n.Kind, n.Start, n.Count)
}

// Observer receives notifications right after the flat list changed.
// Observers may read the adapter but must not mutate it from Notify.
type Observer interface {
	Notify(n Notification)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(n Notification)

// Notify implements Observer.
func (f ObserverFunc) Notify(n Notification) { f(n) }

// ExpandCollapseListener is told about gesture-driven expansion changes. The
// argument is the parent index, not the flat position.
type ExpandCollapseListener interface {
	OnParentExpanded(parentIndex int)
	OnParentCollapsed(parentIndex int)
}
