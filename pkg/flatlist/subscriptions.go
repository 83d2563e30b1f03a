package flatlist

import "github.com/vanderheijden86/xlist/pkg/observable"

// subscriptionManager holds one child-list subscription per expanded parent
// row. Handles are keyed by wrapper identity rather than source position so
// parent insertions and removals elsewhere never leave a handle pointing at
// the wrong parent.
type subscriptionManager struct {
	handles map[*Wrapper]observable.Subscription
}

func newSubscriptionManager() *subscriptionManager {
	return &subscriptionManager{handles: make(map[*Wrapper]observable.Subscription)}
}

func (m *subscriptionManager) subscribe(w *Wrapper, l observable.Listener) {
	if m.has(w) {
		violation("subscribe", "parent "+w.Key()+" already has a child subscription")
	}
	list := w.parent.Children()
	if list == nil {
		m.handles[w] = observable.NoopSubscription()
		return
	}
	m.handles[w] = list.Subscribe(l)
}

func (m *subscriptionManager) unsubscribe(w *Wrapper) bool {
	h, ok := m.handles[w]
	if !ok {
		return false
	}
	h.Cancel()
	delete(m.handles, w)
	return true
}

func (m *subscriptionManager) unsubscribeAll() {
	for w, h := range m.handles {
		h.Cancel()
		delete(m.handles, w)
	}
}

// prune drops every subscription whose wrapper is not an expanded parent of
// flat.
func (m *subscriptionManager) prune(flat Sequence) {
	live := make(map[*Wrapper]bool, len(m.handles))
	for _, w := range flat {
		if w.IsParent() && w.expanded {
			live[w] = true
		}
	}
	for w := range m.handles {
		if !live[w] {
			m.unsubscribe(w)
		}
	}
}

// fill subscribes every expanded parent of flat that has no subscription.
func (m *subscriptionManager) fill(flat Sequence, listen func(*Wrapper) observable.Listener) {
	for _, w := range flat {
		if w.IsParent() && w.expanded {
			if !m.has(w) {
				m.subscribe(w, listen(w))
			}
		}
	}
}

func (m *subscriptionManager) has(w *Wrapper) bool {
	_, ok := m.handles[w]
	return ok
}

func (m *subscriptionManager) count() int {
	return len(m.handles)
}
