package notifyfwd

import "sync"

// State of a notification id.
type State int

const (
	// StatePending: show received, not yet accepted by the backend.
	StatePending State = iota + 1
	// StateDisplayed: the backend accepted the notification.
	StateDisplayed
	// StateClosed is terminal until the id is shown again.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateDisplayed:
		return "Displayed"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

type tracker struct {
	mu     sync.Mutex
	states map[uint32]State
}

func newTracker() *tracker {
	return &tracker{states: make(map[uint32]State)}
}

func (t *tracker) get(id uint32) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.states[id]
	return s, ok
}

// pending starts a new cycle for id, whatever state it was in.
func (t *tracker) pending(id uint32) {
	t.mu.Lock()
	t.states[id] = StatePending
	t.mu.Unlock()
}

// displayed moves id from Pending to Displayed.
// A close that raced ahead of the backend call wins.
func (t *tracker) displayed(id uint32) {
	t.mu.Lock()
	if t.states[id] == StatePending {
		t.states[id] = StateDisplayed
	}
	t.mu.Unlock()
}

// dropped forgets a Pending id the backend failed to show.
func (t *tracker) dropped(id uint32) {
	t.mu.Lock()
	if t.states[id] == StatePending {
		delete(t.states, id)
	}
	t.mu.Unlock()
}

// close marks id Closed and reports whether it already was.
func (t *tracker) close(id uint32) (already bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	already = t.states[id] == StateClosed
	t.states[id] = StateClosed
	return already
}
