package orders

import "sync"

// Tracker backs the "new orders" badge on the admin dashboard. Each
// poll reports the freshly fetched order count; when it exceeds the
// previously observed count the difference becomes the badge value.
// The heuristic cannot tell three new orders from three deleted and
// three created, and it only resets on an explicit refresh.
type Tracker struct {
	mu      sync.Mutex
	last    int
	pending int
	primed  bool
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Observe records a poll result and returns the current badge value.
// The first observation only primes the baseline.
func (t *Tracker) Observe(count int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.primed && count > t.last {
		t.pending = count - t.last
	}
	t.last = count
	t.primed = true
	return t.pending
}

// Reset clears the badge, keeping the baseline.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = 0
}

// Pending returns the badge value without observing a new count.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}
