package battle

import "sync"

// History keeps the snapshots of the last few seconds of a battle.
type History struct {
	mu    sync.RWMutex
	buf   []Snapshot
	head  int
	size  int
	limit int
}

// NewHistory sizes the buffer for seconds of snapshots taken at hz.
func NewHistory(seconds, hz float64) *History {
	n := max(int(seconds*hz)+4, 1)
	return &History{buf: make([]Snapshot, n), limit: n}
}

func (h *History) Push(s Snapshot) {
	h.mu.Lock()
	h.buf[h.head] = s
	h.head = (h.head + 1) % h.limit
	if h.size < h.limit {
		h.size++
	}
	h.mu.Unlock()
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// At returns the battle as it was at elapsed time t. Times outside the
// window clamp to the oldest or newest snapshot; in between, craft
// positions are interpolated from the two neighbouring snapshots.
func (h *History) At(t float64) (Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.size == 0 {
		return Snapshot{}, false
	}
	var before, after *Snapshot
	for i := range h.size {
		s := &h.buf[(h.head-1-i+h.limit)%h.limit]
		if s.Elapsed >= t {
			after = s
		}
		if s.Elapsed <= t {
			before = s
			break
		}
	}
	switch {
	case before == nil:
		return h.buf[(h.head-h.size+h.limit)%h.limit], true
	case after == nil, after.Elapsed == before.Elapsed:
		return *before, true
	}
	return interpolate(*before, *after, t), true
}

func interpolate(a, b Snapshot, t float64) Snapshot {
	alpha := (t - a.Elapsed) / (b.Elapsed - a.Elapsed)
	next := make(map[string]CraftState, len(b.Crafts))
	for _, c := range b.Crafts {
		next[c.ID] = c
	}
	out := a
	out.Elapsed = t
	out.Crafts = make([]CraftState, len(a.Crafts))
	for i, c := range a.Crafts {
		if n, ok := next[c.ID]; ok && c.Alive && n.Alive {
			c.Position = c.Position.Add(n.Position.Sub(c.Position).Scale(alpha))
			c.Velocity = c.Velocity.Add(n.Velocity.Sub(c.Velocity).Scale(alpha))
		}
		out.Crafts[i] = c
	}
	return out
}
