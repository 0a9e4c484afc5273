package status

import "sync"

// Guard is a per-job mutual-exclusion set. A session owns one Guard and
// every status-mutating path (single transition, bulk apply) acquires job
// ids through it, so the two paths can never interleave on the same job.
type Guard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{held: make(map[string]struct{})}
}

// TryAcquire claims one job id; false when it is already held.
func (g *Guard) TryAcquire(jobID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[jobID]; busy {
		return false
	}
	g.held[jobID] = struct{}{}
	return true
}

func (g *Guard) Release(jobID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, jobID)
}

// TryAcquireAll claims a batch all-or-nothing: either every id is free
// and all become held, or nothing is claimed.
func (g *Guard) TryAcquireAll(jobIDs []string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range jobIDs {
		if _, busy := g.held[id]; busy {
			return false
		}
	}
	for _, id := range jobIDs {
		g.held[id] = struct{}{}
	}
	return true
}

func (g *Guard) ReleaseAll(jobIDs []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range jobIDs {
		delete(g.held, id)
	}
}
