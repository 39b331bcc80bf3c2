package resilience

import "sync"

// TaskGuard tracks in-flight background tasks by key so a recurring trigger
// never launches a second task for the same key. The end-of-match report
// fetch uses it keyed by player id: repeated polls that observe
// finished=true before the fetch completes must not spawn duplicates.
type TaskGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewTaskGuard() *TaskGuard {
	return &TaskGuard{inFlight: make(map[string]struct{})}
}

// TryAcquire claims key and reports whether the caller owns the slot. A
// false return means a task for key is already running.
func (g *TaskGuard) TryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, running := g.inFlight[key]; running {
		return false
	}
	g.inFlight[key] = struct{}{}
	return true
}

// Release frees key. Safe to call for keys that were never acquired.
func (g *TaskGuard) Release(key string) {
	g.mu.Lock()
	delete(g.inFlight, key)
	g.mu.Unlock()
}

// Active returns the number of in-flight tasks.
func (g *TaskGuard) Active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inFlight)
}
