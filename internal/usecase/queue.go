package usecase

import (
	"sync"

	"github.com/tomaldridge12/loanbot/internal/domain/player"
)

// TrackingQueue is the working set of players polled at high frequency.
// Both workers add and remove concurrently; iteration always goes through
// Snapshot so a removal never corrupts a traversal in flight.
type TrackingQueue struct {
	mu      sync.Mutex
	players []*player.Player
	index   map[int64]struct{}
}

func NewTrackingQueue() *TrackingQueue {
	return &TrackingQueue{index: make(map[int64]struct{})}
}

// Add appends the player unless already present. Reports whether the
// player was added.
func (q *TrackingQueue) Add(p *player.Player) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.index[p.ID]; ok {
		return false
	}
	q.index[p.ID] = struct{}{}
	q.players = append(q.players, p)
	return true
}

// Remove takes the player out of the queue. Reports whether the player was
// present, so callers can act exactly once on the first removal.
func (q *TrackingQueue) Remove(playerID int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.index[playerID]; !ok {
		return false
	}
	delete(q.index, playerID)
	for i, p := range q.players {
		if p.ID == playerID {
			q.players = append(q.players[:i], q.players[i+1:]...)
			break
		}
	}
	return true
}

func (q *TrackingQueue) Contains(playerID int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.index[playerID]
	return ok
}

// Snapshot returns a point-in-time copy for iteration.
func (q *TrackingQueue) Snapshot() []*player.Player {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*player.Player, len(q.players))
	copy(out, q.players)
	return out
}

func (q *TrackingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.players)
}
