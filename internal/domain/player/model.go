package player

import (
	"fmt"
	"sync"

	"github.com/tomaldridge12/loanbot/internal/domain/event"
	"github.com/tomaldridge12/loanbot/internal/domain/match"
)

// Player is one tracked individual. It lives for the whole process; the
// match-scoped fields reset when tracking moves to a new fixture.
//
// Mu guards the match-scoped state. The roster scan worker and the
// high-frequency poll worker both touch players, so every update+diff+drain
// pass holds the lock for its full duration and per-player ordering stays
// serialized.
type Player struct {
	Name     string
	ID       int64
	TeamID   int64
	TeamName string

	Mu       sync.Mutex
	Starting bool
	Phase    match.Phase
	Match    *match.Match
	Info     *match.LineupPlayer
	LastSeen map[string]any
	Queue    *event.Queue
}

func New(name string, id, teamID int64, teamName string) *Player {
	return &Player{
		Name:     name,
		ID:       id,
		TeamID:   teamID,
		TeamName: teamName,
		LastSeen: make(map[string]any),
		Queue:    event.NewQueue(),
	}
}

// ResetForMatch clears the match-scoped lifecycle state ahead of tracking a
// new fixture. Caller holds Mu.
func (p *Player) ResetForMatch(m *match.Match) {
	p.Starting = false
	p.Phase = match.PhasePreLineup
	p.Match = m
	p.Info = nil
	p.LastSeen = make(map[string]any)
	p.Queue = event.NewQueue()
}

func (p *Player) String() string {
	return fmt.Sprintf("%s, %s", p.Name, p.TeamName)
}
