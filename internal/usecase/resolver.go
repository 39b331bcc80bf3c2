package usecase

import (
	"github.com/tomaldridge12/loanbot/internal/domain/match"
	"github.com/tomaldridge12/loanbot/internal/domain/player"
	"github.com/tomaldridge12/loanbot/internal/platform/logging"
)

// Resolution is the outcome of locating a player inside a match lineup.
type Resolution int

const (
	// ResolutionPending: lineup section absent or the player's team missing
	// from it. Caller keeps previous state and retries on a later poll.
	ResolutionPending Resolution = iota
	// ResolutionAbsent: squad published, player not in it.
	ResolutionAbsent
	ResolutionStarter
	ResolutionBench
)

var resolutionNames = map[Resolution]string{
	ResolutionPending: "pending",
	ResolutionAbsent:  "absent",
	ResolutionStarter: "starter",
	ResolutionBench:   "bench",
}

func (r Resolution) String() string {
	return resolutionNames[r]
}

// Resolver locates a tracked player inside a match's published squads and
// captures their per-player info block for later diffing and stats.
type Resolver struct {
	logger *logging.Logger
}

func NewResolver(logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{logger: logger}
}

// Resolve updates p.Info and p.Starting from the match lineup. The starting
// flag is set once per match and never downgraded: if a later poll returns
// an incomplete lineup, previous state is kept rather than cleared. Caller
// holds p.Mu.
func (r *Resolver) Resolve(p *player.Player, m *match.Match) Resolution {
	if m == nil || m.Lineup == nil {
		return ResolutionPending
	}

	team, ok := m.Lineup.Team(p.TeamID)
	if !ok {
		r.logger.Debug("player team not in lineup yet", "player", p.Name, "team_id", p.TeamID)
		return ResolutionPending
	}

	for i := range team.Starters {
		if team.Starters[i].ID == p.ID {
			p.Starting = true
			p.Info = &team.Starters[i]
			return ResolutionStarter
		}
	}

	for i := range team.Bench {
		if team.Bench[i].ID == p.ID {
			p.Info = &team.Bench[i]
			if p.Starting {
				// Resolved as starter earlier; a bench-only appearance now
				// means the provider data is temporarily incomplete.
				return ResolutionStarter
			}
			return ResolutionBench
		}
	}

	if p.Info != nil {
		// Previously resolved, now missing: keep state, retry later.
		return ResolutionPending
	}
	return ResolutionAbsent
}
