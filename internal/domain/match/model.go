package match

import (
	"fmt"
	"time"
)

// DefaultTrackingLead is how far before kickoff a match counts as imminent.
const DefaultTrackingLead = time.Hour

// Match is one fixture snapshot as seen by the provider. It is rebuilt on
// every refresh; only the one-shot posted flags survive a rebuild (see
// AdoptFlags).
type Match struct {
	ID          int64
	LeagueName  string
	KickoffAt   time.Time
	Started     bool
	Finished    bool
	Lineup      *Lineup
	Header      Header
	PlayerStats map[string]PlayerStats

	flags *OnceFlags
}

func New(id int64, leagueName string, kickoffAt time.Time) *Match {
	return &Match{
		ID:         id,
		LeagueName: leagueName,
		KickoffAt:  kickoffAt,
		flags:      NewOnceFlags(),
	}
}

// Lineup is the normalized squad section. Teams carries both sides; the
// resolver picks the tracked player's team by id.
type Lineup struct {
	Teams []TeamLineup
}

func (l *Lineup) Team(teamID int64) (TeamLineup, bool) {
	if l == nil {
		return TeamLineup{}, false
	}
	for _, team := range l.Teams {
		if team.TeamID == teamID {
			return team, true
		}
	}
	return TeamLineup{}, false
}

type TeamLineup struct {
	TeamID   int64
	Starters []LineupPlayer
	Bench    []LineupPlayer
}

// LineupPlayer is the per-player info block inside a lineup. Events holds the
// provider's open-keyed event block; unknown keys are tolerated downstream.
type LineupPlayer struct {
	ID       int64
	Name     string
	Position string
	Events   map[string]any
}

func (p LineupPlayer) Goalkeeper() bool {
	return p.Position == "GK"
}

// Header is the score section of a snapshot.
type Header struct {
	Teams []TeamScore
}

type TeamScore struct {
	Name  string
	Score int
}

// Score returns the per-team score map and the rendered score line, e.g.
// "Chelsea 2 - 1 Arsenal". Both are empty when the header is absent.
func (m *Match) Score() (map[string]int, string) {
	if len(m.Header.Teams) < 2 {
		return nil, ""
	}
	home := m.Header.Teams[0]
	away := m.Header.Teams[1]

	scores := map[string]int{
		home.Name: home.Score,
		away.Name: away.Score,
	}
	line := fmt.Sprintf("%s %d - %d %s", home.Name, home.Score, away.Score, away.Name)
	return scores, line
}

// Opponent returns the name of the other team in the header.
func (m *Match) Opponent(teamName string) string {
	for _, team := range m.Header.Teams {
		if team.Name != teamName {
			return team.Name
		}
	}
	return ""
}

// IsSoon reports whether the match is within lead of kickoff (or already
// under way). A non-positive lead falls back to DefaultTrackingLead.
func (m *Match) IsSoon(now time.Time, lead time.Duration) bool {
	if lead <= 0 {
		lead = DefaultTrackingLead
	}
	return m.KickoffAt.Sub(now) < lead
}

// Flags returns the one-shot posted flag set, creating it on first use.
func (m *Match) Flags() *OnceFlags {
	if m.flags == nil {
		m.flags = NewOnceFlags()
	}
	return m.flags
}

// AdoptFlags carries the previous snapshot's one-shot flags into this
// rebuild so a flag never resets across refreshes.
func (m *Match) AdoptFlags(prev *Match) {
	if prev == nil || prev.flags == nil {
		return
	}
	m.flags = prev.flags
}

// PlayerStats is the flattened end-of-match statistics for one player.
// Played is false when the provider lists the player without any stat
// buckets, which means they never came on.
type PlayerStats struct {
	Played bool
	Values map[string]StatValue
}

type StatValue struct {
	Value    float64
	Total    float64
	HasTotal bool
}

// Stat returns the named stat value, or zero when absent.
func (s PlayerStats) Stat(name string) float64 {
	if v, ok := s.Values[name]; ok {
		return v.Value
	}
	return 0
}

// StatsFor looks up the flattened stats block for a player id.
func (m *Match) StatsFor(playerID int64) (PlayerStats, bool) {
	if len(m.PlayerStats) == 0 {
		return PlayerStats{}, false
	}
	st, ok := m.PlayerStats[fmt.Sprintf("%d", playerID)]
	return st, ok
}

func (m *Match) String() string {
	status := "not started"
	switch {
	case m.Finished:
		status = "finished"
	case m.Started:
		status = "in progress"
	}
	return fmt.Sprintf("match %d in %s at %s (%s)", m.ID, m.LeagueName, m.KickoffAt.Format(time.RFC3339), status)
}

// Phase is the per-(player, match) lifecycle state.
type Phase int

const (
	PhasePreLineup Phase = iota
	PhaseLineupKnown
	PhaseInProgress
	PhaseFinished
)

var phaseNames = map[Phase]string{
	PhasePreLineup:   "PRE_LINEUP",
	PhaseLineupKnown: "LINEUP_KNOWN",
	PhaseInProgress:  "IN_PROGRESS",
	PhaseFinished:    "FINISHED",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE(%d)", int(p))
}

// CanAdvance reports whether moving to next is a legal forward transition.
// The lifecycle never moves backwards; FINISHED is reachable from any phase.
func (p Phase) CanAdvance(next Phase) bool {
	if next == PhaseFinished {
		return p != PhaseFinished
	}
	return next > p
}
