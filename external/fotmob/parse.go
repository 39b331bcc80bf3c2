package fotmob

import (
	"fmt"
	"strconv"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/tomaldridge12/loanbot/internal/domain/match"
	"github.com/tomaldridge12/loanbot/internal/usecase"
)

// ParseMatch converts a raw match-details document into a Match. It fails
// only when both the general and content sections are absent; missing
// lineup or stats sections are legitimate pre-announcement states and stay
// empty. Pure transform, no side effects.
func ParseMatch(raw []byte) (*match.Match, error) {
	var doc matchDocument
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode match document: %v", usecase.ErrParse, err)
	}
	return parseMatchDocument(doc)
}

func parseMatchDocument(doc matchDocument) (*match.Match, error) {
	if doc.General == nil && doc.Content == nil {
		return nil, fmt.Errorf("%w: general and content sections are both absent", usecase.ErrParse)
	}

	m := match.New(0, "", time.Time{})
	if doc.General != nil {
		m.ID = doc.General.MatchID
		m.LeagueName = doc.General.LeagueName
		m.KickoffAt = parseKickoff(doc.General.MatchTimeUTCDate)
		m.Started = doc.General.Started
		m.Finished = doc.General.Finished
	}

	if doc.Header != nil {
		teams := make([]match.TeamScore, 0, len(doc.Header.Teams))
		for _, team := range doc.Header.Teams {
			teams = append(teams, match.TeamScore{Name: team.Name, Score: team.Score})
		}
		m.Header = match.Header{Teams: teams}
	}

	if doc.Content != nil {
		section := doc.Content.Lineup
		if section == nil {
			section = doc.Content.Lineup2
		}
		m.Lineup = parseLineup(section)
		m.PlayerStats = parsePlayerStats(doc.Content.PlayerStats)
	}

	return m, nil
}

func parseKickoff(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05Z0700"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

func parseLineup(section *lineupSection) *match.Lineup {
	if section == nil {
		return nil
	}

	teams := make([]match.TeamLineup, 0, 2)
	for _, side := range []*teamLineup{section.HomeTeam, section.AwayTeam} {
		if side == nil {
			continue
		}
		teams = append(teams, match.TeamLineup{
			TeamID:   side.ID,
			Starters: parseLineupPlayers(side.Starters),
			Bench:    parseLineupPlayers(side.Subs),
		})
	}
	if len(teams) == 0 {
		return nil
	}
	return &match.Lineup{Teams: teams}
}

func parseLineupPlayers(players []lineupPlayer) []match.LineupPlayer {
	out := make([]match.LineupPlayer, 0, len(players))
	for _, p := range players {
		out = append(out, match.LineupPlayer{
			ID:       p.ID,
			Name:     p.Name,
			Position: p.Position,
			Events:   p.Events,
		})
	}
	return out
}

func parsePlayerStats(entries map[string]playerStatsEntry) map[string]match.PlayerStats {
	if len(entries) == 0 {
		return nil
	}

	out := make(map[string]match.PlayerStats, len(entries))
	for playerID, entry := range entries {
		if len(entry.Stats) == 0 {
			// Listed without stat buckets: never came on.
			out[playerID] = match.PlayerStats{}
			continue
		}

		values := make(map[string]match.StatValue, len(entry.Stats[0].Stats))
		for name, item := range entry.Stats[0].Stats {
			value, ok := coerceFloat(item.Stat.Value)
			if !ok {
				continue
			}
			sv := match.StatValue{Value: value}
			if item.Stat.Total != nil {
				sv.Total = *item.Stat.Total
				sv.HasTotal = true
			}
			values[name] = sv
		}
		out[playerID] = match.PlayerStats{Played: true, Values: values}
	}
	return out
}

func coerceFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
