package usecase

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tomaldridge12/loanbot/internal/domain/event"
	"github.com/tomaldridge12/loanbot/internal/domain/match"
	"github.com/tomaldridge12/loanbot/internal/domain/player"
)

const (
	// DefaultHashtags is appended to every post.
	DefaultHashtags = "#CFC #Chelsea"

	// passingReportThreshold: pass completion only makes the report above
	// this percentage.
	passingReportThreshold = 70
)

// Stat names inside the provider's per-player statistics block.
const (
	statRating         = "FotMob rating"
	statAccuratePasses = "Accurate passes"
	statChancesCreated = "Chances created"
	statTotalShots     = "Total shots"
	statGoals          = "Goals"
	statAssists        = "Assists"
	statSaves          = "Saves"
	statGoalsConceded  = "Goals conceded"
)

// Composer maps a domain event plus match context to the posted message.
// Pure string building: it never fails, missing data just drops clauses.
type Composer struct {
	hashtags string
}

func NewComposer(hashtags string) *Composer {
	if strings.TrimSpace(hashtags) == "" {
		hashtags = DefaultHashtags
	}
	return &Composer{hashtags: hashtags}
}

// Message renders the notification for one event.
func (c *Composer) Message(ev event.Event, p *player.Player, m *match.Match) string {
	var scoreLine string
	if m != nil {
		_, scoreLine = m.Score()
	}

	switch ev.Kind {
	case event.KindGoal:
		return c.withScore(fmt.Sprintf("%s has scored a goal!", p.Name), scoreLine)
	case event.KindAssist:
		return c.withScore(fmt.Sprintf("%s has provided an assist!", p.Name), scoreLine)
	case event.KindYellowCard:
		return c.withScore(fmt.Sprintf("%s has received a yellow card!", p.Name), scoreLine)
	case event.KindRedCard:
		return c.withScore(fmt.Sprintf("%s has received a red card! They've been sent off!", p.Name), scoreLine)
	case event.KindSubOn:
		return c.withScore(fmt.Sprintf("%s has been subbed on at the %d minute!", p.Name, ev.Minute), scoreLine)
	case event.KindSubOff:
		return c.withScore(fmt.Sprintf("%s has been subbed off at the %d minute!", p.Name, ev.Minute), scoreLine)
	case event.KindStarted:
		text := fmt.Sprintf("The %s match with %s has started!", p.TeamName, p.Name)
		if !p.Starting {
			text += " They're currently on the bench."
		}
		return c.withScore(text, scoreLine)
	case event.KindFinished:
		if ev.Report == "" {
			return fmt.Sprintf("The %s match with %s has finished. They didn't come off the bench.\n\n%s", p.TeamName, p.Name, c.hashtags)
		}
		text := fmt.Sprintf("The %s match with %s has finished, they had a rating of %s", p.TeamName, p.Name, ev.Report)
		return c.withScore(text, scoreLine)
	case event.KindStartingLineup:
		return c.lineupMessage(p, m, "is in the starting lineup for")
	case event.KindBenchLineup:
		return c.lineupMessage(p, m, "is on the bench for")
	default:
		return c.withScore(fmt.Sprintf("%s: %s", p.Name, ev), scoreLine)
	}
}

func (c *Composer) lineupMessage(p *player.Player, m *match.Match, phrase string) string {
	league := ""
	opponent := ""
	if m != nil {
		league = m.LeagueName
		opponent = m.Opponent(p.TeamName)
	}

	text := fmt.Sprintf("%s %s %s", p.Name, phrase, p.TeamName)
	if opponent != "" {
		text += " against " + opponent
	}
	if league != "" {
		text += " in the " + league
	}
	return fmt.Sprintf("%s!\n\n%s", text, c.hashtags)
}

func (c *Composer) withScore(text, scoreLine string) string {
	if scoreLine == "" {
		return fmt.Sprintf("%s\n\n%s", text, c.hashtags)
	}
	return fmt.Sprintf("%s\n\n%s\n%s", text, scoreLine, c.hashtags)
}

// MatchReport builds the qualitative end-of-match report: the rating
// followed by only the statistics that clear their significance threshold,
// joined with a plain "and" before the final clause. Goalkeepers report
// saves and goals conceded instead of attacking numbers.
func (c *Composer) MatchReport(st match.PlayerStats, goalkeeper bool) string {
	base := formatStat(st.Stat(statRating))

	var parts []string
	if passes, ok := st.Values[statAccuratePasses]; ok && passes.HasTotal && passes.Total > 0 {
		perc := int(math.Round(passes.Value / passes.Total * 100))
		if perc > passingReportThreshold {
			parts = append(parts, fmt.Sprintf("%d%% passing percentage", perc))
		}
	}

	if goalkeeper {
		if saves := st.Stat(statSaves); saves > 0 {
			parts = append(parts, fmt.Sprintf("%d saves", int(saves)))
		}
		if conceded := st.Stat(statGoalsConceded); conceded == 0 {
			parts = append(parts, "a clean sheet")
		} else {
			parts = append(parts, fmt.Sprintf("%d goals conceded", int(conceded)))
		}
	} else {
		if chances := st.Stat(statChancesCreated); chances > 0 {
			parts = append(parts, fmt.Sprintf("%d chances created", int(chances)))
		}
		if shots := st.Stat(statTotalShots); shots > 0 {
			parts = append(parts, fmt.Sprintf("%d shots", int(shots)))
		}
		if goals := st.Stat(statGoals); goals > 0 {
			parts = append(parts, fmt.Sprintf("%d goals", int(goals)))
		}
		if assists := st.Stat(statAssists); assists > 0 {
			parts = append(parts, fmt.Sprintf("%d assists", int(assists)))
		}
	}

	switch len(parts) {
	case 0:
		return base + "."
	case 1:
		return base + ", including " + parts[0] + "."
	default:
		last := parts[len(parts)-1]
		return base + ", including " + strings.Join(parts[:len(parts)-1], ", ") + " and " + last + "."
	}
}

func formatStat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
