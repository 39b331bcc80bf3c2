package match

import (
	"testing"
	"time"

	"github.com/tomaldridge12/loanbot/internal/domain/event"
)

func testMatch() *Match {
	m := New(4193490, "Championship", time.Date(2026, time.August, 29, 15, 0, 0, 0, time.UTC))
	m.Header = Header{Teams: []TeamScore{
		{Name: "Sunderland", Score: 2},
		{Name: "Leeds United", Score: 1},
	}}
	return m
}

func TestMatch_Score(t *testing.T) {
	t.Parallel()

	scores, line := testMatch().Score()
	if line != "Sunderland 2 - 1 Leeds United" {
		t.Fatalf("unexpected score line: %q", line)
	}
	if scores["Sunderland"] != 2 || scores["Leeds United"] != 1 {
		t.Fatalf("unexpected score map: %v", scores)
	}
}

func TestMatch_Score_MissingHeader(t *testing.T) {
	t.Parallel()

	m := New(1, "League One", time.Now())
	scores, line := m.Score()
	if scores != nil || line != "" {
		t.Fatalf("expected empty score for missing header, got %v %q", scores, line)
	}
}

func TestMatch_Opponent(t *testing.T) {
	t.Parallel()

	if got := testMatch().Opponent("Sunderland"); got != "Leeds United" {
		t.Fatalf("unexpected opponent: %q", got)
	}
}

func TestMatch_IsSoon(t *testing.T) {
	t.Parallel()

	m := testMatch()

	now := m.KickoffAt.Add(-2 * time.Hour)
	if m.IsSoon(now, time.Hour) {
		t.Fatalf("match two hours out should not be soon")
	}

	now = m.KickoffAt.Add(-30 * time.Minute)
	if !m.IsSoon(now, time.Hour) {
		t.Fatalf("match thirty minutes out should be soon")
	}

	now = m.KickoffAt.Add(20 * time.Minute)
	if !m.IsSoon(now, time.Hour) {
		t.Fatalf("match under way should be soon")
	}
}

func TestOnceFlags_MarkOnce(t *testing.T) {
	t.Parallel()

	flags := NewOnceFlags()
	if !flags.MarkOnce(event.KindStarted) {
		t.Fatalf("first mark should pass")
	}
	if flags.MarkOnce(event.KindStarted) {
		t.Fatalf("second mark must be rejected")
	}
	if !flags.Posted(event.KindStarted) {
		t.Fatalf("flag should be recorded")
	}

	// Tallied kinds are never gated.
	if !flags.MarkOnce(event.KindGoal) || !flags.MarkOnce(event.KindGoal) {
		t.Fatalf("goal events must not be gated")
	}
}

func TestMatch_AdoptFlags(t *testing.T) {
	t.Parallel()

	prev := testMatch()
	prev.Flags().MarkOnce(event.KindStartingLineup)

	next := New(prev.ID, prev.LeagueName, prev.KickoffAt)
	next.AdoptFlags(prev)

	if next.Flags().MarkOnce(event.KindStartingLineup) {
		t.Fatalf("flag must survive the snapshot rebuild")
	}
}

func TestPhase_CanAdvance(t *testing.T) {
	t.Parallel()

	if !PhasePreLineup.CanAdvance(PhaseLineupKnown) {
		t.Fatalf("pre-lineup to lineup-known must be legal")
	}
	if !PhaseLineupKnown.CanAdvance(PhaseFinished) {
		t.Fatalf("finished is reachable from any phase")
	}
	if PhaseInProgress.CanAdvance(PhaseLineupKnown) {
		t.Fatalf("lifecycle must not move backwards")
	}
	if PhaseFinished.CanAdvance(PhaseFinished) {
		t.Fatalf("finished must not re-enter finished")
	}
}

func TestLineup_Team(t *testing.T) {
	t.Parallel()

	lineup := &Lineup{Teams: []TeamLineup{
		{TeamID: 8650},
		{TeamID: 8463},
	}}

	team, ok := lineup.Team(8463)
	if !ok || team.TeamID != 8463 {
		t.Fatalf("expected to find team 8463, got %v ok=%v", team, ok)
	}
	if _, ok := lineup.Team(1); ok {
		t.Fatalf("unknown team id must not resolve")
	}

	var nilLineup *Lineup
	if _, ok := nilLineup.Team(8463); ok {
		t.Fatalf("nil lineup must not resolve")
	}
}
