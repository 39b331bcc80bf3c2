package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomaldridge12/loanbot/internal/domain/match"
	"github.com/tomaldridge12/loanbot/internal/domain/player"
	"github.com/tomaldridge12/loanbot/internal/platform/logging"
)

// matchScript holds the mutable provider state a test drives through the
// match day. Every MatchByID call builds a fresh snapshot from it, the same
// way the real provider rebuilds the document on each fetch.
type matchScript struct {
	mu       sync.Mutex
	matchID  int64
	kickoff  time.Time
	started  bool
	finished bool
	lineup   bool
	starter  bool
	events   map[string]any
	stats    map[string]match.PlayerStats
}

func (s *matchScript) set(mutate func(*matchScript)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate(s)
}

func (s *matchScript) snapshot() *match.Match {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := match.New(s.matchID, "Championship", s.kickoff)
	m.Started = s.started
	m.Finished = s.finished
	m.Header = match.Header{Teams: []match.TeamScore{
		{Name: "Sunderland", Score: 0},
		{Name: "Leeds United", Score: 0},
	}}

	if s.lineup {
		events := make(map[string]any, len(s.events))
		for k, v := range s.events {
			events[k] = v
		}
		tracked := match.LineupPlayer{ID: 712375, Name: "Jobe Bellingham", Position: "AM", Events: events}

		team := match.TeamLineup{TeamID: 8472}
		if s.starter {
			team.Starters = []match.LineupPlayer{tracked}
		} else {
			team.Starters = []match.LineupPlayer{{ID: 111, Name: "Somebody Else"}}
			team.Bench = []match.LineupPlayer{tracked}
		}
		m.Lineup = &match.Lineup{Teams: []match.TeamLineup{team, {TeamID: 9999}}}
	}

	if s.stats != nil {
		m.PlayerStats = make(map[string]match.PlayerStats, len(s.stats))
		for k, v := range s.stats {
			m.PlayerStats[k] = v
		}
	}
	return m
}

type scriptProvider struct {
	script *matchScript
}

func (p *scriptProvider) NextMatchID(ctx context.Context, teamID int64) (int64, error) {
	return p.script.matchID, nil
}

func (p *scriptProvider) MatchByID(ctx context.Context, matchID int64) (*match.Match, error) {
	return p.script.snapshot(), nil
}

type recordingPoster struct {
	mu     sync.Mutex
	texts  []string
	images int
}

func (r *recordingPoster) Post(ctx context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return nil
}

func (r *recordingPoster) PostImage(ctx context.Context, text string, image []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	r.images++
	return nil
}

func (r *recordingPoster) countContaining(sub string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, text := range r.texts {
		if strings.Contains(text, sub) {
			n++
		}
	}
	return n
}

func (r *recordingPoster) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.texts))
	copy(out, r.texts)
	return out
}

func (r *recordingPoster) imageCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.images
}

type stubRenderer struct{}

func (stubRenderer) Render(playerName, kind string, score map[string]int) ([]byte, error) {
	return []byte("png"), nil
}

func newTestTracker(t *testing.T, script *matchScript, renderer Renderer) (*Tracker, *player.Player, *recordingPoster) {
	t.Helper()

	p := player.New("Jobe Bellingham", 712375, 8472, "Sunderland")
	poster := &recordingPoster{}

	tracker, err := NewTracker(
		[]*player.Player{p},
		&scriptProvider{script: script},
		poster,
		renderer,
		NewComposer(""),
		TrackerConfig{
			ReportMaxRetries:    3,
			ReportRetryInterval: time.Millisecond,
			ReportWorkers:       2,
		},
		logging.NewNop(),
	)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	t.Cleanup(tracker.Close)
	return tracker, p, poster
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestTrackerStarterLifecycle(t *testing.T) {
	ctx := context.Background()
	script := &matchScript{
		matchID: 4193490,
		kickoff: time.Now().Add(30 * time.Minute),
		lineup:  true,
		starter: true,
		events:  map[string]any{},
	}
	tracker, p, poster := newTestTracker(t, script, nil)

	if err := tracker.ScanOnce(ctx); err != nil {
		t.Fatalf("ScanOnce: %v", err)
	}
	if !tracker.Queue().Contains(p.ID) {
		t.Fatal("starter within the tracking window should be queued")
	}

	if err := tracker.PollOnce(ctx); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if got := poster.countContaining("is in the starting lineup for Sunderland against Leeds United"); got != 1 {
		t.Fatalf("starting lineup posts = %d, want 1", got)
	}

	// Nothing changed, nothing new posted.
	if err := tracker.PollOnce(ctx); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if got := poster.countContaining("lineup"); got != 1 {
		t.Fatalf("lineup posts after repeat poll = %d, want 1", got)
	}

	script.set(func(s *matchScript) { s.started = true })
	for i := 0; i < 3; i++ {
		if err := tracker.PollOnce(ctx); err != nil {
			t.Fatalf("PollOnce: %v", err)
		}
	}
	if got := poster.countContaining("has started!"); got != 1 {
		t.Fatalf("started posts = %d, want 1", got)
	}
	if got := poster.countContaining("currently on the bench"); got != 0 {
		t.Fatalf("starter got a bench clause: %q", poster.all())
	}

	script.set(func(s *matchScript) {
		s.finished = true
		s.stats = map[string]match.PlayerStats{
			"712375": {Played: true, Values: map[string]match.StatValue{
				"FotMob rating": {Value: 7.5},
			}},
		}
	})
	if err := tracker.PollOnce(ctx); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}

	waitFor(t, "player retired from queue", func() bool {
		return !tracker.Queue().Contains(p.ID)
	})
	waitFor(t, "finished post", func() bool {
		return poster.countContaining("has finished, they had a rating of 7.5") == 1
	})

	// Further polls after retirement must not re-post anything.
	if err := tracker.PollOnce(ctx); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if got := poster.countContaining("has finished"); got != 1 {
		t.Fatalf("finished posts = %d, want 1", got)
	}
}

func TestTrackerBenchPlayerNeverGetsStartingLineup(t *testing.T) {
	ctx := context.Background()
	script := &matchScript{
		matchID: 4193490,
		kickoff: time.Now().Add(10 * time.Minute),
		lineup:  true,
		starter: false,
		events:  map[string]any{},
	}
	tracker, p, poster := newTestTracker(t, script, nil)

	if err := tracker.ScanOnce(ctx); err != nil {
		t.Fatalf("ScanOnce: %v", err)
	}
	if !tracker.Queue().Contains(p.ID) {
		t.Fatal("bench player should still be tracked")
	}
	if err := tracker.PollOnce(ctx); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}

	if got := poster.countContaining("is on the bench for Sunderland"); got != 1 {
		t.Fatalf("bench lineup posts = %d, want 1", got)
	}
	if got := poster.countContaining("starting lineup"); got != 0 {
		t.Fatalf("bench player announced as starter: %q", poster.all())
	}

	script.set(func(s *matchScript) { s.started = true })
	if err := tracker.PollOnce(ctx); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if got := poster.countContaining("They're currently on the bench."); got != 1 {
		t.Fatalf("bench clause posts = %d, want 1", got)
	}
}

func TestTrackerRedCardPostedOnce(t *testing.T) {
	ctx := context.Background()
	script := &matchScript{
		matchID: 4193490,
		kickoff: time.Now().Add(-10 * time.Minute),
		started: true,
		lineup:  true,
		starter: true,
		events:  map[string]any{},
	}
	tracker, _, poster := newTestTracker(t, script, nil)

	if err := tracker.ScanOnce(ctx); err != nil {
		t.Fatalf("ScanOnce: %v", err)
	}
	if err := tracker.PollOnce(ctx); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}

	script.set(func(s *matchScript) { s.events = map[string]any{"rc": float64(1)} })
	if err := tracker.PollOnce(ctx); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	// Provider glitch bumps the tally; the one-shot gate holds.
	script.set(func(s *matchScript) { s.events = map[string]any{"rc": float64(2)} })
	if err := tracker.PollOnce(ctx); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}

	if got := poster.countContaining("has received a red card!"); got != 1 {
		t.Fatalf("red card posts = %d, want 1", got)
	}
}

func TestTrackerGoalPostsImage(t *testing.T) {
	ctx := context.Background()
	script := &matchScript{
		matchID: 4193490,
		kickoff: time.Now().Add(-10 * time.Minute),
		started: true,
		lineup:  true,
		starter: true,
		events:  map[string]any{},
	}
	tracker, _, poster := newTestTracker(t, script, stubRenderer{})

	if err := tracker.ScanOnce(ctx); err != nil {
		t.Fatalf("ScanOnce: %v", err)
	}
	if err := tracker.PollOnce(ctx); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}

	script.set(func(s *matchScript) { s.events = map[string]any{"g": float64(1)} })
	if err := tracker.PollOnce(ctx); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}

	if got := poster.countContaining("has scored a goal!"); got != 1 {
		t.Fatalf("goal posts = %d, want 1", got)
	}
	if got := poster.imageCount(); got != 1 {
		t.Fatalf("image posts = %d, want 1", got)
	}
}

func TestTrackerReportRetryExhaustion(t *testing.T) {
	ctx := context.Background()
	script := &matchScript{
		matchID: 4193490,
		kickoff: time.Now().Add(-2 * time.Hour),
		started: true,
		lineup:  true,
		starter: false,
		events:  map[string]any{},
		// No stats block ever appears, so every fetch attempt fails.
	}
	tracker, p, poster := newTestTracker(t, script, nil)

	if err := tracker.ScanOnce(ctx); err != nil {
		t.Fatalf("ScanOnce: %v", err)
	}
	script.set(func(s *matchScript) { s.finished = true })
	if err := tracker.PollOnce(ctx); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}

	waitFor(t, "retry exhaustion to retire the player", func() bool {
		return !tracker.Queue().Contains(p.ID)
	})
	waitFor(t, "degraded finished post", func() bool {
		return poster.countContaining("didn't come off the bench") == 1
	})

	// Later polls see finished=true again; nothing may fire twice.
	if err := tracker.PollOnce(ctx); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if got := poster.countContaining("has finished"); got != 1 {
		t.Fatalf("finished posts = %d, want 1", got)
	}
}

func TestTrackerRetiredPlayerNotReadmitted(t *testing.T) {
	ctx := context.Background()
	script := &matchScript{
		matchID: 4193490,
		kickoff: time.Now().Add(-2 * time.Hour),
		started: true,
		lineup:  true,
		starter: true,
		events:  map[string]any{},
	}
	tracker, p, poster := newTestTracker(t, script, nil)

	if err := tracker.ScanOnce(ctx); err != nil {
		t.Fatalf("ScanOnce: %v", err)
	}
	script.set(func(s *matchScript) {
		s.finished = true
		s.stats = map[string]match.PlayerStats{
			"712375": {Played: true, Values: map[string]match.StatValue{
				"FotMob rating": {Value: 7.5},
			}},
		}
	})
	if err := tracker.PollOnce(ctx); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	waitFor(t, "player retired from queue", func() bool {
		return !tracker.Queue().Contains(p.ID)
	})

	// The provider can keep serving the finished fixture as the team's next
	// match for a while; rescanning must not put the player back.
	for i := 0; i < 3; i++ {
		if err := tracker.ScanOnce(ctx); err != nil {
			t.Fatalf("ScanOnce: %v", err)
		}
		if err := tracker.PollOnce(ctx); err != nil {
			t.Fatalf("PollOnce: %v", err)
		}
	}
	if tracker.Queue().Contains(p.ID) {
		t.Fatal("retired player was re-admitted for a finished match")
	}
	if got := poster.countContaining("has finished"); got != 1 {
		t.Fatalf("finished posts = %d, want 1", got)
	}
}

func TestTrackerScanSkipsDistantKickoff(t *testing.T) {
	ctx := context.Background()
	script := &matchScript{
		matchID: 4193490,
		kickoff: time.Now().Add(48 * time.Hour),
		lineup:  true,
		starter: true,
		events:  map[string]any{},
	}
	tracker, p, _ := newTestTracker(t, script, nil)

	if err := tracker.ScanOnce(ctx); err != nil {
		t.Fatalf("ScanOnce: %v", err)
	}
	if tracker.Queue().Contains(p.ID) {
		t.Fatal("match two days out should not be tracked yet")
	}
}
