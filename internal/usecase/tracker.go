package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/tomaldridge12/loanbot/internal/domain/event"
	"github.com/tomaldridge12/loanbot/internal/domain/match"
	"github.com/tomaldridge12/loanbot/internal/domain/player"
	"github.com/tomaldridge12/loanbot/internal/platform/logging"
	"github.com/tomaldridge12/loanbot/internal/platform/resilience"
)

type TrackerConfig struct {
	// TrackingLead is how far before kickoff a player joins the queue.
	TrackingLead time.Duration
	// ReportMaxRetries bounds the end-of-match stats fetch attempts.
	ReportMaxRetries int
	// ReportRetryInterval is the fixed pause between attempts.
	ReportRetryInterval time.Duration
	// ReportWorkers sizes the background fetch pool.
	ReportWorkers int
}

func (c TrackerConfig) withDefaults() TrackerConfig {
	if c.TrackingLead <= 0 {
		c.TrackingLead = match.DefaultTrackingLead
	}
	if c.ReportMaxRetries <= 0 {
		c.ReportMaxRetries = 15
	}
	if c.ReportRetryInterval <= 0 {
		c.ReportRetryInterval = 20 * time.Second
	}
	if c.ReportWorkers <= 0 {
		c.ReportWorkers = 4
	}
	return c
}

// Tracker owns the per-player match lifecycle: which players are being
// polled, which one-shot notifications fired, and the diff+compose+post
// pass for every poll cycle. One Tracker serves the whole roster.
type Tracker struct {
	roster   []*player.Player
	queue    *TrackingQueue
	provider MatchProvider
	poster   Poster
	renderer Renderer
	composer *Composer
	differ   *Differ
	resolver *Resolver
	pool     *ants.Pool
	guard    *resilience.TaskGuard
	logger   *logging.Logger
	cfg      TrackerConfig
	now      func() time.Time

	// bgCtx is the stop signal for detached report fetches; Close cancels
	// it so background retries end with the process.
	bgCtx    context.Context
	bgCancel context.CancelFunc
}

func NewTracker(
	roster []*player.Player,
	provider MatchProvider,
	poster Poster,
	renderer Renderer,
	composer *Composer,
	cfg TrackerConfig,
	logger *logging.Logger,
) (*Tracker, error) {
	if provider == nil {
		return nil, fmt.Errorf("match provider is required")
	}
	if poster == nil {
		return nil, fmt.Errorf("poster is required")
	}
	if composer == nil {
		composer = NewComposer("")
	}
	if logger == nil {
		logger = logging.Default()
	}
	cfg = cfg.withDefaults()

	pool, err := ants.NewPool(cfg.ReportWorkers)
	if err != nil {
		return nil, fmt.Errorf("create report worker pool: %w", err)
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())

	return &Tracker{
		roster:   roster,
		queue:    NewTrackingQueue(),
		provider: provider,
		poster:   poster,
		renderer: renderer,
		composer: composer,
		differ:   NewDiffer(logger),
		resolver: NewResolver(logger),
		pool:     pool,
		guard:    resilience.NewTaskGuard(),
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		bgCtx:    bgCtx,
		bgCancel: bgCancel,
	}, nil
}

func (t *Tracker) Close() {
	t.bgCancel()
	t.pool.Release()
}

func (t *Tracker) Queue() *TrackingQueue {
	return t.queue
}

// ScanOnce is the low-frequency roster pass: for every player not already
// tracked, look up their next fixture and admit them to the tracking queue
// once the match is imminent and they are confirmed in a squad list. A
// failure for one player never stops the rest.
func (t *Tracker) ScanOnce(ctx context.Context) error {
	for _, p := range t.roster {
		if err := ctx.Err(); err != nil {
			return err
		}
		if t.queue.Contains(p.ID) {
			continue
		}
		if err := t.scanPlayer(ctx, p); err != nil {
			t.logger.Warn("roster scan failed for player", "player", p.Name, "error", err)
		}
	}
	return nil
}

func (t *Tracker) scanPlayer(ctx context.Context, p *player.Player) error {
	matchID, err := t.provider.NextMatchID(ctx, p.TeamID)
	if err != nil {
		return err
	}

	m, err := t.provider.MatchByID(ctx, matchID)
	if err != nil {
		return err
	}

	p.Mu.Lock()
	defer p.Mu.Unlock()

	if p.Match == nil || p.Match.ID != m.ID {
		p.ResetForMatch(m)
	} else {
		m.AdoptFlags(p.Match)
		p.Match = m
	}

	resolution := t.resolver.Resolve(p, m)
	t.logger.Debug("roster scan resolved player",
		"player", p.Name, "match", m.String(), "resolution", resolution.String())

	if !m.IsSoon(t.now(), t.cfg.TrackingLead) {
		return nil
	}
	if resolution != ResolutionStarter && resolution != ResolutionBench {
		return nil
	}
	// A finished fixture can linger as the team's "next match" until the
	// provider rolls over. Re-admitting would strand the player: the report
	// fetch already ran, so nothing would ever remove them again.
	if m.Finished || m.Flags().Posted(event.KindFinished) {
		return nil
	}

	if t.queue.Add(p) {
		t.logger.Info("adding player to tracking queue", "player", p.Name, "match_id", m.ID)
	}
	return nil
}

// PollOnce is the high-frequency pass over the tracking queue. Each
// player's refresh+diff+drain runs to completion under the player lock, so
// per-player notification order is serialized.
func (t *Tracker) PollOnce(ctx context.Context) error {
	for _, p := range t.queue.Snapshot() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.pollPlayer(ctx, p); err != nil {
			t.logger.Warn("poll failed for player", "player", p.Name, "error", err)
		}
	}
	return nil
}

func (t *Tracker) pollPlayer(ctx context.Context, p *player.Player) error {
	p.Mu.Lock()
	defer p.Mu.Unlock()

	prev := p.Match
	if prev == nil {
		return fmt.Errorf("player %s tracked without a match", p.Name)
	}

	m, err := t.provider.MatchByID(ctx, prev.ID)
	if err != nil {
		// Skip this cycle, keep prior state.
		return err
	}
	m.AdoptFlags(prev)
	p.Match = m

	resolution := t.resolver.Resolve(p, m)

	// Tallied events first, in document order.
	if p.Info != nil {
		for _, ev := range t.differ.Diff(p, p.Info.Events) {
			p.Queue.Push(ev)
		}
	}

	t.applyLifecycle(p, m, resolution)
	t.drain(ctx, p)
	return nil
}

// applyLifecycle advances the per-player state machine from the snapshot's
// flags and enqueues the one-shot transition events. Caller holds p.Mu.
func (t *Tracker) applyLifecycle(p *player.Player, m *match.Match, resolution Resolution) {
	flags := m.Flags()

	if resolution == ResolutionStarter || resolution == ResolutionBench {
		if p.Phase == match.PhasePreLineup && p.Phase.CanAdvance(match.PhaseLineupKnown) {
			p.Phase = match.PhaseLineupKnown
		}
		kind := event.KindBenchLineup
		if p.Starting {
			kind = event.KindStartingLineup
		}
		if flags.MarkOnce(kind) {
			t.logger.Info("lineup announced", "player", p.Name, "kind", kind.String())
			p.Queue.Push(event.New(kind))
		}
	}

	if m.Started && !m.Finished {
		if flags.MarkOnce(event.KindStarted) {
			t.logger.Info("match started", "player", p.Name, "match_id", m.ID)
			p.Queue.Push(event.New(event.KindStarted))
		}
		if p.Phase.CanAdvance(match.PhaseInProgress) {
			p.Phase = match.PhaseInProgress
		}
	}

	if m.Finished {
		if p.Phase.CanAdvance(match.PhaseFinished) {
			p.Phase = match.PhaseFinished
		}
		if !flags.Posted(event.KindFinished) {
			t.spawnReportFetch(p, m.ID)
		}
	}
}

// spawnReportFetch starts the detached bounded-retry stats fetch. At most
// one task per player may be in flight; repeat polls that still observe
// finished=true are suppressed by the guard. Caller holds p.Mu.
func (t *Tracker) spawnReportFetch(p *player.Player, matchID int64) {
	key := strconv.FormatInt(p.ID, 10)
	if !t.guard.TryAcquire(key) {
		return
	}

	t.logger.Info("match finished, fetching final report", "player", p.Name, "match_id", matchID)
	if err := t.pool.Submit(func() {
		defer t.guard.Release(key)
		t.fetchReport(t.bgCtx, p, matchID)
	}); err != nil {
		t.guard.Release(key)
		t.logger.Error("submit report fetch", "player", p.Name, "error", err)
	}
}

// fetchReport retries until the provider finalizes the stats block, then
// posts the FINISHED notification and retires the player from the tracking
// queue. On exhaustion the player is still retired, with a degraded
// message, so queue membership never leaks.
func (t *Tracker) fetchReport(ctx context.Context, p *player.Player, matchID int64) {
	for attempt := 1; attempt <= t.cfg.ReportMaxRetries; attempt++ {
		if ctx.Err() != nil {
			return
		}

		report, err := t.buildReport(ctx, p, matchID)
		if err == nil {
			t.finishPlayer(ctx, p, report)
			return
		}

		t.logger.Info("final stats not available yet, retrying",
			"player", p.Name, "attempt", attempt, "max", t.cfg.ReportMaxRetries, "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(t.cfg.ReportRetryInterval):
		}
	}

	t.logger.Warn("failed to get final stats, posting degraded report",
		"player", p.Name, "retries", t.cfg.ReportMaxRetries)
	t.finishPlayer(ctx, p, "")
}

func (t *Tracker) buildReport(ctx context.Context, p *player.Player, matchID int64) (string, error) {
	m, err := t.provider.MatchByID(ctx, matchID)
	if err != nil {
		return "", err
	}

	st, ok := m.StatsFor(p.ID)
	if !ok {
		return "", fmt.Errorf("%w: no stats block for player %d", ErrStatsUnavailable, p.ID)
	}
	if !st.Played {
		// Confirmed no-show: degrade immediately instead of retrying.
		return "", nil
	}

	p.Mu.Lock()
	goalkeeper := p.Info != nil && p.Info.Goalkeeper()
	p.Mu.Unlock()

	return t.composer.MatchReport(st, goalkeeper), nil
}

func (t *Tracker) finishPlayer(ctx context.Context, p *player.Player, report string) {
	p.Mu.Lock()
	defer p.Mu.Unlock()

	if p.Match != nil && p.Match.Flags().MarkOnce(event.KindFinished) {
		p.Queue.Push(event.NewFinished(report))
	}
	if t.queue.Remove(p.ID) {
		t.logger.Info("removing player from tracking queue", "player", p.Name)
	}
	t.drain(ctx, p)
}

// drain empties the player's event queue in order, composing and posting
// each message. Differ-driven one-shots (red card, substitutions) are gated
// here; a posting failure is logged and never blocks later events. Caller
// holds p.Mu.
func (t *Tracker) drain(ctx context.Context, p *player.Player) {
	for {
		ev, ok := p.Queue.Pop()
		if !ok {
			return
		}

		switch ev.Kind {
		case event.KindRedCard, event.KindSubOn, event.KindSubOff:
			if p.Match != nil && !p.Match.Flags().MarkOnce(ev.Kind) {
				t.logger.Debug("suppressing repeated one-shot event", "player", p.Name, "event", ev.String())
				continue
			}
		}

		t.logger.Info("posting event", "player", p.Name, "event", ev.String())
		text := t.composer.Message(ev, p, p.Match)
		t.post(ctx, p, ev, text)
	}
}

func (t *Tracker) post(ctx context.Context, p *player.Player, ev event.Event, text string) {
	if t.renderer != nil && p.Match != nil && (ev.Kind == event.KindGoal || ev.Kind == event.KindAssist) {
		scores, _ := p.Match.Score()
		image, err := t.renderer.Render(p.Name, ev.Kind.String(), scores)
		if err == nil {
			if postErr := t.poster.PostImage(ctx, text, image); postErr == nil {
				return
			} else {
				t.logger.Error("post with image failed, falling back to text", "player", p.Name, "error", postErr)
			}
		} else {
			t.logger.Warn("image render failed, posting text only", "player", p.Name, "error", err)
		}
	}

	if err := t.poster.Post(ctx, text); err != nil {
		t.logger.Error("post failed", "player", p.Name, "event", ev.String(), "error", err)
	}
}
