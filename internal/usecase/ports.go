package usecase

import (
	"context"

	"github.com/tomaldridge12/loanbot/internal/domain/match"
)

// MatchProvider is the third-party match-data source. Snapshots are
// at-least-eventually consistent; optional sections may be absent early.
type MatchProvider interface {
	// NextMatchID returns the id of the team's next fixture.
	NextMatchID(ctx context.Context, teamID int64) (int64, error)
	// MatchByID fetches and parses the latest snapshot of a match.
	MatchByID(ctx context.Context, matchID int64) (*match.Match, error)
}

// Poster is the social-media sink. Both calls may fail; callers swallow and
// log, a failed post never blocks the rest of the queue.
type Poster interface {
	Post(ctx context.Context, text string) error
	PostImage(ctx context.Context, text string, image []byte) error
}

// Renderer composes the celebration image for goal and assist posts. A nil
// renderer, or a render failure, degrades the post to text only.
type Renderer interface {
	Render(playerName, kind string, score map[string]int) ([]byte, error)
}
