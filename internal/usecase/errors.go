package usecase

import "errors"

// Failure taxonomy for one poll cycle. None of these is fatal to a worker
// loop; the loop policy is catch, log and continue with the next player.
var (
	// ErrParse marks a provider document whose required sections are absent
	// or malformed. The caller skips this cycle and keeps prior state.
	ErrParse = errors.New("malformed provider document")

	// ErrStatsUnavailable means the provider has not finalized end-of-match
	// statistics. Triggers the bounded report retry.
	ErrStatsUnavailable = errors.New("final stats not yet available")

	// ErrDependencyUnavailable marks a provider outage (circuit open,
	// exhausted retries).
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
