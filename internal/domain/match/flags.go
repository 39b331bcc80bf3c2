package match

import (
	"sync"

	"github.com/tomaldridge12/loanbot/internal/domain/event"
)

// OnceFlags records which one-shot event kinds have already been posted for
// a (player, match) pair. A flag moves false to true exactly once and is
// never reset; rebuilding the Match from a fresh snapshot must carry the
// same flag set over (Match.AdoptFlags).
type OnceFlags struct {
	mu     sync.Mutex
	posted map[event.Kind]bool
}

func NewOnceFlags() *OnceFlags {
	return &OnceFlags{posted: make(map[event.Kind]bool)}
}

// MarkOnce sets the flag for kind and reports whether this call was the
// first to do so. Non one-shot kinds always pass.
func (f *OnceFlags) MarkOnce(kind event.Kind) bool {
	if !kind.OneShot() {
		return true
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.posted[kind] {
		return false
	}
	f.posted[kind] = true
	return true
}

// Posted reports whether kind has already been marked.
func (f *OnceFlags) Posted(kind event.Kind) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.posted[kind]
}
