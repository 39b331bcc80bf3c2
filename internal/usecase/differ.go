package usecase

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/tomaldridge12/loanbot/internal/domain/event"
	"github.com/tomaldridge12/loanbot/internal/domain/player"
	"github.com/tomaldridge12/loanbot/internal/platform/logging"
)

// Provider event-kind keys inside a player's events block.
const (
	eventKeyGoal       = "g"
	eventKeyAssist     = "as"
	eventKeyYellowCard = "yc"
	eventKeyRedCard    = "rc"
	eventKeySub        = "sub"

	subKeyIn  = "subbedIn"
	subKeyOut = "subbedOut"
)

// orderedEventKeys fixes emission order inside one poll cycle, matching the
// provider's document order for tallied events.
var orderedEventKeys = []string{eventKeyGoal, eventKeyAssist, eventKeyYellowCard, eventKeyRedCard, eventKeySub}

var tallyKinds = map[string]event.Kind{
	eventKeyGoal:       event.KindGoal,
	eventKeyAssist:     event.KindAssist,
	eventKeyYellowCard: event.KindYellowCard,
	eventKeyRedCard:    event.KindRedCard,
}

// Differ turns successive snapshots of a player's events block into the
// ordered stream of newly observed domain events. It never faults on
// unrecognized keys; availability wins over completeness.
type Differ struct {
	logger *logging.Logger
}

func NewDiffer(logger *logging.Logger) *Differ {
	if logger == nil {
		logger = logging.Default()
	}
	return &Differ{logger: logger}
}

// Diff compares events against the player's last-seen markers and returns
// the new domain events in order. The marker map is replaced wholesale
// afterwards, so a key that disappears later is tolerated without producing
// a removal event. Polling twice with identical data yields nothing the
// second time. Caller holds p.Mu.
func (d *Differ) Diff(p *player.Player, events map[string]any) []event.Event {
	if events == nil {
		return nil
	}

	var out []event.Event
	seen := make(map[string]struct{}, len(events))

	handle := func(key string) {
		seen[key] = struct{}{}
		cur, ok := events[key]
		if !ok {
			return
		}
		prev, had := p.LastSeen[key]

		if key == eventKeySub {
			out = append(out, d.diffSubstitution(p, cur, prev)...)
			return
		}

		kind, known := tallyKinds[key]
		if !known {
			d.logger.Warn("unknown event kind, skipping", "player", p.Name, "key", key, "value", cur)
			return
		}

		switch {
		case !had:
			out = append(out, emitTally(kind, 0, cur)...)
		case !sameValue(prev, cur):
			prevCount, prevNumeric := coerceCount(prev)
			if prevNumeric {
				out = append(out, emitTally(kind, prevCount, cur)...)
			} else {
				out = append(out, event.New(kind))
			}
		}
	}

	for _, key := range orderedEventKeys {
		handle(key)
	}
	for key := range events {
		if _, done := seen[key]; !done {
			handle(key)
		}
	}

	// Replace, not merge: a removed key simply stops being tracked.
	next := make(map[string]any, len(events))
	for key, value := range events {
		next[key] = value
	}
	p.LastSeen = next

	return out
}

// diffSubstitution expands the composite sub record into its leaf events,
// applying the same new-vs-updated comparison to each nested key. An update
// of the composite yields only the changed leaves, never a composite-level
// event.
func (d *Differ) diffSubstitution(p *player.Player, cur, prev any) []event.Event {
	curMap, ok := cur.(map[string]any)
	if !ok {
		d.logger.Warn("unexpected substitution record shape, skipping", "player", p.Name, "value", cur)
		return nil
	}
	prevMap, _ := prev.(map[string]any)

	var out []event.Event
	handled := map[string]event.Kind{
		subKeyIn:  event.KindSubOn,
		subKeyOut: event.KindSubOff,
	}

	for _, leaf := range []string{subKeyIn, subKeyOut} {
		kind := handled[leaf]
		curLeaf, has := curMap[leaf]
		if !has || curLeaf == nil {
			continue
		}
		prevLeaf := prevMap[leaf]
		if sameValue(prevLeaf, curLeaf) {
			continue
		}
		minute, ok := coerceMinute(curLeaf)
		if !ok {
			d.logger.Warn("substitution minute is not numeric, skipping", "player", p.Name, "key", leaf, "value", curLeaf)
			continue
		}
		out = append(out, event.NewSubstitution(kind, minute))
	}

	for leaf, value := range curMap {
		if _, known := handled[leaf]; !known {
			d.logger.Warn("unknown substitution key, skipping", "player", p.Name, "key", leaf, "value", value)
		}
	}

	return out
}

// emitTally reconstructs one event per tally increment. Non-numeric values
// (timestamps) produce a single event.
func emitTally(kind event.Kind, prev int, cur any) []event.Event {
	count, numeric := coerceCount(cur)
	if !numeric {
		return []event.Event{event.New(kind)}
	}
	if count <= prev {
		return nil
	}

	out := make([]event.Event, 0, count-prev)
	for i := prev; i < count; i++ {
		out = append(out, event.New(kind))
	}
	return out
}

func coerceCount(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func coerceMinute(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int64:
		return int(v), true
	case int:
		return v, true
	case string:
		// Stoppage-time values look like "90+2"; the leading run of
		// digits is the minute.
		start := strings.IndexFunc(v, func(r rune) bool { return r >= '0' && r <= '9' })
		if start < 0 {
			return 0, false
		}
		end := start
		for end < len(v) && v[end] >= '0' && v[end] <= '9' {
			end++
		}
		minute, err := strconv.Atoi(v[start:end])
		if err != nil {
			return 0, false
		}
		return minute, true
	default:
		return 0, false
	}
}

func sameValue(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	aCount, aNum := coerceCount(a)
	bCount, bNum := coerceCount(b)
	if aNum && bNum {
		return aCount == bCount
	}
	return reflect.DeepEqual(a, b)
}
