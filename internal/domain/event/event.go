package event

import "fmt"

// Kind identifies a domain event observed for a tracked player.
type Kind int

const (
	KindGoal Kind = iota + 1
	KindAssist
	KindYellowCard
	KindRedCard
	KindSubOn
	KindSubOff
	KindStarted
	KindFinished
	KindStartingLineup
	KindBenchLineup
)

var kindNames = map[Kind]string{
	KindGoal:           "GOAL",
	KindAssist:         "ASSIST",
	KindYellowCard:     "YELLOW_CARD",
	KindRedCard:        "RED_CARD",
	KindSubOn:          "SUB_ON",
	KindSubOff:         "SUB_OFF",
	KindStarted:        "STARTED",
	KindFinished:       "FINISHED",
	KindStartingLineup: "STARTING_LINEUP",
	KindBenchLineup:    "BENCH_LINEUP",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND(%d)", int(k))
}

// OneShot reports whether the kind may fire at most once per (player, match).
// Tallied kinds (goals, assists, yellow cards) can legitimately repeat.
func (k Kind) OneShot() bool {
	switch k {
	case KindRedCard, KindSubOn, KindSubOff, KindStarted, KindFinished, KindStartingLineup, KindBenchLineup:
		return true
	default:
		return false
	}
}

// Event is a tagged variant. Minute is set only for SUB_ON/SUB_OFF and
// Report only for FINISHED; payload-free kinds carry neither.
type Event struct {
	Kind   Kind
	Minute int
	Report string
}

func New(kind Kind) Event {
	return Event{Kind: kind}
}

func NewSubstitution(kind Kind, minute int) Event {
	return Event{Kind: kind, Minute: minute}
}

func NewFinished(report string) Event {
	return Event{Kind: KindFinished, Report: report}
}

func (e Event) String() string {
	switch e.Kind {
	case KindSubOn, KindSubOff:
		return fmt.Sprintf("%s(%d)", e.Kind, e.Minute)
	default:
		return e.Kind.String()
	}
}
