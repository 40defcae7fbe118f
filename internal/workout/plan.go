package workout

import "sync"

// PhaseType is the kind of timed segment in a plan.
type PhaseType int

const (
	PhaseWarmup PhaseType = iota
	PhaseWork
	PhaseRest
	PhaseCooldown
)

func (t PhaseType) String() string {
	switch t {
	case PhaseWarmup:
		return "Warmup"
	case PhaseWork:
		return "Work"
	case PhaseRest:
		return "Rest"
	case PhaseCooldown:
		return "Cooldown"
	default:
		return "Unknown"
	}
}

// RestKind tells a rest between reps apart from a rest between sets.
type RestKind int

const (
	RestNone RestKind = iota
	RestRep
	RestSet
)

// FallbackWorkSec is the length of the single Work phase planned when every
// configured duration is zero, so a runner never sees an empty plan.
const FallbackWorkSec = 20

// Phase is one timed segment of a Plan. Set and Rep are 1-based, 0 when not
// applicable.
type Phase struct {
	Type        PhaseType
	Label       string
	RestKind    RestKind
	DurationSec int
	Set         int
	Rep         int
}

// Plan is the ordered phase sequence derived from a TimingConfig. Treat it as
// read-only; a changed card gets a new plan.
type Plan []Phase

// BuildPlan expands a timing configuration into phases. Zero-length phases are
// never emitted; rep rests never follow the last rep of a set and set rests
// never follow the last set.
func BuildPlan(timing TimingConfig) Plan {
	t := timing.Clamped()
	plan := make(Plan, 0, planCapacity(t))

	if t.WarmupSec > 0 {
		plan = append(plan, Phase{Type: PhaseWarmup, Label: "Warm-up", DurationSec: t.WarmupSec})
	}

	for s := 1; s <= t.Sets; s++ {
		for r := 1; r <= t.RepsPerSet; r++ {
			if t.WorkSec > 0 {
				plan = append(plan, Phase{Type: PhaseWork, Label: "Work", DurationSec: t.WorkSec, Set: s, Rep: r})
			}
			if r < t.RepsPerSet && t.RestBetweenRepsSec > 0 {
				plan = append(plan, Phase{Type: PhaseRest, Label: "Rest", RestKind: RestRep, DurationSec: t.RestBetweenRepsSec, Set: s, Rep: r})
			}
		}
		if s < t.Sets && t.RestBetweenSetsSec > 0 {
			plan = append(plan, Phase{Type: PhaseRest, Label: "Set rest", RestKind: RestSet, DurationSec: t.RestBetweenSetsSec, Set: s, Rep: t.RepsPerSet})
		}
	}

	if t.CooldownSec > 0 {
		plan = append(plan, Phase{Type: PhaseCooldown, Label: "Cool-down", DurationSec: t.CooldownSec})
	}

	if len(plan) == 0 {
		plan = append(plan, Phase{Type: PhaseWork, Label: "Work", DurationSec: FallbackWorkSec, Set: 1, Rep: 1})
	}
	return plan
}

func planCapacity(t TimingConfig) int {
	return 2 + t.Sets*(2*t.RepsPerSet)
}

// PlanForCard derives the plan of a time card. Rep cards are user-paced and
// have no timed plan.
func PlanForCard(card Card) Plan {
	switch body := card.Body.(type) {
	case TimeBody:
		return BuildPlan(body.Timing)
	case RepBody:
		return nil
	default:
		return nil
	}
}

// At returns the phase at index i.
func (p Plan) At(i int) (Phase, bool) {
	if i < 0 || i >= len(p) {
		return Phase{}, false
	}
	return p[i], true
}

// TotalSec is the planned session length, excluding pre-work countdowns.
func (p Plan) TotalSec() int {
	return p.RemainingFrom(0)
}

// RemainingFrom sums the durations of phases i..end.
func (p Plan) RemainingFrom(i int) int {
	if i < 0 {
		i = 0
	}
	total := 0
	for j := i; j < len(p); j++ {
		total += p[j].DurationSec
	}
	return total
}

// WorkCountAfter counts Work phases strictly after index i.
func (p Plan) WorkCountAfter(i int) int {
	n := 0
	for j := i + 1; j < len(p); j++ {
		if j >= 0 && p[j].Type == PhaseWork {
			n++
		}
	}
	return n
}

// WorkCount counts all Work phases.
func (p Plan) WorkCount() int {
	return p.WorkCountAfter(-1)
}

type planKey struct {
	id      string
	version int
}

// PlanCache memoizes plans by card identity and version. Safe for concurrent use.
type PlanCache struct {
	mu    sync.Mutex
	plans map[planKey]Plan
}

func NewPlanCache() *PlanCache {
	return &PlanCache{plans: make(map[planKey]Plan)}
}

// Get returns the plan for card, deriving it on first use of this version.
func (c *PlanCache) Get(card Card) Plan {
	key := planKey{id: card.ID, version: card.Version}
	c.mu.Lock()
	defer c.mu.Unlock()
	if plan, ok := c.plans[key]; ok {
		return plan
	}
	plan := PlanForCard(card)
	for k := range c.plans {
		if k.id == card.ID {
			delete(c.plans, k)
		}
	}
	c.plans[key] = plan
	return plan
}

// Forget drops any cached plan for the card id.
func (c *PlanCache) Forget(cardID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.plans {
		if k.id == cardID {
			delete(c.plans, k)
		}
	}
}
