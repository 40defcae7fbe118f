package workout

import (
	"time"
)

// Kind discriminates the two card variants.
type Kind string

const (
	KindTime Kind = "time"
	KindReps Kind = "reps"
)

const (
	MinSets = 1
	MaxSets = 99
	MinReps = 1
	MaxReps = 99
)

// TimingConfig is the timing configuration of a time-based card.
// All durations are whole seconds.
type TimingConfig struct {
	WarmupSec          int `json:"warmup_sec" yaml:"warmup_sec"`
	WorkSec            int `json:"work_sec" yaml:"work_sec"`
	RestBetweenRepsSec int `json:"rest_between_reps_sec" yaml:"rest_between_reps_sec"`
	RepsPerSet         int `json:"reps_per_set" yaml:"reps_per_set"`
	RestBetweenSetsSec int `json:"rest_between_sets_sec" yaml:"rest_between_sets_sec"`
	Sets               int `json:"sets" yaml:"sets"`
	CooldownSec        int `json:"cooldown_sec" yaml:"cooldown_sec"`
}

// Clamped returns a copy with negative durations zeroed and the set and rep
// counts clamped to their allowed range.
func (t TimingConfig) Clamped() TimingConfig {
	return TimingConfig{
		WarmupSec:          nonNegative(t.WarmupSec),
		WorkSec:            nonNegative(t.WorkSec),
		RestBetweenRepsSec: nonNegative(t.RestBetweenRepsSec),
		RepsPerSet:         clamp(t.RepsPerSet, MinReps, MaxReps),
		RestBetweenSetsSec: nonNegative(t.RestBetweenSetsSec),
		Sets:               clamp(t.Sets, MinSets, MaxSets),
		CooldownSec:        nonNegative(t.CooldownSec),
	}
}

// Exercise is a per-set override shown while a set is running.
type Exercise struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Image string `json:"image,omitempty" yaml:"image,omitempty" toml:"image,omitempty"`
}

// RepSet is one set of a repetition card.
type RepSet struct {
	Exercise string  `json:"exercise" yaml:"exercise" toml:"exercise"`
	Reps     int     `json:"reps" yaml:"reps" toml:"reps"`
	WeightKg float64 `json:"weight_kg" yaml:"weight_kg" toml:"weight_kg"`
}

// Body is the kind-specific part of a Card. It is implemented only by
// TimeBody and RepBody.
type Body interface {
	Kind() Kind
	isBody()
}

// TimeBody is the payload of an interval card.
type TimeBody struct {
	Timing    TimingConfig
	Exercise  string
	Overrides []Exercise
}

func (TimeBody) Kind() Kind { return KindTime }
func (TimeBody) isBody()    {}

// RepBody is the payload of a repetition card. TargetSetSec is informational.
type RepBody struct {
	Sets               []RepSet
	RestBetweenSetsSec int
	WarmupSec          int
	CooldownSec        int
	TargetSetSec       int
}

func (RepBody) Kind() Kind { return KindReps }
func (RepBody) isBody()    {}

// Card is a user-authored workout definition. Version is bumped on every edit
// and, together with ID, identifies a derived plan.
type Card struct {
	ID        string
	Title     string
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
	Body      Body
}

// Kind returns the card's variant, or "" when the body is missing.
func (c Card) Kind() Kind {
	if c.Body == nil {
		return ""
	}
	return c.Body.Kind()
}

// NormalizeOverrides pads or truncates overrides so there is exactly one per set.
func NormalizeOverrides(overrides []Exercise, sets int) []Exercise {
	sets = clamp(sets, MinSets, MaxSets)
	out := make([]Exercise, sets)
	copy(out, overrides)
	return out
}

// ExerciseForPhase resolves the override for a phase's set. Phases outside a
// set, or sets without a named override, resolve to false.
func ExerciseForPhase(overrides []Exercise, phase Phase) (Exercise, bool) {
	if phase.Set < 1 || phase.Set > len(overrides) {
		return Exercise{}, false
	}
	ex := overrides[phase.Set-1]
	if ex.Name == "" && ex.Image == "" {
		return Exercise{}, false
	}
	return ex, true
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
