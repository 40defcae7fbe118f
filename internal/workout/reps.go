package workout

import "strings"

// RepStatus is the lifecycle state of a repetition run.
type RepStatus int

const (
	RepReady RepStatus = iota
	RepWarmup
	RepInSet
	RepRest
	RepCooldown
	RepDone
)

func (s RepStatus) String() string {
	switch s {
	case RepReady:
		return "Ready"
	case RepWarmup:
		return "Warmup"
	case RepInSet:
		return "Set"
	case RepRest:
		return "Rest"
	case RepCooldown:
		return "Cooldown"
	case RepDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// RepRunnerState is the state of a user-paced repetition run. During a Set
// ElapsedSec counts up; during Warmup, Rest and Cooldown RemainingSec counts down.
type RepRunnerState struct {
	Status       RepStatus
	SetIndex     int
	ElapsedSec   int
	RemainingSec int
	Paused       bool
}

// StartReps begins a run from Ready or Done, at set 0.
func StartReps(s RepRunnerState, body RepBody) RepRunnerState {
	if s.Status != RepReady && s.Status != RepDone {
		return s
	}
	if body.WarmupSec > 0 {
		return RepRunnerState{Status: RepWarmup, RemainingSec: body.WarmupSec}
	}
	return enterSet(body, 0)
}

// TickReps applies one second. Sets count up and never end on their own;
// countdowns reaching zero advance.
func TickReps(s RepRunnerState, body RepBody) RepRunnerState {
	if s.Paused {
		return s
	}
	switch s.Status {
	case RepInSet:
		s.ElapsedSec++
		return s
	case RepWarmup, RepRest, RepCooldown:
		s.RemainingSec--
		if s.RemainingSec <= 0 {
			return finishCountdown(s, body)
		}
		return s
	default:
		return s
	}
}

// CompleteSet ends the running set by user action.
func CompleteSet(s RepRunnerState, body RepBody) RepRunnerState {
	if s.Status != RepInSet {
		return s
	}
	s.Paused = false
	if s.SetIndex >= len(body.Sets)-1 {
		return enterCooldown(body)
	}
	if body.RestBetweenSetsSec <= 0 {
		return enterSet(body, s.SetIndex+1)
	}
	return RepRunnerState{Status: RepRest, SetIndex: s.SetIndex, RemainingSec: body.RestBetweenSetsSec}
}

// SkipReps ends a Warmup, Rest or Cooldown countdown immediately.
func SkipReps(s RepRunnerState, body RepBody) RepRunnerState {
	switch s.Status {
	case RepWarmup, RepRest, RepCooldown:
		s.RemainingSec = 0
		s.Paused = false
		return finishCountdown(s, body)
	default:
		return s
	}
}

// PauseReps freezes the clock of an active run.
func PauseReps(s RepRunnerState) RepRunnerState {
	if s.Status == RepReady || s.Status == RepDone {
		return s
	}
	s.Paused = true
	return s
}

// ResumeReps lets a paused run continue.
func ResumeReps(s RepRunnerState) RepRunnerState {
	s.Paused = false
	return s
}

// ResetReps returns to Ready.
func ResetReps() RepRunnerState {
	return RepRunnerState{Status: RepReady}
}

func finishCountdown(s RepRunnerState, body RepBody) RepRunnerState {
	switch s.Status {
	case RepWarmup:
		return enterSet(body, 0)
	case RepRest:
		return enterSet(body, s.SetIndex+1)
	case RepCooldown:
		return RepRunnerState{Status: RepDone, SetIndex: s.SetIndex}
	default:
		return s
	}
}

func enterSet(body RepBody, idx int) RepRunnerState {
	if idx >= len(body.Sets) {
		return enterCooldown(body)
	}
	return RepRunnerState{Status: RepInSet, SetIndex: idx}
}

func enterCooldown(body RepBody) RepRunnerState {
	last := len(body.Sets) - 1
	if last < 0 {
		last = 0
	}
	if body.CooldownSec > 0 {
		return RepRunnerState{Status: RepCooldown, SetIndex: last, RemainingSec: body.CooldownSec}
	}
	return RepRunnerState{Status: RepDone, SetIndex: last}
}

// UnnamedExercise groups sets whose exercise name is blank.
const UnnamedExercise = "(unnamed)"

// ExerciseTotal is the per-exercise part of RepTotals.
type ExerciseTotal struct {
	Exercise string  `json:"exercise" yaml:"exercise"`
	Sets     int     `json:"sets" yaml:"sets"`
	Reps     int     `json:"reps" yaml:"reps"`
	Kg       float64 `json:"kg" yaml:"kg"`
}

// RepTotals summarizes a repetition card. Load excludes body weight.
type RepTotals struct {
	TotalReps int
	TotalKg   float64
	Breakdown []ExerciseTotal
}

// ComputeRepTotals recomputes totals from the sets every time; nothing is kept
// as a running counter. Breakdown is grouped by exercise name (case-sensitive)
// in order of first appearance.
func ComputeRepTotals(sets []RepSet) RepTotals {
	var totals RepTotals
	index := make(map[string]int)
	for _, set := range sets {
		reps := nonNegative(set.Reps)
		weight := set.WeightKg
		if weight < 0 {
			weight = 0
		}
		kg := float64(reps) * weight

		totals.TotalReps += reps
		totals.TotalKg += kg

		name := strings.TrimSpace(set.Exercise)
		if name == "" {
			name = UnnamedExercise
		}
		i, ok := index[name]
		if !ok {
			i = len(totals.Breakdown)
			index[name] = i
			totals.Breakdown = append(totals.Breakdown, ExerciseTotal{Exercise: name})
		}
		totals.Breakdown[i].Sets++
		totals.Breakdown[i].Reps += reps
		totals.Breakdown[i].Kg += kg
	}
	return totals
}
