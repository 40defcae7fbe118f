package session

import (
	"github.com/lowaak/interval-trainer/internal/workout"
)

// Snapshot is what a view needs to render the active run. It is a value; the
// slices it holds are never modified after publishing.
type Snapshot struct {
	Card   workout.Card
	Plan   workout.Plan
	Time   workout.RunnerState
	Reps   workout.RepRunnerState
	Totals workout.RepTotals
	Saved  bool
}

func (s Snapshot) HasCard() bool {
	return s.Card.Body != nil
}

func (s Snapshot) Kind() workout.Kind {
	return s.Card.Kind()
}

// Running reports whether the clock is advancing.
func (s Snapshot) Running() bool {
	switch s.Kind() {
	case workout.KindTime:
		return s.Time.Status == workout.RunnerRunning
	case workout.KindReps:
		return repActive(s.Reps)
	}
	return false
}

// Finished reports whether the run can be committed to history.
func (s Snapshot) Finished() bool {
	switch s.Kind() {
	case workout.KindTime:
		return s.Time.Status == workout.RunnerFinished
	case workout.KindReps:
		return s.Reps.Status == workout.RepDone
	}
	return false
}

// Status is a short label for the run state.
func (s Snapshot) Status() string {
	switch s.Kind() {
	case workout.KindTime:
		return s.Time.Status.String()
	case workout.KindReps:
		if s.Reps.Paused {
			return "Paused"
		}
		return s.Reps.Status.String()
	}
	return "No card"
}

// Phase is the current phase of a time card.
func (s Snapshot) Phase() (workout.Phase, bool) {
	if s.Kind() != workout.KindTime {
		return workout.Phase{}, false
	}
	return s.Plan.At(s.Time.PhaseIndex)
}

// NextPhase is the phase after the current one, if the run is not finished.
func (s Snapshot) NextPhase() (workout.Phase, bool) {
	if s.Kind() != workout.KindTime || s.Time.Status == workout.RunnerFinished {
		return workout.Phase{}, false
	}
	return s.Plan.At(s.Time.PhaseIndex + 1)
}

// Exercise names what the user is doing now: the set override or card
// exercise of a time card, the current set of a rep card.
func (s Snapshot) Exercise() string {
	switch body := s.Card.Body.(type) {
	case workout.TimeBody:
		if phase, ok := s.Phase(); ok {
			if ex, ok := workout.ExerciseForPhase(body.Overrides, phase); ok && ex.Name != "" {
				return ex.Name
			}
		}
		return body.Exercise
	case workout.RepBody:
		if s.Reps.SetIndex >= 0 && s.Reps.SetIndex < len(body.Sets) {
			return body.Sets[s.Reps.SetIndex].Exercise
		}
	}
	return ""
}

// ElapsedSec is planned time already covered on a time card.
func (s Snapshot) ElapsedSec() int {
	if s.Kind() != workout.KindTime {
		return 0
	}
	return workout.ElapsedSec(s.Plan, s.Time)
}

func repActive(r workout.RepRunnerState) bool {
	if r.Paused {
		return false
	}
	switch r.Status {
	case workout.RepWarmup, workout.RepInSet, workout.RepRest, workout.RepCooldown:
		return true
	}
	return false
}
