package session

import "github.com/lowaak/interval-trainer/internal/workout"

const repFinalSeconds = 3

// observeReps is the rep-card counterpart of workout.CueTracker: a phase-start
// cue when the run enters a new stage or set, final-second cues in the rest
// countdowns and one finished cue.
func (m *Manager) observeReps() []workout.Cue {
	prev, next := m.lastRep, m.reps
	m.lastRep = next
	if next.Paused {
		return nil
	}

	var cues []workout.Cue
	changed := next.Status != prev.Status ||
		(next.Status == workout.RepInSet && next.SetIndex != prev.SetIndex)
	if changed {
		switch next.Status {
		case workout.RepReady:
		case workout.RepDone:
			cues = append(cues, workout.Cue{Kind: workout.CueFinished, PhaseIndex: next.SetIndex})
		default:
			cues = append(cues, workout.Cue{Kind: workout.CuePhaseStart, PhaseIndex: next.SetIndex})
		}
	}

	switch next.Status {
	case workout.RepWarmup, workout.RepRest, workout.RepCooldown:
		if m.cues.FinalSeconds && next.RemainingSec > 0 && next.RemainingSec <= repFinalSeconds &&
			(changed || next.RemainingSec != prev.RemainingSec) {
			cues = append(cues, workout.Cue{Kind: workout.CueFinalSeconds, PhaseIndex: next.SetIndex, Value: next.RemainingSec})
		}
	}
	return cues
}
