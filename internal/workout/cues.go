package workout

// CueKind identifies an audible/haptic cue raised by a runner transition.
type CueKind int

const (
	CuePhaseStart CueKind = iota
	CueCountdown
	CueGo
	CueFinalSeconds
	CueFinished
)

func (k CueKind) String() string {
	switch k {
	case CuePhaseStart:
		return "phase-start"
	case CueCountdown:
		return "countdown"
	case CueGo:
		return "go"
	case CueFinalSeconds:
		return "final-seconds"
	case CueFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Cue is one side effect to play. Value carries the countdown or remaining
// second it belongs to, where relevant.
type Cue struct {
	Kind       CueKind
	PhaseIndex int
	Value      int
}

// finalSecondsWindow is how many trailing seconds of a phase get a short cue.
const finalSecondsWindow = 3

// CueTracker turns a stream of runner states into cues, firing each cue once
// no matter how often the same state is observed.
type CueTracker struct {
	// FinalSeconds enables the short cue for the last seconds of each phase.
	FinalSeconds bool

	lastPhase    int
	lastPreWork  int
	lastFinal    int
	finishedCued bool
}

func NewCueTracker(finalSeconds bool) *CueTracker {
	return &CueTracker{FinalSeconds: finalSeconds, lastPhase: -1}
}

// Reset forgets every guard, as for a fresh run.
func (t *CueTracker) Reset() {
	t.lastPhase = -1
	t.lastPreWork = 0
	t.lastFinal = 0
	t.finishedCued = false
}

// Observe returns the cues due for state s.
func (t *CueTracker) Observe(s RunnerState) []Cue {
	switch s.Status {
	case RunnerIdle:
		t.Reset()
		return nil
	case RunnerPaused:
		return nil
	case RunnerFinished:
		if t.finishedCued {
			return nil
		}
		t.Reset()
		t.finishedCued = true
		return []Cue{{Kind: CueFinished, PhaseIndex: s.PhaseIndex}}
	}

	t.finishedCued = false
	var cues []Cue

	if s.PhaseIndex != t.lastPhase {
		t.lastPhase = s.PhaseIndex
		t.lastFinal = 0
		cues = append(cues, Cue{Kind: CuePhaseStart, PhaseIndex: s.PhaseIndex})
	}

	if s.PreWorkSec > 0 {
		if s.PreWorkSec != t.lastPreWork {
			cues = append(cues, Cue{Kind: CueCountdown, PhaseIndex: s.PhaseIndex, Value: s.PreWorkSec})
		}
	} else if t.lastPreWork == 1 {
		cues = append(cues, Cue{Kind: CueGo, PhaseIndex: s.PhaseIndex})
	}
	t.lastPreWork = s.PreWorkSec

	if t.FinalSeconds && s.PreWorkSec == 0 && s.RemainingSec > 0 &&
		s.RemainingSec <= finalSecondsWindow && s.RemainingSec != t.lastFinal {
		t.lastFinal = s.RemainingSec
		cues = append(cues, Cue{Kind: CueFinalSeconds, PhaseIndex: s.PhaseIndex, Value: s.RemainingSec})
	}

	return cues
}
