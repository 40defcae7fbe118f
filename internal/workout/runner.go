package workout

// PreWorkCountdownSec is the "4, 3, 2, 1" countdown shown before each Work
// phase. It precedes the phase and is not part of its duration.
const PreWorkCountdownSec = 4

// RunnerStatus is the lifecycle state of a time-based run.
type RunnerStatus int

const (
	RunnerIdle RunnerStatus = iota
	RunnerRunning
	RunnerPaused
	RunnerFinished
)

func (s RunnerStatus) String() string {
	switch s {
	case RunnerIdle:
		return "Idle"
	case RunnerRunning:
		return "Running"
	case RunnerPaused:
		return "Paused"
	case RunnerFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// RunnerState is the complete state of a time-based run. Transitions take and
// return it by value.
type RunnerState struct {
	Status            RunnerStatus
	PhaseIndex        int
	RemainingSec      int
	TotalRemainingSec int
	PreWorkSec        int
}

// NewRunner returns the Idle state for a plan.
func NewRunner(plan Plan) RunnerState {
	s := RunnerState{
		Status:       RunnerIdle,
		PhaseIndex:   0,
		RemainingSec: phaseDuration(plan, 0),
	}
	return withTotal(s, plan)
}

// Start begins a run from Idle or Finished. Other states are returned unchanged.
func Start(s RunnerState, plan Plan) RunnerState {
	if s.Status != RunnerIdle && s.Status != RunnerFinished {
		return s
	}
	if len(plan) == 0 {
		return finished(0)
	}
	next := RunnerState{
		Status:       RunnerRunning,
		PhaseIndex:   0,
		RemainingSec: plan[0].DurationSec,
		PreWorkSec:   countdownFor(plan[0]),
	}
	return withTotal(next, plan)
}

// Pause freezes a running state.
func Pause(s RunnerState, plan Plan) RunnerState {
	if s.Status != RunnerRunning {
		return s
	}
	s.Status = RunnerPaused
	return withTotal(s, plan)
}

// Resume continues a paused state from its frozen counters.
func Resume(s RunnerState, plan Plan) RunnerState {
	if s.Status != RunnerPaused {
		return s
	}
	s.Status = RunnerRunning
	return withTotal(s, plan)
}

// Tick applies one second of running time. At most one phase advance happens
// per call; states other than Running are returned unchanged.
func Tick(s RunnerState, plan Plan) RunnerState {
	if s.Status != RunnerRunning {
		return s
	}
	switch {
	case s.PreWorkSec > 0:
		s.PreWorkSec--
		return withTotal(s, plan)
	case s.RemainingSec > 1:
		s.RemainingSec--
		return withTotal(s, plan)
	default:
		return advance(s, plan)
	}
}

// Advance applies elapsedSec seconds of running time one Tick at a time, so a
// driver that woke up late catches up across phase boundaries.
func Advance(s RunnerState, plan Plan, elapsedSec int) RunnerState {
	for i := 0; i < elapsedSec && s.Status == RunnerRunning; i++ {
		s = Tick(s, plan)
	}
	return s
}

// Skip clears an active pre-work countdown, otherwise ends the current phase
// early. A paused run is resumed by a skip.
func Skip(s RunnerState, plan Plan) RunnerState {
	if s.Status != RunnerRunning && s.Status != RunnerPaused {
		return s
	}
	s.Status = RunnerRunning
	if s.PreWorkSec > 0 {
		s.PreWorkSec = 0
		return withTotal(s, plan)
	}
	return advance(s, plan)
}

// Stop resets to Idle at the first phase from any state. The plan is kept.
func Stop(_ RunnerState, plan Plan) RunnerState {
	return NewRunner(plan)
}

// TotalRemaining is the time left in the run: the current phase, the active
// countdown, every later phase and one countdown per later Work phase.
func TotalRemaining(plan Plan, s RunnerState) int {
	if s.Status == RunnerFinished {
		return 0
	}
	total := s.RemainingSec + s.PreWorkSec
	for j := s.PhaseIndex + 1; j < len(plan); j++ {
		if j < 0 {
			continue
		}
		total += plan[j].DurationSec + countdownFor(plan[j])
	}
	return total
}

// ElapsedSec is the planned time already covered, used for progress displays.
func ElapsedSec(plan Plan, s RunnerState) int {
	switch s.Status {
	case RunnerFinished:
		return plan.TotalSec()
	case RunnerIdle:
		return 0
	}
	done := plan.TotalSec() - plan.RemainingFrom(s.PhaseIndex) + phaseDuration(plan, s.PhaseIndex) - s.RemainingSec
	if done < 0 {
		return 0
	}
	return done
}

func advance(s RunnerState, plan Plan) RunnerState {
	next := s.PhaseIndex + 1
	if next >= len(plan) || next < 0 {
		return finished(s.PhaseIndex)
	}
	s.PhaseIndex = next
	s.RemainingSec = plan[next].DurationSec
	s.PreWorkSec = countdownFor(plan[next])
	return withTotal(s, plan)
}

// finished keeps the last phase index so displays can still name it.
func finished(lastIndex int) RunnerState {
	return RunnerState{Status: RunnerFinished, PhaseIndex: lastIndex}
}

func withTotal(s RunnerState, plan Plan) RunnerState {
	s.TotalRemainingSec = TotalRemaining(plan, s)
	return s
}

func countdownFor(p Phase) int {
	if p.Type == PhaseWork {
		return PreWorkCountdownSec
	}
	return 0
}

func phaseDuration(plan Plan, i int) int {
	if p, ok := plan.At(i); ok {
		return p.DurationSec
	}
	return 0
}
