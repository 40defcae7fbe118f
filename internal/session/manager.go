package session

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lowaak/interval-trainer/internal/cue"
	"github.com/lowaak/interval-trainer/internal/events"
	"github.com/lowaak/interval-trainer/internal/go_func_utils"
	"github.com/lowaak/interval-trainer/internal/workout"
)

var (
	ErrNoCard       = errors.New("no card loaded")
	ErrNotFinished  = errors.New("run is not finished")
	ErrAlreadySaved = errors.New("run is already saved")
	ErrClosed       = errors.New("session is shut down")
)

const tickInterval = time.Second

// command is a mutation executed on the manager goroutine. done receives the
// snapshot published after it.
type command struct {
	fn   func()
	done chan Snapshot
}

// Manager drives the active card through wall-clock time. Every mutation runs
// on one goroutine; the loop-owned fields are only touched there.
type Manager struct {
	logger logrus.FieldLogger
	clock  Clock
	player cue.Player
	plans  *workout.PlanCache
	feed   *events.Feed[Snapshot]

	// loop-owned
	builder workout.LogBuilder
	card    workout.Card
	plan    workout.Plan
	runner  workout.RunnerState
	reps    workout.RepRunnerState
	lastRep workout.RepRunnerState
	cues    *workout.CueTracker
	guard   workout.CommitGuard
	ticker  Ticker
	ticking bool
	anchor  time.Time
	applied int
	pending []workout.Cue

	cmdChan      chan command
	doneChan     chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewManager starts the manager goroutine. finalSeconds enables the short cue
// in the last seconds of each phase.
func NewManager(clock Clock, player cue.Player, finalSeconds bool, logger logrus.FieldLogger) *Manager {
	if clock == nil {
		panic("Session: clock cannot be nil")
	}
	if player == nil {
		panic("Session: player cannot be nil")
	}
	if logger == nil {
		panic("Session: logger cannot be nil")
	}

	m := &Manager{
		logger:   logger,
		clock:    clock,
		player:   player,
		plans:    workout.NewPlanCache(),
		feed:     events.NewFeed[Snapshot](true),
		builder:  workout.DefaultLogBuilder(),
		cues:     workout.NewCueTracker(finalSeconds),
		reps:     workout.ResetReps(),
		cmdChan:  make(chan command),
		doneChan: make(chan struct{}),
	}
	m.ticker = clock.NewTicker(tickInterval)
	m.ticker.Stop()
	m.feed.Publish(m.snapshot())

	m.wg.Add(1)
	go_func_utils.SafeGo(logger, func() { m.runLoop() })
	return m
}

// ListenToSnapshots registers ch for every published snapshot; the latest one
// is sent immediately.
func (m *Manager) ListenToSnapshots(ch chan<- Snapshot) func() {
	return m.feed.Subscribe(ch)
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() Snapshot {
	return m.do(func() {})
}

// SetCard loads card. A card with a different id or version resets the run as
// Stop does; the same card is left alone. A card without a body unloads.
func (m *Manager) SetCard(card workout.Card) Snapshot {
	return m.do(func() {
		if card.ID == m.card.ID && card.Version == m.card.Version && card.Kind() == m.card.Kind() {
			m.card = card
			return
		}
		m.card = card
		m.plan = nil
		if card.Kind() == workout.KindTime {
			m.plan = m.plans.Get(card)
		}
		m.reset()
		if card.Body == nil {
			m.logger.Infof("Session: card unloaded")
			return
		}
		m.logger.Infof("Session: loaded %s card %s %q v%d", card.Kind(), card.ID, card.Title, card.Version)
	})
}

func (m *Manager) Start() Snapshot {
	return m.do(func() {
		switch m.card.Body.(type) {
		case workout.TimeBody:
			if m.runner.Status != workout.RunnerIdle && m.runner.Status != workout.RunnerFinished {
				return
			}
			m.newRun()
			m.runner = workout.Start(m.runner, m.plan)
		case workout.RepBody:
			if m.reps.Status != workout.RepReady && m.reps.Status != workout.RepDone {
				return
			}
			m.newRun()
			m.reps = workout.StartReps(m.reps, m.repBody())
		default:
			m.logger.Warnf("Session: start without a card")
			return
		}
		m.logger.Infof("Session: started %q", m.card.Title)
	})
}

func (m *Manager) Pause() Snapshot {
	return m.do(func() {
		switch m.card.Kind() {
		case workout.KindTime:
			m.runner = workout.Pause(m.runner, m.plan)
		case workout.KindReps:
			m.reps = workout.PauseReps(m.reps)
		}
	})
}

func (m *Manager) Resume() Snapshot {
	return m.do(func() {
		switch m.card.Kind() {
		case workout.KindTime:
			m.runner = workout.Resume(m.runner, m.plan)
		case workout.KindReps:
			m.reps = workout.ResumeReps(m.reps)
		}
	})
}

// Toggle starts an idle run, pauses a running one and resumes a paused one.
func (m *Manager) Toggle() Snapshot {
	s := m.Snapshot()
	switch s.Kind() {
	case workout.KindTime:
		switch s.Time.Status {
		case workout.RunnerRunning:
			return m.Pause()
		case workout.RunnerPaused:
			return m.Resume()
		default:
			return m.Start()
		}
	case workout.KindReps:
		switch {
		case s.Reps.Status == workout.RepReady || s.Reps.Status == workout.RepDone:
			return m.Start()
		case s.Reps.Paused:
			return m.Resume()
		default:
			return m.Pause()
		}
	}
	return s
}

// Skip ends the countdown or phase in progress.
func (m *Manager) Skip() Snapshot {
	return m.do(func() {
		prevRunner, prevReps := m.runner, m.reps
		switch m.card.Kind() {
		case workout.KindTime:
			m.runner = workout.Skip(m.runner, m.plan)
		case workout.KindReps:
			m.reps = workout.SkipReps(m.reps, m.repBody())
		}
		if m.runner != prevRunner || m.reps != prevReps {
			m.reanchor()
		}
	})
}

// Stop cancels the run and returns to the first phase.
func (m *Manager) Stop() Snapshot {
	return m.do(func() {
		if m.card.Body == nil {
			return
		}
		m.reset()
		m.logger.Infof("Session: stopped %q", m.card.Title)
	})
}

// CompleteSet ends the running set of a rep card.
func (m *Manager) CompleteSet() Snapshot {
	return m.do(func() {
		if m.card.Kind() != workout.KindReps {
			return
		}
		prev := m.reps
		m.reps = workout.CompleteSet(m.reps, m.repBody())
		if m.reps != prev {
			m.reanchor()
		}
	})
}

// Commit builds the history entry of a finished run and passes it to record.
// It succeeds once per run and profile: the run is marked saved only when
// record returns nil. record runs on the manager goroutine and must not call
// back into the Manager.
func (m *Manager) Commit(profileID string, record func(workout.LogEntry) error) (workout.LogEntry, error) {
	var (
		entry workout.LogEntry
		err   error
		ran   bool
	)
	m.do(func() {
		ran = true
		if m.card.Body == nil {
			err = ErrNoCard
			return
		}
		m.guard.Bind(m.card, profileID)
		if !m.finished() {
			err = ErrNotFinished
			return
		}
		if m.guard.Saved() {
			err = ErrAlreadySaved
			return
		}
		switch m.card.Kind() {
		case workout.KindTime:
			entry, err = m.builder.BuildTimeLog(profileID, m.card, m.plan.TotalSec())
		case workout.KindReps:
			entry, err = m.builder.BuildRepLog(profileID, m.card)
		}
		if err != nil {
			return
		}
		if record != nil {
			if err = record(entry); err != nil {
				m.logger.Errorf("Session: saving %s failed: %v", entry.ID, err)
				return
			}
		}
		m.guard.MarkSaved()
		m.logger.Infof("Session: saved %q for profile %s", m.card.Title, profileID)
	})
	if !ran {
		return workout.LogEntry{}, ErrClosed
	}
	if err != nil {
		return workout.LogEntry{}, err
	}
	return entry, nil
}

// Shutdown stops the goroutine and waits for it.
// Safe to call multiple times - only the first call has effect.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		m.logger.Infof("Session: shutting down")
		close(m.doneChan)
		m.wg.Wait()
		m.logger.Infof("Session: shutdown complete")
	})
}

// do runs fn on the manager goroutine and returns the snapshot published
// after it. After Shutdown it returns the last published snapshot.
func (m *Manager) do(fn func()) Snapshot {
	cmd := command{fn: fn, done: make(chan Snapshot, 1)}
	select {
	case m.cmdChan <- cmd:
	case <-m.doneChan:
		s, _ := m.feed.Last()
		return s
	}
	return <-cmd.done
}

func (m *Manager) runLoop() {
	defer m.wg.Done()
	for {
		select {
		case <-m.doneChan:
			m.ticker.Stop()
			m.logger.Debugf("Session: goroutine exiting")
			return

		case cmd := <-m.cmdChan:
			cmd.fn()
			m.syncTicker()
			cmd.done <- m.emit()

		case <-m.ticker.C():
			if m.onTick() {
				m.syncTicker()
				m.emit()
			}
		}
	}
}

// onTick applies the whole seconds elapsed since the anchor that were not
// applied yet, so a late tick catches up instead of drifting.
func (m *Manager) onTick() bool {
	if !m.ticking {
		return false
	}
	due := int(m.clock.Now().Sub(m.anchor)/time.Second) - m.applied
	if due <= 0 {
		return false
	}
	m.applied += due
	if due > 1 {
		m.logger.Debugf("Session: catching up %d s", due)
	}

	// Cues are collected per second so a catch-up keeps the ones it passes.
	switch m.card.Kind() {
	case workout.KindTime:
		for i := 0; i < due && m.runner.Status == workout.RunnerRunning; i++ {
			m.runner = workout.Advance(m.runner, m.plan, 1)
			m.pending = append(m.pending, m.cues.Observe(m.runner)...)
		}
	case workout.KindReps:
		body := m.repBody()
		for i := 0; i < due && repActive(m.reps); i++ {
			m.reps = workout.TickReps(m.reps, body)
			m.pending = append(m.pending, m.observeReps()...)
		}
	}
	return true
}

// reanchor restarts the second in progress, so the phase entered by a skip or
// a completed set gets its full first second.
func (m *Manager) reanchor() {
	if !m.ticking {
		return
	}
	m.anchor = m.clock.Now()
	m.applied = 0
	m.ticker.Reset(tickInterval)
}

// syncTicker runs the ticker exactly while the run is advancing. Entering the
// running state sets a new anchor.
func (m *Manager) syncTicker() {
	running := m.running()
	switch {
	case running && !m.ticking:
		m.anchor = m.clock.Now()
		m.applied = 0
		m.ticker.Reset(tickInterval)
		m.ticking = true
	case !running && m.ticking:
		m.ticker.Stop()
		m.ticking = false
	}
}

// emit dispatches due cues and publishes a snapshot.
func (m *Manager) emit() Snapshot {
	cues := m.pending
	m.pending = nil
	switch m.card.Kind() {
	case workout.KindTime:
		cues = append(cues, m.cues.Observe(m.runner)...)
	case workout.KindReps:
		cues = append(cues, m.observeReps()...)
	}
	if len(cues) > 0 {
		cue.Dispatch(m.player, cues)
	}

	s := m.snapshot()
	m.feed.Publish(s)
	return s
}

func (m *Manager) snapshot() Snapshot {
	s := Snapshot{
		Card:  m.card,
		Plan:  m.plan,
		Time:  m.runner,
		Reps:  m.reps,
		Saved: m.guard.Saved(),
	}
	if body, ok := m.card.Body.(workout.RepBody); ok {
		s.Totals = workout.ComputeRepTotals(body.Sets)
	}
	return s
}

func (m *Manager) running() bool {
	switch m.card.Kind() {
	case workout.KindTime:
		return m.runner.Status == workout.RunnerRunning
	case workout.KindReps:
		return repActive(m.reps)
	}
	return false
}

func (m *Manager) finished() bool {
	switch m.card.Kind() {
	case workout.KindTime:
		return m.runner.Status == workout.RunnerFinished
	case workout.KindReps:
		return m.reps.Status == workout.RepDone
	}
	return false
}

// newRun forgets the saved flag and cue guards of the previous run.
func (m *Manager) newRun() {
	m.guard.Clear()
	m.cues.Reset()
	m.lastRep = workout.ResetReps()
}

func (m *Manager) reset() {
	m.runner = workout.NewRunner(m.plan)
	m.reps = workout.ResetReps()
	m.newRun()
}

func (m *Manager) repBody() workout.RepBody {
	body, _ := m.card.Body.(workout.RepBody)
	return body
}
