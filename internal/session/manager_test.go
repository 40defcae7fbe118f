package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"github.com/lowaak/interval-trainer/internal/cue"
	"github.com/lowaak/interval-trainer/internal/workout"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	running bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.running = false
	t.mu.Unlock()
}

func (t *fakeTicker) Reset(time.Duration) {
	t.mu.Lock()
	t.running = true
	t.mu.Unlock()
}

func (t *fakeTicker) isRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	ticker *fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(time.Duration) Ticker {
	c.ticker = &fakeTicker{c: make(chan time.Time)}
	return c.ticker
}

func (c *fakeClock) advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

type harness struct {
	t     *testing.T
	clock *fakeClock
	m     *Manager
}

func newHarness(t *testing.T, player cue.Player) *harness {
	t.Helper()
	if player == nil {
		player = cue.Nop{}
	}
	logger, _ := test.NewNullLogger()
	clock := newFakeClock()
	m := NewManager(clock, player, false, logger)
	t.Cleanup(m.Shutdown)
	return &harness{t: t, clock: clock, m: m}
}

// tick moves the clock by d and delivers one ticker fire. The ticker channel
// is unbuffered, so the fire is handled before the next command.
func (h *harness) tick(d time.Duration) Snapshot {
	h.t.Helper()
	now := h.clock.advance(d)
	h.clock.ticker.c <- now
	return h.m.Snapshot()
}

func (h *harness) ticks(n int) Snapshot {
	h.t.Helper()
	var s Snapshot
	for i := 0; i < n; i++ {
		s = h.tick(time.Second)
	}
	return s
}

// oneWorkPhase plans a single one-second Work phase: four countdown seconds,
// one working second, then Finished.
func oneWorkPhase() workout.Card {
	return workout.Card{
		ID: "one", Title: "One", Version: 1,
		Body: workout.TimeBody{Timing: workout.TimingConfig{WorkSec: 1, RepsPerSet: 1, Sets: 1}},
	}
}

// warmupAndWork plans Warm-up 2, Work 3.
func warmupAndWork() workout.Card {
	return workout.Card{
		ID: "ww", Title: "Warm and work", Version: 1,
		Body: workout.TimeBody{Timing: workout.TimingConfig{WarmupSec: 2, WorkSec: 3, RepsPerSet: 1, Sets: 1}},
	}
}

func repCard() workout.Card {
	return workout.Card{
		ID: "reps", Title: "Press", Version: 1,
		Body: workout.RepBody{
			Sets:               []workout.RepSet{{Exercise: "Bench", Reps: 5, WeightKg: 60}, {Exercise: "Bench", Reps: 5, WeightKg: 65}},
			RestBetweenSetsSec: 2,
		},
	}
}

func TestManager_NoCard(t *testing.T) {
	h := newHarness(t, nil)
	s := h.m.Start()
	assert.False(t, s.HasCard())
	assert.Equal(t, "No card", s.Status())

	_, err := h.m.Commit("p", nil)
	assert.ErrorIs(t, err, ErrNoCard)
}

func TestManager_TimeRunToFinish(t *testing.T) {
	h := newHarness(t, nil)
	s := h.m.SetCard(warmupAndWork())
	assert.Equal(t, workout.RunnerIdle, s.Time.Status)
	assert.Equal(t, 9, s.Time.TotalRemainingSec)

	s = h.m.Start()
	assert.True(t, s.Running())
	assert.True(t, h.clock.ticker.isRunning())
	phase, ok := s.Phase()
	require.True(t, ok)
	assert.Equal(t, workout.PhaseWarmup, phase.Type)

	s = h.ticks(2)
	phase, _ = s.Phase()
	assert.Equal(t, workout.PhaseWork, phase.Type)
	assert.Equal(t, workout.PreWorkCountdownSec, s.Time.PreWorkSec)

	s = h.ticks(4 + 2)
	assert.Equal(t, 1, s.Time.RemainingSec)
	assert.Equal(t, 1, s.Time.TotalRemainingSec)

	s = h.tick(time.Second)
	assert.True(t, s.Finished())
	assert.Zero(t, s.Time.TotalRemainingSec)
	assert.Equal(t, 5, s.ElapsedSec())
	assert.False(t, h.clock.ticker.isRunning())
}

func TestManager_LateTickCatchesUp(t *testing.T) {
	h := newHarness(t, nil)
	h.m.SetCard(warmupAndWork())
	h.m.Start()

	// Three seconds pass before the ticker fires once.
	s := h.tick(3 * time.Second)
	phase, _ := s.Phase()
	assert.Equal(t, workout.PhaseWork, phase.Type)
	assert.Equal(t, 3, s.Time.PreWorkSec)

	// A fire less than a second after the last applied one changes nothing.
	s = h.tick(400 * time.Millisecond)
	assert.Equal(t, 3, s.Time.PreWorkSec)
	s = h.tick(600 * time.Millisecond)
	assert.Equal(t, 2, s.Time.PreWorkSec)
}

func TestManager_PauseResumeReanchors(t *testing.T) {
	h := newHarness(t, nil)
	h.m.SetCard(warmupAndWork())
	h.m.Start()
	h.ticks(1)

	s := h.m.Toggle()
	assert.Equal(t, workout.RunnerPaused, s.Time.Status)
	assert.False(t, h.clock.ticker.isRunning())

	// Time spent paused is not applied.
	h.clock.advance(time.Minute)
	s = h.m.Toggle()
	assert.Equal(t, workout.RunnerRunning, s.Time.Status)
	assert.Equal(t, 1, s.Time.RemainingSec)

	s = h.tick(time.Second)
	phase, _ := s.Phase()
	assert.Equal(t, workout.PhaseWork, phase.Type)
}

func TestManager_SkipAndStop(t *testing.T) {
	h := newHarness(t, nil)
	h.m.SetCard(warmupAndWork())
	h.m.Start()

	s := h.m.Skip()
	phase, _ := s.Phase()
	assert.Equal(t, workout.PhaseWork, phase.Type)
	assert.Equal(t, workout.PreWorkCountdownSec, s.Time.PreWorkSec)

	s = h.m.Skip()
	assert.Zero(t, s.Time.PreWorkSec)
	assert.Equal(t, 3, s.Time.RemainingSec)

	s = h.m.Stop()
	assert.Equal(t, workout.RunnerIdle, s.Time.Status)
	assert.Equal(t, 0, s.Time.PhaseIndex)
	assert.False(t, h.clock.ticker.isRunning())
}

func TestManager_SkipStartsAFullSecond(t *testing.T) {
	h := newHarness(t, nil)
	h.m.SetCard(warmupAndWork())
	h.m.Start()

	s := h.tick(900 * time.Millisecond)
	assert.Equal(t, 2, s.Time.RemainingSec)

	s = h.m.Skip()
	assert.Equal(t, workout.PreWorkCountdownSec, s.Time.PreWorkSec)

	// The countdown's first second is counted from the skip.
	s = h.tick(100 * time.Millisecond)
	assert.Equal(t, workout.PreWorkCountdownSec, s.Time.PreWorkSec)
	s = h.tick(800 * time.Millisecond)
	assert.Equal(t, workout.PreWorkCountdownSec, s.Time.PreWorkSec)
	s = h.tick(100 * time.Millisecond)
	assert.Equal(t, workout.PreWorkCountdownSec-1, s.Time.PreWorkSec)
}

func TestManager_CompleteSetStartsAFullRestSecond(t *testing.T) {
	h := newHarness(t, nil)
	h.m.SetCard(repCard())
	h.m.Start()

	h.tick(600 * time.Millisecond)
	s := h.m.CompleteSet()
	require.Equal(t, workout.RepRest, s.Reps.Status)
	assert.Equal(t, 2, s.Reps.RemainingSec)

	s = h.tick(500 * time.Millisecond)
	assert.Equal(t, 2, s.Reps.RemainingSec)
	s = h.tick(500 * time.Millisecond)
	assert.Equal(t, 1, s.Reps.RemainingSec)
}

func TestManager_SetCardResetsOnIdentityChange(t *testing.T) {
	h := newHarness(t, nil)
	card := warmupAndWork()
	h.m.SetCard(card)
	h.m.Start()
	h.ticks(1)

	renamed := card
	renamed.Title = "Renamed"
	s := h.m.SetCard(renamed)
	assert.Equal(t, workout.RunnerRunning, s.Time.Status, "same id and version keeps the run")
	assert.Equal(t, "Renamed", s.Card.Title)

	edited := card
	edited.Version = 2
	s = h.m.SetCard(edited)
	assert.Equal(t, workout.RunnerIdle, s.Time.Status)
	assert.False(t, h.clock.ticker.isRunning())
}

func TestManager_HistoryWriteOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.m.SetCard(oneWorkPhase())

	_, err := h.m.Commit("p1", nil)
	assert.ErrorIs(t, err, ErrNotFinished)

	h.m.Start()
	s := h.ticks(5)
	require.True(t, s.Finished())

	var saved []workout.LogEntry
	record := func(e workout.LogEntry) error {
		saved = append(saved, e)
		return nil
	}

	entry, err := h.m.Commit("p1", record)
	require.NoError(t, err)
	_, err = h.m.Commit("p1", record)
	assert.ErrorIs(t, err, ErrAlreadySaved)

	require.Len(t, saved, 1)
	assert.Equal(t, entry, saved[0])
	assert.Equal(t, workout.TimeLog{
		PlannedTotalSec: 1,
		Timing:          workout.TimingConfig{WorkSec: 1, RepsPerSet: 1, Sets: 1},
		PhaseCount:      1,
	}, entry.Payload)
	assert.True(t, h.m.Snapshot().Saved)

	// Another profile may save the same finished run.
	_, err = h.m.Commit("p2", record)
	require.NoError(t, err)
	assert.Len(t, saved, 2)

	// A new run clears the flag.
	h.m.Start()
	h.ticks(5)
	_, err = h.m.Commit("p2", record)
	require.NoError(t, err)
	assert.Len(t, saved, 3)
}

func TestManager_CommitRecordFailureKeepsRunUnsaved(t *testing.T) {
	h := newHarness(t, nil)
	h.m.SetCard(oneWorkPhase())
	h.m.Start()
	h.ticks(5)

	boom := errors.New("disk full")
	_, err := h.m.Commit("p1", func(workout.LogEntry) error { return boom })
	assert.ErrorIs(t, err, boom)

	_, err = h.m.Commit("p1", func(workout.LogEntry) error { return nil })
	assert.NoError(t, err)
}

func TestManager_RepRun(t *testing.T) {
	h := newHarness(t, nil)
	s := h.m.SetCard(repCard())
	assert.Equal(t, 10, s.Totals.TotalReps)
	assert.Equal(t, 625.0, s.Totals.TotalKg)

	s = h.m.Toggle()
	assert.Equal(t, workout.RepInSet, s.Reps.Status)
	assert.Equal(t, "Bench", s.Exercise())

	s = h.ticks(3)
	assert.Equal(t, 3, s.Reps.ElapsedSec)

	s = h.m.Toggle()
	assert.Equal(t, "Paused", s.Status())
	assert.False(t, h.clock.ticker.isRunning())
	s = h.m.Toggle()
	assert.False(t, s.Reps.Paused)

	s = h.m.CompleteSet()
	assert.Equal(t, workout.RepRest, s.Reps.Status)
	s = h.ticks(2)
	assert.Equal(t, workout.RepInSet, s.Reps.Status)
	assert.Equal(t, 1, s.Reps.SetIndex)

	_, err := h.m.Commit("p1", nil)
	assert.ErrorIs(t, err, ErrNotFinished)

	s = h.m.CompleteSet()
	assert.True(t, s.Finished())
	entry, err := h.m.Commit("p1", nil)
	require.NoError(t, err)
	payload, ok := entry.Payload.(workout.RepLog)
	require.True(t, ok)
	assert.Equal(t, 10, payload.TotalReps)
}

func TestManager_DispatchesCues(t *testing.T) {
	ctrl := gomock.NewController(t)
	player := NewMockPlayer(ctrl)

	player.EXPECT().PlayCue(880, 250, 0.8).Times(1)
	player.EXPECT().Vibrate([]int{120}).Times(1)
	player.EXPECT().PlayCue(660, 120, 0.5).Times(4)
	player.EXPECT().PlayCue(990, 350, 1.0).Times(1)
	player.EXPECT().Vibrate([]int{250}).Times(1)
	gomock.InOrder(
		player.EXPECT().PlayCue(660, 200, 1.0),
		player.EXPECT().PlayCue(880, 200, 1.0),
		player.EXPECT().PlayCue(990, 400, 1.0),
		player.EXPECT().Vibrate([]int{200, 100, 200}),
	)

	h := newHarness(t, player)
	h.m.SetCard(oneWorkPhase())
	h.m.Start()
	s := h.ticks(5)
	require.True(t, s.Finished())

	// Observing the finished state again plays nothing more.
	h.m.Snapshot()
}

func TestManager_LateTickKeepsPassedCues(t *testing.T) {
	ctrl := gomock.NewController(t)
	player := NewMockPlayer(ctrl)

	player.EXPECT().PlayCue(880, 250, 0.8).Times(1)
	player.EXPECT().Vibrate([]int{120}).Times(1)
	player.EXPECT().PlayCue(660, 120, 0.5).Times(4)
	player.EXPECT().PlayCue(990, 350, 1.0).Times(1)
	player.EXPECT().Vibrate([]int{250}).Times(1)
	gomock.InOrder(
		player.EXPECT().PlayCue(660, 200, 1.0),
		player.EXPECT().PlayCue(880, 200, 1.0),
		player.EXPECT().PlayCue(990, 400, 1.0),
		player.EXPECT().Vibrate([]int{200, 100, 200}),
	)

	h := newHarness(t, player)
	h.m.SetCard(oneWorkPhase())
	h.m.Start()

	// The whole countdown, the Go and the finish pass within one late fire.
	s := h.tick(5 * time.Second)
	require.True(t, s.Finished())
}

func TestManager_BellPlayer(t *testing.T) {
	ctrl := gomock.NewController(t)
	beeper := NewMockBeeper(ctrl)
	beeper.EXPECT().Beep().Return(errors.New("no terminal")).Times(1)

	logger, _ := test.NewNullLogger()
	bell := cue.NewBell(beeper, logger)
	bell.MinGap = time.Hour

	h := newHarness(t, bell)
	h.m.SetCard(oneWorkPhase())
	s := h.m.Start()
	assert.True(t, s.Running())
}

func TestManager_ListenAndShutdown(t *testing.T) {
	h := newHarness(t, nil)
	ch := make(chan Snapshot, 8)
	unsubscribe := h.m.ListenToSnapshots(ch)
	defer unsubscribe()

	initial := <-ch
	assert.False(t, initial.HasCard())

	h.m.SetCard(oneWorkPhase())
	loaded := <-ch
	assert.Equal(t, "one", loaded.Card.ID)

	h.m.Shutdown()
	h.m.Shutdown()

	s := h.m.Start()
	assert.Equal(t, workout.RunnerIdle, s.Time.Status)
	_, err := h.m.Commit("p1", nil)
	assert.ErrorIs(t, err, ErrClosed)
}
