package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/lowaak/interval-trainer/internal/app"
	"github.com/lowaak/interval-trainer/internal/go_func_utils"
	"github.com/lowaak/interval-trainer/internal/session"
	"github.com/lowaak/interval-trainer/internal/store"
	"github.com/lowaak/interval-trainer/internal/workout"
)

// Workouts is the part of *app.App the controller drives.
type Workouts interface {
	StateSource
	RecordLog(entry workout.LogEntry) error
	NextProfile() (store.Profile, error)
	SetPreferences(p store.Preferences) error
}

// Runner is the part of *session.Manager the controller drives.
type Runner interface {
	SnapshotSource
	SetCard(card workout.Card) session.Snapshot
	Toggle() session.Snapshot
	Skip() session.Snapshot
	Stop() session.Snapshot
	CompleteSet() session.Snapshot
	Commit(profileID string, record func(workout.LogEntry) error) (workout.LogEntry, error)
}

// Controller handles UI events and coordinates the model with the
// application and the session.
type Controller struct {
	model    *Model
	workouts Workouts
	runner   Runner
	logger   logrus.FieldLogger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewController(model *Model, workouts Workouts, runner Runner, logger logrus.FieldLogger) *Controller {
	if model == nil {
		panic("UIController: model cannot be nil")
	}
	if workouts == nil {
		panic("UIController: workouts cannot be nil")
	}
	if runner == nil {
		panic("UIController: runner cannot be nil")
	}
	if logger == nil {
		panic("UIController: logger cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		model:    model,
		workouts: workouts,
		runner:   runner,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	c.wg.Add(1)
	go_func_utils.SafeGo(logger, func() { c.listenToCardEdits() })

	return c
}

// Shutdown stops the listener goroutine.
func (c *Controller) Shutdown() {
	c.cancel()
	c.wg.Wait()
}

// listenToCardEdits keeps the loaded card in step with the stored one: an
// edit reloads it, a deletion unloads it.
func (c *Controller) listenToCardEdits() {
	defer c.wg.Done()

	ch := make(chan app.State, 1)
	unregister := c.workouts.ListenToState(ch)
	defer unregister()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ch:
			c.syncLoadedCard(c.workouts.State())
		}
	}
}

func (c *Controller) syncLoadedCard(state app.State) {
	loaded := c.runner.Snapshot().Card
	if loaded.Body == nil {
		return
	}
	card, ok := state.Card(loaded.ID)
	switch {
	case !ok:
		c.logger.Infof("UI: card %q was deleted", loaded.Title)
		c.runner.SetCard(workout.Card{})
	case card.Version != loaded.Version:
		c.runner.SetCard(card)
	}
}

// OnEscapeKey handles when the Escape key is pressed
func (c *Controller) OnEscapeKey() {
	c.model.RequestCloseApplication()
}

func (c *Controller) OnPageChange(page Page) {
	c.model.SetPage(page)
}

// OnCardSelected loads the card at index of the card list and shows the runner.
func (c *Controller) OnCardSelected(index int) {
	cards := c.model.GetState().Cards
	if index < 0 || index >= len(cards) {
		c.logger.Warnf("UI: card index %d out of range (have %d cards)", index, len(cards))
		return
	}
	card := cards[index]
	c.runner.SetCard(card)
	c.model.SetStatus(fmt.Sprintf("Loaded %s", card.Title))
	c.model.SetPage(PageRunner)
}

func (c *Controller) ToggleRun() {
	s := c.runner.Toggle()
	if !s.HasCard() {
		c.model.SetStatus("Select a card first (press 1)")
		return
	}
	c.model.SetStatus(s.Status())
}

func (c *Controller) SkipPhase() {
	c.runner.Skip()
}

func (c *Controller) StopRun() {
	if s := c.runner.Stop(); s.HasCard() {
		c.model.SetStatus("Stopped")
	}
}

func (c *Controller) CompleteSet() {
	c.runner.CompleteSet()
}

// SaveRun commits a finished run to the active profile's history.
func (c *Controller) SaveRun() {
	profile := c.workouts.State().ActiveProfile()
	entry, err := c.runner.Commit(profile.ID, c.workouts.RecordLog)
	switch {
	case err == nil:
		c.model.SetStatus(fmt.Sprintf("Saved %s for %s", entry.CardTitle, profile.Name))
	case errors.Is(err, session.ErrNoCard):
		c.model.SetStatus("Select a card first (press 1)")
	case errors.Is(err, session.ErrNotFinished):
		c.model.SetStatus("Finish the run before saving")
	case errors.Is(err, session.ErrAlreadySaved), errors.Is(err, app.ErrDuplicate):
		c.model.SetStatus("Already saved")
	default:
		c.logger.Errorf("UI: saving run failed: %v", err)
		c.model.SetStatus(fmt.Sprintf("Save failed: %v", err))
	}
}

// NextProfile activates the next profile, wrapping around.
func (c *Controller) NextProfile() {
	p, err := c.workouts.NextProfile()
	if err != nil {
		c.logger.Errorf("UI: switching profile failed: %v", err)
		c.model.SetStatus(fmt.Sprintf("Profile switch failed: %v", err))
		return
	}
	c.model.SetStatus(fmt.Sprintf("Profile: %s", p.Name))
}

// ToggleSound mutes or unmutes cues.
func (c *Controller) ToggleSound() {
	prefs := c.workouts.State().Preferences
	prefs.Sound = !prefs.Sound
	if err := c.workouts.SetPreferences(prefs); err != nil {
		c.logger.Errorf("UI: saving preferences failed: %v", err)
		return
	}
	if prefs.Sound {
		c.model.SetStatus("Sound on")
	} else {
		c.model.SetStatus("Sound off")
	}
}
