package app

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lowaak/interval-trainer/internal/events"
	"github.com/lowaak/interval-trainer/internal/export"
	"github.com/lowaak/interval-trainer/internal/store"
	"github.com/lowaak/interval-trainer/internal/workout"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrLastProfile = errors.New("the last profile cannot be deleted")
	ErrBlankName   = errors.New("name is required")
	ErrDuplicate   = errors.New("entry is already in the history")
)

// Storage is the persistence the application writes through to.
// *store.Store implements it.
type Storage interface {
	LoadCards() []workout.Card
	SaveCards(cards []workout.Card) error
	LoadProfiles() []store.Profile
	SaveProfiles(profiles []store.Profile) error
	LoadActiveProfileID() string
	SaveActiveProfileID(id string) error
	LoadHistory(defaultProfileID string) []workout.LogEntry
	SaveHistory(logs []workout.LogEntry) error
	LoadPreferences() store.Preferences
	SavePreferences(p store.Preferences) error

	NormalizeCardRecords(recs []store.CardRecord) []workout.Card
	NormalizeLogRecords(recs []store.LogRecord, defaultProfileID string) []workout.LogEntry
	NormalizeProfiles(profiles []store.Profile) []store.Profile
}

// State is an immutable snapshot of everything the user owns. Mutations
// replace slices instead of editing them, so a State can be shared freely.
type State struct {
	Cards           []workout.Card
	Profiles        []store.Profile
	ActiveProfileID string
	History         []workout.LogEntry
	Preferences     store.Preferences
}

func (s State) Card(id string) (workout.Card, bool) {
	for _, c := range s.Cards {
		if c.ID == id {
			return c, true
		}
	}
	return workout.Card{}, false
}

func (s State) Profile(id string) (store.Profile, bool) {
	for _, p := range s.Profiles {
		if p.ID == id {
			return p, true
		}
	}
	return store.Profile{}, false
}

func (s State) ActiveProfile() store.Profile {
	p, _ := s.Profile(s.ActiveProfileID)
	return p
}

// App owns the State and writes every change through to Storage before
// publishing it.
type App struct {
	storage Storage
	logger  logrus.FieldLogger
	newID   func() string
	now     func() time.Time

	mu    sync.RWMutex
	state State
	feed  *events.Feed[State]
}

func New(storage Storage, logger logrus.FieldLogger) *App {
	return newApp(storage, logger, uuid.NewString, time.Now)
}

func newApp(storage Storage, logger logrus.FieldLogger, newID func() string, now func() time.Time) *App {
	if logger == nil {
		panic("App: logger cannot be nil")
	}
	if storage == nil {
		panic("App: storage cannot be nil")
	}
	a := &App{
		storage: storage,
		logger:  logger,
		newID:   newID,
		now:     now,
		feed:    events.NewFeed[State](true),
	}
	a.load()
	return a
}

func (a *App) load() {
	s := State{
		Cards:       a.storage.LoadCards(),
		Profiles:    a.storage.LoadProfiles(),
		Preferences: a.storage.LoadPreferences(),
	}

	if len(s.Profiles) == 0 {
		s.Profiles = []store.Profile{{ID: a.newID(), Name: store.DefaultProfile, CreatedAt: a.now().UTC()}}
		a.logger.Infof("App: created profile %q", store.DefaultProfile)
		a.saveOrWarn(a.storage.SaveProfiles(s.Profiles))
	}

	s.ActiveProfileID = a.storage.LoadActiveProfileID()
	if _, ok := s.Profile(s.ActiveProfileID); !ok {
		s.ActiveProfileID = s.Profiles[0].ID
		a.saveOrWarn(a.storage.SaveActiveProfileID(s.ActiveProfileID))
	}

	if len(s.Cards) == 0 {
		s.Cards = DefaultCards(a.newID, a.now().UTC())
		a.logger.Infof("App: seeded %d default cards", len(s.Cards))
		a.saveOrWarn(a.storage.SaveCards(s.Cards))
	}

	s.History = a.storage.LoadHistory(s.ActiveProfileID)
	a.state = s
	a.logger.Infof("App: loaded %d cards, %d profiles, %d history entries",
		len(s.Cards), len(s.Profiles), len(s.History))
	a.feed.Publish(s)
}

func (a *App) saveOrWarn(err error) {
	if err != nil {
		a.logger.Warnf("App: initial save failed: %v", err)
	}
}

// State returns the current snapshot.
func (a *App) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// ListenToState registers ch for every new State; the current one is sent
// immediately.
func (a *App) ListenToState(ch chan<- State) func() {
	return a.feed.Subscribe(ch)
}

// update applies fn to a copy of the state under the lock. fn persists what it
// changed and returns an error to abandon the change.
func (a *App) update(fn func(s *State) error) error {
	a.mu.Lock()
	s := a.state
	if err := fn(&s); err != nil {
		a.mu.Unlock()
		return err
	}
	a.state = s
	a.mu.Unlock()

	a.feed.Publish(s)
	return nil
}

// ExportData is the part of the State an export reads.
func (a *App) ExportData() export.Data {
	s := a.State()
	return export.Data{
		Cards:           s.Cards,
		Profiles:        s.Profiles,
		History:         s.History,
		ActiveProfileID: s.ActiveProfileID,
	}
}

func (a *App) SetPreferences(p store.Preferences) error {
	if p.Volume < 0 {
		p.Volume = 0
	}
	if p.Volume > 1 {
		p.Volume = 1
	}
	return a.update(func(s *State) error {
		if err := a.storage.SavePreferences(p); err != nil {
			return err
		}
		s.Preferences = p
		return nil
	})
}
