package app

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/interval-trainer/internal/export"
	"github.com/lowaak/interval-trainer/internal/share"
	"github.com/lowaak/interval-trainer/internal/store"
	"github.com/lowaak/interval-trainer/internal/workout"
)

var testNow = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	dir     string
	backend store.Backend
	store   *store.Store
	app     *App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	return openFixture(t, dir)
}

func openFixture(t *testing.T, dir string) *fixture {
	t.Helper()
	backend, err := store.NewFileBackend(dir)
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	st := store.New(backend, logger)
	n := 0
	newID := func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	a := newApp(st, logger, newID, func() time.Time { return testNow })
	return &fixture{dir: dir, backend: backend, store: st, app: a}
}

func timeCard(title string) workout.Card {
	return workout.Card{Title: title, Body: workout.TimeBody{Timing: workout.TimingConfig{WorkSec: 30, RepsPerSet: 2, Sets: 2}}}
}

func TestNew_SeedsDefaults(t *testing.T) {
	f := newFixture(t)
	s := f.app.State()

	require.Len(t, s.Profiles, 1)
	assert.Equal(t, store.DefaultProfile, s.Profiles[0].Name)
	assert.Equal(t, s.Profiles[0].ID, s.ActiveProfileID)
	require.Len(t, s.Cards, 3)
	assert.Equal(t, "Tabata", s.Cards[0].Title)
	assert.Equal(t, workout.KindReps, s.Cards[2].Kind())
	for _, c := range s.Cards {
		assert.NoError(t, workout.ValidateCard(c), c.Title)
	}
	assert.Equal(t, store.DefaultPreferences(), s.Preferences)

	// Reopening reads the seeded data back instead of seeding again.
	again := openFixture(t, f.dir).app.State()
	assert.Equal(t, s.ActiveProfileID, again.ActiveProfileID)
	assert.Len(t, again.Cards, 3)
	assert.Equal(t, s.Cards[0].ID, again.Cards[0].ID)
}

func TestCards_AddUpdateDelete(t *testing.T) {
	f := newFixture(t)

	card, err := f.app.AddCard(timeCard("  Sprint  "))
	require.NoError(t, err)
	assert.Equal(t, "Sprint", card.Title)
	assert.Equal(t, 1, card.Version)
	assert.Equal(t, testNow, card.CreatedAt)

	card.Title = "Sprints"
	updated, err := f.app.UpdateCard(card)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	got, ok := f.app.State().Card(card.ID)
	require.True(t, ok)
	assert.Equal(t, "Sprints", got.Title)

	_, err = f.app.UpdateCard(workout.Card{ID: "missing", Title: "x", Body: timeCard("x").Body})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.app.DeleteCard(card.ID))
	_, ok = f.app.State().Card(card.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, f.app.DeleteCard(card.ID), ErrNotFound)

	reopened := openFixture(t, f.dir).app.State()
	assert.Len(t, reopened.Cards, 3)
}

func TestCards_InvalidIsRejected(t *testing.T) {
	f := newFixture(t)
	before := f.app.State()

	_, err := f.app.AddCard(workout.Card{Title: " ", Body: workout.TimeBody{}})
	assert.ErrorIs(t, err, workout.ErrValidation)
	assert.Equal(t, before, f.app.State())
}

func TestImportCards(t *testing.T) {
	f := newFixture(t)
	added, skipped, err := f.app.ImportCards([]workout.Card{timeCard("A"), {Title: "bad"}, timeCard("B")})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, skipped)

	s := f.app.State()
	require.Len(t, s.Cards, 5)
	assert.NotEqual(t, s.Cards[3].ID, s.Cards[4].ID)
}

func TestProfiles(t *testing.T) {
	f := newFixture(t)
	first := f.app.State().ActiveProfileID

	_, err := f.app.AddProfile("  ")
	assert.ErrorIs(t, err, ErrBlankName)

	sam, err := f.app.AddProfile("Sam")
	require.NoError(t, err)
	require.NoError(t, f.app.RenameProfile(sam.ID, "Samantha"))
	p, ok := f.app.State().Profile(sam.ID)
	require.True(t, ok)
	assert.Equal(t, "Samantha", p.Name)

	next, err := f.app.NextProfile()
	require.NoError(t, err)
	assert.Equal(t, sam.ID, next.ID)
	next, err = f.app.NextProfile()
	require.NoError(t, err)
	assert.Equal(t, first, next.ID)

	assert.ErrorIs(t, f.app.SetActiveProfile("nobody"), ErrNotFound)
	require.NoError(t, f.app.SetActiveProfile(sam.ID))
	assert.Equal(t, sam.ID, openFixture(t, f.dir).app.State().ActiveProfileID)
}

func TestDeleteProfile_RemovesHistoryAndMovesActive(t *testing.T) {
	f := newFixture(t)
	first := f.app.State().ActiveProfileID
	sam, err := f.app.AddProfile("Sam")
	require.NoError(t, err)
	require.NoError(t, f.app.SetActiveProfile(sam.ID))

	card := f.app.State().Cards[0]
	b := workout.LogBuilder{NewID: func() string { return "log-sam" }, Now: func() time.Time { return testNow }}
	entry, err := b.BuildTimeLog(sam.ID, card, 300)
	require.NoError(t, err)
	require.NoError(t, f.app.RecordLog(entry))
	b.NewID = func() string { return "log-first" }
	kept, err := b.BuildTimeLog(first, card, 300)
	require.NoError(t, err)
	require.NoError(t, f.app.RecordLog(kept))

	require.NoError(t, f.app.DeleteProfile(sam.ID))
	s := f.app.State()
	assert.Equal(t, first, s.ActiveProfileID)
	require.Len(t, s.History, 1)
	assert.Equal(t, "log-first", s.History[0].ID)

	assert.ErrorIs(t, f.app.DeleteProfile(first), ErrLastProfile)
	assert.ErrorIs(t, f.app.DeleteProfile(sam.ID), ErrNotFound)
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	s := f.app.State()
	profile := s.ActiveProfileID

	ids := []string{"old", "new"}
	times := []time.Time{testNow.Add(-time.Hour), testNow}
	for i := range ids {
		b := workout.LogBuilder{NewID: func() string { return ids[i] }, Now: func() time.Time { return times[i] }}
		entry, err := b.BuildRepLog(profile, s.Cards[2])
		require.NoError(t, err)
		require.NoError(t, f.app.RecordLog(entry))
	}

	entries := f.app.ProfileHistory(profile)
	require.Len(t, entries, 2)
	assert.Equal(t, "new", entries[0].ID)
	assert.Equal(t, "old", entries[1].ID)

	dup := entries[0]
	assert.ErrorIs(t, f.app.RecordLog(dup), ErrDuplicate)

	orphan := dup
	orphan.ID = "orphan"
	orphan.ProfileID = "nobody"
	assert.ErrorIs(t, f.app.RecordLog(orphan), ErrNotFound)

	require.NoError(t, f.app.DeleteLog("old"))
	assert.ErrorIs(t, f.app.DeleteLog("old"), ErrNotFound)
	assert.Len(t, openFixture(t, f.dir).app.State().History, 1)
}

func TestRankings(t *testing.T) {
	f := newFixture(t)
	s := f.app.State()
	alex := s.ActiveProfileID
	sam, err := f.app.AddProfile("Sam")
	require.NoError(t, err)
	_, err = f.app.AddProfile("Kim")
	require.NoError(t, err)

	n := 0
	b := workout.LogBuilder{
		NewID: func() string { n++; return fmt.Sprintf("log-%d", n) },
		Now:   func() time.Time { return testNow.Add(time.Duration(n) * time.Minute) },
	}
	record := func(e workout.LogEntry, err error) {
		require.NoError(t, err)
		require.NoError(t, f.app.RecordLog(e))
	}
	record(b.BuildTimeLog(alex, s.Cards[0], 300))
	record(b.BuildTimeLog(sam.ID, s.Cards[1], 900))
	record(b.BuildRepLog(alex, s.Cards[2]))

	rows := f.app.Rankings()
	require.Len(t, rows, 3)
	assert.Equal(t, "Sam", rows[0].Name)
	assert.Equal(t, 900, rows[0].PlannedSec)
	assert.Equal(t, alex, rows[1].ProfileID)
	assert.Equal(t, 2, rows[1].Sessions)
	assert.Equal(t, 25, rows[1].Reps)
	assert.Equal(t, 1500.0, rows[1].Kg)
	assert.Equal(t, "Kim", rows[2].Name)
	assert.Zero(t, rows[2].Sessions)
}

func TestImportToken(t *testing.T) {
	f := newFixture(t)
	src := f.app.State().Cards[0]

	token, err := share.EncodeCard(src, "Alex")
	require.NoError(t, err)
	res, err := f.app.ImportToken("link: " + token)
	require.NoError(t, err)
	assert.Equal(t, share.TypeCard, res.Type)
	assert.Equal(t, "Alex", res.From)
	assert.NotEqual(t, src.ID, res.Card.ID)
	assert.Equal(t, src.Body, res.Card.Body)
	assert.Len(t, f.app.State().Cards, 4)

	entry, err := workout.LogBuilder{NewID: func() string { return "shared" }, Now: func() time.Time { return testNow }}.
		BuildTimeLog("someone-else", src, 240)
	require.NoError(t, err)
	token, err = share.EncodeLog(entry, "Sam")
	require.NoError(t, err)

	res, err = f.app.ImportToken(token)
	require.NoError(t, err)
	assert.Equal(t, share.TypeLog, res.Type)
	assert.Equal(t, f.app.State().ActiveProfileID, res.Log.ProfileID)

	_, err = f.app.ImportToken(token)
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = f.app.ImportToken("garbage")
	assert.True(t, IsUnrecognized(err))
}

func TestImportBackup(t *testing.T) {
	src := newFixture(t)
	sam, err := src.app.AddProfile("Sam")
	require.NoError(t, err)
	custom, err := src.app.AddCard(timeCard("Custom"))
	require.NoError(t, err)
	entry, err := workout.LogBuilder{NewID: func() string { return "backup-log" }, Now: func() time.Time { return testNow }}.
		BuildTimeLog(sam.ID, custom, 120)
	require.NoError(t, err)
	require.NoError(t, src.app.RecordLog(entry))

	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, export.FormatJSON, src.app.ExportData(), testNow))

	dst := newFixture(t)
	sum, err := dst.app.ImportBackup(buf.Bytes())
	require.NoError(t, err)
	// Both fixtures mint the same ids, so the seeded cards and the default
	// profile are already present.
	assert.Equal(t, 1, sum.Cards)
	assert.Equal(t, 1, sum.Profiles)
	assert.Equal(t, 1, sum.Logs)
	assert.Equal(t, 4, sum.Skipped)

	s := dst.app.State()
	_, ok := s.Card(custom.ID)
	assert.True(t, ok)
	require.Len(t, s.History, 1)
	assert.Equal(t, sam.ID, s.History[0].ProfileID)

	again, err := dst.app.ImportBackup(buf.Bytes())
	require.NoError(t, err)
	assert.Zero(t, again.Cards+again.Profiles+again.Logs)

	_, err = dst.app.ImportBackup([]byte(`{"nothing": true}`))
	assert.True(t, IsUnrecognized(err))
}

func TestListenToState(t *testing.T) {
	f := newFixture(t)
	ch := make(chan State, 4)
	unsubscribe := f.app.ListenToState(ch)
	defer unsubscribe()

	initial := <-ch
	assert.Len(t, initial.Cards, 3)

	require.NoError(t, f.app.SetPreferences(store.Preferences{Sound: false, Volume: 3}))
	next := <-ch
	assert.False(t, next.Preferences.Sound)
	assert.Equal(t, 1.0, next.Preferences.Volume)
	assert.Equal(t, next.Preferences, openFixture(t, f.dir).app.State().Preferences)
}
