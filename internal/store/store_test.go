package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/interval-trainer/internal/workout"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	file, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	sqlite, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Backend{"file": file, "sqlite": sqlite}
}

func newTestStore(t *testing.T, b Backend) *Store {
	t.Helper()
	logger, _ := test.NewNullLogger()
	s := New(b, logger)
	n := 0
	s.norm.newID = func() string {
		n++
		return fmt.Sprintf("minted-%d", n)
	}
	s.norm.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func fakeCards(faker *gofakeit.Faker, n int) []workout.Card {
	cards := make([]workout.Card, 0, n)
	for i := 0; i < n; i++ {
		created := faker.DateRange(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).UTC()
		card := workout.Card{
			ID:        faker.UUID(),
			Title:     faker.HipsterWord() + " " + faker.HackerVerb(),
			Version:   faker.IntRange(1, 20),
			CreatedAt: created,
			UpdatedAt: created.Add(time.Duration(faker.IntRange(0, 1000)) * time.Minute),
		}
		if faker.Bool() {
			sets := faker.IntRange(1, 10)
			card.Body = workout.TimeBody{
				Timing: workout.TimingConfig{
					WarmupSec:          faker.IntRange(0, 300),
					WorkSec:            faker.IntRange(1, 120),
					RestBetweenRepsSec: faker.IntRange(0, 60),
					RepsPerSet:         faker.IntRange(1, 12),
					RestBetweenSetsSec: faker.IntRange(0, 180),
					Sets:               sets,
					CooldownSec:        faker.IntRange(0, 300),
				},
				Exercise:  faker.HipsterWord(),
				Overrides: workout.NormalizeOverrides([]workout.Exercise{{Name: faker.HipsterWord()}}, sets),
			}
		} else {
			repSets := make([]workout.RepSet, faker.IntRange(1, 6))
			for j := range repSets {
				repSets[j] = workout.RepSet{
					Exercise: faker.HipsterWord(),
					Reps:     faker.IntRange(0, 20),
					WeightKg: float64(faker.IntRange(0, 400)) / 4,
				}
			}
			card.Body = workout.RepBody{
				Sets:               repSets,
				RestBetweenSetsSec: faker.IntRange(0, 180),
				WarmupSec:          faker.IntRange(0, 120),
				CooldownSec:        faker.IntRange(0, 120),
				TargetSetSec:       faker.IntRange(0, 90),
			}
		}
		cards = append(cards, card)
	}
	return cards
}

func assertSameCards(t *testing.T, want, got []workout.Card) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Title, got[i].Title)
		assert.Equal(t, want[i].Version, got[i].Version)
		assert.True(t, want[i].CreatedAt.Equal(got[i].CreatedAt), "created_at of %s", want[i].ID)
		assert.True(t, want[i].UpdatedAt.Equal(got[i].UpdatedAt), "updated_at of %s", want[i].ID)
		assert.Equal(t, want[i].Body, got[i].Body)
	}
}

func TestStore_CardsRoundTrip(t *testing.T) {
	faker := gofakeit.New(7)
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t, b)
			cards := fakeCards(faker, 25)

			require.NoError(t, s.SaveCards(cards))
			assertSameCards(t, cards, s.LoadCards())

			require.NoError(t, s.SaveCards(cards[:3]))
			assertSameCards(t, cards[:3], s.LoadCards())
		})
	}
}

func TestStore_EmptyBackend(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t, b)
			assert.Empty(t, s.LoadCards())
			assert.Empty(t, s.LoadProfiles())
			assert.Empty(t, s.LoadHistory("p"))
			assert.Equal(t, "", s.LoadActiveProfileID())
			assert.Equal(t, DefaultPreferences(), s.LoadPreferences())
		})
	}
}

func TestStore_HistoryRoundTrip(t *testing.T) {
	faker := gofakeit.New(11)
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t, b)
			builder := workout.LogBuilder{
				NewID: faker.UUID,
				Now:   func() time.Time { return faker.Date().UTC().Truncate(time.Second) },
			}

			var logs []workout.LogEntry
			for _, card := range fakeCards(faker, 10) {
				var entry workout.LogEntry
				var err error
				switch card.Body.(type) {
				case workout.TimeBody:
					entry, err = builder.BuildTimeLog("p1", card, workout.PlanForCard(card).TotalSec())
				case workout.RepBody:
					entry, err = builder.BuildRepLog("p2", card)
				}
				require.NoError(t, err)
				logs = append(logs, entry)
			}

			require.NoError(t, s.SaveHistory(logs))
			got := s.LoadHistory("ignored")
			require.Len(t, got, len(logs))
			for i := range logs {
				assert.Equal(t, logs[i].ID, got[i].ID)
				assert.Equal(t, logs[i].ProfileID, got[i].ProfileID)
				assert.True(t, logs[i].Timestamp.Equal(got[i].Timestamp))
				assert.Equal(t, logs[i].Kind(), got[i].Kind())
				assert.Equal(t, logs[i].Payload, got[i].Payload)
			}
		})
	}
}

func TestStore_ProfilesAndActive(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t, b)
			created := time.Date(2023, 5, 5, 0, 0, 0, 0, time.UTC)
			profiles := []Profile{{ID: "a", Name: "Alex", CreatedAt: created}, {ID: "b", Name: "Sam", CreatedAt: created}}

			require.NoError(t, s.SaveProfiles(profiles))
			require.NoError(t, s.SaveActiveProfileID("b"))

			got := s.LoadProfiles()
			require.Len(t, got, 2)
			assert.Equal(t, "Sam", got[1].Name)
			assert.Equal(t, "b", s.LoadActiveProfileID())
		})
	}
}

func TestStore_Preferences(t *testing.T) {
	file, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	s := newTestStore(t, file)

	prefs := Preferences{Sound: false, Vibration: true, Volume: 0.3, FinalSeconds: false}
	require.NoError(t, s.SavePreferences(prefs))
	assert.Equal(t, prefs, s.LoadPreferences())

	require.NoError(t, file.Set(KeyPreferences, `{"volume": 7}`))
	got := s.LoadPreferences()
	assert.Equal(t, 1.0, got.Volume)
	assert.True(t, got.Sound, "missing fields take defaults")

	require.NoError(t, file.Set(KeyPreferences, `not json`))
	assert.Equal(t, DefaultPreferences(), s.LoadPreferences())
}

func TestStore_MalformedCollection(t *testing.T) {
	file, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	logger, hook := test.NewNullLogger()
	s := New(file, logger)

	require.NoError(t, file.Set(KeyCards, `{"version": 2, "items": [ {"id": `))
	assert.Empty(t, s.LoadCards())
	assert.NotEmpty(t, hook.AllEntries())

	require.NoError(t, file.Set(KeyHistory, `"just a string"`))
	assert.Empty(t, s.LoadHistory("p"))
}

func TestStore_ActiveProfileLegacyBareValue(t *testing.T) {
	file, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	s := newTestStore(t, file)

	require.NoError(t, file.Set(KeyActiveProfile, `profile-7`))
	assert.Equal(t, "profile-7", s.LoadActiveProfileID())
}

func TestBackend_InvalidKey(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, _, err := b.Get("../etc/passwd")
			assert.ErrorIs(t, err, ErrInvalidKey)
			assert.ErrorIs(t, b.Set("Bad Key", "x"), ErrInvalidKey)
		})
	}
}

func TestOpenBackend(t *testing.T) {
	b, err := OpenBackend(KindFile, t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, b)

	b, err = OpenBackend(KindSQLite, t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &SQLiteBackend{}, b)
	require.NoError(t, b.Close())

	_, err = OpenBackend("redis", t.TempDir())
	assert.Error(t, err)
}

func TestSQLiteBackend_Overwrite(t *testing.T) {
	dir := t.TempDir()
	b, err := OpenSQLite(dir)
	require.NoError(t, err)

	require.NoError(t, b.Set("cards", "one"))
	require.NoError(t, b.Set("cards", "two"))
	require.NoError(t, b.Close())

	b, err = OpenSQLite(dir)
	require.NoError(t, err)
	defer b.Close()
	v, ok, err := b.Get("cards")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)
}
