package app

import (
	"time"

	"github.com/lowaak/interval-trainer/internal/workout"
)

// DefaultCards are offered when the card collection is empty.
func DefaultCards(newID func() string, now time.Time) []workout.Card {
	card := func(title string, body workout.Body) workout.Card {
		return workout.Card{ID: newID(), Title: title, Version: 1, CreatedAt: now, UpdatedAt: now, Body: body}
	}

	fiveByFive := make([]workout.RepSet, 5)
	for i := range fiveByFive {
		fiveByFive[i] = workout.RepSet{Exercise: "Squat", Reps: 5, WeightKg: 60}
	}

	return []workout.Card{
		card("Tabata", workout.TimeBody{Timing: workout.TimingConfig{
			WarmupSec: 60, WorkSec: 20, RestBetweenRepsSec: 10, RepsPerSet: 8,
			Sets: 1, CooldownSec: 60,
		}}),
		card("HIIT 40/20", workout.TimeBody{Timing: workout.TimingConfig{
			WarmupSec: 120, WorkSec: 40, RestBetweenRepsSec: 20, RepsPerSet: 5,
			RestBetweenSetsSec: 60, Sets: 3, CooldownSec: 120,
		}}),
		card("Strength 5x5", workout.RepBody{
			Sets:               fiveByFive,
			RestBetweenSetsSec: 120,
			WarmupSec:          300,
			TargetSetSec:       45,
		}),
	}
}
