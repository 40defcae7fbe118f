package store

import (
	"encoding/json"
	"time"

	"github.com/lowaak/interval-trainer/internal/workout"
)

// SchemaVersion is written into every collection envelope. Loads accept any
// version, including bare arrays written before envelopes existed.
const SchemaVersion = 2

type envelope struct {
	Version int             `json:"version"`
	Items   json.RawMessage `json:"items"`
}

// Profile is a person whose history is kept separately.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Preferences are the user's global settings.
type Preferences struct {
	Sound        bool    `json:"sound"`
	Vibration    bool    `json:"vibration"`
	Volume       float64 `json:"volume"`
	FinalSeconds bool    `json:"final_seconds"`
}

func DefaultPreferences() Preferences {
	return Preferences{Sound: true, Vibration: true, Volume: 0.8, FinalSeconds: true}
}

// CardRecord is the stored shape of a card. Every field is optional on load.
type CardRecord struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind,omitempty"`
	Title     string    `json:"title,omitempty"`
	Name      string    `json:"name,omitempty"`
	Version   int       `json:"version,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Timing    *workout.TimingConfig `json:"timing,omitempty"`
	Exercise  string                `json:"exercise,omitempty"`
	Overrides []workout.Exercise    `json:"overrides,omitempty"`

	// An array of sets on rep cards; a set count on legacy flat time cards.
	Sets               json.RawMessage `json:"sets,omitempty"`
	RestBetweenSetsSec int             `json:"rest_between_sets_sec,omitempty"`
	WarmupSec          int             `json:"warmup_sec,omitempty"`
	CooldownSec        int             `json:"cooldown_sec,omitempty"`
	TargetSetSec       int             `json:"target_set_sec,omitempty"`

	// legacy flat timing
	WorkSec            int `json:"work_sec,omitempty"`
	RestBetweenRepsSec int `json:"rest_between_reps_sec,omitempty"`
	RepsPerSet         int `json:"reps_per_set,omitempty"`
}

// RepSetRecord tolerates a legacy "name" key for the exercise.
type RepSetRecord struct {
	Exercise string  `json:"exercise,omitempty"`
	Name     string  `json:"name,omitempty"`
	Reps     int     `json:"reps"`
	WeightKg float64 `json:"weight_kg"`
}

func CardToRecord(c workout.Card) CardRecord {
	rec := CardRecord{
		ID:        c.ID,
		Kind:      string(c.Kind()),
		Title:     c.Title,
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	switch body := c.Body.(type) {
	case workout.TimeBody:
		timing := body.Timing
		rec.Timing = &timing
		rec.Exercise = body.Exercise
		rec.Overrides = body.Overrides
	case workout.RepBody:
		sets := make([]RepSetRecord, len(body.Sets))
		for i, s := range body.Sets {
			sets[i] = RepSetRecord{Exercise: s.Exercise, Reps: s.Reps, WeightKg: s.WeightKg}
		}
		rec.Sets, _ = json.Marshal(sets)
		rec.RestBetweenSetsSec = body.RestBetweenSetsSec
		rec.WarmupSec = body.WarmupSec
		rec.CooldownSec = body.CooldownSec
		rec.TargetSetSec = body.TargetSetSec
	}
	return rec
}

// LogRecord is the stored shape of a history entry.
type LogRecord struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	ProfileID string    `json:"profile_id,omitempty"`
	CardID    string    `json:"card_id,omitempty"`
	CardTitle string    `json:"card_title,omitempty"`

	PlannedTotalSec int                   `json:"planned_total_sec,omitempty"`
	Timing          *workout.TimingConfig `json:"timing,omitempty"`
	PhaseCount      int                   `json:"phase_count,omitempty"`
	Exercise        string                `json:"exercise,omitempty"`

	TotalReps int                     `json:"total_reps,omitempty"`
	TotalKg   float64                 `json:"total_kg,omitempty"`
	Breakdown []workout.ExerciseTotal `json:"breakdown,omitempty"`
	Sets      []workout.RepSet        `json:"sets,omitempty"`

	// legacy name of planned_total_sec
	DurationSec int `json:"duration_sec,omitempty"`
}

func LogToRecord(e workout.LogEntry) LogRecord {
	rec := LogRecord{
		ID:        e.ID,
		Kind:      string(e.Kind()),
		Timestamp: e.Timestamp,
		ProfileID: e.ProfileID,
		CardID:    e.CardID,
		CardTitle: e.CardTitle,
	}
	switch p := e.Payload.(type) {
	case workout.TimeLog:
		timing := p.Timing
		rec.PlannedTotalSec = p.PlannedTotalSec
		rec.Timing = &timing
		rec.PhaseCount = p.PhaseCount
		rec.Exercise = p.Exercise
	case workout.RepLog:
		rec.TotalReps = p.TotalReps
		rec.TotalKg = p.TotalKg
		rec.Breakdown = p.Breakdown
		rec.Sets = p.Sets
	}
	return rec
}

type preferencesRecord struct {
	Sound        *bool    `json:"sound"`
	Vibration    *bool    `json:"vibration"`
	Volume       *float64 `json:"volume"`
	FinalSeconds *bool    `json:"final_seconds"`
}
