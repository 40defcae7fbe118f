package app

import (
	"fmt"
	"sort"

	"github.com/lowaak/interval-trainer/internal/workout"
)

// RecordLog appends a committed run to the history.
func (a *App) RecordLog(entry workout.LogEntry) error {
	err := a.update(func(s *State) error {
		if _, ok := s.Profile(entry.ProfileID); !ok {
			return fmt.Errorf("profile %s: %w", entry.ProfileID, ErrNotFound)
		}
		if workout.IsDuplicateLog(s.History, entry) {
			return ErrDuplicate
		}
		history := workout.AppendLog(s.History, entry)
		if err := a.storage.SaveHistory(history); err != nil {
			return err
		}
		s.History = history
		return nil
	})
	if err != nil {
		return err
	}
	a.logger.Infof("App: recorded %s log %s for %q", entry.Kind(), entry.ID, entry.CardTitle)
	return nil
}

func (a *App) DeleteLog(id string) error {
	return a.update(func(s *State) error {
		history, found := workout.RemoveLog(s.History, id)
		if !found {
			return fmt.Errorf("log %s: %w", id, ErrNotFound)
		}
		if err := a.storage.SaveHistory(history); err != nil {
			return err
		}
		s.History = history
		return nil
	})
}

// ProfileHistory returns the profile's entries, newest first.
func (a *App) ProfileHistory(profileID string) []workout.LogEntry {
	return a.State().ProfileHistory(profileID)
}

func (s State) ProfileHistory(profileID string) []workout.LogEntry {
	entries := workout.LogsForProfile(s.History, profileID)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries
}

// Ranking is one row of the per-profile leaderboard.
type Ranking struct {
	ProfileID  string
	Name       string
	Sessions   int
	PlannedSec int
	Reps       int
	Kg         float64
}

// Rankings totals every profile's history, ordered by planned seconds, then
// lifted kilograms, then name.
func (a *App) Rankings() []Ranking {
	return a.State().Rankings()
}

func (s State) Rankings() []Ranking {
	rows := make([]Ranking, len(s.Profiles))
	index := make(map[string]int, len(s.Profiles))
	for i, p := range s.Profiles {
		rows[i] = Ranking{ProfileID: p.ID, Name: p.Name}
		index[p.ID] = i
	}
	for _, e := range s.History {
		i, ok := index[e.ProfileID]
		if !ok {
			continue
		}
		rows[i].Sessions++
		switch p := e.Payload.(type) {
		case workout.TimeLog:
			rows[i].PlannedSec += p.PlannedTotalSec
		case workout.RepLog:
			rows[i].Reps += p.TotalReps
			rows[i].Kg += p.TotalKg
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].PlannedSec != rows[j].PlannedSec {
			return rows[i].PlannedSec > rows[j].PlannedSec
		}
		if rows[i].Kg != rows[j].Kg {
			return rows[i].Kg > rows[j].Kg
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}
