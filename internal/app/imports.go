package app

import (
	"errors"

	"github.com/lowaak/interval-trainer/internal/export"
	"github.com/lowaak/interval-trainer/internal/share"
	"github.com/lowaak/interval-trainer/internal/store"
	"github.com/lowaak/interval-trainer/internal/workout"
)

// TokenImport describes what a share token added.
type TokenImport struct {
	Type share.Type
	From string
	Card workout.Card
	Log  workout.LogEntry
}

// ImportToken decodes a share token. A card is added as a new card; a log is
// added to the active profile unless the history already has it.
func (a *App) ImportToken(token string) (TokenImport, error) {
	payload, err := share.Decode(token)
	if err != nil {
		return TokenImport{}, err
	}
	res := TokenImport{Type: payload.Type, From: payload.Name}

	switch payload.Type {
	case share.TypeCard:
		card, err := a.AddCard(*payload.Card)
		if err != nil {
			return TokenImport{}, err
		}
		res.Card = card
	case share.TypeLog:
		entry := *payload.Log
		entry.ProfileID = a.State().ActiveProfileID
		if entry.ID == "" {
			entry.ID = a.newID()
		}
		if err := a.RecordLog(entry); err != nil {
			return TokenImport{}, err
		}
		res.Log = entry
	default:
		return TokenImport{}, share.ErrUnrecognized
	}
	a.logger.Infof("App: imported shared %s from %q", res.Type, res.From)
	return res, nil
}

// ImportSummary counts what a backup import changed.
type ImportSummary struct {
	Cards    int
	Profiles int
	Logs     int
	Skipped  int
}

// ImportBackup merges a backup document into the current state. Records are
// normalized the same way a load does; cards and profiles already present by
// id and duplicate history entries are skipped. Entries of unknown profiles
// move to the active profile.
func (a *App) ImportBackup(data []byte) (ImportSummary, error) {
	b, skipped, err := export.ParseBackup(data)
	if err != nil {
		return ImportSummary{}, err
	}
	sum := ImportSummary{Skipped: skipped}

	err = a.update(func(s *State) error {
		cards := append([]workout.Card{}, s.Cards...)
		for _, c := range a.storage.NormalizeCardRecords(b.Cards) {
			if _, ok := s.Card(c.ID); ok {
				sum.Skipped++
				continue
			}
			cards = append(cards, c)
			sum.Cards++
		}

		profiles := append([]store.Profile{}, s.Profiles...)
		known := make(map[string]bool, len(profiles))
		for _, p := range profiles {
			known[p.ID] = true
		}
		for _, p := range a.storage.NormalizeProfiles(b.Profiles) {
			if known[p.ID] {
				sum.Skipped++
				continue
			}
			known[p.ID] = true
			profiles = append(profiles, p)
			sum.Profiles++
		}

		incoming := a.storage.NormalizeLogRecords(b.History, s.ActiveProfileID)
		for i := range incoming {
			if !known[incoming[i].ProfileID] {
				incoming[i].ProfileID = s.ActiveProfileID
			}
		}
		history, added := workout.MergeLogs(s.History, incoming)
		sum.Logs = added
		sum.Skipped += len(incoming) - added

		if sum.Cards > 0 {
			if err := a.storage.SaveCards(cards); err != nil {
				return err
			}
		}
		if sum.Profiles > 0 {
			if err := a.storage.SaveProfiles(profiles); err != nil {
				return err
			}
		}
		if sum.Logs > 0 {
			if err := a.storage.SaveHistory(history); err != nil {
				return err
			}
		}
		s.Cards = cards
		s.Profiles = profiles
		s.History = history
		return nil
	})
	if err != nil {
		return ImportSummary{}, err
	}
	a.logger.Infof("App: backup import added %d cards, %d profiles, %d logs; skipped %d",
		sum.Cards, sum.Profiles, sum.Logs, sum.Skipped)
	return sum, nil
}

// IsUnrecognized reports whether err means the input was not a token or backup.
func IsUnrecognized(err error) bool {
	return errors.Is(err, share.ErrUnrecognized) || errors.Is(err, export.ErrNotBackup)
}
