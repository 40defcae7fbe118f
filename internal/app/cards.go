package app

import (
	"fmt"
	"strings"

	"github.com/lowaak/interval-trainer/internal/workout"
)

// AddCard validates card and stores it with a new id and version 1.
func (a *App) AddCard(card workout.Card) (workout.Card, error) {
	card.Title = strings.TrimSpace(card.Title)
	if err := workout.ValidateCard(card); err != nil {
		return workout.Card{}, err
	}
	now := a.now().UTC()
	card.ID = a.newID()
	card.Version = 1
	card.CreatedAt = now
	card.UpdatedAt = now

	err := a.update(func(s *State) error {
		cards := make([]workout.Card, 0, len(s.Cards)+1)
		cards = append(cards, s.Cards...)
		cards = append(cards, card)
		if err := a.storage.SaveCards(cards); err != nil {
			return err
		}
		s.Cards = cards
		return nil
	})
	if err != nil {
		return workout.Card{}, err
	}
	a.logger.Infof("App: added card %s %q", card.ID, card.Title)
	return card, nil
}

// UpdateCard replaces the card with the same id and bumps its version, which
// invalidates plans derived from the previous one.
func (a *App) UpdateCard(card workout.Card) (workout.Card, error) {
	card.Title = strings.TrimSpace(card.Title)
	if err := workout.ValidateCard(card); err != nil {
		return workout.Card{}, err
	}

	err := a.update(func(s *State) error {
		idx := -1
		for i, c := range s.Cards {
			if c.ID == card.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("card %s: %w", card.ID, ErrNotFound)
		}
		prev := s.Cards[idx]
		card.Version = prev.Version + 1
		card.CreatedAt = prev.CreatedAt
		card.UpdatedAt = a.now().UTC()

		cards := make([]workout.Card, len(s.Cards))
		copy(cards, s.Cards)
		cards[idx] = card
		if err := a.storage.SaveCards(cards); err != nil {
			return err
		}
		s.Cards = cards
		return nil
	})
	if err != nil {
		return workout.Card{}, err
	}
	a.logger.Infof("App: updated card %s to version %d", card.ID, card.Version)
	return card, nil
}

// DeleteCard removes the card. History entries that reference it are kept.
func (a *App) DeleteCard(id string) error {
	return a.update(func(s *State) error {
		cards := make([]workout.Card, 0, len(s.Cards))
		for _, c := range s.Cards {
			if c.ID != id {
				cards = append(cards, c)
			}
		}
		if len(cards) == len(s.Cards) {
			return fmt.Errorf("card %s: %w", id, ErrNotFound)
		}
		if err := a.storage.SaveCards(cards); err != nil {
			return err
		}
		s.Cards = cards
		a.logger.Infof("App: deleted card %s", id)
		return nil
	})
}

// ImportCards adds cards read from a file. Each gets a new id; cards that do
// not validate are skipped and counted.
func (a *App) ImportCards(cards []workout.Card) (added, skipped int, err error) {
	now := a.now().UTC()
	valid := make([]workout.Card, 0, len(cards))
	for _, c := range cards {
		c.Title = strings.TrimSpace(c.Title)
		if verr := workout.ValidateCard(c); verr != nil {
			a.logger.Warnf("App: skipping imported card %q: %v", c.Title, verr)
			skipped++
			continue
		}
		c.ID = a.newID()
		c.Version = 1
		c.CreatedAt = now
		c.UpdatedAt = now
		valid = append(valid, c)
	}
	if len(valid) == 0 {
		return 0, skipped, nil
	}

	err = a.update(func(s *State) error {
		next := make([]workout.Card, 0, len(s.Cards)+len(valid))
		next = append(next, s.Cards...)
		next = append(next, valid...)
		if err := a.storage.SaveCards(next); err != nil {
			return err
		}
		s.Cards = next
		return nil
	})
	if err != nil {
		return 0, skipped, err
	}
	a.logger.Infof("App: imported %d cards, skipped %d", len(valid), skipped)
	return len(valid), skipped, nil
}
