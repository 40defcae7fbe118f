package app

import (
	"fmt"
	"strings"

	"github.com/lowaak/interval-trainer/internal/store"
	"github.com/lowaak/interval-trainer/internal/workout"
)

func (a *App) AddProfile(name string) (store.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return store.Profile{}, ErrBlankName
	}
	p := store.Profile{ID: a.newID(), Name: name, CreatedAt: a.now().UTC()}
	err := a.update(func(s *State) error {
		profiles := make([]store.Profile, 0, len(s.Profiles)+1)
		profiles = append(profiles, s.Profiles...)
		profiles = append(profiles, p)
		if err := a.storage.SaveProfiles(profiles); err != nil {
			return err
		}
		s.Profiles = profiles
		return nil
	})
	if err != nil {
		return store.Profile{}, err
	}
	a.logger.Infof("App: added profile %s %q", p.ID, p.Name)
	return p, nil
}

func (a *App) RenameProfile(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankName
	}
	return a.update(func(s *State) error {
		profiles := make([]store.Profile, len(s.Profiles))
		copy(profiles, s.Profiles)
		found := false
		for i := range profiles {
			if profiles[i].ID == id {
				profiles[i].Name = name
				found = true
			}
		}
		if !found {
			return fmt.Errorf("profile %s: %w", id, ErrNotFound)
		}
		if err := a.storage.SaveProfiles(profiles); err != nil {
			return err
		}
		s.Profiles = profiles
		return nil
	})
}

// DeleteProfile removes a profile together with its history. When the active
// profile is removed the first remaining one becomes active.
func (a *App) DeleteProfile(id string) error {
	return a.update(func(s *State) error {
		if _, ok := s.Profile(id); !ok {
			return fmt.Errorf("profile %s: %w", id, ErrNotFound)
		}
		if len(s.Profiles) == 1 {
			return ErrLastProfile
		}

		profiles := make([]store.Profile, 0, len(s.Profiles)-1)
		for _, p := range s.Profiles {
			if p.ID != id {
				profiles = append(profiles, p)
			}
		}
		history := make([]workout.LogEntry, 0, len(s.History))
		for _, e := range s.History {
			if e.ProfileID != id {
				history = append(history, e)
			}
		}
		active := s.ActiveProfileID
		if active == id {
			active = profiles[0].ID
		}

		if err := a.storage.SaveHistory(history); err != nil {
			return err
		}
		if err := a.storage.SaveProfiles(profiles); err != nil {
			return err
		}
		if active != s.ActiveProfileID {
			if err := a.storage.SaveActiveProfileID(active); err != nil {
				return err
			}
		}
		a.logger.Infof("App: deleted profile %s and %d history entries", id, len(s.History)-len(history))
		s.Profiles = profiles
		s.History = history
		s.ActiveProfileID = active
		return nil
	})
}

func (a *App) SetActiveProfile(id string) error {
	return a.update(func(s *State) error {
		if _, ok := s.Profile(id); !ok {
			return fmt.Errorf("profile %s: %w", id, ErrNotFound)
		}
		if s.ActiveProfileID == id {
			return nil
		}
		if err := a.storage.SaveActiveProfileID(id); err != nil {
			return err
		}
		s.ActiveProfileID = id
		return nil
	})
}

// NextProfile activates the profile after the active one, wrapping around.
func (a *App) NextProfile() (store.Profile, error) {
	var next store.Profile
	err := a.update(func(s *State) error {
		idx := 0
		for i, p := range s.Profiles {
			if p.ID == s.ActiveProfileID {
				idx = i
				break
			}
		}
		next = s.Profiles[(idx+1)%len(s.Profiles)]
		if next.ID == s.ActiveProfileID {
			return nil
		}
		if err := a.storage.SaveActiveProfileID(next.ID); err != nil {
			return err
		}
		s.ActiveProfileID = next.ID
		return nil
	})
	return next, err
}
