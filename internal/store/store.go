package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lowaak/interval-trainer/internal/workout"
)

const (
	KeyCards         = "cards"
	KeyProfiles      = "profiles"
	KeyActiveProfile = "active_profile"
	KeyHistory       = "history"
	KeyPreferences   = "preferences"
)

// Store loads and saves the application collections on a Backend. Loads never
// fail: unreadable data comes back as an empty collection or defaults and a
// warning is logged.
type Store struct {
	backend Backend
	logger  logrus.FieldLogger
	norm    normalizer
}

func New(backend Backend, logger logrus.FieldLogger) *Store {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Store{
		backend: backend,
		logger:  logger,
		norm:    normalizer{logger: logger, newID: uuid.NewString, now: time.Now},
	}
}

func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) read(key string) (string, bool) {
	raw, ok, err := s.backend.Get(key)
	if err != nil {
		s.logger.Warnf("Store: load %s failed: %v", key, err)
		return "", false
	}
	if !ok {
		s.logger.Debugf("Store: load %s (nothing stored)", key)
	}
	return raw, ok
}

func (s *Store) readItems(key string) []json.RawMessage {
	raw, ok := s.read(key)
	if !ok {
		return nil
	}
	items, err := splitItems(raw)
	if err != nil {
		s.logger.Warnf("Store: load %s failed to parse, starting empty: %v", key, err)
		return nil
	}
	return items
}

func (s *Store) writeItems(key string, items any) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	doc, err := json.MarshalIndent(envelope{Version: SchemaVersion, Items: data}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.backend.Set(key, string(doc)); err != nil {
		s.logger.Errorf("Store: save %s failed: %v", key, err)
		return err
	}
	s.logger.Debugf("Store: save %s", key)
	return nil
}

func (s *Store) LoadCards() []workout.Card {
	cards := s.norm.cards(s.readItems(KeyCards))
	s.logger.Infof("Store: loaded %d cards", len(cards))
	return cards
}

func (s *Store) SaveCards(cards []workout.Card) error {
	recs := make([]CardRecord, len(cards))
	for i, c := range cards {
		recs[i] = CardToRecord(c)
	}
	return s.writeItems(KeyCards, recs)
}

func (s *Store) LoadProfiles() []Profile {
	return s.norm.profiles(s.readItems(KeyProfiles))
}

func (s *Store) SaveProfiles(profiles []Profile) error {
	if profiles == nil {
		profiles = []Profile{}
	}
	return s.writeItems(KeyProfiles, profiles)
}

func (s *Store) LoadActiveProfileID() string {
	raw, ok := s.read(KeyActiveProfile)
	if !ok {
		return ""
	}
	var id string
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		// earlier versions stored the bare id
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(id)
}

func (s *Store) SaveActiveProfileID(id string) error {
	data, _ := json.Marshal(id)
	if err := s.backend.Set(KeyActiveProfile, string(data)); err != nil {
		s.logger.Errorf("Store: save %s failed: %v", KeyActiveProfile, err)
		return err
	}
	return nil
}

// LoadHistory assigns entries without an owner to defaultProfileID.
func (s *Store) LoadHistory(defaultProfileID string) []workout.LogEntry {
	logs := s.norm.logs(s.readItems(KeyHistory), defaultProfileID)
	s.logger.Infof("Store: loaded %d history entries", len(logs))
	return logs
}

func (s *Store) SaveHistory(logs []workout.LogEntry) error {
	recs := make([]LogRecord, len(logs))
	for i, e := range logs {
		recs[i] = LogToRecord(e)
	}
	return s.writeItems(KeyHistory, recs)
}

func (s *Store) LoadPreferences() Preferences {
	raw, ok := s.read(KeyPreferences)
	if !ok {
		return DefaultPreferences()
	}
	return s.norm.preferences(raw)
}

func (s *Store) SavePreferences(p Preferences) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := s.backend.Set(KeyPreferences, string(data)); err != nil {
		s.logger.Errorf("Store: save %s failed: %v", KeyPreferences, err)
		return err
	}
	return nil
}

// NormalizeCardRecords applies the load-time migration to records that did not
// come from a backend, such as an imported backup.
func (s *Store) NormalizeCardRecords(recs []CardRecord) []workout.Card {
	items := make([]json.RawMessage, 0, len(recs))
	for _, r := range recs {
		data, err := json.Marshal(r)
		if err != nil {
			continue
		}
		items = append(items, data)
	}
	return s.norm.cards(items)
}

// NormalizeLogRecords is NormalizeCardRecords for history entries.
func (s *Store) NormalizeLogRecords(recs []LogRecord, defaultProfileID string) []workout.LogEntry {
	items := make([]json.RawMessage, 0, len(recs))
	for _, r := range recs {
		data, err := json.Marshal(r)
		if err != nil {
			continue
		}
		items = append(items, data)
	}
	return s.norm.logs(items, defaultProfileID)
}

// NormalizeProfiles is NormalizeCardRecords for profiles.
func (s *Store) NormalizeProfiles(profiles []Profile) []Profile {
	items := make([]json.RawMessage, 0, len(profiles))
	for _, p := range profiles {
		data, err := json.Marshal(p)
		if err != nil {
			continue
		}
		items = append(items, data)
	}
	return s.norm.profiles(items)
}
