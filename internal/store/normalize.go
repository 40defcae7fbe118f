package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lowaak/interval-trainer/internal/workout"
)

const (
	UntitledCard   = "Untitled workout"
	DefaultProfile = "Default"
)

// normalizer turns stored records into domain values. It runs once per
// collection at load time; a record it cannot repair is dropped with a warning.
type normalizer struct {
	logger logrus.FieldLogger
	newID  func() string
	now    func() time.Time
}

// splitItems accepts an envelope or a bare array and returns the raw items.
func splitItems(raw string) ([]json.RawMessage, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '{' {
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, err
		}
		data = env.Items
		if len(bytes.TrimSpace(data)) == 0 || string(data) == "null" {
			return nil, nil
		}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (n normalizer) cards(items []json.RawMessage) []workout.Card {
	cards := make([]workout.Card, 0, len(items))
	seen := make(map[string]bool)
	for i, item := range items {
		var rec CardRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			n.logger.Warnf("Store: dropping card #%d: %v", i, err)
			continue
		}
		card, err := n.card(rec)
		if err != nil {
			n.logger.Warnf("Store: dropping card #%d (%s): %v", i, rec.ID, err)
			continue
		}
		if seen[card.ID] {
			card.ID = n.newID()
			n.logger.Warnf("Store: card #%d has a duplicate id, assigned %s", i, card.ID)
		}
		seen[card.ID] = true
		cards = append(cards, card)
	}
	return cards
}

func (n normalizer) card(rec CardRecord) (workout.Card, error) {
	card := workout.Card{
		ID:        strings.TrimSpace(rec.ID),
		Title:     strings.TrimSpace(rec.Title),
		Version:   rec.Version,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if card.ID == "" {
		card.ID = n.newID()
	}
	if card.Title == "" {
		card.Title = strings.TrimSpace(rec.Name)
	}
	if card.Title == "" {
		card.Title = UntitledCard
	}
	if card.Version < 1 {
		card.Version = 1
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = n.now()
	}
	if card.UpdatedAt.IsZero() || card.UpdatedAt.Before(card.CreatedAt) {
		card.UpdatedAt = card.CreatedAt
	}

	setList, setCount, err := decodeSets(rec.Sets)
	if err != nil {
		return workout.Card{}, err
	}

	kind := workout.Kind(strings.ToLower(strings.TrimSpace(rec.Kind)))
	if kind == "" {
		kind = inferCardKind(rec, setList != nil)
	}

	switch kind {
	case workout.KindTime:
		timing := workout.TimingConfig{
			WarmupSec:          rec.WarmupSec,
			WorkSec:            rec.WorkSec,
			RestBetweenRepsSec: rec.RestBetweenRepsSec,
			RepsPerSet:         rec.RepsPerSet,
			RestBetweenSetsSec: rec.RestBetweenSetsSec,
			Sets:               setCount,
			CooldownSec:        rec.CooldownSec,
		}
		if rec.Timing != nil {
			timing = *rec.Timing
		}
		timing = timing.Clamped()
		body := workout.TimeBody{Timing: timing, Exercise: strings.TrimSpace(rec.Exercise)}
		if len(rec.Overrides) > 0 {
			body.Overrides = workout.NormalizeOverrides(rec.Overrides, timing.Sets)
		}
		card.Body = body
	case workout.KindReps:
		sets := make([]workout.RepSet, 0, len(setList))
		for _, s := range setList {
			name := strings.TrimSpace(s.Exercise)
			if name == "" {
				name = strings.TrimSpace(s.Name)
			}
			set := workout.RepSet{Exercise: name, Reps: s.Reps, WeightKg: s.WeightKg}
			if set.Reps < 0 {
				set.Reps = 0
			}
			if set.WeightKg < 0 {
				set.WeightKg = 0
			}
			sets = append(sets, set)
		}
		card.Body = workout.RepBody{
			Sets:               sets,
			RestBetweenSetsSec: max(rec.RestBetweenSetsSec, 0),
			WarmupSec:          max(rec.WarmupSec, 0),
			CooldownSec:        max(rec.CooldownSec, 0),
			TargetSetSec:       max(rec.TargetSetSec, 0),
		}
	default:
		return workout.Card{}, fmt.Errorf("unknown kind %q", kind)
	}
	return card, nil
}

// decodeSets reads "sets" as either a list of rep sets or a legacy set count.
func decodeSets(raw json.RawMessage) ([]RepSetRecord, int, error) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || string(data) == "null" {
		return nil, 0, nil
	}
	if data[0] == '[' {
		var sets []RepSetRecord
		if err := json.Unmarshal(data, &sets); err != nil {
			return nil, 0, fmt.Errorf("sets: %w", err)
		}
		if sets == nil {
			sets = []RepSetRecord{}
		}
		return sets, 0, nil
	}
	var count float64
	if err := json.Unmarshal(data, &count); err != nil {
		return nil, 0, fmt.Errorf("sets: %w", err)
	}
	return nil, int(count), nil
}

// inferCardKind classifies cards written before the kind discriminator.
func inferCardKind(rec CardRecord, hasSetList bool) workout.Kind {
	switch {
	case rec.Timing != nil || rec.WorkSec > 0 || rec.Exercise != "":
		return workout.KindTime
	case hasSetList:
		return workout.KindReps
	default:
		return ""
	}
}

func (n normalizer) profiles(items []json.RawMessage) []Profile {
	profiles := make([]Profile, 0, len(items))
	seen := make(map[string]bool)
	for i, item := range items {
		var p Profile
		if err := json.Unmarshal(item, &p); err != nil {
			n.logger.Warnf("Store: dropping profile #%d: %v", i, err)
			continue
		}
		p.ID = strings.TrimSpace(p.ID)
		p.Name = strings.TrimSpace(p.Name)
		if p.ID == "" {
			p.ID = n.newID()
		}
		if seen[p.ID] {
			n.logger.Warnf("Store: dropping profile #%d: duplicate id %s", i, p.ID)
			continue
		}
		seen[p.ID] = true
		if p.Name == "" {
			p.Name = fmt.Sprintf("Profile %d", len(profiles)+1)
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = n.now()
		}
		profiles = append(profiles, p)
	}
	return profiles
}

func (n normalizer) logs(items []json.RawMessage, defaultProfileID string) []workout.LogEntry {
	logs := make([]workout.LogEntry, 0, len(items))
	for i, item := range items {
		var rec LogRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			n.logger.Warnf("Store: dropping log #%d: %v", i, err)
			continue
		}
		entry, err := n.log(rec, defaultProfileID)
		if err != nil {
			n.logger.Warnf("Store: dropping log #%d (%s): %v", i, rec.ID, err)
			continue
		}
		if workout.IsDuplicateLog(logs, entry) {
			n.logger.Warnf("Store: dropping log #%d: duplicate of an earlier entry", i)
			continue
		}
		logs = append(logs, entry)
	}
	return logs
}

func (n normalizer) log(rec LogRecord, defaultProfileID string) (workout.LogEntry, error) {
	if rec.Timestamp.IsZero() {
		return workout.LogEntry{}, fmt.Errorf("missing timestamp")
	}
	entry := workout.LogEntry{
		ID:        strings.TrimSpace(rec.ID),
		Timestamp: rec.Timestamp,
		ProfileID: strings.TrimSpace(rec.ProfileID),
		CardID:    rec.CardID,
		CardTitle: strings.TrimSpace(rec.CardTitle),
	}
	if entry.ID == "" {
		entry.ID = n.newID()
	}
	if entry.ProfileID == "" {
		entry.ProfileID = defaultProfileID
	}
	if entry.CardTitle == "" {
		entry.CardTitle = UntitledCard
	}

	kind := workout.Kind(strings.ToLower(strings.TrimSpace(rec.Kind)))
	if kind == "" {
		if len(rec.Sets) > 0 || len(rec.Breakdown) > 0 || rec.TotalReps > 0 {
			kind = workout.KindReps
		} else {
			kind = workout.KindTime
		}
	}

	switch kind {
	case workout.KindTime:
		planned := rec.PlannedTotalSec
		if planned == 0 {
			planned = rec.DurationSec
		}
		payload := workout.TimeLog{
			PlannedTotalSec: max(planned, 0),
			PhaseCount:      max(rec.PhaseCount, 0),
			Exercise:        rec.Exercise,
		}
		if rec.Timing != nil {
			payload.Timing = rec.Timing.Clamped()
		}
		entry.Payload = payload
	case workout.KindReps:
		payload := workout.RepLog{
			TotalReps: max(rec.TotalReps, 0),
			TotalKg:   max(rec.TotalKg, 0),
			Breakdown: rec.Breakdown,
			Sets:      rec.Sets,
		}
		if len(rec.Sets) > 0 {
			totals := workout.ComputeRepTotals(rec.Sets)
			payload.TotalReps = totals.TotalReps
			payload.TotalKg = totals.TotalKg
			payload.Breakdown = totals.Breakdown
		}
		entry.Payload = payload
	default:
		return workout.LogEntry{}, fmt.Errorf("unknown kind %q", kind)
	}
	return entry, nil
}

func (n normalizer) preferences(raw string) Preferences {
	prefs := DefaultPreferences()
	var rec preferencesRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		n.logger.Warnf("Store: preferences unreadable, using defaults: %v", err)
		return prefs
	}
	if rec.Sound != nil {
		prefs.Sound = *rec.Sound
	}
	if rec.Vibration != nil {
		prefs.Vibration = *rec.Vibration
	}
	if rec.FinalSeconds != nil {
		prefs.FinalSeconds = *rec.FinalSeconds
	}
	if rec.Volume != nil {
		prefs.Volume = min(max(*rec.Volume, 0), 1)
	}
	return prefs
}

var standalone = normalizer{logger: logrus.StandardLogger(), newID: uuid.NewString, now: time.Now}

// CardFromRecord normalizes a single record that arrived outside a collection,
// such as a share token.
func CardFromRecord(rec CardRecord) (workout.Card, error) {
	return standalone.card(rec)
}

// LogFromRecord is CardFromRecord for history entries.
func LogFromRecord(rec LogRecord, defaultProfileID string) (workout.LogEntry, error) {
	return standalone.log(rec, defaultProfileID)
}
