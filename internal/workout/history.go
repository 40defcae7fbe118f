package workout

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrWrongKind is returned when a log is built for a card of the other kind.
var ErrWrongKind = errors.New("card kind does not match log kind")

// Payload is the kind-specific part of a LogEntry. It is implemented only by
// TimeLog and RepLog.
type Payload interface {
	Kind() Kind
	isPayload()
}

// TimeLog records a finished interval run. PlannedTotalSec is the plan length,
// not wall-clock time.
type TimeLog struct {
	PlannedTotalSec int
	Timing          TimingConfig
	PhaseCount      int
	Exercise        string
}

func (TimeLog) Kind() Kind  { return KindTime }
func (TimeLog) isPayload() {}

// RepLog records a finished repetition run.
type RepLog struct {
	TotalReps int
	TotalKg   float64
	Breakdown []ExerciseTotal
	Sets      []RepSet
}

func (RepLog) Kind() Kind  { return KindReps }
func (RepLog) isPayload() {}

// LogEntry is an immutable history record of one completed, saved run.
type LogEntry struct {
	ID        string
	Timestamp time.Time
	ProfileID string
	CardID    string
	CardTitle string
	Payload   Payload
}

// Kind returns the entry's variant, or "" when the payload is missing.
func (e LogEntry) Kind() Kind {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Kind()
}

// LogBuilder creates log entries. Every call yields a new id, so building
// twice for the same run gives two distinct entries.
type LogBuilder struct {
	NewID func() string
	Now   func() time.Time
}

// DefaultLogBuilder uses random UUIDs and the wall clock.
func DefaultLogBuilder() LogBuilder {
	return LogBuilder{NewID: uuid.NewString, Now: time.Now}
}

// BuildTimeLog records a time card run of plannedTotalSec seconds.
func (b LogBuilder) BuildTimeLog(profileID string, card Card, plannedTotalSec int) (LogEntry, error) {
	body, ok := card.Body.(TimeBody)
	if !ok {
		return LogEntry{}, fmt.Errorf("%w: card %s is %q", ErrWrongKind, card.ID, card.Kind())
	}
	return LogEntry{
		ID:        b.id(),
		Timestamp: b.now(),
		ProfileID: profileID,
		CardID:    card.ID,
		CardTitle: card.Title,
		Payload: TimeLog{
			PlannedTotalSec: nonNegative(plannedTotalSec),
			Timing:          body.Timing.Clamped(),
			PhaseCount:      len(BuildPlan(body.Timing)),
			Exercise:        body.Exercise,
		},
	}, nil
}

// BuildRepLog records a repetition card run with totals recomputed from its sets.
func (b LogBuilder) BuildRepLog(profileID string, card Card) (LogEntry, error) {
	body, ok := card.Body.(RepBody)
	if !ok {
		return LogEntry{}, fmt.Errorf("%w: card %s is %q", ErrWrongKind, card.ID, card.Kind())
	}
	totals := ComputeRepTotals(body.Sets)
	sets := make([]RepSet, len(body.Sets))
	copy(sets, body.Sets)
	return LogEntry{
		ID:        b.id(),
		Timestamp: b.now(),
		ProfileID: profileID,
		CardID:    card.ID,
		CardTitle: card.Title,
		Payload: RepLog{
			TotalReps: totals.TotalReps,
			TotalKg:   totals.TotalKg,
			Breakdown: totals.Breakdown,
			Sets:      sets,
		},
	}, nil
}

func (b LogBuilder) id() string {
	if b.NewID == nil {
		return uuid.NewString()
	}
	return b.NewID()
}

func (b LogBuilder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

type guardKey struct {
	cardID    string
	version   int
	profileID string
}

// CommitGuard is the "already saved" flag of a finished run. Binding it to a
// different card, card version or profile clears it.
type CommitGuard struct {
	key   guardKey
	saved bool
}

// Bind associates the guard with a card and profile.
func (g *CommitGuard) Bind(card Card, profileID string) {
	key := guardKey{cardID: card.ID, version: card.Version, profileID: profileID}
	if key != g.key {
		g.key = key
		g.saved = false
	}
}

// Saved reports whether the bound run was already committed.
func (g *CommitGuard) Saved() bool {
	return g.saved
}

// MarkSaved records a successful commit.
func (g *CommitGuard) MarkSaved() {
	g.saved = true
}

// Clear allows the next finished run to be committed.
func (g *CommitGuard) Clear() {
	g.saved = false
}

// IsDuplicateLog reports whether existing already holds an entry with the same
// profile, kind, timestamp and title as e. Used when importing entries, which
// carry their original ids and timestamps.
func IsDuplicateLog(existing []LogEntry, e LogEntry) bool {
	for _, x := range existing {
		if x.ID == e.ID && e.ID != "" {
			return true
		}
		if x.ProfileID == e.ProfileID && x.Kind() == e.Kind() &&
			x.Timestamp.Equal(e.Timestamp) && x.CardTitle == e.CardTitle {
			return true
		}
	}
	return false
}

// AppendLog returns a new slice with e appended; logs is not modified.
func AppendLog(logs []LogEntry, e LogEntry) []LogEntry {
	out := make([]LogEntry, 0, len(logs)+1)
	out = append(out, logs...)
	return append(out, e)
}

// RemoveLog returns a new slice without the entry id, and whether it was found.
func RemoveLog(logs []LogEntry, id string) ([]LogEntry, bool) {
	out := make([]LogEntry, 0, len(logs))
	found := false
	for _, e := range logs {
		if e.ID == id {
			found = true
			continue
		}
		out = append(out, e)
	}
	return out, found
}

// MergeLogs appends the incoming entries that are not duplicates and returns
// the new slice with the number added.
func MergeLogs(existing, incoming []LogEntry) ([]LogEntry, int) {
	out := make([]LogEntry, 0, len(existing)+len(incoming))
	out = append(out, existing...)
	added := 0
	for _, e := range incoming {
		if IsDuplicateLog(out, e) {
			continue
		}
		out = append(out, e)
		added++
	}
	return out, added
}

// LogsForProfile filters entries owned by profileID, keeping order.
func LogsForProfile(logs []LogEntry, profileID string) []LogEntry {
	var out []LogEntry
	for _, e := range logs {
		if e.ProfileID == profileID {
			out = append(out, e)
		}
	}
	return out
}
