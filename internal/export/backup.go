package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/lowaak/interval-trainer/internal/store"
	"github.com/lowaak/interval-trainer/internal/workout"
)

const BackupVersion = 2

var ErrNotBackup = errors.New("not a backup document")

// Backup is the full JSON export. Cards and history are kept in their stored
// record shapes so an import goes through the same normalization as a load.
type Backup struct {
	Version         int                `json:"version"`
	ExportedAt      time.Time          `json:"exported_at"`
	ActiveProfileID string             `json:"active_profile_id,omitempty"`
	Cards           []store.CardRecord `json:"cards"`
	Profiles        []store.Profile    `json:"profiles"`
	History         []store.LogRecord  `json:"history"`
}

// Data is what an export reads from the application state.
type Data struct {
	Cards           []workout.Card
	Profiles        []store.Profile
	History         []workout.LogEntry
	ActiveProfileID string
}

func NewBackup(d Data, now time.Time) Backup {
	b := Backup{
		Version:         BackupVersion,
		ExportedAt:      now.UTC(),
		ActiveProfileID: d.ActiveProfileID,
		Cards:           make([]store.CardRecord, 0, len(d.Cards)),
		Profiles:        append([]store.Profile{}, d.Profiles...),
		History:         make([]store.LogRecord, 0, len(d.History)),
	}
	for _, c := range d.Cards {
		b.Cards = append(b.Cards, store.CardToRecord(c))
	}
	for _, e := range d.History {
		b.History = append(b.History, store.LogToRecord(e))
	}
	return b
}

func WriteBackupJSON(w io.Writer, b Backup) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	return nil
}

// ParseBackup reads the current backup shape and the shapes of earlier
// versions: a bare array of cards, and "workouts"/"logs" as collection names.
// Items that do not decode are skipped.
func ParseBackup(data []byte) (Backup, int, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Backup{}, 0, ErrNotBackup
	}

	var b Backup
	skipped := 0
	if data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return Backup{}, 0, fmt.Errorf("%w: %v", ErrNotBackup, err)
		}
		b.Cards, skipped = decodeItems[store.CardRecord](items)
		return b, skipped, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return Backup{}, 0, fmt.Errorf("%w: %v", ErrNotBackup, err)
	}

	known := false
	for _, key := range []string{"version", "exported_at", "active_profile_id"} {
		if raw, ok := doc[key]; ok {
			known = true
			switch key {
			case "version":
				_ = json.Unmarshal(raw, &b.Version)
			case "exported_at":
				_ = json.Unmarshal(raw, &b.ExportedAt)
			case "active_profile_id":
				_ = json.Unmarshal(raw, &b.ActiveProfileID)
			}
		}
	}

	collection := func(names ...string) ([]json.RawMessage, bool) {
		for _, name := range names {
			raw, ok := doc[name]
			if !ok {
				continue
			}
			var items []json.RawMessage
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, true
			}
			return items, true
		}
		return nil, false
	}

	if items, ok := collection("cards", "workouts"); ok {
		known = true
		var n int
		b.Cards, n = decodeItems[store.CardRecord](items)
		skipped += n
	}
	if items, ok := collection("profiles"); ok {
		known = true
		var n int
		b.Profiles, n = decodeItems[store.Profile](items)
		skipped += n
	}
	if items, ok := collection("history", "logs"); ok {
		known = true
		var n int
		b.History, n = decodeItems[store.LogRecord](items)
		skipped += n
	}
	if !known {
		return Backup{}, 0, ErrNotBackup
	}
	return b, skipped, nil
}

func decodeItems[T any](items []json.RawMessage) ([]T, int) {
	out := make([]T, 0, len(items))
	skipped := 0
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			skipped++
			continue
		}
		out = append(out, v)
	}
	return out, skipped
}
