package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/lowaak/interval-trainer/internal/store"
	"github.com/lowaak/interval-trainer/internal/workout"
)

var HistoryCSVHeader = []string{
	"date", "profile", "card", "kind",
	"planned", "planned_sec", "phases",
	"total_reps", "total_kg", "breakdown",
}

// WriteHistoryCSV writes one row per entry. Cells with delimiters, quotes or
// newlines are quoted.
func WriteHistoryCSV(w io.Writer, entries []workout.LogEntry, profiles []store.Profile) error {
	names := make(map[string]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.Name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(HistoryCSVHeader); err != nil {
		return err
	}
	for _, e := range entries {
		profile := names[e.ProfileID]
		if profile == "" {
			profile = e.ProfileID
		}
		row := []string{
			e.Timestamp.UTC().Format(time.RFC3339),
			profile,
			e.CardTitle,
			string(e.Kind()),
			"", "", "", "", "", "",
		}
		switch p := e.Payload.(type) {
		case workout.TimeLog:
			row[4] = workout.FormatClock(p.PlannedTotalSec)
			row[5] = strconv.Itoa(p.PlannedTotalSec)
			row[6] = strconv.Itoa(p.PhaseCount)
		case workout.RepLog:
			row[7] = strconv.Itoa(p.TotalReps)
			row[8] = strconv.FormatFloat(p.TotalKg, 'f', -1, 64)
			row[9] = breakdownCell(p.Breakdown)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func breakdownCell(totals []workout.ExerciseTotal) string {
	parts := make([]string, 0, len(totals))
	for _, t := range totals {
		parts = append(parts, fmt.Sprintf("%s: %d sets, %d reps, %s kg",
			t.Exercise, t.Sets, t.Reps, strconv.FormatFloat(t.Kg, 'f', -1, 64)))
	}
	return strings.Join(parts, "; ")
}
