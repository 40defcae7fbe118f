package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rivo/tview"

	"github.com/lowaak/interval-trainer/internal/app"
	"github.com/lowaak/interval-trainer/internal/session"
	"github.com/lowaak/interval-trainer/internal/store"
	"github.com/lowaak/interval-trainer/internal/workout"
)

// formatCardSummary is the secondary line of a card in the card list.
func formatCardSummary(card workout.Card) string {
	switch body := card.Body.(type) {
	case workout.TimeBody:
		t := body.Timing.Clamped()
		return fmt.Sprintf("Intervals | %d x %d | %s",
			t.Sets, t.RepsPerSet, workout.FormatClock(workout.PlanForCard(card).TotalSec()))
	case workout.RepBody:
		totals := workout.ComputeRepTotals(body.Sets)
		return fmt.Sprintf("Reps | %d sets | %d reps", len(body.Sets), totals.TotalReps)
	}
	return ""
}

// formatCardDetails previews a card: timing and phase list for an interval
// card, set list and totals for a rep card.
func formatCardDetails(card workout.Card) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  [yellow]%s[white]  [gray]v%d[white]\n\n", tview.Escape(card.Title), card.Version)

	switch body := card.Body.(type) {
	case workout.TimeBody:
		t := body.Timing.Clamped()
		plan := workout.PlanForCard(card)
		if body.Exercise != "" {
			fmt.Fprintf(&b, "  [gray]Exercise:[white] %s\n", tview.Escape(body.Exercise))
		}
		fmt.Fprintf(&b, "  [gray]Warmup:[white] %s  [gray]Work:[white] %s  [gray]Rest:[white] %s\n",
			workout.FormatClock(t.WarmupSec), workout.FormatClock(t.WorkSec), workout.FormatClock(t.RestBetweenRepsSec))
		fmt.Fprintf(&b, "  [gray]Reps:[white] %d  [gray]Sets:[white] %d  [gray]Set rest:[white] %s  [gray]Cooldown:[white] %s\n",
			t.RepsPerSet, t.Sets, workout.FormatClock(t.RestBetweenSetsSec), workout.FormatClock(t.CooldownSec))
		fmt.Fprintf(&b, "  [gray]Total:[white] %s in %d phases\n\n", workout.FormatClock(plan.TotalSec()), len(plan))

		b.WriteString("  [gray]Structure:[white]\n")
		for i, p := range plan {
			fmt.Fprintf(&b, "    %2d. %-22s %s\n", i+1, tview.Escape(p.Label), workout.FormatClock(p.DurationSec))
		}

	case workout.RepBody:
		totals := workout.ComputeRepTotals(body.Sets)
		if body.WarmupSec > 0 {
			fmt.Fprintf(&b, "  [gray]Warmup:[white] %s\n", workout.FormatClock(body.WarmupSec))
		}
		fmt.Fprintf(&b, "  [gray]Set rest:[white] %s", workout.FormatClock(body.RestBetweenSetsSec))
		if body.TargetSetSec > 0 {
			fmt.Fprintf(&b, "  [gray]Target set:[white] %s", workout.FormatClock(body.TargetSetSec))
		}
		b.WriteString("\n")
		if body.CooldownSec > 0 {
			fmt.Fprintf(&b, "  [gray]Cooldown:[white] %s\n", workout.FormatClock(body.CooldownSec))
		}
		b.WriteString("\n  [gray]Sets:[white]\n")
		for i, set := range body.Sets {
			fmt.Fprintf(&b, "    %2d. %-18s %3d x %s kg\n", i+1, tview.Escape(exerciseName(set.Exercise)), set.Reps, formatKg(set.WeightKg))
		}
		fmt.Fprintf(&b, "\n  [gray]Total:[white] %d reps, %s kg\n", totals.TotalReps, formatKg(totals.TotalKg))

	default:
		b.WriteString("  [gray]Empty card[white]\n")
	}

	b.WriteString("\n  [green]Press Enter to load this card[white]\n")
	return b.String()
}

// formatRunner renders the runner page for a snapshot.
func formatRunner(s session.Snapshot, profile string) string {
	if !s.HasCard() {
		return "\n  [gray]No card loaded[white]\n\n  Go to Cards (press 1) to pick one.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  [yellow]%s[white]  [gray](%s)[white]\n", tview.Escape(s.Card.Title), s.Status())
	fmt.Fprintf(&b, "  [gray]Profile:[white] %s\n\n", tview.Escape(profile))

	switch s.Kind() {
	case workout.KindTime:
		writeTimeRun(&b, s)
	case workout.KindReps:
		writeRepRun(&b, s)
	}

	if s.Finished() {
		if s.Saved {
			b.WriteString("\n  [green]Saved to history[white]\n")
		} else {
			b.WriteString("\n  [green]Finished![white] Press [yellow]S[white] to save\n")
		}
	}

	b.WriteString("\n  [gray]-------------------------[white]\n")
	switch s.Kind() {
	case workout.KindTime:
		b.WriteString("  [yellow]Space[white] Start/Pause  |  [yellow]N[white] Skip  |  [yellow]X[white] Stop  |  [yellow]S[white] Save\n")
	case workout.KindReps:
		b.WriteString("  [yellow]Space[white] Start/Pause  |  [yellow]C[white] Set done  |  [yellow]N[white] Skip rest  |  [yellow]X[white] Stop  |  [yellow]S[white] Save\n")
	}
	return b.String()
}

func writeTimeRun(b *strings.Builder, s session.Snapshot) {
	phase, ok := s.Phase()
	if !ok {
		return
	}
	switch {
	case s.Time.PreWorkSec > 0:
		fmt.Fprintf(b, "  [cyan]Get ready[white]  [yellow]%d[white]\n", s.Time.PreWorkSec)
	case s.Time.Status == workout.RunnerFinished:
		b.WriteString("  [cyan]Done[white]\n")
	default:
		fmt.Fprintf(b, "  [cyan]%s[white]  [yellow]%s[white]\n", tview.Escape(phase.Label), workout.FormatClock(s.Time.RemainingSec))
	}
	if ex := s.Exercise(); ex != "" {
		fmt.Fprintf(b, "  [gray]Exercise:[white] %s\n", tview.Escape(ex))
	}
	fmt.Fprintf(b, "  [gray]Phase:[white] %d/%d\n\n", s.Time.PhaseIndex+1, len(s.Plan))
	fmt.Fprintf(b, "  [gray]Elapsed:[white]   %s\n", workout.FormatClock(s.ElapsedSec()))
	fmt.Fprintf(b, "  [gray]Remaining:[white] %s\n", workout.FormatClock(s.Time.TotalRemainingSec))

	if next, ok := s.NextPhase(); ok {
		fmt.Fprintf(b, "\n  [gray]Next:[white] %s %s\n", tview.Escape(next.Label), workout.FormatClock(next.DurationSec))
	} else if s.Time.Status != workout.RunnerFinished {
		b.WriteString("\n  [gray]Next:[white] [green]Finish![white]\n")
	}
}

func writeRepRun(b *strings.Builder, s session.Snapshot) {
	body, _ := s.Card.Body.(workout.RepBody)
	r := s.Reps
	switch r.Status {
	case workout.RepReady:
		b.WriteString("  [green]Ready to start[white]\n")
	case workout.RepWarmup, workout.RepRest, workout.RepCooldown:
		fmt.Fprintf(b, "  [cyan]%s[white]  [yellow]%s[white]\n", r.Status, workout.FormatClock(r.RemainingSec))
	case workout.RepInSet:
		fmt.Fprintf(b, "  [cyan]Set %d/%d[white]  [yellow]%s[white]\n", r.SetIndex+1, len(body.Sets), workout.FormatClock(r.ElapsedSec))
		if r.SetIndex < len(body.Sets) {
			set := body.Sets[r.SetIndex]
			fmt.Fprintf(b, "  %s: %d x %s kg\n", tview.Escape(exerciseName(set.Exercise)), set.Reps, formatKg(set.WeightKg))
		}
		if body.TargetSetSec > 0 {
			fmt.Fprintf(b, "  [gray]Target:[white] %s\n", workout.FormatClock(body.TargetSetSec))
		}
	case workout.RepDone:
		b.WriteString("  [cyan]Done[white]\n")
	}

	fmt.Fprintf(b, "\n  [gray]Total:[white] %d reps, %s kg\n", s.Totals.TotalReps, formatKg(s.Totals.TotalKg))
	for _, t := range s.Totals.Breakdown {
		fmt.Fprintf(b, "    %s: %d sets, %d reps, %s kg\n", tview.Escape(t.Exercise), t.Sets, t.Reps, formatKg(t.Kg))
	}
}

// formatHistory lists the profile's entries, newest first.
func formatHistory(entries []workout.LogEntry, profile store.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  [yellow]%s[white]  [gray](%d sessions, P switches profile)[white]\n\n", tview.Escape(profile.Name), len(entries))
	if len(entries) == 0 {
		b.WriteString("  [gray]No sessions yet[white]\n")
		return b.String()
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "  %s  %-24s ", e.Timestamp.Local().Format("2006-01-02 15:04"), tview.Escape(e.CardTitle))
		switch p := e.Payload.(type) {
		case workout.TimeLog:
			fmt.Fprintf(&b, "%s, %d phases\n", workout.FormatClock(p.PlannedTotalSec), p.PhaseCount)
		case workout.RepLog:
			fmt.Fprintf(&b, "%d reps, %s kg\n", p.TotalReps, formatKg(p.TotalKg))
		default:
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatRankings(rows []app.Ranking, activeID string) string {
	var b strings.Builder
	b.WriteString("\n")
	for i, r := range rows {
		marker := " "
		if r.ProfileID == activeID {
			marker = "*"
		}
		fmt.Fprintf(&b, " %s%d. %-16s %3d  %8s  %5d reps  %8s kg\n",
			marker, i+1, tview.Escape(r.Name), r.Sessions, workout.FormatClock(r.PlannedSec), r.Reps, formatKg(r.Kg))
	}
	return b.String()
}

func exerciseName(name string) string {
	if strings.TrimSpace(name) == "" {
		return workout.UnnamedExercise
	}
	return name
}

// formatKg drops a zero fraction: 60 not 60.0, 62.5 stays.
func formatKg(kg float64) string {
	return strconv.FormatFloat(kg, 'f', -1, 64)
}
