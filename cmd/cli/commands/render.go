package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jakechorley/geo-placer/internal/config"
	"github.com/jakechorley/geo-placer/pkg/core/placement"
	"github.com/jakechorley/geo-placer/pkg/core/services"
	"github.com/jakechorley/geo-placer/pkg/rosterinput"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorBold   = "\033[1m"
)

func printWarnings(w io.Writer, source string, warnings []rosterinput.ParseWarning) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "⚠️  %s warnings (%d):\n", source, len(warnings))
	for _, warning := range warnings {
		fmt.Fprintf(w, "  • %s\n", warning)
	}
	fmt.Fprintln(w)
}

// statusColor picks the color for a census status label
func statusColor(status string) string {
	switch status {
	case services.StatusAtCap:
		return colorRed
	case services.StatusHigh:
		return colorYellow
	default:
		return ""
	}
}

// reasonColor highlights non-geographic decisions
func reasonColor(reason placement.Reason) string {
	switch reason {
	case placement.ReasonGeographic, placement.ReasonEquityOverride, placement.ReasonNoChange:
		return colorGreen
	case placement.ReasonManualReview:
		return colorRed
	default:
		return colorYellow
	}
}

func colorize(color, text string) string {
	if color == "" {
		return text
	}
	return color + text + colorReset
}

func formatDelta(delta int) string {
	switch {
	case delta > 0:
		return fmt.Sprintf("+%d", delta)
	case delta < 0:
		return fmt.Sprintf("%d", delta)
	default:
		return ""
	}
}

func formatTeams(teams []placement.TeamID) string {
	if len(teams) == 0 {
		return "—"
	}
	parts := make([]string, 0, len(teams))
	for _, t := range teams {
		parts = append(parts, fmt.Sprintf("%d", int(t)))
	}
	return strings.Join(parts, ", ")
}

func renderClosures(w io.Writer, closed placement.TeamSet, scheduled []config.ScheduledClosure) {
	if len(closed) > 0 {
		fmt.Fprintf(w, "Closed:      %s\n", formatTeams(closed.Sorted()))
	}
	for _, c := range scheduled {
		note := c.Note
		if note == "" {
			note = c.RRule
		}
		fmt.Fprintf(w, "             %s (%s)\n", formatTeams(c.Teams), note)
	}
}

func renderPlacement(w io.Writer, result *services.PlaceAdmissionsResult) {
	outcome := result.Outcome

	fmt.Fprintf(w, "\n🏥 Placement Results\n\n")
	fmt.Fprintf(w, "Run ID:      %s\n", result.RunID)
	fmt.Fprintf(w, "Date:        %s\n", result.Date)
	if result.Quick {
		fmt.Fprintf(w, "Mode:        ⚡ QUICK (empty census, no closures)\n")
	}
	renderClosures(w, outcome.ClosedTeams, result.ScheduledClosures)
	fmt.Fprintln(w)

	if len(outcome.ValidationErrors) > 0 {
		fmt.Fprintf(w, "❌ Validation Errors (%d):\n", len(outcome.ValidationErrors))
		for _, v := range outcome.ValidationErrors {
			fmt.Fprintf(w, "  • %s: %s\n", v.Check, v.Description)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%s%-6s  %-12s  %-6s  %-7s  %-20s  %s%s\n",
		colorBold, "ID", "Location", "Floor", "Team", "Reason", "Detail", colorReset)
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, a := range outcome.Assignments {
		floor := string(a.Patient.Floor)
		if floor == "" {
			floor = "—"
		}
		location := a.Patient.RawLocation
		if a.Patient.Clinician != "" {
			location += " (" + a.Patient.Clinician + ")"
		}
		fmt.Fprintf(w, "%-6s  %-12s  %-6s  %-7s  %s  %s\n",
			a.Patient.ID, location, floor, a.Team,
			colorize(reasonColor(a.Reason), fmt.Sprintf("%-20s", a.Reason)), a.Detail)
	}
	fmt.Fprintln(w)

	if len(outcome.Skipped) > 0 {
		fmt.Fprintf(w, "⚠️  Not placed (%d):\n", len(outcome.Skipped))
		for _, s := range outcome.Skipped {
			fmt.Fprintf(w, "  • %s\n", s.Warning)
		}
		fmt.Fprintln(w)
	}

	if len(outcome.Notes) > 0 {
		fmt.Fprintf(w, "Notes:\n")
		for _, note := range outcome.Notes {
			fmt.Fprintf(w, "  • %s\n", note)
		}
		fmt.Fprintln(w)
	}

	renderCensusSummary(w, result.CensusSummary, "New")

	fmt.Fprintf(w, "\nGeographic: %d/%d (%.0f%%)\n\n",
		result.GeographicCount, len(outcome.Assignments), result.GeographicRate*100)
}

func renderRedistribution(w io.Writer, result *services.ShuffleRosterResult) {
	outcome := result.Outcome

	fmt.Fprintf(w, "\n🔀 Redistribution Results\n\n")
	fmt.Fprintf(w, "Run ID:      %s\n", result.RunID)
	fmt.Fprintf(w, "Date:        %s\n", result.Date)
	renderClosures(w, outcome.ClosedTeams, result.ScheduledClosures)
	fmt.Fprintf(w, "Correct:     %d\n", len(outcome.CorrectlyPlaced))
	fmt.Fprintf(w, "Wrong team:  %d\n", len(outcome.NeedsMove))
	fmt.Fprintf(w, "Moves:       %d\n\n", result.MoveCount)

	if len(outcome.Recommendations) > 0 {
		fmt.Fprintf(w, "%s%-6s  %-6s  %-7s  %-7s  %-20s  %s%s\n",
			colorBold, "Room", "Floor", "From", "To", "Reason", "Detail", colorReset)
		fmt.Fprintln(w, strings.Repeat("-", 90))
		for _, rec := range outcome.Recommendations {
			floor := string(rec.Patient.Floor)
			if floor == "" {
				floor = "—"
			}
			target := "—"
			if rec.HasTarget() {
				target = rec.Target.String()
			}
			fmt.Fprintf(w, "%-6s  %-6s  %-7s  %-7s  %s  %s\n",
				rec.Patient.Room, floor, rec.Patient.CurrentTeam, target,
				colorize(reasonColor(rec.Reason), fmt.Sprintf("%-20s", rec.Reason)), rec.Detail)
		}
		fmt.Fprintln(w)
	}

	renderCensusSummary(w, result.CensusSummary, "Change")
	fmt.Fprintln(w)
}

func renderCensusSummary(w io.Writer, rows []services.CensusRow, deltaLabel string) {
	fmt.Fprintf(w, "%s%-7s  %-16s  %5s  %6s  %5s  %s%s\n",
		colorBold, "Team", "Floors", "Start", deltaLabel, "Final", "Status", colorReset)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, row := range rows {
		floors := strings.Join(row.Floors, ",")
		if row.IMCU {
			floors += " *"
		}
		if row.Closed {
			fmt.Fprintf(w, "%-7s  %-16s  %5s  %6s  %5s  CLOSED\n", row.Team, floors, "", "", "")
			continue
		}
		fmt.Fprintf(w, "%-7s  %-16s  %5d  %6s  %5d  %s\n",
			row.Team, floors, row.Start, formatDelta(row.Delta), row.Final,
			colorize(statusColor(row.Status), row.Status))
	}
	fmt.Fprintln(w, "* = IMCU")
}
