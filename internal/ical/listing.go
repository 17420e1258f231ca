package ical

import (
	"strings"

	"wigorcal/internal/model"
)

// noTimePlaceholder marks events without a parsed time range in the
// listing output.
const noTimePlaceholder = "(horaire n/d)"

// RenderListing renders a week as a plain text listing for console
// inspection: one block per day label, one line per event with the time
// range and pipe-joined fields, the title indented underneath.
func RenderListing(week model.WeekSchedule) string {
	var b strings.Builder
	for _, day := range week.Days {
		b.WriteString(day.Label + "\n")
		for _, ev := range day.Events {
			b.WriteString("  - " + strings.Join(eventSummaryParts(ev), " | ") + "\n")
			if ev.Title != "" {
				b.WriteString("      " + ev.Title + "\n")
			}
		}
	}
	return b.String()
}

func eventSummaryParts(ev model.CaseEvent) []string {
	timeRange := noTimePlaceholder
	if ev.Scheduled() {
		timeRange = ev.Start + "-" + ev.End
	}
	parts := []string{timeRange}
	if ev.Room != "" {
		parts = append(parts, "Salle: "+ev.Room)
	}
	if ev.Site != "" {
		parts = append(parts, "Site: "+ev.Site)
	}
	if ev.Teacher != "" {
		parts = append(parts, "Prof: "+ev.Teacher)
	}
	if !ev.Scheduled() && ev.Raw != "" {
		parts = append(parts, ev.Raw)
	}
	return parts
}
