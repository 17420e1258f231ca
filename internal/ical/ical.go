// Package ical serializes reconstructed weeks into an RFC 5545 calendar.
// The output is assembled by hand: UIDs are content hashes and the
// VTIMEZONE block is fixed, so repeated publishes of the same schedule
// must produce byte-identical events for clients to deduplicate.
package ical

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wigorcal/internal/model"
	"wigorcal/internal/timetable"
)

const (
	prodID    = "-//EDT-Wigor//wigorcal//FR"
	tzID      = "Europe/Paris"
	uidDomain = "@edt-wigor"
	// defaultSummary replaces an empty title in exported events.
	defaultSummary = "Cours"
)

// vtimezone is the Europe/Paris definition with both DST transition
// rules, emitted verbatim.
var vtimezone = []string{
	"BEGIN:VTIMEZONE",
	"TZID:" + tzID,
	"X-LIC-LOCATION:" + tzID,
	"BEGIN:DAYLIGHT",
	"TZOFFSETFROM:+0100",
	"TZOFFSETTO:+0200",
	"TZNAME:CEST",
	"DTSTART:19700329T020000",
	"RRULE:FREQ=YEARLY;BYMONTH=3;BYDAY=-1SU",
	"END:DAYLIGHT",
	"BEGIN:STANDARD",
	"TZOFFSETFROM:+0200",
	"TZOFFSETTO:+0100",
	"TZNAME:CET",
	"DTSTART:19701025T030000",
	"RRULE:FREQ=YEARLY;BYMONTH=10;BYDAY=-1SU",
	"END:STANDARD",
	"END:VTIMEZONE",
}

// Escape applies the calendar text-escaping rule to a property value.
func Escape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", "\\n")
}

// DateForLabel resolves a day label to a concrete date within the week
// of the given Monday. Labels opening with a French weekday name map to
// monday + index; otherwise the (day, month) is read from the label and
// combined with the Monday's year. Unresolvable labels fall back to the
// Monday itself.
func DateForLabel(label string, monday time.Time) time.Time {
	if i := timetable.WeekdayIndex(label); i >= 0 {
		return monday.AddDate(0, 0, i)
	}
	if md, ok := timetable.ResolveDayMonth(label); ok {
		return time.Date(monday.Year(), time.Month(md.Month), md.Day, 0, 0, 0, 0, monday.Location())
	}
	return monday
}

// localStamp renders a date plus "HH:MM" clock as an ICS local
// date-time, zero-padding single-digit hours.
func localStamp(day time.Time, clock string) (string, bool) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return "", false
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour > 23 || minute > 59 || hour < 0 || minute < 0 {
		return "", false
	}
	return fmt.Sprintf("%sT%02d%02d00", day.Format("20060102"), hour, minute), true
}

// BuildCalendar serializes the given weeks into one VCALENDAR. The
// output uses CRLF terminators throughout and, given the same input and
// timestamp, is byte-for-byte reproducible.
func BuildCalendar(weeks []model.WeekSchedule, calName string, now time.Time) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:" + Escape(calName),
		"X-WR-TIMEZONE:" + tzID,
	}
	lines = append(lines, vtimezone...)

	stamp := now.UTC().Format("20060102T150405Z")

	for _, week := range weeks {
		for _, day := range week.Days {
			date := DateForLabel(day.Label, week.Monday)
			for _, ev := range day.Events {
				if !ev.Scheduled() {
					continue
				}
				dtStart, okS := localStamp(date, ev.Start)
				dtEnd, okE := localStamp(date, ev.End)
				if !okS || !okE {
					continue
				}

				summary := Escape(ev.Title)
				if summary == "" {
					summary = defaultSummary
				}
				location := Escape(eventLocation(ev))
				description := Escape(eventDescription(ev))

				lines = append(lines,
					"BEGIN:VEVENT",
					"UID:"+eventUID(dtStart, dtEnd, summary, location, description),
					"DTSTAMP:"+stamp,
					"DTSTART;TZID="+tzID+":"+dtStart,
					"DTEND;TZID="+tzID+":"+dtEnd,
					"SUMMARY:"+summary,
					"LOCATION:"+location,
					"DESCRIPTION:"+description,
					"END:VEVENT",
				)
			}
		}
	}

	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n") + "\r\n"
}

// ExportableCount returns the number of VEVENTs BuildCalendar will emit
// for the given weeks: events with a start and an end that both parse as
// clock values.
func ExportableCount(weeks []model.WeekSchedule) int {
	n := 0
	var probe time.Time
	for _, w := range weeks {
		for _, d := range w.Days {
			for _, ev := range d.Events {
				if !ev.Scheduled() {
					continue
				}
				_, okS := localStamp(probe, ev.Start)
				_, okE := localStamp(probe, ev.End)
				if okS && okE {
					n++
				}
			}
		}
	}
	return n
}

// eventUID derives the deterministic identifier of one event from its
// resolved content. Identical content on identical dates always hashes
// to the same UID, which is what lets calendar clients update instead of
// duplicating entries across publishes.
func eventUID(dtStart, dtEnd, summary, location, description string) string {
	seed := dtStart + "|" + dtEnd + "|" + summary + "|" + location + "|" + description
	sum := md5.Sum([]byte(seed))
	return hex.EncodeToString(sum[:]) + uidDomain
}

func eventLocation(ev model.CaseEvent) string {
	switch {
	case ev.Room != "" && ev.Site != "":
		return ev.Room + " (" + ev.Site + ")"
	case ev.Room != "":
		return ev.Room
	default:
		return ev.Site
	}
}

func eventDescription(ev model.CaseEvent) string {
	var parts []string
	if ev.Teacher != "" {
		parts = append(parts, ev.Teacher)
	}
	if ev.Raw != "" {
		parts = append(parts, ev.Raw)
	}
	return strings.Join(parts, "\n")
}
