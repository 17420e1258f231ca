package timetable

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"wigorcal/internal/model"
)

// ErrPanelNotFound is returned when no panel of the document has day
// headers matching the requested week.
var ErrPanelNotFound = errors.New("no panel matches the target week")

const (
	noClassPhrase  = "pas de cours"
	noClassMessage = "Pas de cours cette semaine"
)

// unscheduledSortKey sorts events without a parseable start time after
// every real clock value.
const unscheduledSortKey = 99999

// BuildWeek groups the extracted cases under the panel's day headers and
// sorts each day by start time. Cases containing the vendor's "pas de
// cours" message are forced onto the first day with no schedule: the
// vendor renders that message full-width, so its offset means nothing.
func BuildWeek(cases []Case, headers []DayHeader, monday time.Time) model.WeekSchedule {
	week := model.WeekSchedule{Monday: monday}
	if len(headers) == 0 {
		return week
	}

	index := make(map[string]int, len(headers))
	for _, h := range headers {
		if _, dup := index[h.Label]; dup {
			continue
		}
		index[h.Label] = len(week.Days)
		week.Days = append(week.Days, model.DaySchedule{Label: h.Label})
	}

	for _, c := range cases {
		if strings.Contains(strings.ToLower(strings.ReplaceAll(c.Text, "\n", " ")), noClassPhrase) {
			first := &week.Days[0]
			first.Events = append(first.Events, model.CaseEvent{Raw: noClassMessage})
			continue
		}
		i, ok := index[AssignDay(c, headers)]
		if !ok {
			i = 0
		}
		week.Days[i].Events = append(week.Days[i].Events, ParseCase(c.Text))
	}

	for d := range week.Days {
		events := week.Days[d].Events
		sort.SliceStable(events, func(i, j int) bool {
			return startMinutes(events[i].Start) < startMinutes(events[j].Start)
		})
	}
	return week
}

func startMinutes(s string) int {
	m := reClock.FindStringSubmatch(s)
	if m == nil {
		return unscheduledSortKey
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return hour*60 + minute
}

// Reconstruct runs the full engine against one document: panel
// selection, header and case extraction, day assignment, field parsing
// and week assembly. It is stateless; every call works on a fresh
// document.
func Reconstruct(doc *goquery.Document, monday time.Time) (model.WeekSchedule, error) {
	panel, ok := SelectPanel(doc, monday)
	if !ok {
		return model.WeekSchedule{Monday: monday}, ErrPanelNotFound
	}
	headers := DayHeaders(doc, panel)
	cases := ExtractCases(doc, panel)
	return BuildWeek(cases, headers, monday), nil
}
