package timetable

import (
	"regexp"
	"strconv"
	"strings"
)

// frenchMonths maps month names, accented and unaccented alike, to month
// numbers. The vendor never prints a year, so (month, day) pairs are the
// only date information available in day headers.
var frenchMonths = map[string]int{
	"janvier": 1, "février": 2, "fevrier": 2, "mars": 3,
	"avril": 4, "mai": 5, "juin": 6, "juillet": 7,
	"août": 8, "aout": 8, "septembre": 9, "octobre": 10,
	"novembre": 11, "décembre": 12, "decembre": 12,
}

// frenchWeekdays lists weekday names in order, Monday first. The index
// doubles as the day offset from the week's Monday.
var frenchWeekdays = []string{
	"lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi", "dimanche",
}

var accentFolder = strings.NewReplacer(
	"é", "e", "è", "e", "ê", "e",
	"à", "a", "â", "a",
	"î", "i", "ô", "o", "û", "u", "ù", "u",
	"ç", "c",
)

var reDayHeader = regexp.MustCompile(
	`(?i)(lundi|mardi|mercredi|jeudi|vendredi|samedi|dimanche)\s+(\d{1,2})\s+([a-zéèêàâîôûùç]+)`)

var reDayMonth = regexp.MustCompile(
	`(?i)(\d{1,2}).+?(janvier|f[ée]vrier|mars|avril|mai|juin|juillet|ao[uû]t|septembre|octobre|novembre|d[ée]cembre)`)

// MonthDay is a year-less calendar date.
type MonthDay struct {
	Month int
	Day   int
}

// ResolveCalendarDay extracts the (month, day) pair from a day-header
// label such as "Lundi 15 septembre". The second return value is false
// when the label is not a recognizable day header; callers must treat
// that as "not a day header", not as an error.
func ResolveCalendarDay(label string) (MonthDay, bool) {
	lab := strings.ToLower(CleanText(label))
	m := reDayHeader.FindStringSubmatch(lab)
	if m == nil {
		return MonthDay{}, false
	}
	day, err := strconv.Atoi(m[2])
	if err != nil || day < 1 || day > 31 {
		return MonthDay{}, false
	}
	month, ok := frenchMonths[accentFolder.Replace(m[3])]
	if !ok {
		return MonthDay{}, false
	}
	return MonthDay{Month: month, Day: day}, true
}

// ResolveDayMonth extracts a (day, month) pair from text with no
// weekday name, e.g. "le 18 septembre". Used as a fallback when a day
// label does not open with a weekday.
func ResolveDayMonth(label string) (MonthDay, bool) {
	m := reDayMonth.FindStringSubmatch(strings.ToLower(CleanText(label)))
	if m == nil {
		return MonthDay{}, false
	}
	day, err := strconv.Atoi(m[1])
	if err != nil || day < 1 || day > 31 {
		return MonthDay{}, false
	}
	month, ok := frenchMonths[accentFolder.Replace(m[2])]
	if !ok {
		return MonthDay{}, false
	}
	return MonthDay{Month: month, Day: day}, true
}

// WeekdayIndex returns the Monday-based index of the weekday name the
// label starts with, or -1.
func WeekdayIndex(label string) int {
	low := strings.ToLower(strings.TrimSpace(label))
	for i, name := range frenchWeekdays {
		if strings.HasPrefix(low, name) {
			return i
		}
	}
	return -1
}
