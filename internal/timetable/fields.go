package timetable

import (
	"regexp"
	"strconv"
	"strings"

	"wigorcal/internal/model"
)

var (
	// "9h00 - 10:30" and friends: 1-2 digit hours, h or : separator.
	reTimeRange = regexp.MustCompile(`(?i)(\d{1,2}[:h]\d{2})\s*-\s*(\d{1,2}[:h]\d{2})`)
	// "Salle: B204 (Site Nord)" / "Salle B204".
	reRoom  = regexp.MustCompile(`(?i)^salle\s*:?\s*([A-Za-z0-9_\- ]+?)\s*(?:\(([^)]+)\))?$`)
	reClock = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	// A teacher line: letters (accented included), spaces, hyphens,
	// apostrophes and initials' periods, at least three characters.
	reName = regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ'. \-]{3,}$`)
)

// reservedPrefixes open lines that are never a title or a teacher name.
var reservedPrefixes = []string{"salle", "site", "socle ", "promotion ", "groupe "}

func hasReservedPrefix(line string) bool {
	low := strings.ToLower(line)
	for _, p := range reservedPrefixes {
		if strings.HasPrefix(low, p) {
			return true
		}
	}
	return false
}

// normalizeClock rewrites an h-separated time to colon form and rejects
// literals that matched the loose pattern but are not real clock values.
// A rejected time leaves the event without a schedule rather than
// failing the whole case.
func normalizeClock(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "h", ":")
	m := reClock.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour > 23 {
		return ""
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil || minute > 59 {
		return ""
	}
	return s
}

// ParseCase extracts the structured fields of one event block from its
// flattened text. The markup carries no field labels, so everything here
// is ordered-line heuristics; every miss yields an empty field, never an
// error.
func ParseCase(text string) model.CaseEvent {
	lines := splitLines(text)
	full := strings.Join(lines, "\n")

	ev := model.CaseEvent{Raw: full}

	// Time range: first match anywhere in the block.
	if m := reTimeRange.FindStringSubmatch(full); m != nil {
		start := normalizeClock(m[1])
		end := normalizeClock(m[2])
		if start != "" && end != "" {
			ev.Start, ev.End = start, end
		}
	}

	// Room and optional parenthesized site: first matching line wins.
	for _, l := range lines {
		if m := reRoom.FindStringSubmatch(l); m != nil {
			ev.Room = strings.TrimSpace(m[1])
			ev.Site = strings.TrimSpace(m[2])
			break
		}
	}

	// Title: first line that is neither a time range nor a reserved line.
	for _, l := range lines {
		if reTimeRange.MatchString(l) || hasReservedPrefix(l) {
			continue
		}
		ev.Title = l
		break
	}

	// Teacher: first name-shaped line strictly after the title line. If
	// the title never occurs as a standalone line, no teacher is found;
	// that gap is deliberate, there is nothing in the markup to anchor
	// the scan on.
	seenTitle := false
	for _, l := range lines {
		if !seenTitle {
			if ev.Title != "" && l == ev.Title {
				seenTitle = true
			}
			continue
		}
		if reTimeRange.MatchString(l) || hasReservedPrefix(l) {
			continue
		}
		if reName.MatchString(l) {
			ev.Teacher = strings.TrimSpace(l)
			break
		}
	}

	return ev
}

func splitLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if t := CleanText(l); t != "" {
			out = append(out, t)
		}
	}
	return out
}
