package timetable

import (
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Case is one event block of a panel: its grid position plus its text
// content flattened to newline-separated, trimmed, non-empty lines.
type Case struct {
	Pos  GridPosition
	Text string
}

// Lines returns the case text as individual lines.
func (c Case) Lines() []string {
	if c.Text == "" {
		return nil
	}
	return strings.Split(c.Text, "\n")
}

// sentinelIDs are the vendor's placeholder blocks marking the range
// before/after the visible grid; they carry Case styling but no event.
var sentinelIDs = map[string]struct{}{
	"avant": {},
	"apres": {},
}

// ExtractCases collects every event block positioned inside the given
// panel, in extraction (not chronological) order. Blocks without a
// parseable left offset are excluded; blocks without an inner table are
// kept, since "Pas de cours" messages render without one.
func ExtractCases(doc *goquery.Document, panel int) []Case {
	var out []Case
	divsWithClass(doc, "Case").Each(func(_ int, sel *goquery.Selection) {
		if id, ok := sel.Attr("id"); ok {
			if _, skip := sentinelIDs[strings.ToLower(id)]; skip {
				return
			}
		}
		style, _ := sel.Attr("style")
		pos, ok := PositionFromStyle(style)
		if !ok || pos.Panel != panel {
			return
		}
		out = append(out, Case{Pos: pos, Text: flattenText(sel, "\n")})
	})
	return out
}

// AssignDay maps a case to the label of the day header whose offset is
// nearest to the case's own offset within the panel. Ties break toward
// the first header in the supplied order. Callers guarantee at least one
// header (panel selection already requires one).
func AssignDay(c Case, headers []DayHeader) string {
	best := ""
	bestDelta := math.Inf(1)
	for _, h := range headers {
		delta := math.Abs(c.Pos.Offset - h.Offset)
		if delta < bestDelta {
			bestDelta = delta
			best = h.Label
		}
	}
	return best
}
