package timetable

import (
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DayHeader is one "Jour" block of a panel: a weekday label plus its
// horizontal offset within the panel.
type DayHeader struct {
	Label   string
	Offset  float64 // left mod 100
	Date    MonthDay
	HasDate bool
}

// divsWithClass selects div elements carrying the given class token,
// case-insensitively. The vendor's markup is not consistent about class
// casing, so a plain CSS class selector is too strict.
func divsWithClass(doc *goquery.Document, name string) *goquery.Selection {
	return doc.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return hasClassFold(s, name)
	})
}

func hasClassFold(s *goquery.Selection, name string) bool {
	attr, ok := s.Attr("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(attr) {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// flattenText walks the selection's text nodes and joins them with sep,
// dropping empty fragments. goquery's Text() concatenates text nodes
// with nothing in between, which glues words together across <br> and
// nested cells.
func flattenText(s *goquery.Selection, sep string) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := CleanText(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(parts, sep)
}

// headerLabel extracts the text label of a Jour block, preferring the
// inner TCJour cell when present.
func headerLabel(jour *goquery.Selection) string {
	td := jour.Find("td").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return hasClassFold(s, "TCJour")
	})
	if td.Length() > 0 {
		return flattenText(td.First(), " ")
	}
	return flattenText(jour, " ")
}

// SelectPanel scores every horizontal panel of the document by how many
// of its day headers fall inside the week starting at targetMonday, and
// returns the best-scoring panel index. The vendor renders several weeks
// side by side, each shifted by a multiple of 100%, and offsets repeat
// across panels, so matching on (month, day) pairs is the only reliable
// way to find the requested week. The second return value is false when
// no panel has a resolvable day header.
func SelectPanel(doc *goquery.Document, targetMonday time.Time) (int, bool) {
	datesByPanel := map[int]map[MonthDay]struct{}{}

	divsWithClass(doc, "Jour").Each(func(_ int, jour *goquery.Selection) {
		style, _ := jour.Attr("style")
		pos, ok := PositionFromStyle(style)
		if !ok {
			return
		}
		date, ok := ResolveCalendarDay(headerLabel(jour))
		if !ok {
			return
		}
		set := datesByPanel[pos.Panel]
		if set == nil {
			set = map[MonthDay]struct{}{}
			datesByPanel[pos.Panel] = set
		}
		set[date] = struct{}{}
	})

	if len(datesByPanel) == 0 {
		return 0, false
	}

	target := map[MonthDay]struct{}{}
	for i := 0; i < 7; i++ {
		d := targetMonday.AddDate(0, 0, i)
		target[MonthDay{Month: int(d.Month()), Day: d.Day()}] = struct{}{}
	}

	// Ascending panel order keeps the tie-break deterministic.
	panels := make([]int, 0, len(datesByPanel))
	for p := range datesByPanel {
		panels = append(panels, p)
	}
	sort.Ints(panels)

	best, bestScore := 0, -1
	for _, p := range panels {
		score := 0
		for md := range datesByPanel[p] {
			if _, ok := target[md]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = p, score
		}
	}
	return best, true
}

// DayHeaders returns the day headers of the given panel, ordered left to
// right.
func DayHeaders(doc *goquery.Document, panel int) []DayHeader {
	var out []DayHeader
	divsWithClass(doc, "Jour").Each(func(_ int, jour *goquery.Selection) {
		style, _ := jour.Attr("style")
		pos, ok := PositionFromStyle(style)
		if !ok || pos.Panel != panel {
			return
		}
		h := DayHeader{
			Label:  CleanText(headerLabel(jour)),
			Offset: pos.Offset,
		}
		if date, ok := ResolveCalendarDay(h.Label); ok {
			h.Date = date
			h.HasDate = true
		}
		out = append(out, h)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}
