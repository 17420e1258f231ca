// Package timetable reconstructs a weekly schedule from the vendor's
// WS-EDT page. The page carries no semantic markup: every block is an
// absolutely positioned div whose left:N% style encodes both the week
// ("panel", N div 100) and the day column (N mod 100). This package is
// the only place raw style strings are interpreted; everything else
// works on GridPosition values.
package timetable

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reLeftPercent = regexp.MustCompile(`(?i)left\s*:\s*([-\d.]+)\s*%`)
	reInnerSpace  = regexp.MustCompile(`[ \t\r\f\v]+`)
)

// GridPosition locates a node on the vendor's percentage grid.
type GridPosition struct {
	// Panel identifies the displayed week: floor(left / 100).
	Panel int
	// Offset is the horizontal position within the panel: left mod 100.
	Offset float64
}

// ParseLeftPercent extracts the left:N% value from a style attribute.
// It tolerates whitespace and case. The second return value is false
// when the pattern is missing or the literal does not parse; callers
// must exclude such nodes from spatial reasoning rather than treat the
// position as zero.
func ParseLeftPercent(style string) (float64, bool) {
	if style == "" {
		return 0, false
	}
	m := reLeftPercent.FindStringSubmatch(style)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// PositionFromStyle derives the grid position encoded in a style
// attribute, if any.
func PositionFromStyle(style string) (GridPosition, bool) {
	left, ok := ParseLeftPercent(style)
	if !ok {
		return GridPosition{}, false
	}
	return GridPosition{
		Panel:  int(math.Floor(left / 100.0)),
		Offset: math.Mod(left, 100.0),
	}, true
}

// CleanText collapses runs of horizontal whitespace to single spaces,
// converts non-breaking spaces, and trims the result. The vendor mixes
//   and plain spaces freely inside labels.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(reInnerSpace.ReplaceAllString(s, " "))
}
