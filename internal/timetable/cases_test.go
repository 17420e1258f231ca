package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCasesFiltersPanelAndSentinels(t *testing.T) {
	doc := mustDoc(t, `<html><body>`+
		`<div class="Case" id="Avant" style="left:103%">x</div>`+
		`<div class="Case" id="Apres" style="left:197%">x</div>`+
		caseDiv(104.5, "<table><tr><td>09:00 - 10:30</td></tr><tr><td>Algorithmique</td></tr></table>")+
		caseDiv(4.5, "wrong panel")+
		`<div class="Case">no style</div>`+
		caseDiv(123, "Pas de cours cette semaine")+
		`</body></html>`)

	cases := ExtractCases(doc, 1)
	require.Len(t, cases, 2)
	assert.Equal(t, "09:00 - 10:30\nAlgorithmique", cases[0].Text)
	assert.InDelta(t, 4.5, cases[0].Pos.Offset, 1e-9)
	assert.Equal(t, "Pas de cours cette semaine", cases[1].Text)
}

func TestAssignDayNearestOffset(t *testing.T) {
	headers := []DayHeader{
		{Label: "Lundi 15 septembre", Offset: 3},
		{Label: "Mardi 16 septembre", Offset: 22},
		{Label: "Mercredi 17 septembre", Offset: 41},
	}

	// Exactly on a header's offset.
	assert.Equal(t, "Mardi 16 septembre",
		AssignDay(Case{Pos: GridPosition{Panel: 0, Offset: 22}}, headers))

	// Midway between two headers breaks toward the first in panel order.
	assert.Equal(t, "Lundi 15 septembre",
		AssignDay(Case{Pos: GridPosition{Panel: 0, Offset: 12.5}}, headers))

	// Clearly nearest to the last header.
	assert.Equal(t, "Mercredi 17 septembre",
		AssignDay(Case{Pos: GridPosition{Panel: 0, Offset: 45}}, headers))
}
