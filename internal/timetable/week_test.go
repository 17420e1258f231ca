package timetable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMonday = time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)

func testHeaders() []DayHeader {
	return []DayHeader{
		{Label: "Lundi 15 septembre", Offset: 3, Date: MonthDay{9, 15}, HasDate: true},
		{Label: "Mardi 16 septembre", Offset: 22, Date: MonthDay{9, 16}, HasDate: true},
		{Label: "Mercredi 17 septembre", Offset: 41, Date: MonthDay{9, 17}, HasDate: true},
	}
}

func TestBuildWeekGroupsAndSorts(t *testing.T) {
	cases := []Case{
		{Pos: GridPosition{Offset: 3}, Text: "13:30 - 15:00\nRéseaux\nSalle: B1\nDurand"},
		{Pos: GridPosition{Offset: 4}, Text: "09:00 - 10:30\nAlgorithmique\nSalle: B204 (Site Nord)\nJ. Martin"},
		{Pos: GridPosition{Offset: 22}, Text: "08:00 - 09:00\nAnglais"},
	}

	week := BuildWeek(cases, testHeaders(), testMonday)
	require.Len(t, week.Days, 3)
	assert.Equal(t, testMonday, week.Monday)

	lundi := week.Day("Lundi 15 septembre")
	require.NotNil(t, lundi)
	require.Len(t, lundi.Events, 2)
	assert.Equal(t, "Algorithmique", lundi.Events[0].Title, "sorted by start time")
	assert.Equal(t, "Réseaux", lundi.Events[1].Title)

	mardi := week.Day("Mardi 16 septembre")
	require.NotNil(t, mardi)
	require.Len(t, mardi.Events, 1)
	assert.Equal(t, "Anglais", mardi.Events[0].Title)

	mercredi := week.Day("Mercredi 17 septembre")
	require.NotNil(t, mercredi)
	assert.Empty(t, mercredi.Events)
}

func TestBuildWeekUnscheduledSortLast(t *testing.T) {
	cases := []Case{
		{Pos: GridPosition{Offset: 3}, Text: "Contrôle reporté"},
		{Pos: GridPosition{Offset: 3}, Text: "10:00 - 11:00\nPhysique"},
		{Pos: GridPosition{Offset: 3}, Text: "Autre message"},
	}
	week := BuildWeek(cases, testHeaders(), testMonday)
	events := week.Day("Lundi 15 septembre").Events
	require.Len(t, events, 3)
	assert.Equal(t, "Physique", events[0].Title)
	// Unscheduled events keep their original relative order.
	assert.Equal(t, "Contrôle reporté", events[1].Title)
	assert.Equal(t, "Autre message", events[2].Title)
}

func TestBuildWeekNoClassForcedOntoFirstDay(t *testing.T) {
	cases := []Case{
		// Full-width block: the offset is meaningless and must be ignored.
		{Pos: GridPosition{Offset: 41}, Text: "PAS DE COURS cette semaine"},
	}
	week := BuildWeek(cases, testHeaders(), testMonday)

	lundi := week.Day("Lundi 15 septembre")
	require.NotNil(t, lundi)
	require.Len(t, lundi.Events, 1)
	assert.Equal(t, "Pas de cours cette semaine", lundi.Events[0].Raw)
	assert.Equal(t, "", lundi.Events[0].Start)
	assert.Equal(t, "", lundi.Events[0].End)
	assert.False(t, lundi.Events[0].Scheduled())

	assert.Empty(t, week.Day("Mercredi 17 septembre").Events)
}

func TestBuildWeekNoHeaders(t *testing.T) {
	week := BuildWeek([]Case{{Text: "10:00 - 11:00\nX"}}, nil, testMonday)
	assert.Empty(t, week.Days)
}

func TestReconstructEndToEnd(t *testing.T) {
	doc := mustDoc(t, `<html><body>`+
		jourDiv(103, "Lundi 15 septembre")+
		jourDiv(122, "Mardi 16 septembre")+
		jourDiv(3, "Lundi 22 septembre")+
		caseDiv(104, "<table><tr><td>09:00 - 10:30</td></tr><tr><td>Algorithmique</td></tr><tr><td>Salle: B204 (Site Nord)</td></tr><tr><td>J. Martin</td></tr></table>")+
		caseDiv(123, "<table><tr><td>11:00 - 12:00</td></tr><tr><td>Anglais</td></tr></table>")+
		`</body></html>`)

	week, err := Reconstruct(doc, testMonday)
	require.NoError(t, err)
	require.Len(t, week.Days, 2)

	lundi := week.Day("Lundi 15 septembre")
	require.NotNil(t, lundi)
	require.Len(t, lundi.Events, 1)
	assert.Equal(t, "Algorithmique", lundi.Events[0].Title)
	assert.Equal(t, "J. Martin", lundi.Events[0].Teacher)

	mardi := week.Day("Mardi 16 septembre")
	require.NotNil(t, mardi)
	require.Len(t, mardi.Events, 1)
	assert.Equal(t, "Anglais", mardi.Events[0].Title)
}

func TestReconstructPanelNotFound(t *testing.T) {
	doc := mustDoc(t, `<html><body><div>nothing here</div></body></html>`)
	_, err := Reconstruct(doc, testMonday)
	assert.ErrorIs(t, err, ErrPanelNotFound)
}
