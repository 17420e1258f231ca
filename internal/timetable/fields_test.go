package timetable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCaseFullBlock(t *testing.T) {
	text := strings.Join([]string{
		"09:00 - 10:30",
		"Algorithmique",
		"Salle: B204 (Site Nord)",
		"J. Martin",
	}, "\n")

	ev := ParseCase(text)
	assert.Equal(t, "09:00", ev.Start)
	assert.Equal(t, "10:30", ev.End)
	assert.Equal(t, "Algorithmique", ev.Title)
	assert.Equal(t, "B204", ev.Room)
	assert.Equal(t, "Site Nord", ev.Site)
	assert.Equal(t, "J. Martin", ev.Teacher)
	assert.True(t, ev.Scheduled())
}

func TestParseCaseHSeparatorAndNoSite(t *testing.T) {
	ev := ParseCase("9h00 - 12h15\nProjet tutoré\nSalle: A12\nGroupe B\nDupont-Durand")
	assert.Equal(t, "9:00", ev.Start)
	assert.Equal(t, "12:15", ev.End)
	assert.Equal(t, "A12", ev.Room)
	assert.Equal(t, "", ev.Site)
	assert.Equal(t, "Projet tutoré", ev.Title)
	assert.Equal(t, "Dupont-Durand", ev.Teacher)
}

func TestParseCaseNoTime(t *testing.T) {
	ev := ParseCase("Réunion de rentrée\nSalle: Amphi")
	assert.Equal(t, "", ev.Start)
	assert.Equal(t, "", ev.End)
	assert.False(t, ev.Scheduled())
	assert.Equal(t, "Réunion de rentrée", ev.Title)
	assert.Equal(t, "Amphi", ev.Room)
}

func TestParseCaseMalformedTime(t *testing.T) {
	// Matches the loose pattern but is not a real clock value: the event
	// is kept with no schedule.
	ev := ParseCase("29:99 - 31:00\nCours mystère")
	assert.Equal(t, "", ev.Start)
	assert.Equal(t, "", ev.End)
	assert.Equal(t, "Cours mystère", ev.Title)
}

func TestParseCaseReservedPrefixesNeverTitle(t *testing.T) {
	ev := ParseCase(strings.Join([]string{
		"Socle 2A",
		"Promotion 2025",
		"Groupe 3",
		"Salle: C1",
		"10:00 - 11:00",
		"Mathématiques",
	}, "\n"))
	assert.Equal(t, "Mathématiques", ev.Title)
	assert.Equal(t, "C1", ev.Room)
	assert.Equal(t, "10:00", ev.Start)
}

// When the title is embedded in the time line, no line qualifies as a
// title and the teacher scan has no anchor: both come back empty
// instead of guessing.
func TestParseCaseInlineTitleLeavesTeacherEmpty(t *testing.T) {
	ev := ParseCase("10:00 - 11:00 Anglais\nSalle: B1")
	assert.Equal(t, "", ev.Title, "line carrying the time range is never a title")
	assert.Equal(t, "", ev.Teacher)
	assert.Equal(t, "10:00", ev.Start)

	// With a trailing name line, that line is claimed as the title and
	// the teacher scan finds nothing after it.
	ev = ParseCase("10:00 - 11:00 Anglais\nSalle: B1\nSmith")
	assert.Equal(t, "Smith", ev.Title)
	assert.Equal(t, "", ev.Teacher)
}

func TestParseCaseTeacherSkipsNonNameLines(t *testing.T) {
	ev := ParseCase(strings.Join([]string{
		"14:00 - 16:00",
		"Base de données",
		"Groupe 2",
		"TD n°4", // digits: not name-shaped
		"Él Moussaoui",
	}, "\n"))
	assert.Equal(t, "Base de données", ev.Title)
	assert.Equal(t, "Él Moussaoui", ev.Teacher)
}

func TestParseCaseEmpty(t *testing.T) {
	ev := ParseCase("")
	assert.Equal(t, "", ev.Title)
	assert.Equal(t, "", ev.Raw)
	assert.False(t, ev.Scheduled())
}
