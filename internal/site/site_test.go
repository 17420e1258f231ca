package site

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wigorcal/internal/model"
)

var testMonday = time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)

func sampleWeek() model.WeekSchedule {
	return model.WeekSchedule{
		Monday: testMonday,
		Days: []model.DaySchedule{
			{
				Label: "Lundi 15 septembre",
				Events: []model.CaseEvent{
					{
						Raw:     "09:00 - 10:30\nAlgorithmique",
						Start:   "09:00",
						End:     "10:30",
						Room:    "B204",
						Site:    "Site Nord",
						Teacher: "J. Martin",
						Title:   "Algorithmique",
					},
					{Raw: "Pas de cours cette semaine"},
				},
			},
			{Label: "Mardi 16 septembre"},
		},
	}
}

func testPublisher(t *testing.T) *Publisher {
	t.Helper()
	return &Publisher{
		OutputDir:    t.TempDir(),
		SiteBase:     "https://edt.example.org",
		CalendarName: "EDT Wigor",
	}
}

func TestPublishWritesTree(t *testing.T) {
	p := testPublisher(t)
	require.NoError(t, p.Publish([]model.WeekSchedule{sampleWeek()}, testMonday))

	ics, err := os.ReadFile(filepath.Join(p.OutputDir, "ical.ics"))
	require.NoError(t, err)
	assert.Contains(t, string(ics), "BEGIN:VEVENT")
	assert.Contains(t, string(ics), "SUMMARY:Algorithmique")

	weekJSON, err := os.ReadFile(filepath.Join(p.OutputDir, "weeks", "2025-09-15.json"))
	require.NoError(t, err)
	assert.Contains(t, string(weekJSON), `"Lundi 15 septembre"`)

	index, err := os.ReadFile(filepath.Join(p.OutputDir, "index.html"))
	require.NoError(t, err)
	html := string(index)
	assert.Contains(t, html, "webcal://edt.example.org/ical.ics")
	assert.Contains(t, html, "https://edt.example.org/ical.ics")
	assert.Contains(t, html, "Lundi 15 septembre")
	assert.Contains(t, html, "09:00-10:30")
	assert.Contains(t, html, "Pas de cours cette semaine")
}

func TestPublishEscapesScrapedMarkup(t *testing.T) {
	p := testPublisher(t)
	week := model.WeekSchedule{
		Monday: testMonday,
		Days: []model.DaySchedule{{
			Label: "Lundi 15 septembre",
			Events: []model.CaseEvent{{
				Raw:   "injected",
				Start: "09:00", End: "10:00",
				Title: `<script>alert("x")</script>`,
			}},
		}},
	}
	require.NoError(t, p.Publish([]model.WeekSchedule{week}, testMonday))

	index, err := os.ReadFile(filepath.Join(p.OutputDir, "index.html"))
	require.NoError(t, err)
	assert.NotContains(t, string(index), "<script>alert")
	assert.Contains(t, string(index), "&lt;script&gt;")
}

func TestLoadWeeksRoundTrip(t *testing.T) {
	p := testPublisher(t)
	week1 := sampleWeek()
	week2 := model.WeekSchedule{
		Monday: testMonday.AddDate(0, 0, 7),
		Days:   []model.DaySchedule{{Label: "Lundi 22 septembre"}},
	}
	// Publish out of order; LoadWeeks must come back sorted by Monday.
	require.NoError(t, p.Publish([]model.WeekSchedule{week2, week1}, testMonday))

	weeks, err := LoadWeeks(p.OutputDir)
	require.NoError(t, err)
	require.Len(t, weeks, 2)
	assert.Equal(t, testMonday, weeks[0].Monday)
	require.Len(t, weeks[0].Days, 2)
	assert.Equal(t, "Lundi 15 septembre", weeks[0].Days[0].Label)
	assert.Equal(t, "Algorithmique", weeks[0].Days[0].Events[0].Title)
	assert.Equal(t, testMonday.AddDate(0, 0, 7), weeks[1].Monday)
}

func TestWebcalURL(t *testing.T) {
	assert.Equal(t, "webcal://edt.example.org/ical.ics", webcalURL("https://edt.example.org/"))
	assert.Equal(t, "webcal://localhost:8080/ical.ics", webcalURL("http://localhost:8080"))
}
