// Package site publishes reconstructed weeks as a static output tree:
// per-week JSON files, a single ICS covering every week, and an HTML
// index enumerating the events.
package site

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"wigorcal/internal/ical"
	appLog "wigorcal/internal/log"
	"wigorcal/internal/model"
)

const (
	icsFileName = "ical.ics"
	weeksSubdir = "weeks"
)

// Publisher writes the output tree for one or more weeks.
type Publisher struct {
	OutputDir    string
	SiteBase     string
	CalendarName string
}

// Publish writes weeks/<monday>.json for every week, the combined
// ical.ics and index.html. The calendar is validated by re-parsing
// before anything hits disk.
func (p *Publisher) Publish(weeks []model.WeekSchedule, now time.Time) error {
	if err := os.MkdirAll(filepath.Join(p.OutputDir, weeksSubdir), 0o755); err != nil {
		return err
	}

	eligible := ical.ExportableCount(weeks)
	calText := ical.BuildCalendar(weeks, p.CalendarName, now)
	if err := ical.Validate(calText, eligible); err != nil {
		return err
	}

	for _, w := range weeks {
		data, err := json.MarshalIndent(w, "", "  ")
		if err != nil {
			return err
		}
		name := w.Monday.Format("2006-01-02") + ".json"
		if err := os.WriteFile(filepath.Join(p.OutputDir, weeksSubdir, name), data, 0o644); err != nil {
			return err
		}
	}

	icsPath := filepath.Join(p.OutputDir, icsFileName)
	if err := os.WriteFile(icsPath, []byte(calText), 0o644); err != nil {
		return err
	}

	if err := p.writeIndex(weeks, eligible, now); err != nil {
		return err
	}

	appLog.Info("site published",
		"output_dir", p.OutputDir,
		"weeks", len(weeks),
		"events", eligible,
	)
	return nil
}

// LoadWeeks reads back previously published weeks/<monday>.json files,
// sorted by Monday. This is the persisted intermediate the calendar can
// be rebuilt from without re-scraping.
func LoadWeeks(outputDir string) ([]model.WeekSchedule, error) {
	dir := filepath.Join(outputDir, weeksSubdir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var weeks []model.WeekSchedule
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		monday, err := time.Parse("2006-01-02", strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			appLog.Warn("skipping week file with unrecognized name", "name", e.Name())
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		var w model.WeekSchedule
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("site: %s: %w", e.Name(), err)
		}
		w.Monday = monday
		weeks = append(weeks, w)
	}

	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Monday.Before(weeks[j].Monday) })
	return weeks, nil
}

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="fr">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.CalendarName}}</title>
</head>
<body style="font-family:system-ui,sans-serif;max-width:820px;margin:40px auto;padding:0 16px;line-height:1.5">
<h1>{{.CalendarName}}</h1>
<p><a href="{{.WebcalHref}}">S'abonner (Outlook/Apple)</a> &middot;
   <a href="{{.ICSHref}}">T&eacute;l&eacute;charger l'ICS</a></p>
<p><b>{{.EventCount}}</b> &eacute;v&eacute;nements &middot; {{len .Weeks}} semaine(s)</p>
{{range .Weeks}}
<h2>Semaine du {{.Monday}}</h2>
{{range .Days}}
<h3>{{.Label}}</h3>
<ul>
{{range .Events}}<li>{{.Time}} {{if .Title}}&mdash; {{.Title}}{{end}}{{if .Detail}} ({{.Detail}}){{end}}</li>
{{end}}</ul>
{{end}}
{{end}}
<p><small>Derni&egrave;re mise &agrave; jour: {{.Updated}}</small></p>
</body>
</html>
`))

type indexData struct {
	CalendarName string
	WebcalHref   template.URL
	ICSHref      string
	EventCount   int
	Weeks        []indexWeek
	Updated      string
}

type indexWeek struct {
	Monday string
	Days   []indexDay
}

type indexDay struct {
	Label  string
	Events []indexEvent
}

type indexEvent struct {
	Time   string
	Title  string
	Detail string
}

func (p *Publisher) writeIndex(weeks []model.WeekSchedule, eventCount int, now time.Time) error {
	data := indexData{
		CalendarName: p.CalendarName,
		WebcalHref:   template.URL(webcalURL(p.SiteBase)),
		ICSHref:      strings.TrimRight(p.SiteBase, "/") + "/" + icsFileName,
		EventCount:   eventCount,
		Updated:      now.Format("2006-01-02 15:04"),
	}
	for _, w := range weeks {
		iw := indexWeek{Monday: w.Monday.Format("2006-01-02")}
		for _, d := range w.Days {
			id := indexDay{Label: d.Label}
			for _, ev := range d.Events {
				ie := indexEvent{Title: ev.Title}
				if ev.Scheduled() {
					ie.Time = ev.Start + "-" + ev.End
				} else {
					ie.Time = ev.Raw
				}
				var detail []string
				if ev.Room != "" {
					detail = append(detail, ev.Room)
				}
				if ev.Site != "" {
					detail = append(detail, ev.Site)
				}
				if ev.Teacher != "" {
					detail = append(detail, ev.Teacher)
				}
				ie.Detail = strings.Join(detail, ", ")
				id.Events = append(id.Events, ie)
			}
			iw.Days = append(iw.Days, id)
		}
		data.Weeks = append(data.Weeks, iw)
	}

	f, err := os.Create(filepath.Join(p.OutputDir, "index.html"))
	if err != nil {
		return err
	}
	defer f.Close()
	return indexTemplate.Execute(f, data)
}

// webcalURL rewrites the site base URL with the webcal scheme calendar
// clients register for.
func webcalURL(siteBase string) string {
	base := siteBase
	if i := strings.Index(base, "://"); i >= 0 {
		base = base[i+3:]
	}
	return "webcal://" + strings.TrimRight(base, "/") + "/" + icsFileName
}
