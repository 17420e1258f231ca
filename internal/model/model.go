package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// CaseEvent is one reconstructed event block ("Case" in the vendor's
// markup). All fields are best-effort extractions and may be empty; an
// event with no start/end is a non-scheduling message (e.g. "Pas de
// cours") that is kept for display but never exported to the calendar.
type CaseEvent struct {
	Raw     string `json:"raw"`
	Start   string `json:"start"` // "HH:MM" or empty
	End     string `json:"end"`   // "HH:MM" or empty
	Room    string `json:"room"`
	Site    string `json:"site"`
	Teacher string `json:"teacher"`
	Title   string `json:"title"`
}

// Scheduled reports whether the event carries a usable time range and is
// therefore eligible for calendar export.
func (e CaseEvent) Scheduled() bool {
	return e.Start != "" && e.End != ""
}

// DaySchedule is one day column of a reconstructed week.
type DaySchedule struct {
	Label  string // e.g. "Lundi 15 septembre"
	Events []CaseEvent
}

// WeekSchedule is the canonical reconstruction of one displayed week:
// day labels in panel order, events per day sorted by start time.
type WeekSchedule struct {
	Monday time.Time
	Days   []DaySchedule
}

// Day returns the schedule for the given label, or nil.
func (w *WeekSchedule) Day(label string) *DaySchedule {
	for i := range w.Days {
		if w.Days[i].Label == label {
			return &w.Days[i]
		}
	}
	return nil
}

// EventCount returns the total number of events across all days.
func (w *WeekSchedule) EventCount() int {
	n := 0
	for _, d := range w.Days {
		n += len(d.Events)
	}
	return n
}

// MarshalJSON renders the week as a JSON object keyed by day label, in
// day order. A plain map would lose the order, and the persisted file is
// consumed by the site builder which re-renders days in sequence.
func (w WeekSchedule) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, d := range w.Days {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(d.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		events := d.Events
		if events == nil {
			events = []CaseEvent{}
		}
		val, err := json.Marshal(events)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the object form back into ordered days. The
// stdlib map decode would shuffle keys, so the object is walked token by
// token. Monday is not part of the JSON document; callers restore it
// from the file name.
func (w *WeekSchedule) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("week schedule: expected JSON object")
	}

	w.Days = nil
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		label, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("week schedule: unexpected key token %v", keyTok)
		}
		var events []CaseEvent
		if err := dec.Decode(&events); err != nil {
			return fmt.Errorf("week schedule: day %q: %w", label, err)
		}
		w.Days = append(w.Days, DaySchedule{Label: label, Events: events})
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
