package ical

import (
	"fmt"
	"strings"

	ics "github.com/arran4/golang-ical"
)

// Validate parses the serialized calendar back and checks the expected
// event count. The serializer is hand-assembled, so the publish path
// runs every build through a real parser before writing it anywhere.
func Validate(data string, wantEvents int) error {
	cal, err := ics.ParseCalendar(strings.NewReader(data))
	if err != nil {
		return fmt.Errorf("ical: generated calendar does not parse: %w", err)
	}
	events := cal.Events()
	if len(events) != wantEvents {
		return fmt.Errorf("ical: generated calendar has %d events, want %d", len(events), wantEvents)
	}
	for _, ev := range events {
		uid := ev.GetProperty(ics.ComponentPropertyUniqueId)
		if uid == nil || uid.Value == "" {
			return fmt.Errorf("ical: generated event without UID")
		}
	}
	return nil
}
