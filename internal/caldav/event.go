package caldav

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

// maxOccurrences caps recurrence expansion per event.
const maxOccurrences = 500

// Event is one concrete occurrence of a VEVENT.
type Event struct {
	Summary string
	Start   time.Time
	End     time.Time
}

type span struct {
	start time.Time
	end   time.Time
}

func (s span) overlaps(start, end time.Time) bool {
	return start.Before(s.end) && s.start.Before(end)
}

// eventsFromCalendar extracts the occurrences inside window. Cancelled and
// transparent events do not block time and are dropped. An instance
// overridden by a RECURRENCE-ID component only blocks its override's time.
func eventsFromCalendar(cal *ical.Calendar, window span) ([]Event, error) {
	events := cal.Events()
	overridden, err := overriddenStarts(events)
	if err != nil {
		return nil, err
	}

	var out []Event
	for _, ev := range events {
		if !blocksTime(ev) {
			continue
		}

		start, end, err := eventBounds(ev)
		if err != nil {
			return nil, err
		}
		if start.IsZero() {
			continue
		}

		uid, _ := ev.Props.Text(ical.PropUID)
		summary, _ := ev.Props.Text(ical.PropSummary)

		starts, err := occurrences(ev, start, end, window)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", uid, err)
		}
		if ev.Props.Get(ical.PropRecurrenceID) == nil {
			starts = withoutStarts(starts, overridden[uid])
		}
		dur := end.Sub(start)
		for _, s := range starts {
			e := Event{Summary: summary}
			e.Start = s.UTC()
			e.End = s.Add(dur).UTC()
			if window.overlaps(e.Start, e.End) {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

// overriddenStarts maps each UID to the original starts replaced by its
// RECURRENCE-ID components, cancelled ones included.
func overriddenStarts(events []ical.Event) (map[string]map[int64]bool, error) {
	out := make(map[string]map[int64]bool)
	for _, ev := range events {
		prop := ev.Props.Get(ical.PropRecurrenceID)
		if prop == nil {
			continue
		}
		uid, _ := ev.Props.Text(ical.PropUID)
		t, err := prop.DateTime(time.UTC)
		if err != nil {
			return nil, fmt.Errorf("event %q: invalid RECURRENCE-ID: %w", uid, err)
		}
		if out[uid] == nil {
			out[uid] = make(map[int64]bool)
		}
		out[uid][t.Unix()] = true
	}
	return out, nil
}

func withoutStarts(starts []time.Time, skip map[int64]bool) []time.Time {
	if len(skip) == 0 {
		return starts
	}
	out := starts[:0]
	for _, s := range starts {
		if !skip[s.Unix()] {
			out = append(out, s)
		}
	}
	return out
}

func blocksTime(ev ical.Event) bool {
	if status, _ := ev.Props.Text(ical.PropStatus); strings.EqualFold(status, "CANCELLED") {
		return false
	}
	if transp, _ := ev.Props.Text(ical.PropTransparency); strings.EqualFold(transp, "TRANSPARENT") {
		return false
	}
	return true
}

// eventBounds resolves DTSTART and the effective end. A missing DTEND falls
// back to DURATION, then to one day for date values and zero length otherwise.
func eventBounds(ev ical.Event) (start, end time.Time, err error) {
	startProp := ev.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return time.Time{}, time.Time{}, nil
	}
	start, err = startProp.DateTime(time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid DTSTART: %w", err)
	}

	if endProp := ev.Props.Get(ical.PropDateTimeEnd); endProp != nil {
		end, err = endProp.DateTime(time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid DTEND: %w", err)
		}
		return start, end, nil
	}

	if durProp := ev.Props.Get(ical.PropDuration); durProp != nil {
		dur, err := durProp.Duration()
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid DURATION: %w", err)
		}
		return start, start.Add(dur), nil
	}

	if startProp.ValueType() == ical.ValueDate {
		return start, start.AddDate(0, 0, 1), nil
	}
	return start, start, nil
}

// occurrences returns the start times of ev that may overlap window.
func occurrences(ev ical.Event, start, end time.Time, window span) ([]time.Time, error) {
	set, err := ev.RecurrenceSet(time.UTC)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return []time.Time{start}, nil
	}

	dur := end.Sub(start)
	starts := set.Between(window.start.Add(-dur), window.end, true)
	if len(starts) > maxOccurrences {
		starts = starts[:maxOccurrences]
	}
	return starts, nil
}

func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
}
