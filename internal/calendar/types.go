package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// EventInput represents the input for creating a calendar event.
type EventInput struct {
	// ID is an optional client-chosen event id. Inserting the same id twice
	// fails with 409, which makes retries of one commit attempt idempotent.
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []AttendeeInfo

	// ConferenceRequestID, when set, asks for a Google Meet conference.
	ConferenceRequestID string

	// SendUpdates controls guest notifications: "all", "externalOnly" or "none".
	SendUpdates string
}

// EventSummary represents a simplified calendar event.
type EventSummary struct {
	ID          string
	Summary     string
	Start       time.Time
	End         time.Time
	Status      string
	Transparent bool
	HTMLLink    string
	MeetLink    string
}

// AttendeeInfo represents an attendee of an event being created.
type AttendeeInfo struct {
	Email       string
	DisplayName string
	Organizer   bool
}

// FreeBusyInfo represents availability information for a calendar.
type FreeBusyInfo struct {
	Calendar string
	Busy     []TimeRange
	Errors   []string
}

// TimeRange represents a time range.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

func toEventSummary(event *calendar.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}
	summary := EventSummary{
		ID:          event.Id,
		Summary:     event.Summary,
		Status:      event.Status,
		Transparent: event.Transparency == "transparent",
		HTMLLink:    event.HtmlLink,
	}

	summary.Start = parseEventTime(event.Start)
	summary.End = parseEventTime(event.End)

	if event.ConferenceData != nil {
		for _, ep := range event.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" && ep.Uri != "" {
				summary.MeetLink = ep.Uri
				break
			}
		}
	}

	return summary
}

// parseEventTime handles both timed and all-day events. All-day dates are
// taken as UTC midnight.
func parseEventTime(t *calendar.EventDateTime) time.Time {
	if t == nil {
		return time.Time{}
	}
	if t.DateTime != "" {
		if parsed, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return parsed
		}
	}
	if t.Date != "" {
		if parsed, err := time.Parse("2006-01-02", t.Date); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
