package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teemow/meetpilot/internal/meeting"
)

// Description is written into every event meetpilot creates.
const Description = "Scheduled via MeetPilot"

// Adapter exposes a Client as the engine's calendar reader and writer.
type Adapter struct {
	client     *Client
	calendarID string
}

var (
	_ meeting.CalendarReader = (*Adapter)(nil)
	_ meeting.CalendarWriter = (*Adapter)(nil)
)

// NewAdapter creates an adapter that writes to the organizer's primary calendar.
func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client, calendarID: PrimaryCalendar}
}

// ListPastEvents reads the attendee's calendar, addressed by email. Cancelled
// and transparent (free) entries are not routine and are skipped.
func (a *Adapter) ListPastEvents(ctx context.Context, attendeeEmail string, window meeting.TimeWindow) ([]meeting.PastEvent, error) {
	events, err := a.client.ListEvents(ctx, attendeeEmail, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	past := make([]meeting.PastEvent, 0, len(events))
	for _, e := range events {
		if e.Status == "cancelled" || e.Transparent || e.Start.IsZero() {
			continue
		}
		past = append(past, meeting.PastEvent{Start: e.Start, End: e.End, Label: e.Summary})
	}
	return past, nil
}

// QueryFreeBusy batches every attendee into one free/busy request.
func (a *Adapter) QueryFreeBusy(ctx context.Context, attendeeEmails []string, window meeting.TimeWindow) (map[string]meeting.BusyResult, error) {
	infos, err := a.client.QueryFreeBusy(ctx, window.Start, window.End, attendeeEmails)
	if err != nil {
		return nil, err
	}

	out := make(map[string]meeting.BusyResult, len(infos))
	for _, info := range infos {
		if len(info.Errors) > 0 {
			out[info.Calendar] = meeting.BusyResult{
				Err: fmt.Errorf("free/busy unavailable: %s", strings.Join(info.Errors, ", ")),
			}
			continue
		}
		busy := make([]meeting.TimeWindow, 0, len(info.Busy))
		for _, b := range info.Busy {
			busy = append(busy, meeting.TimeWindow{Start: b.Start, End: b.End})
		}
		out[info.Calendar] = meeting.BusyResult{Busy: busy}
	}
	return out, nil
}

// CreateEvent inserts the meeting with a Meet conference and lets Google
// notify the guests.
func (a *Adapter) CreateEvent(ctx context.Context, req meeting.EventRequest) (meeting.CreatedEvent, error) {
	if req.RequestID == "" {
		return meeting.CreatedEvent{}, errors.New("request id is required")
	}

	input := EventInput{
		ID:                  EventID(req.RequestID),
		Summary:             EventSummaryLine(req.Topic, req.Organizer),
		Description:         Description,
		Start:               req.Start,
		End:                 req.End,
		TimeZone:            "UTC",
		ConferenceRequestID: req.RequestID,
		SendUpdates:         "all",
	}
	organizer := strings.ToLower(strings.TrimSpace(req.Organizer.Email))
	for _, att := range req.Attendees {
		input.Attendees = append(input.Attendees, AttendeeInfo{
			Email:       att.Email,
			DisplayName: att.Name,
			Organizer:   strings.ToLower(strings.TrimSpace(att.Email)) == organizer,
		})
	}

	created, err := a.client.CreateEvent(ctx, a.calendarID, input)
	if err != nil {
		return meeting.CreatedEvent{}, err
	}
	return meeting.CreatedEvent{
		EventID:        created.ID,
		CalendarLink:   created.HTMLLink,
		ConferenceLink: created.MeetLink,
	}, nil
}

// EventSummaryLine renders the event title.
func EventSummaryLine(topic string, organizer meeting.Attendee) string {
	name := organizer.Name
	if name == "" {
		name = organizer.Email
	}
	return fmt.Sprintf("Team Meeting: %s (Invited by %s)", topic, name)
}

// EventID derives a valid Google Calendar event id (base32hex characters,
// 5 to 1024 long) from a request id. UUIDs map to lowercase hex, which is a
// subset of base32hex.
func EventID(requestID string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(requestID) {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'v') {
			b.WriteRune(r)
		}
	}
	id := b.String()
	if len(id) < 5 {
		return ""
	}
	return id
}
