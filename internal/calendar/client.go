package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// PrimaryCalendar is the authenticated user's own calendar.
const PrimaryCalendar = "primary"

// Client wraps the Google Calendar service.
type Client struct {
	svc *calendar.Service
}

// NewClient creates a Calendar client on top of an authorized HTTP client.
// Extra options (such as option.WithEndpoint) are applied after it.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// ListEvents lists single (expanded) events in a calendar within a time
// range, ordered by start time, following every result page.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]EventSummary, error) {
	call := c.svc.Events.List(calendarID).
		TimeMin(timeMin.UTC().Format(time.RFC3339)).
		TimeMax(timeMax.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	var summaries []EventSummary
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, event := range page.Items {
			summaries = append(summaries, toEventSummary(event))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return summaries, nil
}

// QueryFreeBusy checks availability for calendars in a time range.
func (c *Client) QueryFreeBusy(ctx context.Context, timeMin, timeMax time.Time, calendarIDs []string) ([]FreeBusyInfo, error) {
	items := make([]*calendar.FreeBusyRequestItem, len(calendarIDs))
	for i, id := range calendarIDs {
		items[i] = &calendar.FreeBusyRequestItem{Id: id}
	}

	query := &calendar.FreeBusyRequest{
		TimeMin:  timeMin.UTC().Format(time.RFC3339),
		TimeMax:  timeMax.UTC().Format(time.RFC3339),
		TimeZone: "UTC",
		Items:    items,
	}

	result, err := c.svc.Freebusy.Query(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}

	infos := make([]FreeBusyInfo, 0, len(result.Calendars))
	for calID, cal := range result.Calendars {
		info := FreeBusyInfo{Calendar: calID}
		for _, busy := range cal.Busy {
			start, err := time.Parse(time.RFC3339, busy.Start)
			if err != nil {
				info.Errors = append(info.Errors, fmt.Sprintf("unparseable busy start %q", busy.Start))
				continue
			}
			end, err := time.Parse(time.RFC3339, busy.End)
			if err != nil {
				info.Errors = append(info.Errors, fmt.Sprintf("unparseable busy end %q", busy.End))
				continue
			}
			info.Busy = append(info.Busy, TimeRange{Start: start, End: end})
		}
		for _, e := range cal.Errors {
			info.Errors = append(info.Errors, e.Reason)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// CreateEvent creates a new calendar event. When input.ID is set and an
// event with that id already exists, the existing event is returned.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*EventSummary, error) {
	tz := input.TimeZone
	if tz == "" {
		tz = "UTC"
	}

	event := &calendar.Event{
		Id:          input.ID,
		Summary:     input.Summary,
		Description: input.Description,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.UTC().Format(time.RFC3339),
			TimeZone: tz,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.UTC().Format(time.RFC3339),
			TimeZone: tz,
		},
		Reminders: &calendar.EventReminders{UseDefault: true},
	}

	for _, a := range input.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{
			Email:       a.Email,
			DisplayName: a.DisplayName,
			Organizer:   a.Organizer,
		})
	}

	call := c.svc.Events.Insert(calendarID, event).Context(ctx)
	if input.ConferenceRequestID != "" {
		event.ConferenceData = &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId:             input.ConferenceRequestID,
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		}
		call = call.ConferenceDataVersion(1)
	}
	if input.SendUpdates != "" {
		call = call.SendUpdates(input.SendUpdates)
	}

	created, err := call.Do()
	if err != nil && input.ID != "" && isConflict(err) {
		existing, getErr := c.svc.Events.Get(calendarID, input.ID).Context(ctx).Do()
		if getErr != nil {
			return nil, fmt.Errorf("event %s already exists but could not be read: %w", input.ID, getErr)
		}
		summary := toEventSummary(existing)
		return &summary, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	summary := toEventSummary(created)
	return &summary, nil
}

func isConflict(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusConflict
}
