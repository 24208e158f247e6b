package caldav

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teemow/meetpilot/internal/calendar"
	"github.com/teemow/meetpilot/internal/invite"
	"github.com/teemow/meetpilot/internal/logging"
	"github.com/teemow/meetpilot/internal/meeting"
)

// Adapter exposes a CalDAV Client as the engine's calendar reader and writer.
type Adapter struct {
	client *Client
	now    func() time.Time
}

var (
	_ meeting.CalendarReader = (*Adapter)(nil)
	_ meeting.CalendarWriter = (*Adapter)(nil)
)

// NewAdapter wraps client.
func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client, now: time.Now}
}

// ListPastEvents reads the attendee's calendar collection.
func (a *Adapter) ListPastEvents(ctx context.Context, attendeeEmail string, window meeting.TimeWindow) ([]meeting.PastEvent, error) {
	events, err := a.client.ListEvents(ctx, attendeeEmail, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	past := make([]meeting.PastEvent, 0, len(events))
	for _, e := range events {
		past = append(past, meeting.PastEvent{Start: e.Start, End: e.End, Label: e.Summary})
	}
	return past, nil
}

// QueryFreeBusy reads every attendee's events in parallel and reports their
// time ranges as busy. A failed read is reported per attendee.
func (a *Adapter) QueryFreeBusy(ctx context.Context, attendeeEmails []string, window meeting.TimeWindow) (map[string]meeting.BusyResult, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]meeting.BusyResult, len(attendeeEmails))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.client.concurrency)
	for _, email := range attendeeEmails {
		g.Go(func() error {
			events, err := a.client.ListEvents(gctx, email, window.Start, window.End)
			res := meeting.BusyResult{Err: err}
			if err != nil {
				a.client.logger.Debug("caldav free/busy read failed",
					logging.UserHash(email),
					logging.Err(err))
			} else {
				res.Busy = make([]meeting.TimeWindow, 0, len(events))
				for _, e := range events {
					res.Busy = append(res.Busy, meeting.TimeWindow{Start: e.Start, End: e.End})
				}
			}

			mu.Lock()
			out[email] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateEvent stores the meeting in the organizer's calendar. The request id
// is the object UID, so a retried commit overwrites rather than duplicates.
func (a *Adapter) CreateEvent(ctx context.Context, req meeting.EventRequest) (meeting.CreatedEvent, error) {
	if req.RequestID == "" {
		return meeting.CreatedEvent{}, errors.New("request id is required")
	}
	if strings.TrimSpace(req.Organizer.Email) == "" {
		return meeting.CreatedEvent{}, errors.New("organizer email is required")
	}

	ev := invite.NewEventComponent(invite.Event{
		UID:         req.RequestID,
		Summary:     calendar.EventSummaryLine(req.Topic, req.Organizer),
		Description: calendar.Description,
		Start:       req.Start,
		End:         req.End,
		Organizer:   req.Organizer,
		Attendees:   req.Attendees,
		Stamp:       a.now(),
	})

	obj, err := a.client.PutEvent(ctx, req.Organizer.Email, req.RequestID, invite.NewCalendar("", ev))
	if err != nil {
		return meeting.CreatedEvent{}, err
	}

	a.client.logger.Debug("stored calendar object",
		slog.String("path", obj.Path),
		logging.RequestID(req.RequestID))

	return meeting.CreatedEvent{
		EventID:      req.RequestID,
		CalendarLink: a.client.ObjectURL(obj.Path),
	}, nil
}
