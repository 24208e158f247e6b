package invite

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/teemow/meetpilot/internal/meeting"
)

// ProductID identifies meetpilot as the producer of calendar objects.
const ProductID = "-//meetpilot//meeting negotiation//EN"

// MethodRequest is the iTIP method of an invitation.
const MethodRequest = "REQUEST"

// Event describes a single VEVENT.
type Event struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Organizer   meeting.Attendee
	Attendees   []meeting.Attendee

	// Location carries the conference link, URL the calendar link.
	Location string
	URL      string

	// Stamp is the DTSTAMP. Defaults to the current time.
	Stamp time.Time
}

// NewEventComponent converts e into a VEVENT component.
func NewEventComponent(e Event) *ical.Component {
	stamp := e.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, e.UID)
	ev.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ev.Props.SetDateTime(ical.PropDateTimeStart, e.Start.UTC())
	ev.Props.SetDateTime(ical.PropDateTimeEnd, e.End.UTC())
	ev.Props.SetText(ical.PropSummary, e.Summary)
	ev.Props.SetText(ical.PropStatus, "CONFIRMED")
	setRaw(ev.Props, ical.PropSequence, "0")

	if e.Description != "" {
		ev.Props.SetText(ical.PropDescription, e.Description)
	}
	if e.Location != "" {
		ev.Props.SetText(ical.PropLocation, e.Location)
	}
	if e.URL != "" {
		setRaw(ev.Props, ical.PropURL, e.URL)
	}

	if e.Organizer.Email != "" {
		org := ical.NewProp(ical.PropOrganizer)
		org.Value = mailto(e.Organizer.Email)
		if e.Organizer.Name != "" {
			org.Params.Set(ical.ParamCommonName, e.Organizer.Name)
		}
		ev.Props.Set(org)
	}

	for _, a := range e.Attendees {
		att := ical.NewProp(ical.PropAttendee)
		att.Value = mailto(a.Email)
		if a.Name != "" {
			att.Params.Set(ical.ParamCommonName, a.Name)
		}
		att.Params.Set(ical.ParamRole, "REQ-PARTICIPANT")
		att.Params.Set(ical.ParamParticipationStatus, "NEEDS-ACTION")
		att.Params.Set(ical.ParamRSVP, "TRUE")
		ev.Props.Add(att)
	}

	return ev.Component
}

// NewCalendar wraps events into a VCALENDAR. method may be empty for plain
// calendar objects stored on a server.
func NewCalendar(method string, events ...*ical.Component) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	if method != "" {
		cal.Props.SetText(ical.PropMethod, method)
	}
	cal.Children = append(cal.Children, events...)
	return cal
}

// Encode serializes cal.
func Encode(cal *ical.Calendar) ([]byte, error) {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

// Request renders the iTIP REQUEST attached to the invitation for one recipient.
func Request(inv meeting.Invitation) ([]byte, error) {
	m := inv.Meeting
	ev := NewEventComponent(Event{
		UID:         RequestUID(m.Start, inv.Recipient.Email),
		Summary:     Subject(inv),
		Description: Body(inv),
		Start:       m.Start,
		End:         m.End,
		Organizer:   inv.Organizer,
		Attendees:   []meeting.Attendee{inv.Recipient},
		Location:    m.ConferenceLink,
		URL:         m.CalendarLink,
	})
	return Encode(NewCalendar(MethodRequest, ev))
}

// RequestUID is the per-recipient UID of an invitation.
func RequestUID(start time.Time, email string) string {
	return start.UTC().Format("20060102T150405Z") + "-" + strings.ToLower(strings.TrimSpace(email))
}

// setRaw sets a property whose default value type is not TEXT.
func setRaw(props ical.Props, name, value string) {
	prop := ical.NewProp(name)
	prop.Value = value
	props.Set(prop)
}

func mailto(email string) string {
	return "mailto:" + strings.TrimSpace(email)
}
