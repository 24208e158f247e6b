package meeting

import (
	"fmt"
	"strings"
	"time"
)

// SlotDuration is the fixed length of every candidate slot.
const SlotDuration = 30 * time.Minute

// NoDataSummary is the routine summary used whenever no trustworthy summary exists.
const NoDataSummary = "No recent events available."

// DefaultLookback is how far back past events are read when profiling.
const DefaultLookback = 14 * 24 * time.Hour

// Attendee is a meeting participant identified by email.
type Attendee struct {
	Name  string
	Email string
	Role  string
}

// Label renders the attendee as "Name (role)".
func (a Attendee) Label() string {
	name := a.Name
	if name == "" {
		name = a.Email
	}
	if a.Role == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, a.Role)
}

// TimeWindow is a half-open interval [Start, End).
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open windows intersect.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// PastEvent is a single historical calendar entry used for profiling.
type PastEvent struct {
	Start time.Time
	End   time.Time
	Label string
}

// RoutineProfile summarizes an attendee's typical availability.
type RoutineProfile struct {
	AttendeeEmail    string
	AttendeeName     string
	TextSummary      string
	SourceEventCount int

	// Failure holds the recoverable error that degraded this profile, if any.
	Failure error
}

// Degraded reports whether the profile fell back to the no-data sentinel.
func (p RoutineProfile) Degraded() bool {
	return p.Failure != nil
}

// CandidateSlot is a proposed 30-minute meeting window.
type CandidateSlot struct {
	Start time.Time
}

// NewCandidateSlot returns a slot starting at t, normalized to UTC.
func NewCandidateSlot(t time.Time) CandidateSlot {
	return CandidateSlot{Start: t.UTC()}
}

// End returns the exclusive end of the slot.
func (s CandidateSlot) End() time.Time {
	return s.Start.Add(SlotDuration)
}

// Window returns the slot as a TimeWindow.
func (s CandidateSlot) Window() TimeWindow {
	return TimeWindow{Start: s.Start, End: s.End()}
}

// String formats the slot the way the oracle proposes it.
func (s CandidateSlot) String() string {
	return s.Start.UTC().Format(slotLayout) + " UTC"
}

// AvailabilityVerdict is the outcome of checking one slot for all attendees.
type AvailabilityVerdict struct {
	Slot       CandidateSlot
	FreeForAll bool

	// BusyAttendees lists every attendee treated as busy, including those
	// whose availability could not be read.
	BusyAttendees []string

	// Unverified lists attendees whose free/busy read failed. They are also
	// present in BusyAttendees.
	Unverified []string
}

// MeetingRequest is the immutable input to a negotiation.
type MeetingRequest struct {
	Topic           string
	Attendees       []Attendee
	PreselectedSlot *CandidateSlot
}

// ScheduledMeeting is a committed calendar event.
type ScheduledMeeting struct {
	EventID        string
	Start          time.Time
	End            time.Time
	Attendees      []Attendee
	Topic          string
	CalendarLink   string
	ConferenceLink string
}

// HasConference reports whether a conference link was created with the event.
func (m ScheduledMeeting) HasConference() bool {
	return m.ConferenceLink != ""
}

// NotificationOutcome records whether one attendee's invitation was sent.
type NotificationOutcome struct {
	Email     string
	Delivered bool
	Err       error
}

// Result is the successful outcome of Schedule.
type Result struct {
	Meeting       ScheduledMeeting
	Notifications []NotificationOutcome
	Profiles      []RoutineProfile
	Candidates    []CandidateSlot
	Verdicts      []AvailabilityVerdict
}

// Delivered returns the number of invitations that were sent.
func (r *Result) Delivered() int {
	n := 0
	for _, o := range r.Notifications {
		if o.Delivered {
			n++
		}
	}
	return n
}

// Summary renders the result for humans.
func (r *Result) Summary() string {
	m := r.Meeting
	labels := make([]string, 0, len(m.Attendees))
	for _, a := range m.Attendees {
		labels = append(labels, a.Label())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Meeting scheduled with: %s\n\n", strings.Join(labels, ", "))
	fmt.Fprintf(&b, "Topic: %s\n", m.Topic)
	fmt.Fprintf(&b, "Time: %s\n", m.Start.UTC().Format(HumanTimeLayout))
	fmt.Fprintf(&b, "Calendar link: %s\n", m.CalendarLink)
	if m.HasConference() {
		fmt.Fprintf(&b, "Meet link: %s\n", m.ConferenceLink)
	}
	fmt.Fprintf(&b, "Invitations sent: %d/%d\n", r.Delivered(), len(r.Notifications))
	for _, o := range r.Notifications {
		if !o.Delivered {
			fmt.Fprintf(&b, "  failed: %s (%v)\n", o.Email, o.Err)
		}
	}
	return b.String()
}

// HumanTimeLayout is the layout used in summaries and invitations.
const HumanTimeLayout = "Monday, 02 January 2006 at 15:04 UTC"

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
