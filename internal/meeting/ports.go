package meeting

import (
	"context"
	"time"
)

// BusyResult is the free/busy answer for one attendee.
type BusyResult struct {
	Busy []TimeWindow

	// Err is set when this attendee's calendar could not be read.
	Err error
}

// CalendarReader is the read-only calendar capability.
type CalendarReader interface {
	// ListPastEvents returns the attendee's events inside window.
	ListPastEvents(ctx context.Context, attendeeEmail string, window TimeWindow) ([]PastEvent, error)

	// QueryFreeBusy returns busy intervals per attendee for window. A missing
	// entry means the attendee could not be read.
	QueryFreeBusy(ctx context.Context, attendeeEmails []string, window TimeWindow) (map[string]BusyResult, error)
}

// EventRequest is the payload committed through a CalendarWriter.
type EventRequest struct {
	Topic     string
	Organizer Attendee
	Attendees []Attendee
	Start     time.Time
	End       time.Time

	// RequestID is unique per commit attempt so the collaborator can
	// deduplicate retries of the same attempt.
	RequestID string
}

// CreatedEvent is the collaborator's proof of creation.
type CreatedEvent struct {
	EventID        string
	CalendarLink   string
	ConferenceLink string
}

// CalendarWriter creates calendar events.
type CalendarWriter interface {
	CreateEvent(ctx context.Context, req EventRequest) (CreatedEvent, error)
}

// Invitation is what a Notifier delivers to one attendee.
type Invitation struct {
	Recipient Attendee
	Organizer Attendee
	Meeting   ScheduledMeeting
}

// Notifier sends meeting invitations. Delivery is best effort.
type Notifier interface {
	Send(ctx context.Context, attendeeEmail string, inv Invitation) error
}

// PromptKind selects the oracle contract.
type PromptKind string

const (
	// PromptSummarizeRoutine asks for a short routine summary of one attendee.
	PromptSummarizeRoutine PromptKind = "SummarizeRoutine"

	// PromptProposeSlots asks for candidate slots compatible with all routines.
	PromptProposeSlots PromptKind = "ProposeSlots"
)

// OracleInput is the structured context handed to a TextOracle.
type OracleInput struct {
	// SummarizeRoutine
	Attendee Attendee
	Events   []PastEvent

	// ProposeSlots
	Profiles  []RoutineProfile
	TargetDay time.Time
	MinSlots  int
	MaxSlots  int
}

// TextOracle is any natural-language backend. Its replies are untrusted.
type TextOracle interface {
	Complete(ctx context.Context, kind PromptKind, input OracleInput) (string, error)
}

// Observer receives engine telemetry. Implementations must be safe for
// concurrent use.
type Observer interface {
	StateChanged(ctx context.Context, state string)
	PortCall(ctx context.Context, port, operation string, err error, duration time.Duration)
	Finished(ctx context.Context, outcome string, duration time.Duration)
}

type nopObserver struct{}

func (nopObserver) StateChanged(context.Context, string)                           {}
func (nopObserver) PortCall(context.Context, string, string, error, time.Duration) {}
func (nopObserver) Finished(context.Context, string, time.Duration)                {}

// Port and operation names reported to the Observer.
const (
	PortCalendarRead  = "calendar_read"
	PortCalendarWrite = "calendar_write"
	PortNotification  = "notification"
	PortOracle        = "oracle"

	OpListPastEvents = "list_past_events"
	OpQueryFreeBusy  = "query_freebusy"
	OpCreateEvent    = "create_event"
	OpSend           = "send"
)

// Timeouts bounds each external call independently.
type Timeouts struct {
	ProfileRead time.Duration
	Oracle      time.Duration
	FreeBusy    time.Duration
	Write       time.Duration
	Notify      time.Duration
}

// DefaultCallTimeout applies to any Timeouts field left zero.
const DefaultCallTimeout = 20 * time.Second

// Uniform returns Timeouts with every call bounded by d.
func Uniform(d time.Duration) Timeouts {
	return Timeouts{ProfileRead: d, Oracle: d, FreeBusy: d, Write: d, Notify: d}
}

func (t Timeouts) withDefaults() Timeouts {
	def := func(d time.Duration) time.Duration {
		if d <= 0 {
			return DefaultCallTimeout
		}
		return d
	}
	return Timeouts{
		ProfileRead: def(t.ProfileRead),
		Oracle:      def(t.Oracle),
		FreeBusy:    def(t.FreeBusy),
		Write:       def(t.Write),
		Notify:      def(t.Notify),
	}
}
